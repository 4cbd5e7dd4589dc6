// Package complaint provides the core logic of the complaint lifecycle:
// submission with evidence, status transitions, and post-resolution feedback,
// with best-effort admin notifications on the way.
package complaint

import (
	"context"
	"log"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/events"
	"complaintdesk/backend/internal/evidence"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/storage"
)

// DefaultDispatchTimeout bounds a single notification attempt. Expiry counts
// as dispatch failure and is logged like any other.
const DefaultDispatchTimeout = 30 * time.Second

// Service handles the business logic for complaints.
type Service struct {
	Storage    storage.Storage
	Evidence   evidence.Store
	Dispatcher notify.Dispatcher
	Events     *events.Hub

	// DispatchTimeout is the deadline for one detached notification attempt.
	DispatchTimeout time.Duration

	wg sync.WaitGroup
}

// NewService creates a new complaint service. Events may be nil when no live
// feed is wired.
func NewService(s storage.Storage, ev evidence.Store, d notify.Dispatcher, hub *events.Hub) *Service {
	return &Service{
		Storage:         s,
		Evidence:        ev,
		Dispatcher:      d,
		Events:          hub,
		DispatchTimeout: DefaultDispatchTimeout,
	}
}

// Submit validates and persists a new complaint. Evidence files are stored
// first; any rejected file fails the whole submission and no record is
// created. The returned id is valid only once the record is durably written.
// Admin notification runs detached from the caller and cannot fail Submit.
func (s *Service) Submit(ctx context.Context, title, description, category string, files []*multipart.FileHeader) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", apperr.Validation("title is required")
	}
	if strings.TrimSpace(description) == "" {
		return "", apperr.Validation("description is required")
	}
	if !models.ValidCategory(category) {
		return "", apperr.Validation("unknown category %q", category)
	}

	refs, err := s.Evidence.Save(ctx, files)
	if err != nil {
		return "", err
	}

	complaint := &models.Complaint{
		Title:        title,
		Description:  description,
		Category:     category,
		Status:       models.StatusSubmitted,
		EvidenceRefs: refs,
	}
	if err := s.Storage.CreateComplaint(complaint); err != nil {
		return "", err
	}

	s.dispatchAsync(notify.NewComplaintNotification(complaint))
	s.publish(events.Event{
		Type:        events.TypeNewComplaint,
		ComplaintID: complaint.ID,
		Title:       complaint.Title,
		Category:    complaint.Category,
	})

	return complaint.ID, nil
}

// GetComplaint fetches one complaint by id.
func (s *Service) GetComplaint(id string) (*models.Complaint, error) {
	return s.Storage.GetComplaintByID(id)
}

// ListComplaints returns every complaint, newest first.
func (s *Service) ListComplaints() ([]models.Complaint, error) {
	return s.Storage.ListComplaints()
}

// UpdateStatus overwrites the status of an existing complaint. Any status may
// move to any other; only enum membership is checked. No notification is sent
// on status change.
func (s *Service) UpdateStatus(id, status string) (*models.Complaint, error) {
	if !models.ValidStatus(status) {
		return nil, apperr.Validation("unknown status %q", status)
	}
	return s.Storage.UpdateComplaintStatus(id, status)
}

// SubmitFeedback attaches a one-time feedback text and rating to a complaint
// and notifies the admins. A second submission for the same complaint is
// rejected with a conflict.
func (s *Service) SubmitFeedback(id, feedback string, rating int) (string, error) {
	if strings.TrimSpace(feedback) == "" {
		return "", apperr.Validation("feedback is required")
	}
	if rating < 1 || rating > 5 {
		return "", apperr.Validation("rating must be between 1 and 5")
	}

	complaint, err := s.Storage.GetComplaintByID(id)
	if err != nil {
		return "", err
	}
	if complaint.HasFeedback() {
		return "", apperr.Conflict("feedback already submitted for complaint " + id)
	}

	updated, err := s.Storage.AttachFeedback(id, feedback, rating)
	if err != nil {
		return "", err
	}

	s.dispatchAsync(notify.FeedbackNotification(updated))
	s.publish(events.Event{
		Type:        events.TypeFeedbackReceived,
		ComplaintID: updated.ID,
		Title:       updated.Title,
		Rating:      rating,
	})

	return "Thank you for your feedback!", nil
}

// Wait blocks until all in-flight notification dispatches finish. Used for
// graceful shutdown and by tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

// dispatchAsync reads the admin roster and attempts one delivery in a
// detached goroutine. Every failure mode here, roster read included, is
// logged and swallowed; the primary write has already succeeded.
func (s *Service) dispatchAsync(n notify.Notification) {
	if s.Dispatcher == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.DispatchTimeout)
		defer cancel()

		recipients, err := s.Storage.ListAdminEmails()
		if err != nil {
			log.Printf("ERROR: Failed to load admin roster for notification %q: %v", n.Subject, err)
			return
		}
		if len(recipients) == 0 {
			return
		}

		if err := s.Dispatcher.Dispatch(ctx, recipients, n); err != nil {
			log.Printf("ERROR: Failed to dispatch notification %q: %v", n.Subject, err)
			return
		}
		log.Printf("INFO: Notification %q sent to %d admins", n.Subject, len(recipients))
	}()
}

func (s *Service) publish(event events.Event) {
	if s.Events != nil {
		s.Events.Publish(event)
	}
}
