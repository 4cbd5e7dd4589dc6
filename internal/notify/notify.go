// Package notify delivers best-effort notifications to the administrator
// roster. Delivery is attempted exactly once per channel; callers log and
// swallow any error, so a failed dispatch never fails the operation that
// triggered it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"complaintdesk/backend/internal/models"
)

// Notification is a rendered event payload ready for delivery.
type Notification struct {
	Subject string
	// Body is an HTML fragment.
	Body string
	// Attachments are evidence file paths included with the message where the
	// channel supports them.
	Attachments []string
}

// Dispatcher attempts one delivery of a notification to the given recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipients []string, n Notification) error
}

// NewComplaintNotification renders the "new complaint" event.
func NewComplaintNotification(c *models.Complaint) Notification {
	return Notification{
		Subject: "New Complaint Submitted: " + c.Title,
		Body: fmt.Sprintf(`<h1>New Complaint Received</h1>
<p>A new complaint has been submitted through the portal.</p>
<ul>
<li><strong>Complaint ID:</strong> %s</li>
<li><strong>Title:</strong> %s</li>
<li><strong>Category:</strong> %s</li>
<li><strong>Description:</strong> %s</li>
</ul>`, c.ID, c.Title, c.Category, c.Description),
		Attachments: c.EvidenceRefs,
	}
}

// FeedbackNotification renders the "feedback received" event.
func FeedbackNotification(c *models.Complaint) Notification {
	rating := 0
	feedback := ""
	if c.Rating != nil {
		rating = *c.Rating
	}
	if c.Feedback != nil {
		feedback = *c.Feedback
	}
	return Notification{
		Subject: "Feedback Received for Complaint: " + c.Title,
		Body: fmt.Sprintf(`<h1>Feedback Received</h1>
<p>Feedback has been submitted for a resolved complaint.</p>
<ul>
<li><strong>Complaint ID:</strong> %s</li>
<li><strong>Title:</strong> %s</li>
<li><strong>Rating:</strong> %d/5</li>
</ul>
<hr>
<p><strong>Feedback:</strong></p>
<p><em>%q</em></p>`, c.ID, c.Title, rating, feedback),
	}
}

// Multi fans one notification out to several channels. Every channel gets its
// attempt even when an earlier one fails; the failures come back joined.
type Multi struct {
	Channels []Dispatcher
}

// NewMulti builds a fan-out dispatcher, skipping nil channels.
func NewMulti(channels ...Dispatcher) *Multi {
	m := &Multi{}
	for _, ch := range channels {
		if ch != nil {
			m.Channels = append(m.Channels, ch)
		}
	}
	return m
}

func (m *Multi) Dispatch(ctx context.Context, recipients []string, n Notification) error {
	var errs []error
	for _, ch := range m.Channels {
		if err := ch.Dispatch(ctx, recipients, n); err != nil {
			log.Printf("ERROR: Notification channel %T failed: %v", ch, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
