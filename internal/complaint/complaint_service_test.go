package complaint_test

import (
	"context"
	"errors"
	"testing"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestService(storageMock *MockStorage, evidenceMock *MockEvidenceStore, dispatcherMock *MockDispatcher) *complaint.Service {
	return complaint.NewService(storageMock, evidenceMock, dispatcherMock, nil)
}

// TestSubmitPersistsAndReturnsID verifies that a valid submission without
// evidence creates a Submitted record and returns its id.
func TestSubmitPersistsAndReturnsID(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	evidenceMock := new(MockEvidenceStore)
	dispatcherMock := new(MockDispatcher)
	svc := newTestService(storageMock, evidenceMock, dispatcherMock)

	evidenceMock.On("Save", mock.Anything, mock.Anything).Return([]string{}, nil).Once()
	storageMock.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Complaint).ID = "c-1"
		}).Return(nil).Once()
	storageMock.On("ListAdminEmails").Return([]string{"admin@example.com"}, nil).Once()
	dispatcherMock.On("Dispatch", mock.Anything, []string{"admin@example.com"}, mock.Anything).Return(nil).Once()

	// Act
	id, err := svc.Submit(context.Background(), "Broken light", "The corridor light is out", models.CategoryInfrastructure, nil)
	svc.Wait()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "c-1", id)
	storageMock.AssertExpectations(t)
	evidenceMock.AssertExpectations(t)
	dispatcherMock.AssertExpectations(t)

	created := storageMock.Calls[0].Arguments.Get(0).(*models.Complaint)
	assert.Equal(t, models.StatusSubmitted, created.Status)
	assert.Empty(t, created.EvidenceRefs)
}

// TestSubmitRejectsInvalidInput covers the validation failures that must
// happen before any evidence write or repository call.
func TestSubmitRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		description string
		category    string
	}{
		{"empty title", "", "desc", models.CategorySecurity},
		{"blank title", "   ", "desc", models.CategorySecurity},
		{"empty description", "title", "", models.CategorySecurity},
		{"unknown category", "title", "desc", "Astrology"},
		{"empty category", "title", "desc", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storageMock := new(MockStorage)
			evidenceMock := new(MockEvidenceStore)
			svc := newTestService(storageMock, evidenceMock, new(MockDispatcher))

			_, err := svc.Submit(context.Background(), tc.title, tc.description, tc.category, nil)

			assert.ErrorIs(t, err, apperr.ErrValidation)
			storageMock.AssertNotCalled(t, "CreateComplaint", mock.Anything)
			evidenceMock.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

// TestSubmitEvidenceRejectionFailsWholeSubmission verifies the
// reject-one-reject-all policy: a rejected file means no record is created.
func TestSubmitEvidenceRejectionFailsWholeSubmission(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	evidenceMock := new(MockEvidenceStore)
	svc := newTestService(storageMock, evidenceMock, new(MockDispatcher))

	evidenceMock.On("Save", mock.Anything, mock.Anything).
		Return(nil, apperr.UnsupportedMedia("virus.exe")).Once()

	// Act
	_, err := svc.Submit(context.Background(), "title", "desc", models.CategoryOther, nil)

	// Assert
	assert.ErrorIs(t, err, apperr.ErrUnsupportedMedia)
	storageMock.AssertNotCalled(t, "CreateComplaint", mock.Anything)
}

// TestSubmitDispatchFailureDoesNotFailSubmit simulates a transport error and
// checks that the caller still receives the new id with no error.
func TestSubmitDispatchFailureDoesNotFailSubmit(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	evidenceMock := new(MockEvidenceStore)
	dispatcherMock := new(MockDispatcher)
	svc := newTestService(storageMock, evidenceMock, dispatcherMock)

	evidenceMock.On("Save", mock.Anything, mock.Anything).Return([]string{}, nil).Once()
	storageMock.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Complaint).ID = "c-2"
		}).Return(nil).Once()
	storageMock.On("ListAdminEmails").Return([]string{"admin@example.com"}, nil).Once()
	dispatcherMock.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp: connection refused")).Once()

	// Act
	id, err := svc.Submit(context.Background(), "title", "desc", models.CategorySanitation, nil)
	svc.Wait()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "c-2", id)
	dispatcherMock.AssertExpectations(t)
}

// TestSubmitSkipsDispatchOnEmptyRoster verifies the caller-side guard: no
// admins means no dispatch attempt at all.
func TestSubmitSkipsDispatchOnEmptyRoster(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	evidenceMock := new(MockEvidenceStore)
	dispatcherMock := new(MockDispatcher)
	svc := newTestService(storageMock, evidenceMock, dispatcherMock)

	evidenceMock.On("Save", mock.Anything, mock.Anything).Return([]string{}, nil).Once()
	storageMock.On("CreateComplaint", mock.Anything).Return(nil).Once()
	storageMock.On("ListAdminEmails").Return([]string{}, nil).Once()

	// Act
	_, err := svc.Submit(context.Background(), "title", "desc", models.CategoryFaculty, nil)
	svc.Wait()

	// Assert
	assert.NoError(t, err)
	dispatcherMock.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateStatus covers the round trip, the enum check and the unknown id.
func TestUpdateStatus(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		storageMock := new(MockStorage)
		svc := newTestService(storageMock, new(MockEvidenceStore), new(MockDispatcher))

		updated := &models.Complaint{ID: "c-3", Status: models.StatusResolved}
		storageMock.On("UpdateComplaintStatus", "c-3", models.StatusResolved).Return(updated, nil).Once()

		got, err := svc.UpdateStatus("c-3", models.StatusResolved)

		assert.NoError(t, err)
		assert.Equal(t, models.StatusResolved, got.Status)
		storageMock.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		storageMock := new(MockStorage)
		svc := newTestService(storageMock, new(MockEvidenceStore), new(MockDispatcher))

		_, err := svc.UpdateStatus("c-3", "Escalated")

		assert.ErrorIs(t, err, apperr.ErrValidation)
		storageMock.AssertNotCalled(t, "UpdateComplaintStatus", mock.Anything, mock.Anything)
	})

	t.Run("unknown id", func(t *testing.T) {
		storageMock := new(MockStorage)
		svc := newTestService(storageMock, new(MockEvidenceStore), new(MockDispatcher))

		storageMock.On("UpdateComplaintStatus", "missing", models.StatusRejected).
			Return(nil, apperr.NotFound("complaint missing")).Once()

		_, err := svc.UpdateStatus("missing", models.StatusRejected)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

// TestSubmitFeedbackSuccess verifies the happy path including the detached
// feedback notification.
func TestSubmitFeedbackSuccess(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	dispatcherMock := new(MockDispatcher)
	svc := newTestService(storageMock, new(MockEvidenceStore), dispatcherMock)

	existing := &models.Complaint{ID: "c-4", Title: "Broken light", Status: models.StatusResolved}
	feedback := "Great, fixed fast"
	rating := 5
	updated := &models.Complaint{ID: "c-4", Title: "Broken light", Feedback: &feedback, Rating: &rating}

	storageMock.On("GetComplaintByID", "c-4").Return(existing, nil).Once()
	storageMock.On("AttachFeedback", "c-4", feedback, rating).Return(updated, nil).Once()
	storageMock.On("ListAdminEmails").Return([]string{"admin@example.com"}, nil).Once()
	dispatcherMock.On("Dispatch", mock.Anything, []string{"admin@example.com"}, mock.Anything).Return(nil).Once()

	// Act
	msg, err := svc.SubmitFeedback("c-4", feedback, rating)
	svc.Wait()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Thank you for your feedback!", msg)
	storageMock.AssertExpectations(t)
	dispatcherMock.AssertExpectations(t)
}

// TestSubmitFeedbackConflictOnResubmission verifies the once-per-complaint
// gate: a record that already carries feedback rejects a second submission.
func TestSubmitFeedbackConflictOnResubmission(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	svc := newTestService(storageMock, new(MockEvidenceStore), new(MockDispatcher))

	prior := "already said it"
	priorRating := 3
	existing := &models.Complaint{ID: "c-5", Feedback: &prior, Rating: &priorRating}
	storageMock.On("GetComplaintByID", "c-5").Return(existing, nil).Once()

	// Act
	_, err := svc.SubmitFeedback("c-5", "second attempt", 4)

	// Assert
	assert.ErrorIs(t, err, apperr.ErrConflict)
	storageMock.AssertNotCalled(t, "AttachFeedback", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubmitFeedbackValidation checks that bad ratings and empty feedback are
// rejected before any record is read or mutated.
func TestSubmitFeedbackValidation(t *testing.T) {
	cases := []struct {
		name     string
		feedback string
		rating   int
	}{
		{"rating too low", "fine", 0},
		{"rating too high", "fine", 6},
		{"negative rating", "fine", -1},
		{"empty feedback", "", 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			storageMock := new(MockStorage)
			svc := newTestService(storageMock, new(MockEvidenceStore), new(MockDispatcher))

			_, err := svc.SubmitFeedback("c-6", tc.feedback, tc.rating)

			assert.ErrorIs(t, err, apperr.ErrValidation)
			storageMock.AssertNotCalled(t, "GetComplaintByID", mock.Anything)
			storageMock.AssertNotCalled(t, "AttachFeedback", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// TestSubmitFeedbackNotFound verifies the unknown-id failure.
func TestSubmitFeedbackNotFound(t *testing.T) {
	storageMock := new(MockStorage)
	svc := newTestService(storageMock, new(MockEvidenceStore), new(MockDispatcher))

	storageMock.On("GetComplaintByID", "missing").Return(nil, apperr.NotFound("complaint missing")).Once()

	_, err := svc.SubmitFeedback("missing", "feedback", 4)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// TestSubmitFeedbackDispatchFailureDoesNotFail mirrors the submit-side
// swallow policy for the feedback notification.
func TestSubmitFeedbackDispatchFailureDoesNotFail(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	dispatcherMock := new(MockDispatcher)
	svc := newTestService(storageMock, new(MockEvidenceStore), dispatcherMock)

	existing := &models.Complaint{ID: "c-7", Title: "Leaky tap"}
	feedback := "ok"
	rating := 2
	updated := &models.Complaint{ID: "c-7", Title: "Leaky tap", Feedback: &feedback, Rating: &rating}

	storageMock.On("GetComplaintByID", "c-7").Return(existing, nil).Once()
	storageMock.On("AttachFeedback", "c-7", feedback, rating).Return(updated, nil).Once()
	storageMock.On("ListAdminEmails").Return(nil, errors.New("db gone")).Once()

	// Act
	msg, err := svc.SubmitFeedback("c-7", feedback, rating)
	svc.Wait()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Thank you for your feedback!", msg)
	dispatcherMock.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}
