package usecase_test

import (
	"context"
	"testing"
	"time"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func screenedCandidate(fitScore int) *domain.CandidateWithScreening {
	return &domain.CandidateWithScreening{
		Candidate: domain.Candidate{
			ID:          "cand-1",
			SourceEmail: "jane@example.com",
			SenderName:  "Jane Doe",
			Status:      domain.StatusScreened,
		},
		FitScore:       intPtr(fitScore),
		JobDescription: strPtr("Backend Engineer. Build Go services at scale."),
		Analysis: &domain.ScreeningAnalysis{
			FitScore:          fitScore,
			Summary:           "Solid backend background.",
			MatchingSkills:    []string{"go", "postgresql"},
			SpecificStrengths: []string{"Strong Go experience"},
			SpecificConcerns:  []string{"Limited cloud exposure"},
		},
	}
}

func TestSendAcknowledgement(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty position defaults to open", func(t *testing.T) {
		mailbox := new(MockMailbox)
		mailbox.On("Send", mock.Anything, "jane@example.com", "Application Received - open",
			mock.Anything, mock.Anything).Return(nil)
		n := usecase.NewNotificationUsecase(mailbox, nil, nil, nil, nil, "recruiting@auroralabs.dev")

		err := n.SendAcknowledgement(ctx, "Jane", "jane@example.com", "")
		assert.NoError(t, err)
		mailbox.AssertExpectations(t)
	})

	t.Run("Offline mailbox is reported, not a panic", func(t *testing.T) {
		n := usecase.NewNotificationUsecase(nil, nil, nil, nil, nil, "recruiting@auroralabs.dev")
		err := n.SendAcknowledgement(ctx, "Jane", "jane@example.com", "Backend Engineer")
		assert.Error(t, err)
	})
}

func TestSendInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("Books calendar, attaches ics and marks invited", func(t *testing.T) {
		mailbox := new(MockMailbox)
		calendar := new(MockCalendar)
		candidates := new(MockCandidateRepo)
		audit := new(MockAuditRepo)
		metric := new(MockMetricRepo)

		candidates.On("GetByID", mock.Anything, "cand-1").Return(screenedCandidate(85), nil)
		candidates.On("UpdateStatus", mock.Anything, "cand-1", domain.StatusInterviewInvite).Return(nil)
		calendar.On("CreateEvent", mock.Anything, mock.AnythingOfType("domain.CalendarEvent")).Return(nil)
		audit.On("Insert", mock.Anything, mock.Anything, domain.AuditInviteSent, mock.Anything).Return(nil)
		metric.On("Increment", mock.Anything, domain.MetricInvitesSent, int64(1)).Return(nil)

		var sentAttachments []domain.OutgoingAttachment
		var sentBody string
		mailbox.On("Send", mock.Anything, "jane@example.com", "Interview Update at Aurora Labs",
			mock.Anything, mock.Anything).Return(nil).
			Run(func(args mock.Arguments) {
				sentBody = args.String(3)
				sentAttachments = args.Get(4).([]domain.OutgoingAttachment)
			})

		n := usecase.NewNotificationUsecase(mailbox, calendar, candidates, audit, metric, "recruiting@auroralabs.dev")
		start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		err := n.SendInvite(ctx, "cand-1", usecase.InviteOptions{Start: start, End: start.Add(30 * time.Minute)})

		assert.NoError(t, err)
		assert.Contains(t, sentBody, "Jane Doe")
		assert.Contains(t, sentBody, "Strong Go experience")
		assert.Contains(t, sentBody, "has been sent to your calendar")
		if assert.Len(t, sentAttachments, 1) {
			assert.Equal(t, "invite.ics", sentAttachments[0].Filename)
			assert.Equal(t, "text/calendar", sentAttachments[0].MimeType)
			assert.Contains(t, string(sentAttachments[0].Data), "BEGIN:VCALENDAR")
		}
		candidates.AssertCalled(t, "UpdateStatus", mock.Anything, "cand-1", domain.StatusInterviewInvite)
		metric.AssertCalled(t, "Increment", mock.Anything, domain.MetricInvitesSent, int64(1))
	})

	t.Run("Calendar failure still sends the email with the ics", func(t *testing.T) {
		mailbox := new(MockMailbox)
		calendar := new(MockCalendar)
		candidates := new(MockCandidateRepo)
		audit := new(MockAuditRepo)
		metric := new(MockMetricRepo)

		candidates.On("GetByID", mock.Anything, "cand-1").Return(screenedCandidate(85), nil)
		candidates.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		calendar.On("CreateEvent", mock.Anything, mock.Anything).Return(assert.AnError)
		audit.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		metric.On("Increment", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		var sentBody string
		mailbox.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) { sentBody = args.String(3) })

		n := usecase.NewNotificationUsecase(mailbox, calendar, candidates, audit, metric, "recruiting@auroralabs.dev")
		err := n.SendInvite(ctx, "cand-1", usecase.InviteOptions{})

		assert.NoError(t, err)
		assert.Contains(t, sentBody, "The calendar invitation is attached to this email.")
	})

	t.Run("Unknown candidate returns not found", func(t *testing.T) {
		mailbox := new(MockMailbox)
		candidates := new(MockCandidateRepo)
		candidates.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

		n := usecase.NewNotificationUsecase(mailbox, nil, candidates, nil, nil, "recruiting@auroralabs.dev")
		err := n.SendInvite(ctx, "ghost", usecase.InviteOptions{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestSendPendingFeedback(t *testing.T) {
	ctx := context.Background()

	setup := func(list []domain.CandidateWithScreening) (*MockMailbox, *usecase.NotificationUsecase, *MockCandidateRepo) {
		mailbox := new(MockMailbox)
		candidates := new(MockCandidateRepo)
		audit := new(MockAuditRepo)
		metric := new(MockMetricRepo)
		candidates.On("List", mock.Anything).Return(list, nil)
		candidates.On("UpdateStatus", mock.Anything, mock.Anything, domain.StatusFeedbackSent).Return(nil)
		audit.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		metric.On("Increment", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		n := usecase.NewNotificationUsecase(mailbox, nil, candidates, audit, metric, "recruiting@auroralabs.dev")
		return mailbox, n, candidates
	}

	t.Run("High scorers get the encouraging template", func(t *testing.T) {
		mailbox, n, _ := setup([]domain.CandidateWithScreening{*screenedCandidate(75)})
		var sentBody string
		mailbox.On("Send", mock.Anything, "jane@example.com", "Application Update - Backend Engineer at Aurora Labs",
			mock.Anything, mock.Anything).Return(nil).
			Run(func(args mock.Arguments) { sentBody = args.String(3) })

		sent, failures, err := n.SendPendingFeedback(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Empty(t, failures)
		assert.Contains(t, sentBody, "Strengths we noticed")
		assert.NotContains(t, sentBody, "Areas to improve")
	})

	t.Run("Low scorers get improvement guidance with default resources", func(t *testing.T) {
		cand := screenedCandidate(45)
		cand.Analysis.Resources = nil
		mailbox, n, _ := setup([]domain.CandidateWithScreening{*cand})
		var sentBody string
		mailbox.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) { sentBody = args.String(3) })

		sent, _, err := n.SendPendingFeedback(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Contains(t, sentBody, "Areas to improve")
		assert.Contains(t, sentBody, "AWS Cloud Practitioner")
	})

	t.Run("Already-notified candidates are skipped", func(t *testing.T) {
		invited := screenedCandidate(80)
		invited.Status = domain.StatusInterviewInvite
		done := screenedCandidate(70)
		done.Status = domain.StatusFeedbackSent
		mailbox, n, _ := setup([]domain.CandidateWithScreening{*invited, *done})

		sent, failures, err := n.SendPendingFeedback(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, sent)
		assert.Empty(t, failures)
		mailbox.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Send failures are reported per candidate", func(t *testing.T) {
		mailbox, n, _ := setup([]domain.CandidateWithScreening{*screenedCandidate(70)})
		mailbox.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)

		sent, failures, err := n.SendPendingFeedback(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, sent)
		if assert.Len(t, failures, 1) {
			assert.Equal(t, "cand-1", failures[0].ID)
			assert.Equal(t, "jane@example.com", failures[0].Email)
		}
	})

	t.Run("Offline mailbox returns service unavailable", func(t *testing.T) {
		n := usecase.NewNotificationUsecase(nil, nil, nil, nil, nil, "recruiting@auroralabs.dev")
		_, _, err := n.SendPendingFeedback(ctx)
		assert.Error(t, err)
	})
}
