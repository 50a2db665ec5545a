package usecase_test

import (
	"context"
	"strings"
	"testing"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// %PDF prefix so signature validation in the real extractor would accept it;
// the fake extractor ignores content anyway.
var pdfBytes = []byte("%PDF-1.4 fake resume content")

const extractedResume = `Jane Doe
Senior Backend Engineer with Go and PostgreSQL experience.
jane@example.com`

type pipelineFixture struct {
	mailbox   *MockMailbox
	seen      *fakeSeenCache
	jobs      *MockJobRepo
	candidate *MockCandidateRepo
	screening *MockScreeningRepo
	audit     *MockAuditRepo
	metric    *MockMetricRepo
	store     *fakeStore
	pipeline  *usecase.PipelineUsecase
}

func newPipelineFixture(texts map[string]string) *pipelineFixture {
	f := &pipelineFixture{
		mailbox:   new(MockMailbox),
		seen:      newFakeSeenCache(),
		jobs:      new(MockJobRepo),
		candidate: new(MockCandidateRepo),
		screening: new(MockScreeningRepo),
		audit:     new(MockAuditRepo),
		metric:    new(MockMetricRepo),
		store:     newFakeStore(),
	}
	notifier := usecase.NewNotificationUsecase(
		f.mailbox, nil, f.candidate, f.audit, f.metric, "recruiting@auroralabs.dev")
	f.pipeline = usecase.NewPipelineUsecase(usecase.PipelineDeps{
		Mailbox:       f.mailbox,
		Seen:          f.seen,
		Extractor:     &fakeExtractor{texts: texts},
		Parser:        usecase.NewResumeParser(nil, "test-model"),
		Screener:      usecase.NewScreener(nil, "test-model"),
		Positions:     usecase.NewPositionMatcher(f.jobs),
		Store:         f.store,
		CandidateRepo: f.candidate,
		ScreeningRepo: f.screening,
		AuditRepo:     f.audit,
		MetricRepo:    f.metric,
		Notifier:      notifier,
		MailboxQuery:  "has:attachment is:unread",
	})
	return f
}

func (f *pipelineFixture) expectJob() {
	job := &domain.JobDescription{ID: 1, Title: "Backend Engineer", Description: "Go and PostgreSQL services"}
	f.jobs.On("ActiveTitles", mock.Anything).Return([]string{"Backend Engineer"}, nil)
	f.jobs.On("FindByExactTitle", mock.Anything, "Backend Engineer").Return(job, nil)
	f.jobs.On("GetActive", mock.Anything).Return(job, nil)
}

func (f *pipelineFixture) allowWrites() {
	f.audit.On("Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.metric.On("Increment", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func TestProcessMessage(t *testing.T) {
	ctx := context.Background()
	message := &domain.MailMessage{
		ID:      "m1",
		Subject: "Application for Backend Engineer",
		Sender:  "Jane Doe <jane@example.com>",
		Body:    "Please find my resume attached.",
		Attachments: []domain.MailAttachment{
			{Filename: "resume.pdf", AttachmentID: "a1", Data: pdfBytes},
		},
	}

	t.Run("Happy path stores, screens, acknowledges and marks read", func(t *testing.T) {
		f := newPipelineFixture(map[string]string{"resume.pdf": extractedResume})
		f.expectJob()
		f.allowWrites()
		f.audit.On("HasProcessedMessage", mock.Anything, "m1").Return(false, nil)
		f.mailbox.On("GetMessage", mock.Anything, "m1").Return(message, nil)
		f.candidate.On("ExistsByResume", mock.Anything, "jane@example.com", "resume.pdf").Return(false, nil)
		f.candidate.On("Create", mock.Anything, mock.AnythingOfType("*domain.Candidate")).Return("cand-1", nil)
		f.candidate.On("UpdateStatus", mock.Anything, "cand-1", domain.StatusScreened).Return(nil)
		f.screening.On("Create", mock.Anything, mock.AnythingOfType("*domain.ScreeningResult")).Return(int64(1), nil)
		f.mailbox.On("Send", mock.Anything, "jane@example.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.mailbox.On("MarkRead", mock.Anything, "m1").Return(nil)

		err := f.pipeline.ProcessMessage(ctx, "m1")
		assert.NoError(t, err)

		f.candidate.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(c *domain.Candidate) bool {
			return c.SourceEmail == "jane@example.com" &&
				c.Status == domain.StatusProcessing &&
				c.Profile.ResumeFilename == "resume.pdf" &&
				c.Profile.AppliedPosition == "Backend Engineer" &&
				strings.HasPrefix(c.ResumeURL, "file://")
		}))
		f.screening.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(r *domain.ScreeningResult) bool {
			return r.CandidateID == "cand-1" && r.FitScore > 0
		}))
		f.mailbox.AssertCalled(t, "Send", mock.Anything, "jane@example.com",
			"Application Received - Backend Engineer", mock.Anything, mock.Anything)
		f.mailbox.AssertCalled(t, "MarkRead", mock.Anything, "m1")
		f.audit.AssertCalled(t, "Insert", mock.Anything, mock.Anything, domain.AuditEmailProcessed,
			mock.MatchedBy(func(d map[string]any) bool {
				return d["message_id"] == "m1" && d["processed_successfully"] == true
			}))
		f.metric.AssertCalled(t, "Increment", mock.Anything, domain.MetricCandidatesTotal, int64(1))
	})

	t.Run("Message in seen cache is skipped entirely", func(t *testing.T) {
		f := newPipelineFixture(nil)
		_ = f.seen.MarkSeen(ctx, "m1")

		err := f.pipeline.ProcessMessage(ctx, "m1")
		assert.NoError(t, err)

		f.mailbox.AssertNotCalled(t, "GetMessage", mock.Anything, mock.Anything)
		f.audit.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Audit-logged message backfills the cache and is skipped", func(t *testing.T) {
		f := newPipelineFixture(nil)
		f.audit.On("HasProcessedMessage", mock.Anything, "m1").Return(true, nil)

		err := f.pipeline.ProcessMessage(ctx, "m1")
		assert.NoError(t, err)

		seen, _ := f.seen.HasSeen(ctx, "m1")
		assert.True(t, seen)
		f.mailbox.AssertNotCalled(t, "GetMessage", mock.Anything, mock.Anything)
	})

	t.Run("Failed extraction leaves the message unread and unacknowledged", func(t *testing.T) {
		f := newPipelineFixture(map[string]string{}) // extractor yields nothing
		f.expectJob()
		f.allowWrites()
		f.audit.On("HasProcessedMessage", mock.Anything, "m1").Return(false, nil)
		f.mailbox.On("GetMessage", mock.Anything, "m1").Return(message, nil)
		f.candidate.On("ExistsByResume", mock.Anything, "jane@example.com", "resume.pdf").Return(false, nil)

		err := f.pipeline.ProcessMessage(ctx, "m1")
		assert.NoError(t, err)

		f.mailbox.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.mailbox.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
		f.candidate.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.audit.AssertCalled(t, "Insert", mock.Anything, mock.Anything, domain.AuditEmailProcessed,
			mock.MatchedBy(func(d map[string]any) bool {
				return d["processed_successfully"] == false
			}))
	})

	t.Run("Duplicate resume from the same sender is not reprocessed", func(t *testing.T) {
		f := newPipelineFixture(map[string]string{"resume.pdf": extractedResume})
		f.expectJob()
		f.allowWrites()
		f.audit.On("HasProcessedMessage", mock.Anything, "m1").Return(false, nil)
		f.mailbox.On("GetMessage", mock.Anything, "m1").Return(message, nil)
		f.candidate.On("ExistsByResume", mock.Anything, "jane@example.com", "resume.pdf").Return(true, nil)

		err := f.pipeline.ProcessMessage(ctx, "m1")
		assert.NoError(t, err)

		f.candidate.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.mailbox.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
	})

	t.Run("Two attachments produce two candidates but one acknowledgment", func(t *testing.T) {
		multi := &domain.MailMessage{
			ID:      "m2",
			Subject: "Application for Backend Engineer",
			Sender:  "Jane Doe <jane@example.com>",
			Attachments: []domain.MailAttachment{
				{Filename: "resume.pdf", AttachmentID: "a1", Data: pdfBytes},
				{Filename: "resume_v2.pdf", AttachmentID: "a2", Data: pdfBytes},
			},
		}
		f := newPipelineFixture(map[string]string{
			"resume.pdf":    extractedResume,
			"resume_v2.pdf": extractedResume,
		})
		f.expectJob()
		f.allowWrites()
		f.audit.On("HasProcessedMessage", mock.Anything, "m2").Return(false, nil)
		f.mailbox.On("GetMessage", mock.Anything, "m2").Return(multi, nil)
		f.candidate.On("ExistsByResume", mock.Anything, "jane@example.com", mock.Anything).Return(false, nil)
		f.candidate.On("Create", mock.Anything, mock.Anything).Return("cand-1", nil)
		f.candidate.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.screening.On("Create", mock.Anything, mock.Anything).Return(int64(1), nil)
		f.mailbox.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.mailbox.On("MarkRead", mock.Anything, "m2").Return(nil)

		err := f.pipeline.ProcessMessage(ctx, "m2")
		assert.NoError(t, err)

		f.candidate.AssertNumberOfCalls(t, "Create", 2)
		f.mailbox.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("Repeated attachment id within one email is processed once", func(t *testing.T) {
		dup := &domain.MailMessage{
			ID:      "m3",
			Subject: "Application for Backend Engineer",
			Sender:  "Jane Doe <jane@example.com>",
			Attachments: []domain.MailAttachment{
				{Filename: "resume.pdf", AttachmentID: "a1", Data: pdfBytes},
				{Filename: "resume.pdf", AttachmentID: "a1", Data: pdfBytes},
			},
		}
		f := newPipelineFixture(map[string]string{"resume.pdf": extractedResume})
		f.expectJob()
		f.allowWrites()
		f.audit.On("HasProcessedMessage", mock.Anything, "m3").Return(false, nil)
		f.mailbox.On("GetMessage", mock.Anything, "m3").Return(dup, nil)
		f.candidate.On("ExistsByResume", mock.Anything, "jane@example.com", "resume.pdf").Return(false, nil)
		f.candidate.On("Create", mock.Anything, mock.Anything).Return("cand-1", nil)
		f.candidate.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.screening.On("Create", mock.Anything, mock.Anything).Return(int64(1), nil)
		f.mailbox.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.mailbox.On("MarkRead", mock.Anything, "m3").Return(nil)

		err := f.pipeline.ProcessMessage(ctx, "m3")
		assert.NoError(t, err)

		f.candidate.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestProcessNewEmails(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns 503 when the mailbox never authenticated", func(t *testing.T) {
		f := newPipelineFixture(nil)
		p := usecase.NewPipelineUsecase(usecase.PipelineDeps{
			Seen:          f.seen,
			CandidateRepo: f.candidate,
			AuditRepo:     f.audit,
		})

		err := p.ProcessNewEmails(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not authenticated")
	})

	t.Run("One failing message does not stop the batch", func(t *testing.T) {
		f := newPipelineFixture(nil)
		f.mailbox.On("ListUnread", mock.Anything, "has:attachment is:unread").Return([]string{"bad", "good"}, nil)
		f.audit.On("HasProcessedMessage", mock.Anything, "bad").Return(false, assert.AnError)
		f.audit.On("HasProcessedMessage", mock.Anything, "good").Return(true, nil)

		err := f.pipeline.ProcessNewEmails(ctx)
		assert.NoError(t, err)

		seen, _ := f.seen.HasSeen(ctx, "good")
		assert.True(t, seen)
	})
}
