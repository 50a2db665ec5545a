package usecase

import (
	"context"
	"errors"
	"time"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/apperror"
	"resume-screening-backend/pkg/logger"
)

// PipelineUsecase drives an application from unread email to screened
// candidate: dedup, extract, parse, validate, persist, screen, acknowledge.
type PipelineUsecase struct {
	mailbox       domain.Mailbox
	seen          domain.SeenCache
	extractor     domain.TextExtractor
	parser        *ResumeParser
	screener      *Screener
	positions     *PositionMatcher
	store         domain.ResumeStore
	candidateRepo domain.CandidateRepository
	screeningRepo domain.ScreeningRepository
	auditRepo     domain.AuditRepository
	metricRepo    domain.MetricRepository
	notifier      *NotificationUsecase
	mailboxQuery  string
}

type PipelineDeps struct {
	Mailbox       domain.Mailbox
	Seen          domain.SeenCache
	Extractor     domain.TextExtractor
	Parser        *ResumeParser
	Screener      *Screener
	Positions     *PositionMatcher
	Store         domain.ResumeStore
	CandidateRepo domain.CandidateRepository
	ScreeningRepo domain.ScreeningRepository
	AuditRepo     domain.AuditRepository
	MetricRepo    domain.MetricRepository
	Notifier      *NotificationUsecase
	MailboxQuery  string
}

func NewPipelineUsecase(d PipelineDeps) *PipelineUsecase {
	return &PipelineUsecase{
		mailbox:       d.Mailbox,
		seen:          d.Seen,
		extractor:     d.Extractor,
		parser:        d.Parser,
		screener:      d.Screener,
		positions:     d.Positions,
		store:         d.Store,
		candidateRepo: d.CandidateRepo,
		screeningRepo: d.ScreeningRepo,
		auditRepo:     d.AuditRepo,
		metricRepo:    d.MetricRepo,
		notifier:      d.Notifier,
		mailboxQuery:  d.MailboxQuery,
	}
}

// ProcessNewEmails runs one poll cycle. Per-message failures are logged and
// do not stop the batch.
func (p *PipelineUsecase) ProcessNewEmails(ctx context.Context) error {
	if p.mailbox == nil {
		return apperror.Unavailable(errors.New("mailbox service not authenticated"))
	}
	logger.Log.Info("Checking for new emails")
	ids, err := p.mailbox.ListUnread(ctx, p.mailboxQuery)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := p.ProcessMessage(ctx, id); err != nil {
			logger.Log.Error("Error processing message", "message_id", id, "error", err)
		}
	}
	return nil
}

// attachmentResult carries what the acknowledgment email needs from a
// successfully processed attachment.
type attachmentResult struct {
	ok            bool
	candidateName string
	position      string
}

// ProcessMessage handles one inbound email end to end. A message is marked
// read and acknowledged only when at least one attachment was processed to
// completion; failed messages stay unread for the next cycle.
func (p *PipelineUsecase) ProcessMessage(ctx context.Context, messageID string) error {
	seen, err := p.seen.HasSeen(ctx, messageID)
	if err != nil {
		logger.Log.Warn("Seen-cache check failed, relying on audit log", "error", err)
	}
	if seen {
		logger.Log.Info("Message already processed in cache, skipping", "message_id", messageID)
		return nil
	}

	processed, err := p.auditRepo.HasProcessedMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if processed {
		logger.Log.Info("Message already processed per audit log, skipping", "message_id", messageID)
		if cacheErr := p.seen.MarkSeen(ctx, messageID); cacheErr != nil {
			logger.Log.Warn("Failed to backfill seen cache", "error", cacheErr)
		}
		return nil
	}

	msg, err := p.mailbox.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}

	senderName, senderEmail := ParseSender(msg.Sender)

	logger.Log.Info("Processing message", "message_id", messageID, "sender", senderEmail)
	if err := p.seen.MarkSeen(ctx, messageID); err != nil {
		logger.Log.Warn("Failed to mark message seen", "error", err)
	}

	if err := p.auditRepo.Insert(ctx, nil, domain.AuditEmailProcessingStarted, map[string]any{
		"message_id": messageID,
		"timestamp":  time.Now().Unix(),
	}); err != nil {
		logger.Log.Error("Failed to record processing start", "error", err)
	}

	result := attachmentResult{candidateName: senderName}
	seenAttachments := map[string]bool{}
	for _, att := range msg.Attachments {
		key := att.AttachmentID
		if key == "" {
			key = att.Filename
		}
		if seenAttachments[key] {
			logger.Log.Info("Duplicate attachment within email, skipping", "filename", att.Filename)
			continue
		}
		seenAttachments[key] = true

		r := p.processAttachment(ctx, att, senderEmail, senderName, msg.Subject, msg.Body)
		if r.ok {
			result.ok = true
			result.candidateName = r.candidateName
			result.position = r.position
		}
	}

	// one acknowledgment per email, never per attachment
	if result.ok {
		if err := p.notifier.SendAcknowledgement(ctx, result.candidateName, senderEmail, result.position); err != nil {
			logger.Log.Error("Failed to send acknowledgment", "error", err)
		}
		if err := p.mailbox.MarkRead(ctx, messageID); err != nil {
			logger.Log.Error("Failed to mark message read", "error", err)
		} else {
			logger.Log.Info("Email marked as read after successful processing", "message_id", messageID)
		}
	} else {
		logger.Log.Warn("Email not marked as read due to processing failure, will be retried", "message_id", messageID)
	}

	return p.auditRepo.Insert(ctx, nil, domain.AuditEmailProcessed, map[string]any{
		"message_id":             messageID,
		"sender_email":           senderEmail,
		"processed_successfully": result.ok,
		"timestamp":              time.Now().Unix(),
	})
}

func (p *PipelineUsecase) processAttachment(ctx context.Context, att domain.MailAttachment, senderEmail, senderName, subject, body string) attachmentResult {
	failed := attachmentResult{candidateName: senderName}
	logger.Log.Info("Processing resume", "filename", att.Filename)

	position := p.positions.Detect(ctx, subject, body)
	logger.Log.Info("Detected application position", "position", position)

	jobDesc, err := p.positions.JobFor(ctx, position)
	if err != nil {
		logger.Log.Error("Failed to resolve job description", "error", err)
		return failed
	}
	if jobDesc == nil {
		logger.Log.Warn("No job description found for position", "position", position)
		return failed
	}

	duplicate, err := p.candidateRepo.ExistsByResume(ctx, senderEmail, att.Filename)
	if err != nil {
		logger.Log.Error("Duplicate check failed", "error", err)
		return failed
	}
	if duplicate {
		logger.Log.Info("Resume already processed, skipping",
			"filename", att.Filename, "sender", senderEmail)
		return failed
	}

	extracted := p.extractor.Extract(att.Data, att.Filename)
	if extracted == "" {
		logger.Log.Warn("No text extracted from attachment", "filename", att.Filename)
		return failed
	}

	logger.Log.Info("Parsing resume with AI")
	profile := p.parser.Parse(ctx, extracted)
	profile.ResumeFilename = att.Filename
	profile.AppliedPosition = position

	flags := ValidateCandidate(profile, senderEmail, senderName)

	resumeURL, err := p.store.Save(ctx, att.Filename, att.Data)
	if err != nil {
		logger.Log.Error("Failed to store resume file", "error", err)
		return failed
	}

	candidate := &domain.Candidate{
		SourceEmail:     senderEmail,
		SenderName:      senderName,
		EmailSubject:    subject,
		RawEmailBody:    body,
		ResumeURL:       resumeURL,
		ExtractedText:   extracted,
		Profile:         profile,
		ValidationFlags: flags,
		Status:          domain.StatusProcessing,
	}
	candidateID, err := p.candidateRepo.Create(ctx, candidate)
	if err != nil {
		logger.Log.Error("Failed to store candidate", "error", err)
		return failed
	}
	logger.Log.Info("Candidate stored", "candidate_id", candidateID)

	if err := p.metricRepo.Increment(ctx, domain.MetricCandidatesTotal, 1); err != nil {
		logger.Log.Warn("Failed to increment candidate counter", "error", err)
	}
	if err := p.auditRepo.Insert(ctx, &candidateID, domain.AuditEmailReceived, map[string]any{
		"sender":   senderEmail,
		"filename": att.Filename,
	}); err != nil {
		logger.Log.Error("Failed to record email_received", "error", err)
	}

	logger.Log.Info("Screening candidate with AI", "position", position)
	analysis := p.screener.Screen(ctx, profile, jobDesc.Description)
	comments := p.screener.RecruiterComments(ctx, profile, analysis)

	concerns := analysis.SpecificConcerns
	screening := &domain.ScreeningResult{
		CandidateID:       candidateID,
		JobDescription:    jobDesc.Description,
		FitScore:          analysis.FitScore,
		Summary:           analysis.Summary,
		MatchingSkills:    analysis.MatchingSkills,
		Concerns:          concerns,
		RecruiterComments: comments,
		Analysis:          analysis,
	}
	if _, err := p.screeningRepo.Create(ctx, screening); err != nil {
		logger.Log.Error("Failed to store screening result", "error", err)
		return failed
	}
	logger.Log.Info("Screening completed", "position", position, "fit_score", analysis.FitScore)

	if err := p.auditRepo.Insert(ctx, &candidateID, domain.AuditScreeningCompleted, map[string]any{
		"fit_score": analysis.FitScore,
		"position":  position,
		"job_id":    jobDesc.ID,
	}); err != nil {
		logger.Log.Error("Failed to record screening_completed", "error", err)
	}

	if err := p.candidateRepo.UpdateStatus(ctx, candidateID, domain.StatusScreened); err != nil {
		logger.Log.Error("Failed to update candidate status", "error", err)
	}

	name := profile.FullName
	if name == "" {
		name = senderName
	}
	logger.Log.Info("Processing completed", "filename", att.Filename)
	return attachmentResult{ok: true, candidateName: name, position: position}
}
