package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/apperror"
	gmailmsg "resume-screening-backend/pkg/gmail"
	"resume-screening-backend/pkg/logger"
)

const ackTemplate = `<p>Dear {{.Name}},</p>

<p>Thank you for applying to the {{.Position}} position at Aurora Labs. We have received your application and resume.</p>

<p>Our team will review your qualifications and reach out if your profile matches our requirements.</p>

<p>We appreciate your interest in joining our team!</p>

<p>Best regards,<br/>
Aurora Labs Recruitment Team</p>`

const inviteTemplate = `<p>Dear {{.Name}},</p>
<p>We'd love to invite you to a conversation about the <strong>{{.Position}}</strong> position. Below are a few things that stood out from your application:</p>
<h4>What impressed us</h4>
<ul>{{range .Strengths}}<li>{{.}}</li>{{end}}</ul>
<p>{{.CalendarStatus}} You can accept or propose a new time by replying to this message.</p>
<p>Warm regards,<br/>Aurora Labs Recruitment Team</p>`

const feedbackHighTemplate = `<p>Dear {{.Name}},</p>
<p>Thank you for applying to the {{.Position}} position. We appreciated reviewing your application.</p>
<p><strong>Fit score:</strong> {{.FitScore}}</p>
<h4>Strengths we noticed</h4>
<ul>{{range .Strengths}}<li>{{.}}</li>{{end}}</ul>
{{if .Concerns}}<h4>Concerns</h4>
<ul>{{range .Concerns}}<li>{{.}}</li>{{end}}</ul>{{end}}
<h4>Suggested next steps</h4>
<p>To improve your chances for similar roles, consider gaining hands-on cloud experience and public projects demonstrating that work.</p>
<h4>Recommended resources</h4>
<ul>{{range .Resources}}<li>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</li>{{end}}</ul>
<p>We appreciate your interest and encourage you to apply again when you have updates to your profile.</p>
<p>Best regards,<br/>Aurora Labs Recruitment Team</p>`

const feedbackLowTemplate = `<p>Dear {{.Name}},</p>
<p>Thank you for applying to the {{.Position}} position. We value your interest and want to help you improve.</p>
<p><strong>Fit score:</strong> {{.FitScore}}</p>
<h4>Areas to improve</h4>
<ul>{{if .Concerns}}{{range .Concerns}}<li>{{.}}</li>{{end}}{{else}}<li>Provide clearer evidence of hands-on experience in targeted technologies.</li>{{end}}</ul>
<h4>Suggested next steps</h4>
<p>Work on short projects that demonstrate applied skills (e.g., deploy a simple app to AWS/GCP, open-source contributions, or a design doc for a service you built).</p>
<h4>Recommended resources</h4>
<ul>{{range .Resources}}<li>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</li>{{end}}</ul>
<p>We hope these suggestions help. Please reapply after gaining experience in the suggested areas.</p>
<p>Best regards,<br/>Aurora Labs Recruitment Team</p>`

var (
	ackTmpl          = template.Must(template.New("ack").Parse(ackTemplate))
	inviteTmpl       = template.Must(template.New("invite").Parse(inviteTemplate))
	feedbackHighTmpl = template.Must(template.New("feedback_high").Parse(feedbackHighTemplate))
	feedbackLowTmpl  = template.Must(template.New("feedback_low").Parse(feedbackLowTemplate))
)

// defaultResources back-fill the feedback email when screening produced no
// AI-suggested resources for a low-scoring candidate.
var defaultResources = []feedbackResource{
	{Title: "AWS Cloud Practitioner", URL: "https://www.aws.training/Details/Curriculum?id=20685"},
	{Title: "GCP Fundamentals", URL: "https://cloud.google.com/training"},
	{Title: "System Design: Grokking", URL: "https://www.educative.io/courses/grokking-the-system-design-interview"},
	{Title: "Full Stack Open", URL: "https://fullstackopen.com/en/"},
}

type feedbackResource struct {
	Title string
	URL   string
}

// NotificationUsecase owns all outbound candidate email: acknowledgments,
// interview invites with calendar booking, and end-of-review feedback.
type NotificationUsecase struct {
	mailbox       domain.Mailbox
	calendar      domain.CalendarScheduler
	candidateRepo domain.CandidateRepository
	auditRepo     domain.AuditRepository
	metricRepo    domain.MetricRepository
	senderEmail   string
}

func NewNotificationUsecase(
	mailbox domain.Mailbox,
	calendar domain.CalendarScheduler,
	candidateRepo domain.CandidateRepository,
	auditRepo domain.AuditRepository,
	metricRepo domain.MetricRepository,
	senderEmail string,
) *NotificationUsecase {
	return &NotificationUsecase{
		mailbox:       mailbox,
		calendar:      calendar,
		candidateRepo: candidateRepo,
		auditRepo:     auditRepo,
		metricRepo:    metricRepo,
		senderEmail:   senderEmail,
	}
}

// errMailboxOffline is returned when sends are attempted while the mail
// provider could not be authenticated at startup.
var errMailboxOffline = errors.New("mailbox service not available")

func (n *NotificationUsecase) SendAcknowledgement(ctx context.Context, name, email, position string) error {
	if n.mailbox == nil {
		return errMailboxOffline
	}
	if position == "" {
		position = "open"
	}
	var body bytes.Buffer
	if err := ackTmpl.Execute(&body, map[string]string{"Name": name, "Position": position}); err != nil {
		return err
	}
	subject := fmt.Sprintf("Application Received - %s", position)
	return n.mailbox.Send(ctx, email, subject, body.String(), nil)
}

// InviteOptions carries an optional recruiter-chosen interview slot. When
// empty the slot defaults to tomorrow at the top of the hour, 30 minutes.
type InviteOptions struct {
	Start time.Time
	End   time.Time
}

// SendInvite emails an interview invite to a screened candidate, books a
// calendar event (best effort), and always attaches a bookable .ics.
func (n *NotificationUsecase) SendInvite(ctx context.Context, candidateID string, opts InviteOptions) error {
	if n.mailbox == nil {
		return apperror.Unavailable(errMailboxOffline)
	}
	cand, err := n.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("candidate not found")
		}
		return err
	}

	name := strings.TrimSpace(cand.SenderName)
	if name == "" {
		name = cand.Profile.FullName
	}
	if name == "" {
		name = "Applicant"
	}

	strengths, _, summary := analysisHighlights(cand)

	position := "the role"
	if cand.JobDescription != nil && *cand.JobDescription != "" {
		position = *cand.JobDescription
	}
	short := shortPosition(position)

	start := opts.Start
	end := opts.End
	if start.IsZero() || end.IsZero() {
		start = time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
		end = start.Add(30 * time.Minute)
	}

	description := fmt.Sprintf(
		"Hi %s,\n\nThank you for your interest. This is your interview slot.\n\nWhat impressed us:\n%s\n\n%s\n\nIf this time does not work, please reply to this email.\n\nBest regards,\nAurora Labs Recruitment Team",
		name, bulletList(strengths), summary)

	event := domain.CalendarEvent{
		Summary:     "Interview: " + short,
		Description: description,
		Start:       start,
		End:         end,
		Attendee:    cand.SourceEmail,
	}

	calendarCreated := false
	if n.calendar != nil {
		if err := n.calendar.CreateEvent(ctx, event); err != nil {
			logger.Log.Warn("Calendar event creation failed, falling back to .ics only", "error", err)
		} else {
			calendarCreated = true
		}
	}

	calendarStatus := "The calendar invitation is attached to this email."
	if calendarCreated {
		calendarStatus = "The calendar invitation has been sent to your calendar and is attached to this email."
	}

	var body bytes.Buffer
	err = inviteTmpl.Execute(&body, map[string]any{
		"Name":           name,
		"Position":       short,
		"Strengths":      strengths,
		"CalendarStatus": calendarStatus,
	})
	if err != nil {
		return err
	}

	attachments := []domain.OutgoingAttachment{{
		Filename: "invite.ics",
		MimeType: "text/calendar",
		Data:     gmailmsg.BuildICS(event, n.senderEmail),
	}}

	if err := n.mailbox.Send(ctx, cand.SourceEmail, "Interview Update at Aurora Labs", body.String(), attachments); err != nil {
		return err
	}

	if err := n.candidateRepo.UpdateStatus(ctx, candidateID, domain.StatusInterviewInvite); err != nil {
		logger.Log.Error("Failed to update status after invite", "error", err)
	}
	if err := n.auditRepo.Insert(ctx, &candidateID, domain.AuditInviteSent, map[string]any{"sent_to": cand.SourceEmail}); err != nil {
		logger.Log.Error("Failed to record invite_sent", "error", err)
	}
	if err := n.metricRepo.Increment(ctx, domain.MetricInvitesSent, 1); err != nil {
		logger.Log.Warn("Failed to increment invite counter", "error", err)
	}
	return nil
}

// FeedbackFailure reports one candidate the feedback sweep could not reach.
type FeedbackFailure struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// SendPendingFeedback emails personalized feedback to every candidate still
// awaiting an outcome and marks them feedback_sent. Returns the sent count
// and per-candidate failures.
func (n *NotificationUsecase) SendPendingFeedback(ctx context.Context) (int, []FeedbackFailure, error) {
	if n.mailbox == nil {
		return 0, nil, apperror.Unavailable(errMailboxOffline)
	}
	candidates, err := n.candidateRepo.List(ctx)
	if err != nil {
		return 0, nil, err
	}

	eligible := map[string]bool{
		"":                    true,
		domain.StatusPending:  true,
		"pending_review":      true,
		domain.StatusScreened: true,
	}

	sent := 0
	failures := []FeedbackFailure{}
	for _, cand := range candidates {
		if !eligible[cand.Status] {
			continue
		}
		if err := n.sendFeedback(ctx, &cand); err != nil {
			logger.Log.Warn("Failed to send feedback", "candidate_id", cand.ID, "error", err)
			failures = append(failures, FeedbackFailure{ID: cand.ID, Email: cand.SourceEmail, Reason: err.Error()})
			continue
		}
		sent++
	}
	return sent, failures, nil
}

func (n *NotificationUsecase) sendFeedback(ctx context.Context, cand *domain.CandidateWithScreening) error {
	name := strings.TrimSpace(cand.SenderName)
	if name == "" {
		name = cand.Profile.FullName
	}
	if name == "" {
		name = "Applicant"
	}

	strengths, concerns, _ := analysisHighlights(cand)

	fitScore := 0
	if cand.FitScore != nil {
		fitScore = *cand.FitScore
	}

	var resources []feedbackResource
	if cand.Analysis != nil {
		for _, r := range cand.Analysis.Resources {
			resources = append(resources, feedbackResource{Title: r})
		}
	}
	if len(resources) == 0 && fitScore < 60 {
		resources = defaultResources
	}

	position := "the role"
	if cand.JobDescription != nil && *cand.JobDescription != "" {
		position = shortPosition(*cand.JobDescription)
	}

	data := map[string]any{
		"Name":      name,
		"Position":  position,
		"FitScore":  fitScore,
		"Strengths": strengths,
		"Concerns":  concerns,
		"Resources": resources,
	}

	tmpl := feedbackLowTmpl
	if fitScore >= 60 {
		tmpl = feedbackHighTmpl
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return err
	}

	subject := fmt.Sprintf("Application Update - %s at Aurora Labs", position)
	if err := n.mailbox.Send(ctx, cand.SourceEmail, subject, body.String(), nil); err != nil {
		return err
	}

	if err := n.candidateRepo.UpdateStatus(ctx, cand.ID, domain.StatusFeedbackSent); err != nil {
		logger.Log.Error("Failed to update status after feedback", "error", err)
	}
	candidateID := cand.ID
	if err := n.auditRepo.Insert(ctx, &candidateID, domain.AuditFeedbackSent, map[string]any{"sent_to": cand.SourceEmail}); err != nil {
		logger.Log.Error("Failed to record feedback_sent", "error", err)
	}
	if err := n.metricRepo.Increment(ctx, domain.MetricFeedbackSent, 1); err != nil {
		logger.Log.Warn("Failed to increment feedback counter", "error", err)
	}
	return nil
}

// analysisHighlights pulls strengths, concerns, and the summary from the
// stored analysis, falling back to the flat screening columns.
func analysisHighlights(cand *domain.CandidateWithScreening) (strengths, concerns []string, summary string) {
	if cand.Analysis != nil {
		strengths = cand.Analysis.SpecificStrengths
		if len(strengths) == 0 {
			strengths = cand.Analysis.MatchingSkills
		}
		concerns = cand.Analysis.SpecificConcerns
		summary = cand.Analysis.Summary
		return strengths, concerns, summary
	}
	strengths = cand.MatchingSkills
	concerns = cand.Concerns
	if cand.Summary != nil {
		summary = *cand.Summary
	}
	return strengths, concerns, summary
}

// shortPosition condenses a job description or long title into a short
// role name suitable for subjects and calendar summaries.
func shortPosition(position string) string {
	lower := strings.ToLower(position)
	switch {
	case strings.Contains(lower, "data science"), strings.Contains(lower, "machine learning"):
		return "Data Scientist"
	case strings.Contains(lower, "ai engineer"), strings.Contains(lower, "artificial intelligence"):
		return "AI Engineer"
	case strings.Contains(lower, "security engineer"):
		return "Security Engineer"
	}
	short := position
	if idx := strings.Index(short, "."); idx > 0 {
		short = short[:idx]
	}
	words := strings.Fields(short)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

func bulletList(items []string) string {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString("- ")
		sb.WriteString(it)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
