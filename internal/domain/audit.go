package domain

import (
	"context"
	"time"
)

// Audit actions recorded by the pipeline. The audit log is append-only and
// is the durable source of truth for idempotency checks and exports.
const (
	AuditEmailProcessingStarted = "email_processing_started"
	AuditEmailReceived          = "email_received"
	AuditEmailProcessed         = "email_processed"
	AuditScreeningCompleted     = "screening_completed"
	AuditInviteSent             = "invite_sent"
	AuditFeedbackSent           = "feedback_sent"
	AuditStatusUpdate           = "status_update"
)

// AuditEvent is one append-only log entry. CandidateID is nil for
// system-level events such as email_processing_started.
type AuditEvent struct {
	ID          int64          `json:"id"`
	CandidateID *string        `json:"candidate_id"`
	Action      string         `json:"action"`
	Details     map[string]any `json:"details"`
	Timestamp   time.Time      `json:"timestamp"`
}

type AuditRepository interface {
	Insert(ctx context.Context, candidateID *string, action string, details map[string]any) error
	// HasProcessedMessage is the authoritative dedup check: true when an
	// email_processed event referencing the message id exists.
	HasProcessedMessage(ctx context.Context, messageID string) (bool, error)
	ListAll(ctx context.Context) ([]AuditEvent, error)
}
