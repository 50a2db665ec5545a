package domain

import "context"

// Metric counter names.
const (
	MetricCandidatesTotal = "candidates_total"
	MetricInvitesSent     = "invites_sent"
	MetricFeedbackSent    = "feedback_sent"
)

// MetricRepository tracks coarse operational counters. Increments are
// best-effort: callers log failures and carry on.
type MetricRepository interface {
	Increment(ctx context.Context, name string, delta int64) error
	All(ctx context.Context) (map[string]int64, error)
}
