package domain

type contextKey string

const (
	// KeyRequestID carries the per-request correlation id.
	KeyRequestID contextKey = "RequestID"
	// KeyAdminSubject carries the subject of a verified admin token.
	KeyAdminSubject contextKey = "AdminSubject"
)
