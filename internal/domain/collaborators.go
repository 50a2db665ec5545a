package domain

import (
	"context"
	"io"
)

// ChatCompleter is the language-model contract: one bounded, non-streaming
// completion call expected to return raw text containing a JSON object.
type ChatCompleter interface {
	Complete(ctx context.Context, model, prompt string, maxTokens int) (string, error)
}

// TextExtractor converts resume bytes into plain text. It never fails:
// any internal error yields an empty string, which callers treat as an
// extraction failure rather than a crash.
type TextExtractor interface {
	Extract(data []byte, filename string) string
}

// ResumeStore persists resume files and streams them back by locator.
// Locators may be public https URLs, s3:// paths, or file:// paths.
type ResumeStore interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// SeenCache is the message-granularity dedup cache. It is a performance
// tier only; the audit log remains the durable source of truth.
type SeenCache interface {
	MarkSeen(ctx context.Context, messageID string) error
	HasSeen(ctx context.Context, messageID string) (bool, error)
	Clear(ctx context.Context) error
}
