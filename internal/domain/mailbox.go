package domain

import (
	"context"
	"time"
)

// MailAttachment is a downloaded attachment from an inbound message.
type MailAttachment struct {
	Filename     string
	MimeType     string
	AttachmentID string
	Data         []byte
}

// MailMessage is the decoded form of an inbound mailbox message.
type MailMessage struct {
	ID          string
	Subject     string
	Sender      string // raw From header, e.g. `Jane Doe <jane@x.com>`
	Date        string
	Body        string
	Attachments []MailAttachment
}

// OutgoingAttachment is attached to an outbound message. A text/calendar
// part is rendered inline next to the HTML body; everything else becomes a
// regular binary attachment.
type OutgoingAttachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// Mailbox is the mail-provider contract consumed by the pipeline and the
// notification sender.
type Mailbox interface {
	ListUnread(ctx context.Context, query string) ([]string, error)
	GetMessage(ctx context.Context, id string) (*MailMessage, error)
	MarkRead(ctx context.Context, id string) error
	Send(ctx context.Context, to, subject, htmlBody string, attachments []OutgoingAttachment) error
}

// CalendarEvent describes an interview slot to book.
type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendee    string
}

// CalendarScheduler books interview events. Best-effort: callers fall back
// to a static .ics attachment when booking fails.
type CalendarScheduler interface {
	CreateEvent(ctx context.Context, ev CalendarEvent) error
}
