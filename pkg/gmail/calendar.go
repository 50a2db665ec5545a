package gmail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"resume-screening-backend/internal/domain"
)

// Scheduler books interview events on the primary calendar of the
// recruiting account.
type Scheduler struct {
	svc *calendar.Service
}

// NewScheduler reuses the mailbox client's token source; the stored token
// must carry the calendar scope alongside the gmail scopes.
func NewScheduler(ctx context.Context, mail *Client) (*Scheduler, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, mail.tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Scheduler{svc: svc}, nil
}

func (s *Scheduler) CreateEvent(ctx context.Context, ev domain.CalendarEvent) error {
	event := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: "UTC"},
		Attendees:   []*calendar.EventAttendee{{Email: ev.Attendee}},
	}
	_, err := s.svc.Events.Insert("primary", event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	return nil
}

// BuildICS renders a minimal iCalendar invite for the event. Sent as an
// attachment on every invite so the candidate gets a bookable slot even
// when the calendar API call fails.
func BuildICS(ev domain.CalendarEvent, organizer string) []byte {
	var sb strings.Builder
	stamp := time.Now().UTC().Format("20060102T150405Z")
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Aurora Labs//Resume Screening//EN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		"UID:" + stamp + "-" + ev.Attendee,
		"DTSTAMP:" + stamp,
		"DTSTART:" + ev.Start.UTC().Format("20060102T150405Z"),
		"DTEND:" + ev.End.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICS(ev.Summary),
		"DESCRIPTION:" + escapeICS(ev.Description),
		"ORGANIZER;CN=Recruiting:mailto:" + organizer,
		"ATTENDEE;ROLE=REQ-PARTICIPANT;RSVP=TRUE:mailto:" + ev.Attendee,
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}

func escapeICS(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\n", "\\n")
	return r.Replace(s)
}
