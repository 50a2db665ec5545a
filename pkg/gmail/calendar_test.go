package gmail

import (
	"strings"
	"testing"
	"time"

	"resume-screening-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuildICS(t *testing.T) {
	ev := domain.CalendarEvent{
		Summary:     "Interview: Backend Engineer",
		Description: "Hi Jane,\nSee you there; bring questions.",
		Start:       time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		Attendee:    "jane@example.com",
	}

	ics := string(BuildICS(ev, "recruiting@auroralabs.dev"))

	t.Run("Renders a bookable REQUEST invite", func(t *testing.T) {
		assert.Contains(t, ics, "BEGIN:VCALENDAR")
		assert.Contains(t, ics, "METHOD:REQUEST")
		assert.Contains(t, ics, "DTSTART:20260901T100000Z")
		assert.Contains(t, ics, "DTEND:20260901T103000Z")
		assert.Contains(t, ics, "ORGANIZER;CN=Recruiting:mailto:recruiting@auroralabs.dev")
		assert.Contains(t, ics, "ATTENDEE;ROLE=REQ-PARTICIPANT;RSVP=TRUE:mailto:jane@example.com")
		assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
	})

	t.Run("Uses CRLF line endings throughout", func(t *testing.T) {
		for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
			assert.NotContains(t, line, "\n")
		}
	})

	t.Run("Escapes special characters in text fields", func(t *testing.T) {
		assert.Contains(t, ics, "DESCRIPTION:Hi Jane\\,\\nSee you there\\; bring questions.")
	})
}

func TestEscapeICS(t *testing.T) {
	assert.Equal(t, "a\\;b\\,c\\nd\\\\e", escapeICS("a;b,c\nd\\e"))
}
