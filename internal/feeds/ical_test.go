package feeds

import (
	"strings"
	"testing"
	"time"

	"github.com/observatory-hq/observatory/internal/models"
)

func TestRenderCalendarICSShape(t *testing.T) {
	location := "Room 42, Building A"
	events := []models.Event{
		{
			ID:       3,
			StartAt:  time.Date(2026, time.September, 1, 18, 0, 0, 0, time.UTC),
			EndAt:    time.Date(2026, time.September, 1, 20, 30, 0, 0, time.UTC),
			Title:    "Install Party; bring laptops",
			Location: &location,
		},
	}

	rendered := string(RenderCalendarICS(events, "observatory.example.org"))

	for _, line := range []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"UID:event-3@observatory.example.org\r\n",
		"DTSTART:20260901T180000Z\r\n",
		"DTEND:20260901T203000Z\r\n",
		"SUMMARY:Install Party\\; bring laptops\r\n",
		"LOCATION:Room 42\\, Building A\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(rendered, line) {
			t.Fatalf("expected %q in the calendar output", line)
		}
	}

	if !strings.HasSuffix(rendered, "END:VCALENDAR\r\n") {
		t.Fatal("expected the calendar to end with END:VCALENDAR and CRLF")
	}
}

func TestRenderCalendarICSWithoutEvents(t *testing.T) {
	rendered := string(RenderCalendarICS(nil, "observatory.example.org"))
	if strings.Contains(rendered, "BEGIN:VEVENT") {
		t.Fatal("did not expect any VEVENT blocks")
	}
	if !strings.Contains(rendered, "BEGIN:VCALENDAR\r\n") {
		t.Fatal("expected the calendar wrapper")
	}
}
