package feeds

import (
	"fmt"
	"strings"

	"github.com/observatory-hq/observatory/internal/models"
)

const icalTimestampLayout = "20060102T150405Z"

// RenderCalendarICS serializes the events as a VCALENDAR. Timestamps are
// emitted in UTC; text values are escaped per RFC 5545.
func RenderCalendarICS(events []models.Event, host string) []byte {
	var out strings.Builder
	writeICalLine(&out, "BEGIN:VCALENDAR")
	writeICalLine(&out, "VERSION:2.0")
	writeICalLine(&out, "PRODID:-//Observatory//Calendar//EN")

	for _, event := range events {
		writeICalLine(&out, "BEGIN:VEVENT")
		writeICalLine(&out, fmt.Sprintf("UID:event-%d@%s", event.ID, host))
		writeICalLine(&out, "DTSTART:"+event.StartAt.UTC().Format(icalTimestampLayout))
		writeICalLine(&out, "DTEND:"+event.EndAt.UTC().Format(icalTimestampLayout))
		writeICalLine(&out, "SUMMARY:"+escapeICalText(event.Title))
		if event.Description != nil && *event.Description != "" {
			writeICalLine(&out, "DESCRIPTION:"+escapeICalText(*event.Description))
		}
		if event.Location != nil && *event.Location != "" {
			writeICalLine(&out, "LOCATION:"+escapeICalText(*event.Location))
		}
		writeICalLine(&out, "END:VEVENT")
	}

	writeICalLine(&out, "END:VCALENDAR")
	return []byte(out.String())
}

func writeICalLine(out *strings.Builder, line string) {
	out.WriteString(line)
	out.WriteString("\r\n")
}

func escapeICalText(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(value)
}
