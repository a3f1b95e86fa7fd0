// Package meetings loads the day's calendar meetings from their
// supported sources: the Outlook spreadsheet export, a plain JSON file,
// or the emailed JSON fetched over IMAP.
package meetings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/milymoreno/timesheet/pkg/models"
)

// ErrFileNotFound reports that no export exists for the requested date.
// Distinct from transient failures: it means there are no meetings to
// register, not that loading broke.
var ErrFileNotFound = errors.New("meetings file not found")

// decoration added by the export pipeline to forwarded subjects.
const gmailMarker = "[GMAIL]"

// timestamp layouts accepted across the sources.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// CleanTitle strips the export decoration from a meeting subject.
func CleanTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(title, gmailMarker, ""))
}

// ParseTimestamp parses a source timestamp trying the known layouts.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", value)
}

// newMeeting derives the normalized record from the raw source fields.
func newMeeting(rawTitle string, start, end time.Time, organizer string) models.Meeting {
	return models.Meeting{
		Title:     CleanTitle(rawTitle),
		RawTitle:  rawTitle,
		Start:     start,
		End:       end,
		Organizer: organizer,
		Date:      start.Format("2006-01-02"),
		Hours:     end.Sub(start).Hours(),
	}
}

// ExcelFilename is the date-stamped name of the daily Outlook export.
func ExcelFilename(date time.Time) string {
	return fmt.Sprintf("reuniones-outlook-%s.xlsx", date.Format("2006-01-02"))
}
