// Package timefmt provides the canonical time formatting used in broadcast
// titles, descriptions and week playlist labels. All rendering happens in
// one configured timezone; callers convert before formatting.
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// Layouts shared across the project.
const (
	// Clock is a bare 24h clock time.
	Clock = "15:04"
	// Date is an ISO date.
	Date = "2006-01-02"
	// DateTime is an ISO date with a clock time.
	DateTime = "2006-01-02 15:04"
	// PrettyDate is a human-readable date.
	PrettyDate = "Mon 02 Jan 2006"
	// PrettyDateTime is a human-readable date with a clock time.
	PrettyDateTime = "Mon 02 Jan 2006 at 15:04"
	// TitleTime is the form used in broadcast titles.
	TitleTime = "Mon 02 Jan at 15:04"
	// ProseTime is the form used inside descriptions. The dot separator is
	// deliberate: rendered descriptions have always used it.
	ProseTime = "Mon 02 Jan at 15.04"

	// weekLabelDate is the trailing date of a week playlist title.
	weekLabelDate = "02 Jan 2006"
	// weekRangeDay is one endpoint of a playlist description's date range.
	weekRangeDay = "Mon 02 January"

	// weekLabelMarker appears in every week playlist title.
	weekLabelMarker = ": w/c "
)

// LoadLocation resolves a timezone name with a descriptive error.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timefmt: load location %q: %w", name, err)
	}
	return loc, nil
}

// WeekStart returns the Monday of t's week at midnight, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// WeekLabel returns the playlist title for t's week, e.g.
// "W27: w/c 01 Jul 2024". The week number is the ISO week of the Monday.
func WeekLabel(t time.Time) string {
	monday := WeekStart(t)
	_, week := monday.ISOWeek()
	return fmt.Sprintf("W%02d%s%s", week, weekLabelMarker, monday.Format(weekLabelDate))
}

// WeekRange renders the Monday-to-Sunday span of t's week for playlist
// descriptions, e.g. "Mon 01 July to Sun 07 July".
func WeekRange(t time.Time) string {
	monday := WeekStart(t)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(weekRangeDay) + " to " + sunday.Format(weekRangeDay)
}

// IsWeekLabel reports whether a playlist title looks like a week label.
func IsWeekLabel(title string) bool {
	return strings.Contains(title, weekLabelMarker)
}

// ParseWeekLabelDate extracts the Monday date carried at the end of a week
// playlist title. The date is parsed in loc.
func ParseWeekLabelDate(title string, loc *time.Location) (time.Time, error) {
	if len(title) < len(weekLabelDate) {
		return time.Time{}, fmt.Errorf("timefmt: title %q too short for a week label", title)
	}
	tail := title[len(title)-len(weekLabelDate):]
	t, err := time.ParseInLocation(weekLabelDate, tail, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("timefmt: parse week label date from %q: %w", title, err)
	}
	return t, nil
}
