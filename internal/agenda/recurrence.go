package agenda

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateKey is the studio-local calendar date of t, used to match generated
// instances against a rule.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// civilDate strips t to a calendar date in loc, represented at UTC midnight so
// day arithmetic never crosses a DST boundary.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// storedDate reads a DATE column value, which carries no zone of its own.
func storedDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidRecurrence, s)
	}
	return t.Hour(), t.Minute(), nil
}

// Expand returns the start times of every instance rec describes on the
// calendar dates between from and to inclusive, in loc. Dates whose key is in
// existing are skipped, so a rule can be expanded repeatedly over the same
// window without producing duplicates. Expand does not touch storage.
func Expand(rec Recurrence, from, to time.Time, loc *time.Location, existing map[string]bool) ([]time.Time, error) {
	if rec.DayOfWeek < 0 || rec.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: day_of_week %d out of range", ErrInvalidRecurrence, rec.DayOfWeek)
	}
	hour, minute, err := parseClock(rec.Time)
	if err != nil {
		return nil, err
	}

	start := civilDate(from, loc)
	if rs := storedDate(rec.StartDate); rs.After(start) {
		start = rs
	}
	end := civilDate(to, loc)
	if rec.EndDate != nil {
		if re := storedDate(*rec.EndDate); re.Before(end) {
			end = re
		}
	}
	if start.After(end) {
		return nil, nil
	}

	offset := (rec.DayOfWeek - int(start.Weekday()) + 7) % 7
	var out []time.Time
	for d := start.AddDate(0, 0, offset); !d.After(end); d = d.AddDate(0, 0, 7) {
		if existing[d.Format(dateLayout)] {
			continue
		}
		out = append(out, time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc))
	}
	return out, nil
}
