package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func countWeekday(from, to time.Time, dow time.Weekday) int {
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == dow {
			n++
		}
	}
	return n
}

func TestExpand_MondaysInJanuary(t *testing.T) {
	loc := jakarta(t)
	rec := Recurrence{ID: 1, DayOfWeek: 1, Time: "07:00", StartDate: date(2025, 1, 1)}
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, loc)

	got, err := Expand(rec, from, to, loc, nil)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i, day := range []int{5, 12, 19, 26} {
		assert.Equal(t, time.Date(2026, 1, day, 7, 0, 0, 0, loc), got[i])
		assert.Equal(t, time.Monday, got[i].Weekday())
	}
	assert.Equal(t, 0, got[0].UTC().Hour())
}

func TestExpand_CountMatchesWeekdaysForEveryDay(t *testing.T) {
	loc := jakarta(t)
	from := date(2026, 2, 3)
	to := date(2026, 4, 17)

	for dow := 0; dow < 7; dow++ {
		rec := Recurrence{DayOfWeek: dow, Time: "18:30", StartDate: date(2020, 1, 1)}
		got, err := Expand(rec, from.In(loc), to.In(loc), loc, map[string]bool{})
		require.NoError(t, err)

		want := countWeekday(from, to, time.Weekday(dow))
		assert.Len(t, got, want, "day_of_week %d", dow)

		seen := map[string]bool{}
		for _, ts := range got {
			key := DateKey(ts, loc)
			assert.False(t, seen[key], "duplicate date %s", key)
			seen[key] = true
			assert.Equal(t, time.Weekday(dow), ts.In(loc).Weekday())
		}
	}
}

func TestExpand_SkipsExistingAndIsIdempotent(t *testing.T) {
	loc := jakarta(t)
	rec := Recurrence{DayOfWeek: 3, Time: "09:15", StartDate: date(2026, 1, 1)}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, loc)

	first, err := Expand(rec, from, to, loc, map[string]bool{"2026-03-11": true})
	require.NoError(t, err)
	assert.Len(t, first, countWeekday(date(2026, 3, 1), date(2026, 3, 31), time.Wednesday)-1)
	for _, ts := range first {
		assert.NotEqual(t, "2026-03-11", DateKey(ts, loc))
	}

	existing := map[string]bool{"2026-03-11": true}
	for _, ts := range first {
		existing[DateKey(ts, loc)] = true
	}
	second, err := Expand(rec, from, to, loc, existing)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestExpand_ClampsToRuleDates(t *testing.T) {
	loc := jakarta(t)
	end := date(2026, 5, 20)
	rec := Recurrence{DayOfWeek: 5, Time: "10:00", StartDate: date(2026, 5, 6), EndDate: &end}
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, loc)

	got, err := Expand(rec, from, to, loc, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-05-08", DateKey(got[0], loc))
	assert.Equal(t, "2026-05-15", DateKey(got[1], loc))
}

func TestExpand_InclusiveEndpoints(t *testing.T) {
	loc := jakarta(t)
	rec := Recurrence{DayOfWeek: 0, Time: "08:00", StartDate: date(2026, 1, 1)}
	from := time.Date(2026, 3, 1, 23, 0, 0, 0, loc)
	to := time.Date(2026, 3, 8, 1, 0, 0, 0, loc)

	got, err := Expand(rec, from, to, loc, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-03-01", DateKey(got[0], loc))
	assert.Equal(t, "2026-03-08", DateKey(got[1], loc))
}

func TestExpand_EmptyWhenRuleEndedBeforeWindow(t *testing.T) {
	loc := jakarta(t)
	end := date(2026, 1, 31)
	rec := Recurrence{DayOfWeek: 2, Time: "07:00", StartDate: date(2026, 1, 1), EndDate: &end}

	got, err := Expand(rec, time.Date(2026, 2, 1, 0, 0, 0, 0, loc), time.Date(2026, 2, 28, 0, 0, 0, 0, loc), loc, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpand_InvalidRule(t *testing.T) {
	loc := jakarta(t)
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, loc)

	_, err := Expand(Recurrence{DayOfWeek: 1, Time: "7am", StartDate: date(2026, 1, 1)}, from, from, loc, nil)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	_, err = Expand(Recurrence{DayOfWeek: 7, Time: "07:00", StartDate: date(2026, 1, 1)}, from, from, loc, nil)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}
