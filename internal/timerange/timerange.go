// Package timerange resolves the dashboard's named reporting ranges into
// concrete [from, to) intervals using calendar semantics. Weeks start Monday.
package timerange

import "time"

// Range names accepted by the stats API.
const (
	Realtime  = "realtime"
	Today     = "today"
	Yesterday = "yesterday"
	ThisWeek  = "this_week"
	LastWeek  = "last_week"
	ThisMonth = "this_month"
	LastMonth = "last_month"
	Custom    = "custom"
)

const (
	realtimeSpan      = 30 * time.Minute
	customDefaultSpan = 7 * 24 * time.Hour
	fallbackSpan      = 24 * time.Hour
)

// Resolve computes the [from, to) interval for a named range relative to now.
// For Custom, the caller-supplied interval is used when both bounds are
// non-zero, otherwise the preceding 7 days. Unknown names resolve to the
// preceding 24 hours.
func Resolve(name string, customFrom, customTo, now time.Time) (time.Time, time.Time) {
	switch name {
	case Realtime:
		return now.Add(-realtimeSpan), now
	case Today:
		return startOfDay(now), now
	case Yesterday:
		today := startOfDay(now)
		return today.AddDate(0, 0, -1), today
	case ThisWeek:
		return startOfWeek(now), now
	case LastWeek:
		thisMonday := startOfWeek(now)
		return thisMonday.AddDate(0, 0, -7), thisMonday
	case ThisMonth:
		return startOfMonth(now), now
	case LastMonth:
		first := startOfMonth(now)
		return first.AddDate(0, -1, 0), first
	case Custom:
		if !customFrom.IsZero() && !customTo.IsZero() {
			return customFrom, customTo
		}
		return now.Add(-customDefaultSpan), now
	default:
		return now.Add(-fallbackSpan), now
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent Monday 00:00, counting Monday itself.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
