package clinic

import "time"

// Business hours: weekdays only, one-hour slots from OpenHour up to but
// not including CloseHour.
const (
	OpenHour  = 8
	CloseHour = 16
)

const (
	// DefaultSearchDays is how many available days FirstAvailableDays
	// returns when the caller passes n <= 0.
	DefaultSearchDays = 3
	// DefaultSearchHorizon bounds how far forward FirstAvailableDays scans.
	DefaultSearchHorizon = 30
	// DefaultAlternativeWindow is the day radius AlternativeSlots searches
	// around the requested date.
	DefaultAlternativeWindow = 3
)

// truncateToHour zeroes minutes, seconds and sub-second precision. The
// date and location are kept as supplied; the engine never converts
// timezones.
func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func withinOpenHours(t time.Time) bool {
	return t.Hour() >= OpenHour && t.Hour() < CloseHour
}

// slotKey identifies one bookable unit. Both the availability check and
// the booking insert key on it, so sub-hour timestamps can never bypass
// a collision.
type slotKey struct {
	doctor string
	year   int
	month  time.Month
	day    int
	hour   int
}

func keyForSlot(doctor string, t time.Time) slotKey {
	return slotKey{
		doctor: doctor,
		year:   t.Year(),
		month:  t.Month(),
		day:    t.Day(),
		hour:   t.Hour(),
	}
}
