package analytics

import "time"

// Calendar fixes the time zone and first weekday used for bucketing. Keys
// and labels are both derived through it, so groups and their display
// never disagree.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// DefaultCalendar uses the local zone and weeks starting on Sunday.
func DefaultCalendar() Calendar {
	return Calendar{Location: time.Local, WeekStart: time.Sunday}
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// In converts t to the calendar's zone.
func (c Calendar) In(t time.Time) time.Time {
	return t.In(c.loc())
}

// StartOfDay returns local midnight of t's day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = c.In(t)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// StartOfWeek returns midnight of the first day of t's week.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, c.loc())
}

// StartOfMonth returns midnight of the first day of t's month.
func (c Calendar) StartOfMonth(t time.Time) time.Time {
	t = c.In(t)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc())
}

// WeekdayOrdinal is the weekday's position in the calendar week, 0..6.
func (c Calendar) WeekdayOrdinal(d time.Weekday) int {
	return (int(d) - int(c.WeekStart) + 7) % 7
}

// Time-of-day bands.
const (
	BandMorning   = "Morning"
	BandAfternoon = "Afternoon"
	BandEvening   = "Evening"
	BandNight     = "Night"
)

// timeOfDayOrder is the display order of the bands.
var timeOfDayOrder = map[string]int{
	BandMorning:   0,
	BandAfternoon: 1,
	BandEvening:   2,
	BandNight:     3,
}

// TimeOfDayBand maps a local hour to its band: [0,6) Night, [6,12) Morning,
// [12,17) Afternoon, [17,22) Evening, [22,24) Night.
func TimeOfDayBand(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return BandMorning
	case hour >= 12 && hour < 17:
		return BandAfternoon
	case hour >= 17 && hour < 22:
		return BandEvening
	default:
		return BandNight
	}
}
