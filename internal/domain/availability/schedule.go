package availability

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

type TimeOfDay struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func NewTimeOfDay(hours, minutes int) TimeOfDay {
	return TimeOfDay{Hours: hours, Minutes: minutes}
}

func (t TimeOfDay) MinuteOfDay() int {
	return t.Hours*60 + t.Minutes
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hours, t.Minutes)
}

// Window is a daily availability range; both bounds are inclusive.
type Window struct {
	Start TimeOfDay `json:"startTime"`
	End   TimeOfDay `json:"endTime"`
}

func (w Window) contains(minuteOfDay int) bool {
	return w.Start.MinuteOfDay() <= minuteOfDay && minuteOfDay <= w.End.MinuteOfDay()
}

func (w Window) containsRange(from, to int) bool {
	return w.Start.MinuteOfDay() <= from && to <= w.End.MinuteOfDay()
}

type Day struct {
	Day   time.Weekday `json:"day"`
	Times []Window     `json:"times"`
}

// Schedule is a normalized weekly schedule: at most one entry per weekday, ordered by
// weekday, each with at least one window ordered by start.
type Schedule []Day

// DefaultSchedule is Monday to Friday, 09:00 to 17:00.
func DefaultSchedule() Schedule {
	s := make(Schedule, 0, 5)
	for d := time.Monday; d <= time.Friday; d++ {
		s = append(s, Day{
			Day:   d,
			Times: []Window{{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(17, 0)}},
		})
	}
	return s
}

func (s Schedule) windows(day time.Weekday) []Window {
	for _, d := range s {
		if d.Day == day {
			return d.Times
		}
	}
	return nil
}

// Covers reports whether the weekday and time of day of t fall inside a window.
// t must already be expressed in the schedule's location.
func (s Schedule) Covers(t time.Time) bool {
	m := minuteOfDay(t)
	for _, w := range s.windows(t.Weekday()) {
		if w.contains(m) {
			return true
		}
	}
	return false
}

// ContainsInterval reports whether [start, end] fits inside a single window. An interval
// that ends exactly at the following midnight is treated as ending at 24:00 on the start day.
func (s Schedule) ContainsInterval(start, end time.Time) bool {
	if !start.Before(end) {
		return false
	}

	from := minuteOfDay(start)
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return s.containsRange(start.Weekday(), from, minuteOfDay(end))
	}

	nextMidnight := time.Date(sy, sm, sd+1, 0, 0, 0, 0, start.Location())
	if end.Equal(nextMidnight) {
		return s.containsRange(start.Weekday(), from, minutesPerDay)
	}
	return s.containsRange(start.Weekday(), from, minutesPerDay) &&
		s.containsRange(end.Weekday(), 0, minuteOfDay(end))
}

func (s Schedule) containsRange(day time.Weekday, from, to int) bool {
	for _, w := range s.windows(day) {
		if w.containsRange(from, to) {
			return true
		}
	}
	return false
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
