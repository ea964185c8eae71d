// Package schedule computes weekly wall-clock recurrences.
//
// A Weekly is a (weekday, hour, minute) triple evaluated in whatever location
// the caller's "now" carries, so occurrences stay correct across DST
// transitions (wall-clock time, not elapsed seconds).
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// weeklyParser accepts the 5-field cron layout the weekly spec expands to.
var weeklyParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Weekly is one weekly firing time.
type Weekly struct {
	Day    time.Weekday
	Hour   int
	Minute int

	spec cron.Schedule
}

// Parse reads "<weekday> HH:MM", e.g. "monday 09:00" or "Fri 21:30".
func Parse(raw string) (Weekly, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(fields) != 2 {
		return Weekly{}, fmt.Errorf("schedule %q: want \"<weekday> HH:MM\"", raw)
	}
	day, ok := weekdays[fields[0]]
	if !ok {
		return Weekly{}, fmt.Errorf("schedule %q: unknown weekday %q", raw, fields[0])
	}
	hour, minute, err := parseHHMM(fields[1])
	if err != nil {
		return Weekly{}, fmt.Errorf("schedule %q: %w", raw, err)
	}
	return New(day, hour, minute)
}

// New builds a Weekly from an already-split triple.
func New(day time.Weekday, hour, minute int) (Weekly, error) {
	if hour < 0 || hour > 23 {
		return Weekly{}, fmt.Errorf("hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return Weekly{}, fmt.Errorf("minute %d out of range", minute)
	}
	// Cron day-of-week numbering matches time.Weekday (0 = Sunday).
	spec, err := weeklyParser.Parse(fmt.Sprintf("%d %d * * %d", minute, hour, int(day)))
	if err != nil {
		return Weekly{}, fmt.Errorf("weekly cron spec: %w", err)
	}
	return Weekly{Day: day, Hour: hour, Minute: minute, spec: spec}, nil
}

// Next returns the first occurrence strictly after now, in now's location.
// If now is exactly the scheduled instant, the result is one week later:
// a single wall-clock instant never fires twice.
func (w Weekly) Next(now time.Time) time.Time {
	return w.spec.Next(now)
}

func (w Weekly) String() string {
	return fmt.Sprintf("%s %02d:%02d", strings.ToLower(w.Day.String()), w.Hour, w.Minute)
}

func parseHHMM(s string) (int, int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("time %q: invalid hour", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q: invalid minute", s)
	}
	return hour, minute, nil
}
