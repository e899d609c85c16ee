// Package schedule picks the photos that belong to the capture schedule.
package schedule

import (
	"regexp"
	"sort"
	"strconv"
)

// hourPattern finds the last "--HH-00" in a name (on-the-hour captures).
var hourPattern = regexp.MustCompile(`^.*--(\d{2})-00`)

// Schedule describes which on-the-hour captures are kept.
type Schedule struct {
	FirstHour int // inclusive
	LastHour  int // inclusive
}

// Default keeps the odd daytime hours 7, 9, ..., 19.
var Default = Schedule{FirstHour: 6, LastHour: 20}

// MatchHour extracts the capture hour from a filename.
// ok is false when the name carries no on-the-hour timestamp.
func MatchHour(name string) (hour int, ok bool) {
	m := hourPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return hour, true
}

// Keep reports whether a capture taken at hour is part of the schedule.
func (s Schedule) Keep(hour int) bool {
	return hour >= s.FirstHour && hour <= s.LastHour && (hour-1)%2 == 0
}

// Select sorts names and returns the ones on the schedule, in order.
func (s Schedule) Select(names []string) []string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var chosen []string
	for _, name := range sorted {
		hour, ok := MatchHour(name)
		if !ok || !s.Keep(hour) {
			continue
		}
		chosen = append(chosen, name)
	}
	return chosen
}

// Select applies the Default schedule.
func Select(names []string) []string {
	return Default.Select(names)
}
