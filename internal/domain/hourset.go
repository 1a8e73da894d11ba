package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Bounds for a single pre-due offset, in whole hours before the due instant.
const (
	MinPreDueHour = 1
	MaxPreDueHour = 168 // one week
)

// HourSet is a set of whole-hour offsets, kept unique and sorted in
// descending order. Its string form is the stable persisted representation,
// e.g. "24,3,1", and round-trips losslessly through ParseHourSet.
type HourSet []int

// DefaultPreDueHours returns the pre-due offsets applied when a task is
// created without an explicit set.
func DefaultPreDueHours() HourSet {
	return HourSet{24, 3, 1}
}

// ParseHourSet parses a comma-separated list of whole hours such as "24,3,1".
// Whitespace around elements is ignored and duplicates are collapsed. An
// empty string yields an empty set. Returns ErrInvalidPreDueHours if any
// element is not an integer in [MinPreDueHour, MaxPreDueHour].
func ParseHourSet(raw string) (HourSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return HourSet{}, nil
	}

	seen := make(map[int]struct{})
	var hours HourSet
	for _, part := range strings.Split(raw, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, ErrInvalidPreDueHours
		}
		if h < MinPreDueHour || h > MaxPreDueHour {
			return nil, ErrInvalidPreDueHours
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hours = append(hours, h)
	}

	hours.normalize()
	return hours, nil
}

// String serializes the set as a compact descending-sorted comma-separated
// list, e.g. "24,3,1". An empty set serializes as "".
func (s HourSet) String() string {
	if len(s) == 0 {
		return ""
	}
	parts := make([]string, len(s))
	for i, h := range s {
		parts[i] = strconv.Itoa(h)
	}
	return strings.Join(parts, ",")
}

// Contains reports whether the set includes the given hour.
func (s HourSet) Contains(hour int) bool {
	for _, h := range s {
		if h == hour {
			return true
		}
	}
	return false
}

// With returns a new set containing the union of the receiver and hour.
// The receiver is not modified.
func (s HourSet) With(hour int) HourSet {
	if s.Contains(hour) {
		out := make(HourSet, len(s))
		copy(out, s)
		return out
	}
	out := make(HourSet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, hour)
	out.normalize()
	return out
}

// IsEmpty reports whether the set has no elements.
func (s HourSet) IsEmpty() bool {
	return len(s) == 0
}

// normalize sorts the set in descending order in place.
func (s HourSet) normalize() {
	sort.Sort(sort.Reverse(sort.IntSlice(s)))
}
