package plan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Units maps a duration unit suffix to its length in minutes.
type Units map[string]int

// DefaultUnits returns the built-in minutes-per-unit table.
// "d" is a working day, "w" a working week.
func DefaultUnits() Units {
	return Units{
		"m": 1,
		"h": 60,
		"d": 480,
		"w": 2400,
		"M": 10080,
	}
}

// ToMinutes parses a duration token such as "6h" or "3d" into minutes.
func ToMinutes(token string, units Units) (int, error) {
	token = strings.TrimSpace(token)
	if len(token) < 2 {
		return 0, fmt.Errorf("invalid duration %q", token)
	}
	unit := token[len(token)-1:]
	per, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("invalid duration %q: unknown unit %q", token, unit)
	}
	value, err := strconv.Atoi(token[:len(token)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", token, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid duration %q: negative value", token)
	}
	return value * per, nil
}

// HumanDuration renders minutes as a compact unit string such as "3d 2h".
// Units are consumed largest-first with floor division; at most maxSegments
// segments are kept.
func HumanDuration(minutes int, units Units, maxSegments int) string {
	if minutes <= 0 {
		return "0m"
	}

	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return units[names[i]] > units[names[j]]
	})

	var segments []string
	remaining := minutes
	for _, name := range names {
		count := remaining / units[name]
		if count == 0 {
			continue
		}
		remaining -= count * units[name]
		segments = append(segments, fmt.Sprintf("%d%s", count, name))
	}

	if maxSegments > 0 && len(segments) > maxSegments {
		segments = segments[:maxSegments]
	}
	return strings.Join(segments, " ")
}
