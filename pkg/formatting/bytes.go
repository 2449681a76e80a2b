// Package formatting parses and renders human-readable byte sizes.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

const kib = 1024

var multipliers = map[string]int64{
	"":   1,
	"B":  1,
	"KB": kib,
	"MB": kib * kib,
	"GB": kib * kib * kib,
	"TB": kib * kib * kib * kib,
}

var order = []string{"B", "KB", "MB", "GB", "TB"}

// ParseBytes parses sizes like "10MB", "512 kb" or "2048" (base-1024) into a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if i == -1 {
		i = len(s)
	}

	number, unit := s[:i], strings.ToUpper(strings.TrimSpace(s[i:]))
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number %q: %w", number, err)
	}

	mult, ok := multipliers[unit]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	return int64(value * float64(mult)), nil
}

// FormatBytes renders n with the largest unit that keeps the value at or above one.
func FormatBytes(n int64) string {
	value := float64(n)
	unit := 0
	for value >= kib && unit < len(order)-1 {
		value /= kib
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + order[unit]
}
