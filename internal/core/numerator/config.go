// Package numerator provides domain contracts for human-readable sequential numbers.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "INV")
	Prefix string

	// PadWidth is the minimum width of the numeric suffix (default 6)
	PadWidth int
}

// DefaultConfig returns the bill numbering defaults: INV-000001.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 6,
	}
}

// Key identifies the counter row backing this configuration.
func (c Config) Key() string {
	return strings.ToLower(c.Prefix)
}

// Format renders num as PREFIX-NNNNNN.
func (c Config) Format(num int64) string {
	width := c.PadWidth
	if width <= 0 {
		width = 6
	}
	return fmt.Sprintf("%s-%0*d", c.Prefix, width, num)
}

// ParseNumber extracts the trailing numeric suffix of a formatted number.
// Returns -1 if the value does not end in digits.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndexFunc(formatted, func(r rune) bool { return r < '0' || r > '9' })
	suffix := formatted[idx+1:]
	if suffix == "" {
		return -1
	}
	num, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return -1
	}
	return num
}
