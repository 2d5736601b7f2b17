package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var expiryRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(ms|s|m|h|d|w|y)?$`)

var expiryUnits = map[string]time.Duration{
	"ms": time.Millisecond,
	"s":  time.Second,
	"":   time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  24 * time.Hour,
	"w":  7 * 24 * time.Hour,
	"y":  365*24*time.Hour + 6*time.Hour,
}

// ParseExpiry accepts "15m", "7d", "2w", bare seconds like "900", and anything
// time.ParseDuration accepts.
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}
	var d time.Duration
	if m := expiryRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("parse expiry %q: %w", s, err)
		}
		d = time.Duration(n * float64(expiryUnits[m[2]]))
	} else {
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("parse expiry %q: %w", s, err)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry %q must be positive", s)
	}
	return d, nil
}
