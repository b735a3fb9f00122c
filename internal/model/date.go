package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight instant.
// field names the offending input in the returned error.
func ParseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", ErrInvalidDateFormat, field, s)
	}
	return d, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }
