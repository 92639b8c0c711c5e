package timex

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseBound parses a date filter bound. RFC3339 instants are used as-is.
// A bare YYYY-MM-DD date maps to the start of that day (UTC), or, when
// endOfDay is set, to the last representable instant of it so that an
// inclusive upper bound covers the whole day.
func ParseBound(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", s)
	}
	if endOfDay {
		return d.Add(24*time.Hour - time.Microsecond), nil
	}
	return d, nil
}
