package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date form accepted by Parse.
const DateLayout = "2006-01-02"

// Parse parses a time specification relative to now.
// Supports three formats:
//   - Go duration format, plus whole days: "1h", "30m", "2h45m", "7d"
//   - Calendar dates: "2024-05-01" (midnight UTC)
//   - RFC3339 timestamps: "2024-05-01T13:00:00Z"
//
// Durations are subtracted from now, so "7d" means "7 days ago".
func Parse(spec string, now time.Time) (time.Time, error) {
	t, _, err := parse(spec, now)
	return t, err
}

func parse(spec string, now time.Time) (time.Time, bool, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return time.Time{}, false, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UTC(), false, nil
	}

	if t, err := time.Parse(DateLayout, spec); err == nil {
		return t, true, nil
	}

	if days, ok := strings.CutSuffix(spec, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n).UTC(), false, nil
		}
	}

	if d, err := time.ParseDuration(spec); err == nil {
		return now.Add(-d).UTC(), false, nil
	}

	return time.Time{}, false, fmt.Errorf("invalid time specification: %s (use a duration like '7d' or '1h30m', a date like '2024-05-01', or RFC3339 like '2024-05-01T13:00:00Z')", spec)
}

// ParseRange parses the --since and --until flags into a creation-date range.
// A zero time means "no bound" for that end of the range. A calendar date given
// to --until covers that whole day.
//
// Validates that since < until if both are specified.
func ParseRange(since, until string, now time.Time) (time.Time, time.Time, error) {
	var sinceT, untilT time.Time

	if since != "" {
		t, _, err := parse(since, now)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since: %w", err)
		}
		sinceT = t
	}

	if until != "" {
		t, dateOnly, err := parse(until, now)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Second)
		}
		untilT = t
	}

	if !sinceT.IsZero() && !untilT.IsZero() && !sinceT.Before(untilT) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}

	return sinceT, untilT, nil
}
