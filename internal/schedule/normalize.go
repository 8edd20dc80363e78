package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Upstream services serialize durations inconsistently: sometimes as plain
// "HH:MM:SS" strings, sometimes as {hours, minutes, seconds} objects, and
// sometimes as .NET-style tick counts (100ns units). Everything in this file
// is total: values that cannot be interpreted pass through unchanged.

var (
	hoursMinutesPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
	fullTimePattern     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// FormatTimespan converts a timespan-shaped value to a zero-padded
// "HH:MM:SS" string. Strings are already canonical and returned as-is.
// Objects are tried as {hours, minutes, seconds} first, then as a tick
// count; if neither interpretation works the original value comes back.
func FormatTimespan(value any) any {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		hours, hasHours := v["hours"]
		minutes, hasMinutes := v["minutes"]
		if hasHours && hasMinutes {
			h, okH := toInt64(hours)
			m, okM := toInt64(minutes)
			s := int64(0)
			if raw, ok := v["seconds"]; ok {
				if n, okS := toInt64(raw); okS {
					s = n
				}
			}
			if okH && okM {
				return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
			}
		}
		if ticks, ok := v["ticks"]; ok {
			t, okT := toInt64(ticks)
			if !okT {
				return value
			}
			total := t / 10_000_000
			return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
		}
	}
	return value
}

// NormalizeTimespans recursively rewrites timespan objects anywhere in a
// decoded JSON document. A map is treated as a timespan when it carries both
// an hours and a minutes key, or a ticks key; every other map and slice is
// walked, scalars pass through.
func NormalizeTimespans(payload any) any {
	switch v := payload.(type) {
	case map[string]any:
		_, hasHours := v["hours"]
		_, hasMinutes := v["minutes"]
		_, hasTicks := v["ticks"]
		if (hasHours && hasMinutes) || hasTicks {
			if formatted, ok := FormatTimespan(v).(string); ok {
				return formatted
			}
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = NormalizeTimespans(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = NormalizeTimespans(item)
		}
		return out
	}
	return payload
}

// SanitizeTimeString coerces a time value into "HH:MM:SS". Bare "HH:MM"
// gets seconds appended, full timestamps (trailing Z accepted) are reduced
// to their time-of-day, and anything unrecognizable is returned trimmed
// rather than rejected.
func SanitizeTimeString(value any) any {
	formatted := FormatTimespan(value)
	s, ok := formatted.(string)
	if !ok {
		return formatted
	}
	cleaned := strings.TrimSpace(s)
	if hoursMinutesPattern.MatchString(cleaned) {
		cleaned += ":00"
	}
	if fullTimePattern.MatchString(cleaned) {
		return cleaned
	}
	if parsed, err := parseISOTimestamp(cleaned); err == nil {
		return parsed.Format("15:04:05")
	}
	return cleaned
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseISOTimestamp accepts the ISO-8601 variants the upstream systems
// emit, including a trailing Z and date-only values.
func parseISOTimestamp(value string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// toInt64 accepts the numeric shapes json.Unmarshal can produce plus
// numeric strings, mirroring how permissive the upstream payloads are.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
