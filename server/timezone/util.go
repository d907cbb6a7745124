// Package timezone resolves caller timezones into the UTC offsets the date
// engine finalizes against.
package timezone

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata" // zone database for hosts without one
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

var fixedOffset = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// ParseTimezone parses an IANA timezone identifier (e.g., "US/Pacific") or a
// fixed offset such as "-07:00" or "UTC+5:30".
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	if m := fixedOffset.FindStringSubmatch(tz); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours > 14 || minutes > 59 {
			return UTC, fmt.Errorf("invalid timezone %q: offset out of range", tz)
		}
		secs := hours*3600 + minutes*60
		if m[1] == "-" {
			secs = -secs
		}
		return time.FixedZone(FormatOffset(time.Duration(secs)*time.Second), secs), nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// OffsetAt returns the UTC offset of loc at instant t.
func OffsetAt(loc *time.Location, t time.Time) time.Duration {
	if loc == nil {
		loc = UTC
	}
	_, secs := t.In(loc).Zone()
	return time.Duration(secs) * time.Second
}

// FormatOffset renders an offset as ±HH:MM.
func FormatOffset(d time.Duration) string {
	sign := '+'
	if d < 0 {
		sign = '-'
		d = -d
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%c%02d:%02d", sign, mins/60, mins%60)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Now().In(tz)
}
