package gtfs

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxClockSecs is 99:59:59, the latest clock that keeps a fixed two-digit
// hour field.
const MaxClockSecs = 99*3600 + 59*60 + 59

// ParseClock converts an H:MM:SS or HH:MM:SS clock into seconds since the
// start of the service day. Hours may exceed 23 but not 99.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || len(parts[0]) > 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 || len(parts[2]) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*3600 + m*60 + sec, nil
}

// FormatClock renders seconds as a zero-padded HH:MM:SS clock, clamped to
// the range 00:00:00 to 99:59:59.
func FormatClock(secs int) string {
	secs = max(0, min(secs, MaxClockSecs))
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// NormalizeClock rewrites a clock into its zero-padded form so that stored
// clocks compare correctly as strings.
func NormalizeClock(s string) (string, error) {
	secs, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(secs), nil
}

// AddMinutes shifts a clock forward. The result does not wrap at midnight:
// 23:50:00 plus 30 minutes is 24:20:00, matching the GTFS next-day convention.
func AddMinutes(clock string, minutes int) (string, error) {
	secs, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return FormatClock(secs + minutes*60), nil
}
