package weather

import (
	"fmt"
	"strings"
	"time"
)

const clockIn = "3:4 PM"

var clockOut = map[Unit]string{
	Celsius:    "15:04",
	Fahrenheit: "03:04 PM",
}

// FormatTime reformats a 12-hour "H:MM AM" clock time as reported by the
// weather service. Metric users get a 24-hour clock and imperial users get a
// 12-hour one.
func FormatTime(raw string, u Unit) (string, error) {
	layout, ok := clockOut[u.norm()]
	if !ok {
		return "", fmt.Errorf("couldn't format time %q: %w: %q", raw, ErrUnsupportedUnit, string(u))
	}
	s := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	// The service sometimes reports midnight hours as 0.
	if strings.HasPrefix(s, "0:") {
		s = "12:" + s[2:]
	}
	t, err := time.Parse(clockIn, s)
	if err != nil {
		return "", fmt.Errorf("couldn't parse time %q: %w", raw, err)
	}
	return t.Format(layout), nil
}
