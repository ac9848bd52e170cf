package archive

import (
	"strconv"
	"strings"
	"time"
)

// ParseElo converts a rating tag to an integer for storage. Anything that is
// not a plain non-negative integer is stored as 0.
func ParseElo(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var eventDayLayouts = []string{"2006.01.02", "2006-01-02", "2006/01/02"}

// ParseEventDay reads an EventDate tag. Partially unknown dates such as
// "2019.??.??" do not parse.
func ParseEventDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "?") {
		return time.Time{}, false
	}
	for _, layout := range eventDayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
