package parse

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// layouts the backend has been seen to emit for fecha_devolucion and the
// record timestamps.
var layouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999-07:00", true},
	{"2006-01-02 15:04:05.999999999-07", true},
	{"2006-01-02T15:04:05.999999999-07", true},
	{time.RFC1123Z, true},
	{time.RFC1123, true},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006-01-02", false},
}

// Timestamp parses a backend timestamp. Layouts without a zone are read in
// loc, or UTC when loc is nil. An empty string yields the zero time and no error.
func Timestamp(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, l := range layouts {
		var (
			t   time.Time
			err error
		)
		if l.zoned {
			t, err = time.Parse(l.layout, s)
		} else {
			t, err = time.ParseInLocation(l.layout, s, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// Epoch converts a Unix timestamp to UTC. Values too large to be seconds
// are read as milliseconds.
func Epoch(v float64) time.Time {
	if math.Abs(v) >= 1e12 {
		return time.UnixMilli(int64(v)).UTC()
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
