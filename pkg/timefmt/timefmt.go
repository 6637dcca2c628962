// Package timefmt converts persisted timestamps into short human-readable
// age strings ("3 weeks ago"). Input values arrive from the backend in two
// shapes (epoch numbers and date strings), so parsing is split from
// bucketing: raw values are normalized into a Timestamp first, and only a
// valid Timestamp is ever bucketed.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// epochMillisFloor is the magnitude threshold separating epoch seconds from
// epoch milliseconds. Values below it are treated as seconds.
const epochMillisFloor = 1e12

// maxFutureSkew is how far into the future a timestamp may sit and still be
// treated as "just now". Records written by a peer with a fast clock must
// not vanish from the UI, but anything further out is garbage.
const maxFutureSkew = 48 * time.Hour

// Timestamp is a parsed timestamp. The zero value is invalid; invalid
// timestamps format to the empty string.
type Timestamp struct {
	t  time.Time
	ok bool
}

// FromTime wraps a time.Time. The zero time is invalid.
func FromTime(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{t: t, ok: true}
}

// FromUnixSeconds builds a Timestamp from an epoch-seconds value.
// Non-positive values are invalid.
func FromUnixSeconds(sec int64) Timestamp {
	if sec <= 0 {
		return Timestamp{}
	}
	return Timestamp{t: time.Unix(sec, 0), ok: true}
}

// FromUnixMillis builds a Timestamp from an epoch-milliseconds value.
// Non-positive values are invalid.
func FromUnixMillis(ms int64) Timestamp {
	if ms <= 0 {
		return Timestamp{}
	}
	return Timestamp{t: time.UnixMilli(ms), ok: true}
}

// FromEpoch builds a Timestamp from a numeric epoch of unknown resolution,
// using magnitude to decide: values below 1e12 are seconds, the rest are
// milliseconds. Callers that know their unit should prefer FromUnixSeconds
// or FromUnixMillis; the heuristic exists for wire values that do not say.
func FromEpoch(v float64) Timestamp {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return Timestamp{}
	}
	if v < epochMillisFloor {
		return FromUnixMillis(int64(v * 1000))
	}
	return FromUnixMillis(int64(v))
}

// FromString parses a date string. The backend emits ISO-8601, but feeds and
// older records carry a handful of other layouts, so parsing is lenient.
// Strings that are bare numeric literals (for example "0") are not dates in
// this domain and are invalid.
func FromString(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return Timestamp{}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil || t.Unix() <= 0 {
		return Timestamp{}
	}
	return Timestamp{t: t, ok: true}
}

// Parse normalizes an arbitrary wire value into a Timestamp. It accepts
// date strings, numeric epochs (seconds or milliseconds, by magnitude),
// time.Time, and an existing Timestamp. Everything else, nil included,
// is invalid.
func Parse(v any) Timestamp {
	switch val := v.(type) {
	case nil:
		return Timestamp{}
	case Timestamp:
		return val
	case time.Time:
		return FromTime(val)
	case string:
		return FromString(val)
	case float64:
		return FromEpoch(val)
	case float32:
		return FromEpoch(float64(val))
	case int:
		return FromEpoch(float64(val))
	case int32:
		return FromEpoch(float64(val))
	case int64:
		return FromEpoch(float64(val))
	case uint:
		return FromEpoch(float64(val))
	case uint32:
		return FromEpoch(float64(val))
	case uint64:
		return FromEpoch(float64(val))
	default:
		return Timestamp{}
	}
}

// Valid reports whether the timestamp parsed to a usable instant.
func (ts Timestamp) Valid() bool {
	return ts.ok
}

// Time returns the underlying instant. It is meaningful only when Valid.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// RelativeTo formats the timestamp as an age string relative to now.
// Invalid timestamps and timestamps more than 48 hours in the future
// produce the empty string; callers treat that as "omit the label".
func (ts Timestamp) RelativeTo(now time.Time) string {
	if !ts.ok {
		return ""
	}

	elapsed := now.Sub(ts.t)
	if elapsed < 0 {
		if -elapsed > maxFutureSkew {
			return ""
		}
		elapsed = 0
	}

	const (
		day   = 24 * time.Hour
		week  = 7 * day
		month = 30 * day
		year  = 365 * day
	)

	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return pluralize(int(elapsed/time.Minute), "minute")
	case elapsed < day:
		return pluralize(int(elapsed/time.Hour), "hour")
	case elapsed < week:
		return pluralize(int(elapsed/day), "day")
	case elapsed < month:
		return pluralize(int(elapsed/week), "week")
	case elapsed < year:
		return pluralize(int(elapsed/month), "month")
	default:
		return pluralize(int(elapsed/year), "year")
	}
}

// Format parses a wire value and formats it relative to the current time.
// The clock is read exactly once, so the elapsed-time calculation and the
// future-skew check always agree within a single call.
func Format(v any) string {
	return Parse(v).RelativeTo(time.Now())
}

// pluralize renders "1 day ago" / "3 days ago". Singular only at exactly 1.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
