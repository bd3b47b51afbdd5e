package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout mirrors the en-AU locale string the dashboard renders.
const DisplayLayout = "02/01/2006, 3:04:05 pm"

// maxEpochMillis is the largest magnitude accepted for an epoch value.
const maxEpochMillis = 8.64e15

// DisplayLocation is the zone used when rendering timestamps.
var DisplayLocation = time.Local

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp keeps the raw backend value next to the parsed instant, so a
// non-null but unparseable value still counts as "set".
type Timestamp struct {
	raw   any
	at    time.Time
	valid bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{raw: t.UTC().Format(time.RFC3339Nano), at: t, valid: true}
}

// TimestampOf wraps any decoded JSON value.
func TimestampOf(v any) Timestamp {
	if v == nil {
		return Timestamp{}
	}
	at, ok := ParseTimestamp(v)
	return Timestamp{raw: v, at: at, valid: ok}
}

func (ts Timestamp) IsSet() bool { return ts.raw != nil }

func (ts Timestamp) Valid() bool { return ts.valid }

func (ts Timestamp) Time() (time.Time, bool) { return ts.at, ts.valid }

// UnixMilli returns 0 for missing or unparseable values.
func (ts Timestamp) UnixMilli() int64 {
	if !ts.valid {
		return 0
	}
	return ts.at.UnixMilli()
}

func (ts Timestamp) String() string {
	if !ts.valid {
		return ""
	}
	return formatTime(ts.at)
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*ts = TimestampOf(v)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.valid:
		return json.Marshal(ts.at.UTC().Format(time.RFC3339Nano))
	case ts.raw != nil:
		return json.Marshal(ts.raw)
	default:
		return []byte("null"), nil
	}
}

// FormatTimestamp renders ISO strings, epoch milliseconds and
// {seconds,nanoseconds} / {_seconds,_nanoseconds} objects. Anything it cannot
// read yields an empty string.
func FormatTimestamp(v any) string {
	at, ok := ParseTimestamp(v)
	if !ok {
		return ""
	}
	return formatTime(at)
}

// ParseTimestamp converts every supported timestamp shape to a time.Time.
func ParseTimestamp(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case Timestamp:
		return val.at, val.valid
	case string:
		return parseTimeString(val)
	case map[string]any:
		if secs, ok := jsonNumber(val["_seconds"]); ok {
			nanos, _ := jsonNumber(val["_nanoseconds"])
			return fromMillis(secs*1000 + math.Floor(nanos/1e6))
		}
		if secs, ok := jsonNumber(val["seconds"]); ok {
			nanos, _ := jsonNumber(val["nanoseconds"])
			return fromMillis(secs*1000 + math.Floor(nanos/1e6))
		}
		return time.Time{}, false
	default:
		if n, ok := jsonNumber(val); ok {
			return fromMillis(n)
		}
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if at, err := time.Parse(layout, s); err == nil {
			return at, true
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromMillis(n)
	}
	return time.Time{}, false
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

// jsonNumber only accepts values that decoded as JSON numbers.
func jsonNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatTime(at time.Time) string {
	loc := DisplayLocation
	if loc == nil {
		loc = time.Local
	}
	return at.In(loc).Format(DisplayLayout)
}
