package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// TriState is the yes/no/unknown rendering of boolean-like backend values.
type TriState string

const (
	TriYes     TriState = "yes"
	TriNo      TriState = "no"
	TriUnknown TriState = "-"
)

// Bool reports whether the value is an explicit yes.
func (t TriState) Bool() bool { return t == TriYes }

// UnmarshalJSON accepts booleans as well as yes/no/true/false strings.
func (t *TriState) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = NormalizeTriState(v)
	return nil
}

func TriStateOf(b bool) TriState {
	if b {
		return TriYes
	}
	return TriNo
}

// NormalizeTriState maps booleans directly and matches strings against
// true/yes and false/no after trimming and lowercasing.
func NormalizeTriState(v any) TriState {
	switch val := v.(type) {
	case bool:
		return TriStateOf(val)
	case TriState:
		return NormalizeTriState(string(val))
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes":
			return TriYes
		case "false", "no":
			return TriNo
		}
	}
	return TriUnknown
}

type Category string

const (
	CategoryHot  Category = "HOT"
	CategoryWarm Category = "WARM"
	CategoryCold Category = "COLD"
	CategoryNone Category = "-"
)

const (
	HotThreshold  = 75
	WarmThreshold = 50
)

// CategoryForScore applies the threshold policy: >=75 HOT, >=50 WARM, else COLD.
func CategoryForScore(score float64) Category {
	switch {
	case score >= HotThreshold:
		return CategoryHot
	case score >= WarmThreshold:
		return CategoryWarm
	default:
		return CategoryCold
	}
}

// ResolveCategory falls back to the explicit label only when no score resolved.
func ResolveCategory(score *float64, label string) Category {
	if score != nil {
		return CategoryForScore(*score)
	}
	if label = strings.ToUpper(strings.TrimSpace(label)); label != "" {
		return Category(label)
	}
	return CategoryNone
}

// scorePaths is probed in order; the first finite number wins.
var scorePaths = [][]string{
	{"score"},
	{"metadata", "score"},
	{"metadata", "lead_score"},
	{"metadata", "custom_fields", "score"},
	{"contact", "score"},
}

// ResolveScore looks for a numeric score in every location the backend has
// used for it. Numeric strings are accepted.
func ResolveScore(raw map[string]any) (float64, bool) {
	for _, path := range scorePaths {
		v, ok := lookup(raw, path...)
		if !ok {
			continue
		}
		if f, ok := finiteFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// ResolveStatus returns status.current for object statuses, the raw string
// otherwise, and "" when neither applies.
func ResolveStatus(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if current, ok := val["current"]; ok && current != nil {
			return stringOf(current)
		}
	}
	return ""
}

func lookup(raw map[string]any, path ...string) (any, bool) {
	var cur any = raw
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func nested(raw map[string]any, path ...string) map[string]any {
	v, ok := lookup(raw, path...)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

func finiteFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		n, ok := jsonNumber(val)
		if !ok {
			return 0, false
		}
		f = n
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstString returns the first non-empty value among keys.
func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s := stringOf(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstPresent mirrors a ?? chain: the first key holding a non-null value.
func firstPresent(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringOf(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
