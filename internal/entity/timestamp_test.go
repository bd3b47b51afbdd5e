package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useUTC(t *testing.T) {
	t.Helper()
	prev := DisplayLocation
	DisplayLocation = time.UTC
	t.Cleanup(func() { DisplayLocation = prev })
}

func TestFormatTimestampShapesAgree(t *testing.T) {
	useUTC(t)

	shapes := map[string]any{
		"iso":         "2024-03-01T10:00:00Z",
		"epoch":       1709287200000.0,
		"seconds":     map[string]any{"seconds": 1709287200.0, "nanoseconds": 0.0},
		"_seconds":    map[string]any{"_seconds": 1709287200.0, "_nanoseconds": 999999.0},
		"numeric str": "1709287200000",
	}

	for name, v := range shapes {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "01/03/2024, 10:00:00 am", FormatTimestamp(v))
		})
	}
}

func TestFormatTimestampInvalidInputIsEmpty(t *testing.T) {
	invalid := []any{
		nil,
		"",
		"not a date",
		true,
		[]any{1.0},
		map[string]any{"foo": 1.0},
		map[string]any{"seconds": "1709287200"},
		1e300,
	}
	for _, v := range invalid {
		assert.NotPanics(t, func() {
			assert.Equal(t, "", FormatTimestamp(v), "input %#v", v)
		})
	}
}

func TestTimestampJSON(t *testing.T) {
	var meta Metadata
	payload := `{"created_at":{"_seconds":1709287200,"_nanoseconds":0},"updated_at":"garbage","deleted_at":null}`
	require.NoError(t, json.Unmarshal([]byte(payload), &meta))

	assert.True(t, meta.CreatedAt.Valid())
	assert.Equal(t, int64(1709287200000), meta.CreatedAt.UnixMilli())

	assert.True(t, meta.UpdatedAt.IsSet())
	assert.False(t, meta.UpdatedAt.Valid())
	assert.Equal(t, int64(0), meta.UpdatedAt.UnixMilli())
	assert.Equal(t, "", meta.UpdatedAt.String())

	assert.False(t, meta.DeletedAt.IsSet())

	out, err := json.Marshal(meta.CreatedAt)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-03-01T10:00:00Z"`, string(out))
}
