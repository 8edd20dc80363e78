package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTimeString(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{
			name:  "short time gets seconds appended",
			input: "09:00",
			want:  "09:00:00",
		},
		{
			name:  "full time is a fixed point",
			input: "09:00:00",
			want:  "09:00:00",
		},
		{
			name:  "hours minutes object",
			input: map[string]any{"hours": float64(1), "minutes": float64(30), "seconds": float64(0)},
			want:  "01:30:00",
		},
		{
			name:  "tick count of one hour",
			input: map[string]any{"ticks": float64(36000000000)},
			want:  "01:00:00",
		},
		{
			name:  "timestamp reduced to time of day",
			input: "2026-03-01T14:30:00Z",
			want:  "14:30:00",
		},
		{
			name:  "whitespace trimmed",
			input: "  08:15  ",
			want:  "08:15:00",
		},
		{
			name:  "unparseable string returned cleaned",
			input: "whenever",
			want:  "whenever",
		},
		{
			name:  "non-time value passes through",
			input: float64(7),
			want:  float64(7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTimeString(tt.input))
		})
	}
}

func TestFormatTimespan_SecondsDefaultToZero(t *testing.T) {
	got := FormatTimespan(map[string]any{"hours": float64(9), "minutes": float64(5)})
	assert.Equal(t, "09:05:00", got)
}

func TestFormatTimespan_MalformedFallsBackToTicks(t *testing.T) {
	got := FormatTimespan(map[string]any{"hours": "nine", "minutes": "five", "ticks": float64(600000000)})
	assert.Equal(t, "00:01:00", got)
}

func TestFormatTimespan_UnusableTicksReturnsOriginal(t *testing.T) {
	original := map[string]any{"ticks": "soon"}
	got := FormatTimespan(original)
	assert.Equal(t, original, got)
}

func TestNormalizeTimespans_RecursesNestedStructures(t *testing.T) {
	raw := `{
		"items": [
			{
				"dayOfWeek": 1,
				"timeSlots": [
					{"startTime": {"hours": 9, "minutes": 0}, "endTime": {"ticks": 612000000000}}
				]
			}
		],
		"meta": {"fetched": true}
	}`
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	normalized := NormalizeTimespans(doc).(map[string]any)
	items := normalized["items"].([]any)
	slot := items[0].(map[string]any)["timeSlots"].([]any)[0].(map[string]any)

	assert.Equal(t, "09:00:00", slot["startTime"])
	assert.Equal(t, "17:00:00", slot["endTime"])
	assert.Equal(t, map[string]any{"fetched": true}, normalized["meta"])
}

func TestNormalizeTimespans_NeverPanics(t *testing.T) {
	inputs := []any{
		nil,
		"plain string",
		float64(42),
		[]any{nil, map[string]any{"ticks": "garbage"}, []any{[]any{}}},
		map[string]any{"hours": nil, "minutes": nil},
		map[string]any{"deep": map[string]any{"deeper": []any{map[string]any{"ticks": float64(1)}}}},
	}
	for _, input := range inputs {
		assert.NotPanics(t, func() {
			NormalizeTimespans(input)
		})
	}
}

func TestNormalizeTimespans_ScalarsPassThrough(t *testing.T) {
	assert.Equal(t, "already", NormalizeTimespans("already"))
	assert.Nil(t, NormalizeTimespans(nil))
}
