package schedule

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestSummarizeOperatingHours_ProjectsDayEntries(t *testing.T) {
	doc := mustDecode(t, `{
		"operatingHours": [
			{
				"dayOfWeek": 1,
				"isOpen": true,
				"notes": "front desk opens early",
				"timeSlots": [
					{"startTime": "08:00", "endTime": {"hours": 17, "minutes": 30}}
				],
				"internalAudit": "should be dropped"
			},
			{"dayOfWeek": 7, "isOpen": false, "notes": null, "timeSlots": []}
		]
	}`)

	summary, ok := SummarizeOperatingHours(doc).([]any)
	require.True(t, ok)
	require.Len(t, summary, 2)

	monday := summary[0].(map[string]any)
	assert.Equal(t, float64(1), monday["dayOfWeek"])
	assert.Equal(t, true, monday["isOpen"])
	assert.Equal(t, "front desk opens early", monday["notes"])
	assert.NotContains(t, monday, "internalAudit")

	slot := monday["timeSlots"].([]any)[0].(map[string]any)
	assert.Equal(t, "08:00:00", slot["startTime"])
	assert.Equal(t, "17:30:00", slot["endTime"])

	sunday := summary[1].(map[string]any)
	assert.Equal(t, false, sunday["isOpen"])
	assert.Empty(t, sunday["timeSlots"])
}

func TestSummarizeOperatingHours_ContainerKeyPriority(t *testing.T) {
	doc := mustDecode(t, `{
		"items": [{"dayOfWeek": 2, "isOpen": true}],
		"data": [{"dayOfWeek": 5, "isOpen": false}]
	}`)

	summary := SummarizeOperatingHours(doc).([]any)
	require.Len(t, summary, 1)
	assert.Equal(t, float64(2), summary[0].(map[string]any)["dayOfWeek"])
}

func TestSummarizeOperatingHours_UnrecognizedShapePassesThrough(t *testing.T) {
	doc := mustDecode(t, `{"totallyDifferent": {"shape": {"hours": 9, "minutes": 0}}}`)

	got := SummarizeOperatingHours(doc)
	require.IsType(t, map[string]any{}, got)
	// Timespans are still normalized even when the shape is unknown.
	inner := got.(map[string]any)["totallyDifferent"].(map[string]any)
	assert.Equal(t, "09:00:00", inner["shape"])
}

func TestSummarizeOperatingHours_NonObjectInput(t *testing.T) {
	assert.Equal(t, "just text", SummarizeOperatingHours("just text"))
	assert.Nil(t, SummarizeOperatingHours(nil))
}

func TestSummarizeAvailability_ProjectsGroups(t *testing.T) {
	doc := mustDecode(t, `{
		"employeeGroups": [
			{
				"employeeId": "E1",
				"employeeName": "Dr. Patel",
				"availabilityCount": 1,
				"availabilities": [
					{
						"id": "AV-1",
						"dayOfWeek": 3,
						"minimumHours": 4,
						"maximumHours": 8,
						"isAvailable": true,
						"priority": 2,
						"isPreferredDay": true,
						"allowOverride": false,
						"effectiveStartDate": "2026-01-01",
						"effectiveEndDate": "2026-12-31",
						"isActive": true,
						"isApproved": true,
						"notes": "clinic days only",
						"timeSlots": [
							{"startTime": "09:00", "endTime": "13:00", "priority": 1, "isPreferred": true, "sortOrder": 0}
						]
					}
				]
			}
		]
	}`)

	groups := SummarizeAvailability(doc, 0)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Equal(t, "E1", group["employeeId"])
	assert.Equal(t, "Dr. Patel", group["employeeName"])

	availabilities := group["availabilities"].([]any)
	require.Len(t, availabilities, 1)
	availability := availabilities[0].(map[string]any)
	assert.Equal(t, "AV-1", availability["availabilityId"])
	assert.Equal(t, float64(3), availability["dayOfWeek"])
	assert.Equal(t, true, availability["isPreferredDay"])
	assert.Equal(t, "clinic days only", availability["notes"])

	slot := availability["timeSlots"].([]any)[0].(map[string]any)
	assert.Equal(t, "09:00:00", slot["startTime"])
	assert.Equal(t, "13:00:00", slot["endTime"])
	assert.Equal(t, float64(1), slot["priority"])
}

func TestSummarizeAvailability_TruncatesPerEmployee(t *testing.T) {
	availabilities := make([]any, 0, 20)
	for i := 0; i < 20; i++ {
		availabilities = append(availabilities, map[string]any{
			"id":       fmt.Sprintf("AV-%d", i),
			"priority": float64(20 - i),
		})
	}
	doc := map[string]any{
		"employeeGroups": []any{
			map[string]any{"employeeId": "E1", "availabilities": availabilities},
		},
	}

	groups := SummarizeAvailability(doc, 12)
	require.Len(t, groups, 1)

	kept := groups[0]["availabilities"].([]any)
	require.Len(t, kept, 12)
	// Truncation keeps the first entries by original index, never re-sorts.
	for i := 0; i < 12; i++ {
		assert.Equal(t, fmt.Sprintf("AV-%d", i), kept[i].(map[string]any)["availabilityId"])
	}
}

func TestSummarizeAvailability_MissingGroups(t *testing.T) {
	assert.Empty(t, SummarizeAvailability(map[string]any{}, 12))
	assert.Empty(t, SummarizeAvailability(nil, 12))
}
