package schedule

import (
	"regexp"
	"strings"
	"time"
)

var bareDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SanitizeSchedulePayload validates the structural envelope of a generated
// schedule payload and fills required defaults in place. The envelope rules
// are strict (employeeSchedules present, non-empty, every entry carrying an
// employeeId); field-level repair is forgiving (dates that cannot be parsed
// stay verbatim). All defaulting is idempotent.
func SanitizeSchedulePayload(payload map[string]any) (map[string]any, error) {
	if payload == nil {
		return nil, &InvalidPayloadError{Reason: "schedule payload must be a JSON object"}
	}
	entries, ok := payload["employeeSchedules"].([]any)
	if !ok || len(entries) == 0 {
		return nil, &InvalidPayloadError{Reason: "employeeSchedules must be a non-empty list"}
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, &InvalidPayloadError{Reason: "each employee schedule must be an object"}
		}
		if _, ok := entry["employeeId"]; !ok {
			return nil, &InvalidPayloadError{Reason: "each employee schedule must include employeeId"}
		}
		if _, ok := entry["schedules"]; !ok {
			entry["schedules"] = []any{}
		}
		shifts, _ := entry["schedules"].([]any)
		for _, rawShift := range shifts {
			shift, ok := rawShift.(map[string]any)
			if !ok {
				continue
			}
			sanitizeShift(shift)
		}
	}
	if _, ok := payload["validateOnly"]; !ok {
		payload["validateOnly"] = false
	}
	return payload, nil
}

func sanitizeShift(shift map[string]any) {
	if _, ok := shift["isActive"]; !ok {
		shift["isActive"] = true
	}
	if _, ok := shift["breaks"]; !ok {
		shift["breaks"] = []any{}
	}
	if id, ok := shift["id"]; !ok || id == nil || id == "" {
		shift["id"] = nil
	}

	if workDate, ok := shift["workDate"].(string); ok {
		shift["workDate"] = normalizeWorkDate(workDate)
	}

	slots, _ := shift["timeSlots"].([]any)
	sanitized := make([]any, 0, len(slots))
	for _, rawSlot := range slots {
		slot, ok := rawSlot.(map[string]any)
		if !ok {
			continue
		}
		out := make(map[string]any, len(slot)+2)
		for key, val := range slot {
			if key == "startTime" || key == "endTime" {
				continue
			}
			out[key] = val
		}
		out["startTime"] = SanitizeTimeString(slot["startTime"])
		out["endTime"] = SanitizeTimeString(slot["endTime"])
		sanitized = append(sanitized, out)
	}
	shift["timeSlots"] = sanitized
}

// normalizeWorkDate upgrades a bare date to midnight UTC and reserializes
// full timestamps to RFC 3339. Anything else is left untouched; a shift with
// an odd date is still structurally valid.
func normalizeWorkDate(workDate string) string {
	cleaned := strings.TrimSpace(workDate)
	if bareDatePattern.MatchString(cleaned) {
		return cleaned + "T00:00:00Z"
	}
	if parsed, err := parseISOTimestamp(cleaned); err == nil {
		return parsed.Format(time.RFC3339)
	}
	return workDate
}

// SummarizeGeneratedSchedule aggregates counts over a sanitized payload for
// response metadata. An empty payload yields zero counts.
func SummarizeGeneratedSchedule(payload map[string]any) map[string]int {
	entries, _ := payload["employeeSchedules"].([]any)
	scheduleCount := 0
	slotCount := 0
	for _, raw := range entries {
		entry, _ := raw.(map[string]any)
		shifts, _ := entry["schedules"].([]any)
		scheduleCount += len(shifts)
		for _, rawShift := range shifts {
			shift, _ := rawShift.(map[string]any)
			slots, _ := shift["timeSlots"].([]any)
			slotCount += len(slots)
		}
	}
	return map[string]int{
		"employee_count":  len(entries),
		"schedule_count":  scheduleCount,
		"time_slot_count": slotCount,
	}
}
