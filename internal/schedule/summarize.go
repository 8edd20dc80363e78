package schedule

import "log"

// DefaultMaxAvailabilityEntries bounds how many availability records are
// kept per employee so the prompt stays within a predictable size.
const DefaultMaxAvailabilityEntries = 12

// hoursContainerKeys are checked in priority order when locating the day
// list inside an operating-hours document.
var hoursContainerKeys = []string{"items", "operatingHours", "operating_hours", "data"}

// SummarizeOperatingHours normalizes timespans and projects the upstream
// operating-hours document down to the per-day fields the scheduler needs.
// Unrecognized shapes are passed through normalized rather than rejected;
// the upstream contract is not guaranteed and the pipeline must survive
// schema drift.
func SummarizeOperatingHours(raw any) any {
	normalized := NormalizeTimespans(raw)
	doc, ok := normalized.(map[string]any)
	if !ok {
		return normalized
	}
	for _, key := range hoursContainerKeys {
		entries, ok := doc[key].([]any)
		if !ok {
			continue
		}
		summary := make([]any, 0, len(entries))
		for _, item := range entries {
			entry, _ := item.(map[string]any)
			summary = append(summary, map[string]any{
				"dayOfWeek": entry["dayOfWeek"],
				"isOpen":    entry["isOpen"],
				"notes":     entry["notes"],
				"timeSlots": projectTimeSlots(entry["timeSlots"]),
			})
		}
		return summary
	}
	log.Printf("operating hours document had no recognizable day list, passing through")
	return normalized
}

func projectTimeSlots(raw any) []any {
	slots, _ := raw.([]any)
	projected := make([]any, 0, len(slots))
	for _, item := range slots {
		slot, _ := item.(map[string]any)
		projected = append(projected, map[string]any{
			"startTime": SanitizeTimeString(slot["startTime"]),
			"endTime":   SanitizeTimeString(slot["endTime"]),
		})
	}
	return projected
}

// SummarizeAvailability normalizes timespans and projects the employee
// availability response into per-employee summaries. Each employee keeps at
// most maxEntries availability records, truncated by original position.
// A document without employeeGroups yields an empty summary.
func SummarizeAvailability(raw map[string]any, maxEntries int) []map[string]any {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxAvailabilityEntries
	}
	normalized, _ := NormalizeTimespans(raw).(map[string]any)
	groups := []map[string]any{}
	rawGroups, _ := normalized["employeeGroups"].([]any)
	for _, item := range rawGroups {
		group, _ := item.(map[string]any)
		entry := map[string]any{
			"employeeId":        group["employeeId"],
			"employeeName":      group["employeeName"],
			"availabilityCount": group["availabilityCount"],
		}
		availabilities, _ := group["availabilities"].([]any)
		if len(availabilities) > maxEntries {
			availabilities = availabilities[:maxEntries]
		}
		projected := make([]any, 0, len(availabilities))
		for _, rawAvailability := range availabilities {
			availability, _ := rawAvailability.(map[string]any)
			projected = append(projected, map[string]any{
				"availabilityId":     availability["id"],
				"dayOfWeek":          availability["dayOfWeek"],
				"minimumHours":       availability["minimumHours"],
				"maximumHours":       availability["maximumHours"],
				"isAvailable":        availability["isAvailable"],
				"priority":           availability["priority"],
				"isPreferredDay":     availability["isPreferredDay"],
				"allowOverride":      availability["allowOverride"],
				"effectiveStartDate": availability["effectiveStartDate"],
				"effectiveEndDate":   availability["effectiveEndDate"],
				"isActive":           availability["isActive"],
				"isApproved":         availability["isApproved"],
				"timeSlots":          projectAvailabilitySlots(availability["timeSlots"]),
				"notes":              availability["notes"],
			})
		}
		entry["availabilities"] = projected
		groups = append(groups, entry)
	}
	return groups
}

func projectAvailabilitySlots(raw any) []any {
	slots, _ := raw.([]any)
	projected := make([]any, 0, len(slots))
	for _, item := range slots {
		slot, _ := item.(map[string]any)
		projected = append(projected, map[string]any{
			"startTime":   SanitizeTimeString(slot["startTime"]),
			"endTime":     SanitizeTimeString(slot["endTime"]),
			"priority":    slot["priority"],
			"isPreferred": slot["isPreferred"],
			"sortOrder":   slot["sortOrder"],
		})
	}
	return projected
}
