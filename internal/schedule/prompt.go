package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ScheduleSystemPrompt establishes the generator's role. The model is told
// to return only the JSON payload; everything else in the pipeline assumes
// it will not always comply.
const ScheduleSystemPrompt = "You are an expert veterinary hospital workforce scheduler. Plan coverage for all operating hours while " +
	"respecting employee availability, distributing workload fairly, and highlighting any assumptions in " +
	"schedule descriptions if necessary. Return only the requested JSON payload."

// DefaultScheduleInstructions is used when the caller supplies no custom
// scheduling query.
const DefaultScheduleInstructions = "Create a balanced two-week staffing plan covering all hospital operating hours, ensuring veterinarian, " +
	"technician, and support teams have appropriate coverage. Respect published availability, avoid overtime " +
	"conflicts, and call out any assumptions or gaps that cannot be resolved with current staffing."

// ScheduleSchemaGuidance describes the payload shape the generator must
// return, phrased for the model rather than for a JSON-schema validator.
const ScheduleSchemaGuidance = "an object with `employeeSchedules` (array) and `validateOnly` (boolean). Each employee schedule must " +
	"list `employeeId` and an array `schedules`. Each schedule entry requires `id` (use null for new shifts), " +
	"`title`, `workDate` (ISO 8601), and `timeSlots` (each with `startTime` and `endTime` in HH:MM:SS). " +
	"Optional fields include `description`, `isActive`, `breaks`, and per-slot metadata."

const scheduleUserPromptTemplate = `Generate a two-week schedule for tenant %s at location %s covering %s through %s.
Instructions: %s.

Operating hours JSON:
` + "```json" + `
%s
` + "```" + `

Employee availability JSON (day-level availability with constraints):
` + "```json" + `
%s
` + "```" + `

IMPORTANT SCHEDULING RULES:
1. Each employee's availability is defined per day-of-week (1=Monday, 2=Tuesday, etc.)
2. Respect dayOfWeek constraints - only schedule employees on days they're available
3. Honor time slot boundaries (e.g., 09:00:00-17:00:00) for each day
4. Consider minimumHours/maximumHours per day (e.g., 8-10 hours)
5. Prioritize isPreferredDay=true and higher priority values
6. Only use approved availabilities (isApproved=true) unless allowOverride=true
7. Schedule within effectiveStartDate/effectiveEndDate ranges

Respond with JSON that matches %s.`

// PromptInput carries everything the prompt depends on. BuildPrompt is a
// pure function of this struct: identical inputs produce byte-identical
// prompts, which is what makes the assembly step testable even though the
// generator itself is not deterministic.
type PromptInput struct {
	TenantID       string
	LocationID     string
	StartDate      string
	EndDate        string
	Instructions   string
	OperatingHours any
	Availability   any
}

// BuildPrompt assembles the system and user instruction documents for the
// generation service. The two summaries are embedded verbatim as indented
// JSON; map keys serialize in sorted order so the output is deterministic.
func BuildPrompt(in PromptInput) (systemPrompt string, userPrompt string, err error) {
	instructions := in.Instructions
	if strings.TrimSpace(instructions) == "" {
		instructions = DefaultScheduleInstructions
	}
	hoursJSON, err := json.MarshalIndent(in.OperatingHours, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize operating hours: %w", err)
	}
	availabilityJSON, err := json.MarshalIndent(in.Availability, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize availability: %w", err)
	}
	userPrompt = fmt.Sprintf(
		scheduleUserPromptTemplate,
		in.TenantID,
		in.LocationID,
		in.StartDate,
		in.EndDate,
		instructions,
		hoursJSON,
		availabilityJSON,
		ScheduleSchemaGuidance,
	)
	return ScheduleSystemPrompt, userPrompt, nil
}
