package schedule

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Generator is the opaque text-generation collaborator: prompt text in,
// free-form text out. Implementations are injected so tests can substitute
// a stub and callers can configure the client per deployment.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Agent runs the schedule generation pipeline. It holds no mutable state
// across calls; concurrent invocations are safe.
type Agent struct {
	generator  Generator
	maxEntries int
}

// NewAgent creates a schedule agent around the given generator.
// maxAvailabilityEntries bounds the per-employee availability fan-out;
// values <= 0 fall back to the default of 12.
func NewAgent(generator Generator, maxAvailabilityEntries int) *Agent {
	if maxAvailabilityEntries <= 0 {
		maxAvailabilityEntries = DefaultMaxAvailabilityEntries
	}
	return &Agent{
		generator:  generator,
		maxEntries: maxAvailabilityEntries,
	}
}

// GenerateRequest carries one pipeline invocation's inputs. OperatingHours
// and Availability are the raw upstream documents; dates are bare
// YYYY-MM-DD strings and optional.
type GenerateRequest struct {
	TenantID       string
	LocationID     string
	OperatingHours any
	Availability   map[string]any
	Instructions   string
	UseAgent       bool
	StartDate      string
	EndDate        string
}

// GenerateSchedule summarizes the upstream context, optionally invokes the
// generator, and returns the response envelope. With UseAgent false the
// envelope carries the summaries only (mode "context_only"); with it true
// the generated payload is extracted, sanitized, and attached along with the
// verbatim model output for audit.
func (a *Agent) GenerateSchedule(ctx context.Context, req GenerateRequest) (map[string]any, error) {
	windowStart, windowEnd := resolveWindow(req.StartDate, req.EndDate)
	startDate := windowStart.Format("2006-01-02")
	// windowEnd is exclusive internally; the envelope reports the inclusive
	// last day of the window.
	endDate := windowEnd.AddDate(0, 0, -1).Format("2006-01-02")

	hoursSummary := SummarizeOperatingHours(req.OperatingHours)
	availabilitySummary := SummarizeAvailability(req.Availability, a.maxEntries)

	response := map[string]any{
		"success":     true,
		"tenant_id":   req.TenantID,
		"location_id": req.LocationID,
		"schedule_window": map[string]any{
			"startDate": startDate,
			"endDate":   endDate,
		},
		"operating_hours":       hoursSummary,
		"employee_availability": availabilitySummary,
		"generation_metadata": map[string]any{
			"employee_count": len(availabilitySummary),
			"operating_days": countOperatingDays(hoursSummary),
		},
	}

	if !req.UseAgent {
		response["mode"] = "context_only"
		return response, nil
	}

	instructions := req.Instructions
	if instructions == "" {
		instructions = DefaultScheduleInstructions
	}

	systemPrompt, userPrompt, err := BuildPrompt(PromptInput{
		TenantID:       req.TenantID,
		LocationID:     req.LocationID,
		StartDate:      startDate,
		EndDate:        endDate,
		Instructions:   instructions,
		OperatingHours: hoursSummary,
		Availability:   availabilitySummary,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}

	rawOutput, err := a.generator.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}

	parsed, err := ExtractScheduleObject(rawOutput)
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}

	sanitized, err := SanitizeSchedulePayload(parsed)
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}

	meta := SummarizeGeneratedSchedule(sanitized)
	log.Printf("schedule generated for tenant %s location %s: %d employees, %d shifts",
		req.TenantID, req.LocationID, meta["employee_count"], meta["schedule_count"])

	response["instructions_used"] = instructions
	response["bulk_update_payload"] = sanitized
	response["generation_metadata"] = meta
	response["raw_agent_output"] = rawOutput
	return response, nil
}

// resolveWindow returns the [start, end) window in UTC. Invalid or missing
// dates fall back to today and a fourteen-day span.
func resolveWindow(startDate, endDate string) (time.Time, time.Time) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if startDate != "" {
		if parsed, err := time.Parse("2006-01-02", startDate); err == nil {
			start = parsed.UTC()
		} else {
			log.Printf("invalid start_date %q, using default", startDate)
		}
	}
	end := start.AddDate(0, 0, 14)
	if endDate != "" {
		if parsed, err := time.Parse("2006-01-02", endDate); err == nil {
			end = parsed.UTC().AddDate(0, 0, 1)
		} else {
			log.Printf("invalid end_date %q, using default", endDate)
		}
	}
	return start, end
}

// countOperatingDays counts open days in an operating-hours summary,
// tolerating the pass-through shapes SummarizeOperatingHours can return.
func countOperatingDays(summary any) int {
	switch v := summary.(type) {
	case []any:
		open := 0
		for _, item := range v {
			if entry, ok := item.(map[string]any); ok {
				if isOpen, _ := entry["isOpen"].(bool); isOpen {
					open++
				}
			}
		}
		return open
	case map[string]any:
		if isOpen, _ := v["isOpen"].(bool); isOpen {
			return 1
		}
	}
	return 0
}
