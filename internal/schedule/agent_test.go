package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator returns a canned response and records the prompts it saw.
type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastUser   string
	calls      int
}

func (g *stubGenerator) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	g.calls++
	g.lastSystem = systemPrompt
	g.lastUser = userPrompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func sampleHours() map[string]any {
	return map[string]any{
		"items": []any{
			map[string]any{"dayOfWeek": float64(1), "isOpen": true, "timeSlots": []any{
				map[string]any{"startTime": "08:00", "endTime": "18:00"},
			}},
			map[string]any{"dayOfWeek": float64(2), "isOpen": true, "timeSlots": []any{}},
			map[string]any{"dayOfWeek": float64(7), "isOpen": false, "timeSlots": []any{}},
		},
	}
}

func sampleAvailability() map[string]any {
	return map[string]any{
		"employeeGroups": []any{
			map[string]any{"employeeId": "E1", "employeeName": "Dr. Patel", "availabilities": []any{}},
			map[string]any{"employeeId": "E2", "employeeName": "J. Reyes", "availabilities": []any{}},
		},
	}
}

func TestGenerateSchedule_ContextOnly(t *testing.T) {
	gen := &stubGenerator{}
	agent := NewAgent(gen, 12)

	result, err := agent.GenerateSchedule(context.Background(), GenerateRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-9",
		OperatingHours: sampleHours(),
		Availability:   sampleAvailability(),
		UseAgent:       false,
		StartDate:      "2026-03-02",
		EndDate:        "2026-03-15",
	})
	require.NoError(t, err)

	assert.Equal(t, true, result["success"])
	assert.Equal(t, "context_only", result["mode"])
	assert.Equal(t, 0, gen.calls)
	assert.NotContains(t, result, "bulk_update_payload")
	assert.NotContains(t, result, "raw_agent_output")

	window := result["schedule_window"].(map[string]any)
	assert.Equal(t, "2026-03-02", window["startDate"])
	assert.Equal(t, "2026-03-15", window["endDate"])

	meta := result["generation_metadata"].(map[string]any)
	assert.Equal(t, 2, meta["employee_count"])
	assert.Equal(t, 2, meta["operating_days"])
}

func TestGenerateSchedule_DefaultFourteenDayWindow(t *testing.T) {
	agent := NewAgent(&stubGenerator{}, 12)

	result, err := agent.GenerateSchedule(context.Background(), GenerateRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-9",
		OperatingHours: sampleHours(),
		Availability:   sampleAvailability(),
		UseAgent:       false,
		StartDate:      "2026-03-02",
	})
	require.NoError(t, err)

	window := result["schedule_window"].(map[string]any)
	assert.Equal(t, "2026-03-02", window["startDate"])
	assert.Equal(t, "2026-03-15", window["endDate"])
}

func TestGenerateSchedule_WithGenerator(t *testing.T) {
	gen := &stubGenerator{
		response: "Here you go:\n```json\n{\"employeeSchedules\": [{\"employeeId\": \"E1\", \"schedules\": [{\"title\": \"Open\", \"workDate\": \"2026-03-02\", \"timeSlots\": [{\"startTime\": \"08:00\", \"endTime\": \"16:00\"}]}]}]}\n```",
	}
	agent := NewAgent(gen, 12)

	result, err := agent.GenerateSchedule(context.Background(), GenerateRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-9",
		OperatingHours: sampleHours(),
		Availability:   sampleAvailability(),
		Instructions:   "Weekend coverage matters most.",
		UseAgent:       true,
		StartDate:      "2026-03-02",
		EndDate:        "2026-03-15",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, ScheduleSystemPrompt, gen.lastSystem)
	assert.Contains(t, gen.lastUser, "Weekend coverage matters most.")

	assert.Equal(t, "Weekend coverage matters most.", result["instructions_used"])
	assert.Equal(t, gen.response, result["raw_agent_output"])

	payload := result["bulk_update_payload"].(map[string]any)
	assert.Equal(t, false, payload["validateOnly"])
	shift := payload["employeeSchedules"].([]any)[0].(map[string]any)["schedules"].([]any)[0].(map[string]any)
	assert.Equal(t, "2026-03-02T00:00:00Z", shift["workDate"])
	assert.Equal(t, true, shift["isActive"])

	meta := result["generation_metadata"].(map[string]int)
	assert.Equal(t, 1, meta["employee_count"])
	assert.Equal(t, 1, meta["schedule_count"])
	assert.Equal(t, 1, meta["time_slot_count"])
}

func TestGenerateSchedule_DefaultInstructionsUsed(t *testing.T) {
	gen := &stubGenerator{response: `{"employeeSchedules": [{"employeeId": "E1"}]}`}
	agent := NewAgent(gen, 12)

	result, err := agent.GenerateSchedule(context.Background(), GenerateRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-9",
		OperatingHours: sampleHours(),
		Availability:   sampleAvailability(),
		UseAgent:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultScheduleInstructions, result["instructions_used"])
}

func TestGenerateSchedule_MalformedOutput(t *testing.T) {
	gen := &stubGenerator{response: "I cannot help with that."}
	agent := NewAgent(gen, 12)

	_, err := agent.GenerateSchedule(context.Background(), GenerateRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-9",
		OperatingHours: sampleHours(),
		Availability:   sampleAvailability(),
		UseAgent:       true,
	})
	require.Error(t, err)

	var malformed *MalformedOutputError
	assert.True(t, errors.As(err, &malformed))
}

func TestGenerateSchedule_InvalidPayload(t *testing.T) {
	gen := &stubGenerator{response: `{"employeeSchedules": []}`}
	agent := NewAgent(gen, 12)

	_, err := agent.GenerateSchedule(context.Background(), GenerateRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-9",
		OperatingHours: sampleHours(),
		Availability:   sampleAvailability(),
		UseAgent:       true,
	})
	require.Error(t, err)

	var invalid *InvalidPayloadError
	assert.True(t, errors.As(err, &invalid))
}

func TestGenerateSchedule_GeneratorFailureSurfaces(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	agent := NewAgent(gen, 12)

	_, err := agent.GenerateSchedule(context.Background(), GenerateRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-9",
		OperatingHours: sampleHours(),
		Availability:   sampleAvailability(),
		UseAgent:       true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}
