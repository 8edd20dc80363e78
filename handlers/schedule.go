package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ibolinva/hapivet-schedule-agent/internal/schedule"
	"github.com/ibolinva/hapivet-schedule-agent/services"
)

// ScheduleHandler exposes the schedule generation pipeline and the upstream
// data proxies.
type ScheduleHandler struct {
	Agent  *schedule.Agent
	Client *services.SchedulingClient
	Audit  *services.GenerationAuditService
}

func NewScheduleHandler(agent *schedule.Agent, client *services.SchedulingClient, audit *services.GenerationAuditService) *ScheduleHandler {
	return &ScheduleHandler{
		Agent:  agent,
		Client: client,
		Audit:  audit,
	}
}

// ScheduleQueryRequest is the request body for schedule generation.
// use_agent defaults to true; dates are YYYY-MM-DD and optional.
type ScheduleQueryRequest struct {
	Query     string `json:"query"`
	UseAgent  *bool  `json:"use_agent"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// HealthCheck reports service liveness.
func (h *ScheduleHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "hapivet-schedule-agent",
		"version": "1.0.0",
	})
}

// GenerateSchedule runs the full pipeline: fetch operating hours and
// availability for the authenticated tenant/location, then generate and
// validate a schedule payload.
func (h *ScheduleHandler) GenerateSchedule(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ScheduleQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	useAgent := true
	if req.UseAgent != nil {
		useAgent = *req.UseAgent
	}

	ctx := c.Request.Context()

	hours, err := h.Client.GetOperatingHours(ctx, rc.Token, rc.TenantID, rc.LocationID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	availability, err := h.Client.SearchAvailability(ctx, rc.Token, rc.TenantID, rc.LocationID, truePtr(), truePtr())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Agent.GenerateSchedule(ctx, schedule.GenerateRequest{
		TenantID:       rc.TenantID,
		LocationID:     rc.LocationID,
		OperatingHours: hours,
		Availability:   availability,
		Instructions:   req.Query,
		UseAgent:       useAgent,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		log.Printf("schedule generation failed for tenant %s: %v", rc.TenantID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result["user_id"] = rc.UserID
	h.recordRun(rc, result)

	c.JSON(http.StatusOK, result)
}

// GetHospitalHours proxies the operating-hours fetch for the authenticated
// tenant/location so browser clients avoid direct cross-origin calls.
func (h *ScheduleHandler) GetHospitalHours(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	hours, err := h.Client.GetOperatingHours(c.Request.Context(), rc.Token, rc.TenantID, rc.LocationID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"tenant_id":       rc.TenantID,
		"location_id":     rc.LocationID,
		"operating_hours": hours,
		"message":         "Hospital operating hours fetched successfully",
	})
}

// GetEmployeeAvailability proxies the availability search for the
// authenticated tenant/location.
func (h *ScheduleHandler) GetEmployeeAvailability(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	availability, err := h.Client.SearchAvailability(c.Request.Context(), rc.Token, rc.TenantID, rc.LocationID, truePtr(), truePtr())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"tenant_id":             rc.TenantID,
		"location_id":           rc.LocationID,
		"employee_availability": availability,
		"message":               "Employee availability fetched successfully",
	})
}

// ValidateContext verifies the bearer token and echoes the resolved
// identity. Useful for integration checks without any data operations.
func (h *ScheduleHandler) ValidateContext(c *gin.Context) {
	rc, ok := requestContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user_id":     rc.UserID,
		"tenant_id":   rc.TenantID,
		"location_id": rc.LocationID,
		"message":     "Token validated and context extracted successfully",
	})
}

func (h *ScheduleHandler) recordRun(rc *services.RequestContext, result map[string]any) {
	if h.Audit == nil {
		return
	}

	rec := services.GenerationRecord{
		RequestID:  uuid.NewString(),
		TenantID:   rc.TenantID,
		LocationID: rc.LocationID,
		UserID:     rc.UserID,
		Mode:       "ai",
	}
	if mode, ok := result["mode"].(string); ok {
		rec.Mode = mode
	}
	if window, ok := result["schedule_window"].(map[string]any); ok {
		rec.StartDate, _ = window["startDate"].(string)
		rec.EndDate, _ = window["endDate"].(string)
	}
	if raw, ok := result["raw_agent_output"].(string); ok {
		rec.RawOutput = raw
	}
	switch meta := result["generation_metadata"].(type) {
	case map[string]int:
		rec.EmployeeCount = meta["employee_count"]
		rec.ScheduleCount = meta["schedule_count"]
		rec.TimeSlotCount = meta["time_slot_count"]
	case map[string]any:
		if n, ok := meta["employee_count"].(int); ok {
			rec.EmployeeCount = n
		}
	}

	h.Audit.RecordRunAsync(rec)
}

func truePtr() *bool {
	v := true
	return &v
}
