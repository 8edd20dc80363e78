package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

// GenerationAuditService persists one row per pipeline run so generated
// schedules can be traced back to the exact model output that produced
// them. Persistence is best-effort: a failed insert never fails the request.
type GenerationAuditService struct {
	DB *sql.DB
}

func NewGenerationAuditService(db *sql.DB) *GenerationAuditService {
	return &GenerationAuditService{DB: db}
}

// GenerationRecord is the audit row for a single pipeline invocation.
type GenerationRecord struct {
	RequestID     string
	TenantID      string
	LocationID    string
	UserID        string
	Mode          string
	StartDate     string
	EndDate       string
	EmployeeCount int
	ScheduleCount int
	TimeSlotCount int
	RawOutput     string
}

// EnsureSchema creates the audit table when it does not exist yet.
// Call this during startup.
func (s *GenerationAuditService) EnsureSchema() error {
	if s.DB == nil {
		return nil
	}
	_, err := s.DB.Exec(`
		CREATE TABLE IF NOT EXISTS schedule_generation_runs (
			request_id      TEXT PRIMARY KEY,
			tenant_id       TEXT NOT NULL,
			location_id     TEXT NOT NULL,
			user_id         TEXT,
			mode            TEXT NOT NULL,
			start_date      DATE,
			end_date        DATE,
			employee_count  INTEGER NOT NULL DEFAULT 0,
			schedule_count  INTEGER NOT NULL DEFAULT 0,
			time_slot_count INTEGER NOT NULL DEFAULT 0,
			raw_output      TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

// RecordRun inserts the audit row for a completed pipeline invocation.
func (s *GenerationAuditService) RecordRun(rec GenerationRecord) error {
	if s.DB == nil {
		return nil
	}
	_, err := s.DB.Exec(`
		INSERT INTO schedule_generation_runs
			(request_id, tenant_id, location_id, user_id, mode, start_date, end_date,
			 employee_count, schedule_count, time_slot_count, raw_output, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.RequestID, rec.TenantID, rec.LocationID, rec.UserID, rec.Mode,
		nullIfEmpty(rec.StartDate), nullIfEmpty(rec.EndDate),
		rec.EmployeeCount, rec.ScheduleCount, rec.TimeSlotCount,
		rec.RawOutput, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record generation run: %w", err)
	}
	return nil
}

// RecordRunAsync persists the row without blocking the response path.
func (s *GenerationAuditService) RecordRunAsync(rec GenerationRecord) {
	if s.DB == nil {
		return
	}
	go func() {
		if err := s.RecordRun(rec); err != nil {
			log.Printf("failed to record generation run %s: %v", rec.RequestID, err)
		}
	}()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
