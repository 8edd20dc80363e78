package router

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/ibolinva/hapivet-schedule-agent/handlers"
	"github.com/ibolinva/hapivet-schedule-agent/internal/config"
	"github.com/ibolinva/hapivet-schedule-agent/internal/schedule"
	"github.com/ibolinva/hapivet-schedule-agent/services"
)

func NewGinRouter(pg *sql.DB, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize services
	authService := services.NewAuthService(config.App.AuthBaseURL)
	schedulingClient := services.NewSchedulingClient(
		config.App.SchedulerBaseURL,
		time.Duration(config.App.RequestTimeoutSeconds)*time.Second,
		rdb,
	)
	generator := services.NewOpenAIService(
		config.App.OpenAI.APIKey,
		config.App.OpenAI.Model,
		config.App.OpenAI.Temperature,
		config.App.OpenAI.BaseURL,
	)
	agent := schedule.NewAgent(generator, config.App.MaxAvailabilityEntries)
	auditService := services.NewGenerationAuditService(pg)

	// Initialize handlers
	scheduleHandler := handlers.NewScheduleHandler(agent, schedulingClient, auditService)
	authMiddleware := handlers.NewAuthMiddleware(authService)

	r.GET("/health", scheduleHandler.HealthCheck)

	api := r.Group("/", authMiddleware.RequireContext())
	{
		api.POST("/schedule/generate", scheduleHandler.GenerateSchedule)
		api.GET("/hospital/hours", scheduleHandler.GetHospitalHours)
		api.GET("/hospital/availability", scheduleHandler.GetEmployeeAvailability)
		api.GET("/context/validate", scheduleHandler.ValidateContext)
	}

	return r
}
