package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/ibolinva/hapivet-schedule-agent/internal/config"
	"github.com/ibolinva/hapivet-schedule-agent/router"
	"github.com/ibolinva/hapivet-schedule-agent/services"
)

func main() {
	log.Println("Starting schedule agent API...")

	// Load Config
	configPath := os.Getenv("HAPIVET_CONFIG_PATH")
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Optional audit database. The pipeline works without it; generation
	// runs just go unrecorded.
	var pg *sql.DB
	if config.App.DatabaseURL != "" {
		var err error
		pg, err = sql.Open("postgres", config.App.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()

		if err := pg.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		log.Println("  Connected to audit database")

		audit := services.NewGenerationAuditService(pg)
		if err := audit.EnsureSchema(); err != nil {
			log.Printf("Warning: failed to ensure audit schema: %v", err)
		}
	} else {
		log.Println("  DATABASE_URL not set, generation audit trail disabled")
	}

	// Optional upstream-context cache.
	var rdb *redis.Client
	if config.App.RedisURL != "" {
		opts, err := redis.ParseURL(config.App.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		log.Println("  Upstream context cache enabled")
	} else {
		log.Println("  REDIS_URL not set, upstream context cache disabled")
	}

	if config.App.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, AI generation requests will fail")
	}

	r := router.NewGinRouter(pg, rdb)

	addr := ":" + config.App.Port
	log.Printf("Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
