package main // Entry point package

import (
	"database/sql" // pool handle type
	"log"          // Logging library
	"time"         // outbound call timeout

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/labstack/echo/v4/middleware"

	"github.com/avetisyanh/portal-sync/internal/config"     // Internal config loader
	"github.com/avetisyanh/portal-sync/internal/database"   // MySQL pool constructor
	"github.com/avetisyanh/portal-sync/internal/handler"    // Webhook handlers
	"github.com/avetisyanh/portal-sync/internal/portal"     // Portal client
	"github.com/avetisyanh/portal-sync/internal/repository" // Upsert repositories
	"github.com/avetisyanh/portal-sync/internal/router"     // Internal router setup
	queue_publisher "github.com/avetisyanh/portal-sync/internal/service"
	"github.com/avetisyanh/portal-sync/internal/syncstate" // Redis last-sync bookkeeping
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly
	cfg := config.Load()

	// The pool is process-wide state: constructed once here, released on
	// shutdown.  A missing DB config is not fatal; the webhook handlers
	// report it per invocation and the health check stays green.
	var db *sql.DB
	if cfg.DBConfigured() {
		var err error
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database open failed: %v", err)
		}
		defer db.Close()
	} else {
		log.Printf("database not configured; webhook persistence disabled")
	}

	// Redis is optional; a nil client disables last-sync bookkeeping.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; sync-state tracking disabled")
	}

	client := portal.NewClient(cfg.ExternalWebhookURL, cfg.FacilityID,
		time.Duration(cfg.HTTPTimeoutSec)*time.Second)

	// Stores stay nil without a pool; a typed nil repo inside the interface
	// would defeat the handler's nil check, so they are only assigned when
	// the pool exists.
	h := handler.NewWebhookHandler(cfg, client, nil, nil, nil, syncstate.New(rdb))
	if db != nil {
		h.Signups = repository.NewSignupRepo(db)
		h.Courses = repository.NewCourseRepo(db)
		h.Codes = repository.NewElearningCodeRepo(db)
	}
	h.Publish = queue_publisher.PublishSyncCompleted

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	router.RegisterRoutes(e)
	router.RegisterWebhooks(e, h)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
