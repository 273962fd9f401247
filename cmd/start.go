package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"report-service/core/config"
	"report-service/core/contentrepo"
	"report-service/core/database"
	"report-service/core/loader"
	"report-service/core/logger"
	"report-service/core/middleware/auth"
	"report-service/core/middleware/rayid"
	"report-service/core/storage"

	"report-service/feature/events"
	"report-service/feature/reports"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "report-service/docs/swagger"
)

// @title Report Service API
// @version 1.0
// @description API for document audit trails and retention reports.
// @host localhost:8080
// @BasePath /api

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the report service server",
	Long:  `Starts the HTTP server, the synchronization scheduler and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (Required: the audit log lives here)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := events.Migrate(db); err != nil {
			logg.Fatal("Failed to migrate audit log schema", zap.Error(err))
		}
		if cols, err := database.GetTableColumns(db, "event_log"); err == nil {
			logg.Info("Audit log schema ready", zap.Int("columns", len(cols)))
		}

		// 4. Initialize Storage (Optional: only report archival needs it)
		var store storage.Client
		if s, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage connection failed, report archival disabled", zap.Error(err))
		} else {
			store = s
		}

		// 5. Content Repository Client
		repo := contentrepo.NewClient(cfg.Repository, logg)

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		eventsFeature := events.NewFeature(repo, db, cfg.Sync, logg)
		mapper := events.NewMapper(cfg.Sync.RetentionDays)

		mgr.Register(eventsFeature)
		mgr.Register(reports.NewFeature(repo, store, cfg.Storage.Bucket, cfg.Reports, mapper, logg))

		api := app.Group("/api")
		if err := mgr.LoadAll(api); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Synchronization Scheduler
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if cfg.Sync.SchedulerEnabled {
			scheduler := events.NewScheduler(
				eventsFeature.Reconciler(),
				cfg.Sync.RootID,
				time.Duration(cfg.Sync.IntervalSeconds)*time.Second,
				logg,
			)
			go scheduler.Start(ctx)
		} else {
			logg.Info("Synchronization scheduler disabled")
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
