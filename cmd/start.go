package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"courtsync/core/archive"
	"courtsync/core/config"
	"courtsync/core/database"
	"courtsync/core/logger"
	"courtsync/core/middleware/auth"
	"courtsync/core/middleware/rayid"

	"courtsync/core/clock"
	"courtsync/feature/maintenance"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "courtsync/docs/swagger"
)

// @title CourtSync Maintenance API
// @version 1.0
// @description API for reconciling court reservations and queue sessions.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the maintenance server",
	Long:  `Starts the HTTP server exposing the maintenance run and dev clock endpoints.`,
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

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg = logg.With(zap.String("env", cfg.Server.Env))
		logg.Info("Connected to database")

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 5. Report Archival (Optional)
		var archiver *archive.Archiver
		if cfg.Archive.Enabled {
			client, err := archive.NewClient(cfg.Archive)
			if err != nil {
				logg.Fatal("Failed to create archive client", zap.Error(err))
			}
			archiver = archive.NewArchiver(client, cfg.Archive.Bucket, cfg.Archive.Prefix)
			logg.Info("Report archival enabled", zap.String("bucket", cfg.Archive.Bucket))
		}

		// 6. Wire the maintenance feature
		clk := clock.New(db, cfg.Server.IsDevelopment())
		svc := maintenance.NewService(db, clk, logg, archiver)
		handler := maintenance.NewHandler(svc, clk, cfg.Server.IsDevelopment(), logg)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			// Log error if happened
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Register Routes
		handler.RegisterRoutes(app)

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
