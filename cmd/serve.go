package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cmdb-sync/core/archive"
	"cmdb-sync/core/config"
	"cmdb-sync/core/database"
	"cmdb-sync/core/history"
	"cmdb-sync/core/loader"
	"cmdb-sync/core/logger"
	"cmdb-sync/core/middleware/auth"
	"cmdb-sync/core/middleware/rayid"
	"cmdb-sync/core/reconcile"
	"cmdb-sync/core/storage"
	"cmdb-sync/feature/opsview"
	"cmdb-sync/feature/servicenow"
	"cmdb-sync/feature/status"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync HTTP service",
	Long: `Starts the HTTP server exposing sync triggers and run reports.
Concurrent triggers join the run already in flight, so at most one sync
is active at a time.`,
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

		// 3. Connect the CMDB source and the monitoring target
		snowClient, err := servicenow.NewClient(cfg.ServiceNow)
		if err != nil {
			logg.Fatal("Failed to create servicenow client", zap.Error(err))
		}
		source := servicenow.NewSource(snowClient, logg)

		opsClient, err := opsview.NewClient(cfg.Opsview, logg)
		if err != nil {
			logg.Fatal("Failed to create opsview client", zap.Error(err))
		}
		// The session lives as long as the process; the login doubles
		// as a connection check at startup.
		if err := opsClient.Login(context.Background()); err != nil {
			logg.Fatal("Failed to log in to opsview", zap.Error(err))
		}

		runner := &reconcile.Runner{
			Source: source,
			Target: opsview.NewTarget(opsClient, source.Instance(), logg),
			Logger: logg,
			Config: cfg.Sync,
		}

		// 4. Connect to Database (Optional)
		var store *history.Store
		if cfg.Database.Enabled {
			if db, err := database.Connect(cfg.Database); err != nil {
				logg.Warn("Optional database connection failed", zap.Error(err))
			} else {
				s := history.NewStore(db)
				if err := s.Migrate(); err != nil {
					logg.Warn("Run history migration failed", zap.Error(err))
				} else {
					store = s
					logg.Info("Connected to run history database")
				}
			}
		}

		// 5. Connect to Report Archive (Optional)
		var reports *archive.Store
		if cfg.Storage.Bucket != "" {
			if client, err := storage.NewClient(cfg.Storage); err != nil {
				logg.Warn("Optional report archive unavailable", zap.Error(err))
			} else {
				s := archive.NewStore(client, cfg.Storage.Bucket, logg)
				if err := s.EnsureBucket(context.Background()); err != nil {
					logg.Warn("Optional report archive unavailable", zap.Error(err))
				} else {
					reports = s
				}
			}
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 7. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		mgr.Register(status.NewFeature(runner, store, reports, logg))

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
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Liveness probe (Public)
		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("instance", source.Instance()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		if err := opsClient.Logout(context.Background()); err != nil {
			logg.Warn("Opsview logout failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
