// licensegate - device registration and licence approval service
//
// This is the main entry point for the licensegate application. Licensed
// applications register their machine identifier here and poll for approval;
// an administrator reviews the queue, approves or rejects requests, and
// watches changes arrive live over WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jhwan-dev/licensegate/migrations"

	"github.com/jhwan-dev/licensegate/internal/api"
	"github.com/jhwan-dev/licensegate/internal/auth"
	"github.com/jhwan-dev/licensegate/internal/infrastructure/config"
	"github.com/jhwan-dev/licensegate/internal/infrastructure/database"
	"github.com/jhwan-dev/licensegate/internal/infrastructure/logging"
	"github.com/jhwan-dev/licensegate/internal/infrastructure/mqtt"
	"github.com/jhwan-dev/licensegate/internal/registration"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting licensegate",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// WebSocket hub: created here because the registration service needs it
	// as a change notifier before the API server starts.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	notifiers := []registration.Notifier{hub}

	// Connect to MQTT broker (optional secondary event transport)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		notifiers = append(notifiers, &mqttEventNotifier{client: mqttClient, log: log})
	} else {
		log.Info("MQTT publisher disabled")
	}

	// Wire up the registration service
	service := registration.NewService(registration.NewRepository(db.DB), log, notifiers...)
	verifier := auth.NewVerifier(cfg.Admin.Username, cfg.Admin.PasswordHash)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		Service:     service,
		Verifier:    verifier,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.Server.Host, "port", cfg.Server.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server (drains in-flight requests, closes WebSocket clients)
	// 2. MQTT (if enabled)
	// 3. Database

	log.Info("licensegate stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LICENSEGATE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LICENSEGATE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	return nil
}

// mqttEventNotifier adapts the infrastructure MQTT client to the registration
// service's notifier contract. Publishing is best effort: a broker outage
// must never fail or delay a registration mutation, so errors are only logged.
type mqttEventNotifier struct {
	client *mqtt.Client
	log    *logging.Logger
}

// Notify implements registration.Notifier.
func (n *mqttEventNotifier) Notify(event registration.Event) {
	topic := mqtt.Topics{}.RegistrationEvents()
	if err := n.client.PublishJSON(topic, event); err != nil {
		n.log.Warn("publishing registration event failed", "topic", topic, "error", err)
	}
}
