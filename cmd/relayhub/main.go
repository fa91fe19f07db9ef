// Relay Hub - IoT state relay for embedded devices
//
// This is the main entry point for the Relay Hub application. The hub
// accepts state pushes from embedded devices (sensor nodes, RFID and
// keypad readers, face-recognition nodes) over HTTP, fans actuator
// transitions out to WebSocket subscribers, mirrors state to durable
// storage, and answers pull-style queries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/relayhub-core/migrations"

	"github.com/nerrad567/relayhub-core/internal/api"
	"github.com/nerrad567/relayhub-core/internal/event"
	"github.com/nerrad567/relayhub-core/internal/infrastructure/config"
	"github.com/nerrad567/relayhub-core/internal/infrastructure/database"
	"github.com/nerrad567/relayhub-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/relayhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/relayhub-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/relayhub-core/internal/relay"
	"github.com/nerrad567/relayhub-core/internal/state"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Relay Hub",
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
	db, err := database.Open(ctx, database.Config{
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

	// Initialise state registry and restore the last mirrored snapshot,
	// so actuator and sensor state survive a restart.
	registry := state.NewRegistry()
	mirror := state.NewSQLiteSnapshotRepository(db.DB)
	if snap, loadErr := mirror.Load(ctx); loadErr != nil {
		log.Warn("could not load mirrored snapshot, starting fresh", "error", loadErr)
	} else if snap != nil {
		registry.Restore(*snap)
		log.Info("state restored from mirror",
			"actuator_on", snap.ActuatorOn,
			"temperature", snap.Temperature,
			"humidity", snap.Humidity,
		)
	}

	events := event.NewSQLiteRepository(db.DB)

	// WebSocket hub is created before the relay router because the router
	// broadcasts through it.
	hub := api.NewHub(cfg.WebSocket, registry, log)

	// Servo forwarder (optional)
	var forwarder *relay.Forwarder
	if cfg.Devices.ServoEndpoint != "" {
		forwarder = relay.NewForwarder(cfg.Devices.ServoEndpoint, cfg.GetForwardTimeout(), log)
		log.Info("servo forwarding enabled", "endpoint", cfg.Devices.ServoEndpoint)
	} else {
		log.Info("servo forwarding disabled")
	}

	// Connect to MQTT broker (optional)
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
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Relay router: every inbound command funnels through here.
	relayDeps := relay.Deps{
		Registry:       registry,
		Events:         events,
		Mirror:         mirror,
		Broadcaster:    hub,
		Forwarder:      forwarder,
		Logger:         log,
		ActuatorID:     cfg.Devices.ActuatorID,
		SensorDeviceID: cfg.Devices.SensorID,
	}
	// Assign optional integrations only when present; a typed-nil client
	// inside a non-nil interface would defeat the router's nil checks.
	if mqttClient != nil {
		relayDeps.Bus = mqttClient
	}
	if influxClient != nil {
		relayDeps.Telemetry = influxClient
	}

	router, err := relay.New(relayDeps)
	if err != nil {
		return fmt.Errorf("creating relay router: %w", err)
	}

	// Route MQTT set requests through the same path as HTTP and WebSocket.
	if mqttClient != nil {
		topics := mqtt.Topics{}
		if subErr := mqttClient.Subscribe(topics.AllActuatorSets(), byte(cfg.MQTT.QoS), router.HandleActuatorSet); subErr != nil {
			return fmt.Errorf("subscribing to actuator set requests: %w", subErr)
		}
		log.Info("subscribed to actuator set requests", "topic", topics.AllActuatorSets())
	}

	// Start the API server
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Router:      router,
		Registry:    registry,
		Events:      events,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, apiServer, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Relay Hub stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RELAYHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RELAYHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients may be nil when their integration is disabled.
func healthCheck(ctx context.Context, db *database.DB, apiServer *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
