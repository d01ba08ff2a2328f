// Spectra Core - Instrument Control Event Engine
//
// This is the main entry point for the Spectra Core daemon. Spectra
// publishes rate-controlled, quality-annotated attribute change events
// for laboratory instrument controllers:
//   - Controller devices survive re-initialisation without losing identity
//   - Attribute events carry value, timestamp, and quality over MQTT
//   - State and status are held as retained documents on the broker
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/calderlabs/spectra-core/migrations"

	"github.com/calderlabs/spectra-core/internal/api"
	"github.com/calderlabs/spectra-core/internal/archive"
	"github.com/calderlabs/spectra-core/internal/bridge"
	"github.com/calderlabs/spectra-core/internal/busmqtt"
	"github.com/calderlabs/spectra-core/internal/device"
	"github.com/calderlabs/spectra-core/internal/element"
	"github.com/calderlabs/spectra-core/internal/infrastructure/config"
	"github.com/calderlabs/spectra-core/internal/infrastructure/database"
	"github.com/calderlabs/spectra-core/internal/infrastructure/influxdb"
	"github.com/calderlabs/spectra-core/internal/infrastructure/logging"
	"github.com/calderlabs/spectra-core/internal/infrastructure/mqtt"
	"github.com/calderlabs/spectra-core/internal/properties"
	"github.com/calderlabs/spectra-core/internal/workpool"
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

// shutdownTimeout bounds the drain of queued attribute pushes on exit.
const shutdownTimeout = 5 * time.Second

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
	log.Info("starting Spectra Core",
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

	// Size the shared event pool before any device touches it
	if poolErr := workpool.Configure(workpool.Config{
		Workers:   cfg.Pool.Workers,
		QueueSize: cfg.Pool.QueueSize,
		Logger:    log,
	}); poolErr != nil {
		return fmt.Errorf("configuring event pool: %w", poolErr)
	}
	log.Info("event pool configured",
		"workers", cfg.Pool.Workers,
		"queue_size", cfg.Pool.QueueSize,
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

	// Device property store backed by the database
	propStore, err := properties.NewSQLiteStore(db.DB)
	if err != nil {
		return fmt.Errorf("creating property store: %w", err)
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
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

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// The device bus publishes attribute events and retained state
	// documents over MQTT
	var bus device.Bus
	bus, err = busmqtt.New(mqttClient)
	if err != nil {
		return fmt.Errorf("creating device bus: %w", err)
	}

	// Connect to InfluxDB (optional) and archive change events through it
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		bus, err = archive.Wrap(bus, influxClient)
		if err != nil {
			return fmt.Errorf("wrapping bus with archive: %w", err)
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	// Element pool with the built-in controller classes
	elemPool := element.NewPool()
	for _, class := range element.StandardClasses() {
		elemPool.RegisterClass(class)
	}

	// Bring up the configured controller devices
	registry := device.NewRegistry()
	bridgesUp, err := startControllers(ctx, cfg, bus, elemPool, propStore, registry, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, cd := range bridgesUp {
			cd.Shutdown()
		}
	}()
	log.Info("controller devices initialised", "count", len(bridgesUp))

	// Start the HTTP API
	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	if influxClient != nil {
		checks["influxdb"] = influxClient
	}
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Registry: registry,
		Checks:   checks,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	apiServer.Start()
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Drain queued attribute pushes before the bus goes away
	drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer drainCancel()
	if drainErr := workpool.Shared().Shutdown(drainCtx); drainErr != nil {
		log.Warn("event pool did not drain cleanly", "error", drainErr)
	}

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Controller device bridges
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("Spectra Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SPECTRA_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SPECTRA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startControllers creates and initialises one controller device per
// configured controller, registering each with the device registry.
//
// A controller whose stored properties are incomplete still comes up,
// parked in ALARM until the properties are supplied; only structural
// failures (bad config, unknown class) abort startup.
//
// Parameters:
//   - ctx: Context for property loading
//   - cfg: Application configuration
//   - bus: Device bus the controller devices publish on
//   - elemPool: Element pool that owns the controllers
//   - propStore: Stored controller properties
//   - registry: Device registry the API serves from
//   - log: Logger instance
//
// Returns:
//   - []*bridge.ControllerDevice: Initialised controller devices
//   - error: If any controller fails structurally
func startControllers(
	ctx context.Context,
	cfg *config.Config,
	bus device.Bus,
	elemPool *element.Pool,
	propStore *properties.SQLiteStore,
	registry *device.Registry,
	log *logging.Logger,
) ([]*bridge.ControllerDevice, error) {
	bridgesUp := make([]*bridge.ControllerDevice, 0, len(cfg.Controllers))

	for _, ctrlCfg := range cfg.Controllers {
		alias := ctrlCfg.Alias
		if alias == "" {
			alias = ctrlCfg.Name
		}

		dev, err := device.New(device.Config{
			Name:   ctrlCfg.Name,
			Bus:    bus,
			Logger: log,
		})
		if err != nil {
			return nil, fmt.Errorf("creating device %q: %w", ctrlCfg.Name, err)
		}

		cd, err := bridge.NewControllerDevice(bridge.Config{
			Name:    ctrlCfg.Name,
			Alias:   alias,
			Type:    ctrlCfg.Type,
			Library: ctrlCfg.Library,
			Class:   ctrlCfg.Class,
			ID:      ctrlCfg.ID,
			RoleIDs: ctrlCfg.RoleIDs,
		}, dev, elemPool, propStore, log)
		if err != nil {
			return nil, fmt.Errorf("creating controller device %q: %w", ctrlCfg.Name, err)
		}

		if err := cd.InitDevice(ctx); err != nil {
			return nil, fmt.Errorf("initialising controller %q: %w", ctrlCfg.Name, err)
		}

		registry.Add(cd.Device)
		bridgesUp = append(bridgesUp, cd)
		log.Info("controller device up",
			"name", ctrlCfg.Name,
			"class", ctrlCfg.Class,
		)
	}

	return bridgesUp, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
