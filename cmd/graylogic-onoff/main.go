// Gray Logic On/Off - relay device service.
//
// This is the main entry point for the on/off device service. It loads
// device instances from SQLite, binds them to hardware ports, and exposes
// them over a REST/WebSocket API while publishing every state change to
// MQTT, InfluxDB and Prometheus.
//
// Usage:
//
//	graylogic-onoff                          run the service
//	graylogic-onoff token -sub rules -role automation
//	                                         print a bearer token
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/nerrad567/gray-logic-onoff/migrations"

	"github.com/nerrad567/gray-logic-onoff/internal/api"
	"github.com/nerrad567/gray-logic-onoff/internal/audit"
	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/eventbus"
	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-onoff/internal/instance"
	"github.com/nerrad567/gray-logic-onoff/internal/onoff"
	"github.com/nerrad567/gray-logic-onoff/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// subscription is a named event bus handler.
type subscription struct {
	name    string
	handler eventbus.Handler
}

// historyRetentionUnit converts automation.history_retention_days.
const historyRetentionUnit = 24 * time.Hour

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	log := logging.Default()
	log.Info("starting Gray Logic On/Off",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"site", cfg.Site.ID,
		"site_name", cfg.Site.Name,
		"timezone", cfg.Site.Timezone,
		"level", cfg.Logging.Level,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	checks := map[string]api.HealthCheck{"database": db.HealthCheck}

	// MQTT carries bridge-backed ports and the retained device state topics.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.ForComponent("mqtt"))
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		checks["mqtt"] = mqttClient.HealthCheck
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
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
		checks["influxdb"] = influxClient.HealthCheck
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	pool := hardware.NewPool()
	pool.SetLogger(log.ForComponent("hardware"))
	var portClient hardware.MQTTClient
	if mqttClient != nil {
		portClient = mqttClient
	}
	if loadErr := hardware.LoadPorts(pool, cfg.Hardware.Ports, portClient); loadErr != nil {
		return fmt.Errorf("loading hardware ports: %w", loadErr)
	}
	log.Info("hardware ports registered", "ports", pool.Len())

	promCollector, err := telemetry.NewPrometheusCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	var collector telemetry.Collector = promCollector
	if influxClient != nil {
		collector = telemetry.Multi(promCollector, telemetry.BuildHook(influxClient.WriteBuildOutcome))
	}

	bus := eventbus.New()
	bus.SetLogger(log.ForComponent("eventbus"))
	history := instance.NewSQLiteStateHistoryRepository(db.DB)

	subscribers := []subscription{
		{"history", instance.HistoryRecorder(history)},
		{"metrics", telemetry.EventHandler(promCollector)},
	}
	if mqttClient != nil {
		subscribers = append(subscribers, subscription{"mqtt", eventbus.NewMQTTSink(mqttClient, byte(cfg.MQTT.QoS)).Handle})
	}
	if influxClient != nil {
		subscribers = append(subscribers, subscription{"influxdb", influxClient.Handle})
	}
	for _, sub := range subscribers {
		if subErr := bus.Subscribe(sub.name, sub.handler); subErr != nil {
			return fmt.Errorf("subscribing %s: %w", sub.name, subErr)
		}
	}

	classes, err := configurable.NewCatalog(configurable.Deps{
		Ports:  pool,
		Bus:    bus,
		Logger: log.ForComponent("automation"),
	}, onoff.Factory)
	if err != nil {
		return fmt.Errorf("building class catalog: %w", err)
	}

	units := automation.NewRegistry()
	units.SetLogger(log.ForComponent("automation"))

	manager := instance.NewManager(classes, instance.NewSQLiteRepository(db.DB), units,
		instance.WithCollector(collector),
		instance.WithHistory(history),
		instance.WithLogger(log.ForComponent("instance")),
	)
	active, err := manager.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading instances: %w", err)
	}
	log.Info("instances activated", "active", active)

	apiServer, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Logger:    log.ForComponent("api"),
		Classes:   classes,
		Instances: manager,
		Ports:     pool,
		History:   history,
		Audit:     audit.NewSQLiteRepository(db.DB),
		Gatherer:  prometheus.DefaultGatherer,
		Checks:    checks,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if subErr := bus.Subscribe("websocket", apiServer.Hub().Handle); subErr != nil {
		return fmt.Errorf("subscribing websocket: %w", subErr)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		units.Run(ctx, cfg.GetReconcileInterval())
	}()
	go func() {
		defer wg.Done()
		retention := time.Duration(cfg.Automation.HistoryRetentionDays) * historyRetentionUnit
		instance.RunPruner(ctx, history, retention, log.ForComponent("history"))
	}()

	log.Info("Gray Logic On/Off ready",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"subscribers", bus.Subscribers(),
	)

	<-ctx.Done()
	log.Info("shutdown signal received")
	wg.Wait()

	if influxClient != nil {
		influxClient.Flush()
	}
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
