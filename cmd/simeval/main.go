// Command simeval evaluates the energy consumption of a simulated building.
//
// It loads the simulator's event timeline, synthesizes the occupancy
// messages implied by entity movement, applies the lighting rules and
// writes an Energy_evaluation report. Results are stored in SQLite and,
// when configured, published to MQTT and the time-series databases. With the API enabled the
// process keeps serving stored runs until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-simeval/migrations"

	"github.com/nerrad567/gray-logic-simeval/internal/analysis"
	"github.com/nerrad567/gray-logic-simeval/internal/api"
	"github.com/nerrad567/gray-logic-simeval/internal/evaluation"
	"github.com/nerrad567/gray-logic-simeval/internal/export"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/tsdb"
	"github.com/nerrad567/gray-logic-simeval/internal/metrics"
	"github.com/nerrad567/gray-logic-simeval/internal/rules"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
	"github.com/nerrad567/gray-logic-simeval/internal/topology"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// reportDirPermissions is used when creating the report directory.
const reportDirPermissions = 0o750

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting simeval",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "level", cfg.Logging.Level)

	db, err := database.Open(ctx, database.ConfigFrom(cfg.Database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path, "migrations_applied", applied)

	runRepo := evaluation.NewSQLiteRepository(db.DB)
	timelineRepo := timeline.NewSQLiteRepository(db.DB)

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = connectMQTT(cfg.MQTT, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
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
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	var tsdbClient *tsdb.Client
	if cfg.TSDB.Enabled {
		tsdbClient, err = tsdb.Connect(ctx, cfg.TSDB)
		if err != nil {
			return fmt.Errorf("connecting to VictoriaMetrics: %w", err)
		}
		defer func() {
			log.Info("closing VictoriaMetrics connection")
			if closeErr := tsdbClient.Close(); closeErr != nil {
				log.Error("error closing VictoriaMetrics", "error", closeErr)
			}
		}()
		tsdbClient.SetOnError(func(err error) {
			log.Error("VictoriaMetrics write error", "error", err)
		})
		log.Info("VictoriaMetrics connected", "url", cfg.TSDB.URL)
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient, tsdbClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	metricsManager := metrics.NewManager(metrics.WithNamespace(cfg.Metrics.Namespace))

	runner, err := newRunner(cfg, log,
		analysis.WithRunRepository(runRepo),
		analysis.WithTimelineRepository(timelineRepo),
		analysis.WithExporter(newPublisher(mqttClient, influxClient, tsdbClient, log)),
		analysis.WithRecorder(metricsManager),
	)
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, analysis.Input{
		TimelineFile:  cfg.Evaluation.TimelineFile,
		ItineraryFile: cfg.Evaluation.ItineraryFile,
	})
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", cfg.Evaluation.TimelineFile, err)
	}
	log.Info("evaluation complete",
		"run_id", res.RunID,
		"report", res.ReportPath,
		"room_mean_wh", res.Report.RoomMean,
		"sub_room_mean_wh", res.Report.SubRoomMean,
	)

	if !cfg.API.Enabled {
		return nil
	}

	deps := api.Deps{
		Config:    cfg.API,
		Logger:    log.Component("api"),
		Runs:      runRepo,
		Timelines: timelineRepo,
		Runner:    runner,
		Metrics:   metricsManager,
		DB:        db,
		Version:   version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("serving results, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// connectMQTT connects to the broker and wires connection logging.
func connectMQTT(cfg config.MQTTConfig, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.Component("mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
	)
	return client, nil
}

// newPublisher builds the export publisher from whichever sinks are
// connected. Nil clients are left out so the interfaces stay nil.
func newPublisher(mqttClient *mqtt.Client, influxClient *influxdb.Client, tsdbClient *tsdb.Client, log *logging.Logger) *export.Publisher {
	opts := []export.Option{export.WithLogger(log.Component("export"))}
	if mqttClient != nil {
		opts = append(opts, export.WithMQTT(mqttClient))
	}
	if influxClient != nil {
		opts = append(opts, export.WithInfluxDB(influxClient))
	}
	if tsdbClient != nil {
		opts = append(opts, export.WithVictoriaMetrics(tsdbClient))
	}
	return export.NewPublisher(opts...)
}

// newRunner loads the building and power profile named by cfg and builds
// the analysis runner. The report directory is created when missing.
func newRunner(cfg *config.Config, log *logging.Logger, opts ...analysis.Option) (*analysis.Runner, error) {
	building, err := topology.LoadBuilding(cfg.Evaluation.BuildingFile)
	if err != nil {
		return nil, fmt.Errorf("loading building: %w", err)
	}
	log.Info("building loaded",
		"nodes", building.NodeCount(),
		"edges", building.EdgeCount(),
		"sensors", building.SensorCount(),
	)

	profile, err := evaluation.ProfileFromSlices(cfg.Evaluation.Profile.Baseline, cfg.Evaluation.Profile.Draw)
	if err != nil {
		return nil, fmt.Errorf("loading power profile: %w", err)
	}

	engine, err := newRulesEngine(cfg, building)
	if err != nil {
		return nil, err
	}
	if engine != nil {
		engine.SetLogger(log.Component("rules"))
		log.Info("lighting rules enabled", "rules", engine.RuleCount(), "dim_start", cfg.Rules.DimStart, "dim_end", cfg.Rules.DimEnd)
	}

	if err := os.MkdirAll(cfg.Evaluation.ReportDir, reportDirPermissions); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	opts = append(opts, analysis.WithLogger(log.Component("analysis")))
	runner, err := analysis.NewRunner(analysis.Config{
		Building:  building,
		Profile:   profile,
		ReportDir: cfg.Evaluation.ReportDir,
		JitterMax: cfg.GetJitterMax(),
		Seed:      cfg.Evaluation.Seed,
		Rules:     engine,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating runner: %w", err)
	}
	return runner, nil
}

// newRulesEngine returns the lighting rule engine, or nil when rules are
// disabled.
func newRulesEngine(cfg *config.Config, building *topology.Building) (*rules.Engine, error) {
	if !cfg.Rules.Enabled {
		return nil, nil
	}
	start, err := rules.ParseClock(cfg.Rules.DimStart)
	if err != nil {
		return nil, fmt.Errorf("rules.dim_start: %w", err)
	}
	end, err := rules.ParseClock(cfg.Rules.DimEnd)
	if err != nil {
		return nil, fmt.Errorf("rules.dim_end: %w", err)
	}
	return rules.NewEngine(building, rules.Config{
		Dim:      rules.Window{Start: start, End: end},
		Location: cfg.GetLocation(),
	}), nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//   - tsdbClient: VictoriaMetrics client to check (may be nil if disabled)
//
// Returns:
//   - error: All health check failures joined, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, tsdbClient *tsdb.Client) error {
	var errs []error
	if err := db.HealthCheck(ctx); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("influxdb: %w", err))
		}
	}
	if tsdbClient != nil {
		if err := tsdbClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tsdb: %w", err))
		}
	}
	return errors.Join(errs...)
}
