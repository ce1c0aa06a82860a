package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/emotionalsongs-core/internal/api"
	"github.com/nerrad567/emotionalsongs-core/internal/auth"
	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/config"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/database"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/logging"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/mqtt"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

// serve wires every component and blocks until ctx is cancelled.
// Deferred closes run in reverse order: API, InfluxDB, MQTT, database.
func serve(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	log.Info("starting emotionalsongs",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer closeWith(log, "database", db)
	log.Info("database connected", "driver", cfg.Database.Driver, "dialect", db.Dialect())

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete", "applied", applied)

	opts, err := storeOptions(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("configuring catalog: %w", err)
	}
	opts = append(opts, catalog.WithLogger(log))

	// MQTT is optional: a broker outage leaves the catalog serving without events.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT unavailable, catalog events disabled", "error", err)
		} else {
			defer closeWith(log, "MQTT", mqttClient)
			mqttClient.SetLogger(log)
			opts = append(opts, catalog.WithPublisher(mqtt.NewEventPublisher(mqttClient, byte(cfg.MQTT.QoS))))
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
				"topics", mqttClient.Topics().AllEvents(),
			)
		}
	} else {
		log.Info("MQTT disabled")
	}

	var querier catalog.Querier = db
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer closeWith(log, "InfluxDB", influxClient)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		querier = catalog.Instrument(db, influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	store := catalog.NewStore(querier, db.Dialect(), opts...)
	log.Info("catalog ready",
		"fetch_strategy", store.FetchStrategy().Name(),
		"id_scheme", cfg.Catalog.IDScheme,
	)

	tokens, err := auth.NewTokenIssuer(cfg.Security.JWT.Secret, cfg.GetAccessTokenTTL())
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	deps := api.Deps{
		Config:  cfg.API,
		Catalog: cfg.Catalog,
		Logger:  log,
		Store:   store,
		DB:      db,
		Tokens:  tokens,
		Version: version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	if influxClient != nil {
		deps.Metrics = influxClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := healthCheck(ctx, db); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer closeWith(log, "API server", server)

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// healthCheck verifies the database answers before the API starts.
func healthCheck(ctx context.Context, db *database.DB) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}
