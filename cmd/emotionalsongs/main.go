// Command emotionalsongs serves and administers the music catalog.
//
// Subcommands:
//   - serve: run the HTTP API until interrupted
//   - migrate: apply pending schema migrations
//   - integrity: compare the live schema with the column registry
//   - version: print build information
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/config"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/database"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/logging"
	_ "github.com/nerrad567/emotionalsongs-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	// defaultConfigPath is read when it exists and no other path is given.
	defaultConfigPath = "configs/config.yaml"

	// configEnv names the environment variable holding the config path.
	configEnv = "EMOTIONALSONGS_CONFIG"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "emotionalsongs",
		Short:         "Music catalog service",
		Long:          "Serves the song, album and playlist catalog and manages its database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config.yaml (default $"+configEnv+" or "+defaultConfigPath+")")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newIntegrityCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// resolveConfigPath applies flag > env > default file. An empty result means
// built-in defaults plus environment overrides.
func resolveConfigPath(cmd *cobra.Command) string {
	if path, _ := cmd.Root().PersistentFlags().GetString("config"); path != "" {
		return path
	}
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// loadConfig loads configuration and builds the configured logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	path := resolveConfigPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	if path == "" {
		log.Info("no config file, using defaults and environment")
	} else {
		log.Info("configuration loaded", "path", path)
	}
	return cfg, log, nil
}

// openDatabase opens the configured store. The caller closes it.
func openDatabase(cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Driver:       cfg.Driver,
		Path:         cfg.Path,
		DSN:          cfg.DSN,
		WALMode:      cfg.WALMode,
		BusyTimeout:  cfg.BusyTimeout,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// storeOptions translates the catalog section into store options.
func storeOptions(cfg config.CatalogConfig) ([]catalog.Option, error) {
	strategy, err := catalog.FetchStrategyFor(cfg.FetchStrategy, cfg.FetchParallelism)
	if err != nil {
		return nil, err
	}
	ids, err := catalog.IDsFor(cfg.IDScheme)
	if err != nil {
		return nil, err
	}
	return []catalog.Option{
		catalog.WithFetchStrategy(strategy),
		catalog.WithIDs(ids),
		catalog.WithPageLimits(cfg.PageLimit, cfg.MaxPageLimit),
	}, nil
}

// closeWith closes c and logs a failure.
func closeWith(log *logging.Logger, what string, c interface{ Close() error }) {
	log.Info("closing " + what)
	if err := c.Close(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("error closing "+what, "error", err)
	}
}
