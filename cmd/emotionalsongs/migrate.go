package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer closeWith(log, "database", db)

			ctx := cmd.Context()
			if !status {
				applied, err := db.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				log.Info("database migrations complete", "applied", applied)
			}

			states, err := db.MigrationStatus(ctx)
			if err != nil {
				return fmt.Errorf("reading migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, s := range states {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%05d  %s  %s\n", s.Version, s.Source, state)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "only print migration status")
	return cmd
}
