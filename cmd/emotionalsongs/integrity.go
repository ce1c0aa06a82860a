package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/emotionalsongs-core/internal/integrity"
)

// errSchemaMismatch is returned when the check finds faults and --repair is off.
var errSchemaMismatch = errors.New("live schema does not match the column registry")

func newIntegrityCmd() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "integrity",
		Short: "Compare the live schema with the column registry",
		Long: "Lists every registered table and the columns missing from the live database.\n" +
			"With --repair, missing columns are added as nullable columns. Missing tables\n" +
			"are never created here; run migrate instead.",
		Args: cobra.NoArgs,
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
			report, err := integrity.Check(ctx, db, db.Dialect())
			if err != nil {
				return fmt.Errorf("checking schema: %w", err)
			}
			printReport(cmd, report)

			if report.OK() {
				return nil
			}
			if !repair {
				return fmt.Errorf("%w: %d missing columns", errSchemaMismatch, report.MissingColumns())
			}

			added, err := integrity.Repair(ctx, db, db.Dialect(), report)
			log.Info("schema repair finished", "columns_added", added)
			if err != nil {
				return fmt.Errorf("repairing schema: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d columns\n", added)
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "add missing columns")
	return cmd
}

func printReport(cmd *cobra.Command, report integrity.Report) {
	out := cmd.OutOrStdout()
	for _, t := range report.Tables {
		switch {
		case !t.Exists:
			fmt.Fprintf(out, "%-14s MISSING TABLE\n", t.Table)
		case len(t.Missing) > 0:
			fmt.Fprintf(out, "%-14s missing: %s\n", t.Table, strings.Join(t.MissingNames(), ", "))
		default:
			fmt.Fprintf(out, "%-14s ok\n", t.Table)
		}
	}
}
