package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"simscan/internal/config"
	"simscan/internal/report"
	"simscan/internal/resultstore/sqlite"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var (
		storePath string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List scans recorded in the sqlite result store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := storePath
			if path == "" {
				path = cfg.Store.Path
			}
			if path == "" {
				path = config.DefaultStorePath()
			}
			if path == "" {
				return errors.New("no sqlite store path configured")
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("open result store: %w", err)
			}

			store, err := sqlite.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context())
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Report.Format
			}
			return report.WriteRuns(cmd.OutOrStdout(), runs, format)
		},
	}
	cmd.Flags().StringVar(&storePath, "store-path", "", "SQLite database path")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: auto, csv, table, json")
	return cmd
}
