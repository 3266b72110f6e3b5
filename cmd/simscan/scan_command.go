package main

import (
	"strings"

	"github.com/spf13/cobra"

	"simscan/internal/config"
	"simscan/internal/report"
)

type scanFlags struct {
	format    string
	top       int
	minScore  float64
	explain   int
	store     string
	storePath string
	exts      []string
	preset    string
	reserve   []string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", "", "Output format: auto, csv, table, json")
	flags.IntVarP(&f.top, "top", "n", 0, "Only print the N highest scoring pairs")
	flags.Float64Var(&f.minScore, "min", 0, "Only print pairs scoring at least this much")
	flags.IntVar(&f.explain, "explain", 0, "Attach up to N shared terms to each pair")
	flags.StringVar(&f.store, "store", "", "Result store: memory or sqlite")
	flags.StringVar(&f.storePath, "store-path", "", "SQLite database path")
	flags.StringSliceVar(&f.exts, "ext", nil, "File extensions to read (repeatable)")
	flags.StringVar(&f.preset, "reserved", "", "Reserved word preset: python, python3, go, none")
	flags.StringSliceVar(&f.reserve, "reserve", nil, "Extra reserved words (repeatable)")
}

// apply overlays flags the user set on cfg.
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.AppConfig) error {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format = f.format
	}
	if flags.Changed("top") {
		cfg.Report.Top = f.top
	}
	if flags.Changed("min") {
		v := f.minScore
		cfg.Report.MinScore = &v
	}
	if flags.Changed("explain") {
		cfg.Report.Explain = f.explain
	}
	if flags.Changed("store") {
		cfg.Store.Type = strings.ToLower(f.store)
	}
	if flags.Changed("store-path") {
		cfg.Store.Path = f.storePath
		if !flags.Changed("store") {
			cfg.Store.Type = "sqlite"
		}
	}
	if cfg.Store.Type == "sqlite" && cfg.Store.Path == "" {
		cfg.Store.Path = config.DefaultStorePath()
	}
	if flags.Changed("ext") {
		cfg.Collector.Extensions = f.exts
	}
	if flags.Changed("reserved") {
		cfg.Tokenizer.Preset = f.preset
	}
	if flags.Changed("reserve") {
		cfg.Tokenizer.Reserved = append(cfg.Tokenizer.Reserved, f.reserve...)
	}
	return cfg.Validate()
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Score every pair of groups under root",
		Long: "Each sub-directory of root is one group. Matching files of a group are " +
			"concatenated, weighed with TF-IDF and compared with every other group. " +
			"Scores are raw dot products over shared terms and are not normalized.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			logger := ctx.logger(cmd.ErrOrStderr())
			svc, store, err := buildService(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := svc.Scan(cmd.Context(), args[0]); err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), svc.Pairs(), report.Options{
				Format:   cfg.Report.Format,
				Top:      cfg.Report.Top,
				MinScore: cfg.Report.MinScore,
				Explain:  cfg.Report.Explain,
			}, svc)
		},
	}
	flags.register(cmd)
	return cmd
}
