package main

import (
	"fmt"
	"io"
	"log/slog"

	"simscan/internal/collector"
	"simscan/internal/config"
	"simscan/internal/logging"
	"simscan/internal/resultstore"
	"simscan/internal/resultstore/memory"
	"simscan/internal/resultstore/sqlite"
	"simscan/internal/service"
	"simscan/internal/tokenizer"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	config     *config.AppConfig
	configPath string
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevelFlag: logLevelFlag}
}

func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	if c.config != nil {
		return c.config, nil
	}
	var (
		cfg  *config.AppConfig
		path string
		err  error
	)
	if c.configFlag != nil && *c.configFlag != "" {
		path = *c.configFlag
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.logLevelFlag != nil && *c.logLevelFlag != "" {
		cfg.Logging.Level = *c.logLevelFlag
	}
	c.config = cfg
	c.configPath = path
	return cfg, nil
}

func (c *commandContext) logger(w io.Writer) *slog.Logger {
	level := "info"
	if c.config != nil {
		level = c.config.Logging.Level
	}
	return logging.NewLogger(level, w)
}

// buildService assembles the collector, tokenizer and store named by cfg.
// The returned store must be closed by the caller.
func buildService(cfg *config.AppConfig, logger *slog.Logger) (*service.SimilarityServiceImpl, resultstore.Storage, error) {
	tok, err := tokenizer.FromConfig(cfg.Tokenizer.Preset, cfg.Tokenizer.Reserved)
	if err != nil {
		return nil, nil, err
	}
	col := collector.NewDirCollector(cfg.Collector.Extensions, cfg.Collector.SkipHidden)

	var st resultstore.Storage
	switch cfg.Store.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "sqlite":
		s, err := sqlite.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using sqlite store", "path", s.Path())
		st = s
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStore, cfg.Store.Type)
	}
	return service.NewSimilarityService(col, tok, st, logger), st, nil
}
