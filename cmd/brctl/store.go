package main

import (
	"fmt"
	"io"

	"github.com/buy-ready-tracker/internal/config"
	"github.com/buy-ready-tracker/internal/database"
	"github.com/buy-ready-tracker/pkg/logger"
	"github.com/rs/zerolog"
)

// openStore loads configuration and connects to the configured database.
// Logs go to w so command output stays readable.
func openStore(envFile string, w io.Writer) (*config.Config, *database.DB, zerolog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.Load(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithWriter(w, cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, log, fmt.Errorf("connect to %s: %w", cfg.Database.Driver, err)
	}
	return cfg, db, log, nil
}
