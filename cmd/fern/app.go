package main

import (
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/database"
)

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger ectologger.Logger
	sync   func()
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, sync, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, sync: sync}, nil
}

func newLogger(cfg *config.Config) (ectologger.Logger, func(), error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := zapConfig.Build(zap.Fields(zap.String("service", cfg.AppName)))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build logger")
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), func() { _ = zapLogger.Sync() }, nil
}

func (a *app) openDatabase() (database.DB, error) {
	return database.Open(database.ConnectionConfig{
		DSN:             a.cfg.DatabaseDSN(),
		MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
		AcquireTimeout:  a.cfg.DatabaseAcquireTimeout,
	}, a.logger)
}

// migrator builds the migration runner. Non-negative overrides replace the configured
// version and force values.
func (a *app) migrator(version, force int) *database.Migrator {
	if version < 0 {
		version = a.cfg.DatabaseMigrationVersion
	}
	if force < 0 {
		force = a.cfg.DatabaseMigrationForce
	}

	return database.NewMigrator(database.MigrationConfig{
		Folder:       a.cfg.DatabaseMigrationFolderPath,
		DatabaseName: a.cfg.DatabaseName,
		Version:      uint(version),
		Force:        force,
		AutoRollback: a.cfg.DatabaseMigrationAutoRollback,
	}, a.logger)
}
