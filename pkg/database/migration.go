package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

type MigrationConfig struct {
	Folder       string
	DatabaseName string
	// Target version; zero applies everything.
	Version uint
	// Marks the schema as being at this version before running; zero disables.
	Force int
	// Cleans a dirty schema back to the version it had before the failed run.
	AutoRollback bool
}

// Migrator applies the golang-migrate file source in Folder to the tools database.
type Migrator struct {
	cfg    MigrationConfig
	logger ectologger.Logger
}

func NewMigrator(cfg MigrationConfig, logger ectologger.Logger) *Migrator {
	return &Migrator{cfg: cfg, logger: logger}
}

// migrateLog forwards golang-migrate output to the service logger.
type migrateLog struct {
	logger ectologger.Logger
}

func (l migrateLog) Printf(format string, v ...any) {
	l.logger.Debugf(strings.TrimRight(format, "\n"), v...)
}

func (l migrateLog) Verbose() bool { return false }

func (mg *Migrator) folder() (string, error) {
	folder := mg.cfg.Folder
	if !filepath.IsAbs(folder) {
		if _, err := os.Stat(folder); err != nil {
			wd, wdErr := os.Getwd()
			if wdErr != nil {
				return "", errors.Wrap(wdErr, "failed to resolve working directory")
			}
			folder = filepath.Join(wd, folder)
		}
	}
	if _, err := os.Stat(folder); err != nil {
		return "", errors.Wrapf(err, "migration folder %s does not exist", folder)
	}
	return folder, nil
}

// Migrate brings the schema of db up to the configured version. Cancelling ctx stops after
// the migration currently running.
func (mg *Migrator) Migrate(ctx context.Context, db DB) error {
	folder, err := mg.folder()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db.SQLX().DB, &postgres.Config{DatabaseName: mg.cfg.DatabaseName})
	if err != nil {
		return errors.Wrap(err, "failed to create migration driver")
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+folder, mg.cfg.DatabaseName, driver)
	if err != nil {
		return errors.Wrap(err, "failed to load migrations")
	}
	m.Log = migrateLog{logger: mg.logger}

	if mg.cfg.Force != 0 {
		if err := m.Force(mg.cfg.Force); err != nil {
			return errors.Wrapf(err, "failed to force schema version %d", mg.cfg.Force)
		}
	}

	before, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "failed to read schema version")
	}

	start := time.Now()
	err = mg.apply(ctx, m)
	switch {
	case err == nil:
		after, _, _ := m.Version()
		mg.logger.WithFields(map[string]any{
			"from_version": before,
			"to_version":   after,
			"duration_ms":  time.Since(start).Milliseconds(),
		}).Info("Applied database migrations")
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		mg.logger.Infof("Schema already at version %d", before)
		return nil
	}
	return mg.recover(m, folder, before, err)
}

func (mg *Migrator) apply(ctx context.Context, m *migrate.Migrate) error {
	done := make(chan error, 1)
	go func() {
		if mg.cfg.Version != 0 {
			done <- m.Migrate(mg.cfg.Version)
			return
		}
		done <- m.Up()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		m.GracefulStop <- true
		return <-done
	}
}

// recover handles a failed run. The error is still returned after a repair so the service
// never starts on a half-applied schema.
func (mg *Migrator) recover(m *migrate.Migrate, folder string, before uint, runErr error) error {
	// The recorded version has no file, usually after the code base was rolled back.
	if strings.Contains(runErr.Error(), "no migration found for version") {
		latest, err := latestVersion(folder)
		if err != nil {
			return errors.Wrap(err, "failed to find latest migration")
		}
		mg.logger.Warnf("Schema version %d has no migration file, forcing version %d", before, latest)
		return m.Force(int(latest))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		mg.logger.WithError(err).Error("Failed to read schema version after failed migration")
		return runErr
	}

	if dirty && mg.cfg.AutoRollback {
		target := before
		if target == 0 && version > 0 {
			target = version - 1
		}
		mg.logger.Warnf("Schema dirty at version %d, forcing back to %d", version, target)
		if err := m.Force(int(target)); err != nil {
			return errors.Wrapf(err, "failed to force schema version %d", target)
		}
	}

	return errors.Wrapf(runErr, "failed to apply migrations (dirty=%t, version=%d)", dirty, version)
}

// latestVersion walks the file source in folder and returns its highest version.
func latestVersion(folder string) (uint, error) {
	src, err := (&file.File{}).Open("file://" + folder)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	version, err := src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("no migration files found in %s", folder)
	}
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, err
		}
		version = next
	}
}
