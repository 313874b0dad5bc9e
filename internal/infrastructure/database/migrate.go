package database

import (
	"errors"
	"fmt"

	"hospicloud/internal/domain/entity"
	"hospicloud/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every table owned by the services, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entity.Location{},
		&entity.Hospital{},
		&entity.Specialty{},
		&entity.User{},
		&entity.Patient{},
		&entity.Doctor{},
		&entity.Admin{},
		&entity.Template{},
		&entity.Checkup{},
		&entity.IdentityOutbox{},
		&entity.AuditLog{},
	}
}

// AutoMigrate creates or updates the schema from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded SQL migrations to databaseURL.
func RunSQLMigrations(databaseURL string, log *logrus.Logger) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Database migrations applied")
	return nil
}

// Migrate brings the schema up using the strategy selected in config.
func Migrate(db *gorm.DB, strategy, databaseURL string, log *logrus.Logger) error {
	switch strategy {
	case "sql":
		return RunSQLMigrations(databaseURL, log)
	case "auto", "":
		return AutoMigrate(db)
	case "none":
		return nil
	default:
		return fmt.Errorf("unknown migration strategy %q", strategy)
	}
}
