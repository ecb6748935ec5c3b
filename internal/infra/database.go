package infra

import (
	"fmt"

	"farmacuadra/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates
// the ledger tables. The schema is small (solicitudes + reference data),
// so AutoMigrate is sufficient — no hand-written migration patches.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations creates/updates the ledger tables. Also used by the
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.SolicitudRectificacion{},
		&model.Local{},
	)
}
