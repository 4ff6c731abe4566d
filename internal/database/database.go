package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// pure-Go driver registered as "sqlite"
	_ "modernc.org/sqlite"

	"filesmanager/internal/domain"
)

// Connect opens PostgreSQL for postgres:// DSNs and SQLite for anything else.
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	if IsPostgres(dsn) {
		slog.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	slog.Info("using SQLite", "dsn", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// SQLite serialises writers anyway; a single connection also keeps
	// in-memory databases alive and visible to every caller.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.UserFile{},
		&domain.Session{},
		&domain.File{},
		&domain.Language{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
