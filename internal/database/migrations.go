package database

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/dealinefunnel/countdown-service/internal/config"
)

// MigrationManager handles database migrations
type MigrationManager struct {
	cfg           config.DatabaseConfig
	migrationsDir string
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(cfg config.DatabaseConfig, migrationsDir string) *MigrationManager {
	return &MigrationManager{
		cfg:           cfg,
		migrationsDir: migrationsDir,
	}
}

// Up runs all up migrations
func (m *MigrationManager) Up() error {
	migration, err := m.createMigrationInstance()
	if err != nil {
		return err
	}
	defer migration.Close()

	if err := migration.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// Down runs all down migrations
func (m *MigrationManager) Down() error {
	migration, err := m.createMigrationInstance()
	if err != nil {
		return err
	}
	defer migration.Close()

	if err := migration.Down(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run down migrations: %w", err)
	}

	log.Println("Database down migrations completed successfully")
	return nil
}

// Version returns current migration version
func (m *MigrationManager) Version() (uint, bool, error) {
	migration, err := m.createMigrationInstance()
	if err != nil {
		return 0, false, err
	}
	defer migration.Close()

	return migration.Version()
}

// createMigrationInstance creates a new migration instance with its own
// connection so closing it never touches the main pool
func (m *MigrationManager) createMigrationInstance() (*migrate.Migrate, error) {
	migrationDB, err := sql.Open("postgres", DSN(m.cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open migration database connection: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	migrationsPath, err := filepath.Abs(m.migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for migrations: %w", err)
	}

	migration, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return migration, nil
}
