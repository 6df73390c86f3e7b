//go:build integration

// Package integration runs the shop against a real PostgreSQL instance.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stitchline/backend/internal/infrastructure/migration"
	"github.com/stitchline/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a migrated PostgreSQL database in a throwaway container
type TestDB struct {
	DB        *gorm.DB
	DSN       string
	container *tcpostgres.PostgresContainer
	t         *testing.T
}

// NewTestDB starts a container, applies the embedded migrations and
// registers cleanup with t
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stitchline_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	tdb := &TestDB{DSN: dsn, container: container, t: t}
	t.Cleanup(tdb.terminate)

	require.NoError(t, MigrateUp(dsn), "failed to apply migrations")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")
	tdb.DB = db
	return tdb
}

// MigrateUp applies every embedded migration. The migrator owns its
// connection and closes it when done.
func MigrateUp(dsn string) error {
	return withMigrator(dsn, func(m *migration.Migrator) error {
		return m.Up()
	})
}

func withMigrator(dsn string, fn func(m *migration.Migrator) error) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return fn(m)
}

// CleanTables empties the shop tables, keeping the seeded company row
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	tables := []string{
		"outbox_events",
		"order_status_history",
		"order_items",
		"orders",
		"cart",
		"services",
		"products",
		"users",
	}
	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		require.NoError(tdb.t, err, "failed to truncate %s", table)
	}
}

func (tdb *TestDB) terminate() {
	if tdb.DB != nil {
		if sqlDB, err := tdb.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tdb.container != nil {
		if err := tdb.container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("failed to terminate container: %v", err)
		}
	}
}
