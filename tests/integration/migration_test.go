//go:build integration

package integration

import (
	"testing"

	"github.com/stitchline/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_RoundTrip(t *testing.T) {
	tdb := NewTestDB(t)

	t.Run("embedded set is fully applied", func(t *testing.T) {
		err := withMigrator(tdb.DSN, func(m *migration.Migrator) error {
			version, dirty, err := m.Version()
			require.NoError(t, err)
			assert.Equal(t, uint(2), version)
			assert.False(t, dirty)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("company row is seeded", func(t *testing.T) {
		var count int64
		require.NoError(t, tdb.DB.Table("company").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("down removes every table", func(t *testing.T) {
		require.NoError(t, withMigrator(tdb.DSN, func(m *migration.Migrator) error {
			return m.Down()
		}))
		for _, table := range []string{"users", "products", "orders", "outbox_events"} {
			assert.False(t, tdb.DB.Migrator().HasTable(table), table)
		}
	})

	t.Run("up again is clean", func(t *testing.T) {
		require.NoError(t, MigrateUp(tdb.DSN))
		assert.True(t, tdb.DB.Migrator().HasTable("orders"))

		// already at the latest version
		require.NoError(t, MigrateUp(tdb.DSN))
	})
}
