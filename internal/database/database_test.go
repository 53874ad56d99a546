package database

import (
	"testing"

	"github.com/spge/groundcheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(&config.Config{DBDriver: driver, SQLitePath: ":memory:"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnect_SQLite(t *testing.T) {
	db, err := Connect(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db, zap.NewNop()))

	assert.True(t, db.Migrator().HasTable("ground_check_tasks"))
	assert.True(t, db.Migrator().HasTable("foremen"))
}

func TestAddIndexes_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	require.NoError(t, AddIndexes(db, zap.NewNop()))
	require.NoError(t, AddIndexes(db, zap.NewNop()))

	assert.True(t, db.Migrator().HasIndex("ground_check_tasks", "idx_ground_check_tasks_created_at_id"))
	assert.True(t, db.Migrator().HasIndex("attachments", "idx_attachments_task_position"))
}
