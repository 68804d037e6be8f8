package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"innercircle/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqliteConnect(t *testing.T) connectFunc {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return func() (*gorm.DB, *config.Config, error) {
		return db, &config.Config{Env: "test", DBSchemaMode: "sql"}, nil
	}
}

func execute(t *testing.T, open connectFunc, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateLifecycle(t *testing.T) {
	open := sqliteConnect(t)

	out, err := execute(t, open, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "mode=sql env=test sql=true auto=false pending=1")
	assert.Contains(t, out, "pending  000001_sharing_graph")

	out, err = execute(t, open, "up")
	require.NoError(t, err)
	assert.Equal(t, "applied 000001_sharing_graph\n", out)

	out, err = execute(t, open, "up")
	require.NoError(t, err)
	assert.Equal(t, "schema is up to date\n", out)

	out, err = execute(t, open, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pending=0")
	assert.Contains(t, out, "applied  000001_sharing_graph  ")

	out, err = execute(t, open, "down", "1")
	require.NoError(t, err)
	assert.Equal(t, "rolled back 000001\n", out)

	out, err = execute(t, open, "status")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "pending  000001_sharing_graph"), out)

	_, err = execute(t, open, "down", "1")
	assert.ErrorContains(t, err, "has not been applied")
}

func TestMigrateDown_Args(t *testing.T) {
	open := sqliteConnect(t)

	_, err := execute(t, open, "down")
	assert.Error(t, err)

	for _, v := range []string{"abc", "0", "1.5"} {
		_, err = execute(t, open, "down", v)
		assert.ErrorContains(t, err, "invalid version", v)
	}

	_, err = execute(t, open, "down", "42")
	assert.ErrorContains(t, err, "not found")
}

func TestMigrateAuto(t *testing.T) {
	open := sqliteConnect(t)

	out, err := execute(t, open, "auto")
	require.NoError(t, err)
	assert.Equal(t, "models migrated\n", out)

	db, _, _ := open()
	assert.True(t, db.Migrator().HasTable("post_share"))
}
