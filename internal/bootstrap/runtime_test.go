package bootstrap

import (
	"testing"

	"innercircle/internal/config"
	"innercircle/internal/models"
	"innercircle/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoGraph(t *testing.T) {
	db := testutil.NewGraphDB(t)
	cfg := &config.Config{Env: "development"}

	require.NoError(t, ensureDemoGraph(cfg, db))
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(8), users)

	// A populated database is left alone.
	require.NoError(t, ensureDemoGraph(cfg, db))
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(8), users)
}

func TestEnsureDemoGraph_DevelopmentOnly(t *testing.T) {
	db := testutil.NewGraphDB(t)
	assert.Error(t, ensureDemoGraph(&config.Config{Env: "production"}, db))
}
