package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCANFR_API_URL", "https://api.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/state.db", cfg.DBPath)
	assert.Empty(t, cfg.APIToken)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCANFR_API_URL", "https://api.example.com")
	t.Setenv("SCANFR_API_TOKEN", "secret")
	t.Setenv("SCANFR_HTTP_TIMEOUT", "5s")
	t.Setenv("SCANFR_DATA_DIR", "/var/lib/scanfr")
	t.Setenv("SCANFR_DB_PATH", "/var/lib/scanfr/state.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/var/lib/scanfr", cfg.DataDir)
	assert.Equal(t, "/var/lib/scanfr/state.db", cfg.DBPath)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Setenv("SCANFR_API_URL", "")

	_, err := Load()
	assert.Error(t, err)
}
