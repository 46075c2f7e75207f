package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", s.OptimizerURL)
	assert.Equal(t, 2*time.Minute, s.RequestTimeout)
	assert.Empty(t, s.ListenAddr)
	assert.Equal(t, "pathviz.db", s.DBPath)
}

func TestLoadSettingsFromEnv(t *testing.T) {
	t.Setenv("PATHVIZ_OPTIMIZER_URL", "http://opt:9000/api")
	t.Setenv("PATHVIZ_REQUEST_TIMEOUT", "30s")
	t.Setenv("PATHVIZ_LISTEN_ADDR", ":8099")
	t.Setenv("PATHVIZ_TUNABLES", "config/tunables.defaults.json")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "http://opt:9000/api", s.OptimizerURL)
	assert.Equal(t, 30*time.Second, s.RequestTimeout)
	assert.Equal(t, ":8099", s.ListenAddr)
	assert.Equal(t, "config/tunables.defaults.json", s.TunablesPath)
}

func TestLoadSettingsBadDuration(t *testing.T) {
	t.Setenv("PATHVIZ_REQUEST_TIMEOUT", "whenever")
	_, err := LoadSettings()
	assert.Error(t, err)
}
