package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "smartfix", cfg.DatabaseName)
	assert.Equal(t, 50.0, cfg.MatchMaxDistanceKm)
	assert.Equal(t, 3.0, cfg.MatchMinRating)
	assert.Equal(t, 10, cfg.MatchMaxProviders)
	assert.Equal(t, time.Minute, cfg.MatchCacheTTL)
	assert.Equal(t, 2, cfg.RatingMaxRetries)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MATCH_MAX_DISTANCE_KM", "10")
	t.Setenv("MATCH_CACHE_TTL", "30s")
	t.Setenv("ENV", "production")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.MatchMaxDistanceKm)
	assert.Equal(t, 30*time.Second, cfg.MatchCacheTTL)
	assert.Equal(t, "production", cfg.Env)
}
