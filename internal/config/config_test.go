package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8374", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "gatherly", cfg.MongoDBName)
	assert.Equal(t, "localhost:6379", cfg.RedisURL)
	assert.Equal(t, 24, cfg.SessionTTLHours)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("PORT", "9000")
	t.Setenv("MONGO_DBNAME", "gatherly_test")
	t.Setenv("SESSION_TTL_HOURS", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gatherly_test", cfg.MongoDBName)
	assert.Equal(t, 2, cfg.SessionTTLHours)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
}
