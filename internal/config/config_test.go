package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	Init(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, BackendDynamoDB, cfg.Backend)
	assert.Equal(t, "PollTable", cfg.TableName)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "votes", cfg.RabbitMQQueue)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TABLE_BACKEND", "Postgres")
	t.Setenv("TABLE_NAME", "Polls")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("POSTGRES_USER", "poll")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "polls")
	t.Setenv("POSTGRES_HOST", "db")

	v := viper.New()
	Init(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "Polls", cfg.TableName)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "postgres://poll:secret@db:5432/polls?sslmode=disable", cfg.PostgresConnString())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown backend", "TABLE_BACKEND", "cassandra"},
		{"zero timeout", "STORE_TIMEOUT", "0s"},
		{"bad log level", "LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			v := viper.New()
			Init(v)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLogLevel(level)
		require.NoError(t, err)
		assert.Equal(t, want, got, level)
	}
}
