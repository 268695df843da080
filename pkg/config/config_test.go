package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "ticketline", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "ticket-events", cfg.Kafka.TicketTopic)
	assert.Equal(t, 10*time.Second, cfg.Simulator.SnapshotInterval)
	assert.Equal(t, time.Second, cfg.Simulator.RunnerErrorBackoff)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `SERVER_PORT=9090
DATABASE_DBNAME=ticketline_test
KAFKA_BROKERS=broker1:9092,broker2:9092
SIMULATOR_SNAPSHOT_INTERVAL=5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "ticketline_test", cfg.Database.DBName)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Simulator.SnapshotInterval)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")

	_, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "production")

	_, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestDSNAndAddr(t *testing.T) {
	cfg, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Contains(t, cfg.Database.DSN(), "dbname=ticketline")
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}
