package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "model:\n  path: artifacts/model.json\n"))
	require.NoError(t, err)

	assert.Equal(t, "artifacts/model.json", cfg.Model.Path)
	assert.Equal(t, ":5000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 3, cfg.Summary.Sentences)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoadFileValues(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
server:
  port: ":8080"
summary:
  sentences: 5
storage:
  driver: postgres
  dsn: postgres://localhost/spam
redis:
  addr: localhost:6379
  ttl: 1h
queue:
  brokers: [kafka-1:9092, kafka-2:9092]
  topic: inbound
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Summary.Sentences)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Queue.Brokers)
	assert.Equal(t, "inbound", cfg.Queue.Topic)
	assert.Equal(t, "verdicts", cfg.Queue.ResultTopic)
}

func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv("SPAMSNIFFER_STORAGE__DSN", "file:override.db")
	t.Setenv("SPAMSNIFFER_LOG__LEVEL", "debug")

	cfg, err := LoadFile(writeConfig(t, "storage:\n  dsn: from-file.db\n"))
	require.NoError(t, err)

	assert.Equal(t, "file:override.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
