package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{
		BCHydro: BCHydroConfig{
			Username: "user@example.com",
			Password: "hunter2",
		},
		MQTT: MQTTConfig{
			Enabled:     true,
			Broker:      "localhost:1883",
			TopicPrefix: "energy",
		},
		PollIntervalMinutes: 10,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 5*time.Minute, cfg.GetPollInterval())
	assert.Equal(t, "hydroscraper", cfg.GetTopicPrefix())

	cfg.PollIntervalMinutes = 15
	cfg.MQTT.TopicPrefix = "energy"
	assert.Equal(t, 15*time.Minute, cfg.GetPollInterval())
	assert.Equal(t, "energy", cfg.GetTopicPrefix())
}
