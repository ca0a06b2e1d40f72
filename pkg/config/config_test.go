package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Prebatch-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "none", cfg.Scale.Source)
	assert.Equal(t, 5*time.Second, cfg.Scale.WatchdogWindow())
	assert.Equal(t, "scale/*", cfg.Scale.ChannelPattern)
	assert.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SCALE_SOURCE", "Kafka")
	t.Setenv("SCALE_WATCHDOG_SECONDS", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "kafka", cfg.Scale.Source)
	assert.Equal(t, 3*time.Second, cfg.Scale.WatchdogWindow())
	assert.Equal(t, "k1:9092,k2:9092", cfg.Kafka.Brokers)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaContrasena(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/w", DBName: "prebatch", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p%40ss%2Fw@db:5432/prebatch?sslmode=disable", c.DSN())
}
