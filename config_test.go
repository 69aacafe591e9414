package rxcore

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), cfg.ParallelSize)
	assert.Equal(t, DefaultElasticTTL, cfg.ElasticTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RXCORE_PARALLEL_SIZE", "3")
	t.Setenv("RXCORE_ELASTIC_TTL", "5s")
	t.Setenv("RXCORE_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.ParallelSize)
	assert.Equal(t, 5*time.Second, cfg.ElasticTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unparsable ttl", key: "RXCORE_ELASTIC_TTL", val: "soon"},
		{name: "negative ttl", key: "RXCORE_ELASTIC_TTL", val: "-1s"},
		{name: "unknown level", key: "RXCORE_LOG_LEVEL", val: "loud"},
		{name: "unparsable size", key: "RXCORE_PARALLEL_SIZE", val: "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, "warn", parseLevel("warn").String())
	assert.Equal(t, "info", parseLevel("nonsense").String())
	assert.Equal(t, "info", parseLevel("").String())
}
