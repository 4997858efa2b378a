package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Host:                 "0.0.0.0",
		Port:                 8080,
		LogLevel:             "INFO",
		CharReplacement:      "*",
		CommandBuffer:        256,
		EventBuffer:          256,
		TelemetryBuffer:      512,
		SinkBuffer:           64,
		SinkTimeout:          2 * time.Second,
		JoinWait:             5 * time.Second,
		MetricInterval:       10 * time.Second,
		RestartInterval:      200 * time.Millisecond,
		ShutdownTimeout:      10 * time.Second,
		ReadLimit:            8192,
		PongWait:             time.Minute,
		WriteWait:            10 * time.Second,
		RateBurst:            10,
		RateInterval:         time.Second,
		LowCapacityThreshold: 10,
		CpuWarnPercent:       80,
	}
}

func TestConfig_Validate_Defaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_RejectsWedgedPipeline(t *testing.T) {
	req := require.New(t)

	cfg := validConfig()
	cfg.CommandBuffer = 0
	req.Error(cfg.Validate())

	cfg = validConfig()
	cfg.SinkTimeout = 0
	req.Error(cfg.Validate())

	cfg = validConfig()
	cfg.Port = 0
	req.Error(cfg.Validate())
}

func TestConfig_Addr(t *testing.T) {
	cfg := validConfig()
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestConfig_OriginAllowList(t *testing.T) {
	req := require.New(t)

	cfg := validConfig()
	req.Nil(cfg.OriginAllowList())

	cfg.AllowedOrigins = "chat.example.com, ops.example.com ,"
	req.Equal([]string{"chat.example.com", "ops.example.com"}, cfg.OriginAllowList())
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("*")
	req.NoError(err)
	req.Equal('*', r)

	_, err = CharacterRune("")
	req.Error(err)

	_, err = CharacterRune("**")
	req.Error(err)
}
