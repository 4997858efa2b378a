package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0" validate:"required"`
	Port     int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
	// AllowedOrigins is a comma separated host allow-list; empty accepts all.
	AllowedOrigins  string `env:"ALLOWED_ORIGINS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*" validate:"required"`

	CommandBuffer   int `env:"COMMAND_BUFFER,default=256" validate:"min=1"`
	EventBuffer     int `env:"EVENT_BUFFER,default=256" validate:"min=1"`
	TelemetryBuffer int `env:"TELEMETRY_BUFFER,default=512" validate:"min=1"`
	SinkBuffer      int `env:"SINK_BUFFER,default=64" validate:"min=1"`

	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s" validate:"min=1ms"`
	JoinWait        time.Duration `env:"JOIN_WAIT,default=5s" validate:"min=1ms"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=10s" validate:"min=1ms"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"min=1ms"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"min=1ms"`

	ReadLimit    int64         `env:"READ_LIMIT,default=8192" validate:"min=1"`
	PongWait     time.Duration `env:"PONG_WAIT,default=60s" validate:"min=1ms"`
	WriteWait    time.Duration `env:"WRITE_WAIT,default=10s" validate:"min=1ms"`
	RateBurst    int           `env:"RATE_BURST,default=10" validate:"min=1"`
	RateInterval time.Duration `env:"RATE_INTERVAL,default=1s" validate:"min=1ms"`

	LowCapacityThreshold int     `env:"LOW_CAPACITY_THRESHOLD,default=10" validate:"min=1"`
	CpuWarnPercent       float64 `env:"CPU_WARN_PERCENT,default=80" validate:"min=0,max=100"`
}

// Validate rejects configurations that would wedge the pipeline (zero-sized
// buffers, zero timeouts) before anything is started.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OriginAllowList splits AllowedOrigins into hosts, dropping empty entries.
func (c Config) OriginAllowList() []string {
	var hosts []string
	for _, h := range strings.Split(c.AllowedOrigins, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
