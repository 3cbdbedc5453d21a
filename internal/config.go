package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	GrpcHealthPort       int           `env:"GRPC_HEALTH_PORT,default=8081"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=25s"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=15s"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH"`
	LimitActivity        *int          `env:"LIMIT_ACTIVITY"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	EnableModeration     bool          `env:"ENABLE_MODERATION,default=true"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`
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

// Origins splits the comma separated ALLOWED_ORIGINS value.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.BufferSize <= 0:
		return fmt.Errorf("BUFFER_SIZE must be positive, got %d", c.BufferSize)
	case c.ConnectionBufferSize <= 0:
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive, got %d", c.ConnectionBufferSize)
	case c.PingInterval <= 0:
		return fmt.Errorf("PING_INTERVAL must be positive, got %s", c.PingInterval)
	case c.MetricInterval <= 0:
		return fmt.Errorf("METRIC_INTERVAL must be positive, got %s", c.MetricInterval)
	case c.WriteTimeout <= 0:
		return fmt.Errorf("WRITE_TIMEOUT must be positive, got %s", c.WriteTimeout)
	case c.SinkTimeout <= 0:
		return fmt.Errorf("SINK_TIMEOUT must be positive, got %s", c.SinkTimeout)
	case c.PingInterval >= c.PongWait:
		return fmt.Errorf("PING_INTERVAL (%s) must be shorter than PONG_WAIT (%s)", c.PingInterval, c.PongWait)
	case c.LimitActivity != nil && *c.LimitActivity <= 0:
		return fmt.Errorf("LIMIT_ACTIVITY must be positive, got %d", *c.LimitActivity)
	}
	return nil
}
