package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CLASSROOM_ADDR is the host:port of a running classroom server. The suite is skipped when empty.
	ServerAddr string `envconfig:"CLASSROOM_ADDR"`
	// E2E_DEBUG_JSON dumps every received frame
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
