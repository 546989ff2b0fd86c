package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR is the host:port of a running relay; empty skips the suite.
	RelayAddr   string `envconfig:"RELAY_ADDR"`
	TokenSecret string `envconfig:"RELAY_TOKEN_SECRET" default:"0123456789abcdef0123456789abcdef"`
	// E2E_DEBUG_FRAMES dumps every websocket frame for log readability
	DebugFrames bool `envconfig:"E2E_DEBUG_FRAMES" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
