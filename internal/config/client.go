package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ClientConfig describes the assistant client.
type ClientConfig struct {
	// BackendURL pins the backend root; empty means resolve from DevHost
	// and Platform.
	BackendURL  string        `envconfig:"FARMEASE_BACKEND_URL"`
	DevHost     string        `envconfig:"FARMEASE_DEV_HOST"`
	Platform    string        `envconfig:"FARMEASE_PLATFORM" default:"android"`
	Language    string        `envconfig:"FARMEASE_LANGUAGE" default:"en"`
	ChatTimeout time.Duration `envconfig:"FARMEASE_CHAT_TIMEOUT" default:"10s"`
	AudioPlayer string        `envconfig:"FARMEASE_AUDIO_PLAYER"`
	AudioDir    string        `envconfig:"FARMEASE_AUDIO_DIR"`
}

// LoadClient reads the client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	return &cfg, nil
}
