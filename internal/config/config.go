package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/kelseyhightower/envconfig"
)

// Supported chat model providers.
const (
	ProviderGroq = "groq"
	ProviderArk  = "ark"
)

// ErrMissingCredentials is returned when no model credentials are set and
// mock mode is off.
var ErrMissingCredentials = errors.New("GROQ_API_KEY is not set. Add it to .env or set MOCK_MODE=true")

// Config aggregates the backend configuration.
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Speech    SpeechConfig
	RateLimit RateLimitConfig
}

// Load reads the backend configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	for _, section := range []any{&cfg.Server, &cfg.LLM, &cfg.Speech, &cfg.RateLimit} {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	addr, err := listenAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("invalid RATE_LIMIT_PER_MIN value %d", c.RateLimit.PerMinute)
	}
	if c.Server.MockMode {
		return nil
	}
	switch c.LLM.Provider {
	case ProviderGroq:
		if c.LLM.GroqAPIKey == "" {
			return ErrMissingCredentials
		}
	case ProviderArk:
		if !c.LLM.arkEnabled() {
			return errors.New("ark provider needs ARK_MODEL and ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	return nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port           string   `envconfig:"PORT" default:"8000"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	MockMode       bool     `envconfig:"MOCK_MODE" default:"false"`
	Debug          bool     `envconfig:"DEBUG" default:"false"`

	Addr string `ignored:"true"`
}

// listenAddr accepts "8000", ":8000" or "127.0.0.1:8000".
func listenAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8000"
	}
	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}
	if strings.Contains(port, ":") {
		return port, nil
	}
	return ":" + port, nil
}

// LLMConfig describes the chat model.
type LLMConfig struct {
	Provider string `envconfig:"LLM_PROVIDER" default:"groq"`

	GroqAPIKey  string `envconfig:"GROQ_API_KEY"`
	GroqModel   string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	GroqBaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`

	ArkAPIKey    string `envconfig:"ARK_API_KEY"`
	ArkAccessKey string `envconfig:"ARK_ACCESS_KEY"`
	ArkSecretKey string `envconfig:"ARK_SECRET_KEY"`
	ArkModel     string `envconfig:"ARK_MODEL"`
	ArkBaseURL   string `envconfig:"ARK_BASE_URL" default:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion    string `envconfig:"ARK_REGION" default:"cn-beijing"`

	Temperature float32       `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"800"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	PresetFile  string        `envconfig:"PRESET_FILE"`
}

func (c LLMConfig) arkEnabled() bool {
	return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
}

// NewChatModel creates the configured chat model.
func (c LLMConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	temperature := c.Temperature
	maxTokens := c.MaxTokens

	switch c.Provider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return nil, ErrMissingCredentials
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     c.GroqBaseURL,
			APIKey:      c.GroqAPIKey,
			Model:       c.GroqModel,
			Timeout:     c.Timeout,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
	case ProviderArk:
		if !c.arkEnabled() {
			return nil, errors.New("ark credentials or model missing")
		}
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     c.ArkBaseURL,
			Region:      c.ArkRegion,
			APIKey:      c.ArkAPIKey,
			AccessKey:   c.ArkAccessKey,
			SecretKey:   c.ArkSecretKey,
			Model:       c.ArkModel,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
}

// SpeechConfig describes transcription and synthesis upstreams. Whisper
// runs on the Groq OpenAI-compatible API with the Groq key.
type SpeechConfig struct {
	HuggingFaceAPIKey string        `envconfig:"HUGGINGFACE_API_KEY"`
	TTSURL            string        `envconfig:"HF_TTS_URL" default:"https://api-inference.huggingface.co/models/bharatgenai/sooktam2"`
	WhisperModel      string        `envconfig:"WHISPER_MODEL" default:"whisper-large-v3-turbo"`
	Timeout           time.Duration `envconfig:"SPEECH_TIMEOUT" default:"30s"`
	MaxAudioBytes     int64         `envconfig:"MAX_AUDIO_BYTES" default:"26214400"`
}

// RateLimitConfig describes per-client request limits.
type RateLimitConfig struct {
	PerMinute int64  `envconfig:"RATE_LIMIT_PER_MIN" default:"10"`
	RedisURI  string `envconfig:"REDIS_URI"`
}

// Usage prints the backend environment variables to stdout.
func Usage() error {
	for _, section := range []any{&ServerConfig{}, &LLMConfig{}, &SpeechConfig{}, &RateLimitConfig{}} {
		if err := envconfig.Usage("", section); err != nil {
			return err
		}
	}
	return nil
}
