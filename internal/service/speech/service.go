// Package speech transcribes recorded clips with Whisper and synthesizes
// replies with a Hugging Face text-to-speech model.
package speech

import (
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"
)

// Defaults for Options fields left empty.
const (
	DefaultWhisperModel  = "whisper-large-v3-turbo"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxAudioBytes = 25 * 1024 * 1024
)

// MockTranscription is returned for every clip in mock mode.
const MockTranscription = "This is a mock transcription. Start the backend with a real API key for voice input."

// Options configures the upstreams.
type Options struct {
	WhisperAPIKey     string
	WhisperBaseURL    string
	WhisperModel      string
	HuggingFaceAPIKey string
	TTSURL            string
	Timeout           time.Duration
	MaxAudioBytes     int64
	MockMode          bool
}

// Service wraps the transcription and synthesis upstreams.
type Service struct {
	whisper      *openai.Client
	whisperModel string
	maxAudio     int64

	tts    *resty.Client
	ttsURL string
	hfKey  string

	mockMode bool
}

// NewService builds the speech service. Whisper is disabled without an API
// key and synthesis without a Hugging Face key.
func NewService(opts Options) *Service {
	if opts.WhisperModel == "" {
		opts.WhisperModel = DefaultWhisperModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAudioBytes <= 0 {
		opts.MaxAudioBytes = DefaultMaxAudioBytes
	}

	s := &Service{
		whisperModel: opts.WhisperModel,
		maxAudio:     opts.MaxAudioBytes,
		tts:          resty.New().SetTimeout(opts.Timeout).SetLogger(restyLogger{}),
		ttsURL:       opts.TTSURL,
		hfKey:        opts.HuggingFaceAPIKey,
		mockMode:     opts.MockMode,
	}

	if opts.WhisperAPIKey != "" {
		cfg := openai.DefaultConfig(opts.WhisperAPIKey)
		if opts.WhisperBaseURL != "" {
			cfg.BaseURL = opts.WhisperBaseURL
		}
		s.whisper = openai.NewClientWithConfig(cfg)
	}
	return s
}

// MockMode reports whether transcription is answered without an upstream.
func (s *Service) MockMode() bool {
	return s.mockMode
}

// SynthesisEnabled reports whether a Hugging Face key is configured.
func (s *Service) SynthesisEnabled() bool {
	return s.hfKey != ""
}

// MaxAudioBytes is the largest clip Transcribe accepts.
func (s *Service) MaxAudioBytes() int64 {
	return s.maxAudio
}
