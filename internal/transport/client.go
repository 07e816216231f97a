// Package transport talks to the FarmEase assistant backend over HTTP.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/farmease/farmease-ai/internal/model/chat"
	"github.com/farmease/farmease-ai/internal/model/speech"
)

const (
	// DefaultChatTimeout bounds a chat round trip before the local reply is used.
	DefaultChatTimeout = 10 * time.Second
	// DefaultSpeechTimeout bounds transcription and synthesis requests.
	DefaultSpeechTimeout = 30 * time.Second
)

// Responder produces the local reply used when the backend cannot answer.
type Responder interface {
	Reply(text string) string
}

// Client is the assistant backend client.
type Client struct {
	http          *resty.Client
	baseURL       string
	chatTimeout   time.Duration
	speechTimeout time.Duration
	fallback      Responder
}

// Option customizes a Client.
type Option func(*Client)

// WithChatTimeout overrides DefaultChatTimeout.
func WithChatTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.chatTimeout = d
		}
	}
}

// WithSpeechTimeout overrides DefaultSpeechTimeout.
func WithSpeechTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.speechTimeout = d
		}
	}
}

// WithHTTPClient routes requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.baseURL).SetLogger(restyLogger{})
	}
}

// New creates a client for baseURL. fallback answers chat messages whenever
// the backend fails.
func New(baseURL string, fallback Responder, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		http:          resty.New().SetBaseURL(baseURL).SetLogger(restyLogger{}),
		baseURL:       baseURL,
		chatTimeout:   DefaultChatTimeout,
		speechTimeout: DefaultSpeechTimeout,
		fallback:      fallback,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage posts text with the trailing history window to /chat. Any
// failure is logged and answered locally with Mock set, so callers always get
// a reply.
func (c *Client) SendMessage(ctx context.Context, text string, history []chat.Turn) chat.Response {
	resp, err := c.postChat(ctx, text, history)
	if err != nil {
		logger().Infow("chat backend unavailable, using local reply", "err", err)
		return chat.Response{Reply: c.fallback.Reply(text), Mock: true}
	}
	return resp
}

func (c *Client) postChat(ctx context.Context, text string, history []chat.Turn) (chat.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	body := chat.Request{
		Message: text,
		History: chat.LastTurns(history, chat.HistoryWindow),
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/chat")
	if err != nil {
		return chat.Response{}, fmt.Errorf("post chat: %w", err)
	}
	if !res.IsSuccess() {
		return chat.Response{}, &StatusError{
			Code:   res.StatusCode(),
			Detail: detailOr(res.Body(), fmt.Sprintf("Server error %d", res.StatusCode())),
		}
	}

	var out chat.Response
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return chat.Response{}, fmt.Errorf("decode chat response: %w", err)
	}
	return out, nil
}

// Transcribe uploads a recorded clip to /transcribe and returns the text.
func (c *Client) Transcribe(ctx context.Context, clip speech.Clip) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.speechTimeout)
	defer cancel()

	filename, contentType := clip.Filename, clip.ContentType
	if filename == "" {
		filename = speech.DefaultClipName
	}
	if contentType == "" {
		contentType = speech.DefaultClipType
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("file", filename, contentType, clip.Reader()).
		Post("/transcribe")
	if err != nil {
		return "", &TranscribeError{Message: errorTextOr(err, "Voice transcription failed. Please type your message."), Err: err}
	}
	if !res.IsSuccess() {
		detail := detailOr(res.Body(), "Transcription failed")
		return "", &TranscribeError{Message: detail, Err: &StatusError{Code: res.StatusCode(), Detail: detail}}
	}

	var out speech.TranscribeResponse
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return "", &TranscribeError{Message: "Voice transcription failed. Please type your message.", Err: err}
	}
	return out.Text, nil
}

// Speak asks /speak to synthesize text and returns the audio bytes.
func (c *Client) Speak(ctx context.Context, text, language string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.speechTimeout)
	defer cancel()

	if language == "" {
		language = speech.DefaultLanguage
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(speech.SpeakRequest{Text: text, Language: language}).
		Post("/speak")
	if err != nil {
		return nil, fmt.Errorf("post speak: %w", err)
	}
	if !res.IsSuccess() {
		return nil, &StatusError{Code: res.StatusCode(), Detail: detailOr(res.Body(), "Speech synthesis failed")}
	}
	return res.Body(), nil
}

// CheckHealth reports whether GET /health answers with a 2xx status.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	res, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		logger().Debugw("health check failed", "err", err)
		return false
	}
	return res.IsSuccess()
}

func detailOr(body []byte, fallback string) string {
	var eb chat.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && strings.TrimSpace(eb.Detail) != "" {
		return eb.Detail
	}
	return fallback
}

func errorTextOr(err error, fallback string) string {
	if err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
