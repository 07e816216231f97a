// Package assistant is the chat surface: it ties the conversation, the
// backend client and the voice pipeline together.
package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/farmease/farmease-ai/internal/conversation"
	"github.com/farmease/farmease-ai/internal/device"
	"github.com/farmease/farmease-ai/internal/model/chat"
	"github.com/farmease/farmease-ai/internal/voice"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrSendInFlight   = errors.New("a message is already being sent")
	ErrNotSpeakable   = errors.New("message cannot be read aloud")
	ErrUnknownMessage = errors.New("message not found")
)

// Suggestions are offered while the conversation holds only the greeting.
var Suggestions = []string{
	"How to grow rice?",
	"My crop has yellow leaves",
	"Best fertilizer for wheat",
}

// ChatClient sends a message with its history and always yields a reply.
type ChatClient interface {
	SendMessage(ctx context.Context, text string, history []chat.Turn) chat.Response
}

// Session is one open assistant surface.
type Session struct {
	conv   *conversation.Conversation
	client ChatClient
	voice  *voice.Controller

	autoSpeak bool

	mu      sync.Mutex
	sending bool
	offline bool
}

// Option customizes a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	autoSpeak    bool
	convOpts     []conversation.Option
	voiceOptions []voice.Option
}

// WithAutoSpeak reads replies to voice questions aloud.
func WithAutoSpeak(on bool) Option {
	return func(c *sessionConfig) {
		c.autoSpeak = on
	}
}

// WithConversation passes options to the underlying conversation.
func WithConversation(opts ...conversation.Option) Option {
	return func(c *sessionConfig) {
		c.convOpts = append(c.convOpts, opts...)
	}
}

// WithVoiceOptions passes options to the voice controller.
func WithVoiceOptions(opts ...voice.Option) Option {
	return func(c *sessionConfig) {
		c.voiceOptions = append(c.voiceOptions, opts...)
	}
}

// NewSession opens a session with a fresh conversation.
func NewSession(client ChatClient, caps device.Capabilities, transcriber voice.Transcriber, opts ...Option) *Session {
	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		conv:      conversation.New(cfg.convOpts...),
		client:    client,
		autoSpeak: cfg.autoSpeak,
	}
	voiceOpts := append([]voice.Option{voice.WithDispatcher(s.sendSpoken)}, cfg.voiceOptions...)
	s.voice = voice.NewController(caps, transcriber, voiceOpts...)
	return s
}

// Send appends the user's text, asks the backend and appends the reply.
// Only one send may be in flight; a concurrent call gets ErrSendInFlight.
func (s *Session) Send(ctx context.Context, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return chat.Message{}, ErrSendInFlight
	}
	s.sending = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	history := s.conv.HistoryForTransport()
	s.conv.AppendUser(text)

	resp := s.client.SendMessage(ctx, text, history)
	reply := s.conv.AppendAssistant(resp.Reply)

	s.mu.Lock()
	s.offline = resp.Mock
	s.mu.Unlock()

	logger().Infow("reply received", "id", reply.ID, "mock", resp.Mock, "tokens", resp.TokensUsed)
	return reply, nil
}

func (s *Session) sendSpoken(ctx context.Context, text string) error {
	reply, err := s.Send(ctx, text)
	if err != nil {
		return err
	}
	if s.autoSpeak {
		s.voice.Speak(reply.ID, reply.Content)
	}
	return nil
}

// Sending reports whether a send is in flight.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// Offline reports whether the last reply came from the local fallback.
func (s *Session) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

// StartRecording begins voice input.
func (s *Session) StartRecording(ctx context.Context) error {
	return s.voice.StartRecording(ctx)
}

// StopRecording ends voice input; unless cancelled the transcript is sent
// as a user message and returned.
func (s *Session) StopRecording(ctx context.Context, cancel bool) (string, error) {
	return s.voice.StopRecording(ctx, cancel)
}

// Speak toggles read-aloud of an assistant message.
func (s *Session) Speak(id string) (bool, error) {
	msg, ok := s.conv.Find(id)
	if !ok {
		return false, ErrUnknownMessage
	}
	if msg.Role != chat.RoleAssistant || conversation.IsWelcome(msg.ID) {
		return false, ErrNotSpeakable
	}
	return s.voice.Speak(msg.ID, msg.Content), nil
}

// Clear stops playback and resets the conversation to a fresh greeting.
func (s *Session) Clear() chat.Message {
	s.voice.StopSpeaking()
	return s.conv.Clear()
}

// Close stops playback and discards any recording in progress.
func (s *Session) Close(ctx context.Context) {
	s.voice.Close(ctx)
}

// Messages returns the conversation, oldest first.
func (s *Session) Messages() []chat.Message {
	return s.conv.Messages()
}

// Latest returns the newest message.
func (s *Session) Latest() (chat.Message, bool) {
	return s.conv.Latest()
}

// ShowSuggestions reports whether quick prompts should be offered.
func (s *Session) ShowSuggestions() bool {
	return s.conv.Len() <= 1
}

// Voice exposes the pipeline state for rendering.
func (s *Session) Voice() *voice.Controller {
	return s.voice
}
