// Package chat answers chat requests with the language model or, in mock
// mode, the canned reply catalog.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/farmease/farmease-ai/internal/model/chat"
	"github.com/farmease/farmease-ai/internal/mockreply"
	"github.com/farmease/farmease-ai/internal/service/llm"
)

// Request limits.
const (
	MaxMessageLength = 2000
	MaxTurnLength    = 4000
)

var ErrInvalidRequest = errors.New("invalid chat request")

// Generator produces a model answer.
type Generator interface {
	Generate(ctx context.Context, message string, history []chat.Turn) (llm.Reply, error)
}

// ReplyError reports a failed model call. Message is safe to show users.
type ReplyError struct {
	Message string
	Err     error
}

func (e *ReplyError) Error() string {
	return "AI service error: " + e.Message
}

func (e *ReplyError) Unwrap() error {
	return e.Err
}

// Service answers chat requests.
type Service struct {
	generator Generator
	catalog   *mockreply.Catalog
	mockMode  bool
}

// NewService wires the generator and catalog. A nil generator forces mock
// mode.
func NewService(generator Generator, catalog *mockreply.Catalog, mockMode bool) *Service {
	if catalog == nil {
		catalog = mockreply.NewCatalog()
	}
	return &Service{
		generator: generator,
		catalog:   catalog,
		mockMode:  mockMode || generator == nil,
	}
}

// MockMode reports whether replies come from the catalog.
func (s *Service) MockMode() bool {
	return s.mockMode
}

// Reply answers req. Model failures are returned as *ReplyError.
func (s *Service) Reply(ctx context.Context, req chat.Request) (chat.Response, error) {
	if s.mockMode {
		return chat.Response{Reply: s.catalog.Reply(req.Message), Mock: true}, nil
	}

	history := chat.LastTurns(req.History, chat.HistoryWindow)
	reply, err := s.generator.Generate(ctx, req.Message, history)
	if err != nil {
		logger().Errorw("model call failed", "error", err)
		return chat.Response{}, &ReplyError{Message: llm.SanitizeError(err), Err: err}
	}

	return chat.Response{Reply: reply.Text, TokensUsed: reply.TokensUsed}, nil
}

// Validate checks a request against the /chat limits.
func Validate(req chat.Request) error {
	n := utf8.RuneCountInString(req.Message)
	if n == 0 {
		return fmt.Errorf("%w: message must not be empty", ErrInvalidRequest)
	}
	if n > MaxMessageLength {
		return fmt.Errorf("%w: message must be at most %d characters", ErrInvalidRequest, MaxMessageLength)
	}
	if len(req.History) > chat.HistoryWindow {
		return fmt.Errorf("%w: history must have at most %d items", ErrInvalidRequest, chat.HistoryWindow)
	}
	for i, turn := range req.History {
		if !turn.Role.Valid() {
			return fmt.Errorf("%w: history[%d].role must be 'user' or 'assistant'", ErrInvalidRequest, i)
		}
		size := utf8.RuneCountInString(turn.Content)
		if size == 0 || size > MaxTurnLength {
			return fmt.Errorf("%w: history[%d].content must be 1 to %d characters", ErrInvalidRequest, i, MaxTurnLength)
		}
	}
	return nil
}

// Detail strips the sentinel prefix from a validation error.
func Detail(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": ")
}
