// Package llm generates assistant replies with a chat model.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/farmease/farmease-ai/internal/model/chat"
)

// Reply is a generated answer.
type Reply struct {
	Text       string
	TokensUsed *int
}

// Service runs the system prompt, history and user message through a chat
// model.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	preset Preset
}

// NewService compiles the prompt chain around chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, preset Preset) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chain: runnable, preset: preset}, nil
}

// Generate answers message given the prior turns. Only the trailing
// chat.HistoryWindow turns are sent.
func (s *Service) Generate(ctx context.Context, message string, history []chat.Turn) (Reply, error) {
	input := map[string]any{
		"system":  s.preset.SystemPrompt,
		"history": buildHistoryMessages(history),
		"query":   message,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to run chat chain: %w", err)
	}

	reply := Reply{Text: strings.TrimSpace(response.Content)}
	if response.ResponseMeta != nil && response.ResponseMeta.Usage != nil {
		total := response.ResponseMeta.Usage.TotalTokens
		reply.TokensUsed = &total
	}

	logger().Infow("reply generated", "length", len(reply.Text), "history", len(history), "tokens", reply.TokensUsed)
	return reply, nil
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	turns = chat.LastTurns(turns, chat.HistoryWindow)
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
