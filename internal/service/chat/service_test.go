package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/farmease/farmease-ai/internal/model/chat"
	"github.com/farmease/farmease-ai/internal/mockreply"
	chat "github.com/farmease/farmease-ai/internal/service/chat"
	"github.com/farmease/farmease-ai/internal/service/llm"
)

type stubGenerator struct {
	reply   llm.Reply
	err     error
	history []model.Turn
	message string
}

func (s *stubGenerator) Generate(_ context.Context, message string, history []model.Turn) (llm.Reply, error) {
	s.message = message
	s.history = history
	return s.reply, s.err
}

func firstPick(int) int { return 0 }

func TestReplyMockMode(t *testing.T) {
	gen := &stubGenerator{}
	svc := chat.NewService(gen, mockreply.NewCatalog(mockreply.WithPicker(firstPick)), true)

	resp, err := svc.Reply(context.Background(), model.Request{Message: "hello"})
	if err != nil {
		t.Fatalf("Reply err: %v", err)
	}
	if !resp.Mock {
		t.Fatalf("expected mock reply")
	}
	if resp.TokensUsed != nil {
		t.Fatalf("expected no token count in mock mode")
	}
	if gen.message != "" {
		t.Fatalf("generator should not be called in mock mode")
	}
}

func TestReplyNilGeneratorForcesMock(t *testing.T) {
	svc := chat.NewService(nil, nil, false)
	if !svc.MockMode() {
		t.Fatal("expected mock mode without a generator")
	}
}

func TestReplyUsesGenerator(t *testing.T) {
	tokens := 42
	gen := &stubGenerator{reply: llm.Reply{Text: "Sow after the first rains.", TokensUsed: &tokens}}
	svc := chat.NewService(gen, nil, false)

	history := make([]model.Turn, 0, 12)
	for i := 0; i < 12; i++ {
		history = append(history, model.Turn{Role: model.RoleUser, Content: strings.Repeat("a", i+1)})
	}

	resp, err := svc.Reply(context.Background(), model.Request{Message: "when to sow?", History: history})

	require.NoError(t, err)
	assert.Equal(t, "Sow after the first rains.", resp.Reply)
	assert.False(t, resp.Mock)
	require.NotNil(t, resp.TokensUsed)
	assert.Equal(t, 42, *resp.TokensUsed)
	assert.Equal(t, "when to sow?", gen.message)
	require.Len(t, gen.history, model.HistoryWindow)
	assert.Equal(t, "aaa", gen.history[0].Content)
}

func TestReplySanitizesModelError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("insufficient credits, visit console.x.ai/team/123")}
	svc := chat.NewService(gen, nil, false)

	_, err := svc.Reply(context.Background(), model.Request{Message: "hi"})

	var replyErr *chat.ReplyError
	require.ErrorAs(t, err, &replyErr)
	assert.Equal(t, llm.MsgAccountLimits, replyErr.Message)
	assert.Equal(t, "AI service error: "+llm.MsgAccountLimits, err.Error())
	assert.NotContains(t, err.Error(), "console.x.ai")
}

func TestValidate(t *testing.T) {
	valid := model.Request{Message: "how to grow rice?", History: []model.Turn{{Role: model.RoleAssistant, Content: "ok"}}}
	require.NoError(t, chat.Validate(valid))

	tooMany := make([]model.Turn, 11)
	for i := range tooMany {
		tooMany[i] = model.Turn{Role: model.RoleUser, Content: "x"}
	}

	cases := map[string]model.Request{
		"empty message":    {Message: ""},
		"long message":     {Message: strings.Repeat("ध", chat.MaxMessageLength+1)},
		"too much history": {Message: "hi", History: tooMany},
		"bad role":         {Message: "hi", History: []model.Turn{{Role: "system", Content: "x"}}},
		"empty content":    {Message: "hi", History: []model.Turn{{Role: model.RoleUser}}},
		"long content":     {Message: "hi", History: []model.Turn{{Role: model.RoleUser, Content: strings.Repeat("x", chat.MaxTurnLength+1)}}},
	}
	for name, req := range cases {
		err := chat.Validate(req)
		if !errors.Is(err, chat.ErrInvalidRequest) {
			t.Fatalf("%s: expected ErrInvalidRequest, got %v", name, err)
		}
	}

	assert.Equal(t, "message must not be empty", chat.Detail(chat.Validate(model.Request{})))
	assert.NoError(t, chat.Validate(model.Request{Message: strings.Repeat("ध", chat.MaxMessageLength)}))
}
