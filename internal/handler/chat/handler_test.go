package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/farmease/farmease-ai/internal/middleware"
	"github.com/farmease/farmease-ai/internal/mockreply"
	"github.com/farmease/farmease-ai/internal/model/chat"
	chatservice "github.com/farmease/farmease-ai/internal/service/chat"
	"github.com/farmease/farmease-ai/internal/service/llm"
)

type denyAfter struct{ n int }

func (d *denyAfter) Allow(context.Context, string) bool {
	d.n--
	return d.n >= 0
}

type failingGenerator struct{ err error }

func (f failingGenerator) Generate(context.Context, string, []chat.Turn) (llm.Reply, error) {
	return llm.Reply{}, f.err
}

func setupRouter(svc Replier, limiter middleware.Limiter) *chi.Mux {
	h := New(svc, limiter)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func postChat(r http.Handler, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeDetail(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body chat.ErrorBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Detail
}

func TestChatMockReply(t *testing.T) {
	svc := chatservice.NewService(nil, mockreply.NewCatalog(mockreply.WithPicker(func(int) int { return 0 })), true)
	r := setupRouter(svc, &denyAfter{n: 5})

	resp := postChat(r, chat.Request{Message: "hello"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body chat.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Mock || body.Reply == "" {
		t.Fatalf("expected mock reply, got %+v", body)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"tokens_used":null`)) {
		t.Fatalf("expected null tokens_used, got %s", resp.Body.String())
	}
}

func TestChatValidation(t *testing.T) {
	r := setupRouter(chatservice.NewService(nil, nil, true), nil)

	resp := postChat(r, chat.Request{Message: ""})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}

	resp = postChat(r, map[string]any{"message": "hi", "history": []map[string]string{{"role": "system", "content": "x"}}})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad role, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed body, got %d", rr.Code)
	}
}

func TestChatRateLimited(t *testing.T) {
	r := setupRouter(chatservice.NewService(nil, nil, true), &denyAfter{n: 1})

	if resp := postChat(r, chat.Request{Message: "hi"}); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp := postChat(r, chat.Request{Message: "hi"})
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if got := decodeDetail(t, resp); got != "Too many requests. Please wait a moment." {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestChatModelFailure(t *testing.T) {
	svc := chatservice.NewService(failingGenerator{err: errors.New("404 model not found")}, nil, false)
	r := setupRouter(svc, nil)

	resp := postChat(r, chat.Request{Message: "how to grow rice?"})

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if got := decodeDetail(t, resp); got != "AI service error: "+llm.MsgModelMissing {
		t.Fatalf("unexpected detail %q", got)
	}
}
