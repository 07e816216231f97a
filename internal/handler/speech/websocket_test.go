package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/farmease/farmease-ai/internal/conversation"
	"github.com/farmease/farmease-ai/internal/model/chat"
)

type recordingChat struct {
	mu       sync.Mutex
	requests []chat.Request
	err      error
}

func (c *recordingChat) Reply(_ context.Context, req chat.Request) (chat.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return chat.Response{}, c.err
	}
	return chat.Response{Reply: "reply to " + req.Message, Mock: true}, nil
}

func (c *recordingChat) seen() []chat.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Request(nil), c.requests...)
}

type frame struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data"`
}

func dialVoice(t *testing.T, h *WebSocketHandler) *websocket.Conn {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterWebSocketRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/voice"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func send(t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	raw, _ := json.Marshal(data)
	if err := conn.WriteJSON(map[string]any{"type": typ, "data": json.RawMessage(raw)}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func TestVoiceSessionTextRoundTrip(t *testing.T) {
	chatSvc := &recordingChat{}
	conn := dialVoice(t, NewWebSocketHandler(&fakeSpeechService{}, chatSvc, nil, "Namaste"))

	hello := readFrame(t, conn)
	if hello.Data["type"] != "connected" || hello.Data["welcome"] != "Namaste" {
		t.Fatalf("unexpected greeting %+v", hello)
	}
	if hello.SessionID == "" {
		t.Fatal("expected session id")
	}

	send(t, conn, "text", TextMessage{Text: "how to grow rice?"})
	if f := readFrame(t, conn); f.Data["type"] != "user" {
		t.Fatalf("expected user echo, got %+v", f)
	}
	ai := readFrame(t, conn)
	if ai.Data["type"] != "ai" || ai.Data["text"] != "reply to how to grow rice?" {
		t.Fatalf("unexpected ai frame %+v", ai)
	}

	send(t, conn, "text", TextMessage{Text: "and wheat?"})
	readFrame(t, conn)
	readFrame(t, conn)

	requests := chatSvc.seen()
	if len(requests) != 2 {
		t.Fatalf("expected 2 chat requests, got %d", len(requests))
	}
	history := requests[1].History
	if len(history) != 2 || history[0].Content != "how to grow rice?" || history[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected history %+v", history)
	}
	if len(requests[0].History) != 0 {
		t.Fatalf("welcome must not be sent as history")
	}
}

func TestVoiceSessionAudioBufferedUntilFinal(t *testing.T) {
	speechSvc := &fakeSpeechService{transcript: "tomato leaf spots", synthesis: true}
	conn := dialVoice(t, NewWebSocketHandler(speechSvc, &recordingChat{}, nil, ""))
	readFrame(t, conn)

	send(t, conn, "audio", AudioMessage{AudioData: []byte("abc"), Format: "m4a"})
	send(t, conn, "audio", AudioMessage{AudioData: []byte("def"), IsFinal: true})

	asr := readFrame(t, conn)
	if asr.Data["type"] != "asr" || asr.Data["text"] != "tomato leaf spots" {
		t.Fatalf("unexpected asr frame %+v", asr)
	}
	if clip := speechSvc.lastClip(); string(clip.Data) != "abcdef" || clip.Filename != "audio.m4a" {
		t.Fatalf("unexpected clip %+v", clip)
	}

	readFrame(t, conn) // user
	readFrame(t, conn) // ai
	tts := readFrame(t, conn)
	if tts.Data["type"] != "tts" || tts.Data["audioData"] == "" {
		t.Fatalf("unexpected tts frame %+v", tts)
	}
}

func TestVoiceSessionNoSpeech(t *testing.T) {
	conn := dialVoice(t, NewWebSocketHandler(&fakeSpeechService{transcript: "  "}, &recordingChat{}, nil, ""))
	readFrame(t, conn)

	send(t, conn, "audio", AudioMessage{AudioData: []byte("silence"), IsFinal: true})

	readFrame(t, conn) // asr
	f := readFrame(t, conn)
	if f.Type != "error" || f.Data["message"] != ErrNoSpeech.Error() {
		t.Fatalf("expected no speech error, got %+v", f)
	}
}

func TestVoiceSessionConfigAndClear(t *testing.T) {
	conn := dialVoice(t, NewWebSocketHandler(&fakeSpeechService{}, &recordingChat{}, nil, ""))
	readFrame(t, conn)

	send(t, conn, "config", map[string]any{"language": "hi", "ttsEnabled": true})
	cfg := readFrame(t, conn)
	if cfg.Data["language"] != "hi" || cfg.Data["tts"] != false {
		t.Fatalf("unexpected config frame %+v", cfg)
	}

	send(t, conn, "clear", struct{}{})
	cleared := readFrame(t, conn)
	if cleared.Data["type"] != "cleared" || cleared.Data["text"] != conversation.ClearedText {
		t.Fatalf("unexpected clear frame %+v", cleared)
	}

	send(t, conn, "dance", struct{}{})
	if f := readFrame(t, conn); f.Type != "error" {
		t.Fatalf("expected error for unknown type, got %+v", f)
	}
}

func TestVoiceSessionChatError(t *testing.T) {
	conn := dialVoice(t, NewWebSocketHandler(&fakeSpeechService{}, &recordingChat{err: errors.New("AI service error: boom")}, nil, ""))
	readFrame(t, conn)

	send(t, conn, "text", TextMessage{Text: "hi"})
	readFrame(t, conn)
	f := readFrame(t, conn)
	if f.Type != "error" || f.Data["message"] != "AI service error: boom" {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func TestVoiceSessionRateLimited(t *testing.T) {
	r := chi.NewRouter()
	NewWebSocketHandler(&fakeSpeechService{}, &recordingChat{}, denyAll{}, "").RegisterWebSocketRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/voice", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 response, got %+v", resp)
	}
}

func TestVoiceSessionOversizedFrameClosesConnection(t *testing.T) {
	chatSvc := &recordingChat{}
	conn := dialVoice(t, NewWebSocketHandler(&fakeSpeechService{maxAudio: 1024}, chatSvc, nil, ""))
	readFrame(t, conn)

	big := AudioMessage{AudioData: bytes.Repeat([]byte("a"), 256<<10), IsFinal: true}
	_ = conn.WriteJSON(map[string]any{"type": "audio", "data": big})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err == nil {
		t.Fatalf("expected connection to close, got frame %+v", f)
	}
	if len(chatSvc.seen()) != 0 {
		t.Fatal("oversized frame must not reach the chat service")
	}
}

func TestApplyConfigKeepsTTSOffWithoutSynthesis(t *testing.T) {
	state := newConnectionState("session", "", false)
	handler := &WebSocketHandler{speechSvc: &fakeSpeechService{}}
	enabled := true

	handler.applyConfig(state, ConfigMessage{Language: "kn", TTSEnabled: &enabled})

	if state.language != "kn" {
		t.Fatalf("expected language kn, got %s", state.language)
	}
	if state.ttsEnabled {
		t.Fatalf("expected TTS to stay disabled")
	}
}
