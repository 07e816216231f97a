package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/farmease/farmease-ai/internal/conversation"
	"github.com/farmease/farmease-ai/internal/middleware"
	"github.com/farmease/farmease-ai/internal/model/chat"
	"github.com/farmease/farmease-ai/internal/model/speech"
	chatservice "github.com/farmease/farmease-ai/internal/service/chat"
	speechsvc "github.com/farmease/farmease-ai/internal/service/speech"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second

	// frameOverhead covers the JSON envelope around a base64 audio chunk.
	frameOverhead = 64 << 10
)

// ErrNoSpeech is reported when a finished clip transcribes to nothing.
var ErrNoSpeech = errors.New("no speech detected")

// ChatReplier answers chat requests.
type ChatReplier interface {
	Reply(ctx context.Context, req chat.Request) (chat.Response, error)
}

// WebSocketHandler runs voice sessions over a WebSocket: audio in, reply
// text and optional synthesized audio out.
type WebSocketHandler struct {
	speechSvc SpeechService
	chatSvc   ChatReplier
	limiter   middleware.Limiter
	welcome   string
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler creates the voice session handler. limiter may be nil.
func NewWebSocketHandler(speechSvc SpeechService, chatSvc ChatReplier, limiter middleware.Limiter, welcome string) *WebSocketHandler {
	return &WebSocketHandler{
		speechSvc: speechSvc,
		chatSvc:   chatSvc,
		limiter:   limiter,
		welcome:   welcome,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts GET /ws/voice.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/voice", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AudioMessage carries a chunk of the clip being recorded.
type AudioMessage struct {
	AudioData []byte `json:"audioData"`
	Format    string `json:"format"`
	Language  string `json:"language"`
	IsFinal   bool   `json:"isFinal"`
}

// TextMessage is a typed user message.
type TextMessage struct {
	Text string `json:"text"`
}

// ConfigMessage updates per-connection settings.
type ConfigMessage struct {
	Language   string `json:"language"`
	TTSEnabled *bool  `json:"ttsEnabled,omitempty"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type connectionState struct {
	sessionID    string
	language     string
	ttsEnabled   bool
	audioFormat  string
	buffer       bytes.Buffer
	conversation *conversation.Conversation
}

func newConnectionState(sessionID, welcome string, ttsEnabled bool) *connectionState {
	opts := []conversation.Option{}
	if welcome != "" {
		opts = append(opts, conversation.WithWelcome(welcome, conversation.ClearedText))
	}
	return &connectionState{
		sessionID:    sessionID,
		language:     speech.DefaultLanguage,
		ttsEnabled:   ttsEnabled,
		conversation: conversation.New(opts...),
	}
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !middleware.Allow(h.limiter, w, r) {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger().Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.readLimit())

	state := newConnectionState(uuid.NewString(), h.welcome, h.speechSvc.SynthesisEnabled())
	logger().Infow("voice session opened", "session", state.sessionID, "remote", middleware.ClientIP(r))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go h.pingLoop(ctx, conn)

	welcome, _ := state.conversation.Latest()
	h.sendResult(conn, state.sessionID, map[string]any{
		"type":     "connected",
		"welcome":  welcome.Content,
		"language": state.language,
		"tts":      state.ttsEnabled,
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger().Infow("voice session read failed", "session", state.sessionID, "error", err)
			}
			logger().Infow("voice session closed", "session", state.sessionID, "messages", state.conversation.Len())
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		h.handleMessage(ctx, conn, state, &msg)
	}
}

// readLimit bounds a single inbound frame to one base64 encoded clip.
func (h *WebSocketHandler) readLimit() int64 {
	return int64(base64.StdEncoding.EncodedLen(int(h.speechSvc.MaxAudioBytes()))) + frameOverhead
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "audio":
		h.handleAudioMessage(ctx, conn, state, msg.Data)
	case "text":
		h.handleTextMessage(ctx, conn, state, msg.Data)
	case "config":
		h.handleConfigMessage(conn, state, msg.Data)
	case "clear":
		cleared := state.conversation.Clear()
		state.buffer.Reset()
		h.sendResult(conn, state.sessionID, map[string]any{"type": "cleared", "text": cleared.Content})
	default:
		h.sendError(conn, state.sessionID, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleAudioMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var audio AudioMessage
	if err := json.Unmarshal(raw, &audio); err != nil {
		h.sendError(conn, state.sessionID, "invalid audio payload")
		return
	}

	if len(audio.AudioData) > 0 {
		state.buffer.Write(audio.AudioData)
	}
	if audio.Format != "" {
		state.audioFormat = strings.TrimPrefix(audio.Format, ".")
	}
	if audio.Language != "" {
		state.language = audio.Language
	}
	if int64(state.buffer.Len()) > h.speechSvc.MaxAudioBytes() {
		state.buffer.Reset()
		h.sendError(conn, state.sessionID, "Audio file too large (max 25 MB).")
		return
	}

	if audio.IsFinal {
		h.processBufferedAudio(ctx, conn, state)
	}
}

func (h *WebSocketHandler) processBufferedAudio(ctx context.Context, conn *websocket.Conn, state *connectionState) {
	data := bytes.Clone(state.buffer.Bytes())
	state.buffer.Reset()

	format := state.audioFormat
	if format == "" {
		format = "wav"
	}
	clip := speech.Clip{Data: data, Filename: "audio." + format, ContentType: "audio/" + format}

	logger().Infow("transcribing voice clip", "session", state.sessionID, "format", format, "bytes", len(data))
	text, err := h.speechSvc.Transcribe(ctx, clip)
	if err != nil {
		var statusErr *speechsvc.StatusError
		if errors.As(err, &statusErr) {
			h.sendError(conn, state.sessionID, statusErr.Detail)
			return
		}
		h.sendError(conn, state.sessionID, "Transcription failed.")
		return
	}

	h.sendResult(conn, state.sessionID, map[string]any{
		"type":    "asr",
		"text":    text,
		"isFinal": true,
	})

	if strings.TrimSpace(text) == "" {
		h.sendError(conn, state.sessionID, ErrNoSpeech.Error())
		return
	}

	h.processUserText(ctx, conn, state, text)
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(conn, state.sessionID, "invalid text payload")
		return
	}
	if strings.TrimSpace(text.Text) == "" {
		return
	}

	h.processUserText(ctx, conn, state, strings.TrimSpace(text.Text))
}

func (h *WebSocketHandler) processUserText(ctx context.Context, conn *websocket.Conn, state *connectionState, userText string) {
	req := chat.Request{Message: userText, History: state.conversation.HistoryForTransport()}
	if err := chatservice.Validate(req); err != nil {
		h.sendError(conn, state.sessionID, chatservice.Detail(err))
		return
	}

	state.conversation.AppendUser(userText)
	h.sendResult(conn, state.sessionID, map[string]any{
		"type": "user",
		"text": userText,
	})

	resp, err := h.chatSvc.Reply(ctx, req)
	if err != nil {
		h.sendError(conn, state.sessionID, err.Error())
		return
	}

	state.conversation.AppendAssistant(resp.Reply)
	h.sendResult(conn, state.sessionID, map[string]any{
		"type":       "ai",
		"text":       resp.Reply,
		"mock":       resp.Mock,
		"tokensUsed": resp.TokensUsed,
		"isFinal":    true,
	})

	if state.ttsEnabled && resp.Reply != "" {
		h.sendTTS(ctx, conn, state, resp.Reply)
	}
}

func (h *WebSocketHandler) sendTTS(ctx context.Context, conn *websocket.Conn, state *connectionState, text string) {
	audio, err := h.speechSvc.Synthesize(ctx, text)
	if err != nil {
		logger().Warnw("voice session synthesis failed", "session", state.sessionID, "error", err)
		h.sendResult(conn, state.sessionID, map[string]any{
			"type":  "tts",
			"error": "synthesis failed",
		})
		return
	}

	h.sendResult(conn, state.sessionID, map[string]any{
		"type":      "tts",
		"audioData": base64.StdEncoding.EncodeToString(audio.Data),
		"format":    audio.MediaType,
		"isFinal":   true,
	})
}

func (h *WebSocketHandler) handleConfigMessage(conn *websocket.Conn, state *connectionState, raw json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		h.sendError(conn, state.sessionID, "invalid config payload")
		return
	}

	h.applyConfig(state, cfg)

	h.sendResult(conn, state.sessionID, map[string]any{
		"type":     "config",
		"language": state.language,
		"tts":      state.ttsEnabled,
	})
}

func (h *WebSocketHandler) applyConfig(state *connectionState, cfg ConfigMessage) {
	if cfg.Language != "" {
		state.language = cfg.Language
	}
	if cfg.TTSEnabled != nil {
		state.ttsEnabled = *cfg.TTSEnabled && h.speechSvc.SynthesisEnabled()
	}
}

func (h *WebSocketHandler) sendResult(conn *websocket.Conn, sessionID string, data map[string]any) {
	h.write(conn, outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, sessionID, message string) {
	h.write(conn, outgoingMessage{
		Type:      "error",
		SessionID: sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	})
}

func (h *WebSocketHandler) write(conn *websocket.Conn, msg outgoingMessage) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		logger().Warnw("websocket write failed", "type", msg.Type, "error", err)
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
