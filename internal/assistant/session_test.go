package assistant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmease/farmease-ai/internal/device"
	"github.com/farmease/farmease-ai/internal/model/chat"
	"github.com/farmease/farmease-ai/internal/model/speech"
)

type fakeClient struct {
	mu      sync.Mutex
	reply   chat.Response
	texts   []string
	history [][]chat.Turn
	gate    chan struct{}
}

func (f *fakeClient) SendMessage(_ context.Context, text string, history []chat.Turn) chat.Response {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.history = append(f.history, history)
	return f.reply
}

type grantedMic struct{}

func (grantedMic) RequestPermission(context.Context) (bool, error) { return true, nil }
func (grantedMic) Open(context.Context) (device.Recording, error) { return clipRecording{}, nil }

type clipRecording struct{}

func (clipRecording) Stop(context.Context) (speech.Clip, error) {
	return speech.Clip{Data: []byte("audio")}, nil
}

type staticTranscriber string

func (s staticTranscriber) Transcribe(context.Context, speech.Clip) (string, error) {
	return string(s), nil
}

type recordingEngine struct {
	mu     sync.Mutex
	spoken []string
}

func (e *recordingEngine) Speak(text string, _ device.SpeakOptions, _ device.Callbacks) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spoken = append(e.spoken, text)
	return nil
}

func (e *recordingEngine) Stop() {}

func newSession(client ChatClient, engine device.SpeechEngine, tr staticTranscriber, opts ...Option) *Session {
	caps := device.Capabilities{Microphone: grantedMic{}, Speech: engine}
	return NewSession(client, caps, tr, opts...)
}

func TestSendAppendsUserAndReply(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "Use SRI", Mock: false}}
	s := newSession(client, &recordingEngine{}, "")
	require.True(t, s.ShowSuggestions())

	reply, err := s.Send(t.Context(), "  how to grow rice?  ")

	require.NoError(t, err)
	assert.Equal(t, "Use SRI", reply.Content)
	assert.Equal(t, chat.RoleAssistant, reply.Role)
	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "how to grow rice?", msgs[1].Content)
	assert.Equal(t, []string{"how to grow rice?"}, client.texts)
	assert.Empty(t, client.history[0], "welcome must not be sent upstream")
	assert.False(t, s.Offline())
	assert.False(t, s.ShowSuggestions())
}

func TestSendPassesPriorHistory(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "ok"}}
	s := newSession(client, &recordingEngine{}, "")

	_, err := s.Send(t.Context(), "first")
	require.NoError(t, err)
	_, err = s.Send(t.Context(), "second")
	require.NoError(t, err)

	assert.Equal(t, []chat.Turn{
		{Role: chat.RoleUser, Content: "first"},
		{Role: chat.RoleAssistant, Content: "ok"},
	}, client.history[1])
}

func TestSendRejectsEmpty(t *testing.T) {
	client := &fakeClient{}
	s := newSession(client, &recordingEngine{}, "")

	_, err := s.Send(t.Context(), "   ")

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, client.texts)
	assert.Equal(t, 1, len(s.Messages()))
}

func TestSendGate(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "ok"}, gate: make(chan struct{})}
	s := newSession(client, &recordingEngine{}, "")

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, s.Sending, time.Second, time.Millisecond)

	_, err := s.Send(t.Context(), "second")
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(client.gate)
	require.NoError(t, <-done)
	assert.False(t, s.Sending())
	assert.Equal(t, []string{"first"}, client.texts)
}

func TestOfflineFlagFollowsMockReplies(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "canned", Mock: true}}
	s := newSession(client, &recordingEngine{}, "")

	_, err := s.Send(t.Context(), "hello")

	require.NoError(t, err)
	assert.True(t, s.Offline())
}

func TestVoiceQuestionIsSentAndSpoken(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "**Drip** saves water"}}
	engine := &recordingEngine{}
	s := newSession(client, engine, "how to save water", WithAutoSpeak(true))

	require.NoError(t, s.StartRecording(t.Context()))
	text, err := s.StopRecording(t.Context(), false)

	require.NoError(t, err)
	assert.Equal(t, "how to save water", text)
	assert.Equal(t, []string{"how to save water"}, client.texts)
	assert.Equal(t, []string{"Drip saves water"}, engine.spoken)
	latest, _ := s.Latest()
	assert.Equal(t, latest.ID, s.Voice().Speaking())
}

func TestSpeakOnlyAssistantMessages(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "answer"}}
	s := newSession(client, &recordingEngine{}, "")
	welcome, _ := s.Latest()

	_, err := s.Speak(welcome.ID)
	assert.ErrorIs(t, err, ErrNotSpeakable)

	_, err = s.Speak("missing")
	assert.ErrorIs(t, err, ErrUnknownMessage)

	reply, err := s.Send(t.Context(), "question")
	require.NoError(t, err)
	user := s.Messages()[1]

	_, err = s.Speak(user.ID)
	assert.ErrorIs(t, err, ErrNotSpeakable)

	started, err := s.Speak(reply.ID)
	require.NoError(t, err)
	assert.True(t, started)

	started, err = s.Speak(reply.ID)
	require.NoError(t, err)
	assert.False(t, started)
}

func TestClearStopsSpeech(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "answer"}}
	s := newSession(client, &recordingEngine{}, "")
	reply, err := s.Send(t.Context(), "question")
	require.NoError(t, err)
	_, _ = s.Speak(reply.ID)

	cleared := s.Clear()

	assert.Empty(t, s.Voice().Speaking())
	assert.Equal(t, []chat.Message{cleared}, s.Messages())
}

func TestCloseCancelsRecording(t *testing.T) {
	client := &fakeClient{reply: chat.Response{Reply: "answer"}}
	s := newSession(client, &recordingEngine{}, "would be sent")

	require.NoError(t, s.StartRecording(t.Context()))
	s.Close(t.Context())

	assert.Empty(t, client.texts)
	assert.NoError(t, s.StartRecording(t.Context()))
}
