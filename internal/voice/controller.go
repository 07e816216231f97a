// Package voice drives recording, transcription and spoken playback for the
// assistant.
package voice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/farmease/farmease-ai/internal/device"
	"github.com/farmease/farmease-ai/internal/model/speech"
)

// State is the recording side of the pipeline.
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
)

const (
	DefaultLanguage = "en"
	DefaultRate     = 0.9
)

// Transcriber converts a clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip speech.Clip) (string, error)
}

// Dispatcher receives transcribed text, normally the chat send.
type Dispatcher func(ctx context.Context, text string) error

// Controller owns the recording session and the speaking marker. Recording
// and speaking are tracked independently and may overlap.
type Controller struct {
	mic         device.Microphone
	engine      device.SpeechEngine
	transcriber Transcriber
	dispatch    Dispatcher

	tick     time.Duration
	language string
	rate     float64

	mu       sync.Mutex
	state    State
	rec      device.Recording
	started  time.Time
	seconds  int
	stopTick chan struct{}
	recGen   uint64
	speakID  string
	speakGen uint64
}

// Option customizes a Controller.
type Option func(*Controller)

// WithTickInterval sets how often the duration counter advances. Each tick
// counts as one second.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithVoice sets the playback language and rate.
func WithVoice(language string, rate float64) Option {
	return func(c *Controller) {
		if language != "" {
			c.language = language
		}
		if rate > 0 {
			c.rate = rate
		}
	}
}

// WithDispatcher sets where transcribed text goes.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Controller) {
		c.dispatch = d
	}
}

// NewController wires the device capabilities to a transcriber.
func NewController(caps device.Capabilities, transcriber Transcriber, opts ...Option) *Controller {
	c := &Controller{
		mic:         caps.Microphone,
		engine:      caps.Speech,
		transcriber: transcriber,
		tick:        time.Second,
		language:    DefaultLanguage,
		rate:        DefaultRate,
		state:       StateIdle,
	}
	if c.mic == nil {
		c.mic = device.NoMicrophone{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the recording state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Duration returns the seconds counted for the active recording.
func (c *Controller) Duration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seconds
}

// Speaking returns the id of the message being read aloud, or "".
func (c *Controller) Speaking() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speakID
}

// StartRecording asks for microphone permission and opens a recording.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	// Claim the session before blocking on the permission prompt.
	c.state = StateRecording
	c.recGen++
	gen := c.recGen
	c.mu.Unlock()

	rec, err := c.open(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	claimed := c.recGen == gen
	if err != nil {
		if claimed {
			c.state = StateIdle
		}
		return err
	}
	if !claimed {
		// Cancelled while the permission prompt was pending; a later start
		// may own the session now.
		go func() { _, _ = rec.Stop(context.WithoutCancel(ctx)) }()
		return ErrRecordingAborted
	}
	c.rec = rec
	c.started = time.Now()
	c.seconds = 0
	c.stopTick = make(chan struct{})
	go c.count(c.stopTick)

	logger().Infow("recording started")
	return nil
}

func (c *Controller) open(ctx context.Context) (device.Recording, error) {
	granted, err := c.mic.RequestPermission(ctx)
	if err != nil {
		return nil, &RecordingError{Op: "start", Err: err}
	}
	if !granted {
		return nil, ErrPermissionDenied
	}
	rec, err := c.mic.Open(ctx)
	if err != nil {
		return nil, &RecordingError{Op: "start", Err: err}
	}
	return rec, nil
}

func (c *Controller) count(stop <-chan struct{}) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.seconds++
			c.mu.Unlock()
		}
	}
}

// StopRecording ends the active recording. With cancel the clip is
// discarded. Otherwise it is transcribed and non-empty text is handed to the
// dispatcher; the transcript is returned. Without an active recording this is
// a no-op.
func (c *Controller) StopRecording(ctx context.Context, cancel bool) (string, error) {
	c.mu.Lock()
	rec := c.rec
	if rec == nil {
		if cancel && c.state == StateRecording {
			c.state = StateIdle
			c.recGen++
		}
		c.mu.Unlock()
		return "", nil
	}
	c.rec = nil
	c.recGen++
	close(c.stopTick)
	c.stopTick = nil
	elapsed := time.Since(c.started)
	if cancel {
		c.state = StateIdle
	} else {
		c.state = StateTranscribing
	}
	c.mu.Unlock()

	clip, err := rec.Stop(ctx)
	if cancel {
		logger().Infow("recording cancelled", "elapsed", elapsed)
		return "", nil
	}
	if err != nil {
		c.setState(StateIdle)
		return "", &RecordingError{Op: "stop", Err: err}
	}

	text, err := c.transcribe(ctx, clip)
	c.setState(StateIdle)
	if err != nil {
		return "", err
	}

	if c.dispatch != nil {
		if err := c.dispatch(ctx, text); err != nil {
			return text, err
		}
	}
	return text, nil
}

func (c *Controller) transcribe(ctx context.Context, clip speech.Clip) (string, error) {
	if c.transcriber == nil {
		return "", &TranscriptionError{Message: TranscribeMessage, Err: errors.New("no transcriber configured")}
	}
	text, err := c.transcriber.Transcribe(ctx, clip)
	if err != nil {
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = TranscribeMessage
		}
		logger().Warnw("transcription failed", "err", err)
		return "", &TranscriptionError{Message: msg, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Speak toggles read-aloud for message id. Calling it again with the id that
// is playing stops playback and returns false. Any other playback is
// interrupted first. It returns whether playback started; synthesis failures
// are logged and leave nothing marked as speaking.
func (c *Controller) Speak(id, text string) bool {
	if c.engine == nil {
		return false
	}

	c.mu.Lock()
	if c.speakID != "" && c.speakID == id {
		c.speakID = ""
		c.speakGen++
		c.mu.Unlock()
		c.engine.Stop()
		return false
	}
	c.speakID = ""
	c.speakGen++
	c.mu.Unlock()

	c.engine.Stop()

	c.mu.Lock()
	c.speakID = id
	c.speakGen++
	gen := c.speakGen
	c.mu.Unlock()

	finish := func() { c.finishSpeaking(gen) }
	err := c.engine.Speak(CleanForSpeech(text), device.SpeakOptions{Language: c.language, Rate: c.rate}, device.Callbacks{
		OnDone:    finish,
		OnStopped: finish,
		OnError: func(err error) {
			logger().Infow("speech playback failed", "id", id, "err", err)
			finish()
		},
	})
	if err != nil {
		logger().Infow("speech playback not started", "id", id, "err", err)
		finish()
		return false
	}
	return true
}

// StopSpeaking interrupts playback and clears the marker.
func (c *Controller) StopSpeaking() {
	if c.engine == nil {
		return
	}
	c.mu.Lock()
	c.speakID = ""
	c.speakGen++
	c.mu.Unlock()
	c.engine.Stop()
}

// finishSpeaking clears the marker only for the playback that set it, so a
// late callback from an interrupted playback leaves the current one intact.
func (c *Controller) finishSpeaking(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speakGen == gen {
		c.speakID = ""
	}
}

// Close stops playback and discards any recording in progress.
func (c *Controller) Close(ctx context.Context) {
	c.StopSpeaking()
	if _, err := c.StopRecording(ctx, true); err != nil {
		logger().Infow("discard recording on close", "err", err)
	}
}
