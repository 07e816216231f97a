package device

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Speak(ctx context.Context, text, language string) ([]byte, error)
}

// AudioSink plays or stores synthesized audio. It should return when
// playback finishes or ctx is cancelled.
type AudioSink func(ctx context.Context, audio []byte) error

// RemoteEngine speaks by synthesizing audio through a Synthesizer and handing
// it to a sink.
type RemoteEngine struct {
	synth  Synthesizer
	sink   AudioSink
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRemoteEngine builds a RemoteEngine.
func NewRemoteEngine(synth Synthesizer, sink AudioSink) *RemoteEngine {
	return &RemoteEngine{synth: synth, sink: sink}
}

// Speak implements SpeechEngine.
func (e *RemoteEngine) Speak(text string, opts SpeakOptions, cb Callbacks) error {
	if strings.TrimSpace(text) == "" {
		return ErrNothingToSay
	}
	e.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	go func() {
		defer cancel()

		audio, err := e.synth.Speak(ctx, text, opts.Language)
		if ctx.Err() != nil {
			cb.stopped()
			return
		}
		if err != nil {
			cb.failed(fmt.Errorf("synthesize: %w", err))
			return
		}
		if err := e.sink(ctx, audio); err != nil {
			if ctx.Err() != nil {
				cb.stopped()
				return
			}
			cb.failed(fmt.Errorf("play audio: %w", err))
			return
		}
		if ctx.Err() != nil {
			cb.stopped()
			return
		}
		cb.done()
	}()
	return nil
}

// Stop implements SpeechEngine.
func (e *RemoteEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// FileSink writes each clip into dir and, when player is set, plays it with
// that command (for example "afplay" or "aplay").
func FileSink(dir, player string) AudioSink {
	return func(ctx context.Context, audio []byte) error {
		if dir == "" {
			dir = os.TempDir()
		}
		path := filepath.Join(dir, fmt.Sprintf("farmease-speech-%d.wav", time.Now().UnixNano()))
		if err := os.WriteFile(path, audio, 0o600); err != nil {
			return err
		}
		logger().Infow("speech audio saved", "path", path, "bytes", len(audio))
		if player == "" {
			return nil
		}
		return exec.CommandContext(ctx, player, path).Run()
	}
}
