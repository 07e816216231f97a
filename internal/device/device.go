// Package device abstracts the audio capabilities of the host the assistant
// runs on: capturing a voice clip and reading text aloud.
package device

import (
	"context"
	"errors"

	"github.com/farmease/farmease-ai/internal/model/speech"
)

var (
	ErrUnsupported      = errors.New("capability not available on this device")
	ErrRecordingStopped = errors.New("recording already stopped")
	ErrNothingToSay     = errors.New("nothing to say")
)

// Microphone captures voice clips.
type Microphone interface {
	// RequestPermission asks for capture access. A denial is (false, nil).
	RequestPermission(ctx context.Context) (bool, error)
	// Open starts a new recording.
	Open(ctx context.Context) (Recording, error)
}

// Recording is an in-progress capture. Stop releases the device handle and
// returns what was captured.
type Recording interface {
	Stop(ctx context.Context) (speech.Clip, error)
}

// SpeakOptions tunes playback.
type SpeakOptions struct {
	Language string
	Rate     float64
}

// Callbacks report how a playback ended. Exactly one of them fires.
type Callbacks struct {
	OnDone    func()
	OnStopped func()
	OnError   func(error)
}

func (c Callbacks) done() {
	if c.OnDone != nil {
		c.OnDone()
	}
}

func (c Callbacks) stopped() {
	if c.OnStopped != nil {
		c.OnStopped()
	}
}

func (c Callbacks) failed(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// SpeechEngine reads text aloud asynchronously.
type SpeechEngine interface {
	// Speak starts playback and returns immediately.
	Speak(text string, opts SpeakOptions, cb Callbacks) error
	// Stop interrupts the current playback, if any.
	Stop()
}

// Capabilities is the set of device features chosen at startup.
type Capabilities struct {
	Microphone Microphone
	Speech     SpeechEngine
}
