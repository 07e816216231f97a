package voice

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	ErrNoSpeech         = errors.New("no speech detected")
	ErrRecordingAborted = errors.New("recording aborted before it started")
)

// User-facing titles and messages for pipeline failures.
const (
	PermissionTitle   = "Permission Required"
	PermissionMessage = "Please allow microphone access to use voice input."
	StartMessage      = "Could not start recording. Please try again."
	NoSpeechTitle     = "No Speech Detected"
	NoSpeechMessage   = "Could not understand the audio. Please try again."
	TranscribeTitle   = "Voice Input"
	TranscribeMessage = "Voice transcription failed. Please type your message."
)

// RecordingError wraps a device failure while starting or stopping a
// recording.
type RecordingError struct {
	Op  string
	Err error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("%s recording: %v", e.Op, e.Err)
}

func (e *RecordingError) Unwrap() error {
	return e.Err
}

// TranscriptionError is a failed transcription. Message is safe to show.
type TranscriptionError struct {
	Message string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Alert maps a pipeline error to the title and message shown to the user.
func Alert(err error) (title, message string) {
	var tErr *TranscriptionError
	var rErr *RecordingError
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, ErrPermissionDenied):
		return PermissionTitle, PermissionMessage
	case errors.Is(err, ErrNoSpeech):
		return NoSpeechTitle, NoSpeechMessage
	case errors.As(err, &tErr):
		return TranscribeTitle, tErr.Message
	case errors.As(err, &rErr) && rErr.Op == "start":
		return "Error", StartMessage
	default:
		return "Error", err.Error()
	}
}
