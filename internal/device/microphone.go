package device

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/farmease/farmease-ai/internal/model/speech"
)

// FileMicrophone stands in for native capture by replaying a recorded file.
// Permission is granted when the file exists.
type FileMicrophone struct {
	Path string
}

// RequestPermission implements Microphone.
func (m FileMicrophone) RequestPermission(_ context.Context) (bool, error) {
	if m.Path == "" {
		return false, nil
	}
	info, err := os.Stat(m.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat audio source: %w", err)
	case info.IsDir():
		return false, nil
	}
	return true, nil
}

// Open implements Microphone.
func (m FileMicrophone) Open(_ context.Context) (Recording, error) {
	if m.Path == "" {
		return nil, ErrUnsupported
	}
	logger().Debugw("recording started", "source", m.Path)
	return &fileRecording{path: m.Path, started: time.Now()}, nil
}

type fileRecording struct {
	mu      sync.Mutex
	path    string
	started time.Time
	stopped bool
}

func (r *fileRecording) Stop(_ context.Context) (speech.Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return speech.Clip{}, ErrRecordingStopped
	}
	r.stopped = true

	data, err := os.ReadFile(r.path)
	if err != nil {
		return speech.Clip{}, fmt.Errorf("read audio source: %w", err)
	}
	logger().Debugw("recording stopped", "source", r.path, "bytes", len(data), "elapsed", time.Since(r.started))
	return speech.Clip{
		Data:        data,
		Filename:    filepath.Base(r.path),
		ContentType: contentTypeFor(r.path),
	}, nil
}

// NoMicrophone is used when the host cannot capture audio. Every permission
// request is denied.
type NoMicrophone struct{}

// RequestPermission implements Microphone.
func (NoMicrophone) RequestPermission(context.Context) (bool, error) {
	return false, nil
}

// Open implements Microphone.
func (NoMicrophone) Open(context.Context) (Recording, error) {
	return nil, ErrUnsupported
}

func contentTypeFor(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "wav":
		return "audio/wav"
	case "mp3":
		return "audio/mpeg"
	case "webm":
		return "audio/webm"
	case "ogg", "opus":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	default:
		return speech.DefaultClipType
	}
}
