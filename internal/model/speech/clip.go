package speech

import (
	"bytes"
	"io"
)

const (
	DefaultClipName = "recording.m4a"
	DefaultClipType = "audio/m4a"
)

// Clip is a finished recording ready for upload.
type Clip struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Reader returns a fresh reader over the clip bytes.
func (c Clip) Reader() io.Reader {
	return bytes.NewReader(c.Data)
}

// Empty reports whether the clip carries no audio.
func (c Clip) Empty() bool {
	return len(c.Data) == 0
}
