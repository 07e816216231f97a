package speech

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	model "github.com/farmease/farmease-ai/internal/model/speech"
	"github.com/farmease/farmease-ai/internal/service/llm"
)

// Server-side upload defaults.
const (
	DefaultUploadName = "audio.wav"
	DefaultUploadType = "audio/wav"
)

// Transcribe converts clip to text. Failures are *StatusError.
func (s *Service) Transcribe(ctx context.Context, clip model.Clip) (string, error) {
	if s.mockMode {
		return MockTranscription, nil
	}
	if clip.Empty() {
		return "", statusError(http.StatusUnprocessableEntity, "Empty audio file.", nil)
	}
	if int64(len(clip.Data)) > s.maxAudio {
		return "", statusError(http.StatusRequestEntityTooLarge, "Audio file too large (max 25 MB).", nil)
	}
	if s.whisper == nil {
		return "", statusError(http.StatusServiceUnavailable, "Transcription is not configured on the server.", nil)
	}

	name := clip.Filename
	if name == "" {
		name = DefaultUploadName
	}

	resp, err := s.whisper.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.whisperModel,
		FilePath: name,
		Reader:   clip.Reader(),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		logger().Errorw("whisper transcription failed", "file", name, "size", len(clip.Data), "error", err)
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
			return "", statusError(http.StatusBadGateway, "Whisper transcription failed.", err)
		}
		return "", statusError(http.StatusBadGateway, "Transcription error: "+llm.SanitizeError(err), err)
	}

	text := strings.TrimSpace(resp.Text)
	logger().Infow("transcribed clip", "file", name, "size", len(clip.Data), "chars", len(text))
	return text, nil
}
