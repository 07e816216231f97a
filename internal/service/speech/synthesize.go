package speech

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	model "github.com/farmease/farmease-ai/internal/model/speech"
)

// Media types returned by Synthesize.
const (
	MediaTypeMPEG = "audio/mpeg"
	MediaTypeWAV  = "audio/wav"
)

var markdownMarkers = strings.NewReplacer("**", "", "## ", "", "# ", "")

// CleanText removes markdown emphasis and heading markers.
func CleanText(text string) string {
	return strings.TrimSpace(markdownMarkers.Replace(text))
}

// Synthesize renders text as audio. Failures are *StatusError.
func (s *Service) Synthesize(ctx context.Context, text string) (model.Audio, error) {
	if !s.SynthesisEnabled() {
		return model.Audio{}, statusError(http.StatusServiceUnavailable, "HUGGINGFACE_API_KEY is not configured on the server.", nil)
	}

	clean := CleanText(text)
	if clean == "" {
		return model.Audio{}, statusError(http.StatusUnprocessableEntity, "Text is empty after sanitization.", nil)
	}

	res, err := s.tts.R().
		SetContext(ctx).
		SetAuthToken(s.hfKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"inputs": clean}).
		Post(s.ttsURL)
	if err != nil {
		if isTimeout(err) {
			return model.Audio{}, statusError(http.StatusGatewayTimeout, "HuggingFace API timed out. Please try again.", err)
		}
		logger().Errorw("tts request failed", "error", err)
		return model.Audio{}, statusError(http.StatusBadGateway, "Could not reach HuggingFace API.", err)
	}

	switch code := res.StatusCode(); {
	case code == http.StatusServiceUnavailable:
		return model.Audio{}, statusError(http.StatusServiceUnavailable, "TTS model is loading, please retry in 20 seconds.", nil)
	case code != http.StatusOK:
		logger().Warnw("tts upstream rejected request", "status", code, "body", truncate(res.String(), 200))
		return model.Audio{}, statusError(http.StatusBadGateway, fmt.Sprintf("HuggingFace returned %d. TTS unavailable.", code), nil)
	}

	audio := model.Audio{Data: res.Body(), MediaType: mediaType(res.Header().Get("Content-Type"))}
	logger().Infow("synthesized speech", "chars", len(clean), "bytes", len(audio.Data), "media", audio.MediaType)
	return audio, nil
}

func mediaType(upstream string) string {
	upstream = strings.ToLower(upstream)
	if strings.Contains(upstream, "mpeg") || strings.Contains(upstream, "mp3") {
		return MediaTypeMPEG
	}
	return MediaTypeWAV
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
