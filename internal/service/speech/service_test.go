package speech

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/farmease/farmease-ai/internal/model/speech"
)

func requireStatus(t *testing.T, err error, code int, detail string) {
	t.Helper()
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != code {
		t.Fatalf("expected status %d, got %d", code, statusErr.Code)
	}
	if detail != "" && statusErr.Detail != detail {
		t.Fatalf("expected detail %q, got %q", detail, statusErr.Detail)
	}
}

func whisperServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscribeMockMode(t *testing.T) {
	svc := NewService(Options{MockMode: true})

	text, err := svc.Transcribe(t.Context(), model.Clip{})

	require.NoError(t, err)
	assert.Equal(t, MockTranscription, text)
}

func TestTranscribeRejectsEmptyAndOversized(t *testing.T) {
	svc := NewService(Options{WhisperAPIKey: "key", MaxAudioBytes: 4})

	_, err := svc.Transcribe(t.Context(), model.Clip{})
	requireStatus(t, err, http.StatusUnprocessableEntity, "Empty audio file.")

	_, err = svc.Transcribe(t.Context(), model.Clip{Data: []byte("12345")})
	requireStatus(t, err, http.StatusRequestEntityTooLarge, "Audio file too large (max 25 MB).")
}

func TestTranscribeWithoutKey(t *testing.T) {
	svc := NewService(Options{})

	_, err := svc.Transcribe(t.Context(), model.Clip{Data: []byte("RIFF")})

	requireStatus(t, err, http.StatusServiceUnavailable, "")
}

func TestTranscribeCallsWhisper(t *testing.T) {
	var gotModel, gotName string
	srv := whisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		_, header, err := r.FormFile("file")
		if err == nil {
			gotName = header.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  how to grow wheat  "})
	})

	svc := NewService(Options{WhisperAPIKey: "key", WhisperBaseURL: srv.URL + "/v1"})

	text, err := svc.Transcribe(t.Context(), model.Clip{Data: []byte("RIFFdata")})

	require.NoError(t, err)
	assert.Equal(t, "how to grow wheat", text)
	assert.Equal(t, DefaultWhisperModel, gotModel)
	assert.Equal(t, DefaultUploadName, gotName)
}

func TestTranscribeUpstreamFailure(t *testing.T) {
	srv := whisperServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	svc := NewService(Options{WhisperAPIKey: "key", WhisperBaseURL: srv.URL + "/v1"})

	_, err := svc.Transcribe(t.Context(), model.Clip{Data: []byte("RIFFdata"), Filename: "clip.m4a"})

	requireStatus(t, err, http.StatusBadGateway, "Whisper transcription failed.")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Crop Guidance\nUse drip", CleanText("## **Crop Guidance**\nUse drip  "))
	assert.Equal(t, "Title", CleanText("# Title"))
	assert.Equal(t, "", CleanText(" ** "))
}

func TestSynthesizeRequiresKey(t *testing.T) {
	svc := NewService(Options{})

	_, err := svc.Synthesize(t.Context(), "hello")

	requireStatus(t, err, http.StatusServiceUnavailable, "HUGGINGFACE_API_KEY is not configured on the server.")
}

func TestSynthesizeEmptyAfterCleaning(t *testing.T) {
	svc := NewService(Options{HuggingFaceAPIKey: "hf", TTSURL: "http://127.0.0.1:1"})

	_, err := svc.Synthesize(t.Context(), "**")

	requireStatus(t, err, http.StatusUnprocessableEntity, "Text is empty after sanitization.")
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	var auth, inputs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		inputs = body["inputs"]
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	svc := NewService(Options{HuggingFaceAPIKey: "hf-key", TTSURL: srv.URL})

	audio, err := svc.Synthesize(t.Context(), "**Namaste!** Use compost")

	require.NoError(t, err)
	assert.Equal(t, "Bearer hf-key", auth)
	assert.Equal(t, "Namaste! Use compost", inputs)
	assert.Equal(t, MediaTypeMPEG, audio.MediaType)
	assert.Equal(t, []byte("ID3audio"), audio.Data)
}

func TestSynthesizeUpstreamStatuses(t *testing.T) {
	cases := []struct {
		upstream int
		code     int
		detail   string
	}{
		{http.StatusServiceUnavailable, http.StatusServiceUnavailable, "TTS model is loading, please retry in 20 seconds."},
		{http.StatusInternalServerError, http.StatusBadGateway, "HuggingFace returned 500. TTS unavailable."},
		{http.StatusUnauthorized, http.StatusBadGateway, "HuggingFace returned 401. TTS unavailable."},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.upstream)
		}))
		svc := NewService(Options{HuggingFaceAPIKey: "hf", TTSURL: srv.URL})

		_, err := svc.Synthesize(t.Context(), "hello")
		srv.Close()

		requireStatus(t, err, tc.code, tc.detail)
	}
}

func TestSynthesizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	svc := NewService(Options{HuggingFaceAPIKey: "hf", TTSURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := svc.Synthesize(t.Context(), "hello")

	requireStatus(t, err, http.StatusGatewayTimeout, "HuggingFace API timed out. Please try again.")
}

func TestSynthesizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewService(Options{HuggingFaceAPIKey: "hf", TTSURL: url})

	_, err := svc.Synthesize(t.Context(), "hello")

	requireStatus(t, err, http.StatusBadGateway, "Could not reach HuggingFace API.")
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, MediaTypeMPEG, mediaType("audio/MP3"))
	assert.Equal(t, MediaTypeWAV, mediaType("audio/flac"))
	assert.Equal(t, MediaTypeWAV, mediaType(""))
}
