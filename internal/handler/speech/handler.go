package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/farmease/farmease-ai/internal/middleware"
	"github.com/farmease/farmease-ai/internal/model/speech"
	speechsvc "github.com/farmease/farmease-ai/internal/service/speech"
	"github.com/farmease/farmease-ai/pkg/utils"
)

// MaxSpeakLength caps the text accepted by POST /speak.
const MaxSpeakLength = 3000

const multipartMemory = 32 << 20

// SpeechService abstracts transcription and synthesis for the handlers.
type SpeechService interface {
	Transcribe(ctx context.Context, clip speech.Clip) (string, error)
	Synthesize(ctx context.Context, text string) (speech.Audio, error)
	MockMode() bool
	SynthesisEnabled() bool
	MaxAudioBytes() int64
}

// Handler serves /transcribe and /speak.
type Handler struct {
	speechSvc SpeechService
	limiter   middleware.Limiter
}

// New creates the speech handler. limiter may be nil.
func New(speechSvc SpeechService, limiter middleware.Limiter) *Handler {
	return &Handler{speechSvc: speechSvc, limiter: limiter}
}

// RegisterRoutes mounts the speech routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.handleTranscribe)
	r.Post("/speak", h.handleSpeak)
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.speechSvc.MaxAudioBytes()+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondDetail(w, r, http.StatusRequestEntityTooLarge, "Audio file too large (max 25 MB).")
			return
		}
		utils.RespondDetail(w, r, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondDetail(w, r, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	if !h.speechSvc.MockMode() && !middleware.Allow(h.limiter, w, r) {
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondDetail(w, r, http.StatusBadRequest, "could not read audio file")
		return
	}

	clip := speech.Clip{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	if clip.Filename == "" {
		clip.Filename = speechsvc.DefaultUploadName
	}
	if clip.ContentType == "" {
		clip.ContentType = speechsvc.DefaultUploadType
	}

	text, err := h.speechSvc.Transcribe(r.Context(), clip)
	if err != nil {
		h.respondSpeechError(w, r, err, "Transcription failed.")
		return
	}

	utils.RespondJSON(w, r, http.StatusOK, speech.TranscribeResponse{Text: text})
}

func (h *Handler) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speech.SpeakRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondDetail(w, r, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if n := utf8.RuneCountInString(req.Text); n == 0 || n > MaxSpeakLength {
		utils.RespondDetail(w, r, http.StatusUnprocessableEntity, "text must be 1 to 3000 characters")
		return
	}
	if req.Language == "" {
		req.Language = speech.DefaultLanguage
	}

	if !h.speechSvc.SynthesisEnabled() {
		utils.RespondDetail(w, r, http.StatusServiceUnavailable, "HUGGINGFACE_API_KEY is not configured on the server.")
		return
	}
	if !middleware.Allow(h.limiter, w, r) {
		return
	}

	audio, err := h.speechSvc.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.respondSpeechError(w, r, err, "TTS unavailable.")
		return
	}

	w.Header().Set("Content-Type", audio.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.Header().Set("Content-Disposition", "inline; filename=speech.wav")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio.Data); err != nil {
		logger().Warnw("write audio response failed", "error", err)
	}
}

func (h *Handler) respondSpeechError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var statusErr *speechsvc.StatusError
	if errors.As(err, &statusErr) {
		utils.RespondDetail(w, r, statusErr.Code, statusErr.Detail)
		return
	}
	logger().Errorw("speech request failed", "path", r.URL.Path, "error", err)
	utils.RespondDetail(w, r, http.StatusBadGateway, fallback)
}
