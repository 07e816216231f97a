package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/farmease/farmease-ai/internal/handler/chat"
	"github.com/farmease/farmease-ai/internal/handler/speech"
	"github.com/farmease/farmease-ai/internal/middleware"
	"github.com/farmease/farmease-ai/pkg/utils"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "FarmEase AI"

// Dependencies are the services the router exposes.
type Dependencies struct {
	Chat           chat.Replier
	Speech         speech.SpeechService
	Limiter        middleware.Limiter
	AllowedOrigins []string
	Welcome        string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(deps.AllowedOrigins))

	r.Get("/health", handleHealth)

	chat.New(deps.Chat, deps.Limiter).RegisterRoutes(r)

	if deps.Speech != nil {
		speech.New(deps.Speech, deps.Limiter).RegisterRoutes(r)
		speech.NewWebSocketHandler(deps.Speech, deps.Chat, deps.Limiter, deps.Welcome).RegisterWebSocketRoutes(r)
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
	})
}
