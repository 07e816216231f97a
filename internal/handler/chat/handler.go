package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmease/farmease-ai/internal/middleware"
	"github.com/farmease/farmease-ai/internal/model/chat"
	chatservice "github.com/farmease/farmease-ai/internal/service/chat"
	"github.com/farmease/farmease-ai/internal/service/llm"
	"github.com/farmease/farmease-ai/pkg/utils"
)

// Replier answers chat requests.
type Replier interface {
	Reply(ctx context.Context, req chat.Request) (chat.Response, error)
}

// Handler serves POST /chat.
type Handler struct {
	chatSvc Replier
	limiter middleware.Limiter
}

// New creates the chat handler. limiter may be nil.
func New(chatSvc Replier, limiter middleware.Limiter) *Handler {
	return &Handler{chatSvc: chatSvc, limiter: limiter}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondDetail(w, r, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := chatservice.Validate(req); err != nil {
		utils.RespondDetail(w, r, http.StatusUnprocessableEntity, chatservice.Detail(err))
		return
	}

	if !middleware.Allow(h.limiter, w, r) {
		return
	}

	resp, err := h.chatSvc.Reply(r.Context(), req)
	if err != nil {
		var replyErr *chatservice.ReplyError
		if !errors.As(err, &replyErr) {
			replyErr = &chatservice.ReplyError{Message: llm.SanitizeError(err), Err: err}
		}
		utils.RespondDetail(w, r, http.StatusBadGateway, replyErr.Error())
		return
	}

	utils.RespondJSON(w, r, http.StatusOK, resp)
}
