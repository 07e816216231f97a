package utils

import (
	"net/http"

	"github.com/go-chi/render"
)

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

// RespondDetail writes the {"detail": ...} error body used by every endpoint.
func RespondDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	RespondJSON(w, r, status, map[string]string{"detail": detail})
}

// DecodeJSON reads a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	return render.DecodeJSON(r.Body, v)
}
