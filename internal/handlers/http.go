package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/floodwatch-ke/floodwatch/internal/api"
	"github.com/floodwatch-ke/floodwatch/internal/core"
)

// HTTPHandler handles the unauthenticated service endpoints
type HTTPHandler struct{}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler() *HTTPHandler {
	return &HTTPHandler{}
}

// SetupRoutes configures the service routes
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
}

// handleHealth returns a simple health check response
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": "1.0.0",
	})
}

// respondServiceError maps the service error taxonomy onto HTTP status
// codes: unknown id → 404, bad input or invalid lifecycle transition →
// 400, anything else → 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.RespondError(w, http.StatusNotFound, err.Error())
	case core.IsValidation(err), core.IsInvalidState(err):
		api.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		api.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseID parses a numeric path value.
func parseID(r *http.Request, name string) (uint, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, core.Validationf("invalid id %q", raw)
	}
	return uint(id), nil
}
