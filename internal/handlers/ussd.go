package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/floodwatch-ke/floodwatch/internal/ussd"
)

// USSDHandler handles the aggregator gateway callback. The gateway
// POSTs form-encoded session data and expects a plain-text CON/END
// response.
type USSDHandler struct {
	menu *ussd.Menu
}

// NewUSSDHandler creates a new USSD handler
func NewUSSDHandler(menu *ussd.Menu) *USSDHandler {
	return &USSDHandler{menu: menu}
}

// SetupRoutes sets up the USSD route
func (h *USSDHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ussd", h.handleCallback)
}

// handleCallback handles POST /ussd
func (h *USSDHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	sessionID := r.PostFormValue("sessionId")
	phone := r.PostFormValue("phoneNumber")
	text := r.PostFormValue("text")

	if sessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	response := h.menu.Handle(sessionID, phone, text)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := fmt.Fprint(w, response); err != nil {
		log.Printf("USSDHandler: failed to write response: %v", err)
	}
}
