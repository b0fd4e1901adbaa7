package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/floodwatch-ke/floodwatch/internal/api"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/services"
)

// AlertHandler handles alert lifecycle and dispatch endpoints
type AlertHandler struct {
	alerts         *services.AlertService
	dispatch       *services.DispatchService
	hub            *Hub
	notifyOnCreate bool
}

// NewAlertHandler creates a new alert handler. hub may be nil when the
// live feed is disabled.
func NewAlertHandler(alerts *services.AlertService, dispatch *services.DispatchService, hub *Hub, notifyOnCreate bool) *AlertHandler {
	return &AlertHandler{
		alerts:         alerts,
		dispatch:       dispatch,
		hub:            hub,
		notifyOnCreate: notifyOnCreate,
	}
}

// SetupRoutes sets up alert routes
func (h *AlertHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/alerts", h.handleList)
	mux.HandleFunc("POST /api/alerts", h.handleCreate)
	mux.HandleFunc("GET /api/alerts/locations", h.handleLocations)
	mux.HandleFunc("GET /api/alerts/{id}", h.handleGet)
	mux.HandleFunc("PUT /api/alerts/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/alerts/{id}", h.handleDelete)
	mux.HandleFunc("PATCH /api/alerts/{id}/archive", h.handleArchive)
	mux.HandleFunc("PUT /api/alerts/{id}/archive", h.handleArchive)
	mux.HandleFunc("PATCH /api/alerts/{id}/unarchive", h.handleUnarchive)
	mux.HandleFunc("PUT /api/alerts/{id}/unarchive", h.handleUnarchive)
	mux.HandleFunc("POST /api/alerts/{id}/send", h.handleSend)
	mux.HandleFunc("GET /api/logs", h.handleLogs)
}

// handleList handles GET /api/alerts. Archived alerts are hidden unless
// includeArchived=true; location narrows by exact match.
func (h *AlertHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := services.ListAlertsFilter{
		IncludeArchived: r.URL.Query().Get("includeArchived") == "true",
		Location:        r.URL.Query().Get("location"),
	}

	alerts, err := h.alerts.List(filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, alerts)
}

// handleCreate handles POST /api/alerts
func (h *AlertHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in services.AlertInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fieldErrors := api.Validate(in); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	alert, err := h.alerts.Create(in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.publish(alert)

	if h.notifyOnCreate {
		// Detached context: the broadcast outlives this request.
		go func() {
			if _, err := h.dispatch.Broadcast(context.Background(), alert); err != nil {
				log.Printf("AlertHandler: broadcast after create failed: %v", err)
			}
		}()
	}

	api.RespondJSON(w, http.StatusCreated, alert)
}

// handleGet handles GET /api/alerts/{id}
func (h *AlertHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	alert, err := h.alerts.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, alert)
}

// handleUpdate handles PUT /api/alerts/{id}
func (h *AlertHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var patch services.AlertPatch
	if err := api.DecodeJSON(r, &patch); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	alert, err := h.alerts.Update(id, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.publish(alert)
	api.RespondJSON(w, http.StatusOK, alert)
}

// handleDelete handles DELETE /api/alerts/{id}
func (h *AlertHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.alerts.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondNoContent(w)
}

// handleArchive handles PATCH|PUT /api/alerts/{id}/archive
func (h *AlertHandler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	alert, err := h.alerts.Archive(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.publish(alert)
	api.RespondJSON(w, http.StatusOK, alert)
}

// handleUnarchive handles PATCH|PUT /api/alerts/{id}/unarchive
func (h *AlertHandler) handleUnarchive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	alert, err := h.alerts.Unarchive(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.publish(alert)
	api.RespondJSON(w, http.StatusOK, alert)
}

// handleLocations handles GET /api/alerts/locations
func (h *AlertHandler) handleLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.alerts.ListLocations()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, locations)
}

// SendRequest asks for a manual dispatch of an alert. With no contact,
// the alert is broadcast to every subscriber of its location.
type SendRequest struct {
	Method  database.SubscriptionMethod `json:"method"`
	Contact string                      `json:"contact"`
}

// handleSend handles POST /api/alerts/{id}/send
func (h *AlertHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	alert, err := h.alerts.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req SendRequest
	if r.ContentLength > 0 {
		if err := api.DecodeJSON(r, &req); err != nil {
			api.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if req.Contact != "" {
		ok, err := h.dispatch.SendTo(r.Context(), alert, req.Method, req.Contact)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		api.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"contact":   req.Contact,
			"delivered": ok,
		})
		return
	}

	report, err := h.dispatch.Broadcast(r.Context(), alert)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, report)
}

// handleLogs handles GET /api/logs - the delivery audit trail
func (h *AlertHandler) handleLogs(w http.ResponseWriter, r *http.Request) {
	params := api.ParsePagination(r)

	logs, total, err := h.dispatch.ListLogs(params.Offset(), params.PerPage)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, api.PaginatedResponse{
		Data: logs,
		Pagination: api.PaginationMeta{
			Page:       params.Page,
			PerPage:    params.PerPage,
			Total:      total,
			TotalPages: params.TotalPages(total),
		},
	})
}

func (h *AlertHandler) publish(alert *database.Alert) {
	if h.hub != nil {
		h.hub.BroadcastAlert(alert)
	}
}
