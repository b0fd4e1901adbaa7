package handlers

import (
	"net/http"
	"strconv"

	"github.com/floodwatch-ke/floodwatch/internal/api"
	"github.com/floodwatch-ke/floodwatch/internal/core"
	"github.com/floodwatch-ke/floodwatch/internal/services"
)

// SubscriptionHandler handles subscription endpoints. Subscribing is
// public; the aggregates feed the admin dashboard.
type SubscriptionHandler struct {
	subs *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subs *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

// SetupRoutes sets up subscription routes
func (h *SubscriptionHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/subscriptions", h.handleList)
	mux.HandleFunc("POST /api/subscriptions", h.handleCreate)
	mux.HandleFunc("GET /api/subscriptions/method-counts", h.handleMethodCounts)
	mux.HandleFunc("GET /api/subscriptions/location-counts", h.handleLocationCounts)
	mux.HandleFunc("GET /api/subscriptions/by-month", h.handleByMonth)
	mux.HandleFunc("PUT /api/subscriptions/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", h.handleDelete)
}

// handleList handles GET /api/subscriptions. One logical operation with
// two modes: with ?location= it filters to that location's subscribers;
// without it, it returns every subscription grouped per location.
func (h *SubscriptionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")

	if location != "" {
		subs, err := h.subs.FindByLocation(location)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		api.RespondJSON(w, http.StatusOK, subs)
		return
	}

	grouped, err := h.subs.GroupAllByLocation()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, grouped)
}

// handleCreate handles POST /api/subscriptions (public endpoint)
func (h *SubscriptionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in services.SubscriptionInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fieldErrors := api.Validate(in); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	sub, err := h.subs.Create(in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, sub)
}

// handleUpdate handles PUT /api/subscriptions/{id}
func (h *SubscriptionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var patch services.SubscriptionPatch
	if err := api.DecodeJSON(r, &patch); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.subs.Update(id, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, sub)
}

// handleDelete handles DELETE /api/subscriptions/{id}
func (h *SubscriptionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.subs.Delete(id); err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleMethodCounts handles GET /api/subscriptions/method-counts
func (h *SubscriptionHandler) handleMethodCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.subs.CountByMethod()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, counts)
}

// handleLocationCounts handles GET /api/subscriptions/location-counts
func (h *SubscriptionHandler) handleLocationCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.subs.CountByLocation()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, counts)
}

// handleByMonth handles GET /api/subscriptions/by-month?year=&month=
func (h *SubscriptionHandler) handleByMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respondServiceError(w, core.Validationf("year is required"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		respondServiceError(w, core.Validationf("month is required"))
		return
	}

	subs, err := h.subs.ListByMonth(year, month)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, subs)
}
