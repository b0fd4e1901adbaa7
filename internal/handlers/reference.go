package handlers

import (
	"errors"
	"net/http"

	"github.com/floodwatch-ke/floodwatch/internal/api"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"gorm.io/gorm"
)

// ReferenceHandler serves the reference datasets behind the dashboard:
// demographics, health facilities, infrastructure and historical flood
// records. Reads are public; mutations sit behind the auth middleware.
// PUT replaces the full record rather than patching fields.
type ReferenceHandler struct {
	db *gorm.DB
}

// NewReferenceHandler creates a new reference data handler
func NewReferenceHandler(db *gorm.DB) *ReferenceHandler {
	return &ReferenceHandler{db: db}
}

// SetupRoutes sets up reference data routes
func (h *ReferenceHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/demographics", h.listDemographics)
	mux.HandleFunc("POST /api/demographics", h.createDemographic)
	mux.HandleFunc("GET /api/demographics/{id}", h.getDemographic)
	mux.HandleFunc("PUT /api/demographics/{id}", h.updateDemographic)
	mux.HandleFunc("DELETE /api/demographics/{id}", h.deleteDemographic)

	mux.HandleFunc("GET /api/health-facilities", h.listHealthFacilities)
	mux.HandleFunc("POST /api/health-facilities", h.createHealthFacility)
	mux.HandleFunc("GET /api/health-facilities/{id}", h.getHealthFacility)
	mux.HandleFunc("PUT /api/health-facilities/{id}", h.updateHealthFacility)
	mux.HandleFunc("DELETE /api/health-facilities/{id}", h.deleteHealthFacility)

	mux.HandleFunc("GET /api/infrastructure", h.listInfrastructure)
	mux.HandleFunc("POST /api/infrastructure", h.createInfrastructure)
	mux.HandleFunc("GET /api/infrastructure/{id}", h.getInfrastructure)
	mux.HandleFunc("PUT /api/infrastructure/{id}", h.updateInfrastructure)
	mux.HandleFunc("DELETE /api/infrastructure/{id}", h.deleteInfrastructure)

	mux.HandleFunc("GET /api/flood-records", h.listFloodRecords)
	mux.HandleFunc("POST /api/flood-records", h.createFloodRecord)
	mux.HandleFunc("GET /api/flood-records/{id}", h.getFloodRecord)
	mux.HandleFunc("PUT /api/flood-records/{id}", h.updateFloodRecord)
	mux.HandleFunc("DELETE /api/flood-records/{id}", h.deleteFloodRecord)
}

// list/get/create/update/delete share the same shape for every dataset;
// only the model differs. location filters apply to listings.

func (h *ReferenceHandler) list(w http.ResponseWriter, r *http.Request, dest interface{}) {
	query := h.db.Order("id ASC")
	if location := r.URL.Query().Get("location"); location != "" {
		query = query.Where("location = ?", location)
	}
	if err := query.Find(dest).Error; err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to list records")
		return
	}
	api.RespondJSON(w, http.StatusOK, dest)
}

func (h *ReferenceHandler) get(w http.ResponseWriter, r *http.Request, dest interface{}) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.db.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Record not found")
			return
		}
		api.RespondError(w, http.StatusInternalServerError, "Failed to get record")
		return
	}
	api.RespondJSON(w, http.StatusOK, dest)
}

func (h *ReferenceHandler) create(w http.ResponseWriter, r *http.Request, record interface{}) {
	if err := api.DecodeJSON(r, record); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.db.Create(record).Error; err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to create record")
		return
	}
	api.RespondJSON(w, http.StatusCreated, record)
}

func (h *ReferenceHandler) update(w http.ResponseWriter, r *http.Request, existing, incoming interface{}, apply func()) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.db.First(existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Record not found")
			return
		}
		api.RespondError(w, http.StatusInternalServerError, "Failed to get record")
		return
	}
	if err := api.DecodeJSON(r, incoming); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	apply()
	if err := h.db.Save(existing).Error; err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}
	api.RespondJSON(w, http.StatusOK, existing)
}

func (h *ReferenceHandler) delete(w http.ResponseWriter, r *http.Request, model interface{}) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}
	result := h.db.Delete(model, id)
	if result.Error != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to delete record")
		return
	}
	if result.RowsAffected == 0 {
		api.RespondError(w, http.StatusNotFound, "Record not found")
		return
	}
	api.RespondNoContent(w)
}

// ---- demographics ----

func (h *ReferenceHandler) listDemographics(w http.ResponseWriter, r *http.Request) {
	var records []database.Demographic
	h.list(w, r, &records)
}

func (h *ReferenceHandler) getDemographic(w http.ResponseWriter, r *http.Request) {
	var record database.Demographic
	h.get(w, r, &record)
}

func (h *ReferenceHandler) createDemographic(w http.ResponseWriter, r *http.Request) {
	var record database.Demographic
	h.create(w, r, &record)
}

func (h *ReferenceHandler) updateDemographic(w http.ResponseWriter, r *http.Request) {
	var existing, incoming database.Demographic
	h.update(w, r, &existing, &incoming, func() {
		incoming.ID = existing.ID
		incoming.CreatedAt = existing.CreatedAt
		existing = incoming
	})
}

func (h *ReferenceHandler) deleteDemographic(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, &database.Demographic{})
}

// ---- health facilities ----

func (h *ReferenceHandler) listHealthFacilities(w http.ResponseWriter, r *http.Request) {
	var records []database.HealthFacility
	h.list(w, r, &records)
}

func (h *ReferenceHandler) getHealthFacility(w http.ResponseWriter, r *http.Request) {
	var record database.HealthFacility
	h.get(w, r, &record)
}

func (h *ReferenceHandler) createHealthFacility(w http.ResponseWriter, r *http.Request) {
	var record database.HealthFacility
	h.create(w, r, &record)
}

func (h *ReferenceHandler) updateHealthFacility(w http.ResponseWriter, r *http.Request) {
	var existing, incoming database.HealthFacility
	h.update(w, r, &existing, &incoming, func() {
		incoming.ID = existing.ID
		incoming.CreatedAt = existing.CreatedAt
		existing = incoming
	})
}

func (h *ReferenceHandler) deleteHealthFacility(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, &database.HealthFacility{})
}

// ---- infrastructure ----

func (h *ReferenceHandler) listInfrastructure(w http.ResponseWriter, r *http.Request) {
	var records []database.Infrastructure
	h.list(w, r, &records)
}

func (h *ReferenceHandler) getInfrastructure(w http.ResponseWriter, r *http.Request) {
	var record database.Infrastructure
	h.get(w, r, &record)
}

func (h *ReferenceHandler) createInfrastructure(w http.ResponseWriter, r *http.Request) {
	var record database.Infrastructure
	h.create(w, r, &record)
}

func (h *ReferenceHandler) updateInfrastructure(w http.ResponseWriter, r *http.Request) {
	var existing, incoming database.Infrastructure
	h.update(w, r, &existing, &incoming, func() {
		incoming.ID = existing.ID
		incoming.CreatedAt = existing.CreatedAt
		existing = incoming
	})
}

func (h *ReferenceHandler) deleteInfrastructure(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, &database.Infrastructure{})
}

// ---- flood records ----

func (h *ReferenceHandler) listFloodRecords(w http.ResponseWriter, r *http.Request) {
	var records []database.FloodRecord
	h.list(w, r, &records)
}

func (h *ReferenceHandler) getFloodRecord(w http.ResponseWriter, r *http.Request) {
	var record database.FloodRecord
	h.get(w, r, &record)
}

func (h *ReferenceHandler) createFloodRecord(w http.ResponseWriter, r *http.Request) {
	var record database.FloodRecord
	h.create(w, r, &record)
}

func (h *ReferenceHandler) updateFloodRecord(w http.ResponseWriter, r *http.Request) {
	var existing, incoming database.FloodRecord
	h.update(w, r, &existing, &incoming, func() {
		incoming.ID = existing.ID
		incoming.CreatedAt = existing.CreatedAt
		existing = incoming
	})
}

func (h *ReferenceHandler) deleteFloodRecord(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, &database.FloodRecord{})
}
