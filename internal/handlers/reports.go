package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/floodwatch-ke/floodwatch/internal/api"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"gorm.io/gorm"
)

// ReportHandler handles community report endpoints. Submitting a report
// is public; deleting one is admin-only.
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// SetupRoutes sets up report routes
func (h *ReportHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/reports", h.handleList)
	mux.HandleFunc("POST /api/reports", h.handleCreate)
	mux.HandleFunc("GET /api/reports/{id}", h.handleGet)
	mux.HandleFunc("DELETE /api/reports/{id}", h.handleDelete)
}

// ReportInput is the community report submission body.
type ReportInput struct {
	ReporterName string `json:"reporter_name"`
	Contact      string `json:"contact"`
	Location     string `json:"location" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Severity     string `json:"severity"`
}

// handleList handles GET /api/reports with an optional location filter
func (h *ReportHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := h.db.Order("created_at DESC")
	if location := r.URL.Query().Get("location"); location != "" {
		query = query.Where("location = ?", location)
	}

	var reports []database.CommunityReport
	if err := query.Find(&reports).Error; err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to get reports")
		return
	}
	api.RespondJSON(w, http.StatusOK, reports)
}

// handleCreate handles POST /api/reports
func (h *ReportHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in ReportInput
	if err := api.DecodeJSON(r, &in); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fieldErrors := api.Validate(in); fieldErrors != nil {
		api.RespondValidationError(w, fieldErrors)
		return
	}

	report := database.CommunityReport{
		ReporterName: in.ReporterName,
		Contact:      in.Contact,
		Location:     strings.TrimSpace(in.Location),
		Description:  in.Description,
		Severity:     in.Severity,
	}
	if err := h.db.Create(&report).Error; err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to create report")
		return
	}
	api.RespondJSON(w, http.StatusCreated, report)
}

// handleGet handles GET /api/reports/{id}
func (h *ReportHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var report database.CommunityReport
	if err := h.db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Report not found")
			return
		}
		api.RespondError(w, http.StatusInternalServerError, "Failed to get report")
		return
	}
	api.RespondJSON(w, http.StatusOK, report)
}

// handleDelete handles DELETE /api/reports/{id}
func (h *ReportHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result := h.db.Delete(&database.CommunityReport{}, id)
	if result.Error != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}
	if result.RowsAffected == 0 {
		api.RespondError(w, http.StatusNotFound, "Report not found")
		return
	}
	api.RespondNoContent(w)
}
