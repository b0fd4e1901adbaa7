package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/floodwatch-ke/floodwatch/internal/core"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"gorm.io/gorm"
)

// AlertService owns alert state transitions and field validation.
type AlertService struct {
	db *gorm.DB
}

// NewAlertService creates a new AlertService
func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: db}
}

// AlertInput carries the fields accepted when creating an alert.
// A submitted Status is accepted and discarded: new alerts always
// start active regardless of what the caller sends.
type AlertInput struct {
	Status database.AlertStatus `json:"status"`

	AlertType             string              `json:"alert_type" validate:"required"`
	Severity              string              `json:"severity" validate:"required"`
	Location              string              `json:"location" validate:"required"`
	Description           string              `json:"description" validate:"required"`
	WaterLevels           database.JSONB      `json:"water_levels"`
	EvacuationRoutes      database.StringList `json:"evacuation_routes"`
	EmergencyContacts     database.StringList `json:"emergency_contacts"`
	PrecautionaryMeasures database.StringList `json:"precautionary_measures"`
	WeatherForecast       database.JSONB      `json:"weather_forecast"`
}

// AlertPatch lists every mutable alert field. Pointer fields left nil
// retain their stored value; list and map fields are replaced wholesale.
type AlertPatch struct {
	AlertType             *string               `json:"alert_type"`
	Severity              *string               `json:"severity"`
	Location              *string               `json:"location"`
	Description           *string               `json:"description"`
	WaterLevels           *database.JSONB       `json:"water_levels"`
	EvacuationRoutes      *database.StringList  `json:"evacuation_routes"`
	EmergencyContacts     *database.StringList  `json:"emergency_contacts"`
	PrecautionaryMeasures *database.StringList  `json:"precautionary_measures"`
	WeatherForecast       *database.JSONB       `json:"weather_forecast"`
	Status                *database.AlertStatus `json:"status"`
}

// ListAlertsFilter narrows the alert listing.
type ListAlertsFilter struct {
	IncludeArchived bool
	Location        string
}

// Create persists a new alert with status forced to active.
func (s *AlertService) Create(in AlertInput) (*database.Alert, error) {
	if strings.TrimSpace(in.AlertType) == "" {
		return nil, core.Validationf("alert_type is required")
	}
	if strings.TrimSpace(in.Severity) == "" {
		return nil, core.Validationf("severity is required")
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, core.Validationf("location is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, core.Validationf("description is required")
	}

	alert := &database.Alert{
		AlertType:             in.AlertType,
		Severity:              in.Severity,
		Location:              in.Location,
		Description:           in.Description,
		WaterLevels:           in.WaterLevels,
		EvacuationRoutes:      in.EvacuationRoutes,
		EmergencyContacts:     in.EmergencyContacts,
		PrecautionaryMeasures: in.PrecautionaryMeasures,
		WeatherForecast:       in.WeatherForecast,
		Status:                database.AlertStatusActive,
	}
	if err := s.db.Create(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// Get returns a single alert by id.
func (s *AlertService) Get(id uint) (*database.Alert, error) {
	var alert database.Alert
	if err := s.db.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// Update applies a partial patch. Status changes through here are
// unrestricted; the archive/unarchive guards only apply to the
// dedicated operations.
func (s *AlertService) Update(id uint, patch AlertPatch) (*database.Alert, error) {
	alert, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.AlertType != nil {
		alert.AlertType = *patch.AlertType
	}
	if patch.Severity != nil {
		alert.Severity = *patch.Severity
	}
	if patch.Location != nil {
		loc := strings.TrimSpace(*patch.Location)
		if loc == "" {
			return nil, core.Validationf("location cannot be empty")
		}
		alert.Location = loc
	}
	if patch.Description != nil {
		alert.Description = *patch.Description
	}
	if patch.WaterLevels != nil {
		alert.WaterLevels = *patch.WaterLevels
	}
	if patch.EvacuationRoutes != nil {
		alert.EvacuationRoutes = *patch.EvacuationRoutes
	}
	if patch.EmergencyContacts != nil {
		alert.EmergencyContacts = *patch.EmergencyContacts
	}
	if patch.PrecautionaryMeasures != nil {
		alert.PrecautionaryMeasures = *patch.PrecautionaryMeasures
	}
	if patch.WeatherForecast != nil {
		alert.WeatherForecast = *patch.WeatherForecast
	}
	if patch.Status != nil {
		if !database.ValidAlertStatus(*patch.Status) {
			return nil, core.Validationf("status must be one of: active, resolved, archived")
		}
		alert.Status = *patch.Status
	}

	if err := s.db.Save(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// Archive moves an alert to archived from any current status.
func (s *AlertService) Archive(id uint) (*database.Alert, error) {
	alert, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	alert.Status = database.AlertStatusArchived
	if err := s.db.Save(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// Unarchive restores an archived alert to active. Only archived alerts
// may be unarchived.
func (s *AlertService) Unarchive(id uint) (*database.Alert, error) {
	alert, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if alert.Status != database.AlertStatusArchived {
		return nil, core.InvalidStatef("alert %d is not archived (status: %s)", id, alert.Status)
	}
	alert.Status = database.AlertStatusActive
	if err := s.db.Save(alert).Error; err != nil {
		return nil, err
	}
	return alert, nil
}

// Delete hard-deletes an alert. Irreversible.
func (s *AlertService) Delete(id uint) error {
	result := s.db.Delete(&database.Alert{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// List returns alerts newest-first. Archived alerts are excluded unless
// the filter asks for them; an exact location match narrows further.
func (s *AlertService) List(filter ListAlertsFilter) ([]database.Alert, error) {
	query := s.db.Order("created_at DESC")
	if !filter.IncludeArchived {
		query = query.Where("status <> ?", database.AlertStatusArchived)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}

	var alerts []database.Alert
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListLocations returns the distinct non-empty alert locations,
// ascending.
func (s *AlertService) ListLocations() ([]string, error) {
	var locations []string
	if err := s.db.Model(&database.Alert{}).Distinct().Pluck("location", &locations).Error; err != nil {
		return nil, err
	}

	out := make([]string, 0, len(locations))
	for _, loc := range locations {
		if strings.TrimSpace(loc) != "" {
			out = append(out, loc)
		}
	}
	sort.Strings(out)
	return out, nil
}
