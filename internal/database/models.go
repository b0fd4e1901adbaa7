package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, isStr := value.(string)
		if !isStr {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, j)
}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// StringList is a JSONB-backed list of strings (evacuation routes,
// subscribed locations, etc.)
type StringList []string

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, isStr := value.(string)
		if !isStr {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Contains reports whether the list contains s (exact, case-sensitive).
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// AlertStatus represents the lifecycle status of an alert
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
	AlertStatusArchived AlertStatus = "archived"
)

// ValidAlertStatus reports whether s is a known alert status.
func ValidAlertStatus(s AlertStatus) bool {
	switch s {
	case AlertStatusActive, AlertStatusResolved, AlertStatusArchived:
		return true
	}
	return false
}

// SubscriptionMethod is the delivery channel for a subscription
type SubscriptionMethod string

const (
	MethodEmail SubscriptionMethod = "email"
	MethodSMS   SubscriptionMethod = "sms"
)

// ValidSubscriptionMethod reports whether m is a known channel.
func ValidSubscriptionMethod(m SubscriptionMethod) bool {
	return m == MethodEmail || m == MethodSMS
}

// DeliveryStatus is the outcome of a single dispatch attempt
type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)

// UserRole distinguishes admins from community reporters
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleReporter UserRole = "reporter"
)

// Alert is a disaster notice with structured advisory fields
type Alert struct {
	ID                    uint        `gorm:"primaryKey" json:"id"`
	UUID                  string      `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	AlertType             string      `gorm:"type:varchar(64);not null;index" json:"alert_type"`
	Severity              string      `gorm:"type:varchar(32);not null" json:"severity"`
	Location              string      `gorm:"type:varchar(255);not null;index" json:"location"`
	Description           string      `gorm:"type:text;not null" json:"description"`
	WaterLevels           JSONB       `gorm:"type:jsonb" json:"water_levels,omitempty"`
	EvacuationRoutes      StringList  `gorm:"type:jsonb" json:"evacuation_routes,omitempty"`
	EmergencyContacts     StringList  `gorm:"type:jsonb" json:"emergency_contacts,omitempty"`
	PrecautionaryMeasures StringList  `gorm:"type:jsonb" json:"precautionary_measures,omitempty"`
	WeatherForecast       JSONB       `gorm:"type:jsonb" json:"weather_forecast,omitempty"`
	Status                AlertStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// BeforeCreate assigns a UUID and canonicalizes the location
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	a.Location = strings.TrimSpace(a.Location)
	return nil
}

// Subscription registers a contact for one or more locations
type Subscription struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	Method    SubscriptionMethod `gorm:"type:varchar(10);not null;index" json:"method"`
	Contact   string             `gorm:"type:varchar(255);not null" json:"contact"`
	Locations StringList         `gorm:"type:jsonb;not null" json:"locations"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// BeforeSave trims locations so stray whitespace cannot break the
// alert-location join.
func (s *Subscription) BeforeSave(tx *gorm.DB) error {
	trimmed := make(StringList, 0, len(s.Locations))
	for _, loc := range s.Locations {
		if t := strings.TrimSpace(loc); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	s.Locations = trimmed
	return nil
}

// AlertLog is one delivery audit row. Exactly one row is written per
// dispatch attempt, success or failure; rows are never updated or deleted.
type AlertLog struct {
	ID                    uint               `gorm:"primaryKey" json:"id"`
	AlertUUID             string             `gorm:"size:36;index" json:"alert_uuid"`
	Method                SubscriptionMethod `gorm:"type:varchar(10);not null" json:"method"`
	Contact               string             `gorm:"type:varchar(255);not null" json:"contact"`
	AlertType             string             `gorm:"type:varchar(64);not null" json:"alert_type"`
	Location              string             `gorm:"type:varchar(255);not null;index" json:"location"`
	Description           string             `gorm:"type:text" json:"description"`
	Severity              string             `gorm:"type:varchar(32)" json:"severity"`
	WaterLevels           JSONB              `gorm:"type:jsonb" json:"water_levels,omitempty"`
	EvacuationRoutes      StringList         `gorm:"type:jsonb" json:"evacuation_routes,omitempty"`
	EmergencyContacts     StringList         `gorm:"type:jsonb" json:"emergency_contacts,omitempty"`
	PrecautionaryMeasures StringList         `gorm:"type:jsonb" json:"precautionary_measures,omitempty"`
	WeatherForecast       JSONB              `gorm:"type:jsonb" json:"weather_forecast,omitempty"`
	TimeSent              time.Time          `gorm:"not null" json:"time_sent"`
	Status                DeliveryStatus     `gorm:"type:varchar(10);not null;index" json:"status"`
	CreatedAt             time.Time          `json:"created_at"`
}

// User holds account and session data for admins and reporters
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'reporter'" json:"role"`
	SessionToken string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CommunityReport is a ground-truth observation submitted from the field
type CommunityReport struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReporterName string    `gorm:"type:varchar(255)" json:"reporter_name"`
	Contact      string    `gorm:"type:varchar(255)" json:"contact"`
	Location     string    `gorm:"type:varchar(255);not null;index" json:"location"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Severity     string    `gorm:"type:varchar(32)" json:"severity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Demographic holds reference population data per location
type Demographic struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Location         string    `gorm:"type:varchar(255);not null;index" json:"location"`
	Population       int       `json:"population"`
	Households       int       `json:"households"`
	VulnerableGroups JSONB     `gorm:"type:jsonb" json:"vulnerable_groups,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HealthFacility is a hospital, clinic or dispensary in the coverage area
type HealthFacility struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Type      string    `gorm:"type:varchar(64)" json:"type"`
	Location  string    `gorm:"type:varchar(255);not null;index" json:"location"`
	Capacity  int       `json:"capacity"`
	Contact   string    `gorm:"type:varchar(255)" json:"contact"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Infrastructure is a road, bridge, dam or other asset tracked for damage
type Infrastructure struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Category  string    `gorm:"type:varchar(64)" json:"category"`
	Location  string    `gorm:"type:varchar(255);not null;index" json:"location"`
	Condition string    `gorm:"type:varchar(64)" json:"condition"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FloodRecord is a historical flood event used for risk reference
type FloodRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Location       string    `gorm:"type:varchar(255);not null;index" json:"location"`
	OccurredAt     time.Time `gorm:"not null" json:"occurred_at"`
	PeakLevel      float64   `json:"peak_level"`
	DurationDays   int       `json:"duration_days"`
	DamageEstimate string    `gorm:"type:text" json:"damage_estimate"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides for explicit table naming
func (Alert) TableName() string {
	return "alerts"
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (AlertLog) TableName() string {
	return "alert_logs"
}

func (User) TableName() string {
	return "users"
}

func (CommunityReport) TableName() string {
	return "community_reports"
}

func (Demographic) TableName() string {
	return "demographics"
}

func (HealthFacility) TableName() string {
	return "health_facilities"
}

func (Infrastructure) TableName() string {
	return "infrastructure"
}

func (FloodRecord) TableName() string {
	return "flood_records"
}
