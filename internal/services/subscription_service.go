package services

import (
	"errors"
	"strings"
	"time"

	"github.com/floodwatch-ke/floodwatch/internal/core"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"gorm.io/gorm"
)

// SubscriptionService resolves which subscriptions are relevant to a
// location and provides aggregate views for the dashboard.
//
// Matching is a linear scan with exact string membership. At the
// subscriber volumes this system serves that is a deliberate trade-off,
// not an oversight; an indexed lookup would only pay off far beyond the
// current scale.
type SubscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// SubscriptionInput carries the fields required to subscribe.
type SubscriptionInput struct {
	Method    database.SubscriptionMethod `json:"method" validate:"required,oneof=email sms"`
	Contact   string                      `json:"contact" validate:"required"`
	Locations database.StringList         `json:"locations" validate:"required,min=1"`
}

// SubscriptionPatch lists every mutable subscription field. A locations
// patch replaces the whole list.
type SubscriptionPatch struct {
	Method    *database.SubscriptionMethod `json:"method"`
	Contact   *string                      `json:"contact"`
	Locations *database.StringList         `json:"locations"`
}

// SubscriptionSummary is the per-location view of a subscription used
// by the grouped listing.
type SubscriptionSummary struct {
	ID        uint                        `json:"id"`
	Method    database.SubscriptionMethod `json:"method"`
	Contact   string                      `json:"contact"`
	CreatedAt time.Time                   `json:"created_at"`
}

// LocationCount is one aggregate row of CountByLocation.
type LocationCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func hasNonEmptyEntry(locations database.StringList) bool {
	for _, loc := range locations {
		if strings.TrimSpace(loc) != "" {
			return true
		}
	}
	return false
}

// Create registers a new subscription.
func (s *SubscriptionService) Create(in SubscriptionInput) (*database.Subscription, error) {
	if !database.ValidSubscriptionMethod(in.Method) {
		return nil, core.Validationf("method must be one of: email, sms")
	}
	if strings.TrimSpace(in.Contact) == "" {
		return nil, core.Validationf("contact is required")
	}
	if !hasNonEmptyEntry(in.Locations) {
		return nil, core.Validationf("locations must contain at least one non-empty entry")
	}

	sub := &database.Subscription{
		Method:    in.Method,
		Contact:   in.Contact,
		Locations: in.Locations,
	}
	if err := s.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// Get returns a single subscription by id.
func (s *SubscriptionService) Get(id uint) (*database.Subscription, error) {
	var sub database.Subscription
	if err := s.db.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// Update applies a partial patch. Unspecified fields retain their
// stored value.
func (s *SubscriptionService) Update(id uint, patch SubscriptionPatch) (*database.Subscription, error) {
	sub, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.Method != nil {
		if !database.ValidSubscriptionMethod(*patch.Method) {
			return nil, core.Validationf("method must be one of: email, sms")
		}
		sub.Method = *patch.Method
	}
	if patch.Contact != nil {
		if strings.TrimSpace(*patch.Contact) == "" {
			return nil, core.Validationf("contact cannot be empty")
		}
		sub.Contact = *patch.Contact
	}
	if patch.Locations != nil {
		if !hasNonEmptyEntry(*patch.Locations) {
			return nil, core.Validationf("locations must contain at least one non-empty entry")
		}
		sub.Locations = *patch.Locations
	}

	if err := s.db.Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// Delete removes a subscription.
func (s *SubscriptionService) Delete(id uint) error {
	result := s.db.Delete(&database.Subscription{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// FindByLocation returns every subscription whose locations list
// contains location (exact, case-sensitive membership).
func (s *SubscriptionService) FindByLocation(location string) ([]database.Subscription, error) {
	if strings.TrimSpace(location) == "" {
		return nil, core.Validationf("location is required")
	}

	var all []database.Subscription
	if err := s.db.Find(&all).Error; err != nil {
		return nil, err
	}

	matched := make([]database.Subscription, 0)
	for _, sub := range all {
		if sub.Locations.Contains(location) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

// GroupAllByLocation maps every distinct location to the subscriptions
// covering it. A subscription with N locations appears under N keys.
func (s *SubscriptionService) GroupAllByLocation() (map[string][]SubscriptionSummary, error) {
	var all []database.Subscription
	if err := s.db.Find(&all).Error; err != nil {
		return nil, err
	}

	grouped := make(map[string][]SubscriptionSummary)
	for _, sub := range all {
		summary := SubscriptionSummary{
			ID:        sub.ID,
			Method:    sub.Method,
			Contact:   sub.Contact,
			CreatedAt: sub.CreatedAt,
		}
		for _, loc := range sub.Locations {
			grouped[loc] = append(grouped[loc], summary)
		}
	}
	return grouped, nil
}

// CountByMethod returns subscription counts grouped by channel.
func (s *SubscriptionService) CountByMethod() (map[database.SubscriptionMethod]int64, error) {
	type row struct {
		Method database.SubscriptionMethod
		Count  int64
	}
	var rows []row
	err := s.db.Model(&database.Subscription{}).
		Select("method, count(*) as count").
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[database.SubscriptionMethod]int64, len(rows))
	for _, r := range rows {
		counts[r.Method] = r.Count
	}
	return counts, nil
}

// CountByLocation flattens every subscription's locations and counts
// occurrences of each non-empty trimmed label.
func (s *SubscriptionService) CountByLocation() ([]LocationCount, error) {
	var all []database.Subscription
	if err := s.db.Find(&all).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, sub := range all {
		for _, loc := range sub.Locations {
			label := strings.TrimSpace(loc)
			if label == "" {
				continue
			}
			if _, seen := counts[label]; !seen {
				order = append(order, label)
			}
			counts[label]++
		}
	}

	out := make([]LocationCount, 0, len(order))
	for _, label := range order {
		out = append(out, LocationCount{Label: label, Count: counts[label]})
	}
	return out, nil
}

// ListByMonth returns subscriptions created within the given calendar
// month, inclusive of its first and last day.
func (s *SubscriptionService) ListByMonth(year, month int) ([]database.Subscription, error) {
	if year < 1970 || year > 9999 {
		return nil, core.Validationf("year is out of range")
	}
	if month < 1 || month > 12 {
		return nil, core.Validationf("month must be between 1 and 12")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	var subs []database.Subscription
	err := s.db.Where("created_at >= ? AND created_at < ?", first, next).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
