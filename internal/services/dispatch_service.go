package services

import (
	"context"
	"log"
	"time"

	"github.com/floodwatch-ke/floodwatch/internal/core"
	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/notify"
	"gorm.io/gorm"
)

// DispatchService fans an alert out to the subscribers of its location
// and records one audit log row per delivery attempt. Every attempt is
// logged, success or failure; there are no retries.
type DispatchService struct {
	db       *gorm.DB
	subs     *SubscriptionService
	channels map[database.SubscriptionMethod]notify.Notifier
	ops      *notify.OpsNotifier
}

// NewDispatchService creates a new DispatchService. The ops notifier
// may be nil.
func NewDispatchService(db *gorm.DB, subs *SubscriptionService, channels map[database.SubscriptionMethod]notify.Notifier, ops *notify.OpsNotifier) *DispatchService {
	return &DispatchService{
		db:       db,
		subs:     subs,
		channels: channels,
		ops:      ops,
	}
}

// DispatchReport summarizes one broadcast.
type DispatchReport struct {
	Location string `json:"location"`
	Matched  int    `json:"matched"`
	Sent     int    `json:"sent"`
	Failed   int    `json:"failed"`
}

func payloadFor(alert *database.Alert) notify.Payload {
	return notify.Payload{
		AlertType:             alert.AlertType,
		Severity:              alert.Severity,
		Location:              alert.Location,
		Description:           alert.Description,
		EvacuationRoutes:      alert.EvacuationRoutes,
		EmergencyContacts:     alert.EmergencyContacts,
		PrecautionaryMeasures: alert.PrecautionaryMeasures,
	}
}

// Broadcast resolves the subscriber set for the alert's location and
// dispatches to each contact over its subscribed channel.
func (s *DispatchService) Broadcast(ctx context.Context, alert *database.Alert) (*DispatchReport, error) {
	matched, err := s.subs.FindByLocation(alert.Location)
	if err != nil {
		return nil, err
	}

	report := &DispatchReport{Location: alert.Location, Matched: len(matched)}
	payload := payloadFor(alert)

	for _, sub := range matched {
		if s.deliver(ctx, sub.Method, sub.Contact, alert, payload) {
			report.Sent++
		} else {
			report.Failed++
		}
	}

	if s.ops != nil {
		s.ops.PostBroadcastSummary(ctx, payload, report.Sent, report.Failed)
	}

	log.Printf("DispatchService: broadcast for %q matched=%d sent=%d failed=%d",
		alert.Location, report.Matched, report.Sent, report.Failed)
	return report, nil
}

// SendTo dispatches an alert to a single contact over the given channel
// and logs the attempt.
func (s *DispatchService) SendTo(ctx context.Context, alert *database.Alert, method database.SubscriptionMethod, contact string) (bool, error) {
	if !database.ValidSubscriptionMethod(method) {
		return false, core.Validationf("method must be one of: email, sms")
	}
	if contact == "" {
		return false, core.Validationf("contact is required")
	}
	return s.deliver(ctx, method, contact, alert, payloadFor(alert)), nil
}

// deliver performs one send attempt and writes its audit row. The log
// write happens for both outcomes; a missing channel adapter counts as
// a failed attempt.
func (s *DispatchService) deliver(ctx context.Context, method database.SubscriptionMethod, contact string, alert *database.Alert, payload notify.Payload) bool {
	var sendErr error
	notifier, ok := s.channels[method]
	if !ok {
		sendErr = core.Validationf("no notifier configured for method %q", method)
	} else {
		sendErr = notifier.Send(ctx, contact, payload)
	}

	status := database.DeliverySuccess
	if sendErr != nil {
		status = database.DeliveryFailed
		log.Printf("DispatchService: %s delivery to %s failed: %v", method, contact, sendErr)
	}

	entry := database.AlertLog{
		AlertUUID:             alert.UUID,
		Method:                method,
		Contact:               contact,
		AlertType:             alert.AlertType,
		Location:              alert.Location,
		Description:           alert.Description,
		Severity:              alert.Severity,
		WaterLevels:           alert.WaterLevels,
		EvacuationRoutes:      alert.EvacuationRoutes,
		EmergencyContacts:     alert.EmergencyContacts,
		PrecautionaryMeasures: alert.PrecautionaryMeasures,
		WeatherForecast:       alert.WeatherForecast,
		TimeSent:              time.Now(),
		Status:                status,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		// The audit trail is the one thing this service must not drop.
		log.Printf("DispatchService: FAILED TO WRITE DELIVERY LOG for %s/%s: %v", method, contact, err)
	}

	return sendErr == nil
}

// ListLogs returns delivery log rows newest-first with pagination.
func (s *DispatchService) ListLogs(offset, limit int) ([]database.AlertLog, int64, error) {
	var total int64
	if err := s.db.Model(&database.AlertLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []database.AlertLog
	err := s.db.Order("time_sent DESC").Offset(offset).Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
