package ussd

import (
	"fmt"
	"strings"

	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/services"
)

// Menu drives the USSD dialogue. Gateway semantics follow the common
// aggregator convention: responses starting with "CON" keep the session
// open, "END" closes it, and the request text is the "*"-joined history
// of the caller's inputs.
type Menu struct {
	alerts   *services.AlertService
	subs     *services.SubscriptionService
	sessions *SessionStore
}

// NewMenu creates a USSD menu over the alert and subscription services.
func NewMenu(alerts *services.AlertService, subs *services.SubscriptionService, sessions *SessionStore) *Menu {
	return &Menu{
		alerts:   alerts,
		subs:     subs,
		sessions: sessions,
	}
}

const rootMenu = "CON FloodWatch\n1. Active alerts\n2. Subscribe to alerts"

// Menu steps recorded in the session between callbacks.
const (
	stepAlertsLocation    = "alerts_location"
	stepSubscribeLocation = "subscribe_location"
)

// Handle processes one gateway callback and returns the response text.
// The dialogue position lives in the session store; only the caller's
// latest input segment is consumed on each callback.
func (m *Menu) Handle(sessionID, phone, text string) string {
	sess, ok := m.sessions.Get(sessionID)
	if !ok {
		sess = &Session{Phone: phone}
		m.sessions.Put(sessionID, sess)
	}

	if text == "" {
		sess.Step = ""
		return rootMenu
	}

	parts := strings.Split(text, "*")
	input := strings.TrimSpace(parts[len(parts)-1])

	switch sess.Step {
	case stepAlertsLocation:
		m.sessions.Delete(sessionID)
		return m.listAlerts(input)
	case stepSubscribeLocation:
		m.sessions.Delete(sessionID)
		return m.subscribe(sess.Phone, input)
	}

	// No recorded step: classify by menu choice. A restart drops the
	// session, so a multi-segment history falls through to its last
	// answer directly.
	switch parts[0] {
	case "1":
		if len(parts) == 1 {
			sess.Step = stepAlertsLocation
			m.sessions.Put(sessionID, sess)
			return "CON Enter your location"
		}
		m.sessions.Delete(sessionID)
		return m.listAlerts(input)
	case "2":
		if len(parts) == 1 {
			sess.Step = stepSubscribeLocation
			m.sessions.Put(sessionID, sess)
			return "CON Enter the location to subscribe to"
		}
		m.sessions.Delete(sessionID)
		return m.subscribe(sess.Phone, input)
	default:
		m.sessions.Delete(sessionID)
		return "END Invalid choice"
	}
}

func (m *Menu) listAlerts(location string) string {
	if location == "" {
		return "END Location is required"
	}

	alerts, err := m.alerts.List(services.ListAlertsFilter{Location: location})
	if err != nil {
		return "END Service unavailable, please try again later"
	}

	active := make([]database.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.Status == database.AlertStatusActive {
			active = append(active, a)
		}
	}
	if len(active) == 0 {
		return fmt.Sprintf("END No active alerts for %s", location)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("END Active alerts for %s:\n", location))
	for i, a := range active {
		if i == 3 {
			// USSD responses are size-limited; three alerts is plenty.
			b.WriteString("...")
			break
		}
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, a.AlertType, a.Severity))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Menu) subscribe(phone, location string) string {
	if location == "" {
		return "END Location is required"
	}
	if phone == "" {
		return "END Could not determine your phone number"
	}

	_, err := m.subs.Create(services.SubscriptionInput{
		Method:    database.MethodSMS,
		Contact:   phone,
		Locations: database.StringList{location},
	})
	if err != nil {
		return "END Subscription failed, please try again later"
	}
	return fmt.Sprintf("END You are now subscribed to SMS alerts for %s", location)
}
