// Package notify contains the outbound gateway adapters used for alert
// delivery. Each adapter implements Notifier for one channel; the
// dispatch service picks the adapter matching a subscription's method.
package notify

import (
	"context"
	"fmt"
	"strings"
)

// Payload is the alert content handed to a gateway adapter.
type Payload struct {
	AlertType             string
	Severity              string
	Location              string
	Description           string
	EvacuationRoutes      []string
	EmergencyContacts     []string
	PrecautionaryMeasures []string
}

// Notifier sends one alert payload to one contact. Implementations do
// not retry; a failed send surfaces as a single failed attempt.
type Notifier interface {
	Send(ctx context.Context, contact string, p Payload) error
}

// Subject returns the one-line summary used for email subjects and the
// ops channel.
func (p Payload) Subject() string {
	return fmt.Sprintf("[%s] %s alert for %s", strings.ToUpper(p.Severity), p.AlertType, p.Location)
}

// Body renders the payload as plain text for SMS and email fallback.
func (p Payload) Body() string {
	var b strings.Builder
	b.WriteString(p.Description)
	if len(p.PrecautionaryMeasures) > 0 {
		b.WriteString("\n\nPrecautions:\n- ")
		b.WriteString(strings.Join(p.PrecautionaryMeasures, "\n- "))
	}
	if len(p.EvacuationRoutes) > 0 {
		b.WriteString("\n\nEvacuation routes:\n- ")
		b.WriteString(strings.Join(p.EvacuationRoutes, "\n- "))
	}
	if len(p.EmergencyContacts) > 0 {
		b.WriteString("\n\nEmergency contacts: ")
		b.WriteString(strings.Join(p.EmergencyContacts, ", "))
	}
	return b.String()
}
