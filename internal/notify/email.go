package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailNotifier delivers alerts over SendGrid.
type EmailNotifier struct {
	fromName  string
	fromEmail string
	client    *sendgrid.Client
}

// NewEmailNotifier creates a SendGrid-backed email notifier.
func NewEmailNotifier(apiKey, fromName, fromEmail string) *EmailNotifier {
	return &EmailNotifier{
		fromName:  fromName,
		fromEmail: fromEmail,
		client:    sendgrid.NewSendClient(apiKey),
	}
}

// Send delivers one alert email. A non-2xx gateway response is an error.
func (n *EmailNotifier) Send(ctx context.Context, contact string, p Payload) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail("", contact)
	message := mail.NewSingleEmail(from, p.Subject(), to, p.Body(), "")

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("EmailNotifier: send to %s failed: %v", contact, err)
		return err
	}
	if resp.StatusCode >= 300 {
		log.Printf("EmailNotifier: send to %s rejected with status %d", contact, resp.StatusCode)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
