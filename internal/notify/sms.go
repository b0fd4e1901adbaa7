package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier delivers alerts over Twilio.
type SMSNotifier struct {
	fromNumber string
	client     *twilio.RestClient
}

// NewSMSNotifier creates a Twilio-backed SMS notifier.
func NewSMSNotifier(accountSID, authToken, fromNumber string) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{
		fromNumber: fromNumber,
		client:     client,
	}
}

// Send delivers one alert SMS. The message is the subject line plus the
// description; structured advisory fields stay in email where there is
// room for them.
func (n *SMSNotifier) Send(ctx context.Context, contact string, p Payload) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetBody(fmt.Sprintf("%s\n%s", p.Subject(), p.Description))
	params.SetFrom(n.fromNumber)
	params.SetTo(contact)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("SMSNotifier: send to %s failed: %v", contact, err)
		return err
	}
	if resp.Sid == nil {
		return fmt.Errorf("twilio accepted message but returned no SID")
	}
	return nil
}
