package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// OpsNotifier posts a summary of each broadcast to an operations Slack
// channel via an incoming webhook. It is informational only: a failed
// post never affects subscriber delivery or the audit trail.
type OpsNotifier struct {
	webhookURL string
}

// NewOpsNotifier creates a Slack ops-channel notifier. An empty webhook
// URL disables it.
func NewOpsNotifier(webhookURL string) *OpsNotifier {
	return &OpsNotifier{webhookURL: webhookURL}
}

// Enabled reports whether a webhook URL is configured.
func (n *OpsNotifier) Enabled() bool {
	return n.webhookURL != ""
}

// PostBroadcastSummary posts one message describing a completed fan-out.
func (n *OpsNotifier) PostBroadcastSummary(ctx context.Context, p Payload, sent, failed int) {
	if !n.Enabled() {
		return
	}

	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("%s: dispatched to %d subscriber(s), %d failed", p.Subject(), sent, failed),
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		log.Printf("OpsNotifier: failed to post broadcast summary: %v", err)
	}
}
