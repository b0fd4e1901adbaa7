package testhelpers

import (
	"context"
	"sync"

	"github.com/floodwatch-ke/floodwatch/internal/notify"
)

// SentMessage records a single delivery made through MockNotifier.
type SentMessage struct {
	Contact string
	Payload notify.Payload
}

// MockNotifier implements notify.Notifier and records every send.
// Set Err to make all sends fail.
type MockNotifier struct {
	mu   sync.Mutex
	Err  error
	Sent []SentMessage
}

func (m *MockNotifier) Send(_ context.Context, contact string, p notify.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{Contact: contact, Payload: p})
	return m.Err
}

// SentCount returns the number of recorded sends.
func (m *MockNotifier) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
