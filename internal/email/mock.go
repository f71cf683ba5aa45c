package email

import (
	"context"
	"fmt"
	"sync"
)

// MockSender is a mock email sender for testing.
// Records every message it is asked to send.
type MockSender struct {
	// SendFunc allows customizing send behavior
	SendFunc func(ctx context.Context, email *Email) (string, error)

	mu sync.Mutex

	// Sent holds every email passed to Send, in order
	Sent []*Email

	// CallLog tracks method calls for test assertions
	CallLog []string
}

var _ Sender = (*MockSender)(nil)

// NewMockSender creates a new mock email sender.
func NewMockSender() *MockSender {
	return &MockSender{
		Sent:    []*Email{},
		CallLog: []string{},
	}
}

// Send records the email and returns a synthetic message ID.
func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, email)
	m.CallLog = append(m.CallLog, fmt.Sprintf("Send(%s)", email.Subject))
	n := len(m.Sent)
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}

	return fmt.Sprintf("mock-message-%d", n), nil
}
