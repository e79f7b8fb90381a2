package mailservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendWelcomeEmail(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMailer := new(MockMailer)

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:     mockMC,
		m:      mockMailer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:    ctx,
		cancel: cancel,
	}

	s.SendWelcomeEmail()

	assert.Eventually(t, func() bool {
		return mockMailer.IsCalled()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "test@example.com", mockMailer.GetEmail())

	t.Cleanup(func() {
		s.Close()
	})
}
