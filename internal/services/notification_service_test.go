package services

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway records sent messages without any network traffic
type stubGateway struct {
	mu         sync.Mutex
	configured bool
	sent       []string
}

func (g *stubGateway) SendWhatsApp(to, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, body)
	return nil
}

func (g *stubGateway) IsConfigured() bool {
	return g.configured
}

func TestWhatsAppDispatcher(t *testing.T) {
	newDispatcher := func(fx *fixture, gateway *stubGateway) *WhatsAppDispatcher {
		logger := logrus.New()
		logger.SetLevel(logrus.PanicLevel)
		return NewWhatsAppDispatcher(gateway, fx.store, fx.store, "https://bookings.example", logger)
	}

	t.Run("Sends Composed Message", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)

		gateway := &stubGateway{configured: true}
		dispatcher := newDispatcher(fx, gateway)

		err := dispatcher.Notify(EventConfirmed, booking)
		require.NoError(t, err)
		require.Len(t, gateway.sent, 1)
		assert.Contains(t, gateway.sent[0], "Sunset Kayak Tour")
		assert.Contains(t, gateway.sent[0], "confirmed")
	})

	t.Run("Created Message Includes Confirmation Link", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)

		gateway := &stubGateway{configured: true}
		dispatcher := newDispatcher(fx, gateway)

		err := dispatcher.Notify(EventCreated, booking)
		require.NoError(t, err)
		require.Len(t, gateway.sent, 1)
		assert.Contains(t, gateway.sent[0], "https://bookings.example/bookings/"+booking.ID.String())
	})

	t.Run("Cancelled Message Includes Reason", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)
		reason := "weather warning"
		booking.CancellationReason = &reason

		gateway := &stubGateway{configured: true}
		dispatcher := newDispatcher(fx, gateway)

		err := dispatcher.Notify(EventCancelled, booking)
		require.NoError(t, err)
		require.Len(t, gateway.sent, 1)
		assert.Contains(t, gateway.sent[0], "weather warning")
	})

	t.Run("Unconfigured Gateway Skips Send", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)

		gateway := &stubGateway{configured: false}
		dispatcher := newDispatcher(fx, gateway)

		err := dispatcher.Notify(EventConfirmed, booking)
		require.NoError(t, err)
		assert.Empty(t, gateway.sent)
	})

	t.Run("Unknown Event", func(t *testing.T) {
		fx := newFixture(t)
		booking := fx.createPending(t, "+94771234567", 2)

		gateway := &stubGateway{configured: true}
		dispatcher := newDispatcher(fx, gateway)

		err := dispatcher.Notify(EventType("unknown"), booking)
		assert.Error(t, err)
	})
}
