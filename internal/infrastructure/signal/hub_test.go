package signal

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"peercall/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(time.Minute, time.Second, zaptest.NewLogger(t).Sugar())
}

func TestHub_SendToUnknownConnection(t *testing.T) {
	hub := newTestHub(t)

	err := hub.Send("nobody", &domain.SignalMessage{Type: domain.TypeOffer})
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestHub_SendAfterRemove(t *testing.T) {
	hub := newTestHub(t)
	hub.add(&client{id: "a", send: make(chan []byte, 1)})
	hub.remove("a")

	err := hub.Send("a", &domain.SignalMessage{Type: domain.TypeOffer})
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestHub_FullBufferDropsDelivery(t *testing.T) {
	hub := newTestHub(t)
	c := &client{id: "a", send: make(chan []byte, 1)}
	hub.add(c)

	msg := &domain.SignalMessage{Type: domain.TypeOffer}
	require.NoError(t, hub.Send("a", msg))
	// Buffer is full now; the second send drops instead of blocking.
	require.NoError(t, hub.Send("a", msg))
	assert.Len(t, c.send, 1)
}

// Sending to a connection while it is being removed must be an ordinary
// dropped delivery, never a send on the closed outbound channel.
func TestHub_SendDuringRemoveDoesNotPanic(t *testing.T) {
	hub := newTestHub(t)
	msg := &domain.SignalMessage{Type: domain.TypeCandidate}

	for i := 0; i < 200; i++ {
		id := domain.ConnID(fmt.Sprintf("conn-%d", i))
		hub.add(&client{id: id, send: make(chan []byte, 1)})

		start := make(chan struct{})
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				hub.Send(id, msg)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			hub.remove(id)
		}()

		close(start)
		wg.Wait()
	}
	assert.Zero(t, hub.Connections())
}
