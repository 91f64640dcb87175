package adapters

import (
	"strconv"
	"sync/atomic"

	"github.com/agentstation/docledger/internal/server/events"
	"github.com/agentstation/docledger/internal/server/sse"
)

// SSESubscriber streams ledger events to Server-Sent Events clients. The
// SSE event name is the ledger event type.
//
// A refresh that changes many documents fires their hooks within the same
// millisecond, so event IDs come from a per-subscriber sequence rather than
// the event time.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
	seq         atomic.Uint64
}

// NewSSESubscriber returns a subscriber for broadcaster.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send queues the event on the broadcaster with the next sequence ID.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(event.Type),
		ID:    s.nextID(),
		Data:  event.Data,
	})
	return nil
}

func (s *SSESubscriber) nextID() string {
	return strconv.FormatUint(s.seq.Add(1), 10)
}

// Close does nothing. Server.Shutdown stops the broadcaster.
func (s *SSESubscriber) Close() error {
	return nil
}
