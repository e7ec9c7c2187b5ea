package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kelgrave/credman/pkg/validation"
	"github.com/rs/zerolog/log"
)

// DefaultBuffer is the subscriber channel capacity used by Subscribe.
const DefaultBuffer = 16

// Hub is an in-process Notifier with buffered fan-out. Delivery is
// best-effort: when a subscriber's buffer is full the event is dropped for
// that subscriber and a warning is logged.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan Event // channel name -> subscription ID -> delivery channel
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[string]chan Event)}
}

// Subscribe registers interest in a channel and returns the subscription ID
// along with the delivery channel. A buffer of 0 selects DefaultBuffer.
func (h *Hub) Subscribe(channel string, buffer int) (string, <-chan Event, error) {
	if buffer == 0 {
		buffer = DefaultBuffer
	}
	if err := validation.ValidateEventBuffer(buffer); err != nil {
		return "", nil, err
	}

	id := uuid.NewString()
	ch := make(chan Event, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[string]chan Event)
	}
	h.subs[channel][id] = ch
	return id, ch, nil
}

// Unsubscribe removes a subscription and closes its delivery channel.
func (h *Hub) Unsubscribe(channel, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[channel][id]; ok {
		delete(h.subs[channel], id)
		close(ch)
	}
}

// Publish fans an event out to every subscriber of the channel without
// blocking the caller.
func (h *Hub) Publish(channel, event string, payload any, source string) {
	ev := Event{
		ID:      uuid.NewString(),
		Channel: channel,
		Name:    event,
		Payload: payload,
		Source:  source,
		Time:    time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs[channel] {
		select {
		case ch <- ev:
		default:
			log.Warn().
				Str("channel", channel).
				Str("event", event).
				Str("subscription", id).
				Msg("Subscriber buffer full, event dropped")
		}
	}
}
