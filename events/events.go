package events

import "time"

// Notifier publishes an event to a named channel. Publication is best-effort
// and must not block the publisher.
type Notifier interface {
	Publish(channel, event string, payload any, source string)
}

// Event is what subscribers receive.
type Event struct {
	ID      string
	Channel string
	Name    string
	Payload any
	Source  string
	Time    time.Time
}

// Channel and event names published by the token orchestrator.
const (
	ChannelAuth            = "auth"
	EventTokenRefresh      = "tokenRefresh"
	EventTokenRefreshError = "tokenRefresh_failure"
)

// Nop is a Notifier that discards everything.
type Nop struct{}

func (Nop) Publish(channel, event string, payload any, source string) {}
