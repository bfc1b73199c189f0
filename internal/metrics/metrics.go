// Package metrics publishes best-effort usage events to the shared
// service-metrics queue.
package metrics

import (
	"time"

	"github.com/google/uuid"
)

// Operation tags a business event.
type Operation string

const (
	OpUserLogin             Operation = "user-login"
	OpUserFederatedLogin    Operation = "user-federated-login"
	OpUserRegister          Operation = "user-register"
	OpUserFederatedRegister Operation = "user-federated-register"
	OpUserBlocked           Operation = "user-blocked"
	OpUserUnblocked         Operation = "user-unblocked"
)

const serviceName = "users"

// Event is the message placed on the queue. It is constructed, published and
// discarded; nothing is persisted.
type Event struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Service   string    `json:"service"`
	Operation Operation `json:"operation"`
}

// NewEvent builds an event with a random short id and the current timestamp.
func NewEvent(op Operation) Event {
	return Event{
		ID:        uuid.NewString()[:8],
		Date:      time.Now().UTC(),
		Service:   serviceName,
		Operation: op,
	}
}
