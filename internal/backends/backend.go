// Package backends holds the pluggable publishers a closed meeting is handed
// to. Each variant is registered under a configuration name and constructed
// once at startup; the session service only sees the Backend interface.
package backends

import (
	"context"
	"fmt"
	"net/http"

	"meetgogo/backend/internal/chat"
	"meetgogo/backend/internal/config"
	"meetgogo/backend/internal/identity"
	"meetgogo/backend/internal/models"
)

// Backend receives the start and end hooks of the meeting lifecycle.
//
// OnEnd runs before the session is purged and must isolate its own artifact
// failures: one failing render or upload must not prevent the others from
// being attempted, and a returned error never blocks cleanup. A backend that
// already reported its degradation to the room should return nil.
type Backend interface {
	Name() string
	OnStart(ctx context.Context, meeting *models.Meeting, evt models.InboundMessage) error
	OnEnd(ctx context.Context, meeting *models.Meeting, entries []models.MeetingLog,
		attendance []models.Attendance, evt models.InboundMessage) error
}

// Publisher is the message-bus boundary used by the bus backend. The
// production implementation publishes to Redis.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Deps carries the injected collaborators a backend may need. Constructors
// pick what they use; tests substitute fakes.
type Deps struct {
	Chat     chat.Client
	Config   *config.Config
	HTTP     *http.Client
	Bus      Publisher
	Resolver identity.Resolver
}

// Constructor builds a backend from its dependencies.
type Constructor func(deps Deps) (Backend, error)

var registry = map[string]Constructor{}

// Register adds a constructor under a configuration name. Called from init
// functions of the variant files.
func Register(name string, c Constructor) {
	registry[name] = c
}

// New resolves a configuration name to a constructed backend.
func New(name string, deps Deps) (Backend, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	return c(deps)
}
