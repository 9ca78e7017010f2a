package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an access-control event.
type Kind string

const (
	KindLoginSucceeded  Kind = "login_succeeded"
	KindLoginFailed     Kind = "login_failed"
	KindSwitchRequested Kind = "switch_requested"
	KindSwitchDenied    Kind = "switch_denied"
	KindIdentitySwitch  Kind = "identity_switched"
	KindLogout          Kind = "logout"
	KindViewDenied      Kind = "view_denied"
)

// Event is one recorded access-control occurrence.
type Event struct {
	ID     string
	Kind   Kind
	Actor  string
	Detail string
	At     time.Time
}

// Trail keeps a bounded in-memory window of recent events, newest kept.
// It is the demo stand-in for a durable audit log.
type Trail struct {
	mu     sync.Mutex
	max    int
	events []Event
}

// NewTrail constructs a Trail retaining at most max events.
func NewTrail(max int) *Trail {
	if max <= 0 {
		max = 256
	}
	return &Trail{max: max}
}

// Record appends an event, evicting the oldest beyond capacity.
func (t *Trail) Record(kind Kind, actor, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, Event{
		ID:     uuid.NewString(),
		Kind:   kind,
		Actor:  actor,
		Detail: detail,
		At:     time.Now().UTC(),
	})
	if len(t.events) > t.max {
		t.events = t.events[len(t.events)-t.max:]
	}
}

// Recent returns up to limit events, newest first.
func (t *Trail) Recent(limit int) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limit <= 0 || limit > len(t.events) {
		limit = len(t.events)
	}
	out := make([]Event, 0, limit)
	for i := len(t.events) - 1; i >= len(t.events)-limit; i-- {
		out = append(out, t.events[i])
	}
	return out
}
