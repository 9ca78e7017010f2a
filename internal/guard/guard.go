package guard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coffeestock/coffeestock/internal/authz"
	"github.com/coffeestock/coffeestock/internal/session"
)

// Reason explains why a view was denied.
type Reason string

const (
	ReasonNotAuthenticated       Reason = "not_authenticated"
	ReasonUnknownView            Reason = "unknown_view"
	ReasonInsufficientPermission Reason = "insufficient_permission"
)

// Decision is the verdict for one view request.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allowed = Decision{Allowed: true}

func denied(reason Reason) Decision {
	return Decision{Reason: reason}
}

// View describes a navigable screen. An empty Required permission means
// the view is open to any authenticated identity.
type View struct {
	ID       string
	Title    string
	Required authz.Permission
}

// Guard is the single choke point for view access: the presentation
// layer must not render a view without an Allowed decision from it.
type Guard struct {
	engine *authz.Engine
	views  map[string]View
	order  []string
}

// New validates the view descriptors against the catalog and indexes
// them. A view requiring a permission outside the catalog is a
// configuration error.
func New(catalog *authz.Catalog, engine *authz.Engine, views []View) (*Guard, error) {
	g := &Guard{
		engine: engine,
		views:  make(map[string]View, len(views)),
	}
	for _, v := range views {
		id := strings.TrimSpace(v.ID)
		if id == "" {
			return nil, errors.New("guard: view id required")
		}
		if _, exists := g.views[id]; exists {
			return nil, fmt.Errorf("guard: duplicate view %q", id)
		}
		if v.Required != "" && !catalog.Exists(v.Required) {
			return nil, fmt.Errorf("guard: view %q requires unknown permission %q", id, v.Required)
		}
		v.ID = id
		g.views[id] = v
		g.order = append(g.order, id)
	}
	return g, nil
}

// Authorize decides whether the session may reach the view. It is total
// and fail-closed: unknown views and missing grants deny rather than
// error.
func (g *Guard) Authorize(snap session.Snapshot, viewID string) Decision {
	if !snap.Authenticated() {
		return denied(ReasonNotAuthenticated)
	}
	view, ok := g.views[viewID]
	if !ok {
		return denied(ReasonUnknownView)
	}
	if view.Required == "" {
		return allowed
	}
	if g.engine.HasPermission(snap.Identity.Role, view.Required) {
		return allowed
	}
	return denied(ReasonInsufficientPermission)
}

// Lookup returns the descriptor for a view id.
func (g *Guard) Lookup(viewID string) (View, bool) {
	v, ok := g.views[viewID]
	return v, ok
}

// Views returns all descriptors in registration order. Menu building
// filters this list through Authorize so menu visibility and view
// access always reach the same verdict.
func (g *Guard) Views() []View {
	out := make([]View, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.views[id])
	}
	return out
}
