package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/coffeestock/coffeestock/internal/audit"
	"github.com/coffeestock/coffeestock/internal/authz"
	"github.com/coffeestock/coffeestock/internal/identity"
)

var (
	// ErrPermissionDenied indicates the active identity's role does not
	// allow the attempted operation.
	ErrPermissionDenied = errors.New("session: permission denied")
	// ErrInvalidTransition indicates the operation is not defined for
	// the current state. The state is left unchanged.
	ErrInvalidTransition = errors.New("session: invalid transition")
)

// State is the lifecycle phase of the process-wide session.
type State int

const (
	// StateUnauthenticated is the initial state; no identity is active.
	StateUnauthenticated State = iota
	// StateAuthenticated means exactly one identity is active.
	StateAuthenticated
	// StateSwitching means an elevated identity opened the switcher;
	// the previous identity stays active until a selection is made.
	StateSwitching
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateSwitching:
		return "switching"
	default:
		return "unknown"
	}
}

// switchPermission gates the identity switcher. In the shipped role set
// only Admin holds it.
const switchPermission = authz.PermUsersChangeRoles

// Snapshot is a point-in-time view of the session, safe to pass around
// without holding the controller lock.
type Snapshot struct {
	State    State
	Epoch    string
	Identity identity.Identity
}

// Authenticated reports whether the snapshot carries an active identity
// in the fully authenticated state.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Controller owns the single process-wide session and is the only way
// to move it between states. Every transition validates identities
// against the store; callers can never hand the session a fabricated
// identity payload. A mutex serializes transitions so they are
// total-ordered even under a concurrent host.
type Controller struct {
	logger *slog.Logger
	store  *identity.Store
	engine *authz.Engine
	trail  *audit.Trail

	mu             sync.Mutex
	state          State
	activeUsername string
	epoch          string
}

// NewController constructs a Controller in the unauthenticated state.
// The trail is optional.
func NewController(logger *slog.Logger, store *identity.Store, engine *authz.Engine, trail *audit.Trail) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		logger: logger,
		store:  store,
		engine: engine,
		trail:  trail,
		state:  StateUnauthenticated,
	}
}

// Login authenticates credentials and activates the matched identity.
// It is only defined from the unauthenticated state. A credential
// mismatch is recoverable: the session stays unauthenticated.
func (c *Controller) Login(username, password string) (identity.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnauthenticated {
		return identity.Identity{}, ErrInvalidTransition
	}
	ident, err := c.store.Authenticate(username, password)
	if err != nil {
		c.record(audit.KindLoginFailed, username, "")
		c.logger.Warn("login failed", slog.String("username", username))
		return identity.Identity{}, err
	}
	c.activate(ident.Username)
	c.record(audit.KindLoginSucceeded, ident.Username, "")
	c.logger.Info("login succeeded",
		slog.String("username", ident.Username),
		slog.String("role", ident.Role),
		slog.String("epoch", c.epoch))
	return ident, nil
}

// RequestSwitch opens the identity switcher. Only an identity whose
// role carries the switch capability may do so; anyone else is denied
// and the state does not change.
func (c *Controller) RequestSwitch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAuthenticated {
		return ErrInvalidTransition
	}
	ident, ok := c.store.Lookup(c.activeUsername)
	if !ok || !c.engine.HasPermission(ident.Role, switchPermission) {
		c.record(audit.KindSwitchDenied, c.activeUsername, "")
		return ErrPermissionDenied
	}
	c.state = StateSwitching
	c.record(audit.KindSwitchRequested, c.activeUsername, "")
	return nil
}

// SelectIdentity completes a switch by username. The full identity,
// including its role, is re-resolved from the store; the caller cannot
// supply one. Unknown or inactive usernames leave the switcher open.
func (c *Controller) SelectIdentity(username string) (identity.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSwitching {
		return identity.Identity{}, ErrInvalidTransition
	}
	ident, ok := c.store.Lookup(username)
	if !ok || !ident.Active {
		return identity.Identity{}, identity.ErrNotFound
	}
	previous := c.activeUsername
	c.activate(ident.Username)
	c.record(audit.KindIdentitySwitch, ident.Username, "from "+previous)
	c.logger.Info("identity switched",
		slog.String("from", previous),
		slog.String("to", ident.Username),
		slog.String("role", ident.Role))
	return ident, nil
}

// CancelSwitch closes the switcher and keeps the current identity.
func (c *Controller) CancelSwitch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSwitching {
		return ErrInvalidTransition
	}
	c.state = StateAuthenticated
	return nil
}

// RequestNewLogin abandons the switcher and the current identity,
// returning to the login screen.
func (c *Controller) RequestNewLogin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSwitching {
		return ErrInvalidTransition
	}
	c.reset()
	return nil
}

// Logout ends the session. Defined from both authenticated states so a
// logout issued while the switcher is open still lands cleanly.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnauthenticated {
		return
	}
	c.record(audit.KindLogout, c.activeUsername, "")
	c.logger.Info("logout", slog.String("username", c.activeUsername))
	c.reset()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns the active identity, resolved fresh from the store so
// the controller never serves a drifted copy.
func (c *Controller) Active() (identity.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

// Snapshot captures state, epoch, and active identity atomically.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{State: c.state, Epoch: c.epoch}
	if ident, ok := c.activeLocked(); ok {
		snap.Identity = ident
	}
	return snap
}

func (c *Controller) activeLocked() (identity.Identity, bool) {
	if c.activeUsername == "" {
		return identity.Identity{}, false
	}
	return c.store.Lookup(c.activeUsername)
}

// activate records the identity as active under a fresh epoch and moves
// to the authenticated state. Callers hold the lock and have already
// validated the username against the store.
func (c *Controller) activate(username string) {
	c.activeUsername = username
	c.epoch = uuid.NewString()
	c.state = StateAuthenticated
}

func (c *Controller) reset() {
	c.activeUsername = ""
	c.epoch = ""
	c.state = StateUnauthenticated
}

func (c *Controller) record(kind audit.Kind, actor, detail string) {
	if c.trail != nil {
		c.trail.Record(kind, actor, detail)
	}
}
