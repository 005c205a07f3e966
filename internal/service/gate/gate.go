// Package gate implements the admin sign-in state machine.
package gate

import (
	"context"
	"errors"
	"sync"

	"chaeen-storefront/internal/remote"
	"chaeen-storefront/internal/service/notice"
)

// State is the gate's position in the sign-in flow.
type State string

const (
	StateLoading         State = "loading"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

const (
	MsgAccessDenied = "Access denied. Admin privileges required."
	MsgLoginFailed  = "Login failed. Please try again."
	MsgWelcome      = "Welcome back!"
)

// ErrNotReady is returned when a credential is submitted outside the login form.
var ErrNotReady = errors.New("login form is not active")

// API is the subset of the storefront API the gate drives.
type API interface {
	SignIn(ctx context.Context, identifier, password string) (*remote.Session, error)
	SignOut(ctx context.Context) error
	IsAdmin(ctx context.Context) bool
}

// Snapshot is the serializable part of a gate.
type Snapshot struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

// Gate guards the dashboard. A new gate starts in StateLoading; Enter must run
// before the login form accepts credentials.
type Gate struct {
	api API

	mu         sync.Mutex
	state      State
	message    string
	submitting bool
	notices    notice.Queue
}

func New(api API) *Gate {
	return &Gate{api: api, state: StateLoading}
}

// Resume rebuilds a gate from a snapshot taken on an earlier request.
func Resume(api API, snap Snapshot) *Gate {
	g := New(api)
	switch snap.State {
	case StateUnauthenticated, StateAuthenticated:
		g.state = snap.State
		g.message = snap.Message
	}
	return g
}

// Enter is the entry action of StateLoading: it discards any prior session,
// whatever the outcome, and shows the login form.
func (g *Gate) Enter(ctx context.Context) {
	_ = g.api.SignOut(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateUnauthenticated
	g.message = ""
	g.submitting = false
}

// Submit attempts an admin sign-in from the login form. Credential problems
// are reported through Message; the error return is reserved for misuse.
func (g *Gate) Submit(ctx context.Context, identifier, password string) error {
	g.mu.Lock()
	if g.state != StateUnauthenticated || g.submitting {
		g.mu.Unlock()
		return ErrNotReady
	}
	g.submitting = true
	g.message = ""
	g.mu.Unlock()

	next, msg := g.attempt(ctx, identifier, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitting = false
	g.state = next
	g.message = msg
	if next == StateAuthenticated {
		g.notices.Push(notice.Success(MsgWelcome))
	}
	return nil
}

func (g *Gate) attempt(ctx context.Context, identifier, password string) (State, string) {
	if _, err := g.api.SignIn(ctx, identifier, password); err != nil {
		return StateUnauthenticated, failureMessage(err)
	}
	if !g.api.IsAdmin(ctx) {
		if err := g.api.SignOut(ctx); err != nil {
			return StateUnauthenticated, failureMessage(err)
		}
		return StateUnauthenticated, MsgAccessDenied
	}
	return StateAuthenticated, ""
}

// Logout signs out and returns to the login form even if sign-out fails.
func (g *Gate) Logout(ctx context.Context) error {
	err := g.api.SignOut(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateUnauthenticated
	g.message = ""
	return err
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Message is the inline error shown under the login form.
func (g *Gate) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message
}

// Submitting reports whether a sign-in is in flight.
func (g *Gate) Submitting() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitting
}

func (g *Gate) Notices() []notice.Notice {
	return g.notices.Drain()
}

func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{State: g.state, Message: g.message}
}

func failureMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgLoginFailed
}
