package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// GuardState is the route guard's decision for the current token
type GuardState int

// Guard states. The guard starts in Checking and settles in Allowed or
// Denied; every token change restarts the sequence.
const (
	Checking GuardState = iota
	Allowed
	Denied
)

// String returns a human-readable state name
func (s GuardState) String() string {
	switch s {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "checking"
	}
}

// RouteGuard gates access to protected navigation. An empty token is
// denied without touching the network; a non-empty token is confirmed
// with the backend and anything but a positive answer, transport
// failures included, is a denial. Confirmations are sequence-stamped so
// a stale response arriving after a newer token never wins.
type RouteGuard struct {
	session *SessionStore
	api     *APIClient
	admin   bool
	logger  *zap.Logger

	mu        sync.Mutex
	state     GuardState
	seq       uint64
	onChange  func(GuardState)
	pending   []GuardState
	notifying bool
}

// NewRouteGuard creates a guard for user routes, or admin routes when
// admin is true.
func NewRouteGuard(session *SessionStore, api *APIClient, admin bool, logger *zap.Logger) *RouteGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteGuard{
		session: session,
		api:     api,
		admin:   admin,
		logger:  logger,
		state:   Checking,
	}
}

// OnChange registers a callback invoked on every state transition, in
// transition order. Protected content must only be shown when the
// callback reports Allowed.
func (g *RouteGuard) OnChange(fn func(GuardState)) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// Start evaluates the current token and re-evaluates on every session
// change until ctx is done.
func (g *RouteGuard) Start(ctx context.Context) {
	g.session.Subscribe(func(session Session) {
		if ctx.Err() != nil {
			return
		}
		g.Evaluate(ctx, session.Token)
	})
	g.Evaluate(ctx, g.session.Token())
}

// Evaluate runs the guard sequence for the given token. The decision
// for an empty token is immediate; otherwise the confirmation runs in
// the background and only the newest evaluation may settle the state.
func (g *RouteGuard) Evaluate(ctx context.Context, token string) {
	g.mu.Lock()
	g.seq++
	seq := g.seq
	g.setStateLocked(Checking)

	if token == "" {
		g.setStateLocked(Denied)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	go g.confirm(ctx, seq)
}

func (g *RouteGuard) confirm(ctx context.Context, seq uint64) {
	ok, err := g.api.ConfirmAuth(ctx, g.admin)
	if err != nil {
		g.logger.Warn("Guard confirmation failed", zap.Error(err))
		ok = false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if seq != g.seq {
		// A newer token superseded this confirmation
		return
	}
	if ok {
		g.setStateLocked(Allowed)
	} else {
		g.setStateLocked(Denied)
	}
}

// State returns the guard's current decision
func (g *RouteGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *RouteGuard) setStateLocked(next GuardState) {
	if g.state == next {
		return
	}
	g.state = next
	if g.onChange == nil {
		return
	}
	g.pending = append(g.pending, next)
	if !g.notifying {
		g.notifying = true
		go g.notify()
	}
}

// notify drains queued transitions one at a time, so the callback sees
// them in the order they happened and never runs under the mutex.
func (g *RouteGuard) notify() {
	for {
		g.mu.Lock()
		if len(g.pending) == 0 {
			g.notifying = false
			g.mu.Unlock()
			return
		}
		state := g.pending[0]
		g.pending = g.pending[1:]
		fn := g.onChange
		g.mu.Unlock()
		fn(state)
	}
}
