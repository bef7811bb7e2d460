// Package session holds the credentials of one authenticated session and
// tells the rest of the client whether that session is still alive.
package session

import (
	gosync "sync"

	"github.com/nhle/tasknotify/internal/model"
)

// Gate is the session-scoped authority on whether an authenticated
// session exists. It is created at login and ended exactly once.
type Gate struct {
	mu     gosync.Mutex
	token  string
	user   model.User
	ended  bool
	reason string
	onEnd  []func(reason string)
}

// New creates an active gate for the given bearer token.
// An empty token yields a gate that is already ended.
func New(token string) *Gate {
	g := &Gate{token: token}
	if token == "" {
		g.ended = true
		g.reason = "no credentials"
	}
	return g
}

// Active reports whether the session is still usable.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.ended
}

// Token returns the bearer token, or "" once the session has ended.
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		return ""
	}
	return g.token
}

// SetUser records the account the token belongs to.
func (g *Gate) SetUser(u model.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.user = u
}

// User returns the account recorded with SetUser.
func (g *Gate) User() model.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Reason returns why the session ended, or "" while active.
func (g *Gate) Reason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// OnEnd registers fn to run when the session ends. If it already has,
// fn runs immediately.
func (g *Gate) OnEnd(fn func(reason string)) {
	g.mu.Lock()
	if g.ended {
		reason := g.reason
		g.mu.Unlock()
		fn(reason)
		return
	}
	g.onEnd = append(g.onEnd, fn)
	g.mu.Unlock()
}

// End tears the session down. Only the first call has any effect.
func (g *Gate) End(reason string) {
	g.mu.Lock()
	if g.ended {
		g.mu.Unlock()
		return
	}
	g.ended = true
	g.reason = reason
	g.token = ""
	callbacks := g.onEnd
	g.onEnd = nil
	g.mu.Unlock()

	for _, fn := range callbacks {
		fn(reason)
	}
}
