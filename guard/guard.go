package guard

import (
	"context"

	"github.com/articleartisan/shellauth"
)

// Route is the navigation target as seen by the guard: the path and the
// route table's RequiresAuth flag. A route registered without the flag has
// the zero value false and fails open.
type Route struct {
	Path         string
	RequiresAuth bool
}

// Action is the guard's verdict kind.
type Action uint8

const (
	// ActionAllow lets the navigation proceed unchanged.
	ActionAllow Action = iota
	// ActionRedirect replaces the navigation target with Decision.Target.
	ActionRedirect
)

// Decision is the guard's verdict for one navigation attempt.
type Decision struct {
	Action Action
	// Target is the redirect path; set only when Action is ActionRedirect.
	Target string
}

// Allowed reports whether the navigation may proceed unchanged.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// Guard intercepts navigation attempts and consults the session store.
type Guard struct {
	session *shellauth.Store
	routes  shellauth.RouteConfig
}

// New creates a guard over the given session store. The login, register,
// and home paths are taken from the store's configuration.
func New(session *shellauth.Store) *Guard {
	return &Guard{
		session: session,
		routes:  session.Routes(),
	}
}

// Resolve decides one navigation attempt. It lazily hydrates the session
// from storage when no in-memory user exists, then applies the policy:
//
//  1. A route requiring auth without a session redirects to the login view.
//  2. The login and register views redirect home once a session exists.
//  3. Everything else is allowed unchanged.
//
// Resolve is synchronous with respect to the in-memory session snapshot;
// hydration is a local storage read, never a network round-trip.
func (g *Guard) Resolve(ctx context.Context, to Route) Decision {
	if !g.session.IsAuthenticated() {
		g.session.Initialize(ctx)
	}

	authed := g.session.IsAuthenticated()

	if to.RequiresAuth && !authed {
		return Decision{Action: ActionRedirect, Target: g.routes.LoginPath}
	}
	if authed && (to.Path == g.routes.LoginPath || to.Path == g.routes.RegisterPath) {
		return Decision{Action: ActionRedirect, Target: g.routes.HomePath}
	}
	return Decision{Action: ActionAllow}
}
