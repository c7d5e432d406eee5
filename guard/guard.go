// Package guard gates access to protected views based on session state.
package guard

import (
	"strings"

	"github.com/jrsteele09/go-auth-client/session"
)

// Decision is the guard's verdict for a navigation attempt.
type Decision int

const (
	// Initializing means session state is still being restored from the
	// token store; nothing should render yet.
	Initializing Decision = iota
	// Authorized means the requested view may render.
	Authorized
	// Denied means navigation must be redirected to the login entry.
	Denied
)

func (d Decision) String() string {
	switch d {
	case Initializing:
		return "initializing"
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// Route declares one entry of the protected-route surface.
type Route struct {
	Path         string
	RequiresAuth bool
}

// Routes is the ordered route table; the first match wins.
type Routes []Route

// Match finds the first route whose path equals the requested path,
// ignoring a trailing slash.
func (r Routes) Match(path string) (Route, bool) {
	for _, route := range r {
		if normalizePath(route.Path) == normalizePath(path) {
			return route, true
		}
	}
	return Route{}, false
}

// SessionReader is the narrow view of the session provider the guard needs.
type SessionReader interface {
	State() session.State
}

// Guard evaluates navigation attempts against the current session state. It
// consults the provider on every evaluation, so a mid-session logout is
// observed on the very next request.
type Guard struct {
	session   SessionReader
	routes    Routes
	loginPath string
}

// New creates a guard over the given route table. loginPath is where denied
// navigation is redirected; the originally requested path is discarded.
func New(sessionReader SessionReader, routes Routes, loginPath string) *Guard {
	return &Guard{
		session:   sessionReader,
		routes:    routes,
		loginPath: loginPath,
	}
}

// LoginPath returns the login entry point.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// Evaluate decides whether the view at path may render right now.
func (g *Guard) Evaluate(path string) Decision {
	state := g.session.State()
	if state.Initializing {
		return Initializing
	}

	route, ok := g.routes.Match(path)
	if !ok {
		return Denied
	}
	if !route.RequiresAuth {
		return Authorized
	}
	if state.Authenticated() {
		return Authorized
	}
	return Denied
}

func normalizePath(path string) string {
	if path == "/" {
		return path
	}
	return strings.TrimRight(path, "/")
}
