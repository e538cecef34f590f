// Route table and navigation guard for the client's screens.
//
// Screens are addressed by paths mirroring the product's web URLs, so a
// path printed in one surface means the same thing in every other.
package nav

import (
	"context"
	"strings"
	"sync"

	"github.com/desertthunder/inkwell/internal/session"
)

// Access declares who may enter a route.
type Access int

const (
	// AccessPublic routes are open to everyone.
	AccessPublic Access = iota
	// AccessGuest routes are for signed-out users only.
	AccessGuest
	// AccessAuth routes require a confirmed identity.
	AccessAuth
)

// Route is one entry in the static route table.
type Route struct {
	Name    string
	Pattern string
	Access  Access
}

// Redirect targets used by the guard.
const (
	PathHome         = "/"
	PathPleaseSignIn = "/please-signin"
	PathProfile      = "/profile"
)

// routes is the full route table. Guarding is data, not code: access rules
// live here and nowhere else.
var routes = []Route{
	{Name: "home", Pattern: "/", Access: AccessPublic},
	{Name: "features", Pattern: "/features", Access: AccessPublic},
	{Name: "about", Pattern: "/about", Access: AccessPublic},
	{Name: "pricing", Pattern: "/pricing", Access: AccessPublic},
	{Name: "please-signin", Pattern: "/please-signin", Access: AccessPublic},
	{Name: "signin", Pattern: "/auth/signin", Access: AccessGuest},
	{Name: "signup", Pattern: "/auth/signup", Access: AccessGuest},
	{Name: "profile", Pattern: "/profile", Access: AccessAuth},
	{Name: "profile-books", Pattern: "/profile/books", Access: AccessAuth},
	{Name: "profile-create", Pattern: "/profile/create", Access: AccessAuth},
	{Name: "profile-mybooks", Pattern: "/profile/mybooks", Access: AccessAuth},
	{Name: "book-detail", Pattern: "/books/:id", Access: AccessAuth},
	{Name: "book-covers", Pattern: "/books/:id/covers", Access: AccessAuth},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Match resolves a path against the route table. Patterns match segment by
// segment; a ":name" segment matches any single non-empty segment and is
// returned as a parameter.
func Match(path string) (Route, map[string]string, bool) {
	segments := split(path)
	for _, route := range routes {
		if params, ok := match(split(route.Pattern), segments); ok {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func match(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, part := range pattern {
		if strings.HasPrefix(part, ":") {
			if segments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[part[1:]] = segments[i]
			continue
		}
		if part != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// SessionChecker is the slice of session state the guard needs.
type SessionChecker interface {
	Initialized() bool
	IsAuthenticated() bool
	CheckAuth(ctx context.Context) session.State
}

// Decision is the guard's verdict on a navigation.
type Decision struct {
	Route    Route
	Params   map[string]string
	Allowed  bool
	Redirect string
}

// Guard mediates every navigation against the route table and the session.
type Guard struct {
	checker SessionChecker

	mu       sync.Mutex
	intended string
}

// NewGuard creates a guard over the given session.
func NewGuard(checker SessionChecker) *Guard {
	return &Guard{checker: checker}
}

// Resolve decides whether the navigation to path may proceed.
//
// The first navigation that needs the session state triggers the auth
// check; public routes never do, and later navigations reuse the settled
// outcome. A denied auth route records the intended path so the sign-in
// flow can resume it.
func (g *Guard) Resolve(ctx context.Context, path string) Decision {
	route, params, ok := Match(path)
	if !ok {
		return Decision{Allowed: false, Redirect: PathHome}
	}

	decision := Decision{Route: route, Params: params}
	switch route.Access {
	case AccessPublic:
		decision.Allowed = true
	case AccessGuest:
		if g.authenticated(ctx) {
			decision.Redirect = PathProfile
		} else {
			decision.Allowed = true
		}
	case AccessAuth:
		if g.authenticated(ctx) {
			decision.Allowed = true
		} else {
			g.mu.Lock()
			g.intended = path
			g.mu.Unlock()
			decision.Redirect = PathPleaseSignIn
		}
	}
	return decision
}

func (g *Guard) authenticated(ctx context.Context) bool {
	if !g.checker.Initialized() {
		return g.checker.CheckAuth(ctx) == session.Authenticated
	}
	return g.checker.IsAuthenticated()
}

// ConsumeIntended returns the path of the last denied navigation and clears
// it, or "" when there is none.
func (g *Guard) ConsumeIntended() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	path := g.intended
	g.intended = ""
	return path
}
