// ABOUTME: Access gate deciding whether a route may render for a session
// ABOUTME: Pure functions of (route, session); re-run on every navigation

package gate

import (
	"strings"

	"github.com/markalston/recipe-scaler/internal/session"
)

// Route is one of the closed set of access classes
type Route int

const (
	RoutePublic Route = iota
	RouteAuthenticated
	RouteAdminOnly
)

// Well-known paths for each route
const (
	PathPublic        = "/"
	PathAuthenticated = "/recipe"
	PathAdmin         = "/admin"
)

// Decision is the outcome of a gate check. When Allowed is false the caller
// navigates to Redirect instead; a denial is never reported as an error.
type Decision struct {
	Allowed  bool
	Redirect Route
}

// Decide returns whether route may render for the given session
func Decide(route Route, s session.Session) Decision {
	s = s.Normalize()

	switch route {
	case RoutePublic:
		return Decision{Allowed: true, Redirect: RoutePublic}
	case RouteAuthenticated:
		if s.SignedIn() {
			return Decision{Allowed: true, Redirect: RouteAuthenticated}
		}
	case RouteAdminOnly:
		if s.SignedIn() && s.IsAdmin {
			return Decision{Allowed: true, Redirect: RouteAdminOnly}
		}
	}
	return Decision{Allowed: false, Redirect: RoutePublic}
}

// RouteForPath maps a path to its route. Unknown paths report false.
func RouteForPath(path string) (Route, bool) {
	switch strings.TrimSuffix(path, "/") {
	case "":
		return RoutePublic, true
	case PathAuthenticated:
		return RouteAuthenticated, true
	case PathAdmin:
		return RouteAdminOnly, true
	}
	return RoutePublic, false
}

// Navigate resolves which route should render when the user asks for path.
// Unknown paths fall back to the public route, denied routes follow their
// redirect, and a signed-in user landing on the public page is sent on to
// the authenticated route.
func Navigate(path string, s session.Session) Route {
	route, _ := RouteForPath(path)

	d := Decide(route, s)
	if !d.Allowed {
		route = d.Redirect
	}

	if route == RoutePublic && s.Normalize().SignedIn() {
		return RouteAuthenticated
	}
	return route
}

// Path returns the canonical path of a route
func (r Route) Path() string {
	switch r {
	case RouteAuthenticated:
		return PathAuthenticated
	case RouteAdminOnly:
		return PathAdmin
	default:
		return PathPublic
	}
}

// String returns the route name
func (r Route) String() string {
	switch r {
	case RoutePublic:
		return "public"
	case RouteAuthenticated:
		return "authenticated"
	case RouteAdminOnly:
		return "adminOnly"
	default:
		return "unknown"
	}
}

// Routes lists every route in privilege order
func Routes() []Route {
	return []Route{RoutePublic, RouteAuthenticated, RouteAdminOnly}
}
