// ABOUTME: Client-side session state: bearer token, admin flag, and user id
// ABOUTME: Defines the Store contract shared by the access gate and API client

package session

// Session is the signed-in state of the local user. An empty Token means
// signed out.
type Session struct {
	Token   string
	IsAdmin bool
	UserID  string
}

// Store holds the process-wide session. Get must not fail on malformed
// stored data; implementations fall back to a signed-out or non-admin value.
type Store interface {
	Get() (Session, error)
	Set(Session) error
	Clear() error
}

// SignedIn reports whether a token is present
func (s Session) SignedIn() bool {
	return s.Token != ""
}

// Normalize enforces that the admin flag is only set alongside a token
func (s Session) Normalize() Session {
	if s.Token == "" {
		s.IsAdmin = false
	}
	return s
}

// Role returns a short label for display: guest, user, or admin
func (s Session) Role() string {
	s = s.Normalize()
	switch {
	case s.IsAdmin:
		return "admin"
	case s.SignedIn():
		return "user"
	default:
		return "guest"
	}
}
