package session

import "github.com/aubattle/battle-client/identity"

// Status enumerates the authentication states the client can be in.
// Exactly one holds at any time.
type Status string

const (
	// StatusRestoring is the boot state while the persisted session is
	// being examined.
	StatusRestoring Status = "restoring"
	// StatusUnauthenticated means no usable session exists.
	StatusUnauthenticated Status = "unauthenticated"
	// StatusAuthenticated means a credential and identity are loaded.
	StatusAuthenticated Status = "authenticated"
)

// State is the manager's externally visible snapshot. Identity and
// Credential are only meaningful while Status is StatusAuthenticated.
type State struct {
	Status     Status
	Identity   identity.Identity
	Credential string
	// Stale is set when the session was restored from the local cache and
	// the background profile refresh could not reach the backend. The
	// session stays valid; callers may surface an offline indicator.
	Stale bool
}

// Authenticated reports whether a session is established.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Listener receives every state change, in order, on the mutating
// goroutine. Listeners run outside the manager's lock and may read the
// manager, but must not block.
type Listener func(State)
