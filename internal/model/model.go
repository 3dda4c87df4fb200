// Package model defines domain entities used by the session, store and services.
package model

import "time"

// Note is a single user note. ID and Date are assigned by the server.
type Note struct {
	ID      string    // server-assigned, immutable; empty while pending creation
	Title   string
	Content string
	Date    time.Time // server timestamp
}

// Persisted reports whether the note carries a server-assigned id.
func (n Note) Persisted() bool { return n.ID != "" }

// Registration is the payload for creating an account.
type Registration struct {
	Username string
	Email    string
	Password string
}

// Credentials identify a user at login. Either Username or Email may be set.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// Token is an issued access token with an optional expiry hint.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time // zero when unknown (opaque token)
}

// State is the derived authentication state of a session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}
