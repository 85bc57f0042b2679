package entities

import "time"

// User is one dashboard account in the local user directory.
//
// Passwords are stored and compared as plain strings for parity with the
// system this replaces. The comparison itself is isolated behind
// security.CredentialVerifier so a hashed scheme can be swapped in without
// touching call sites.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the current signed-in user, minus the password. At most one
// session is stored at a time.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionFor derives a session from a user record.
func SessionFor(u User) Session {
	return Session{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}
