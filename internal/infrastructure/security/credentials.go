package security

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier compares a login attempt against a stored credential.
// The store keeps whatever Hash produces, so swapping verifiers changes the
// at-rest format without touching the auth service.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(stored, attempt string) bool
}

// PlaintextVerifier stores passwords as-is. This matches the system this
// replaces and is the default; deployments wanting hashing swap in
// BcryptVerifier at startup.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextVerifier) Verify(stored, attempt string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) == 1
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (v BcryptVerifier) Verify(stored, attempt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)) == nil
}
