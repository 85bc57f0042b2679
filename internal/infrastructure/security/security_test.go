package security

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	session := entities.Session{ID: "1", Email: "admin@example.com", FullName: "Admin User"}

	token, err := GenerateSessionToken(session, "test-secret", 24*time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)

	got, ok := SessionFromClaims(claims)
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.Email, got.Email)
	assert.Equal(t, session.FullName, got.FullName)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken(entities.Session{ID: "1", Email: "a@b.c"}, "secret-a", time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestGenerateDecoyLinkShape(t *testing.T) {
	shape := regexp.MustCompile(`^https://(secure-verify|account-update|security-check|verify-now|urgent-action)-[a-z0-9]{6}\.(com|net|org)/verify$`)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		link := GenerateDecoyLink()
		assert.Regexp(t, shape, link)
		seen[link] = struct{}{}
	}
	// Random ids should vary across a batch.
	assert.Greater(t, len(seen), 1)
}

func TestCredentialVerifiers(t *testing.T) {
	verifiers := map[string]CredentialVerifier{
		"plaintext": PlaintextVerifier{},
		"bcrypt":    BcryptVerifier{Cost: 4},
	}

	for name, v := range verifiers {
		t.Run(name, func(t *testing.T) {
			stored, err := v.Hash("password")
			require.NoError(t, err)
			assert.True(t, v.Verify(stored, "password"))
			assert.False(t, v.Verify(stored, "Password"))
			assert.False(t, v.Verify(stored, ""))
		})
	}
}
