package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSecureToken generates a cryptographically secure random token suitable for URLs.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// Decoy link vocabulary. Stems and TLDs rotate so drill links don't repeat a
// recognizable pattern across a campaign.
var (
	decoyStems = []string{"secure-verify", "account-update", "security-check", "verify-now", "urgent-action"}
	decoyTLDs  = []string{"com", "net", "org"}
)

const decoyIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateDecoyLink builds a fresh plausible-looking phishing URL of the form
// https://{stem}-{id}.{tld}/verify.
func GenerateDecoyLink() string {
	stem := decoyStems[secureIntn(len(decoyStems))]
	tld := decoyTLDs[secureIntn(len(decoyTLDs))]

	id := make([]byte, 6)
	for i := range id {
		id[i] = decoyIDAlphabet[secureIntn(len(decoyIDAlphabet))]
	}

	return fmt.Sprintf("https://%s-%s.%s/verify", stem, string(id), tld)
}

func secureIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand failing means the platform is broken; fall back to 0
		// rather than crash link generation.
		return 0
	}
	return int(v.Int64())
}
