// Package security provides JWT session tokens, credential verification, and
// secure random generation utilities.
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
)

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SessionFromClaims extracts the signed-in user from JWT claims.
func SessionFromClaims(claims jwt.MapClaims) (entities.Session, bool) {
	userData, ok := claims["user"].(map[string]any)
	if !ok {
		return entities.Session{}, false
	}
	id, _ := userData["id"].(string)
	email, _ := userData["email"].(string)
	fullName, _ := userData["fullName"].(string)
	if id == "" || email == "" {
		return entities.Session{}, false
	}
	return entities.Session{ID: id, Email: email, FullName: fullName}, true
}

// GenerateSessionToken creates a JWT token for a signed-in dashboard user.
func GenerateSessionToken(session entities.Session, jwtSecret string, maxAge time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user": map[string]string{
			"id":       session.ID,
			"email":    session.Email,
			"fullName": session.FullName,
		},
		"iat": time.Now().UTC().Unix(),
		"exp": time.Now().UTC().Add(maxAge).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
