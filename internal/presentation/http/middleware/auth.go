package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/security"
)

// SessionCookieName is the http-only cookie carrying the session JWT.
const SessionCookieName = "drill_auth"

const sessionContextKey = "session"

// RequireAuth validates the session JWT from the drill_auth cookie or a
// Bearer header and stores the session on the gin context. Requests without a
// valid token get 401.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := security.ValidateJWT(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		session, ok := security.SessionFromClaims(claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetSession returns the authenticated session stored by RequireAuth.
func GetSession(c *gin.Context) (entities.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return entities.Session{}, false
	}
	session, ok := value.(entities.Session)
	return session, ok
}
