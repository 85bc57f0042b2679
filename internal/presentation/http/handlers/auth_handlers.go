package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/application/services"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/security"
	"github.com/mockdrill/mockdrill-go/internal/presentation/http/middleware"
)

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService   *services.AuthService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
	jwtSecret     string
	sessionMaxAge time.Duration
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, jwtSecret string, sessionMaxAge time.Duration) *AuthHandlers {
	return &AuthHandlers{
		authService:   authService,
		logger:        logger,
		perfTracker:   perfTracker,
		jwtSecret:     jwtSecret,
		sessionMaxAge: sessionMaxAge,
	}
}

// PostLogin handles POST /api/v1/auth/login
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_login_request")
	defer marker.Complete()

	var loginReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		h.logger.Auth().Error("Login request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	session, err := h.authService.Login(loginReq.Email, loginReq.Password)
	if err != nil {
		marker.SetSuccess(false)
		respondError(c, err)
		return
	}

	token, err := security.GenerateSessionToken(session, h.jwtSecret, h.sessionMaxAge)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	h.setSessionCookie(c, token)
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": session})
}

// PostSignup handles POST /api/v1/auth/signup
func (h *AuthHandlers) PostSignup(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_signup_request")
	defer marker.Complete()

	var signupReq struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		FullName string `json:"fullName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&signupReq); err != nil {
		h.logger.Auth().Error("Signup request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	session, err := h.authService.Signup(signupReq.Email, signupReq.Password, signupReq.FullName)
	if err != nil {
		marker.SetSuccess(false)
		respondError(c, err)
		return
	}

	token, err := security.GenerateSessionToken(session, h.jwtSecret, h.sessionMaxAge)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	h.setSessionCookie(c, token)
	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": session})
}

// PostResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandlers) PostResetPassword(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_reset_password_request")
	defer marker.Complete()

	var resetReq struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&resetReq); err != nil {
		h.logger.Auth().Error("Reset password request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.authService.ResetPassword(resetReq.Email); err != nil {
		marker.SetSuccess(false)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset email sent"})
}

// PostLogout handles POST /api/v1/auth/logout
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	if err := h.authService.Logout(); err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetStatus handles GET /api/v1/auth/status - reports the current session
// without requiring the auth middleware.
func (h *AuthHandlers) GetStatus(c *gin.Context) {
	session, err := h.authService.CurrentSession()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": session})
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(
		middleware.SessionCookieName,
		token,
		int(h.sessionMaxAge.Seconds()),
		"/",
		"",
		false, // secure (set to true in production)
		true,  // httpOnly
	)
}
