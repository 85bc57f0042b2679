// Package services provides application-level orchestration services
package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mockdrill/mockdrill-go/internal/domain/entities"
	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/email"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/messaging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/logging"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/observability/performance"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/persistence"
	"github.com/mockdrill/mockdrill-go/internal/infrastructure/security"
)

// AuthService handles the local user directory and the single active session.
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	store       *persistence.Store
	verifier    security.CredentialVerifier
	mailer      email.Service
	baseURL     string
}

// NewAuthService creates a new authentication service.
func NewAuthService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, store *persistence.Store, verifier security.CredentialVerifier, mailer email.Service, baseURL string) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
		store:       store,
		verifier:    verifier,
		mailer:      mailer,
		baseURL:     baseURL,
	}
}

// SeedDefaultUser creates the default admin account when the user directory
// is empty. Called once at startup.
func (a *AuthService) SeedDefaultUser(seedEmail, seedPassword, seedName string) error {
	users, err := a.store.GetAllUsers()
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	stored, err := a.verifier.Hash(seedPassword)
	if err != nil {
		return err
	}
	seed := entities.User{
		ID:        "1",
		Email:     seedEmail,
		Password:  stored,
		FullName:  seedName,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AppendUser(seed); err != nil {
		return err
	}
	a.logger.Auth().Info("seeded default user", "email", seedEmail)
	return nil
}

// Signup registers a new account and signs it in.
func (a *AuthService) Signup(emailAddr, password, fullName string) (entities.Session, error) {
	marker := a.perfTracker.StartOperation("auth_signup")
	defer marker.Complete()

	emailAddr = strings.TrimSpace(emailAddr)
	if !messaging.ValidEmail(emailAddr) || password == "" || strings.TrimSpace(fullName) == "" {
		marker.SetSuccess(false)
		return entities.Session{}, fmt.Errorf("%w: email, password, and full name are required", errs.ErrValidation)
	}

	stored, err := a.verifier.Hash(password)
	if err != nil {
		marker.SetError(err)
		return entities.Session{}, err
	}

	user := entities.User{
		ID:        security.GenerateULID(),
		Email:     emailAddr,
		Password:  stored,
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AppendUser(user); err != nil {
		marker.SetError(err)
		a.logger.LogAuthOperation("signup", emailAddr, false)
		return entities.Session{}, err
	}

	session := entities.SessionFor(user)
	if err := a.store.SetSession(session); err != nil {
		marker.SetError(err)
		return entities.Session{}, err
	}

	// Welcome email is best-effort; signup succeeds regardless.
	if err := a.mailer.SendWelcomeEmail(user.Email, user.FullName, a.baseURL); err != nil {
		a.logger.Auth().Warn("welcome email failed", "email", user.Email, "error", err)
	}

	marker.SetSuccess(true)
	a.logger.LogAuthOperation("signup", emailAddr, true)
	return session, nil
}

// Login verifies credentials and records the session. Unknown emails return
// ErrNotFound; wrong passwords return ErrInvalidCredential.
func (a *AuthService) Login(emailAddr, password string) (entities.Session, error) {
	marker := a.perfTracker.StartOperation("auth_login")
	defer marker.Complete()

	user, err := a.store.FindUserByEmail(strings.TrimSpace(emailAddr))
	if err != nil {
		marker.SetSuccess(false)
		a.logger.LogAuthOperation("login", emailAddr, false)
		return entities.Session{}, err
	}

	if !a.verifier.Verify(user.Password, password) {
		marker.SetSuccess(false)
		a.logger.LogAuthOperation("login", emailAddr, false)
		return entities.Session{}, errs.ErrInvalidCredential
	}

	session := entities.SessionFor(user)
	if err := a.store.SetSession(session); err != nil {
		marker.SetError(err)
		return entities.Session{}, err
	}

	marker.SetSuccess(true)
	a.logger.LogAuthOperation("login", emailAddr, true)
	return session, nil
}

// ResetPassword looks up the account and sends a password reset email.
// Unknown emails return ErrNotFound so the dashboard can tell the operator.
func (a *AuthService) ResetPassword(emailAddr string) error {
	marker := a.perfTracker.StartOperation("auth_reset_password")
	defer marker.Complete()

	user, err := a.store.FindUserByEmail(strings.TrimSpace(emailAddr))
	if err != nil {
		marker.SetSuccess(false)
		a.logger.LogAuthOperation("reset_password", emailAddr, false)
		return err
	}

	resetURL := a.baseURL + "/reset-password?email=" + url.QueryEscape(user.Email)
	if err := a.mailer.SendPasswordResetEmail(user.Email, user.FullName, resetURL); err != nil {
		marker.SetError(err)
		a.logger.LogAuthOperation("reset_password", emailAddr, false)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	marker.SetSuccess(true)
	a.logger.LogAuthOperation("reset_password", emailAddr, true)
	return nil
}

// Logout clears the active session. Logging out while signed out is a no-op.
func (a *AuthService) Logout() error {
	if err := a.store.ClearSession(); err != nil {
		return err
	}
	a.logger.Auth().Info("session cleared")
	return nil
}

// CurrentSession returns the signed-in user, or ErrNotFound.
func (a *AuthService) CurrentSession() (entities.Session, error) {
	return a.store.GetSession()
}

// IsAuthenticated reports whether anyone is signed in.
func (a *AuthService) IsAuthenticated() bool {
	_, err := a.store.GetSession()
	return err == nil
}
