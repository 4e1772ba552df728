// Package service provides the calendar's business logic: registration, login
// and the per-user event list, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/atinyakov/DayKeeper/internal/models"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// CredentialRepository defines the persistence operations
// required by the authentication service.
type CredentialRepository interface {
	// FindUser returns the credential registered under email, if any.
	FindUser(ctx context.Context, email string) (*models.UserCredential, bool, error)
	// RegisterUser appends a credential. Returns models.ErrAlreadyExists
	// if the email is taken.
	RegisterUser(ctx context.Context, cred models.UserCredential) error
}

// SessionStore holds the identity of the logged-in user for one session.
type SessionStore interface {
	Set(ctx context.Context, id models.SessionIdentity) error
	Clear(ctx context.Context) error
}

// AuthService implements registration, login and logout.
type AuthService struct {
	repo     CredentialRepository
	verifier CredentialVerifier
	log      *zap.Logger
}

// NewAuthService constructs an AuthService. A nil verifier selects PlainVerifier.
func NewAuthService(repo CredentialRepository, verifier CredentialVerifier, log *zap.Logger) *AuthService {
	if verifier == nil {
		verifier = PlainVerifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{repo: repo, verifier: verifier, log: log}
}

// ValidateRegistration checks registration input before any store access.
func ValidateRegistration(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", models.ErrValidation, MinPasswordLength)
	}
	return nil
}

// ValidateLogin checks login input before any store access.
func ValidateLogin(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}
	return nil
}

// Register creates an account and logs it in on sess.
// It returns models.ErrValidation, models.ErrAlreadyExists or a store error.
func (s *AuthService) Register(ctx context.Context, sess SessionStore, email, password string) (models.SessionIdentity, error) {
	if err := ValidateRegistration(email, password); err != nil {
		return models.SessionIdentity{}, err
	}

	sealed, err := s.verifier.Seal(password)
	if err != nil {
		return models.SessionIdentity{}, err
	}

	if err := s.repo.RegisterUser(ctx, models.UserCredential{Email: email, Password: sealed}); err != nil {
		if !errors.Is(err, models.ErrAlreadyExists) {
			s.log.Error("register user failed", zap.String("email", email), zap.Error(err))
		}
		return models.SessionIdentity{}, err
	}

	id := models.SessionIdentity{Email: email}
	s.startSession(ctx, sess, id)
	s.log.Info("user registered", zap.String("email", email))
	return id, nil
}

// Login checks the credentials and stores the identity on sess. Unknown emails
// and wrong passwords both yield models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, sess SessionStore, email, password string) (models.SessionIdentity, error) {
	if err := ValidateLogin(email, password); err != nil {
		return models.SessionIdentity{}, err
	}

	cred, ok, err := s.repo.FindUser(ctx, email)
	if err != nil {
		s.log.Error("login lookup failed", zap.String("email", email), zap.Error(err))
		return models.SessionIdentity{}, err
	}
	if !ok || !s.verifier.Verify(cred.Password, password) {
		return models.SessionIdentity{}, models.ErrInvalidCredentials
	}

	id := models.SessionIdentity{Email: cred.Email}
	s.startSession(ctx, sess, id)
	s.log.Debug("login successful", zap.String("email", email))
	return id, nil
}

// Logout clears the identity from sess. The credential list is not touched.
func (s *AuthService) Logout(ctx context.Context, sess SessionStore) error {
	if err := sess.Clear(ctx); err != nil {
		s.log.Error("failed to clear session", zap.Error(err))
		return err
	}
	return nil
}

// startSession stores id on sess. A failing session store does not undo the login.
func (s *AuthService) startSession(ctx context.Context, sess SessionStore, id models.SessionIdentity) {
	if sess == nil {
		return
	}
	if err := sess.Set(ctx, id); err != nil {
		s.log.Warn("failed to store session identity", zap.String("email", id.Email), zap.Error(err))
	}
}
