// ABOUTME: Session lifecycle: login, logout, and identity lookup
// ABOUTME: Owns credential persistence around the auth driver calls

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MODSetter/SurfSense-sub002/domain"
	"github.com/MODSetter/SurfSense-sub002/driver"
	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/repository"
	"github.com/MODSetter/SurfSense-sub002/security"
	"github.com/MODSetter/SurfSense-sub002/utils"
)

const identityPath = "/users/me"

// SessionService drives the login and logout flows and keeps the stored
// credential in step with them.
type SessionService struct {
	authDriver     AuthDriver
	credentialRepo repository.CredentialRepository
	sessionState   repository.SessionStateRepository
	pipeline       *Pipeline
	validator      *security.RequestValidator
	logger         *slog.Logger
}

// NewSessionService creates the session service.
func NewSessionService(
	authDriver AuthDriver,
	credentialRepo repository.CredentialRepository,
	sessionState repository.SessionStateRepository,
	pipeline *Pipeline,
	validator *security.RequestValidator,
	logger *slog.Logger,
) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = security.NewRequestValidator()
	}

	return &SessionService{
		authDriver:     authDriver,
		credentialRepo: credentialRepo,
		sessionState:   sessionState,
		pipeline:       pipeline,
		validator:      validator,
		logger:         logger,
	}
}

// Login authenticates, persists the credential, and returns the session
// identity plus the recorded return path from a previous session expiry
// (empty when none was recorded).
func (s *SessionService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if err := s.validator.Validate(&models.LoginRequest{Username: username, Password: password}); err != nil {
		return nil, "", err
	}

	tokenResp, err := s.authDriver.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, driver.ErrInvalidCredentials) {
			apiErr := domain.NewAuthenticationError("Invalid username or password.")
			apiErr.Cause = err
			return nil, "", apiErr
		}
		return nil, "", domain.NewGenericError("Login failed.", err)
	}

	cred := models.NewCredential(*tokenResp, "")
	if err := s.credentialRepo.SaveCredential(ctx, cred); err != nil {
		return nil, "", domain.NewGenericError("Failed to persist the session credential.", err)
	}

	s.logger.Info("Session established",
		"username", username,
		"access_token", utils.MaskToken(cred.AccessToken))

	// Bootstrap the CSRF cookie so the first mutating request does not have
	// to go through the 403 recovery path.
	if err := s.authDriver.IssueCSRFToken(ctx); err != nil {
		s.logger.Warn("CSRF cookie bootstrap failed", "error", err)
	}

	var user models.User
	if err := s.pipeline.Get(ctx, identityPath, nil, &user); err != nil {
		return nil, "", err
	}

	returnPath := s.consumeReturnPath(ctx)

	return &user, returnPath, nil
}

// Logout revokes the session best-effort and always clears local state.
func (s *SessionService) Logout(ctx context.Context) error {
	cred, err := s.credentialRepo.GetCredential(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			s.clearSessionState(ctx)
			return nil
		}
		return fmt.Errorf("credential storage access failed: %w", err)
	}

	if err := s.authDriver.Logout(ctx, cred.AccessToken); err != nil {
		// Local state is cleared regardless; the backend session will lapse
		// on its own when revocation did not go through.
		s.logger.Warn("Backend logout failed", "error", err)
	}

	if err := s.credentialRepo.DeleteCredential(ctx); err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
		return fmt.Errorf("failed to clear stored credential: %w", err)
	}
	s.clearSessionState(ctx)

	s.logger.Info("Session closed")
	return nil
}

// CurrentUser fetches the identity of the active session.
func (s *SessionService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.pipeline.Get(ctx, identityPath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SessionService) consumeReturnPath(ctx context.Context) string {
	if s.sessionState == nil {
		return ""
	}

	returnPath, err := s.sessionState.GetReturnPath(ctx)
	if err != nil || returnPath == "" {
		return ""
	}
	if err := s.sessionState.ClearReturnPath(ctx); err != nil {
		s.logger.Warn("Failed to clear recorded return path", "error", err)
	}

	return domain.NormalizeReturnPath(returnPath)
}

func (s *SessionService) clearSessionState(ctx context.Context) {
	if s.sessionState == nil {
		return
	}
	if err := s.sessionState.ClearReturnPath(ctx); err != nil {
		s.logger.Warn("Failed to clear recorded return path", "error", err)
	}
}
