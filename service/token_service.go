// ABOUTME: Single-flight credential refresh coordination
// ABOUTME: Concurrent recoveries share one refresh call and observe one outcome

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/repository"
	"github.com/MODSetter/SurfSense-sub002/utils"
)

// AuthDriver performs the authentication calls the service layer depends on.
type AuthDriver interface {
	Login(ctx context.Context, username, password string) (*models.TokenPairResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPairResponse, error)
	IssueCSRFToken(ctx context.Context) error
	Logout(ctx context.Context, accessToken string) error
}

// ErrNoRefreshToken reports that a refresh was requested while no refresh
// token is stored. No network call happens in that case.
var ErrNoRefreshToken = errors.New("no refresh token available")

// TokenService coordinates credential refresh across concurrent callers.
// Arbitrarily many requests can trip a 401 at once; the single-flight group
// guarantees one refresh network call and one storage write per flight.
type TokenService struct {
	credentialRepo repository.CredentialRepository
	authDriver     AuthDriver
	logger         *slog.Logger
	monitor        *utils.Monitor

	refreshGroup *singleflight.Group
}

// NewTokenService creates a token service bound to one credential store.
func NewTokenService(
	credentialRepo repository.CredentialRepository,
	authDriver AuthDriver,
	monitor *utils.Monitor,
	logger *slog.Logger,
) *TokenService {
	if logger == nil {
		logger = slog.Default()
	}
	if monitor == nil {
		monitor = utils.NewMonitor(logger, false)
	}

	return &TokenService{
		credentialRepo: credentialRepo,
		authDriver:     authDriver,
		logger:         logger,
		monitor:        monitor,
		refreshGroup:   &singleflight.Group{},
	}
}

// CurrentCredential returns the stored credential, or
// repository.ErrCredentialNotFound when none exists.
func (s *TokenService) CurrentCredential(ctx context.Context) (*models.Credential, error) {
	return s.credentialRepo.GetCredential(ctx)
}

// Refresh exchanges the stored refresh token for a new credential.
// staleAccessToken is the access token the caller saw rejected; when the
// store already holds a different, valid credential the refresh endpoint is
// not called again.
//
// Failure semantics: a rejected or failed refresh clears the stored
// credentials exactly once per flight. A context cancelled before the flight
// starts returns the context error without touching storage.
func (s *TokenService) Refresh(ctx context.Context, staleAccessToken string) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err, shared := s.refreshGroup.Do("token_refresh", func() (interface{}, error) {
		return s.performRefresh(ctx, staleAccessToken)
	})
	s.monitor.LogTokenRefresh(ctx, err == nil, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Refresh outcome shared with a concurrent caller")
	}

	return result.(*models.Credential), nil
}

func (s *TokenService) performRefresh(ctx context.Context, staleAccessToken string) (*models.Credential, error) {
	current, err := s.credentialRepo.GetCredential(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrNoRefreshToken
		}
		return nil, fmt.Errorf("credential storage access failed: %w", err)
	}

	// An earlier flight may already have replaced the credential the caller
	// saw rejected.
	if staleAccessToken != "" && current.AccessToken != staleAccessToken && current.IsValid() {
		s.logger.Info("Credential already refreshed by an earlier flight")
		return current, nil
	}

	if !current.HasRefreshToken() {
		return nil, ErrNoRefreshToken
	}

	s.logger.Info("Refreshing credential",
		"refresh_token", utils.MaskToken(current.RefreshToken))

	response, err := s.authDriver.Refresh(ctx, current.RefreshToken)
	if err != nil {
		s.clearCredentials(ctx)
		return nil, fmt.Errorf("credential refresh failed: %w", err)
	}

	refreshed := models.NewCredential(*response, current.RefreshToken)
	if err := s.credentialRepo.UpdateCredential(ctx, refreshed); err != nil {
		// The backend accepted the refresh; serving the in-memory credential
		// beats failing every pending request over a storage hiccup.
		s.logger.Warn("Refreshed credential could not be persisted", "error", err)
	}

	s.logger.Info("Credential refreshed",
		"access_token", utils.MaskToken(refreshed.AccessToken),
		"expires_at", refreshed.ExpiresAt)

	return refreshed, nil
}

func (s *TokenService) clearCredentials(ctx context.Context) {
	if err := s.credentialRepo.DeleteCredential(ctx); err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
		s.logger.Error("Failed to clear credentials after refresh failure", "error", err)
		return
	}
	s.logger.Info("Credentials cleared after refresh failure")
}

// TokenStatus reports the stored credential state for the status command.
type TokenStatus struct {
	Exists          bool          `json:"exists"`
	IsValid         bool          `json:"is_valid"`
	IsExpired       bool          `json:"is_expired"`
	HasRefreshToken bool          `json:"has_refresh_token"`
	ExpiresAt       time.Time     `json:"expires_at,omitempty"`
	TimeUntilExpiry time.Duration `json:"time_until_expiry,omitempty"`
	TokenType       string        `json:"token_type,omitempty"`
}

// Status inspects the stored credential without any network traffic.
func (s *TokenService) Status(ctx context.Context) (*TokenStatus, error) {
	cred, err := s.credentialRepo.GetCredential(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return &TokenStatus{}, nil
		}
		return nil, fmt.Errorf("credential storage access failed: %w", err)
	}

	return &TokenStatus{
		Exists:          true,
		IsValid:         cred.IsValid(),
		IsExpired:       cred.IsExpired(),
		HasRefreshToken: cred.HasRefreshToken(),
		ExpiresAt:       cred.ExpiresAt,
		TimeUntilExpiry: cred.TimeUntilExpiry(),
		TokenType:       cred.TokenType,
	}, nil
}
