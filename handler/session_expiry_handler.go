// ABOUTME: Terminal session expiry collaborator for the request pipeline
// ABOUTME: Clears credentials, records the return path, and navigates to login

package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MODSetter/SurfSense-sub002/domain"
	"github.com/MODSetter/SurfSense-sub002/repository"
)

// Navigator performs the jump to the login route once the session is gone.
// The CLI prints a login prompt; an embedding UI would navigate for real.
type Navigator func(loginPath string)

// SessionExpiryHandler is invoked when the pipeline exhausts authentication
// recovery. It clears the stored credential, records where the caller was
// headed so a fresh login can resume there, and hands control to the
// navigator. Auth routes are never recorded, preventing redirect loops.
type SessionExpiryHandler struct {
	credentialRepo repository.CredentialRepository
	sessionState   repository.SessionStateRepository
	navigate       Navigator
	logger         *slog.Logger
}

// NewSessionExpiryHandler creates the expiry handler. navigate may be nil
// when the embedding surface has no navigation.
func NewSessionExpiryHandler(
	credentialRepo repository.CredentialRepository,
	sessionState repository.SessionStateRepository,
	navigate Navigator,
	logger *slog.Logger,
) *SessionExpiryHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionExpiryHandler{
		credentialRepo: credentialRepo,
		sessionState:   sessionState,
		navigate:       navigate,
		logger:         logger,
	}
}

// HandleSessionExpiry clears the session and navigates to login. The
// navigation happens even when storage cleanup fails; the first storage
// error is returned for the caller's log.
func (h *SessionExpiryHandler) HandleSessionExpiry(ctx context.Context, currentPath string) error {
	h.logger.Info("Session expired, clearing stored credentials", "current_path", currentPath)

	var firstErr error
	if err := h.credentialRepo.DeleteCredential(ctx); err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
		h.logger.Error("Failed to clear stored credential", "error", err)
		firstErr = err
	}

	h.recordReturnPath(ctx, currentPath)

	if h.navigate != nil {
		h.navigate(domain.LoginPath)
	}

	return firstErr
}

func (h *SessionExpiryHandler) recordReturnPath(ctx context.Context, currentPath string) {
	if h.sessionState == nil || !domain.ShouldRecordReturnPath(currentPath) {
		return
	}

	path := domain.NormalizeReturnPath(currentPath)
	if err := h.sessionState.SaveReturnPath(ctx, path); err != nil {
		h.logger.Warn("Failed to record return path", "path", path, "error", err)
		return
	}

	h.logger.Debug("Return path recorded", "path", path)
}
