// ABOUTME: In-memory CredentialRepository implementation
// ABOUTME: Default store for single-process use and the baseline for tests

package repository

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MODSetter/SurfSense-sub002/models"
)

// MemoryCredentialRepository implements CredentialRepository with simple
// mutex-guarded process memory. Credentials do not survive a restart.
type MemoryCredentialRepository struct {
	mu         sync.RWMutex
	credential *models.Credential
	returnPath string
	logger     *slog.Logger
}

// NewMemoryCredentialRepository creates an empty in-memory repository
func NewMemoryCredentialRepository(logger *slog.Logger) *MemoryCredentialRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryCredentialRepository{logger: logger}
}

// GetCredential retrieves the current credential
func (r *MemoryCredentialRepository) GetCredential(ctx context.Context) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.credential == nil {
		return nil, ErrCredentialNotFound
	}
	copied := *r.credential
	return &copied, nil
}

// SaveCredential stores a credential, replacing any existing one
func (r *MemoryCredentialRepository) SaveCredential(ctx context.Context, cred *models.Credential) error {
	if cred == nil || cred.AccessToken == "" {
		return ErrInvalidCredential
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *cred
	r.credential = &copied
	return nil
}

// UpdateCredential updates an existing credential
func (r *MemoryCredentialRepository) UpdateCredential(ctx context.Context, cred *models.Credential) error {
	return r.SaveCredential(ctx, cred)
}

// DeleteCredential removes the current credential
func (r *MemoryCredentialRepository) DeleteCredential(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.credential = nil
	return nil
}

// SaveReturnPath stores the post-login return path
func (r *MemoryCredentialRepository) SaveReturnPath(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.returnPath = path
	return nil
}

// GetReturnPath retrieves the stored return path, empty when none is set
func (r *MemoryCredentialRepository) GetReturnPath(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.returnPath, nil
}

// ClearReturnPath removes the stored return path
func (r *MemoryCredentialRepository) ClearReturnPath(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.returnPath = ""
	return nil
}
