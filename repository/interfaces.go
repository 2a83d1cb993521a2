// ABOUTME: Repository layer contracts for credential and session-state storage
// ABOUTME: Every store implements the same interface so the token service stays storage-agnostic

package repository

import (
	"context"
	"fmt"

	"github.com/MODSetter/SurfSense-sub002/models"
)

// CredentialRepository defines the interface for credential storage operations
type CredentialRepository interface {
	// GetCredential retrieves the current credential from storage
	GetCredential(ctx context.Context) (*models.Credential, error)

	// SaveCredential stores a new credential, replacing any existing one
	SaveCredential(ctx context.Context, cred *models.Credential) error

	// UpdateCredential updates an existing credential
	UpdateCredential(ctx context.Context, cred *models.Credential) error

	// DeleteCredential removes the current credential from storage
	DeleteCredential(ctx context.Context) error
}

// SessionStateRepository persists the post-login return path next to the
// credential, under the same storage medium.
type SessionStateRepository interface {
	SaveReturnPath(ctx context.Context, path string) error
	GetReturnPath(ctx context.Context) (string, error)
	ClearReturnPath(ctx context.Context) error
}

// Repository error definitions
var (
	ErrCredentialNotFound = fmt.Errorf("credential not found in storage")
	ErrInvalidCredential  = fmt.Errorf("invalid credential provided")
)
