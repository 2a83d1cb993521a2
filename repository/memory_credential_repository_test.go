// ABOUTME: Tests for the in-memory CredentialRepository implementation
// ABOUTME: Defines the contract shared by all credential storage backends

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/MODSetter/SurfSense-sub002/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCredentialRepository_GetCredential(t *testing.T) {
	tests := map[string]struct {
		setupFunc    func() CredentialRepository
		validateFunc func(*testing.T, *models.Credential, error)
	}{
		"valid_credential_exists": {
			setupFunc: func() CredentialRepository {
				repo := NewMemoryCredentialRepository()
				_ = repo.SaveCredential(context.Background(), &models.Credential{
					AccessToken:  "test_access_token",
					RefreshToken: "test_refresh_token",
					TokenType:    "bearer",
					ExpiresAt:    time.Now().Add(1 * time.Hour),
					IssuedAt:     time.Now(),
				})
				return repo
			},
			validateFunc: func(t *testing.T, cred *models.Credential, err error) {
				require.NoError(t, err)
				assert.NotNil(t, cred)
				assert.NotEmpty(t, cred.AccessToken)
				assert.NotEmpty(t, cred.RefreshToken)
			},
		},
		"no_credential_exists": {
			setupFunc: func() CredentialRepository {
				return NewMemoryCredentialRepository()
			},
			validateFunc: func(t *testing.T, cred *models.Credential, err error) {
				require.ErrorIs(t, err, ErrCredentialNotFound)
				assert.Nil(t, cred)
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := tc.setupFunc()
			ctx := context.Background()

			cred, err := repo.GetCredential(ctx)
			tc.validateFunc(t, cred, err)
		})
	}
}

func TestMemoryCredentialRepository_SaveCredential(t *testing.T) {
	tests := map[string]struct {
		credential    *models.Credential
		expectedError bool
	}{
		"valid_credential": {
			credential: &models.Credential{
				AccessToken:  "test_access_token",
				RefreshToken: "test_refresh_token",
				TokenType:    "bearer",
				ExpiresAt:    time.Now().Add(1 * time.Hour),
				IssuedAt:     time.Now(),
			},
			expectedError: false,
		},
		"nil_credential": {
			credential:    nil,
			expectedError: true,
		},
		"empty_access_token": {
			credential: &models.Credential{
				AccessToken:  "",
				RefreshToken: "test_refresh_token",
				TokenType:    "bearer",
			},
			expectedError: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewMemoryCredentialRepository()
			ctx := context.Background()

			err := repo.SaveCredential(ctx, tc.credential)

			if tc.expectedError {
				require.ErrorIs(t, err, ErrInvalidCredential)
			} else {
				require.NoError(t, err)

				saved, err := repo.GetCredential(ctx)
				require.NoError(t, err)
				assert.Equal(t, tc.credential.AccessToken, saved.AccessToken)
				assert.Equal(t, tc.credential.RefreshToken, saved.RefreshToken)
			}
		})
	}
}

func TestMemoryCredentialRepository_UpdateCredential(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	initial := &models.Credential{
		AccessToken:  "initial_access_token",
		RefreshToken: "initial_refresh_token",
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(1 * time.Hour),
		IssuedAt:     time.Now(),
	}
	require.NoError(t, repo.SaveCredential(ctx, initial))

	updated := &models.Credential{
		AccessToken:  "updated_access_token",
		RefreshToken: "initial_refresh_token",
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(1 * time.Hour),
		IssuedAt:     time.Now(),
	}
	require.NoError(t, repo.UpdateCredential(ctx, updated))

	retrieved, err := repo.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "updated_access_token", retrieved.AccessToken)
	assert.Equal(t, "initial_refresh_token", retrieved.RefreshToken)
}

func TestMemoryCredentialRepository_DeleteCredential(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveCredential(ctx, &models.Credential{
		AccessToken:  "test_access_token",
		RefreshToken: "test_refresh_token",
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(1 * time.Hour),
		IssuedAt:     time.Now(),
	}))

	require.NoError(t, repo.DeleteCredential(ctx))

	_, err := repo.GetCredential(ctx)
	require.ErrorIs(t, err, ErrCredentialNotFound)

	// Deleting again is a no-op
	require.NoError(t, repo.DeleteCredential(ctx))
}

func TestMemoryCredentialRepository_CopySemantics(t *testing.T) {
	// Mutating the credential after save must not leak into the store
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	cred := &models.Credential{
		AccessToken:  "original_token",
		RefreshToken: "refresh_token",
		TokenType:    "bearer",
	}
	require.NoError(t, repo.SaveCredential(ctx, cred))

	cred.AccessToken = "mutated_after_save"

	saved, err := repo.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original_token", saved.AccessToken)

	saved.AccessToken = "mutated_after_get"

	again, err := repo.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original_token", again.AccessToken)
}

func TestMemoryCredentialRepository_ReturnPath(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	path, err := repo.GetReturnPath(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)

	require.NoError(t, repo.SaveReturnPath(ctx, "/dashboard/documents?page=2"))

	path, err = repo.GetReturnPath(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/documents?page=2", path)

	require.NoError(t, repo.ClearReturnPath(ctx))

	path, err = repo.GetReturnPath(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)
}
