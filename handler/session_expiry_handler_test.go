package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type navigatorSpy struct {
	calls []string
}

func (n *navigatorSpy) navigate(loginPath string) {
	n.calls = append(n.calls, loginPath)
}

type failingCredentialRepo struct{}

func (failingCredentialRepo) GetCredential(ctx context.Context) (*models.Credential, error) {
	return nil, errors.New("disk failure")
}

func (failingCredentialRepo) SaveCredential(ctx context.Context, cred *models.Credential) error {
	return errors.New("disk failure")
}

func (failingCredentialRepo) UpdateCredential(ctx context.Context, cred *models.Credential) error {
	return errors.New("disk failure")
}

func (failingCredentialRepo) DeleteCredential(ctx context.Context) error {
	return errors.New("disk failure")
}

func seedCredential(t *testing.T, repo repository.CredentialRepository) {
	t.Helper()
	err := repo.SaveCredential(context.Background(), &models.Credential{
		AccessToken:  "access_token_1",
		RefreshToken: "refresh_token_1",
		TokenType:    "bearer",
		IssuedAt:     time.Now(),
	})
	require.NoError(t, err)
}

func TestSessionExpiryHandler_ClearsCredentialAndNavigates(t *testing.T) {
	repo := repository.NewMemoryCredentialRepository(testLogger())
	seedCredential(t, repo)
	spy := &navigatorSpy{}
	h := NewSessionExpiryHandler(repo, repo, spy.navigate, testLogger())

	err := h.HandleSessionExpiry(context.Background(), "/documents")

	require.NoError(t, err)
	assert.Equal(t, []string{"/login"}, spy.calls)

	_, err = repo.GetCredential(context.Background())
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)

	recorded, err := repo.GetReturnPath(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/documents", recorded)
}

func TestSessionExpiryHandler_ReturnPathFiltering(t *testing.T) {
	tests := map[string]struct {
		currentPath string
		wantStored  string
	}{
		"app_route_recorded": {
			currentPath: "/documents",
			wantStored:  "/documents",
		},
		"query_preserved_fragment_stripped": {
			currentPath: "/documents?page=2#section",
			wantStored:  "/documents?page=2",
		},
		"root_not_recorded": {
			currentPath: "/",
			wantStored:  "",
		},
		"empty_not_recorded": {
			currentPath: "",
			wantStored:  "",
		},
		"login_route_not_recorded": {
			currentPath: "/login",
			wantStored:  "",
		},
		"auth_route_not_recorded": {
			currentPath: "/auth/jwt/refresh",
			wantStored:  "",
		},
		"relative_path_not_recorded": {
			currentPath: "documents",
			wantStored:  "",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := repository.NewMemoryCredentialRepository(testLogger())
			seedCredential(t, repo)
			h := NewSessionExpiryHandler(repo, repo, nil, testLogger())

			err := h.HandleSessionExpiry(context.Background(), tc.currentPath)

			require.NoError(t, err)
			stored, err := repo.GetReturnPath(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.wantStored, stored)
		})
	}
}

func TestSessionExpiryHandler_MissingCredentialTolerated(t *testing.T) {
	repo := repository.NewMemoryCredentialRepository(testLogger())
	spy := &navigatorSpy{}
	h := NewSessionExpiryHandler(repo, repo, spy.navigate, testLogger())

	err := h.HandleSessionExpiry(context.Background(), "/documents")

	require.NoError(t, err)
	assert.Len(t, spy.calls, 1)
}

func TestSessionExpiryHandler_StorageFailureStillNavigates(t *testing.T) {
	spy := &navigatorSpy{}
	h := NewSessionExpiryHandler(failingCredentialRepo{}, nil, spy.navigate, testLogger())

	err := h.HandleSessionExpiry(context.Background(), "/documents")

	assert.Error(t, err)
	assert.Equal(t, []string{"/login"}, spy.calls, "Navigation happens even when cleanup fails")
}

func TestSessionExpiryHandler_NilCollaborators(t *testing.T) {
	repo := repository.NewMemoryCredentialRepository(testLogger())
	seedCredential(t, repo)
	h := NewSessionExpiryHandler(repo, nil, nil, testLogger())

	err := h.HandleSessionExpiry(context.Background(), "/documents")

	require.NoError(t, err)
	_, err = repo.GetCredential(context.Background())
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}
