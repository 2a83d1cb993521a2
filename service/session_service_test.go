package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MODSetter/SurfSense-sub002/domain"
	"github.com/MODSetter/SurfSense-sub002/driver"
	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/repository"
)

type sessionHarness struct {
	authDriver *fakeAuthDriver
	repo       *repository.MemoryCredentialRepository
	service    *SessionService
}

func newSessionHarness(t *testing.T, authDriver *fakeAuthDriver, backend http.Handler) *sessionHarness {
	t.Helper()

	logger := testLogger()
	if backend == nil {
		backend = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{}`)
		})
	}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	api := driver.NewAPIClient(server.URL, 5*time.Second, logger)
	repo := repository.NewMemoryCredentialRepository(logger)
	tokens := NewTokenService(repo, authDriver, nil, logger)
	pipeline := NewPipeline(api, tokens, nil, nil, nil, nil, nil, logger)
	service := NewSessionService(authDriver, repo, repo, pipeline, nil, logger)

	return &sessionHarness{authDriver: authDriver, repo: repo, service: service}
}

func identityBackend(t *testing.T, wantToken string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{}`)
			return
		}
		if wantToken != "" {
			assert.Equal(t, "Bearer "+wantToken, r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "usr_1", "email": "dev@example.com", "is_active": true, "is_superuser": false, "is_verified": true}`)
	})
}

func TestSessionService_Login_Success(t *testing.T) {
	authDriver := &fakeAuthDriver{
		loginResponse: &models.TokenPairResponse{
			AccessToken:  "access_token_1",
			RefreshToken: "refresh_token_1",
			TokenType:    "bearer",
		},
	}
	h := newSessionHarness(t, authDriver, identityBackend(t, "access_token_1"))

	user, returnPath, err := h.service.Login(context.Background(), "dev@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "usr_1", user.ID)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.Empty(t, returnPath)
	assert.Equal(t, 1, authDriver.loginCalls)
	assert.Equal(t, 1, authDriver.csrfCalls, "Login bootstraps the CSRF cookie")

	stored, err := h.repo.GetCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access_token_1", stored.AccessToken)
	assert.Equal(t, "refresh_token_1", stored.RefreshToken)
}

func TestSessionService_Login_InvalidCredentials(t *testing.T) {
	authDriver := &fakeAuthDriver{
		loginErr: fmt.Errorf("%w: LOGIN_BAD_CREDENTIALS", driver.ErrInvalidCredentials),
	}
	h := newSessionHarness(t, authDriver, nil)

	user, _, err := h.service.Login(context.Background(), "dev@example.com", "wrongpassword")

	assert.Nil(t, user)
	assert.True(t, domain.IsAuthenticationError(err))

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid username or password.", apiErr.Message)
	assert.Equal(t, 0, authDriver.csrfCalls)

	_, err = h.repo.GetCredential(context.Background())
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}

func TestSessionService_Login_ValidationShortCircuits(t *testing.T) {
	tests := map[string]struct {
		username  string
		password  string
		wantIssue string
	}{
		"empty_username": {
			username:  "",
			password:  "password123",
			wantIssue: "username is required",
		},
		"invalid_email": {
			username:  "not-an-email",
			password:  "password123",
			wantIssue: "username must be a valid email address",
		},
		"short_password": {
			username:  "dev@example.com",
			password:  "short",
			wantIssue: "password must be at least 8 characters long",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			authDriver := &fakeAuthDriver{}
			h := newSessionHarness(t, authDriver, nil)

			user, _, err := h.service.Login(context.Background(), tc.username, tc.password)

			assert.Nil(t, user)
			assert.True(t, domain.IsValidationError(err))

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Contains(t, apiErr.FieldIssues, tc.wantIssue)
			assert.Equal(t, 0, authDriver.loginCalls, "Invalid payloads never reach the network")
		})
	}
}

func TestSessionService_Login_IdentityFetchFailure(t *testing.T) {
	authDriver := &fakeAuthDriver{
		loginResponse: &models.TokenPairResponse{AccessToken: "access_token_1", TokenType: "bearer"},
	}
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail": "identity backend down"}`)
	})
	h := newSessionHarness(t, authDriver, backend)

	user, _, err := h.service.Login(context.Background(), "dev@example.com", "password123")

	assert.Nil(t, user)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.ErrorKindGeneric, apiErr.Kind)

	// The tokens were accepted; only the identity lookup failed.
	stored, repoErr := h.repo.GetCredential(context.Background())
	require.NoError(t, repoErr)
	assert.Equal(t, "access_token_1", stored.AccessToken)
}

func TestSessionService_Login_ReturnsRecordedPath(t *testing.T) {
	authDriver := &fakeAuthDriver{
		loginResponse: &models.TokenPairResponse{AccessToken: "access_token_1", TokenType: "bearer"},
	}
	h := newSessionHarness(t, authDriver, identityBackend(t, ""))
	require.NoError(t, h.repo.SaveReturnPath(context.Background(), "/documents?page=2"))

	_, returnPath, err := h.service.Login(context.Background(), "dev@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, "/documents?page=2", returnPath)

	// Consuming the path clears it for the next session.
	remaining, err := h.repo.GetReturnPath(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSessionService_Logout_Success(t *testing.T) {
	authDriver := &fakeAuthDriver{}
	h := newSessionHarness(t, authDriver, nil)
	seedCredential(t, h.repo, "access_token_1", "refresh_token_1")
	require.NoError(t, h.repo.SaveReturnPath(context.Background(), "/documents"))

	err := h.service.Logout(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, authDriver.logoutCalls)
	assert.Equal(t, "access_token_1", authDriver.lastAccessToken)

	_, err = h.repo.GetCredential(context.Background())
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)

	remaining, err := h.repo.GetReturnPath(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSessionService_Logout_BackendFailureStillClearsLocal(t *testing.T) {
	authDriver := &fakeAuthDriver{logoutErr: fmt.Errorf("connection refused")}
	h := newSessionHarness(t, authDriver, nil)
	seedCredential(t, h.repo, "access_token_1", "refresh_token_1")

	err := h.service.Logout(context.Background())

	require.NoError(t, err, "Backend revocation failure must not keep the local session alive")

	_, err = h.repo.GetCredential(context.Background())
	assert.ErrorIs(t, err, repository.ErrCredentialNotFound)
}

func TestSessionService_Logout_NoActiveSession(t *testing.T) {
	authDriver := &fakeAuthDriver{}
	h := newSessionHarness(t, authDriver, nil)

	err := h.service.Logout(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, authDriver.logoutCalls)
}

func TestSessionService_CurrentUser(t *testing.T) {
	authDriver := &fakeAuthDriver{}
	h := newSessionHarness(t, authDriver, identityBackend(t, "access_token_1"))
	seedCredential(t, h.repo, "access_token_1", "refresh_token_1")

	user, err := h.service.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.True(t, user.IsVerified)
}
