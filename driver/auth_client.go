// ABOUTME: Authentication endpoints client for login, refresh, CSRF, and logout
// ABOUTME: Talks to the fastapi-users JWT routes outside the retry pipeline

package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/security"
	"github.com/MODSetter/SurfSense-sub002/utils"
)

// Sentinel errors for authentication outcomes the caller branches on.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrRefreshRejected    = errors.New("refresh token rejected")
)

// AuthEndpoints holds the backend authentication route paths.
type AuthEndpoints struct {
	LoginPath   string
	RefreshPath string
	LogoutPath  string
	CSRFPath    string
}

// DefaultAuthEndpoints returns the standard fastapi-users JWT routes.
func DefaultAuthEndpoints() AuthEndpoints {
	return AuthEndpoints{
		LoginPath:   "/auth/jwt/login",
		RefreshPath: "/auth/jwt/refresh",
		LogoutPath:  "/auth/jwt/logout",
		CSRFPath:    "/auth/csrf",
	}
}

// AuthClient performs authentication calls directly against the transport.
// Refresh deliberately bypasses the request pipeline: routing it through the
// pipeline's own 401 handling would recurse into another refresh.
type AuthClient struct {
	api       *APIClient
	endpoints AuthEndpoints
	guard     *security.CSRFGuard
	logger    *slog.Logger
}

// NewAuthClient creates an authentication client on top of an APIClient.
// Zero-value endpoint paths fall back to the defaults.
func NewAuthClient(api *APIClient, endpoints AuthEndpoints, guard *security.CSRFGuard, logger *slog.Logger) *AuthClient {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultAuthEndpoints()
	if endpoints.LoginPath == "" {
		endpoints.LoginPath = defaults.LoginPath
	}
	if endpoints.RefreshPath == "" {
		endpoints.RefreshPath = defaults.RefreshPath
	}
	if endpoints.LogoutPath == "" {
		endpoints.LogoutPath = defaults.LogoutPath
	}
	if endpoints.CSRFPath == "" {
		endpoints.CSRFPath = defaults.CSRFPath
	}

	return &AuthClient{
		api:       api,
		endpoints: endpoints,
		guard:     guard,
		logger:    logger,
	}
}

// Login exchanges a username and password for a token pair. The backend
// expects an OAuth2 password form, not JSON.
func (c *AuthClient) Login(ctx context.Context, username, password string) (*models.TokenPairResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	headers := http.Header{}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	c.decorate(http.MethodPost, c.endpoints.LoginPath, headers)

	resp, err := c.api.Do(ctx, &APIRequest{
		Method:  http.MethodPost,
		Path:    c.endpoints.LoginPath,
		Headers: headers,
		RawBody: []byte(form.Encode()),
	})
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		if detail := DetailMessage(resp.Body); detail != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, detail)
		}
		return nil, ErrInvalidCredentials
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("login failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	tokenResp, err := parseTokenPair(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Login succeeded", "username", username)
	return tokenResp, nil
}

// Refresh exchanges a refresh token for a new token pair. A 401 or 403 means
// the refresh token itself is no longer honored.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenPairResponse, error) {
	headers := http.Header{}
	c.decorate(http.MethodPost, c.endpoints.RefreshPath, headers)

	resp, err := c.api.Do(ctx, &APIRequest{
		Method:  http.MethodPost,
		Path:    c.endpoints.RefreshPath,
		Headers: headers,
		Body:    map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if detail := DetailMessage(resp.Body); detail != "" {
			return nil, fmt.Errorf("%w: %s", ErrRefreshRejected, detail)
		}
		return nil, ErrRefreshRejected
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("refresh failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	tokenResp, err := parseTokenPair(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Token refresh succeeded")
	return tokenResp, nil
}

// IssueCSRFToken asks the backend to set a fresh CSRF cookie. The cookie
// lands in the shared jar; nothing is returned beyond success or failure.
func (c *AuthClient) IssueCSRFToken(ctx context.Context) error {
	resp, err := c.api.Do(ctx, &APIRequest{
		Method: http.MethodGet,
		Path:   c.endpoints.CSRFPath,
	})
	if err != nil {
		return fmt.Errorf("csrf token request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("csrf token request failed with status %d", resp.StatusCode)
	}

	c.logger.Debug("CSRF token issued")
	return nil
}

// Logout invalidates the session on the backend. A 401 counts as success
// since the session is already gone.
func (c *AuthClient) Logout(ctx context.Context, accessToken string) error {
	headers := http.Header{}
	if accessToken != "" {
		headers.Set("Authorization", "Bearer "+accessToken)
	}
	c.decorate(http.MethodPost, c.endpoints.LogoutPath, headers)

	resp, err := c.api.Do(ctx, &APIRequest{
		Method:  http.MethodPost,
		Path:    c.endpoints.LogoutPath,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}

	if !resp.IsSuccess() && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("logout failed with status %d", resp.StatusCode)
	}

	c.logger.Info("Logout completed", "status_code", resp.StatusCode)
	return nil
}

// decorate attaches the CSRF header when a cookie is available. Resolution
// failures are left for the Do call to report.
func (c *AuthClient) decorate(method, path string, headers http.Header) {
	if c.guard == nil {
		return
	}
	target, err := utils.ResolveAgainstBase(c.api.BaseURL(), path)
	if err != nil {
		return
	}
	u, err := url.Parse(target)
	if err != nil {
		return
	}
	c.guard.Decorate(method, u, headers)
}

// parseTokenPair decodes a token response body.
func parseTokenPair(body []byte) (*models.TokenPairResponse, error) {
	var tokenResp models.TokenPairResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, errors.New("token response is missing access_token")
	}
	return &tokenResp, nil
}
