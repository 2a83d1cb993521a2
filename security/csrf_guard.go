// ABOUTME: CSRF double-submit guard for state-changing requests
// ABOUTME: Mirrors the backend-issued cookie into the request header, never fabricates tokens

package security

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// CSRFGuard attaches the CSRF token cookie to outgoing mutating requests.
// The token itself is always minted by the backend; when the cookie is
// absent no header is sent and the backend's 403 drives a reissue.
type CSRFGuard struct {
	cookieName string
	headerName string
	jar        http.CookieJar
	logger     *slog.Logger
}

// NewCSRFGuard creates a guard reading tokens from the given cookie jar.
// The jar must be the same one the HTTP client uses, so that Set-Cookie
// responses from the token endpoint become visible here.
func NewCSRFGuard(cookieName, headerName string, jar http.CookieJar, logger *slog.Logger) *CSRFGuard {
	if logger == nil {
		logger = slog.Default()
	}

	return &CSRFGuard{
		cookieName: cookieName,
		headerName: headerName,
		jar:        jar,
		logger:     logger,
	}
}

// HeaderName returns the header the token is sent under.
func (g *CSRFGuard) HeaderName() string {
	return g.headerName
}

// RequiresToken reports whether the method needs CSRF protection.
func (g *CSRFGuard) RequiresToken(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}

// CurrentToken returns the token currently held in the cookie jar for the
// given URL, and whether one exists.
func (g *CSRFGuard) CurrentToken(u *url.URL) (string, bool) {
	if g.jar == nil || u == nil {
		return "", false
	}

	for _, cookie := range g.jar.Cookies(u) {
		if cookie.Name == g.cookieName && cookie.Value != "" {
			return cookie.Value, true
		}
	}
	return "", false
}

// Decorate sets the CSRF header for a mutating request when a token cookie
// is present. A header the caller already set wins, and no header is
// fabricated when the cookie is missing.
func (g *CSRFGuard) Decorate(method string, u *url.URL, headers http.Header) {
	if !g.RequiresToken(method) {
		return
	}
	if headers.Get(g.headerName) != "" {
		return
	}

	token, ok := g.CurrentToken(u)
	if !ok {
		g.logger.Debug("No CSRF token cookie available, sending request without header",
			"method", method)
		return
	}

	headers.Set(g.headerName, token)
}

// IsCSRFFailure reports whether a response represents a CSRF token failure
// rather than a plain permission denial.
func IsCSRFFailure(statusCode int, detail string) bool {
	if statusCode != http.StatusForbidden {
		return false
	}
	return strings.Contains(strings.ToLower(detail), "csrf")
}
