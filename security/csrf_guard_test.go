// ABOUTME: Tests for the CSRF double-submit guard
// ABOUTME: Covers header attachment rules and failure detection

package security

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJar(t *testing.T, rawURL, cookieName, value string) http.CookieJar {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	if value != "" {
		u, err := url.Parse(rawURL)
		require.NoError(t, err)
		jar.SetCookies(u, []*http.Cookie{{Name: cookieName, Value: value, Path: "/"}})
	}
	return jar
}

func TestCSRFGuard_RequiresToken(t *testing.T) {
	guard := NewCSRFGuard("surfsense_csrf_token", "X-CSRF-Token", nil, nil)

	tests := map[string]struct {
		method   string
		expected bool
	}{
		"post":    {method: http.MethodPost, expected: true},
		"put":     {method: http.MethodPut, expected: true},
		"delete":  {method: http.MethodDelete, expected: true},
		"patch":   {method: http.MethodPatch, expected: true},
		"get":     {method: http.MethodGet, expected: false},
		"head":    {method: http.MethodHead, expected: false},
		"options": {method: http.MethodOptions, expected: false},
		"lowercase_post": {method: "post", expected: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, guard.RequiresToken(tc.method))
		})
	}
}

func TestCSRFGuard_Decorate_TokenPresent(t *testing.T) {
	jar := newTestJar(t, "https://api.surfsense.example", "surfsense_csrf_token", "jar-token-value")
	guard := NewCSRFGuard("surfsense_csrf_token", "X-CSRF-Token", jar, nil)

	u, err := url.Parse("https://api.surfsense.example/api/v1/documents/")
	require.NoError(t, err)

	headers := http.Header{}
	guard.Decorate(http.MethodPost, u, headers)

	assert.Equal(t, "jar-token-value", headers.Get("X-CSRF-Token"))
}

func TestCSRFGuard_Decorate_NeverFabricates(t *testing.T) {
	jar := newTestJar(t, "https://api.surfsense.example", "surfsense_csrf_token", "")
	guard := NewCSRFGuard("surfsense_csrf_token", "X-CSRF-Token", jar, nil)

	u, err := url.Parse("https://api.surfsense.example/api/v1/documents/")
	require.NoError(t, err)

	headers := http.Header{}
	guard.Decorate(http.MethodPost, u, headers)

	_, present := headers["X-Csrf-Token"]
	assert.False(t, present, "no header should be sent when the cookie is absent")
}

func TestCSRFGuard_Decorate_SkipsSafeMethods(t *testing.T) {
	jar := newTestJar(t, "https://api.surfsense.example", "surfsense_csrf_token", "jar-token-value")
	guard := NewCSRFGuard("surfsense_csrf_token", "X-CSRF-Token", jar, nil)

	u, err := url.Parse("https://api.surfsense.example/api/v1/documents/")
	require.NoError(t, err)

	headers := http.Header{}
	guard.Decorate(http.MethodGet, u, headers)

	assert.Empty(t, headers.Get("X-CSRF-Token"))
}

func TestCSRFGuard_Decorate_CallerHeaderWins(t *testing.T) {
	jar := newTestJar(t, "https://api.surfsense.example", "surfsense_csrf_token", "jar-token-value")
	guard := NewCSRFGuard("surfsense_csrf_token", "X-CSRF-Token", jar, nil)

	u, err := url.Parse("https://api.surfsense.example/api/v1/documents/")
	require.NoError(t, err)

	headers := http.Header{}
	headers.Set("X-CSRF-Token", "caller-token")
	guard.Decorate(http.MethodPost, u, headers)

	assert.Equal(t, "caller-token", headers.Get("X-CSRF-Token"))
}

func TestCSRFGuard_CurrentToken(t *testing.T) {
	jar := newTestJar(t, "https://api.surfsense.example", "surfsense_csrf_token", "jar-token-value")
	guard := NewCSRFGuard("surfsense_csrf_token", "X-CSRF-Token", jar, nil)

	u, err := url.Parse("https://api.surfsense.example/api/v1/chats/")
	require.NoError(t, err)

	token, ok := guard.CurrentToken(u)
	assert.True(t, ok)
	assert.Equal(t, "jar-token-value", token)

	other, err := url.Parse("https://other.example/api/v1/chats/")
	require.NoError(t, err)

	_, ok = guard.CurrentToken(other)
	assert.False(t, ok, "cookies must not leak across origins")
}

func TestCSRFGuard_NilJar(t *testing.T) {
	guard := NewCSRFGuard("surfsense_csrf_token", "X-CSRF-Token", nil, nil)

	u, err := url.Parse("https://api.surfsense.example/")
	require.NoError(t, err)

	_, ok := guard.CurrentToken(u)
	assert.False(t, ok)
}

func TestIsCSRFFailure(t *testing.T) {
	tests := map[string]struct {
		statusCode int
		detail     string
		expected   bool
	}{
		"csrf_detail_403":        {statusCode: 403, detail: "CSRF token verification failed", expected: true},
		"lowercase_detail":       {statusCode: 403, detail: "missing csrf cookie", expected: true},
		"plain_forbidden":        {statusCode: 403, detail: "You do not have access to this resource", expected: false},
		"csrf_detail_wrong_code": {statusCode: 401, detail: "CSRF token verification failed", expected: false},
		"empty_detail":           {statusCode: 403, detail: "", expected: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsCSRFFailure(tc.statusCode, tc.detail))
		})
	}
}
