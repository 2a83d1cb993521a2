// ABOUTME: Pure rules for recording the post-login return path
// ABOUTME: Auth routes are never recorded so expired sessions cannot redirect-loop

package domain

import "strings"

// Auth-related routes excluded from return-path recording.
var authPathPrefixes = []string{
	"/login",
	"/register",
	"/forgot-password",
	"/reset-password",
	"/auth/",
}

// LoginPath is the route terminal session expiry navigates to.
const LoginPath = "/login"

// ShouldRecordReturnPath reports whether path is worth returning to after a
// fresh login. Auth routes and empty paths are excluded.
func ShouldRecordReturnPath(path string) bool {
	if path == "" || path == "/" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	for _, prefix := range authPathPrefixes {
		if path == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// NormalizeReturnPath strips fragments and guarantees a leading slash so the
// stored value is always a same-origin relative path.
func NormalizeReturnPath(path string) string {
	if idx := strings.IndexByte(path, '#'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
