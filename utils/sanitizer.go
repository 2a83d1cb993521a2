package utils

import "strings"

// MaskToken shortens a credential for log output. Only a short prefix
// survives so log lines can be correlated without exposing the token.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "..."
}

// MaskAuthorization masks the credential part of an Authorization header
// value, keeping the scheme readable.
func MaskAuthorization(headerValue string) string {
	if headerValue == "" {
		return ""
	}
	scheme, token, found := strings.Cut(headerValue, " ")
	if !found {
		return MaskToken(headerValue)
	}
	return scheme + " " + MaskToken(token)
}
