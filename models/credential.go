// ABOUTME: This file defines the credential model for the authenticated session
// ABOUTME: Handles access token, refresh token, and expiration introspection

package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Credential represents the access/refresh token pair of one session.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"` // Zero when the access token carries no exp claim
	IssuedAt     time.Time `json:"issued_at"`
}

// TokenPairResponse represents the token response of the login and refresh
// endpoints.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"` // May be absent when the server does not rotate it
	TokenType    string `json:"token_type"`
}

// NewCredential builds a Credential from a token endpoint response. When the
// response omits the refresh token the existing one is kept, so a non-rotating
// server does not silently strand the session.
func NewCredential(response TokenPairResponse, existingRefreshToken string) *Credential {
	refreshToken := response.RefreshToken
	if refreshToken == "" {
		refreshToken = existingRefreshToken
	}

	tokenType := response.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}

	return &Credential{
		AccessToken:  response.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		ExpiresAt:    accessTokenExpiry(response.AccessToken),
		IssuedAt:     time.Now(),
	}
}

// IsExpired reports whether the access token is past its exp claim. Tokens
// without a readable exp claim never report expired; the server remains the
// authority via 401.
func (c *Credential) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt)
}

// NeedsRefresh reports whether the token expires within the buffer window.
func (c *Credential) NeedsRefresh(buffer time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(buffer).After(c.ExpiresAt)
}

// TimeUntilExpiry returns the duration until token expiry.
func (c *Credential) TimeUntilExpiry() time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return time.Until(c.ExpiresAt)
}

// IsValid checks that an access token is present and not expired.
func (c *Credential) IsValid() bool {
	return c != nil && c.AccessToken != "" && !c.IsExpired()
}

// HasRefreshToken reports whether a refresh is possible at all.
func (c *Credential) HasRefreshToken() bool {
	return c != nil && c.RefreshToken != ""
}

// UpdateFromRefresh replaces the credential contents after a successful
// refresh, preserving the refresh token when the server did not rotate it.
func (c *Credential) UpdateFromRefresh(response TokenPairResponse) {
	c.AccessToken = response.AccessToken
	if response.TokenType != "" {
		c.TokenType = response.TokenType
	}
	if response.RefreshToken != "" {
		c.RefreshToken = response.RefreshToken
	}
	c.ExpiresAt = accessTokenExpiry(response.AccessToken)
	c.IssuedAt = time.Now()
}

// accessTokenExpiry reads the exp claim without verifying the signature. The
// client never trusts the claim for authorization, only for proactive refresh
// scheduling, so an unverified parse is sufficient.
func accessTokenExpiry(accessToken string) time.Time {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
