package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// ExternalIdentity is a verified identity assertion from the SSO provider.
type ExternalIdentity struct {
	Provider    string `json:"provider"`
	Subject     string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// TokenClaims is the payload of a session token. Password logins and SSO
// reconciliation carry username and email; the SSO session cookie issued by
// the callback carries the provider identity in Profile.
type TokenClaims struct {
	Username string            `json:"username,omitempty"`
	Email    string            `json:"email,omitempty"`
	Profile  *ExternalIdentity `json:"pld,omitempty"`
	jwt.RegisteredClaims
}

// AccessToken is returned by the password and SSO token endpoints.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenTypeBearer is the token_type reported for issued session tokens.
const TokenTypeBearer = "bearer"
