package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT token with convenience accessors for authentication flows.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access (subject, expiry, etc.).
//
// Identity is a cached copy of the "sub" (subject) claim. Sync watermarks and
// server-side row ownership are namespaced by it.
type Token struct {
	// Token is the underlying JWT token used for signing and claim inspection.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides access to the standard JWT claim set
	// (sub, exp, iat, nbf, iss, aud, jti) as defined by RFC 7519.
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// Identity is the authenticated subject extracted from the "sub" claim.
	Identity string `json:"-"`
}

// GetIdentity returns the token's "sub" (subject) claim.
//
// Returns an error if the subject claim is missing or empty.
func (t *Token) GetIdentity() (string, error) {
	sub, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting identity from token: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("error extracting identity from token: empty subject")
	}
	return sub, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
