package adapter

import (
	"context"
	"errors"
)

// ErrNoCredential is returned by [StaticToken] when no token is configured.
var ErrNoCredential = errors.New("no credential configured")

// StaticToken is a [CredentialProvider] that always returns the same token.
type StaticToken string

func (t StaticToken) Token(_ context.Context) (string, error) {
	if t == "" {
		return "", ErrNoCredential
	}
	return string(t), nil
}
