package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
)

func newTestAuthService() *authService {
	return NewAuthService(&config.ServerConfig{TokenSignKey: "secret", TokenIssuer: "sync-server"}, logger.Nop()).(*authService)
}

func TestAuthService_CreateAndParse(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthService()

	token, err := auth.CreateToken(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := auth.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)

	identity, err := parsed.GetIdentity()
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity)
}

func TestAuthService_ParseToken_Errors(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthService()

	expired, err := utils.GenerateJWTToken("sync-server", "user-1", -time.Minute, "secret")
	require.NoError(t, err)
	otherKey, err := utils.GenerateJWTToken("sync-server", "user-1", time.Minute, "other")
	require.NoError(t, err)
	otherIssuer, err := utils.GenerateJWTToken("someone-else", "user-1", time.Minute, "secret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired.SignedString, wantErr: ErrTokenIsExpired},
		{name: "wrong key", token: otherKey.SignedString, wantErr: ErrTokenIsExpiredOrInvalid},
		{name: "wrong issuer", token: otherIssuer.SignedString, wantErr: ErrTokenIsExpiredOrInvalid},
		{name: "garbage", token: "not-a-jwt", wantErr: ErrTokenIsExpiredOrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ParseToken(ctx, tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
