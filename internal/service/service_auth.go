package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
	"github.com/MKhiriev/go-outbox-sync/models"
)

// DefaultTokenDuration is the lifetime of tokens issued by [AuthService.CreateToken].
const DefaultTokenDuration = 24 * time.Hour

// authService is the concrete implementation of AuthService. Sync rows are
// owned by the token subject, so the token is the only identity the server
// knows about.
type authService struct {
	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService from the server configuration.
func NewAuthService(cfg *config.ServerConfig, logger *logger.Logger) AuthService {
	return &authService{
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: DefaultTokenDuration,
		logger:        logger,
	}
}

// CreateToken issues a signed JWT whose subject is identity.
func (a *authService) CreateToken(ctx context.Context, identity string) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, identity, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "authService.CreateToken").
			Str("identity", identity).
			Msg("failed to create token")
		return models.Token{}, fmt.Errorf("token creation failed: %w", err)
	}

	return token, nil
}

// ParseToken validates a raw JWT string. An expired token yields
// [ErrTokenIsExpired]; any other validation failure yields
// [ErrTokenIsExpiredOrInvalid].
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).
			Str("func", "authService.ParseToken").
			Msg("token rejected")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Token{}, ErrTokenIsExpired
		}
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}
