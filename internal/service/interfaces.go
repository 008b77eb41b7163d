package service

import (
	"context"

	"github.com/MKhiriev/go-outbox-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SyncService is the server side of POST /api/sync.
type SyncService interface {
	// Sync applies the request's changes for owner under last-writer-wins and
	// returns one page of changes newer than the request's watermark. A
	// continuation request carries no changes and resumes the pull pinned at
	// its syncStartedAt.
	Sync(ctx context.Context, owner string, req models.SyncRequest) (models.SyncResponse, error)
}

type AuthService interface {
	CreateToken(ctx context.Context, identity string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}
