package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-outbox-sync/internal/config"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
	"github.com/MKhiriev/go-outbox-sync/models"
	"github.com/go-resty/resty/v2"
)

const (
	syncPath   = "/api/sync"
	healthPath = "/api/health"
)

type httpServerAdapter struct {
	client      *utils.HTTPClient
	credentials CredentialProvider

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/JSON implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and applies adapterCfg.RequestTimeout to every call.
//
// Returns an error if the address is empty or cannot be parsed as a URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, credentials CredentialProvider, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}
	if credentials == nil {
		return nil, errors.New("credential provider is required")
	}

	return &httpServerAdapter{
		client:      utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		credentials: credentials,
		logger:      logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Send implements [ServerAdapter].
func (h *httpServerAdapter) Send(ctx context.Context, req models.SyncRequest) (models.SyncResponse, error) {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return models.SyncResponse{}, err
	}

	resp, err := r.SetBody(req).Post(syncPath)
	if err != nil {
		h.logger.Debug().Err(err).
			Str("func", "httpServerAdapter.Send").
			Int("changes", len(req.Changes)).
			Msg("sync request failed")
		return models.SyncResponse{}, fmt.Errorf("%w: sync request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncResponse{}, err
	}

	var sr models.SyncResponse
	if err = json.Unmarshal(resp.Body(), &sr); err != nil {
		return models.SyncResponse{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if sr.Error != "" {
		return sr, &ServerError{StatusCode: resp.StatusCode(), Message: sr.Error, kind: ErrApplication}
	}
	if sr.SyncedAt.IsZero() {
		return models.SyncResponse{}, fmt.Errorf("%w: missing syncedAt", ErrMalformedResponse)
	}

	h.logger.Debug().
		Str("func", "httpServerAdapter.Send").
		Int("sent", len(req.Changes)).
		Int("received", len(sr.Changes)).
		Bool("has_more", sr.HasMore()).
		Dur("took", resp.Time()).
		Msg("sync request completed")

	return sr, nil
}

// Ping implements [ServerAdapter].
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return fmt.Errorf("%w: health request: %w", ErrTransport, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return mapHTTPError(resp)
	}
	return nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) (*resty.Request, error) {
	token, err := h.credentials.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	req := h.client.R().SetContext(ctx)
	if token = strings.TrimSpace(token); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req, nil
}
