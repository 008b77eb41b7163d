package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-outbox-sync/internal/app"
	"github.com/MKhiriev/go-outbox-sync/internal/logger"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
	"github.com/MKhiriev/go-outbox-sync/models"
)

// maxSyncBodySize bounds one push batch.
const maxSyncBodySize = 32 << 20

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	identity, found := utils.GetIdentityFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.sync").Msg("no identity in request context")
		writeError(w, service.ErrMissingIdentity)
		return
	}

	var req models.SyncRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSyncBodySize))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.sync").Msg("invalid JSON was passed")
		_, _ = utils.WriteJSON(w, errorResponse{Error: app.MsgInvalidJSON}, http.StatusBadRequest)
		return
	}

	resp, err := h.services.SyncService.Sync(ctx, identity, req)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.sync").
			Str("identity", identity).
			Int("changes", len(req.Changes)).
			Msg("sync failed")
		writeError(w, err)
		return
	}

	log.Debug().
		Str("identity", identity).
		Int("received", len(req.Changes)).
		Int("sent", len(resp.Changes)).
		Bool("has_more", resp.HasMore()).
		Msg("sync served")

	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}
