package http

import (
	"net/http"

	"github.com/MKhiriev/go-outbox-sync/internal/app"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// health answers connectivity probes of the client. It needs no credential.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, healthResponse{
		Status:  app.MsgHealthy,
		Version: h.buildInfo.BuildVersion(),
	}, http.StatusOK)
}
