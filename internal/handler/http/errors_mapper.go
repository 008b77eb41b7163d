package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-outbox-sync/internal/app"
	"github.com/MKhiriev/go-outbox-sync/internal/service"
	"github.com/MKhiriev/go-outbox-sync/internal/store"
	"github.com/MKhiriev/go-outbox-sync/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrSchemaMismatch:          http.StatusConflict,
	service.ErrUnknownTable:            http.StatusBadRequest,
	service.ErrInvalidRequest:          http.StatusBadRequest,
	service.ErrInvalidCursor:           http.StatusBadRequest,
	service.ErrMissingIdentity:         http.StatusUnauthorized,
	service.ErrTokenIsExpired:          http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,

	store.ErrInvalidCursor: http.StatusBadRequest,
	store.ErrUnknownTable:  http.StatusBadRequest,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError answers with the status mapped from err. Server-side failures
// are reported with a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = app.MsgInternalServerError
	}

	_, _ = utils.WriteJSON(w, errorResponse{Error: msg}, status)
}
