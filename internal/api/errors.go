package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/timewise/timewise/internal/api/respond"
	"github.com/timewise/timewise/internal/auth"
	"github.com/timewise/timewise/internal/export"
	"github.com/timewise/timewise/internal/model"
	"github.com/timewise/timewise/internal/timeline"
)

// statusFor maps an operation error onto an HTTP status. Anything not
// recognised is treated as a failing collaborator.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAuthRequired),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound), errors.Is(err, export.ErrNoEntries):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// writeErr writes err in the transport error shape. Collaborator failures are
// logged and their details withheld from the client.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error().Stack().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = "upstream service failure"
	}
	respond.WriteError(w, status, msg)
}

// entryResponse is the body of every entry operation.
type entryResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Entry   *model.TimelineEntry  `json:"entry,omitempty"`
	Entries []model.TimelineEntry `json:"entries"`
}

func writeResult(w http.ResponseWriter, okStatus int, res timeline.Result, entries []model.TimelineEntry) {
	status := okStatus
	if !res.Success {
		status = statusFor(res.Err)
		if status == http.StatusOK {
			status = http.StatusInternalServerError
		}
	}
	if entries == nil {
		entries = []model.TimelineEntry{}
	}
	respond.WriteJSON(w, status, entryResponse{
		Success: res.Success,
		Message: res.Message,
		Entry:   res.Entry,
		Entries: entries,
	})
}
