package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tooldesk/tooldesk/backend/errs"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

// WriteJSONStatus sets headers before the status line so they are not lost.
func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteMessage(w http.ResponseWriter, message string) {
	r.WriteJSON(w, MessageResponse{Message: message})
}

// WriteError maps err to its status code. Server-side failures are logged in
// full and answered with a generic message.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONStatus(w, http.StatusInternalServerError, ErrorResponse{
			Message: "An unexpected error occurred",
			Status:  "error",
		})
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Int("status", apiErr.StatusCode).Msg(apiErr.GetFullError())
		r.WriteJSONStatus(w, apiErr.StatusCode, ErrorResponse{
			Message: http.StatusText(apiErr.StatusCode),
			Status:  "error",
		})
		return
	}

	r.logger.Debug().Int("status", apiErr.StatusCode).Msg(apiErr.Error())
	r.WriteJSONStatus(w, apiErr.StatusCode, ErrorResponse{
		Message: apiErr.Error(),
		Status:  "error",
		Field:   apiErr.Field,
		Errors:  apiErr.Errors,
	})
}

// wrapDatabaseError keeps errors that already carry a status and wraps
// anything else as a persistence failure.
func wrapDatabaseError(operation, entity string, cause error) error {
	var apiErr *errs.ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}
	return errs.NewPersistenceError(operation, entity, cause)
}
