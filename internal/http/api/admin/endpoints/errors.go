package endpoints

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Voltlane-Energy/voltlane/internal/http/api"
	"github.com/Voltlane-Energy/voltlane/internal/schedule"
)

// apiErrFrom maps the engine's error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a 500 with a generic message.
func apiErrFrom(err error) *api.APIError {
	var validation *schedule.ValidationError
	var conflict *schedule.ConflictError
	var missing *schedule.NotFoundError
	switch {
	case errors.As(err, &validation):
		return &api.APIError{Code: http.StatusBadRequest, Message: validation.Error()}
	case errors.As(err, &conflict):
		return &api.APIError{Code: http.StatusConflict, Message: conflict.Error()}
	case errors.As(err, &missing):
		return &api.APIError{Code: http.StatusNotFound, Message: missing.Error()}
	}
	log.Error().Err(err).Msg("unhandled store error")
	return &api.APIError{Code: http.StatusInternalServerError, Message: "internal error"}
}
