package api

import (
	"errors"
	"net/http"

	"github.com/okian/fairway/internal/adapters/repository"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/course"
	"github.com/okian/fairway/internal/domain/handicap"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/session"
	"github.com/okian/fairway/internal/domain/settings"
)

// ErrBadRequest marks malformed requests.
var ErrBadRequest = errors.New("bad request")

// classify maps an engine error to its status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, session.ErrInvalidWeek),
		errors.Is(err, service.ErrInvalidBaseline),
		errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, model.ErrUnknownOutcome):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUnknownWeek):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotSessionStart):
		return http.StatusConflict, "not_session_start"
	case errors.Is(err, session.ErrMissingBaseline):
		return http.StatusUnprocessableEntity, "missing_baseline"
	case errors.Is(err, settings.ErrInvalidConfiguration),
		errors.Is(err, course.ErrConfiguration),
		errors.Is(err, handicap.ErrOutOfRange),
		errors.Is(err, handicap.ErrInvalidTable):
		return http.StatusUnprocessableEntity, "configuration_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
