package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tracknourish/tracknourish/internal/api/response"
	"github.com/tracknourish/tracknourish/internal/domain"
)

// respondError maps domain errors onto the HTTP taxonomy. Anything unmapped
// is logged with full context and surfaced as a generic 500; internals never
// reach the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(w, domain.ErrConflict.Error())
	case errors.Is(err, domain.ErrAlreadyVerified):
		response.Conflict(w, domain.ErrAlreadyVerified.Error())
	case errors.Is(err, domain.ErrEmailNotVerified):
		response.Unauthorized(w, domain.ErrEmailNotVerified.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(w, domain.ErrUnauthorized.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, domain.ErrForbidden.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		response.Unauthorized(w, domain.ErrInvalidToken.Error())
	case errors.Is(err, domain.ErrIncorrectOTP):
		response.BadRequest(w, domain.ErrIncorrectOTP.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		response.Error(w, http.StatusBadGateway, domain.ErrDeliveryFailed.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("unhandled error")
		response.InternalError(w, "internal server error")
	}
}
