package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rosvybory/observadores/internal/service"
)

func (h *Handler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, service.ErrNoEligibleRoles):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, service.ErrTooManyAttempts):
		w.Header().Set("Retry-After", "900")
		WriteError(w, http.StatusTooManyRequests, "RATE_LIMIT", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("falha ao autenticar")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao autenticar", nil)
	}
}
