package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/agentauth/internal/api/response"
	"github.com/edvin/agentauth/internal/core"
)

// writeServiceError maps a service error onto the envelope. validationCode and
// unavailableCode let each surface keep its own error namespace.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, validationCode, unavailableCode response.Code) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		response.WriteError(w, r, http.StatusBadRequest, validationCode, verr.Reason, "")
	case errors.Is(err, core.ErrUnavailable):
		response.WriteError(w, r, http.StatusServiceUnavailable, unavailableCode, "service unavailable", "")
	case errors.Is(err, core.ErrStoreUnavailable):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("store unavailable")
		response.WriteError(w, r, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "store unavailable, retry later", "")
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, r, http.StatusNotFound, response.CodeKeyNotFound, "API key not found", "")
	case errors.Is(err, core.ErrNameTaken):
		response.WriteError(w, r, http.StatusConflict, response.CodeKeyNameTaken, "API key name already exists in tenant", "")
	case errors.Is(err, core.ErrTenantNotFound):
		response.WriteError(w, r, http.StatusBadRequest, response.CodeTenantNotFound, "tenant not found", "")
	case errors.Is(err, core.ErrAgentNotFound):
		response.WriteError(w, r, http.StatusBadRequest, response.CodeAgentNotFound, "agent not found in tenant", "")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled service error")
		response.WriteError(w, r, http.StatusInternalServerError, response.CodeInternal, "internal error", "")
	}
}

// writeRejected writes the response for a key that did not authenticate.
// InvalidFormat and NotFound share one code and message.
func writeRejected(w http.ResponseWriter, r *http.Request, v core.Validation) {
	switch v.Outcome {
	case core.OutcomeDisabled:
		response.WriteError(w, r, http.StatusUnauthorized, response.CodeKeyDisabled, "API key disabled", "")
	case core.OutcomeExpired:
		response.WriteError(w, r, http.StatusUnauthorized, response.CodeKeyExpired, "API key expired", "")
	case core.OutcomeInsufficientPermission:
		response.WriteError(w, r, http.StatusForbidden, response.CodeInsufficientPermission, "insufficient permission", "")
	default:
		response.WriteError(w, r, http.StatusUnauthorized, response.CodeInvalidKey, "invalid API key", "")
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	response.WriteError(w, r, http.StatusBadRequest, response.CodeBadRequest, "bad request", err.Error())
}
