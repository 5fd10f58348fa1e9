package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"oaresponse/internal/domain"
	"oaresponse/internal/httputil"
)

// handleError converts domain errors to HTTP responses and logs anything that
// is not the caller's fault.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		conflictErr  *domain.ConflictError
		upstreamErr  *domain.UpstreamError
		malformedErr *domain.MalformedOutputError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotFound):
		// Same answer whether the matter is missing or belongs to someone else
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &malformedErr):
		logger.Error("model output rejected",
			"stage", malformedErr.Stage,
			"reason", malformedErr.Reason,
			"raw_length", len(malformedErr.Raw),
		)
		httputil.RespondError(w, http.StatusInternalServerError,
			"the "+malformedErr.Stage+" model returned output that could not be parsed")
	case errors.As(err, &upstreamErr):
		logger.Error("upstream service failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, upstreamErr.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam returns a required path value, writing a 400 if it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}
