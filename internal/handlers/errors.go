package handlers

import (
	"errors"
	"net/http"
	"strings"

	"reminer-backend/pkg/api"
	appErrors "reminer-backend/pkg/errors"

	"go.uber.org/zap"
)

// handleServiceError maps service errors onto HTTP status codes. Internal
// errors are logged and hidden from the caller.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var appErr *appErrors.AppError
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch {
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, message)
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, message)
	case appErrors.IsConflict(err):
		api.Error(w, http.StatusConflict, "the record was modified concurrently, please retry")
	default:
		logger.Error("request failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

// requireQuery returns the named query parameters or a validation error
// naming every missing one.
func requireQuery(r *http.Request, names ...string) ([]string, error) {
	values := make([]string, len(names))
	var missing []string
	for i, name := range names {
		values[i] = strings.TrimSpace(r.URL.Query().Get(name))
		if values[i] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.NewValidationf("missing required parameter(s): %s", strings.Join(missing, ", "))
	}
	return values, nil
}
