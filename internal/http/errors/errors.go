package errors

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jw6ventures/callhistory/internal/logging"
)

// InternalError logs err and answers with a generic 500.
func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logging.FromContext(r.Context()).Error(message, zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// BadRequestError logs err at warn level and answers 400 with clientMessage.
func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	logging.FromContext(r.Context()).Warn("bad request", zap.Error(err))
	http.Error(w, clientMessage, http.StatusBadRequest)
}

// LogError records err against the current request without responding.
func LogError(r *http.Request, message string, err error) {
	logging.FromContext(r.Context()).Error(message, zap.Error(err))
}

// LogWarn records a recoverable problem against the current request.
func LogWarn(r *http.Request, message string, err error) {
	logging.FromContext(r.Context()).Warn(message, zap.Error(err))
}
