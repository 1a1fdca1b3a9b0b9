// internal/app/features/errors/errors.go

// Package errors centralizes JSON error responses and their logging policy:
// client mistakes are answered without log noise, server faults are logged
// with the underlying error and answered with a generic message.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger writes JSON error responses and logs server-side failures.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger around the app logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status. Shared by handlers for success
// responses as well; encode failures are logged and otherwise dropped
// since the status line has already been sent.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// BadRequest answers 400 with userMsg. Client mistakes are expected
// traffic and are not logged.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, userMsg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: userMsg})
}

// NotFound answers 404 with userMsg.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request, userMsg string) {
	JSON(w, http.StatusNotFound, errorBody{Error: userMsg})
}

// Conflict answers 409 with userMsg. Used for duplicate submissions and
// already-decided requests.
func (e *ErrorLogger) Conflict(w http.ResponseWriter, r *http.Request, userMsg string) {
	JSON(w, http.StatusConflict, errorBody{Error: userMsg})
}

// LogServerError logs the failure with its cause and answers 500 with
// userMsg only; the underlying error never reaches the client.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	JSON(w, http.StatusInternalServerError, errorBody{Error: userMsg})
}
