// internal/app/features/errors/errors.go
package errors

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/compoundhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/httputil"
	"go.uber.org/zap"
)

// Body is the JSON error envelope returned by every handler.
type Body struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// WriteJSON writes v with status. Encode failures after the header is sent
// go to the logger installed with UseLogger.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

// jsonLogger adapts zap to httputil.JSONLogger.
type jsonLogger struct {
	log *zap.Logger
}

func (l jsonLogger) Error(msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.log.Error(msg, zap.String("component", "httputil"))
}

// UseLogger routes JSON encode failures to logger.
func UseLogger(logger *zap.Logger) {
	httputil.SetJSONLogger(jsonLogger{log: logger})
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Body{Error: msg})
}

// WriteFieldError writes a 400 naming the offending input field.
func WriteFieldError(w http.ResponseWriter, field, msg string) {
	WriteJSON(w, http.StatusBadRequest, Body{Error: msg, Field: field})
}

// ErrorLogger logs a failure with request context and answers with a
// sanitized message.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("actor_id", u.ID))
	}
	return fs
}

// LogServerError logs at Error and answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	WriteError(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs at Warn and answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Warn(logMsg, e.fields(r, err)...)
	WriteError(w, http.StatusBadRequest, userMsg)
}
