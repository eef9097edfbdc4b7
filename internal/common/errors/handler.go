// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns a failed trigger or job into an HTTP response the event
// platform understands: 4xx drops the event, 5xx schedules a redelivery.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

type errorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

func (h *ErrorHandler) HandleTriggerError(w http.ResponseWriter, trigger string, err error) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr)

	h.logger.Error("trigger failed", map[string]interface{}{
		"trigger":       trigger,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:      stdErr.Code,
		Message:   stdErr.Message,
		Retryable: stdErr.Retryable,
	})
}
