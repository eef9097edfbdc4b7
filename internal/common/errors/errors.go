// Package errors provides the standardized error type used by triggers, jobs and tools.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Configuration absent: logged, treated as a no-op.
const (
	ErrCodeWebhookNotConfigured ErrorCode = "WEBHOOK_NOT_CONFIGURED"
	ErrCodeTokenNotFound        ErrorCode = "TOKEN_NOT_FOUND"
)

// Delivery failures.
const (
	ErrCodeWebhookDeliveryFailed ErrorCode = "WEBHOOK_DELIVERY_FAILED"
	ErrCodePushSendFailed        ErrorCode = "PUSH_SEND_FAILED"
	ErrCodePushTokenStale        ErrorCode = "PUSH_TOKEN_STALE"
)

// Store and job failures.
const (
	ErrCodeTokenLookupFailed      ErrorCode = "TOKEN_LOOKUP_FAILED"
	ErrCodeDocumentWriteFailed    ErrorCode = "DOCUMENT_WRITE_FAILED"
	ErrCodeMenuScrapeFailed       ErrorCode = "MENU_SCRAPE_FAILED"
	ErrCodeStorageOperationFailed ErrorCode = "STORAGE_OPERATION_FAILED"
	ErrCodeImageDownloadFailed    ErrorCode = "IMAGE_DOWNLOAD_FAILED"
	ErrCodeInvalidEventPayload    ErrorCode = "INVALID_EVENT_PAYLOAD"
	ErrCodeUnknownTrigger         ErrorCode = "UNKNOWN_TRIGGER"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewWebhookNotConfiguredError marks a notification kind without any webhook URL.
func NewWebhookNotConfiguredError(kind string) *StandardError {
	return newError(ErrCodeWebhookNotConfigured, "No Discord webhook configured",
		fmt.Sprintf("kind: %s", kind), false, nil)
}

// NewWebhookDeliveryFailedError wraps a transport error or a non-2xx response.
func NewWebhookDeliveryFailedError(status int, body string, err error) *StandardError {
	details := fmt.Sprintf("status: %d, body: %s", status, body)
	if err != nil {
		details = err.Error()
	}
	return newError(ErrCodeWebhookDeliveryFailed, "Discord webhook delivery failed", details, true, err).
		WithMetadata("status", status)
}

func NewTokenNotFoundError(userID string) *StandardError {
	return newError(ErrCodeTokenNotFound, "Device token not found",
		fmt.Sprintf("userId: %s", userID), false, nil)
}

func NewTokenLookupFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeTokenLookupFailed, "Device token lookup failed",
		fmt.Sprintf("userId: %s, error: %s", userID, detailsOf(err)), true, err)
}

// NewPushSendFailedError is a transient push failure; the token is kept.
func NewPushSendFailedError(code string, err error) *StandardError {
	return newError(ErrCodePushSendFailed, "Push delivery failed",
		fmt.Sprintf("code: %s, error: %s", code, detailsOf(err)), true, err)
}

// NewPushTokenStaleError is a permanent push failure; the token is deleted.
func NewPushTokenStaleError(userID, code string) *StandardError {
	return newError(ErrCodePushTokenStale, "Push token is no longer valid",
		fmt.Sprintf("userId: %s, code: %s", userID, code), false, nil)
}

func NewDocumentWriteFailedError(collection string, err error) *StandardError {
	return newError(ErrCodeDocumentWriteFailed, "Firestore write failed",
		fmt.Sprintf("collection: %s, error: %s", collection, detailsOf(err)), true, err)
}

func NewMenuScrapeFailedError(pageURL string, err error) *StandardError {
	return newError(ErrCodeMenuScrapeFailed, "Menu page scrape failed",
		fmt.Sprintf("url: %s, error: %s", pageURL, detailsOf(err)), true, err)
}

func NewStorageOperationFailedError(op, object string, err error) *StandardError {
	return newError(ErrCodeStorageOperationFailed, fmt.Sprintf("Storage %s failed", op),
		fmt.Sprintf("object: %s, error: %s", object, detailsOf(err)), true, err)
}

func NewImageDownloadFailedError(url string, err error) *StandardError {
	return newError(ErrCodeImageDownloadFailed, "Menu image download failed",
		fmt.Sprintf("url: %s, error: %s", url, detailsOf(err)), true, err)
}

func NewInvalidEventPayloadError(trigger string, err error) *StandardError {
	return newError(ErrCodeInvalidEventPayload, "Invalid document event payload",
		fmt.Sprintf("trigger: %s, error: %s", trigger, detailsOf(err)), false, err)
}

func NewUnknownTriggerError(trigger string) *StandardError {
	return newError(ErrCodeUnknownTrigger, "Unknown trigger",
		fmt.Sprintf("trigger: %s", trigger), false, nil)
}

// Normalize converts any error into a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "WEBHOOK"):
		return "DISCORD"
	case strings.Contains(codeStr, "PUSH") || strings.Contains(codeStr, "TOKEN"):
		return "PUSH"
	case strings.Contains(codeStr, "MENU") || strings.Contains(codeStr, "IMAGE") || strings.Contains(codeStr, "STORAGE"):
		return "MENU_IMAGES"
	case strings.Contains(codeStr, "DOCUMENT"):
		return "FIRESTORE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error to the status answered at the trigger ingress.
// 4xx tells the event platform not to redeliver; 5xx asks for a retry.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusNoContent
	}
	stdErr := Normalize(err)
	switch stdErr.Code {
	case ErrCodeInvalidEventPayload:
		return http.StatusBadRequest
	case ErrCodeUnknownTrigger:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
