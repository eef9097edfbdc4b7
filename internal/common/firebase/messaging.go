package firebase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/messaging"
)

// Delivery error codes, in the form the Admin SDKs report them.
const (
	CodeInvalidRegistrationToken = "messaging/invalid-registration-token"
	CodeTokenNotRegistered       = "messaging/registration-token-not-registered"
	CodeInvalidArgument          = "messaging/invalid-argument"
	CodeMessageRateExceeded      = "messaging/message-rate-exceeded"
	CodeMismatchedCredential     = "messaging/mismatched-credential"
	CodeThirdPartyAuthError      = "messaging/third-party-auth-error"
	CodeServerUnavailable        = "messaging/server-unavailable"
	CodeInternalError            = "messaging/internal-error"
	CodeUnknownError             = "messaging/unknown-error"
)

// DeliveryError carries an explicit delivery code. Messenger fakes return it
// in place of SDK errors.
type DeliveryError struct {
	Code string
	Err  error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ErrorCode maps a send error to its delivery code; "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var de *DeliveryError
	if stderrors.As(err, &de) {
		return de.Code
	}

	switch {
	case messaging.IsUnregistered(err):
		return CodeTokenNotRegistered
	case messaging.IsInvalidArgument(err):
		// INVALID_ARGUMENT also covers payload errors such as an oversized
		// message, which say nothing about the token.
		if namesRegistrationToken(err) {
			return CodeInvalidRegistrationToken
		}
		return CodeInvalidArgument
	case messaging.IsQuotaExceeded(err):
		return CodeMessageRateExceeded
	case messaging.IsSenderIDMismatch(err):
		return CodeMismatchedCredential
	case messaging.IsThirdPartyAuthError(err):
		return CodeThirdPartyAuthError
	case messaging.IsUnavailable(err):
		return CodeServerUnavailable
	case messaging.IsInternal(err):
		return CodeInternalError
	default:
		return CodeUnknownError
	}
}

func namesRegistrationToken(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "registration token")
}

// IsStaleToken reports whether code means the token will never work again.
func IsStaleToken(code string) bool {
	return code == CodeInvalidRegistrationToken || code == CodeTokenNotRegistered
}

// Messenger is the FCM surface the push engine uses.
type Messenger struct {
	client *messaging.Client
}

func NewMessenger(client *messaging.Client) *Messenger {
	return &Messenger{client: client}
}

func (m *Messenger) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	return m.client.Send(ctx, msg)
}

func (m *Messenger) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	return m.client.SendEachForMulticast(ctx, msg)
}
