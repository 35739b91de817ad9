package payments

import (
	"errors"
	"net/http"
)

// Error kinds. Every error returned by Service matches exactly one of them
// with errors.Is.
var (
	ErrValidation         = errors.New("invalid payment request")
	ErrConfiguration      = errors.New("payment gateway not configured")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")
	ErrGatewayUnreachable = errors.New("payment gateway did not respond")
	ErrGatewayProtocol    = errors.New("unexpected payment gateway response")
	ErrInternal           = errors.New("internal error")
)

// Error is a failure ready to be rendered to the client.
type Error struct {
	Kind       error
	StatusCode int
	// Message is safe to show to the client.
	Message string
	// Details carries the raw gateway payload for gateway rejections.
	Details any
	// Err is the underlying cause; logged, never rendered.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error {
	return &Error{Kind: ErrValidation, StatusCode: http.StatusBadRequest, Message: msg}
}

func configurationError(msg string) *Error {
	return &Error{Kind: ErrConfiguration, StatusCode: http.StatusInternalServerError, Message: msg}
}

func gatewayRejectedError(status int, msg string, details any, cause error) *Error {
	return &Error{Kind: ErrGatewayRejected, StatusCode: status, Message: msg, Details: details, Err: cause}
}

func gatewayUnreachableError(cause error) *Error {
	return &Error{
		Kind:       ErrGatewayUnreachable,
		StatusCode: http.StatusGatewayTimeout,
		Message:    "Payment gateway did not respond. Please try again in a few minutes.",
		Err:        cause,
	}
}

func gatewayProtocolError(cause error) *Error {
	return &Error{
		Kind:       ErrGatewayProtocol,
		StatusCode: http.StatusInternalServerError,
		Message:    "Payment gateway returned an unexpected response",
		Err:        cause,
	}
}

func internalError(cause error) *Error {
	return &Error{
		Kind:       ErrInternal,
		StatusCode: http.StatusInternalServerError,
		Message:    "Failed to initiate payment: " + cause.Error(),
		Err:        cause,
	}
}
