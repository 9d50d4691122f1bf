package types

import (
	"errors"
	"fmt"
)

// Error is the error type returned by every package of the SDK.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// HTTP status of the failed payment service call, zero otherwise.
	StatusCode int `json:"statusCode,omitempty"`

	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so callers can use errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Error codes
const (
	CodeServiceError       = "SERVICE_ERROR"
	CodePollTimeout        = "POLL_TIMEOUT"
	CodeWalletError        = "WALLET_ERROR"
	CodeWalletNotConnected = "WALLET_NOT_CONNECTED"
	CodeNotInitialized     = "NOT_INITIALIZED"
	CodeInvalidPayment     = "INVALID_PAYMENT"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeUnsupportedChain   = "UNSUPPORTED_CHAIN"
	CodeConfigError        = "CONFIG_ERROR"
)

var (
	ErrServiceError       = &Error{Code: CodeServiceError, Message: "payment service error"}
	ErrPollTimeout        = &Error{Code: CodePollTimeout, Message: "payment timeout"}
	ErrWalletError        = &Error{Code: CodeWalletError, Message: "wallet error"}
	ErrWalletNotConnected = &Error{Code: CodeWalletNotConnected, Message: "wallet not connected"}
	ErrNotInitialized     = &Error{Code: CodeNotInitialized, Message: "wallet connector not initialized"}
	ErrInvalidPayment     = &Error{Code: CodeInvalidPayment, Message: "invalid payment"}
	ErrInvalidAmount      = &Error{Code: CodeInvalidAmount, Message: "invalid amount"}
	ErrUnsupportedChain   = &Error{Code: CodeUnsupportedChain, Message: "invalid chain"}
	ErrConfig             = &Error{Code: CodeConfigError, Message: "invalid configuration"}
)

// NewServiceError builds the error returned for a failed payment service call.
func NewServiceError(statusCode int, message string, cause error) *Error {
	if message == "" {
		message = "payment service request failed"
	}
	return &Error{
		Code:       CodeServiceError,
		Message:    message,
		StatusCode: statusCode,
		Err:        cause,
	}
}

// NewWalletError wraps a connector failure.
func NewWalletError(message string, cause error) *Error {
	return &Error{
		Code:    CodeWalletError,
		Message: message,
		Err:     cause,
	}
}

// NewInvalidPayment reports a payment record that cannot be turned into a transaction.
func NewInvalidPayment(format string, args ...any) *Error {
	return &Error{
		Code:    CodeInvalidPayment,
		Message: "invalid payment: " + fmt.Sprintf(format, args...),
	}
}
