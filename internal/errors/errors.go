// Package errors defines the coded error types shared across the bot.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown      = "UNKNOWN"
	CodeDatabase     = "DATABASE"
	CodeValidation   = "VALIDATION"
	CodeProvider     = "PROVIDER"
	CodeDelivery     = "DELIVERY"
	CodeConfig       = "CONFIG"
	CodeUnauthorized = "UNAUTHORIZED"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// appError carries the code, message and cause shared by every error type.
type appError struct {
	code    string
	message string
	err     error
}

func (e *appError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *appError) Code() string {
	return e.code
}

func (e *appError) Unwrap() error {
	return e.err
}

// Message returns the error message without the wrapped cause.
func (e *appError) Message() string {
	return e.message
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// Specific error types and constructors

// ValidationError is returned for malformed user input. It is the only kind
// surfaced synchronously to the command caller.
type ValidationError struct {
	appError
}

func NewValidationError(message string, cause error) error {
	return &ValidationError{appError{code: CodeValidation, message: message, err: cause}}
}

// ProviderError covers an unreachable content provider, a malformed response
// or a "not found" result.
type ProviderError struct {
	appError
	Provider string
}

func NewProviderError(provider, message string, cause error) error {
	return &ProviderError{
		appError: appError{code: CodeProvider, message: provider + ": " + message, err: cause},
		Provider: provider,
	}
}

// DeliveryError is returned when a message could not reach the user.
type DeliveryError struct {
	appError
	UserID int64
}

func NewDeliveryError(userID int64, cause error) error {
	return &DeliveryError{
		appError: appError{code: CodeDelivery, message: fmt.Sprintf("failed to deliver message to user %d", userID), err: cause},
		UserID:   userID,
	}
}

type DatabaseError struct {
	appError
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{appError{code: CodeDatabase, message: message, err: cause}}
}

type ConfigError struct {
	appError
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{appError{code: CodeConfig, message: message, err: cause}}
}

type UnauthorizedError struct {
	appError
}

func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{appError{code: CodeUnauthorized, message: message}}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsProvider reports whether err carries a ProviderError.
func IsProvider(err error) bool {
	var p *ProviderError
	return errors.As(err, &p)
}

// IsDelivery reports whether err carries a DeliveryError.
func IsDelivery(err error) bool {
	var d *DeliveryError
	return errors.As(err, &d)
}
