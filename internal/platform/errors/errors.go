package errors

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain is the ErrorInfo domain of every board error.
const Domain = "github.com/louisbranch/beanmachine"

// Error is a coded board error. Message is for logs; Code and Metadata
// render the user-facing text in any catalog locale.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so sentinels such as
// pacer.ErrInvalidRate work with errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New returns an error without metadata.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata returns an error whose metadata fills the message template.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap is WithMetadata with an underlying cause, typically a parse error.
func Wrap(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata, Cause: cause}
}

// Localized renders the user-facing message in locale.
func (e *Error) Localized(locale string) string {
	return LocalizedMessage(locale, e.Code, e.Metadata)
}

// Status builds the gRPC status for e. The status message stays the log
// message; ErrorInfo carries the code and metadata and LocalizedMessage the
// text for locale.
func (e *Error) Status(locale string) *status.Status {
	if locale == "" {
		locale = DefaultLocale
	}
	base := status.New(e.Code.GRPCCode(), e.Message)
	st, err := base.WithDetails(
		&errdetails.ErrorInfo{Reason: string(e.Code), Domain: Domain, Metadata: e.Metadata},
		&errdetails.LocalizedMessage{Locale: locale, Message: e.Localized(locale)},
	)
	if err != nil {
		return base
	}
	return st
}

// HandleError converts err to a gRPC status with en-US messages.
func HandleError(err error) error {
	return HandleErrorLocale(err, DefaultLocale)
}

// HandleErrorLocale converts err to a gRPC status whose LocalizedMessage is
// rendered in locale. Errors without a code become Internal.
func HandleErrorLocale(err error, locale string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status(locale).Err()
	}
	return status.Error(codes.Internal, "an unexpected error occurred")
}

// GetCode returns the code of err, or CodeUnknown.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata returns the template metadata of err, if any.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
