package drive

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures of the scan and import pipeline
type ErrorType int

const (
	ErrValidation ErrorType = iota
	ErrAccess
	ErrTransport
	ErrNetwork
	ErrMissingReference
	ErrTooLarge
	ErrUnsupportedContent
	ErrDecode
)

// User-facing messages for the expected failure conditions
const (
	InvalidURLMessage     = "Invalid Google Drive folder URL"
	FolderNotFoundMessage = "Folder not found or not publicly accessible"
)

func (t ErrorType) String() string {
	switch t {
	case ErrValidation:
		return "validation"
	case ErrAccess:
		return "access"
	case ErrTransport:
		return "transport"
	case ErrNetwork:
		return "network"
	case ErrMissingReference:
		return "missing_reference"
	case ErrTooLarge:
		return "too_large"
	case ErrUnsupportedContent:
		return "unsupported_content"
	case ErrDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error. Status carries the HTTP status code
// for transport failures and is zero otherwise.
type Error struct {
	Type    ErrorType
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new classified error
func NewError(errorType ErrorType, message string, status int) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Status:  status,
	}
}

// NewValidationError creates an error for input that cannot be used
func NewValidationError(message string) *Error {
	return NewError(ErrValidation, message, 0)
}

// NewAccessError creates an error for a folder the API refused to list
func NewAccessError(status int) *Error {
	return NewError(ErrAccess, FolderNotFoundMessage, status)
}

// NewTransportError creates an error for a non-success HTTP status
func NewTransportError(status int, reason string) *Error {
	return NewError(ErrTransport, fmt.Sprintf("request failed with status %d: %s", status, reason), status)
}

// NewNetworkError wraps a failure to reach the remote endpoint
func NewNetworkError(err error) *Error {
	e := NewError(ErrNetwork, fmt.Sprintf("network error: %v", err), 0)
	e.Err = err
	return e
}

// NewDecodeError wraps a malformed response body
func NewDecodeError(err error) *Error {
	e := NewError(ErrDecode, fmt.Sprintf("failed to decode response: %v", err), 0)
	e.Err = err
	return e
}

// NewMissingReferenceError reports a record without a download reference
func NewMissingReferenceError(id string) *Error {
	return NewError(ErrMissingReference, fmt.Sprintf("file %q has no download reference", id), 0)
}

// NewTooLargeError reports content above the configured size cap
func NewTooLargeError(size, limit int64) *Error {
	return NewError(ErrTooLarge, fmt.Sprintf("file size %d bytes exceeds maximum allowed size %d bytes", size, limit), 0)
}

// NewUnsupportedContentError reports a payload that is not an image
func NewUnsupportedContentError(mimeType string) *Error {
	return NewError(ErrUnsupportedContent, fmt.Sprintf("downloaded content is %s, not an image", mimeType), 0)
}

// IsType reports whether err is a classified error of the given type
func IsType(err error, errorType ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}

// IsRetryable reports whether err is worth another attempt
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrNetwork:
		return true
	case ErrTransport:
		return e.Status == 429 || e.Status >= 500
	default:
		return false
	}
}
