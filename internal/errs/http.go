package errs

import (
	"fmt"
	"net/http"
)

// Error codes for the contacts API. The generic status-derived codes
// (BAD_REQUEST, NOT_FOUND, ...) are built from http.StatusText.
const (
	CodeNoHandler        = "NO_HANDLER"
	CodeInvalidContact   = "INVALID_CONTACT"
	CodeIdentityMismatch = "IDENTITY_MISMATCH"
)

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// This supports extra payload:
//   - code: optional custom code string (if nil, defaults to "BAD_REQUEST")
//   - errors: optional slice of field errors
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))

	// If caller supplies custom code pointer, use it as-is.
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// Supports optional custom code override similar to NewBadRequestError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the underlying error.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// NewNoHandlerError is the fixed response for a (verb, path) pair that no
// route accepts.
func NewNoHandlerError() *HTTPError {
	code := CodeNoHandler
	return NewBadRequestError("no handler", false, &code, nil)
}

// NewIdentityMismatchError reports that the record stored under a key
// carries a different id than the one addressed by the path.
func NewIdentityMismatchError(pathID, storedID string) *HTTPError {
	code := CodeIdentityMismatch
	message := fmt.Sprintf("stored record id %q does not match path id %q", storedID, pathID)
	return NewBadRequestError(message, false, &code, nil)
}

// NewInvalidContactError describes a body that could not be decoded into
// a contact. Status is chosen by the caller.
func NewInvalidContactError(status int, message string, errors []FieldError) *HTTPError {
	return &HTTPError{
		Code:    CodeInvalidContact,
		Message: message,
		Status:  status,
		Errors:  errors,
	}
}

// ValidationError converts a generic validation error into a 400 Bad Request HTTPError.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil)
}
