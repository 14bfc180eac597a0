package vision

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a generation failure.
type Kind string

const (
	// KindConfig means a provider credential is missing.
	KindConfig Kind = "configuration"
	// KindValidation means the inbound request is incomplete.
	KindValidation Kind = "validation"
	// KindMethod means the HTTP verb is not accepted.
	KindMethod Kind = "method"
	// KindUpstream means the provider failed or answered with something unusable.
	KindUpstream Kind = "upstream"
	// KindPartial means the provider answered with text but no image.
	KindPartial Kind = "partial"
	// KindFetch is a single reference image download failure. It never leaves
	// the adapter that produced it.
	KindFetch Kind = "fetch"
)

const suggestTryAnother = "Try a different provider."

// Error is the failure variant of a generation result.
type Error struct {
	Kind       Kind
	Message    string
	Status     int
	Code       string
	Details    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the failure onto the status code returned to the caller.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindConfig:
		return http.StatusInternalServerError
	case KindValidation:
		return http.StatusBadRequest
	case KindMethod:
		return http.StatusMethodNotAllowed
	case KindPartial:
		return http.StatusOK
	case KindUpstream:
		if e.Status >= 400 {
			return e.Status
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func configError(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func upstreamError(message string, err error) *Error {
	e := &Error{Kind: KindUpstream, Message: message, Err: err, Suggestion: suggestTryAnother}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// AsError converts any error into an *Error, treating unknown errors as
// upstream failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return upstreamError("Failed to generate design", err)
}

// MethodNotAllowed is returned for any verb other than the accepted one.
var MethodNotAllowed = &Error{Kind: KindMethod, Message: "Method not allowed"}
