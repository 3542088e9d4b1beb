package ai

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures of an analysis request.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindMisconfigured   Kind = "misconfigured"
	KindRateLimited     Kind = "rate_limited"
	KindQuotaExhausted  Kind = "quota_exhausted"
	KindUpstreamFailure Kind = "upstream_failure"
	KindEmptyResponse   Kind = "empty_response"
	// KindMalformedResult never leaves the extractor as an error; it only tags fallback outcomes.
	KindMalformedResult Kind = "malformed_result"
)

// Error is the domain error returned by the analysis gateway.
// Message is always safe to show to an end user.
type Error struct {
	Kind    Kind
	Message string
	Status  int // upstream HTTP status, 0 when there was no response
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on kind so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput    = &Error{Kind: KindInvalidInput, Message: "No image data provided"}
	ErrMisconfigured   = &Error{Kind: KindMisconfigured, Message: "AI service credential is not configured"}
	ErrRateLimited     = &Error{Kind: KindRateLimited, Message: "Rate limit exceeded. Please try again in a moment."}
	ErrQuotaExhausted  = &Error{Kind: KindQuotaExhausted, Message: "Service credits exhausted. Please add credits."}
	ErrUpstreamFailure = &Error{Kind: KindUpstreamFailure, Message: "AI analysis failed"}
	ErrEmptyResponse   = &Error{Kind: KindEmptyResponse, Message: "No analysis content returned"}
	ErrMalformedResult = &Error{Kind: KindMalformedResult, Message: "AI response format error"}
)

func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func Misconfigured(msg string) *Error {
	return &Error{Kind: KindMisconfigured, Message: msg}
}

func EmptyResponse(cause error) *Error {
	return &Error{Kind: KindEmptyResponse, Message: ErrEmptyResponse.Message, Cause: cause}
}

func MalformedResult(cause error) *Error {
	return &Error{Kind: KindMalformedResult, Message: ErrMalformedResult.Message, Cause: cause}
}

// FromStatus maps a non-success upstream HTTP status to a domain error.
func FromStatus(status int, cause error) *Error {
	switch status {
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Message: ErrRateLimited.Message, Status: status, Cause: cause}
	case http.StatusPaymentRequired:
		return &Error{Kind: KindQuotaExhausted, Message: ErrQuotaExhausted.Message, Status: status, Cause: cause}
	default:
		return &Error{
			Kind:    KindUpstreamFailure,
			Message: fmt.Sprintf("AI analysis failed: %d", status),
			Status:  status,
			Cause:   cause,
		}
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Analysis failed"
}

// HTTPStatus is the status an HTTP edge should answer with for err.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExhausted:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
