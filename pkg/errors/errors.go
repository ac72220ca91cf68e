package errors

import (
	stdErrors "errors"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	// order placement
	CodeBuyerRequired     Code = "BUYER_REQUIRED"
	CodeEmptyOrder        Code = "EMPTY_ORDER"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeConcurrency       Code = "CONCURRENCY_CONFLICT"
)

// Metadata is how a Code surfaces over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

// ServerSide reports a 5xx mapping. Those messages stay out of responses.
func (m Metadata) ServerSide() bool {
	return m.HTTPStatus >= http.StatusInternalServerError
}

var catalog = map[Code]Metadata{
	CodeValidation:    {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
	CodeUnauthorized:  {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
	CodeForbidden:     {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied"},
	CodeNotFound:      {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeConflict:      {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected"},
	CodeStateConflict: {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "state transition disallowed", DetailsAllowed: true},
	CodeIdempotency:   {HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", DetailsAllowed: true},
	CodeRateLimit:     {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "rate limit exceeded"},
	CodeInternal:      {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"},
	CodeDependency:    {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "dependency unavailable", DetailsAllowed: true},

	CodeBuyerRequired:     {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "a buyer is required"},
	CodeEmptyOrder:        {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "order has no lines"},
	CodeInsufficientStock: {HTTPStatus: http.StatusConflict, PublicMessage: "insufficient stock", DetailsAllowed: true},
	CodeConcurrency:       {HTTPStatus: http.StatusConflict, Retryable: true, PublicMessage: "concurrent update detected, retry the request", DetailsAllowed: true},
}

// Meta returns the mapping for c. Unknown codes are treated as internal.
func (c Code) Meta() Metadata {
	if meta, ok := catalog[c]; ok {
		return meta
	}
	return catalog[CodeInternal]
}

func MetadataFor(code Code) Metadata {
	return code.Meta()
}

// Error is the typed error every layer returns. A nil *Error reads as an
// empty internal error.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.details = details
	return &clone
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.code) + ": " + e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
