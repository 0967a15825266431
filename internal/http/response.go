// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for JSON responses and the mapping
// from ledger errors onto status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget/internal/core"
	"budget/internal/ledger"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil payload with a 204
// status writes no body at all.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		http.Error(w, `{"error":"encoding failed","code":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// Error codes carried in error bodies.
const (
	CodeBadRequest  = "bad_request"
	CodeValidation  = "validation"
	CodeNotFound    = "not_found"
	CodePersistence = "persistence"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal"
	CodeUnavailable = "unavailable"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, Code: code})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, CodeBadRequest, message)
}

// ValidationErrorResponse creates a 422 naming the offending field.
func ValidationErrorResponse(field, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusUnprocessableEntity).
		Body(errorBody{Error: message, Code: CodeValidation, Field: field})
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, message)
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, please try again later")
}

// FromError maps ledger errors onto responses. Persistence and unknown
// errors do not leak their cause to the client.
func FromError(err error) *JSONResponseBuilder {
	var (
		verr *ledger.ValidationError
		nerr *ledger.NotFoundError
		perr *ledger.PersistenceError
	)
	switch {
	case errors.As(err, &verr):
		return ValidationErrorResponse(verr.Field, validationMessage(verr))
	case errors.As(err, &nerr):
		return NotFoundError(nerr.Error())
	case errors.As(err, &perr):
		return ErrorResponse(http.StatusInternalServerError, CodePersistence, "could not save changes")
	default:
		return InternalServerError("internal error")
	}
}

func validationMessage(err *ledger.ValidationError) string {
	switch {
	case errors.Is(err, core.ErrMissingRequired):
		return err.Field + " is required"
	case errors.Is(err, core.ErrNonPositiveAmount):
		return "amount must be greater than zero"
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount is not a valid number"
	case errors.Is(err, core.ErrInvalidCategory):
		return "category does not belong to the selected type"
	case errors.Is(err, core.ErrInvalidType):
		return "type must be income or expense"
	case errors.Is(err, core.ErrInvalidDate):
		return "date must be formatted as YYYY-MM-DD"
	default:
		return err.Error()
	}
}
