// internal/app/system/respond/respond.go

// Package respond writes JSON responses and maps errors to HTTP statuses.
//
// Services return *Error for failures the caller can act on (bad input,
// forbidden, conflict). Handlers pass every error to Err, which also
// understands the store sentinels and turns anything else into a logged
// 500.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/pipapal/internal/app/store"
	"github.com/dalemusser/pipapal/internal/app/system/limits"
	"go.uber.org/zap"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a failure with a definite HTTP status and a client-safe message.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string { return e.Message }

func BadRequest(msg string) *Error { return &Error{Status: http.StatusBadRequest, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Status: http.StatusForbidden, Message: msg} }

func NotFound(msg string) *Error { return &Error{Status: http.StatusNotFound, Message: msg} }

func Conflict(msg string) *Error { return &Error{Status: http.StatusConflict, Message: msg} }

func TooManyRequests(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: msg}
}

// Validation is a 400 carrying per-field messages.
func Validation(fields []FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Validation failed", Fields: fields}
}

type errorBody struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// Created writes v with status 201.
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Message: msg})
}

// Err maps err to a response. Unknown errors are logged and become a 500
// with a generic message.
func Err(w http.ResponseWriter, log *zap.Logger, err error) {
	var e *Error
	switch {
	case errors.As(err, &e):
		JSON(w, e.Status, errorBody{Message: e.Message, Errors: e.Fields})
	case errors.Is(err, store.ErrNotFound):
		Message(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrConflict):
		Message(w, http.StatusConflict, "Conflict")
	case errors.Is(err, store.ErrDuplicate):
		Message(w, http.StatusBadRequest, "Already exists")
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		Message(w, http.StatusInternalServerError, "Internal server error")
	}
}

// DecodeJSON reads the request body into dst. A malformed body is a 400.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return BadRequest("Request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, limits.MaxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return BadRequest("Invalid JSON body")
	}
	return nil
}
