// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr is the error vocabulary of kassa.

Services return an [*AppError] (possibly wrapped with fmt.Errorf and %w) and
the transport renders it as {"error", "code", "details"} with HTTPStatus. The
codes the access core produces:

  - CONFLICT: duplicate email, username, role name or assignment pair.
  - NOT_FOUND: missing account, role, permission or assignment.
  - INVALID_STATE: the target's lifecycle state forbids the operation.
  - VALIDATION_ERROR: malformed input or unresolved permission ids.
  - UNAUTHORIZED: missing or bad token, bad credentials, blocked account.
  - FORBIDDEN: caller lacks a required permission, or a system role is touched.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes rendered in the "code" field.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeValidation   = "VALIDATION_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is a client-safe error with its HTTP rendering.
//
// Cause is logged server-side and never serialized.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError is one failed field of a VALIDATION_ERROR.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Constructors

// NotFound reports a missing resource as "<resource> not found".
func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Unauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *AppError {
	return newError(http.StatusConflict, CodeConflict, message)
}

// InvalidState shares 409 with [Conflict] but signals a lifecycle rule
// (approving an approved account, deleting a role that still has holders).
func InvalidState(message string) *AppError {
	return newError(http.StatusConflict, CodeInvalidState, message)
}

func ValidationError(message string, details ...FieldError) *AppError {
	err := newError(http.StatusBadRequest, CodeValidation, message)
	err.Details = details
	return err
}

func RateLimited(retryAfterSeconds int) *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	err := newError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// # Inspection

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var target *AppError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// HasCode reports whether err's chain carries an [*AppError] with code.
func HasCode(err error, code string) bool {
	target := As(err)
	return target != nil && target.Code == code
}
