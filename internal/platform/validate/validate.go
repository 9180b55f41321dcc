// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package validate collects field failures into one VALIDATION_ERROR.

Services build a [Validator], chain rules and return [Validator.Err]:

	validator := &validate.Validator{}
	validator.Required("name", input.Name).MaxLen("name", input.Name, 100)
	if err := validator.Err(); err != nil {
		return nil, err
	}

A Validator is single-use and not safe for concurrent use.
*/
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/pkg/uuid"
)

// passwordSpecials are the characters that satisfy the special-character rule.
const passwordSpecials = "@$!%*?&"

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

	// ErrInvalidJSON is returned when a request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator accumulates [apperr.FieldError] values.
type Validator struct {
	errs []apperr.FieldError
}

// check records message against field unless ok.
func (v *Validator) check(ok bool, field, message string) *Validator {
	if !ok {
		v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

// Required rejects blank values.
func (v *Validator) Required(field, value string) *Validator {
	return v.check(strings.TrimSpace(value) != "", field, "This field is required")
}

// MinLen and MaxLen count runes, not bytes.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	return v.check(utf8.RuneCountInString(value) >= min, field, fmt.Sprintf("Minimum %d characters", min))
}

func (v *Validator) MaxLen(field, value string, max int) *Validator {
	return v.check(utf8.RuneCountInString(value) <= max, field, fmt.Sprintf("Maximum %d characters", max))
}

// Email accepts a bare RFC 5322 address. Display-name forms are rejected.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	return v.check(err == nil && address.Address == value, field, "Must be a valid email address")
}

func (v *Validator) Username(field, value string) *Validator {
	return v.check(usernamePattern.MatchString(value), field, "Only letters, digits and underscores are allowed")
}

// Phone only checks non-empty values.
func (v *Validator) Phone(field, value string) *Validator {
	return v.check(value == "" || phonePattern.MatchString(value), field, "Must be a valid phone number")
}

// StrongPassword requires a lower case letter, an upper case letter, a digit
// and one of [passwordSpecials].
func (v *Validator) StrongPassword(field, value string) *Validator {
	var lower, upper, digit, special bool
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return v.check(lower && upper && digit && special, field,
		"Must contain lower and upper case letters, digits and a special character")
}

func (v *Validator) UUID(field, value string) *Validator {
	return v.check(uuid.Valid(value), field, "Must be a valid UUID")
}

// UUIDs reports at most one failure for the whole list.
func (v *Validator) UUIDs(field string, values []string) *Validator {
	return v.check(!slices.ContainsFunc(values, func(value string) bool { return !uuid.Valid(value) }),
		field, "Must contain only valid UUIDs")
}

func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	return v.check(slices.Contains(allowed, value), field, "Must be one of: "+strings.Join(allowed, ", "))
}

// Custom records message when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	return v.check(!failed, field, message)
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns nil, or a VALIDATION_ERROR carrying every failure in order.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}
