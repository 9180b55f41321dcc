// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/validate"
)

/*
TestRules runs every rule against one passing and some failing inputs.
*/
func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		apply func(v *validate.Validator)
		fails bool
	}{
		{"required_ok", func(v *validate.Validator) { v.Required("name", "Kassa") }, false},
		{"required_blank", func(v *validate.Validator) { v.Required("name", "   ") }, true},
		{"min_len_runes", func(v *validate.Validator) { v.MinLen("name", "Žoë", 3) }, false},
		{"max_len_exceeded", func(v *validate.Validator) { v.MaxLen("name", "abcdef", 5) }, true},
		{"email_ok", func(v *validate.Validator) { v.Email("email", "test@example.com") }, false},
		{"email_no_domain", func(v *validate.Validator) { v.Email("email", "test@") }, true},
		{"email_display_name", func(v *validate.Validator) { v.Email("email", "Bob <bob@example.com>") }, true},
		{"email_empty", func(v *validate.Validator) { v.Email("email", "") }, true},
		{"username_ok", func(v *validate.Validator) { v.Username("username", "john_doe1") }, false},
		{"username_dash", func(v *validate.Validator) { v.Username("username", "john-doe") }, true},
		{"password_ok", func(v *validate.Validator) { v.StrongPassword("password", "P@ssw0rd1") }, false},
		{"password_no_special", func(v *validate.Validator) { v.StrongPassword("password", "Passw0rd1") }, true},
		{"password_no_upper", func(v *validate.Validator) { v.StrongPassword("password", "p@ssw0rd1") }, true},
		{"phone_empty", func(v *validate.Validator) { v.Phone("phone", "") }, false},
		{"phone_ok", func(v *validate.Validator) { v.Phone("phone", "+79991234567") }, false},
		{"phone_letters", func(v *validate.Validator) { v.Phone("phone", "call-me") }, true},
		{"uuid_upper", func(v *validate.Validator) { v.UUID("id", "0190A4F2-7C4E-7A3B-9C1D-2E3F4A5B6C7D") }, false},
		{"uuid_bad", func(v *validate.Validator) { v.UUID("id", "42") }, true},
		{"uuids_ok", func(v *validate.Validator) {
			v.UUIDs("permissionIds", []string{"0190a4f2-7c4e-7a3b-9c1d-2e3f4a5b6c7d"})
		}, false},
		{"uuids_empty", func(v *validate.Validator) { v.UUIDs("permissionIds", []string{}) }, false},
		{"uuids_bad", func(v *validate.Validator) { v.UUIDs("permissionIds", []string{"nope"}) }, true},
		{"one_of_ok", func(v *validate.Validator) { v.OneOf("status", "PENDING", "PENDING", "APPROVED") }, false},
		{"one_of_miss", func(v *validate.Validator) { v.OneOf("status", "pending", "PENDING", "APPROVED") }, true},
		{"custom", func(v *validate.Validator) { v.Custom("name", true, "Reserved") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.apply(v)
			assert.Equal(t, tt.fails, v.HasErrors())
		})
	}
}

/*
TestErr_Accumulates keeps every failure of a chain, in order.
*/
func TestErr_Accumulates(t *testing.T) {
	v := &validate.Validator{}
	assert.NoError(t, v.Required("username", "tai").Email("email", "tai@kassa.shop").Err())

	err := v.
		Required("username", "").
		MinLen("username", "a", 5).
		Email("email", "not-an-email").
		Err()

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	require.Len(t, ae.Details, 3)
	assert.Equal(t, "username", ae.Details[0].Field)
	assert.Equal(t, "email", ae.Details[2].Field)
}
