// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/dberr"
)

/*
TestWrap_Classification checks the SQLSTATE to taxonomy mapping.
*/
func TestWrap_Classification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	foreign := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, "NOT_FOUND"},
		{"unique_violation", unique, "CONFLICT"},
		{"foreign_key_violation", foreign, "NOT_FOUND"},
		{"unknown", errors.New("connection reset"), "INTERNAL_ERROR"},
		{"already_classified", apperr.InvalidState("nope"), "INVALID_STATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "Role"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}

	assert.Nil(t, dberr.Wrap(nil, "Role"))
	assert.Equal(t, "Role not found", dberr.Wrap(pgx.ErrNoRows, "Role").Error())
	assert.Equal(t, "Referenced role not found", dberr.Wrap(foreign, "Role").Error())
}

/*
TestIsUniqueViolation only matches SQLSTATE 23505.
*/
func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, dberr.IsUniqueViolation(errors.New("x")))
}
