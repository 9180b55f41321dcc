// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid mints and checks the identifiers used as kassa primary keys.

New ids are UUIDv7, so they sort by creation time and keep PostgreSQL B-tree
inserts append-only.
*/
package uuid

import "github.com/google/uuid"

// canonicalLength is the 8-4-4-4-12 hex form.
const canonicalLength = 36

// New returns a fresh UUIDv7 string. It panics only if the system entropy
// source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether value is a UUID in canonical hyphenated form, of any
// version and in either case. URN and braced forms are rejected.
func Valid(value string) bool {
	if len(value) != canonicalLength {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}
