// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # Account Data Access

// AccountRepository defines the data access contract of the lifecycle.
//
// Every lookup ignores soft-deleted accounts.
type AccountRepository interface {

	/*
		FindByID returns the live account with the given ID.

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByIdentifier returns the live account whose email or username
		matches. The email side is compared against the folded identifier.

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByIdentifier(context context.Context, identifier string) (*Account, error)

	/*
		IdentityTaken reports which of email and username a live account holds.
	*/
	IdentityTaken(context context.Context, email, username string) (emailTaken, usernameTaken bool, err error)

	/*
		Create persists a new account. A unique violation yields a Conflict.
	*/
	Create(context context.Context, account *Account) error

	/*
		TransitionStatus moves a live account from one status to another and
		sets its active flag, only if it currently holds from.

		Returns:
		  - bool: false when no live account matched the expected status
		  - error: Storage failures
	*/
	TransitionStatus(context context.Context, id string, from, to Status, isActive bool) (bool, error)

	/*
		TouchLastLogin stamps lastloginat with the current time.
	*/
	TouchLastLogin(context context.Context, id string) error
}
