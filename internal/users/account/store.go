// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"

	"github.com/taibuivan/kassa/internal/users/auth"
)

// Repository is the administrative view over account storage.
type Repository interface {

	/*
		FindByID returns the live account with the given ID.

		Returns:
		  - *auth.Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	/*
		List returns one page of accounts matching filter, newest first.
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*auth.Account, error)

	/*
		Count returns the number of accounts matching filter.
	*/
	Count(context context.Context, filter Filter) (int, error)

	/*
		Update writes the editable profile columns of a live account.
		A unique violation on email or username yields a Conflict.
	*/
	Update(context context.Context, account *auth.Account) error

	/*
		SoftDelete stamps deletedat and deactivates a live account.

		Returns:
		  - bool: false when no live account matched
	*/
	SoftDelete(context context.Context, id string) (bool, error)

	/*
		Restore clears deletedat of a deleted account. The account is active
		again only when its status is APPROVED; the status itself is untouched.

		Returns:
		  - bool: false when no deleted account matched
		  - error: Conflict when a live account now holds its email or username
	*/
	Restore(context context.Context, id string) (bool, error)

	/*
		UpdatePasswordHash replaces the stored hash of a live account.
	*/
	UpdatePasswordHash(context context.Context, id, hash string) (bool, error)
}
