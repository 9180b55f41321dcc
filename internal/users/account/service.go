// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/validate"
	"github.com/taibuivan/kassa/internal/users/auth"
	"github.com/taibuivan/kassa/pkg/pagination"
	"github.com/taibuivan/kassa/pkg/pointer"
)

// # Contracts

// Lifecycle performs guarded status changes and direct account creation.
// [*auth.Service] satisfies it.
type Lifecycle interface {
	Create(context context.Context, input auth.RegisterInput, status auth.Status) (*auth.Account, error)
	Transition(context context.Context, accountID string, from, to auth.Status) (*auth.Account, error)
}

// Service orchestrates administrative account management.
type Service struct {
	repo       Repository
	lifecycle  Lifecycle
	hasher     auth.PasswordHasher
	authorizer auth.Authorizer
	logger     *slog.Logger
}

// NewService constructs a [Service] with its dependencies.
func NewService(
	repo Repository,
	lifecycle Lifecycle,
	hasher auth.PasswordHasher,
	authorizer auth.Authorizer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		lifecycle:  lifecycle,
		hasher:     hasher,
		authorizer: authorizer,
		logger:     logger,
	}
}

// # Queries

/*
List returns one page of accounts and the total matching the filter.

The page and the total are fetched concurrently.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - []*auth.Account: Newest first
  - int: Total matching accounts
  - error: ValidationError on an unknown status, storage failures
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*auth.Account, int, error) {
	if filter.Status != "" {
		validator := &validate.Validator{}
		validator.OneOf("status", string(filter.Status), auth.Statuses...)
		if err := validator.Err(); err != nil {
			return nil, 0, err
		}
	}

	var (
		accounts []*auth.Account
		total    int
	)

	group, groupContext := errgroup.WithContext(context)
	group.Go(func() error {
		var err error
		accounts, err = service.repo.List(groupContext, filter, params.Limit, params.Offset())
		return err
	})
	group.Go(func() error {
		var err error
		total, err = service.repo.Count(groupContext, filter)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return accounts, total, nil
}

// Get returns a live account with its roles and effective permissions.
func (service *Service) Get(context context.Context, id string) (*auth.Profile, error) {
	account, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	snapshot, err := service.authorizer.Resolve(context, id)
	if err != nil {
		return nil, fmt.Errorf("account_service_resolve_roles_failed: %w", err)
	}
	return auth.NewProfile(account, snapshot), nil
}

// # Commands

// Create adds an account that may sign in immediately.
func (service *Service) Create(context context.Context, input auth.RegisterInput) (*auth.Account, error) {
	return service.lifecycle.Create(context, input, auth.StatusApproved)
}

/*
Update applies a partial profile edit.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *auth.Account: The account after the edit
  - error: NotFound, ValidationError, Conflict on a taken email or username
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*auth.Account, error) {
	account, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		account.Email = auth.NormalizeEmail(*input.Email)
	}
	if input.Username != nil {
		account.Username = strings.TrimSpace(*input.Username)
	}
	if input.FirstName != nil {
		account.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		account.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		account.Phone = blankToNil(*input.Phone)
	}
	if input.AvatarURL != nil {
		account.AvatarURL = blankToNil(*input.AvatarURL)
	}

	validator := &validate.Validator{}
	validator.Email(auth.FieldEmail, account.Email).
		MinLen(auth.FieldUsername, account.Username, auth.UsernameMinLength).
		MaxLen(auth.FieldUsername, account.Username, auth.UsernameMaxLength).
		Username(auth.FieldUsername, account.Username).
		MinLen(auth.FieldFirstName, account.FirstName, auth.NameMinLength).
		MaxLen(auth.FieldFirstName, account.FirstName, auth.NameMaxLength).
		MinLen(auth.FieldLastName, account.LastName, auth.NameMinLength).
		MaxLen(auth.FieldLastName, account.LastName, auth.NameMaxLength).
		Phone(auth.FieldPhone, pointer.Val(account.Phone))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, account); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "account_updated", slog.String(constants.LogAccountID, id))
	return account, nil
}

// Suspend blocks an APPROVED account. Its tokens stop resolving at once.
func (service *Service) Suspend(context context.Context, id string) (*auth.Account, error) {
	return service.lifecycle.Transition(context, id, auth.StatusApproved, auth.StatusSuspended)
}

// Reinstate returns a SUSPENDED account to APPROVED.
func (service *Service) Reinstate(context context.Context, id string) (*auth.Account, error) {
	return service.lifecycle.Transition(context, id, auth.StatusSuspended, auth.StatusApproved)
}

/*
Delete soft-deletes a live account and releases its email and username.

Parameters:
  - context: context.Context
  - actorID: string (the operator performing the deletion)
  - id: string

Returns:
  - error: InvalidState when deleting oneself, NotFound when not live
*/
func (service *Service) Delete(context context.Context, actorID, id string) error {
	if actorID == id {
		return apperr.InvalidState(msgSelfDelete)
	}

	deleted, err := service.repo.SoftDelete(context, id)
	if err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}
	if !deleted {
		return apperr.NotFound("Account")
	}

	service.logger.WarnContext(context, "account_deleted",
		slog.String(constants.LogAccountID, id),
		slog.String("actor_id", actorID),
	)
	return nil
}

/*
Restore brings back a soft-deleted account with its status untouched.

Returns:
  - *auth.Account: The restored account
  - error: Conflict when its identity was re-taken, InvalidState when it is
    live, NotFound when it never existed
*/
func (service *Service) Restore(context context.Context, id string) (*auth.Account, error) {
	restored, err := service.repo.Restore(context, id)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(msgIdentityRetaken)
		}
		return nil, fmt.Errorf("account_service_restore_failed: %w", err)
	}

	if !restored {
		if _, err := service.repo.FindByID(context, id); err != nil {
			return nil, err
		}
		return nil, apperr.InvalidState(msgNotDeleted)
	}

	service.logger.InfoContext(context, "account_restored", slog.String(constants.LogAccountID, id))
	return service.repo.FindByID(context, id)
}

// ChangePassword replaces the secret of a live account.
func (service *Service) ChangePassword(context context.Context, id, secret string) error {
	validator := &validate.Validator{}
	validator.Required(auth.FieldPassword, secret).
		MinLen(auth.FieldPassword, secret, auth.PasswordMinLength).
		MaxLen(auth.FieldPassword, secret, auth.PasswordMaxLength).
		StrongPassword(auth.FieldPassword, secret)
	if err := validator.Err(); err != nil {
		return err
	}

	hash, err := service.hasher.Hash(secret)
	if err != nil {
		return fmt.Errorf("account_service_hash_failed: %w", err)
	}

	changed, err := service.repo.UpdatePasswordHash(context, id, hash)
	if err != nil {
		return fmt.Errorf("account_service_change_password_failed: %w", err)
	}
	if !changed {
		return apperr.NotFound("Account")
	}

	service.logger.InfoContext(context, "account_password_changed", slog.String(constants.LogAccountID, id))
	return nil
}

func blankToNil(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return pointer.To(strings.TrimSpace(value))
}
