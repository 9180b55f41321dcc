// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/validate"
	"github.com/taibuivan/kassa/pkg/pagination"
	"github.com/taibuivan/kassa/pkg/slice"
	"github.com/taibuivan/kassa/pkg/uuid"
)

const (
	msgNameTaken          = "Role name already exists"
	msgSystemImmutable    = "System roles cannot be modified"
	msgSystemUndeletable  = "System roles cannot be deleted"
	msgRoleHasHolders     = "Role is assigned to one or more accounts"
	msgUnknownPermissions = "One or more permission IDs are invalid"
	msgAlreadyAssigned    = "Role is already assigned to this account"
)

// # Contracts

// PermissionResolver looks up catalog entries by id.
type PermissionResolver interface {
	ResolveByIDs(context context.Context, ids []string) ([]*permission.Permission, error)
}

// Invalidator drops cached effective permissions.
type Invalidator interface {
	Invalidate(context context.Context) error
}

// Service implements the role registry and role assignment.
type Service struct {
	repo        Repository
	assignments AssignmentRepository
	permissions PermissionResolver
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService constructs a [Service].
func NewService(
	repo Repository,
	assignments AssignmentRepository,
	permissions PermissionResolver,
	invalidator Invalidator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		assignments: assignments,
		permissions: permissions,
		invalidator: invalidator,
		logger:      logger,
	}
}

// # Registry

/*
List returns one page of roles with their permissions and holder counts.

The page and the total are fetched concurrently.

Returns:
  - []*Role: Page ordered system first, then by name
  - int: Total number of roles
  - error: Storage failures
*/
func (service *Service) List(context context.Context, params pagination.Params) ([]*Role, int, error) {
	var (
		roles []*Role
		total int
	)

	group, groupContext := errgroup.WithContext(context)
	group.Go(func() error {
		var err error
		roles, err = service.repo.List(groupContext, params.Limit, params.Offset())
		return err
	})
	group.Go(func() error {
		var err error
		total, err = service.repo.Count(groupContext)
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, 0, fmt.Errorf("role_list_failed: %w", err)
	}
	return roles, total, nil
}

// Get returns a role with permissions and holder count.
func (service *Service) Get(context context.Context, id string) (*Role, error) {
	return service.repo.FindByID(context, id)
}

// GetByName returns a role by its unique name.
func (service *Service) GetByName(context context.Context, name string) (*Role, error) {
	return service.repo.FindByName(context, name)
}

/*
Create registers a new role with its permission set.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Role: The stored role with permissions
  - error: ValidationError, Conflict on a taken name, or storage errors
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Role, error) {
	validator := &validate.Validator{}
	validator.Required("name", input.Name).
		MinLen("name", input.Name, nameMinLength).
		MaxLen("name", input.Name, nameMaxLength).
		UUIDs("permissionIds", input.PermissionIDs)
	if input.Description != nil {
		validator.MaxLen("description", *input.Description, descriptionMaxLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.FindByName(context, input.Name); err == nil {
		return nil, apperr.Conflict(msgNameTaken)
	} else if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("role_create_failed: %w", err)
	}

	permissionIDs, err := service.resolvePermissions(context, input.PermissionIDs)
	if err != nil {
		return nil, err
	}

	role := &Role{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		IsSystem:    input.IsSystem,
	}
	if err := service.repo.Create(context, role, permissionIDs); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(msgNameTaken)
		}
		return nil, fmt.Errorf("role_create_failed: %w", err)
	}

	service.invalidate(context)
	service.logger.InfoContext(context, "role_created",
		slog.String(constants.LogRoleID, role.ID),
		slog.String("name", role.Name),
		slog.Int("permissions", len(permissionIDs)),
	)

	return service.repo.FindByID(context, role.ID)
}

/*
Update applies a partial update to a non-system role.

A non-nil PermissionIDs replaces the set, empty included.

Returns:
  - *Role: The updated role
  - error: NotFound, Forbidden for system roles, Conflict on rename collision,
    ValidationError for unknown permissions
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Role, error) {
	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required("name", *input.Name).
			MinLen("name", *input.Name, nameMinLength).
			MaxLen("name", *input.Name, nameMaxLength)
	}
	if input.Description != nil {
		validator.MaxLen("description", *input.Description, descriptionMaxLength)
	}
	if input.PermissionIDs != nil {
		validator.UUIDs("permissionIds", *input.PermissionIDs)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	role, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if role.IsSystem {
		return nil, apperr.Forbidden(msgSystemImmutable)
	}

	if input.Name != nil && *input.Name != role.Name {
		if _, err := service.repo.FindByName(context, *input.Name); err == nil {
			return nil, apperr.Conflict(msgNameTaken)
		} else if !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, fmt.Errorf("role_update_failed: %w", err)
		}
		role.Name = *input.Name
	}

	if input.Description != nil {
		role.Description = input.Description
	}

	var permissionIDs *[]string
	if input.PermissionIDs != nil {
		resolved, err := service.resolvePermissions(context, *input.PermissionIDs)
		if err != nil {
			return nil, err
		}
		permissionIDs = &resolved
	}

	if err := service.repo.Update(context, role, permissionIDs); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(msgNameTaken)
		}
		return nil, fmt.Errorf("role_update_failed: %w", err)
	}

	service.invalidate(context)
	service.logger.InfoContext(context, "role_updated",
		slog.String(constants.LogRoleID, role.ID),
		slog.Bool("permissions_replaced", permissionIDs != nil),
	)

	return service.repo.FindByID(context, role.ID)
}

/*
Delete removes a role that is neither system nor held by any account.

Returns:
  - error: NotFound, InvalidState for system or held roles
*/
func (service *Service) Delete(context context.Context, id string) error {
	role, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return apperr.InvalidState(msgSystemUndeletable)
	}
	if role.UsersCount > 0 {
		return apperr.InvalidState(msgRoleHasHolders)
	}

	deleted, err := service.repo.Delete(context, id)
	if err != nil {
		return fmt.Errorf("role_delete_failed: %w", err)
	}
	if !deleted {
		// An assignment landed between the check and the delete
		return apperr.InvalidState(msgRoleHasHolders)
	}

	service.invalidate(context)
	service.logger.InfoContext(context, "role_deleted",
		slog.String(constants.LogRoleID, id),
		slog.String("name", role.Name),
	)
	return nil
}

// # Assignment

/*
Assign grants a role to a non-deleted account.

Returns:
  - error: NotFound for a missing account or role, Conflict when already held
*/
func (service *Service) Assign(context context.Context, accountID, roleID string) error {
	if err := service.requireAccount(context, accountID); err != nil {
		return err
	}

	if _, err := service.repo.FindByID(context, roleID); err != nil {
		return err
	}

	held, err := service.assignments.Exists(context, accountID, roleID)
	if err != nil {
		return fmt.Errorf("role_assign_failed: %w", err)
	}
	if held {
		return apperr.Conflict(msgAlreadyAssigned)
	}

	if err := service.assignments.Assign(context, accountID, roleID); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return err
		}
		return fmt.Errorf("role_assign_failed: %w", err)
	}

	service.invalidate(context)
	service.logger.InfoContext(context, "role_assigned",
		slog.String(constants.LogAccountID, accountID),
		slog.String(constants.LogRoleID, roleID),
	)
	return nil
}

/*
Unassign revokes a role from an account.

Returns:
  - error: NotFound when the account does not hold the role
*/
func (service *Service) Unassign(context context.Context, accountID, roleID string) error {
	removed, err := service.assignments.Unassign(context, accountID, roleID)
	if err != nil {
		return fmt.Errorf("role_unassign_failed: %w", err)
	}
	if !removed {
		return apperr.NotFound("Role assignment")
	}

	service.invalidate(context)
	service.logger.InfoContext(context, "role_unassigned",
		slog.String(constants.LogAccountID, accountID),
		slog.String(constants.LogRoleID, roleID),
	)
	return nil
}

// ListForAccount returns the roles held by a non-deleted account.
func (service *Service) ListForAccount(context context.Context, accountID string) ([]*Assignment, error) {
	if err := service.requireAccount(context, accountID); err != nil {
		return nil, err
	}
	return service.assignments.ListForAccount(context, accountID)
}

// # Helpers

func (service *Service) requireAccount(context context.Context, accountID string) error {
	exists, err := service.assignments.AccountExists(context, accountID)
	if err != nil {
		return fmt.Errorf("role_account_lookup_failed: %w", err)
	}
	if !exists {
		return apperr.NotFound("Account")
	}
	return nil
}

// resolvePermissions rejects the request unless every distinct id is in the catalog.
func (service *Service) resolvePermissions(context context.Context, ids []string) ([]string, error) {
	distinct := slice.Unique(ids)
	if len(distinct) == 0 {
		return []string{}, nil
	}

	found, err := service.permissions.ResolveByIDs(context, distinct)
	if err != nil {
		return nil, err
	}

	if len(found) != len(distinct) {
		return nil, apperr.ValidationError(msgUnknownPermissions, apperr.FieldError{
			Field:   "permissionIds",
			Message: msgUnknownPermissions,
		})
	}
	return distinct, nil
}

// invalidate bumps the authorization cache. A failure is logged and the
// engine reads from the database until a later bump succeeds.
func (service *Service) invalidate(context context.Context) {
	if service.invalidator == nil {
		return
	}
	if err := service.invalidator.Invalidate(context); err != nil {
		service.logger.ErrorContext(context, "authz_invalidate_failed", slog.Any("error", err))
	}
}
