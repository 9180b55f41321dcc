// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/platform/apperr"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/sec"
	"github.com/taibuivan/kassa/internal/platform/validate"
	"github.com/taibuivan/kassa/pkg/pointer"
	"github.com/taibuivan/kassa/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	GenerateAccessToken(accountID, email, username string) (string, error)
	VerifyToken(token string) (*sec.AuthClaims, error)
	TimeToLive() time.Duration
}

// PasswordHasher is the one-way credential verifier.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// Authorizer resolves the roles and effective permissions of an account.
type Authorizer interface {
	Resolve(context context.Context, accountID string) (*authz.Snapshot, error)
}

// Service implements the account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any change to hashing, denial
// ordering or token resolution must be reviewed with the gate in
// middleware.RequirePermissions in mind.
type Service struct {
	accounts   AccountRepository
	tokens     TokenIssuer
	hasher     PasswordHasher
	authorizer Authorizer
	logger     *slog.Logger
}

// NewService constructs a [Service] with its dependencies.
func NewService(
	accounts AccountRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	authorizer Authorizer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:   accounts,
		tokens:     tokens,
		hasher:     hasher,
		authorizer: authorizer,
		logger:     logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to apply for an account.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
	AvatarURL *string
}

// RegisterResult is returned to the applicant.
type RegisterResult struct {
	Message string   `json:"message"`
	User    *Account `json:"user"`
}

/*
Register validates, hashes and persists a new PENDING account.

The account is inactive until an administrator approves it.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Pending message and sanitized account
  - error: ValidationError, Conflict on taken email or username, storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {
	account, err := service.Create(context, input, StatusPending)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Message: MsgRegistered, User: account}, nil
}

/*
Create validates and persists an account in the given initial status.

Self-service registration always uses PENDING. Administrators may create
accounts directly in APPROVED, which also activates them.

Returns:
  - *Account: The stored account
  - error: ValidationError, Conflict on taken email or username, storage errors
*/
func (service *Service) Create(context context.Context, input RegisterInput, status Status) (*Account, error) {
	input.Email = NormalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	// Up-front check for a friendly message; the unique indexes still decide races
	emailTaken, usernameTaken, err := service.accounts.IdentityTaken(context, input.Email, input.Username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}
	if emailTaken {
		return nil, apperr.Conflict(MsgEmailTaken)
	}
	if usernameTaken {
		return nil, apperr.Conflict(MsgUsernameTaken)
	}

	hash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	avatarURL := emptyToNil(input.AvatarURL)
	if avatarURL == nil {
		avatarURL = pointer.To(InitialsAvatarURL(input.FirstName, input.LastName))
	}

	account := &Account{
		ID:           uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        emptyToNil(input.Phone),
		AvatarURL:    avatarURL,
		Status:       status,
		IsActive:     status == StatusApproved,
	}

	if err := service.accounts.Create(context, account); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict(MsgEmailTaken + " or " + strings.ToLower(MsgUsernameTaken))
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.logger.InfoContext(context, "account_registered",
		slog.String(constants.LogAccountID, account.ID),
		slog.String(constants.LogUsername, account.Username),
		slog.String("status", string(account.Status)),
	)

	return account, nil
}

func validateRegistration(input RegisterInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Username(FieldUsername, input.Username).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxLen(FieldPassword, input.Password, PasswordMaxLength).
		StrongPassword(FieldPassword, input.Password).
		Required(FieldFirstName, input.FirstName).
		MinLen(FieldFirstName, input.FirstName, NameMinLength).
		MaxLen(FieldFirstName, input.FirstName, NameMaxLength).
		Required(FieldLastName, input.LastName).
		MinLen(FieldLastName, input.LastName, NameMinLength).
		MaxLen(FieldLastName, input.LastName, NameMaxLength).
		Phone(FieldPhone, pointer.Val(input.Phone))
	return validator.Err()
}

// InitialsAvatarURL builds a generated avatar URL from a person's name.
func InitialsAvatarURL(firstName, lastName string) string {
	query := url.Values{}
	query.Set("name", strings.TrimSpace(firstName+" "+lastName))
	query.Set("background", "random")
	return avatarBaseURL + "?" + query.Encode()
}

// # Authentication Flow

// LoginResult is the session handed to a signed-in client.
type LoginResult struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	ExpiresIn   int             `json:"expiresIn"`
	User        *Profile        `json:"user"`
	Roles       []authz.RoleRef `json:"roles"`
}

/*
Authenticate verifies credentials and issues an access token.

Unknown identifiers and wrong secrets share one generic message so that
callers cannot probe which accounts exist. Only after the secret matches are
the account-state denials reported, in the order pending, rejected,
suspended, inactive.

Parameters:
  - context: context.Context
  - identifier: string (email or username)
  - secret: string

Returns:
  - *LoginResult: Token and profile
  - error: Unauthorized with the denial reason, or internal failures
*/
func (service *Service) Authenticate(context context.Context, identifier, secret string) (*LoginResult, error) {
	account, err := service.accounts.FindByIdentifier(context, strings.TrimSpace(identifier))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	// Constant-time comparison inside bcrypt
	if !service.hasher.Verify(secret, account.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	if err := denial(account); err != nil {
		service.logger.InfoContext(context, "login_denied",
			slog.String(constants.LogAccountID, account.ID),
			slog.String("status", string(account.Status)),
		)
		return nil, err
	}

	accessToken, err := service.tokens.GenerateAccessToken(account.ID, account.Email, account.Username)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	if err := service.accounts.TouchLastLogin(context, account.ID); err != nil {
		return nil, fmt.Errorf("auth_service_touch_login_failed: %w", err)
	}
	account.LastLoginAt = pointer.To(time.Now())

	snapshot, err := service.authorizer.Resolve(context, account.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_resolve_roles_failed: %w", err)
	}

	service.logger.InfoContext(context, "login_succeeded", slog.String(constants.LogAccountID, account.ID))

	profile := NewProfile(account, snapshot)
	return &LoginResult{
		AccessToken: accessToken,
		TokenType:   constants.TokenType,
		ExpiresIn:   int(service.tokens.TimeToLive().Seconds()),
		User:        profile,
		Roles:       profile.Roles,
	}, nil
}

// denial maps a non-sign-in-capable account to its client-facing reason.
func denial(account *Account) error {
	switch {
	case account.Status == StatusPending:
		return apperr.Unauthorized(MsgAwaitingApproval)
	case account.Status == StatusRejected:
		return apperr.Unauthorized(MsgRejected)
	case account.Status == StatusSuspended:
		return apperr.Unauthorized(MsgBlocked)
	case !account.IsActive:
		return apperr.Unauthorized(MsgInactive)
	}
	return nil
}

// # Token Resolution

/*
ResolveFromToken turns a bearer token into a fully checked identity.

The account is reloaded on every call, so suspension, rejection and deletion
take effect before the token expires. Every failure is reported as
Unauthorized; the underlying cause is logged.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *authz.Identity: Caller with roles and effective permissions
  - error: apperr.Unauthorized
*/
func (service *Service) ResolveFromToken(context context.Context, token string) (*authz.Identity, error) {
	claims, err := service.tokens.VerifyToken(token)
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}

	account, err := service.accounts.FindByID(context, claims.AccountID())
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			service.logger.WarnContext(context, "token_account_lookup_failed", slog.Any("error", err))
		}
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}

	if !account.CanSignIn() {
		return nil, apperr.Unauthorized(MsgInactive)
	}

	if err := service.accounts.TouchLastLogin(context, account.ID); err != nil {
		service.logger.WarnContext(context, "token_touch_login_failed", slog.Any("error", err))
	}

	snapshot, err := service.authorizer.Resolve(context, account.ID)
	if err != nil {
		service.logger.WarnContext(context, "token_authz_resolve_failed", slog.Any("error", err))
		return nil, apperr.Unauthorized(MsgInvalidToken)
	}

	return &authz.Identity{
		AccountID:   account.ID,
		Email:       account.Email,
		Username:    account.Username,
		Roles:       snapshot.Roles,
		Permissions: snapshot.Permissions,
	}, nil
}

// Profile returns the caller's sanitized account with roles and permissions.
func (service *Service) Profile(context context.Context, identity *authz.Identity) (*Profile, error) {
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	account, err := service.accounts.FindByID(context, identity.AccountID)
	if err != nil {
		return nil, err
	}

	return NewProfile(account, &authz.Snapshot{Roles: identity.Roles, Permissions: identity.Permissions}), nil
}

// # Approval Workflow

// Approve moves a PENDING account to APPROVED and activates it.
func (service *Service) Approve(context context.Context, accountID string) (*Account, error) {
	return service.Transition(context, accountID, StatusPending, StatusApproved)
}

// Reject moves a PENDING account to REJECTED and keeps it inactive.
func (service *Service) Reject(context context.Context, accountID string) (*Account, error) {
	return service.Transition(context, accountID, StatusPending, StatusRejected)
}

/*
Transition performs a guarded status change.

The active flag follows the target: only APPROVED accounts are active.

Returns:
  - *Account: The account after the change
  - error: NotFound when no live account exists, InvalidState when it is not in from
*/
func (service *Service) Transition(context context.Context, accountID string, from, to Status) (*Account, error) {
	moved, err := service.accounts.TransitionStatus(context, accountID, from, to, to == StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("auth_service_transition_failed: %w", err)
	}

	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	if !moved {
		return nil, apperr.InvalidState(fmt.Sprintf("Account is %s, expected %s", account.Status, from))
	}

	service.logger.InfoContext(context, "account_status_changed",
		slog.String(constants.LogAccountID, accountID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	return account, nil
}

// # Provisioning

/*
EnsureApproved creates an APPROVED, active account unless a live account
already holds the email or username.

Used by the seed command to bootstrap the first administrator.

Returns:
  - string: The account ID, new or existing
  - bool: Whether an account was created
  - error: ValidationError or storage failures
*/
func (service *Service) EnsureApproved(context context.Context, email, username, secret string) (string, bool, error) {
	email = NormalizeEmail(email)

	for _, identifier := range []string{email, username} {
		existing, err := service.accounts.FindByIdentifier(context, identifier)
		if err == nil {
			return existing.ID, false, nil
		}
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			return "", false, fmt.Errorf("auth_service_provision_failed: %w", err)
		}
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, email).
		MinLen(FieldUsername, username, UsernameMinLength).
		Username(FieldUsername, username).
		MinLen(FieldPassword, secret, PasswordMinLength).
		StrongPassword(FieldPassword, secret)
	if err := validator.Err(); err != nil {
		return "", false, err
	}

	hash, err := service.hasher.Hash(secret)
	if err != nil {
		return "", false, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	account := &Account{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Administrator",
		AvatarURL:    pointer.To(InitialsAvatarURL("System", "Administrator")),
		Status:       StatusApproved,
		IsActive:     true,
	}
	if err := service.accounts.Create(context, account); err != nil {
		return "", false, fmt.Errorf("auth_service_provision_failed: %w", err)
	}

	service.logger.InfoContext(context, "account_provisioned", slog.String(constants.LogAccountID, account.ID))
	return account.ID, true, nil
}

func emptyToNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return pointer.To(strings.TrimSpace(*value))
}
