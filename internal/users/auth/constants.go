// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Field Identifiers

const (
	FieldEmail      = "email"
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldPhone      = "phone"
	FieldAvatarURL  = "avatarUrl"
	FieldIdentifier = "identifier"
)

// # Input Constraints

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	PasswordMinLength = 8
	PasswordMaxLength = 72 // bcrypt ignores anything longer
	NameMinLength     = 2
	NameMaxLength     = 100
)

// # Client Messages

const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgAwaitingApproval   = "Account is awaiting approval"
	MsgRejected           = "Account application was rejected"
	MsgBlocked            = "Account is blocked"
	MsgInactive           = "Account is inactive"
	MsgInvalidToken       = "Invalid or expired token"
	MsgEmailTaken         = "Email is already registered"
	MsgUsernameTaken      = "Username is already taken"
	MsgRegistered         = "Registration submitted. Your account is awaiting administrator approval."
)

// PermissionApprove gates the approval workflow.
const PermissionApprove = "users.approve"

// avatarBaseURL renders initials avatars for accounts without a picture.
const avatarBaseURL = "https://ui-avatars.com/api/"
