// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and token type.
  - Cache: Redis key taxonomy for authorization snapshots.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "kassa-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// AuthRateLimitRPS throttles credential endpoints per IP.
	AuthRateLimitRPS = 0.5

	// AuthRateLimitBurst allows a few quick retries before throttling.
	AuthRateLimitBurst = 5

	// RateLimitMaxClients caps the per-IP buckets kept in memory.
	RateLimitMaxClients = 100_000

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// DefaultAuthIssuer is the standard 'iss' claim in JWTs.
	DefaultAuthIssuer = "kassa"

	// TokenType is returned alongside access tokens.
	TokenType = "Bearer"

	// HeaderAuthorization carries the bearer token.
	HeaderAuthorization = "Authorization"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Log Attribute Keys

const (
	LogAccountID = "account_id"
	LogRoleID    = "role_id"
	LogRoles     = "roles"
	LogUsername  = "username"
)

// # Database Schemas

const (
	SchemaAccess = "access"
)

// # Redis Keys (Cache Taxonomy)

const (
	// RedisKeyAuthzEpoch is bumped on every role or assignment change.
	RedisKeyAuthzEpoch = "authz:epoch"

	// RedisPrefixAuthzSnapshot prefixes cached effective-permission snapshots.
	RedisPrefixAuthzSnapshot = "authz:snapshot:"
)
