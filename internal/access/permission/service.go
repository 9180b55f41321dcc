// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/taibuivan/kassa/pkg/slice"
)

// CatalogTTL bounds how long a grouped listing is served from memory.
const CatalogTTL = time.Minute

const catalogKey = "catalog"

// Service exposes the permission catalog.
type Service struct {
	repo   Repository
	cache  *expirable.LRU[string, *Catalog]
	logger *slog.Logger
}

// NewService constructs a [Service] with an in-process catalog cache.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  expirable.NewLRU[string, *Catalog](1, nil, CatalogTTL),
		logger: logger,
	}
}

/*
ListGroupedByCategory returns the catalog grouped by category.

Groups are ordered by category and permissions within a group by name.

Returns:
  - *Catalog: groups and total count
  - error: Storage failures
*/
func (service *Service) ListGroupedByCategory(context context.Context) (*Catalog, error) {
	if catalog, ok := service.cache.Get(catalogKey); ok {
		return catalog, nil
	}

	permissions, err := service.repo.ListAll(context)
	if err != nil {
		return nil, fmt.Errorf("permission_list_failed: %w", err)
	}

	catalog := group(permissions)
	service.cache.Add(catalogKey, catalog)
	return catalog, nil
}

// Get returns a single permission.
func (service *Service) Get(context context.Context, id string) (*Permission, error) {
	return service.repo.FindByID(context, id)
}

/*
ResolveByIDs returns the permissions matching ids.

Duplicate ids are collapsed before lookup. Unknown ids are silently skipped;
callers compare the result length with [slice.Unique] of their input.
*/
func (service *Service) ResolveByIDs(context context.Context, ids []string) ([]*Permission, error) {
	permissions, err := service.repo.FindByIDs(context, slice.Unique(ids))
	if err != nil {
		return nil, fmt.Errorf("permission_resolve_failed: %w", err)
	}
	return permissions, nil
}

// ResolveByNames returns the permissions matching names.
func (service *Service) ResolveByNames(context context.Context, names []string) ([]*Permission, error) {
	permissions, err := service.repo.FindByNames(context, slice.Unique(names))
	if err != nil {
		return nil, fmt.Errorf("permission_resolve_failed: %w", err)
	}
	return permissions, nil
}

/*
Sync upserts the given permissions by name and drops the cached listing.

Returns:
  - int: Number of permissions written
  - error: The first storage failure
*/
func (service *Service) Sync(context context.Context, permissions []*Permission) (int, error) {
	defer service.cache.Purge()

	for index, permission := range permissions {
		if err := service.repo.Upsert(context, permission); err != nil {
			return index, err
		}
	}

	service.logger.InfoContext(context, "permission_catalog_synced",
		slog.Int("count", len(permissions)),
	)
	return len(permissions), nil
}
