/*
 * Copyright 2026 romakot321.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/romakot321/bun-service/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines the generic CRUD operations for an entity type.
// The primary-key column is id by convention.
type CrudRepository[T any] interface {
	// GetOne returns the entity with the given primary key, or an error
	// wrapping database.ErrNotFound when zero rows match.
	GetOne(ctx context.Context, id any) (*T, error)

	// GetBy returns exactly one entity matching the filter, or an error
	// wrapping database.ErrNotFound when zero rows match.
	GetBy(ctx context.Context, filter *types.QueryFilter) (*T, error)

	// List returns entities ordered by primary key ascending unless the page
	// request carries explicit orders. Pagination applies only when both page
	// and count are set; otherwise all matching rows are returned.
	List(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) ([]*T, error)

	// Create builds a new entity from schema field values and inserts it.
	// The returned entity carries the generated primary key.
	Create(ctx context.Context, fields []types.SchemaField) (*T, error)

	// Insert stores already built entities.
	Insert(ctx context.Context, entity ...*T) error

	// Update fetches the entity by primary key, overwrites only the given
	// fields, and persists it. Returns database.ErrNotFound when the key is
	// absent.
	Update(ctx context.Context, id any, fields []types.SchemaField) (*T, error)

	// Delete removes the entity with the given primary key and returns
	// database.ErrNotFound when no row was removed.
	Delete(ctx context.Context, id any) error
}

// CountRepository defines row counting operations.
type CountRepository[T any] interface {
	// Count returns the number of rows matching the filter; a nil filter
	// counts all rows.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	// CountLike returns the number of rows whose text column contains the
	// pattern, case-insensitively.
	CountLike(ctx context.Context, column, pattern string) (int, error)
}

// PageQueryRepository defines paginated listing with total metadata.
type PageQueryRepository[T any] interface {
	PageOf(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) (*types.Pagination[T], error)
}

// Repository combines CRUD, counting, and pagination, and exposes Bun query
// builders for advanced use cases. Implementations run against a bun.IDB, so
// the same repository code serves an engine-wide handle, a single
// connection, or a transaction-backed session.
type Repository[T any] interface {
	CrudRepository[T]
	CountRepository[T]
	PageQueryRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
