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
	"fmt"

	"github.com/romakot321/bun-service/database"
	"github.com/romakot321/bun-service/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	idb bun.IDB
}

// NewRepository returns a generic repository running against the provided
// Bun handle: a *bun.DB, a bun.Conn, or a transaction (bun.Tx), so a session
// acquired from an engine plugs in directly.
func NewRepository[T any](idb bun.IDB) Repository[T] {
	return &baseRepositoryImpl[T]{idb: idb}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.idb.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.idb.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.idb.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.idb.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.idb.NewDelete() }

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.idb.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, database.WrapError(err)
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetBy(ctx context.Context, filter *types.QueryFilter) (*T, error) {
	var entity T
	query := r.idb.NewSelect().Model(&entity)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Limit(1).Scan(ctx); err != nil {
		return nil, database.WrapError(err)
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.idb.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if orders := page.GetOrders(); len(orders) > 0 {
		query = query.Order(orders...)
	} else {
		query = query.Order("id ASC")
	}
	if page.Paginated() {
		query = query.Offset(page.Offset()).Limit(page.Limit())
	}
	if err := query.Scan(ctx); err != nil {
		return nil, database.WrapError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, fields []types.SchemaField) (*T, error) {
	var entity T
	if _, err := types.ApplyFields(&entity, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrValidation, err)
	}
	if _, err := r.idb.NewInsert().Model(&entity).Exec(ctx); err != nil {
		return nil, database.WrapError(err)
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) Insert(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	_, err := r.idb.NewInsert().Model(&entities).Exec(ctx)
	return database.WrapError(err)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, id any, fields []types.SchemaField) (*T, error) {
	entity, err := r.GetOne(ctx, id)
	if err != nil {
		return nil, err
	}
	modified, err := types.ApplyFields(entity, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrValidation, err)
	}
	if !modified {
		return entity, nil
	}
	if _, err := r.idb.NewUpdate().Model(entity).WherePK().Exec(ctx); err != nil {
		return nil, database.WrapError(err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	var entity T
	res, err := r.idb.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return database.WrapError(err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: id %v", database.ErrNotFound, id)
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	query := r.idb.NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	count, err := query.Count(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	return count, nil
}

func (r *baseRepositoryImpl[T]) CountLike(ctx context.Context, column, pattern string) (int, error) {
	count, err := r.idb.NewSelect().
		Model((*T)(nil)).
		Where("LOWER(?) LIKE LOWER(?)", bun.Ident(column), "%"+pattern+"%").
		Count(ctx)
	if err != nil {
		return 0, database.WrapError(err)
	}
	return count, nil
}

func (r *baseRepositoryImpl[T]) PageOf(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) (*types.Pagination[T], error) {
	if page == nil {
		page = &types.PageRequest{}
	}
	pagination := types.NewDefaultPagination[T](page.Page, page.Count)
	total, err := r.Count(ctx, filter)
	if err != nil || total == 0 {
		return pagination, err
	}
	items, err := r.List(ctx, page, filter)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}
