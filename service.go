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

// Package bunservice reduces CRUD boilerplate over Bun: a generic service
// bound to one database session exposes create, get, list, update, delete,
// and count operations for an entity type, releasing the session on scope
// exit.
package bunservice

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/romakot321/bun-service/database"
	"github.com/romakot321/bun-service/repository"
	"github.com/romakot321/bun-service/types"
	"github.com/uptrace/bun"
)

// SessionProvider is the strategy that supplies a session for a new service
// instance. The default provider acquires from the default engine; custom
// providers can select across several engines.
type SessionProvider func(ctx context.Context) (*database.Session, error)

// EngineProvider returns a provider bound to one engine.
func EngineProvider(e *database.Engine) SessionProvider {
	return e.AcquireSession
}

// RandomProvider distributes sessions uniformly across several engines.
func RandomProvider(engines ...*database.Engine) SessionProvider {
	return func(ctx context.Context) (*database.Session, error) {
		if len(engines) == 0 {
			return nil, fmt.Errorf("%w: no engines configured", database.ErrConfiguration)
		}
		return engines[rand.IntN(len(engines))].AcquireSession(ctx)
	}
}

func defaultProvider(ctx context.Context) (*database.Session, error) {
	engine, err := database.Default()
	if err != nil {
		return nil, err
	}
	return engine.AcquireSession(ctx)
}

type serviceOptions struct {
	provider SessionProvider
}

// Option customizes service construction.
type Option func(*serviceOptions)

// WithEngine binds the service to a specific engine.
func WithEngine(e *database.Engine) Option {
	return func(o *serviceOptions) { o.provider = EngineProvider(e) }
}

// WithSessionProvider injects a custom session selection strategy.
func WithSessionProvider(p SessionProvider) Option {
	return func(o *serviceOptions) { o.provider = p }
}

// Service is a short-lived unit of work bound to an entity type T and one
// active session. Construct one per logical operation or request; operations
// on a single instance are sequential, and concurrency comes from
// independent instances each holding their own session.
type Service[T any] struct {
	session *database.Session
	repo    repository.Repository[T]
}

// Open acquires a session via the configured provider and binds a service
// to it. The caller must release the service exactly once with Close or
// CloseWithError; prefer Do, which guarantees the release.
func Open[T any](ctx context.Context, opts ...Option) (*Service[T], error) {
	o := &serviceOptions{provider: defaultProvider}
	for _, opt := range opts {
		opt(o)
	}
	session, err := o.provider(ctx)
	if err != nil {
		return nil, err
	}
	return &Service[T]{
		session: session,
		repo:    repository.NewRepository[T](session.DB()),
	}, nil
}

// Do runs fn inside a scoped service: the session is committed when fn
// returns nil, rolled back when it returns an error, and always released,
// including when fn panics.
func Do[T any](ctx context.Context, fn func(ctx context.Context, svc *Service[T]) error, opts ...Option) (err error) {
	svc, err := Open[T](ctx, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = svc.session.Rollback()
			panic(p)
		}
		if cerr := svc.session.Close(err); err == nil {
			err = cerr
		}
	}()
	err = fn(ctx, svc)
	return err
}

// Session exposes the bound session for callers that mix service operations
// with raw queries on the same transaction.
func (s *Service[T]) Session() *database.Session { return s.session }

// Close commits the session and releases it.
func (s *Service[T]) Close() error { return s.session.Commit() }

// CloseWithError releases the session: commit when err is nil, rollback
// otherwise. Intended for defer on the error result of the surrounding
// scope.
func (s *Service[T]) CloseWithError(err error) error { return s.session.Close(err) }

// Create builds a new entity from the schema's field values and inserts it.
// The returned entity carries the generated primary key. A schema is any
// struct whose fields map onto entity columns; nil pointer fields are
// skipped.
func (s *Service[T]) Create(ctx context.Context, schema any) (*T, error) {
	fields, err := types.SchemaFields(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrValidation, err)
	}
	return s.repo.Create(ctx, fields)
}

// Get returns the entity with the given primary key, or an error wrapping
// database.ErrNotFound when it does not exist.
func (s *Service[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.repo.GetOne(ctx, id)
}

// GetBy returns exactly one entity matching the filter, or an error wrapping
// database.ErrNotFound when zero rows match.
func (s *Service[T]) GetBy(ctx context.Context, filter *types.QueryFilter) (*T, error) {
	return s.repo.GetBy(ctx, filter)
}

// List returns entities ordered by primary key ascending. Pagination applies
// only when the request sets both page and count: offset (page-1)*count,
// limit count. A nil or partially set request returns all rows.
func (s *Service[T]) List(ctx context.Context, page *types.PageRequest) ([]*T, error) {
	return s.repo.List(ctx, page, nil)
}

// ListFiltered is List restricted by a query filter.
func (s *Service[T]) ListFiltered(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) ([]*T, error) {
	return s.repo.List(ctx, page, filter)
}

// All returns every entity, primary key ascending.
func (s *Service[T]) All(ctx context.Context) ([]*T, error) {
	return s.repo.List(ctx, nil, nil)
}

// Page returns one page of entities together with the total row count.
func (s *Service[T]) Page(ctx context.Context, page *types.PageRequest, filter *types.QueryFilter) (*types.Pagination[T], error) {
	return s.repo.PageOf(ctx, page, filter)
}

// Update overwrites only the schema's present fields on the stored entity
// and returns the updated entity. Absent (nil pointer) fields keep their
// prior values. Returns database.ErrNotFound when the key is absent.
func (s *Service[T]) Update(ctx context.Context, id any, schema any) (*T, error) {
	fields, err := types.SchemaFields(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, fields)
}

// Save inserts already built entities.
func (s *Service[T]) Save(ctx context.Context, entity ...*T) error {
	return s.repo.Insert(ctx, entity...)
}

// Delete removes the entity with the given primary key. Returns
// database.ErrNotFound when no row was removed.
func (s *Service[T]) Delete(ctx context.Context, id any) error {
	return s.repo.Delete(ctx, id)
}

// Count returns the number of rows matching the filter; nil counts all.
func (s *Service[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.repo.Count(ctx, filter)
}

// CountLike returns the number of rows whose text column contains the
// pattern, case-insensitively.
func (s *Service[T]) CountLike(ctx context.Context, column, pattern string) (int, error) {
	return s.repo.CountLike(ctx, column, pattern)
}

// SelectBuilder returns a Bun select query builder on the service's session.
func (s *Service[T]) SelectBuilder() *bun.SelectQuery { return s.repo.NewSelect() }

// InsertBuilder returns a Bun insert query builder on the service's session.
func (s *Service[T]) InsertBuilder() *bun.InsertQuery { return s.repo.NewInsert() }

// UpdateBuilder returns a Bun update query builder on the service's session.
func (s *Service[T]) UpdateBuilder() *bun.UpdateQuery { return s.repo.NewUpdate() }

// DeleteBuilder returns a Bun delete query builder on the service's session.
func (s *Service[T]) DeleteBuilder() *bun.DeleteQuery { return s.repo.NewDelete() }
