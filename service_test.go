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

package bunservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	bunservice "github.com/romakot321/bun-service"
	"github.com/romakot321/bun-service/database"
	"github.com/romakot321/bun-service/types"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID   int64            `bun:"id,pk,autoincrement" json:"id"`
	Name string           `bun:"name,notnull" json:"name"`
	Age  int              `bun:"age" json:"age"`
	Meta types.JsonObject `bun:"meta" json:"meta,omitempty"`
}

type UserCreate struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type UserUpdate struct {
	Name *string `json:"name"`
	Age  *int    `json:"age"`
}

var registerUserOnce sync.Once

func newTestEngine(t *testing.T) *database.Engine {
	t.Helper()
	registerUserOnce.Do(func() { database.RegisterEntity((*User)(nil), 1) })

	cfg := database.DefaultConnectionConfig()
	cfg.Type = database.TypeSQLite
	cfg.DBName = "file:servicetest?mode=memory&cache=shared"

	engine, err := database.NewEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.ResetSchema(context.Background()))
	return engine
}

func seedUsers(t *testing.T, engine *database.Engine, names ...string) []*User {
	t.Helper()
	users := make([]*User, len(names))
	for i, name := range names {
		users[i] = &User{Name: name}
	}
	err := bunservice.Do[User](context.Background(), func(ctx context.Context, svc *bunservice.Service[User]) error {
		return svc.Save(ctx, users...)
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
	return users
}

func TestUserLifecycle(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		user, err := svc.Create(ctx, UserCreate{Name: "test"})
		require.NoError(t, err)
		require.NotZero(t, user.ID)
		require.Equal(t, "test", user.Name)

		listed, err := svc.List(ctx, types.NewPageRequest(1, 1))
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.Equal(t, user.ID, listed[0].ID)

		count, err := svc.Count(ctx, nil)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		got, err := svc.Get(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.Equal(t, user.Name, got.Name)

		// repeated gets return structurally equal results
		again, err := svc.Get(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, got, again)

		require.NoError(t, svc.Delete(ctx, user.ID))

		_, err = svc.Get(ctx, user.ID)
		require.ErrorIs(t, err, database.ErrNotFound)

		err = svc.Delete(ctx, user.ID)
		require.ErrorIs(t, err, database.ErrNotFound)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestListPagination(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	seedUsers(t, engine, "u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9")

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		all, err := svc.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 10)

		count, err := svc.Count(ctx, nil)
		require.NoError(t, err)
		require.Equal(t, len(all), count)

		// offset (page-1)*count, primary key ascending
		page2, err := svc.List(ctx, types.NewPageRequest(2, 3))
		require.NoError(t, err)
		require.Len(t, page2, 3)
		require.Equal(t, all[3].ID, page2[0].ID)
		require.Equal(t, all[5].ID, page2[2].ID)

		// a partial last page returns the remainder
		page4, err := svc.List(ctx, types.NewPageRequest(4, 3))
		require.NoError(t, err)
		require.Len(t, page4, 1)
		require.Equal(t, all[9].ID, page4[0].ID)

		// page or count alone means no pagination
		unpaged, err := svc.List(ctx, types.NewPageRequest(2, 0))
		require.NoError(t, err)
		require.Len(t, unpaged, 10)

		unpaged, err = svc.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, unpaged, 10)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestPageMetadata(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	seedUsers(t, engine, "a", "b", "c", "d", "e")

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		page, err := svc.Page(ctx, types.NewPageRequest(2, 2), nil)
		require.NoError(t, err)
		require.Equal(t, 5, page.Total)
		require.Len(t, page.Items, 2)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestUpdatePartial(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		user, err := svc.Create(ctx, UserCreate{Name: "before", Age: 30})
		require.NoError(t, err)

		// absent fields keep their prior values
		name := "after"
		updated, err := svc.Update(ctx, user.ID, UserUpdate{Name: &name})
		require.NoError(t, err)
		require.Equal(t, "after", updated.Name)
		require.Equal(t, 30, updated.Age)

		// an all-nil schema changes nothing
		same, err := svc.Update(ctx, user.ID, UserUpdate{})
		require.NoError(t, err)
		require.Equal(t, updated, same)

		_, err = svc.Update(ctx, int64(987654), UserUpdate{Name: &name})
		require.ErrorIs(t, err, database.ErrNotFound)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestCountLike(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	seedUsers(t, engine, "Alice", "alina", "Bob")

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		count, err := svc.CountLike(ctx, "name", "ali")
		require.NoError(t, err)
		require.Equal(t, 2, count)

		count, err = svc.CountLike(ctx, "name", "BOB")
		require.NoError(t, err)
		require.Equal(t, 1, count)

		count, err = svc.CountLike(ctx, "name", "zzz")
		require.NoError(t, err)
		require.Zero(t, count)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestGetByFilter(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	seedUsers(t, engine, "lonely")

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		user, err := svc.GetBy(ctx, types.NewQueryFilter("name = ?", "lonely"))
		require.NoError(t, err)
		require.Equal(t, "lonely", user.Name)

		_, err = svc.GetBy(ctx, types.NewQueryFilter("name = ?", "absent"))
		require.ErrorIs(t, err, database.ErrNotFound)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestCreateRejectsUnknownColumns(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		_, err := svc.Create(ctx, struct {
			Nope string `json:"nope"`
		}{Nope: "x"})
		assert.ErrorIs(t, err, database.ErrValidation)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestJSONColumnRoundTrip(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		created, err := svc.Create(ctx, struct {
			Name string           `json:"name"`
			Meta types.JsonObject `json:"meta"`
		}{Name: "meta", Meta: types.JsonObject{"role": "admin"}})
		require.NoError(t, err)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "admin", got.Meta["role"])
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestDoRollsBackOnError(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		if _, err := svc.Create(ctx, UserCreate{Name: "doomed"}); err != nil {
			return err
		}
		return boom
	}, bunservice.WithEngine(engine))
	require.ErrorIs(t, err, boom)

	err = bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		count, err := svc.Count(ctx, types.NewQueryFilter("name = ?", "doomed"))
		require.NoError(t, err)
		require.Zero(t, count)
		return nil
	}, bunservice.WithEngine(engine))
	require.NoError(t, err)
}

func TestOpenCloseExplicitLifecycle(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	svc, err := bunservice.Open[User](ctx, bunservice.WithEngine(engine))
	require.NoError(t, err)
	_, err = svc.Create(ctx, UserCreate{Name: "explicit"})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	svc, err = bunservice.Open[User](ctx, bunservice.WithEngine(engine))
	require.NoError(t, err)
	count, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, svc.CloseWithError(nil))
}

func TestSessionProviders(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	err := bunservice.Do[User](ctx, func(ctx context.Context, svc *bunservice.Service[User]) error {
		_, err := svc.Create(ctx, UserCreate{Name: "random"})
		return err
	}, bunservice.WithSessionProvider(bunservice.RandomProvider(engine)))
	require.NoError(t, err)

	_, err = bunservice.Open[User](ctx, bunservice.WithSessionProvider(bunservice.RandomProvider()))
	require.ErrorIs(t, err, database.ErrConfiguration)
}
