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

package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type note struct {
	bun.BaseModel `bun:"table:notes"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Body string `bun:"body,notnull"`
}

var registerNoteOnce sync.Once

// One shared in-memory database for the whole test binary.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	registerNoteOnce.Do(func() { RegisterEntity((*note)(nil), 1) })

	cfg := DefaultConnectionConfig()
	cfg.Type = TypeSQLite
	cfg.DBName = "file:enginetest?mode=memory&cache=shared"

	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, engine.CreateSchema(context.Background()))
	return engine
}

func TestEngineOpenAndPing(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.Ping(ctx))

	status := engine.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)

	stats := engine.Stats()
	assert.Greater(t, stats.MaxOpenConns, 0)
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg := DefaultConnectionConfig()
	cfg.Type = "oracle"
	_, err = NewEngine(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEngineClosedCannotBeReused(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Type = TypeSQLite
	cfg.DBName = "file:closetest?mode=memory&cache=shared"
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	require.NoError(t, engine.Close())
	_, err = engine.DB(context.Background())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSessionCommitPersists(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	session, err := engine.AcquireSession(ctx)
	require.NoError(t, err)

	n := &note{Body: "committed"}
	_, err = session.DB().NewInsert().Model(n).Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Commit())

	db, err := engine.DB(ctx)
	require.NoError(t, err)
	count, err := db.NewSelect().Model((*note)(nil)).Where("body = ?", "committed").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSessionRollbackDiscards(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	session, err := engine.AcquireSession(ctx)
	require.NoError(t, err)

	n := &note{Body: "discarded"}
	_, err = session.DB().NewInsert().Model(n).Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Rollback())

	db, err := engine.DB(ctx)
	require.NoError(t, err)
	count, err := db.NewSelect().Model((*note)(nil)).Where("body = ?", "discarded").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSessionReleaseIsIdempotent(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	session, err := engine.AcquireSession(ctx)
	require.NoError(t, err)

	require.NoError(t, session.Commit())
	assert.NoError(t, session.Commit())
	assert.NoError(t, session.Rollback())
	assert.NoError(t, session.Close(assert.AnError))
}

func TestSessionCloseRollsBackOnError(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	session, err := engine.AcquireSession(ctx)
	require.NoError(t, err)

	n := &note{Body: "close with error"}
	_, err = session.DB().NewInsert().Model(n).Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Close(assert.AnError))

	db, err := engine.DB(ctx)
	require.NoError(t, err)
	count, err := db.NewSelect().Model((*note)(nil)).Where("body = ?", "close with error").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestResetSchemaDropsRows(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	db, err := engine.DB(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&note{Body: "before reset"}).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, engine.ResetSchema(ctx))

	count, err := db.NewSelect().Model((*note)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
