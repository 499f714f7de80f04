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

	"github.com/uptrace/bun"
)

// Session is one unit of work: a single pooled connection with an open
// transaction. Operations issued through DB() are sequential; a Session is
// not meant to be shared between goroutines. It must be released exactly
// once; releasing an already released session is a no-op.
type Session struct {
	conn   bun.Conn
	tx     bun.Tx
	logger Logger

	mu   sync.Mutex
	done bool
}

func newSession(ctx context.Context, db *bun.DB, logger Logger) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Debug("Session acquired")
	return &Session{conn: conn, tx: tx, logger: logger}, nil
}

// DB returns the handle queries must run on for this unit of work.
func (s *Session) DB() bun.IDB { return s.tx }

// Commit commits the transaction and returns the connection to the pool.
func (s *Session) Commit() error {
	return s.release(true)
}

// Rollback discards the transaction and returns the connection to the pool.
func (s *Session) Rollback() error {
	return s.release(false)
}

// Close releases the session: commit when err is nil, rollback otherwise.
// Intended for defer on the error result of the surrounding scope.
func (s *Session) Close(err error) error {
	return s.release(err == nil)
}

func (s *Session) release(commit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true

	var txErr error
	if commit {
		txErr = s.tx.Commit()
		s.logger.Debug("Session committed", "error", txErr)
	} else {
		txErr = s.tx.Rollback()
		s.logger.Debug("Session rolled back", "error", txErr)
	}
	connErr := s.conn.Close()
	if txErr != nil {
		return txErr
	}
	return connErr
}
