/*
 * Copyright 2025 tomoncle.
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
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

type txKey struct{}

// WithTx attaches a caller-owned transaction to ctx. Every session opened
// with the returned context runs inside tx and leaves its lifecycle to the caller.
func WithTx(ctx context.Context, tx bun.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, if any.
func TxFromContext(ctx context.Context) (bun.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(bun.Tx)
	return tx, ok
}

// SessionManager resolves the unit of work of each data layer call.
//
// When the context already carries a transaction it is used as is and never
// committed, rolled back or closed here, though errors are still classified.
// Otherwise the manager begins one on the pool, commits it when the work
// succeeds and rolls it back on error or panic. It holds no per-call state and
// is safe for concurrent use.
type SessionManager struct {
	db     *bun.DB
	logger Logger
}

type SessionOption func(*SessionManager)

// WithSessionLogger sets the logger for rollback and commit reports.
func WithSessionLogger(l Logger) SessionOption {
	return func(m *SessionManager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewSessionManager(db *bun.DB, opts ...SessionOption) *SessionManager {
	m := &SessionManager{db: db, logger: NewLogger("")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DB returns the pool new transactions are started on.
func (m *SessionManager) DB() *bun.DB { return m.db }

// Logger returns the manager's logger.
func (m *SessionManager) Logger() Logger { return m.logger }

// WithSession runs fn in the unit of work of ctx. The ctx handed to fn always
// carries the active transaction, so nested calls join it.
func (m *SessionManager) WithSession(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) (err error) {
	if tx, ok := TxFromContext(ctx); ok {
		return Classify("execute", fn(ctx, tx))
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		m.logger.Error("begin transaction failed", "error", err)
		return Classify("begin", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		p := recover()
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.Error("rollback after panic failed", "error", rbErr)
		} else {
			m.logger.Warn("transaction rolled back", "cause", fmt.Sprint(p))
		}
		if p != nil {
			panic(p)
		}
	}()

	if err = fn(WithTx(ctx, tx), tx); err != nil {
		done = true
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.Error("rollback failed", "error", rbErr, "cause", err)
			return errors.Join(Classify("execute", err), Classify("rollback", rbErr))
		}
		m.logger.Warn("transaction rolled back", "cause", err)
		return Classify("execute", err)
	}

	done = true
	if err = tx.Commit(); err != nil {
		m.logger.Error("commit failed", "error", err)
		return Classify("commit", err)
	}
	return nil
}

// InTx groups several calls into one unit of work. fn receives a context
// that carries the transaction; pass it to every service call that must join.
func (m *SessionManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.WithSession(ctx, func(ctx context.Context, _ bun.IDB) error {
		return fn(ctx)
	})
}
