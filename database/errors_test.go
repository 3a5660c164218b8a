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

package database_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/validation"
)

func TestIsSqlError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   bool
		kind database.SQLError
	}{
		{"nil", nil, false, database.UnknownErr},
		{"plain", errors.New("something else"), false, database.UnknownErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'CO'"}, true, database.DuplicateKeyErr},
		{"mysql not null", &mysql.MySQLError{Number: 1048}, true, database.NotNullViolationErr},
		{"mysql fk child", &mysql.MySQLError{Number: 1452}, true, database.ForeignKeyViolationErr},
		{"mysql fk parent", &mysql.MySQLError{Number: 1451}, true, database.ForeignKeyViolationErr},
		{"mysql no table", &mysql.MySQLError{Number: 1146}, true, database.NoTableErr},
		{"mysql other", &mysql.MySQLError{Number: 9999}, true, database.UnknownErr},
		{"mysql bad conn", mysql.ErrInvalidConn, true, database.ConnectionErr},
		{"pq duplicate", &pq.Error{Code: "23505"}, true, database.DuplicateKeyErr},
		{"pq fk", &pq.Error{Code: "23503"}, true, database.ForeignKeyViolationErr},
		{"pq check", &pq.Error{Code: "23514"}, true, database.CheckConstraintViolationErr},
		{"pq unmapped", &pq.Error{Code: "XX000"}, true, database.UnknownErr},
		{"pgx not null", &pgconn.PgError{Code: "23502"}, true, database.NotNullViolationErr},
		{"pgx no table", &pgconn.PgError{Code: "42P01"}, true, database.NoTableErr},
		{"wrapped pgx", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true, database.DuplicateKeyErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: countries.iso2 (2067)"), true, database.DuplicateKeyErr},
		{"sqlite not null", errors.New("NOT NULL constraint failed: countries.name"), true, database.NotNullViolationErr},
		{"sqlite fk", errors.New("FOREIGN KEY constraint failed"), true, database.ForeignKeyViolationErr},
		{"sqlite no table", errors.New("SQL logic error: no such table: countries (1)"), true, database.NoTableErr},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true, database.ConnectionErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is, kind := database.IsSqlError(tc.err)
			assert.Equal(t, tc.is, is)
			assert.Equal(t, tc.kind, kind, "got %s", kind)
		})
	}
}

func TestSQLErrorString(t *testing.T) {
	assert.Equal(t, "duplicate key", database.DuplicateKeyErr.String())
	assert.Equal(t, "unknown", database.UnknownErr.String())
	assert.Equal(t, "sql error(99)", database.SQLError(99).String())

	assert.True(t, database.DuplicateKeyErr.IsConstraint())
	assert.True(t, database.CheckConstraintViolationErr.IsConstraint())
	assert.False(t, database.ConnectionErr.IsConstraint())
}

func TestClassify(t *testing.T) {
	assert.NoError(t, database.Classify("insert", nil))

	raw := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	err := database.Classify("insert", raw)
	se, ok := database.AsStorageError(err)
	require.True(t, ok)
	assert.Equal(t, "insert", se.Op)
	assert.Equal(t, database.DuplicateKeyErr, se.Kind)
	assert.ErrorIs(t, err, raw)
	assert.True(t, database.IsConstraintError(err))
	assert.Contains(t, err.Error(), "storage insert failed (duplicate key)")

	// Already classified errors keep their original op.
	assert.Same(t, se, database.Classify("commit", err))

	verr := validation.Errorf("iso2", "must be unique")
	assert.Same(t, verr, database.Classify("insert", verr))

	plain := database.Classify("select", sql.ErrConnDone)
	assert.True(t, database.IsStorageError(plain))
	assert.False(t, database.IsConstraintError(plain))
	assert.False(t, database.IsConstraintError(errors.New("not a storage error")))
}
