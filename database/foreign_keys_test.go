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
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/tomoncle/aclimate/database"
)

func TestForeignKeySQL(t *testing.T) {
	c := database.ForeignKeyConstraint{
		Table:           "mng_admin_1",
		Column:          "country_id",
		ReferenceTable:  "mng_country",
		ReferenceColumn: "id",
		OnDelete:        "RESTRICT",
	}
	assert.Equal(t, "fk_mng_admin_1_country_id", c.GenerateConstraintName())
	assert.Equal(t,
		"ALTER TABLE mng_admin_1 ADD CONSTRAINT fk_mng_admin_1_country_id FOREIGN KEY (country_id) REFERENCES mng_country(id) ON DELETE RESTRICT",
		c.GenerateSQL())
	assert.Equal(t, "ALTER TABLE mng_admin_1 DROP CONSTRAINT fk_mng_admin_1_country_id", c.GenerateDropSQL(dialect.PG))
	assert.Equal(t, "ALTER TABLE mng_admin_1 DROP FOREIGN KEY fk_mng_admin_1_country_id", c.GenerateDropSQL(dialect.MySQL))

	c.ConstraintName = "admin_1_country"
	c.OnUpdate = "CASCADE"
	assert.Equal(t,
		"ALTER TABLE mng_admin_1 ADD CONSTRAINT admin_1_country FOREIGN KEY (country_id) REFERENCES mng_country(id) ON DELETE RESTRICT ON UPDATE CASCADE",
		c.GenerateSQL())
}

func TestDefaultForeignKeysAreValid(t *testing.T) {
	fkm := database.NewForeignKeyManager(nil)
	assert.Empty(t, fkm.ValidateConstraints())

	adm2 := fkm.GetConstraintsByTable("MNG_ADMIN_2")
	require.Len(t, adm2, 1)
	assert.Equal(t, "mng_admin_1", adm2[0].ReferenceTable)
	assert.Equal(t, "admin_1_id", adm2[0].Column)

	names := map[string]bool{}
	for _, c := range fkm.ListAllConstraints() {
		name := c.GenerateConstraintName()
		assert.False(t, names[name], "duplicate constraint %s", name)
		names[name] = true
	}
}

func TestValidateConstraints(t *testing.T) {
	fkm := database.NewForeignKeyManager(nil,
		database.ForeignKeyConstraint{Table: "a", Column: "b_id", ReferenceTable: "b", ReferenceColumn: "id", OnDelete: "set null"},
		database.ForeignKeyConstraint{Table: "a", ReferenceTable: "b", ReferenceColumn: "id", OnDelete: "EXPLODE"},
		database.ForeignKeyConstraint{Column: "x", OnUpdate: "sometimes"},
	)
	errs := fkm.ValidateConstraints()
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	assert.ElementsMatch(t, []string{
		"column name cannot be empty: a",
		"invalid delete policy: EXPLODE, constraint: fk_a_",
		"table name cannot be empty",
		"reference table name cannot be empty: .x",
		"reference column name cannot be empty: .x -> ",
		"invalid update policy: sometimes, constraint: fk__x",
	}, msgs)
}

func TestLoadForeignKeyManager(t *testing.T) {
	missing, err := database.LoadForeignKeyManager(nil, filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, database.DefaultForeignKeys(), missing.ListAllConstraints())

	exported, err := database.NewForeignKeyManager(nil, database.ForeignKeyConstraint{
		Table: "mng_location", Column: "admin_2_id", ReferenceTable: "mng_admin_2", ReferenceColumn: "id", OnDelete: "CASCADE",
	}).Export()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fks.yaml")
	writeFile(t, path, string(exported))
	loaded, err := database.LoadForeignKeyManager(nil, path)
	require.NoError(t, err)
	require.Len(t, loaded.ListAllConstraints(), 1)
	assert.Equal(t, "mng_admin_2", loaded.ListAllConstraints()[0].ReferenceTable)

	writeFile(t, path, "foreign_keys:\n  - table: a\n    on_delete: EXPLODE\n")
	_, err = database.LoadForeignKeyManager(nil, path)
	assert.ErrorContains(t, err, "foreign key constraint validation failed")

	writeFile(t, path, "foreign_keys: {")
	_, err = database.LoadForeignKeyManager(nil, path)
	assert.ErrorContains(t, err, "failed to parse foreign key file")
}

func TestForeignKeysAddAndDrop(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	edges := []database.ForeignKeyConstraint{
		{Table: "mng_admin_1", Column: "country_id", ReferenceTable: "mng_country", ReferenceColumn: "id", OnDelete: "RESTRICT"},
		{Table: "mng_admin_2", Column: "admin_1_id", ReferenceTable: "mng_admin_1", ReferenceColumn: "id", OnDelete: "RESTRICT"},
	}
	fkm := database.NewForeignKeyManager(database.NopLogger(), edges...)

	for _, c := range edges {
		mock.ExpectExec(c.GenerateSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("ALTER TABLE mng_admin_2 DROP CONSTRAINT fk_mng_admin_2_admin_1_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE mng_admin_1 DROP CONSTRAINT fk_mng_admin_1_country_id").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, fkm.AddAllForeignKeys(ctx, db))
	require.NoError(t, fkm.DropAllForeignKeys(ctx, db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
