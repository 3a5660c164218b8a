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

package services

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/types"
	"github.com/tomoncle/aclimate/validation"
)

// enabled is the availability filter every catalog query starts from.
func enabled(on bool) types.Filters {
	return types.Filters{"enable": on}
}

func byID(l hierarchy.Level, id int64) hierarchy.Filter       { return hierarchy.ByID(l, id) }
func byName(l hierarchy.Level, name string) hierarchy.Filter { return hierarchy.ByName(l, name) }

// between restricts column to the closed interval [from, to].
func between(column string, from, to any) func(q *bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? BETWEEN ? AND ?", bun.Ident(column), from, to)
	}
}

// joinName joins the catalog table holding a display name and matches it.
func joinName(table, alias, fk, name string) func(q *bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Join("JOIN ? AS ? ON ?.id = ?TableAlias.?", bun.Ident(table), bun.Ident(alias), bun.Ident(alias), bun.Ident(fk)).
			Where("?.name = ?", bun.Ident(alias), name)
	}
}

// unchanged reports a field the patch does not touch.
func unchanged(fields map[string]any, column string) bool {
	_, ok := fields[column]
	return !ok
}

func text(fields map[string]any, column string) string {
	return fmt.Sprint(fields[column])
}

// uniqueOnUpdate re-checks a globally unique column when a patch changes it.
func uniqueOnUpdate[E any](ctx context.Context, db bun.IDB, id int64, fields map[string]any, column, message string) error {
	if unchanged(fields, column) {
		return nil
	}
	return validation.Unique[E](ctx, db, column, message, validation.In(column, fields[column]).Excluding(id))
}

// patchExists re-checks a foreign key a patch changes, whatever integer kind it carries.
func patchExists[P any](ctx context.Context, db bun.IDB, fields map[string]any, column string) error {
	id, ok, err := validation.Int64(column, fields[column])
	if err != nil || !ok {
		return err
	}
	return validation.Exists[P](ctx, db, column, id)
}

// patchRange checks a numeric patch value against [min, max].
func patchRange(fields map[string]any, column string, min, max float64) error {
	v, ok, err := validation.Float64(column, fields[column])
	if err != nil || !ok {
		return err
	}
	return validation.Range(column, v, min, max)
}
