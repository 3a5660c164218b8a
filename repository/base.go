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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/types"
	"github.com/tomoncle/aclimate/validation"
)

// Repository builds and runs the queries of one entity type. Every method
// takes the bun.IDB of the current unit of work; the repository itself holds
// only schema metadata resolved once at construction.
type Repository[E any] struct {
	table    *schema.Table
	entity   string
	pk       string
	policy   DeletePolicy
	deleter  deleter
	updated  string
	anchor   hierarchy.Anchor
	anchored bool
	now      Clock
}

// Option customises a Repository.
type Option func(*options)

type options struct {
	now Clock
}

// WithClock replaces time.Now for audit stamps.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.now = c
		}
	}
}

// New resolves the table, primary key, delete policy and hierarchy anchor of E.
func New[E any](db *bun.DB, opts ...Option) *Repository[E] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	table := db.Table(reflect.TypeOf((*E)(nil)).Elem())
	r := &Repository[E]{
		table:  table,
		entity: entityName(table),
		pk:     "id",
		now:    o.now,
	}
	if len(table.PKs) == 1 {
		r.pk = table.PKs[0].Name
	}

	if a, ok := any(new(E)).(Audited); ok {
		r.updated = a.UpdatedColumn()
	}
	var column string
	r.policy, column = policyFor[E]()
	if r.policy == HasAvailabilityFlag {
		r.deleter = softDelete{column: column, updated: r.updated}
	} else {
		r.deleter = hardDelete{}
	}
	if n, ok := any(new(E)).(hierarchy.Node); ok {
		r.anchor, r.anchored = n.HierarchyAnchor(), true
	}
	return r
}

func entityName(t *schema.Table) string {
	name := strings.TrimPrefix(t.Name, "mng_")
	if strings.HasSuffix(name, "ss") {
		return name
	}
	return strings.TrimSuffix(name, "s")
}

// Entity is the short name used in validation errors.
func (r *Repository[E]) Entity() string { return r.entity }

// Table returns the resolved bun table.
func (r *Repository[E]) Table() *schema.Table { return r.table }

// PK returns the primary key column.
func (r *Repository[E]) PK() string { return r.pk }

// Policy returns the delete policy fixed at construction.
func (r *Repository[E]) Policy() DeletePolicy { return r.policy }

// Anchor returns where E attaches to the hierarchy, if it does.
func (r *Repository[E]) Anchor() (hierarchy.Anchor, bool) { return r.anchor, r.anchored }

// HasColumn reports whether E maps column.
func (r *Repository[E]) HasColumn(column string) bool {
	return r.table.HasField(column)
}

func (r *Repository[E]) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	return database.Classify(r.table.Name+"."+op, err)
}

func (r *Repository[E]) checkColumn(column string) error {
	if !r.table.HasField(column) {
		return &validation.ValidationError{Entity: r.entity, Field: column, Message: "unknown column"}
	}
	return nil
}

// applyFilters adds one exact-match condition per column, in column order.
func (r *Repository[E]) applyFilters(q *bun.SelectQuery, filters types.Filters) (*bun.SelectQuery, error) {
	cols := make([]string, 0, len(filters))
	for col := range filters {
		if err := r.checkColumn(col); err != nil {
			return q, err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		v := filters[col]
		if isNil(v) {
			q = q.Where("?TableAlias.? IS NULL", bun.Ident(col))
			continue
		}
		q = q.Where("?TableAlias.? = ?", bun.Ident(col), v)
	}
	return q, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (r *Repository[E]) orderByPK(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.? ASC", bun.Ident(r.pk))
}

// GetOne returns the row with primary key id, or nil when there is none.
func (r *Repository[E]) GetOne(ctx context.Context, db bun.IDB, id int64) (*E, error) {
	entity := new(E)
	err := db.NewSelect().Model(entity).Where("?TableAlias.? = ?", bun.Ident(r.pk), id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("get", err)
	}
	return entity, nil
}

// Exists reports whether a row with primary key id exists.
func (r *Repository[E]) Exists(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	ok, err := db.NewSelect().Model((*E)(nil)).Where("?TableAlias.? = ?", bun.Ident(r.pk), id).Exists(ctx)
	return ok, r.fail("exists", err)
}

// List returns the rows matching filters ordered by primary key.
func (r *Repository[E]) List(ctx context.Context, db bun.IDB, filters types.Filters) ([]*E, error) {
	var entities []*E
	q, err := r.applyFilters(db.NewSelect().Model(&entities), filters)
	if err != nil {
		return nil, err
	}
	if err := r.orderByPK(q).Scan(ctx); err != nil {
		return nil, r.fail("list", err)
	}
	return entities, nil
}

// Count returns the number of rows matching filters.
func (r *Repository[E]) Count(ctx context.Context, db bun.IDB, filters types.Filters) (int, error) {
	q, err := r.applyFilters(db.NewSelect().Model((*E)(nil)), filters)
	if err != nil {
		return 0, err
	}
	n, err := q.Count(ctx)
	return n, r.fail("count", err)
}

// Query runs a custom select built by fn over the entity model. The primary
// key is appended to any ordering fn sets.
func (r *Repository[E]) Query(ctx context.Context, db bun.IDB, fn func(q *bun.SelectQuery) *bun.SelectQuery) ([]*E, error) {
	var entities []*E
	q := db.NewSelect().Model(&entities)
	if fn != nil {
		q = fn(q)
	}
	if err := r.orderByPK(q).Scan(ctx); err != nil {
		return nil, r.fail("query", err)
	}
	return entities, nil
}

// First runs a custom select built by fn and returns its first row, or nil.
func (r *Repository[E]) First(ctx context.Context, db bun.IDB, fn func(q *bun.SelectQuery) *bun.SelectQuery) (*E, error) {
	entity := new(E)
	q := db.NewSelect().Model(entity)
	if fn != nil {
		q = fn(q)
	}
	err := r.orderByPK(q).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("first", err)
	}
	return entity, nil
}

// Page returns one page of rows matching the request's filters, and the total.
// Rows are ordered by the requested column and then by primary key, so pages
// never overlap.
func (r *Repository[E]) Page(ctx context.Context, db bun.IDB, req *types.PageRequest) ([]*E, int, error) {
	if !req.GetOrderDir().IsValid() {
		return nil, 0, &validation.ValidationError{Entity: r.entity, Field: "order_dir", Message: "must be asc or desc"}
	}
	if col := req.GetOrderBy(); col != "" {
		if err := r.checkColumn(col); err != nil {
			return nil, 0, err
		}
	}

	var entities []*E
	q, err := r.applyFilters(db.NewSelect().Model(&entities), req.GetFilters())
	if err != nil {
		return nil, 0, err
	}
	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, r.fail("page", err)
	}
	if total == 0 || req.GetOffset() >= total {
		return []*E{}, total, nil
	}

	if col := req.GetOrderBy(); col != "" && col != r.pk {
		q = q.OrderExpr("?TableAlias.? "+req.GetOrderDir().SQL(), bun.Ident(col))
		q = r.orderByPK(q)
	} else {
		q = q.OrderExpr("?TableAlias.? "+req.GetOrderDir().SQL(), bun.Ident(r.pk))
	}
	err = q.Offset(req.GetOffset()).Limit(req.GetPerPage()).Scan(ctx)
	if err != nil {
		return nil, 0, r.fail("page", err)
	}
	return entities, total, nil
}

// Stamp sets audit fields on entities that carry them.
func (r *Repository[E]) Stamp(entities ...*E) {
	now := r.now()
	for _, e := range entities {
		if a, ok := any(e).(Audited); ok {
			a.Stamp(now)
		}
	}
}

// Insert adds entities in one statement. Generated keys are written back
// where the driver reports them.
func (r *Repository[E]) Insert(ctx context.Context, db bun.IDB, entities ...*E) error {
	if len(entities) == 0 {
		return nil
	}
	var err error
	if len(entities) == 1 {
		_, err = db.NewInsert().Model(entities[0]).Exec(ctx)
	} else {
		_, err = db.NewInsert().Model(&entities).Exec(ctx)
	}
	return r.fail("insert", err)
}

// Reload refreshes entity from its stored row, picking up database defaults.
func (r *Repository[E]) Reload(ctx context.Context, db bun.IDB, entity *E) error {
	return r.fail("reload", db.NewSelect().Model(entity).WherePK().Scan(ctx))
}

// Upsert inserts entities, updating fields of rows that collide on duplicateKeys.
func (r *Repository[E]) Upsert(ctx context.Context, db bun.IDB, fields []string, duplicateKeys []string, entities ...*E) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	for _, f := range append(append([]string{}, fields...), duplicateKeys...) {
		if err := r.checkColumn(f); err != nil {
			return err
		}
	}
	if len(entities) == 0 {
		return nil
	}

	switch {
	case db.Dialect().Features().Has(feature.InsertOnConflict):
		return r.fail("upsert", upsertOnConflict(ctx, db, fields, duplicateKeys, entities))
	case db.Dialect().Features().Has(feature.InsertOnDuplicateKey):
		return r.fail("upsert", upsertOnDuplicateKey(ctx, db, fields, entities))
	default:
		return r.fail("upsert", r.upsertFallback(ctx, db, fields, entities))
	}
}

func upsertOnDuplicateKey[E any](ctx context.Context, db bun.IDB, fields []string, entities []*E) error {
	sets := make([]string, 0, len(fields))
	for _, field := range fields {
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", field, field))
	}
	_, err := db.NewInsert().
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")).
		Exec(ctx)
	return err
}

func upsertOnConflict[E any](ctx context.Context, db bun.IDB, fields []string, duplicateKeys []string, entities []*E) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{"id"}
	}
	sets := make([]string, 0, len(fields))
	for _, field := range fields {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", field, field))
	}
	_, err := db.NewInsert().
		Model(&entities).
		On("CONFLICT (" + strings.Join(duplicateKeys, ", ") + ") DO UPDATE").
		Set(strings.Join(sets, ", ")).
		Exec(ctx)
	return err
}

func (r *Repository[E]) upsertFallback(ctx context.Context, db bun.IDB, fields []string, entities []*E) error {
	for _, entity := range entities {
		if _, err := db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := db.NewUpdate().Model(entity).Column(fields...).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %w", err, updateErr)
			}
		}
	}
	return nil
}

// Update writes the supplied columns of row id and bumps its audit column.
// It reports false when no such row exists.
func (r *Repository[E]) Update(ctx context.Context, db bun.IDB, id int64, columns map[string]any) (bool, error) {
	if len(columns) == 0 {
		return r.Exists(ctx, db, id)
	}
	cols := make([]string, 0, len(columns))
	for col := range columns {
		if col == r.pk {
			return false, &validation.ValidationError{Entity: r.entity, Field: col, Message: "primary key cannot be updated"}
		}
		if err := r.checkColumn(col); err != nil {
			return false, err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	exists, err := r.Exists(ctx, db, id)
	if err != nil || !exists {
		return false, err
	}

	q := db.NewUpdate().Model((*E)(nil))
	for _, col := range cols {
		q = q.Set("? = ?", bun.Ident(col), columns[col])
	}
	if _, touched := columns[r.updated]; r.updated != "" && !touched {
		q = q.Set("? = ?", bun.Ident(r.updated), r.now())
	}
	if _, err := q.Where("? = ?", bun.Ident(r.pk), id).Exec(ctx); err != nil {
		return false, r.fail("update", err)
	}
	return true, nil
}

// Delete removes row id following the repository's delete policy. It reports
// false when no such row exists.
func (r *Repository[E]) Delete(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	ok, err := r.deleter.delete(ctx, db, (*E)(nil), r.pk, id, r.now())
	return ok, r.fail("delete", err)
}

// Ancestor adds the join chain resolving filter to q.
func (r *Repository[E]) Ancestor(q *bun.SelectQuery, filter hierarchy.Filter) (*bun.SelectQuery, error) {
	if !r.anchored {
		return q, &validation.ValidationError{Entity: r.entity, Field: filter.Level.String(), Message: "entity is not part of the hierarchy"}
	}
	q, err := hierarchy.Apply(q, r.anchor, filter)
	if err != nil {
		return q, &validation.ValidationError{Entity: r.entity, Field: filter.Level.String(), Message: err.Error()}
	}
	return q, nil
}

// FindByAncestor returns the rows under the ancestor selected by filter that
// also match filters, in one query ordered by primary key.
func (r *Repository[E]) FindByAncestor(ctx context.Context, db bun.IDB, filter hierarchy.Filter, filters types.Filters) ([]*E, error) {
	var entities []*E
	q, err := r.Ancestor(db.NewSelect().Model(&entities), filter)
	if err != nil {
		return nil, err
	}
	if q, err = r.applyFilters(q, filters); err != nil {
		return nil, err
	}
	if err := r.orderByPK(q).Scan(ctx); err != nil {
		return nil, r.fail("find_by_ancestor", err)
	}
	return entities, nil
}
