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

// Package aclimate is the data access layer of the agro-climatic reference
// store: a generic CRUD service over bun repositories with pluggable
// validation, session scoping and hierarchy-aware queries.
package aclimate

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/repository"
	"github.com/tomoncle/aclimate/types"
	"github.com/tomoncle/aclimate/validation"
)

// DefaultBatchSize is the BulkCreate batch size used when none is given.
const DefaultBatchSize = 1000

// ReadMapper builds the read shape of a persisted row.
type ReadMapper[E any, R any] func(*E) R

// Service is the CRUD contract every entity service offers. C is the create
// shape, R the read shape and U the partial update shape of entity E.
type Service[E any, C validation.CreateShape[E], R any, U validation.UpdateShape] interface {
	// GetByID returns the row with the given id, or nil when absent.
	GetByID(ctx context.Context, id int64) (*R, error)

	// GetAll returns the rows matching every exact-match filter.
	GetAll(ctx context.Context, filters types.Filters) ([]R, error)

	// Count returns the number of rows matching filters.
	Count(ctx context.Context, filters types.Filters) (int, error)

	// Paginate returns one page of rows and the paging metadata.
	Paginate(ctx context.Context, req *types.PageRequest) (*types.Pagination[R], error)

	// Create validates and inserts a candidate and returns the stored row.
	Create(ctx context.Context, candidate C) (*R, error)

	// BulkCreate inserts candidates in fixed-size batches without the
	// per-row validation hook and returns the number of rows inserted.
	BulkCreate(ctx context.Context, candidates []C, batchSize int) (int, error)

	// Update applies the supplied fields of patch to row id.
	Update(ctx context.Context, id int64, patch U) (*R, error)

	// UpdateFields applies a column map to row id.
	UpdateFields(ctx context.Context, id int64, fields map[string]any) (*R, error)

	// Delete removes row id according to the entity delete policy.
	Delete(ctx context.Context, id int64) (bool, error)
}

// BaseService implements Service over a repository.Repository. Every call
// runs under the SessionManager: a transaction carried by ctx is joined,
// otherwise the call is its own unit of work.
type BaseService[E any, C validation.CreateShape[E], R any, U validation.UpdateShape] struct {
	sessions  *database.SessionManager
	repo      *repository.Repository[E]
	read      ReadMapper[E, R]
	validator validation.Validator[C]
	logger    database.Logger
}

var _ Service[struct{}, nopShape, struct{}, nopShape] = (*BaseService[struct{}, nopShape, struct{}, nopShape])(nil)

type nopShape struct{}

func (nopShape) Entity() *struct{}       { return &struct{}{} }
func (nopShape) Columns() map[string]any { return nil }

type options[E any, C any] struct {
	validator validation.Validator[C]
	logger    database.Logger
	repoOpts  []repository.Option
}

// Option configures a BaseService.
type Option[E any, C any] func(*options[E, C])

// WithValidator sets the validation hook run before every create.
func WithValidator[E any, C any](v validation.Validator[C]) Option[E, C] {
	return func(o *options[E, C]) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithLogger sets the service logger. The session manager's logger is the default.
func WithLogger[E any, C any](l database.Logger) Option[E, C] {
	return func(o *options[E, C]) { o.logger = l }
}

// WithRepositoryOptions forwards options to the underlying repository.
func WithRepositoryOptions[E any, C any](opts ...repository.Option) Option[E, C] {
	return func(o *options[E, C]) { o.repoOpts = append(o.repoOpts, opts...) }
}

// NewService returns a BaseService for E.
func NewService[E any, C validation.CreateShape[E], R any, U validation.UpdateShape](
	sessions *database.SessionManager, read ReadMapper[E, R], opts ...Option[E, C],
) *BaseService[E, C, R, U] {
	o := options[E, C]{validator: validation.Nop[C](), logger: sessions.Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = database.NopLogger()
	}
	return &BaseService[E, C, R, U]{
		sessions:  sessions,
		repo:      repository.New[E](sessions.DB(), o.repoOpts...),
		read:      read,
		validator: o.validator,
		logger:    o.logger,
	}
}

// Repository exposes the repository for entity-specific queries.
func (s *BaseService[E, C, R, U]) Repository() *repository.Repository[E] { return s.repo }

// Sessions returns the session manager the service runs under.
func (s *BaseService[E, C, R, U]) Sessions() *database.SessionManager { return s.sessions }

// Scope runs fn in the unit of work of ctx.
func (s *BaseService[E, C, R, U]) Scope(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	return s.sessions.WithSession(ctx, fn)
}

// MapAll converts rows to read shapes.
func (s *BaseService[E, C, R, U]) MapAll(rows []*E) []R {
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.read(row))
	}
	return out
}

// MapOne converts a row to its read shape; nil stays nil.
func (s *BaseService[E, C, R, U]) MapOne(row *E) *R {
	if row == nil {
		return nil
	}
	r := s.read(row)
	return &r
}

func (s *BaseService[E, C, R, U]) GetByID(ctx context.Context, id int64) (*R, error) {
	var out *R
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		row, err := s.repo.GetOne(ctx, db, id)
		out = s.MapOne(row)
		return err
	})
	return out, err
}

func (s *BaseService[E, C, R, U]) GetAll(ctx context.Context, filters types.Filters) ([]R, error) {
	var out []R
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		rows, err := s.repo.List(ctx, db, filters)
		out = s.MapAll(rows)
		return err
	})
	return out, err
}

func (s *BaseService[E, C, R, U]) Count(ctx context.Context, filters types.Filters) (int, error) {
	var n int
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) (err error) {
		n, err = s.repo.Count(ctx, db, filters)
		return err
	})
	return n, err
}

// Exists reports whether row id exists.
func (s *BaseService[E, C, R, U]) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) (err error) {
		ok, err = s.repo.Exists(ctx, db, id)
		return err
	})
	return ok, err
}

func (s *BaseService[E, C, R, U]) Paginate(ctx context.Context, req *types.PageRequest) (*types.Pagination[R], error) {
	if req == nil {
		req = types.NewPageRequest(types.DefaultPage, types.DefaultPerPage)
	}
	var out *types.Pagination[R]
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		rows, total, err := s.repo.Page(ctx, db, req)
		if err != nil {
			return err
		}
		out = types.NewPagination(s.MapAll(rows), total, req.GetPage(), req.GetPerPage())
		return nil
	})
	return out, err
}

// Find returns the rows selected by a custom query built by fn.
func (s *BaseService[E, C, R, U]) Find(ctx context.Context, fn func(q *bun.SelectQuery) *bun.SelectQuery) ([]R, error) {
	var out []R
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		rows, err := s.repo.Query(ctx, db, fn)
		out = s.MapAll(rows)
		return err
	})
	return out, err
}

// FindFirst returns the first row, by primary key, selected by fn, or nil.
func (s *BaseService[E, C, R, U]) FindFirst(ctx context.Context, fn func(q *bun.SelectQuery) *bun.SelectQuery) (*R, error) {
	var out *R
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		row, err := s.repo.First(ctx, db, fn)
		out = s.MapOne(row)
		return err
	})
	return out, err
}

// FindByAncestor returns the rows under the ancestor selected by filter that
// also match filters.
func (s *BaseService[E, C, R, U]) FindByAncestor(ctx context.Context, filter hierarchy.Filter, filters types.Filters) ([]R, error) {
	var out []R
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		rows, err := s.repo.FindByAncestor(ctx, db, filter, filters)
		out = s.MapAll(rows)
		return err
	})
	return out, err
}

func (s *BaseService[E, C, R, U]) reject(op string, err error) error {
	if validation.IsValidationError(err) {
		s.logger.Debug("Validation rejected "+op, "entity", s.repo.Entity(), "error", err)
	}
	return err
}

func (s *BaseService[E, C, R, U]) Create(ctx context.Context, candidate C) (*R, error) {
	var out *R
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		if err := validation.Struct(s.repo.Entity(), candidate); err != nil {
			return s.reject("create", err)
		}
		if err := s.validator.ValidateCreate(ctx, db, candidate); err != nil {
			return s.reject("create", err)
		}
		row := candidate.Entity()
		s.repo.Stamp(row)
		if err := s.repo.Insert(ctx, db, row); err != nil {
			return err
		}
		if err := s.repo.Reload(ctx, db, row); err != nil {
			return err
		}
		out = s.MapOne(row)
		return nil
	})
	return out, err
}

// BulkCreate inserts candidates batchSize at a time (DefaultBatchSize when
// batchSize <= 0). Neither struct tags nor the validation hook are checked.
// Inside a caller transaction every batch joins it; otherwise each batch
// commits on its own and a rejected batch is rolled back alone. The count
// covers the batches that were written.
func (s *BaseService[E, C, R, U]) BulkCreate(ctx context.Context, candidates []C, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	inserted := 0
	for start := 0; start < len(candidates); start += batchSize {
		end := min(start+batchSize, len(candidates))
		rows := make([]*E, 0, end-start)
		for _, c := range candidates[start:end] {
			rows = append(rows, c.Entity())
		}
		s.repo.Stamp(rows...)
		err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
			return s.repo.Insert(ctx, db, rows...)
		})
		if err != nil {
			s.logger.Warn("Bulk create batch failed", "entity", s.repo.Entity(), "offset", start, "size", len(rows), "error", err)
			return inserted, err
		}
		inserted += len(rows)
	}
	return inserted, nil
}

func (s *BaseService[E, C, R, U]) Update(ctx context.Context, id int64, patch U) (*R, error) {
	if err := validation.Struct(s.repo.Entity(), patch); err != nil {
		return nil, s.reject("update", err)
	}
	return s.UpdateFields(ctx, id, patch.Columns())
}

func (s *BaseService[E, C, R, U]) UpdateFields(ctx context.Context, id int64, fields map[string]any) (*R, error) {
	var out *R
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		if uv, ok := s.validator.(validation.UpdateValidator); ok && len(fields) > 0 {
			if err := uv.ValidateUpdate(ctx, db, id, fields); err != nil {
				return s.reject("update", err)
			}
		}
		ok, err := s.repo.Update(ctx, db, id, fields)
		if err != nil || !ok {
			return s.reject("update", err)
		}
		row, err := s.repo.GetOne(ctx, db, id)
		out = s.MapOne(row)
		return err
	})
	return out, err
}

func (s *BaseService[E, C, R, U]) Delete(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) (err error) {
		ok, err = s.repo.Delete(ctx, db, id)
		return err
	})
	return ok, err
}
