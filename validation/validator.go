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

package validation

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateShape is the input contract of a create: it carries only caller
// supplied fields and converts to a fresh entity.
type CreateShape[E any] interface {
	Entity() *E
}

// UpdateShape is the partial-patch contract: Columns returns only the fields
// the caller supplied, keyed by column name.
type UpdateShape interface {
	Columns() map[string]any
}

// Validator runs entity rules against a create candidate. It is called inside
// the unit of work, strictly before the insert, with the same db handle.
type Validator[C any] interface {
	ValidateCreate(ctx context.Context, db bun.IDB, candidate C) error
}

// UpdateValidator is optionally implemented by a Validator to check partial updates.
type UpdateValidator interface {
	ValidateUpdate(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error
}

// CreateFunc adapts a function to Validator.
type CreateFunc[C any] func(ctx context.Context, db bun.IDB, candidate C) error

func (f CreateFunc[C]) ValidateCreate(ctx context.Context, db bun.IDB, candidate C) error {
	return f(ctx, db, candidate)
}

type nop[C any] struct{}

func (nop[C]) ValidateCreate(context.Context, bun.IDB, C) error { return nil }

// Nop returns a validator that accepts every candidate.
func Nop[C any]() Validator[C] {
	return nop[C]{}
}

// Rules pairs a create rule with an optional update rule.
type Rules[C any] struct {
	Create CreateFunc[C]
	Update func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error
}

func (r Rules[C]) ValidateCreate(ctx context.Context, db bun.IDB, candidate C) error {
	if r.Create == nil {
		return nil
	}
	return r.Create(ctx, db, candidate)
}

func (r Rules[C]) ValidateUpdate(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
	if r.Update == nil {
		return nil
	}
	return r.Update(ctx, db, id, fields)
}
