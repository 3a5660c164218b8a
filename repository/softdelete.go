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
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// DeletePolicy is how a repository removes rows. It is fixed when the
// repository is built, from the entity's SoftDeletable capability.
type DeletePolicy int

const (
	// NoAvailabilityFlag physically deletes the row.
	NoAvailabilityFlag DeletePolicy = iota
	// HasAvailabilityFlag sets the availability column to false and keeps the row.
	HasAvailabilityFlag
)

func (p DeletePolicy) String() string {
	if p == HasAvailabilityFlag {
		return "HAS_AVAILABILITY_FLAG"
	}
	return "NO_AVAILABILITY_FLAG"
}

// policyFor resolves the policy of E.
func policyFor[E any]() (DeletePolicy, string) {
	if sd, ok := any(new(E)).(SoftDeletable); ok {
		return HasAvailabilityFlag, sd.AvailabilityColumn()
	}
	return NoAvailabilityFlag, ""
}

type deleter interface {
	delete(ctx context.Context, db bun.IDB, model any, pk string, id int64, now time.Time) (bool, error)
}

type hardDelete struct{}

func (hardDelete) delete(ctx context.Context, db bun.IDB, model any, pk string, id int64, _ time.Time) (bool, error) {
	res, err := db.NewDelete().Model(model).Where("? = ?", bun.Ident(pk), id).Exec(ctx)
	if err != nil {
		return false, err
	}
	return affected(res)
}

type softDelete struct {
	column  string
	updated string
}

func (d softDelete) delete(ctx context.Context, db bun.IDB, model any, pk string, id int64, now time.Time) (bool, error) {
	// probe first: a row already flagged still counts as deleted, and
	// MySQL reports zero affected rows for an unchanged value
	exists, err := db.NewSelect().Model(model).Where("?TableAlias.? = ?", bun.Ident(pk), id).Exists(ctx)
	if err != nil || !exists {
		return false, err
	}
	q := db.NewUpdate().Model(model).
		Set("? = ?", bun.Ident(d.column), false).
		Where("? = ?", bun.Ident(pk), id)
	if d.updated != "" {
		q = q.Set("? = ?", bun.Ident(d.updated), now)
	}
	if _, err := q.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
