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
	"cmp"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/types"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Required fails when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Errorf(field, "is required")
	}
	return nil
}

// Length fails when value has fewer than min or more than max characters. A max of 0 is unbounded.
func Length(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return Errorf(field, "must be at least %d characters", min)
	}
	if max > 0 && n > max {
		return Errorf(field, "must be at most %d characters", max)
	}
	return nil
}

// Range fails when v lies outside [min, max].
func Range[T cmp.Ordered](field string, v, min, max T) error {
	if v < min || v > max {
		return Errorf(field, "must be between %v and %v, got %v", min, max, v)
	}
	return nil
}

// OneOf fails when the enum value is outside its closed set.
func OneOf(field string, v types.BaseEnum) error {
	if v == nil || !v.IsValid() {
		return Errorf(field, "has an invalid value %q", fmt.Sprint(v))
	}
	return nil
}

// NotAfter fails when start is after end.
func NotAfter(field string, start, end time.Time) error {
	if start.After(end) {
		return Errorf(field, "start date %s is after end date %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NotInFuture fails when the calendar date of t is after the calendar date of now.
func NotInFuture(field string, t, now time.Time) error {
	if dateOf(t).After(dateOf(now)) {
		return Errorf(field, "date %s cannot be in the future", t.Format(time.DateOnly))
	}
	return nil
}

// FirstOfMonth fails unless t is the first day of its month.
func FirstOfMonth(field string, t time.Time) error {
	if t.Day() != 1 {
		return Errorf(field, "date %s must be the first day of the month", t.Format(time.DateOnly))
	}
	return nil
}

// Slug fails unless value is lowercase alphanumerics separated by single hyphens.
func Slug(field, value string) error {
	if !slugPattern.MatchString(value) {
		return Errorf(field, "%q must contain only lowercase letters, digits and single hyphens", value)
	}
	return nil
}

// Letters fails unless value is exactly n letters.
func Letters(field, value string, n int) error {
	if utf8.RuneCountInString(value) != n {
		return Errorf(field, "must be exactly %d letters", n)
	}
	for _, r := range value {
		if !unicode.IsLetter(r) {
			return Errorf(field, "must be exactly %d letters", n)
		}
	}
	return nil
}

// Exists fails when no row of E has primary key id.
func Exists[E any](ctx context.Context, db bun.IDB, field string, id int64) error {
	ok, err := db.NewSelect().Model((*E)(nil)).Where("?TableAlias.id = ?", id).Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return Errorf(field, "references id %d which does not exist", id)
	}
	return nil
}

// Scope restricts a uniqueness probe to rows sharing the given column values.
type Scope struct {
	Where     map[string]any
	ExcludeID int64
}

// In builds a scope from column, value pairs.
func In(pairs ...any) Scope {
	s := Scope{Where: make(map[string]any, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Where[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return s
}

// Excluding returns s ignoring the row with primary key id, used on update.
func (s Scope) Excluding(id int64) Scope {
	s.ExcludeID = id
	return s
}

// Unique fails with message when a row of E already matches scope.
func Unique[E any](ctx context.Context, db bun.IDB, field, message string, scope Scope) error {
	q := db.NewSelect().Model((*E)(nil))
	cols := make([]string, 0, len(scope.Where))
	for col := range scope.Where {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		q = q.Where("?TableAlias.? = ?", bun.Ident(col), scope.Where[col])
	}
	if scope.ExcludeID != 0 {
		q = q.Where("?TableAlias.id <> ?", scope.ExcludeID)
	}
	ok, err := q.Exists(ctx)
	if err != nil {
		return err
	}
	if ok {
		return Errorf(field, "%s", message)
	}
	return nil
}
