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

// Package hierarchy resolves ancestor filters over the fixed administrative
// hierarchy Country > Admin1 > Admin2 > Location > record.
//
// Every descendant declares where it hangs in the tree once, through an Anchor.
// Apply then walks parent foreign keys from that anchor to the requested level,
// adding exactly one JOIN per hop, and filters on the ancestor's id or name.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Level is a rung of the administrative hierarchy. Higher is closer to the root.
type Level int

const (
	Record Level = iota
	Location
	Admin2
	Admin1
	Country
)

var levelNames = map[Level]string{
	Record:   "record",
	Location: "location",
	Admin2:   "admin2",
	Admin1:   "admin1",
	Country:  "country",
}

func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// IsValid reports whether l is one of the addressable levels (record excluded).
func (l Level) IsValid() bool {
	return l >= Location && l <= Country
}

// rung is the storage shape of one level: its table and the column pointing at its parent.
type rung struct {
	table    string
	parentFK string
}

var rungs = map[Level]rung{
	Location: {table: "mng_location", parentFK: "admin_2_id"},
	Admin2:   {table: "mng_admin_2", parentFK: "admin_1_id"},
	Admin1:   {table: "mng_admin_1", parentFK: "country_id"},
	Country:  {table: "mng_country"},
}

// Table returns the table that stores rows of level l.
func Table(l Level) string {
	return rungs[l].table
}

// Edge is a parent foreign key of the hierarchy.
type Edge struct {
	Table        string
	Column       string
	ParentTable  string
	ParentColumn string
}

// Edges lists the parent foreign keys from Location up to Country.
func Edges() []Edge {
	edges := make([]Edge, 0, 3)
	for l := Location; l < Country; l++ {
		edges = append(edges, Edge{
			Table:        rungs[l].table,
			Column:       rungs[l].parentFK,
			ParentTable:  rungs[l+1].table,
			ParentColumn: "id",
		})
	}
	return edges
}

// Anchor is where an entity attaches to the hierarchy.
//
// A Self anchor means the entity's own table is the level table. A Via anchor
// means the entity references a row of Level through Column.
type Anchor struct {
	Level  Level
	Column string
}

// Self anchors an entity that is itself a level of the hierarchy.
func Self(l Level) Anchor {
	return Anchor{Level: l}
}

// Via anchors an entity that references level l through the fk column.
func Via(l Level, column string) Anchor {
	return Anchor{Level: l, Column: column}
}

// IsSelf reports whether the anchor is a level of its own.
func (a Anchor) IsSelf() bool {
	return a.Column == ""
}

// Node is implemented by entities that can be filtered by an ancestor.
type Node interface {
	HierarchyAnchor() Anchor
}

// Filter selects rows by one ancestor, either by id or by exact name.
type Filter struct {
	Level Level
	ID    *int64
	Name  *string
}

// ByID filters on the primary key of the ancestor at level l.
func ByID(l Level, id int64) Filter {
	return Filter{Level: l, ID: &id}
}

// ByName filters on the display name of the ancestor at level l. Matching is case-sensitive.
func ByName(l Level, name string) Filter {
	return Filter{Level: l, Name: &name}
}

func (f Filter) String() string {
	switch {
	case f.ID != nil:
		return fmt.Sprintf("%s.id=%d", f.Level, *f.ID)
	case f.Name != nil:
		return fmt.Sprintf("%s.name=%q", f.Level, *f.Name)
	}
	return f.Level.String()
}

var (
	ErrInvalidLevel  = errors.New("hierarchy: invalid level")
	ErrBelowAnchor   = errors.New("hierarchy: requested level is below the entity anchor")
	ErrInvalidFilter = errors.New("hierarchy: filter needs exactly one of id or name")
)

// Hops returns how many joins separate anchor from the level l.
func Hops(anchor Anchor, l Level) (int, error) {
	if !l.IsValid() || !anchor.Level.IsValid() {
		return 0, ErrInvalidLevel
	}
	if l < anchor.Level {
		return 0, fmt.Errorf("%w: %s < %s", ErrBelowAnchor, l, anchor.Level)
	}
	hops := int(l - anchor.Level)
	if !anchor.IsSelf() {
		hops++
	}
	return hops, nil
}

// Alias is the table alias Apply gives to the joined ancestor at level l.
func Alias(l Level) string {
	return "h_" + l.String()
}

// Apply adds the join chain from anchor up to filter.Level and the ancestor
// condition to q. q must select from the anchored entity's model.
func Apply(q *bun.SelectQuery, anchor Anchor, filter Filter) (*bun.SelectQuery, error) {
	if (filter.ID == nil) == (filter.Name == nil) {
		return q, ErrInvalidFilter
	}
	hops, err := Hops(anchor, filter.Level)
	if err != nil {
		return q, err
	}

	target := "?TableAlias"
	if hops > 0 {
		level := anchor.Level
		fk := anchor.Column
		if anchor.IsSelf() {
			// own row is the anchor level, the first hop goes to its parent
			fk = rungs[level].parentFK
			level++
		}
		prev := ""
		for i := 0; i < hops; i++ {
			alias := Alias(level)
			if prev == "" {
				q = q.Join("JOIN ? AS ? ON ?.? = ?TableAlias.?",
					bun.Ident(rungs[level].table), bun.Ident(alias), bun.Ident(alias), bun.Ident("id"), bun.Ident(fk))
			} else {
				q = q.Join("JOIN ? AS ? ON ?.? = ?.?",
					bun.Ident(rungs[level].table), bun.Ident(alias), bun.Ident(alias), bun.Ident("id"), bun.Ident(prev), bun.Ident(fk))
			}
			prev = alias
			fk = rungs[level].parentFK
			level++
		}
		target = prev
	}

	column, value := "name", any(nil)
	if filter.ID != nil {
		column, value = "id", *filter.ID
	} else {
		value = *filter.Name
	}
	if target == "?TableAlias" {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value), nil
	}
	return q.Where("?.? = ?", bun.Ident(target), bun.Ident(column), value), nil
}
