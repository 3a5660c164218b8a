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

package hierarchy

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type testLocation struct {
	bun.BaseModel `bun:"table:mng_location,alias:l"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Admin2ID int64  `bun:"admin_2_id"`
	Name     string `bun:"name"`
}

type testReading struct {
	bun.BaseModel `bun:"table:climate_historical_daily,alias:r"`

	ID         int64 `bun:"id,pk,autoincrement"`
	LocationID int64 `bun:"location_id"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestHops(t *testing.T) {
	cases := []struct {
		anchor Anchor
		level  Level
		want   int
	}{
		{Self(Location), Location, 0},
		{Self(Location), Admin2, 1},
		{Self(Location), Admin1, 2},
		{Self(Location), Country, 3},
		{Self(Admin1), Country, 1},
		{Via(Location, "location_id"), Location, 1},
		{Via(Location, "location_id"), Country, 4},
		{Via(Country, "country_id"), Country, 1},
	}
	for _, c := range cases {
		got, err := Hops(c.anchor, c.level)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%v -> %s", c.anchor, c.level)
	}
}

func TestHopsRejectsLevelBelowAnchor(t *testing.T) {
	_, err := Hops(Self(Admin1), Location)
	assert.ErrorIs(t, err, ErrBelowAnchor)

	_, err = Hops(Self(Location), Record)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestApplyLocationByCountryIDJoinsThreeTimes(t *testing.T) {
	db := newTestDB(t)
	q := db.NewSelect().Model((*testLocation)(nil))

	q, err := Apply(q, Self(Location), ByID(Country, 7))
	require.NoError(t, err)

	s := q.String()
	assert.Equal(t, 3, strings.Count(s, "JOIN "), s)
	assert.Contains(t, s, `JOIN "mng_admin_2" AS "h_admin2" ON "h_admin2"."id" = "l"."admin_2_id"`)
	assert.Contains(t, s, `JOIN "mng_admin_1" AS "h_admin1" ON "h_admin1"."id" = "h_admin2"."admin_1_id"`)
	assert.Contains(t, s, `JOIN "mng_country" AS "h_country" ON "h_country"."id" = "h_admin1"."country_id"`)
	assert.Contains(t, s, `"h_country"."id" = 7`)
}

func TestApplyLocationByAdmin1NameJoinsTwice(t *testing.T) {
	db := newTestDB(t)
	q := db.NewSelect().Model((*testLocation)(nil))

	q, err := Apply(q, Self(Location), ByName(Admin1, "Valle del Cauca"))
	require.NoError(t, err)

	s := q.String()
	assert.Equal(t, 2, strings.Count(s, "JOIN "), s)
	assert.Contains(t, s, `"h_admin1"."name" = 'Valle del Cauca'`)
}

func TestApplyOwnLevelFiltersOwnRow(t *testing.T) {
	db := newTestDB(t)
	q := db.NewSelect().Model((*testLocation)(nil))

	q, err := Apply(q, Self(Location), ByName(Location, "Palmira"))
	require.NoError(t, err)

	s := q.String()
	assert.NotContains(t, s, "JOIN")
	assert.Contains(t, s, `"l"."name" = 'Palmira'`)
}

func TestApplyRecordThroughForeignKey(t *testing.T) {
	db := newTestDB(t)
	q := db.NewSelect().Model((*testReading)(nil))

	q, err := Apply(q, Via(Location, "location_id"), ByID(Admin2, 3))
	require.NoError(t, err)

	s := q.String()
	assert.Equal(t, 2, strings.Count(s, "JOIN "), s)
	assert.Contains(t, s, `JOIN "mng_location" AS "h_location" ON "h_location"."id" = "r"."location_id"`)
	assert.Contains(t, s, `"h_admin2"."id" = 3`)
}

func TestApplyRejectsAmbiguousFilter(t *testing.T) {
	db := newTestDB(t)
	q := db.NewSelect().Model((*testLocation)(nil))

	_, err := Apply(q, Self(Location), Filter{Level: Country})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	id, name := int64(1), "x"
	_, err = Apply(q, Self(Location), Filter{Level: Country, ID: &id, Name: &name})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestEdges(t *testing.T) {
	edges := Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, Edge{Table: "mng_location", Column: "admin_2_id", ParentTable: "mng_admin_2", ParentColumn: "id"}, edges[0])
	assert.Equal(t, "mng_country", edges[2].ParentTable)
}
