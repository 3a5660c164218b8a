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

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/internal/dbtest"
	"github.com/tomoncle/aclimate/models"
	"github.com/tomoncle/aclimate/repository"
	"github.com/tomoncle/aclimate/types"
	"github.com/tomoncle/aclimate/validation"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *bun.DB {
	t.Helper()
	return dbtest.Open(t).DB()
}

func insertCountries(t *testing.T, db *bun.DB, repo *repository.Repository[models.Country], n int) []*models.Country {
	t.Helper()
	rows := make([]*models.Country, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.CountryCreate{
			Name: fmt.Sprintf("Country %02d", i%4),
			ISO2: string([]byte{'A' + byte(i/26), 'A' + byte(i%26)}),
		}.Entity())
	}
	repo.Stamp(rows...)
	require.NoError(t, repo.Insert(context.Background(), db, rows...))
	return rows
}

func TestMetadata(t *testing.T) {
	db := openDB(t)

	countries := repository.New[models.Country](db)
	assert.Equal(t, "country", countries.Entity())
	assert.Equal(t, "id", countries.PK())
	assert.Equal(t, repository.HasAvailabilityFlag, countries.Policy())
	anchor, ok := countries.Anchor()
	assert.True(t, ok)
	assert.True(t, anchor.IsSelf())
	assert.True(t, countries.HasColumn("iso2"))
	assert.False(t, countries.HasColumn("population"))

	access := repository.New[models.UserAccess](db)
	assert.Equal(t, "user_access", access.Entity())
	assert.Equal(t, repository.NoAvailabilityFlag, access.Policy())

	sources := repository.New[models.Source](db)
	_, ok = sources.Anchor()
	assert.False(t, ok)

	assert.Equal(t, "HAS_AVAILABILITY_FLAG", repository.HasAvailabilityFlag.String())
	assert.Equal(t, "NO_AVAILABILITY_FLAG", repository.NoAvailabilityFlag.String())
}

func TestInsertWritesGeneratedKeys(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Country](db, repository.WithClock(func() time.Time { return epoch }))

	rows := insertCountries(t, db, repo, 3)
	for _, r := range rows {
		assert.NotZero(t, r.ID)
		assert.True(t, epoch.Equal(r.Register))
	}

	got, err := repo.GetOne(ctx, db, rows[1].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rows[1].ISO2, got.ISO2)

	missing, err := repo.GetOne(ctx, db, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Country](db)
	rows := insertCountries(t, db, repo, 8)

	got, err := repo.List(ctx, db, types.Filters{"name": "Country 01"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[1].ID, got[0].ID)
	assert.Equal(t, rows[5].ID, got[1].ID)

	n, err := repo.Count(ctx, db, types.Filters{"name": "Country 01", "enable": true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.List(ctx, db, types.Filters{"population": 1})
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "population", ve.Field)
}

func TestNilFilterMatchesNull(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Location](db)
	src := int64(7)
	rows := []*models.Location{
		models.LocationCreate{Admin2ID: 1, Name: "A", MachineName: "a"}.Entity(),
		models.LocationCreate{Admin2ID: 1, Name: "B", MachineName: "b", SourceID: &src}.Entity(),
	}
	repo.Stamp(rows...)
	require.NoError(t, repo.Insert(ctx, db, rows...))

	var none *int64
	got, err := repo.List(ctx, db, types.Filters{"source_id": none})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name)
}

func TestPagesPartitionTheResult(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Country](db)
	insertCountries(t, db, repo, 17)

	for _, perPage := range []int{1, 4, 5, 17, 20} {
		t.Run(fmt.Sprint(perPage), func(t *testing.T) {
			seen := map[int64]bool{}
			var ids []int64
			for page := 1; page <= (17+perPage-1)/perPage+1; page++ {
				req := types.NewPageRequest(page, perPage).OrderBy("name", types.Asc)
				rows, total, err := repo.Page(ctx, db, req)
				require.NoError(t, err)
				assert.Equal(t, 17, total)
				for _, r := range rows {
					assert.False(t, seen[r.ID], "row %d on two pages", r.ID)
					seen[r.ID] = true
					ids = append(ids, r.ID)
				}
			}
			assert.Len(t, ids, 17)
		})
	}
}

func TestPageRejectsBadOrdering(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Country](db)

	_, _, err := repo.Page(ctx, db, types.NewPageRequest(1, 10).OrderBy("name", "sideways"))
	assert.True(t, validation.IsValidationError(err))

	_, _, err = repo.Page(ctx, db, types.NewPageRequest(1, 10).OrderBy("population", types.Asc))
	assert.True(t, validation.IsValidationError(err))

	rows, total, err := repo.Page(ctx, db, types.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestPartialUpdate(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	later := epoch.Add(48 * time.Hour)
	now := epoch
	repo := repository.New[models.Country](db, repository.WithClock(func() time.Time { return now }))
	row := insertCountries(t, db, repo, 1)[0]

	now = later
	ok, err := repo.Update(ctx, db, row.ID, map[string]any{"name": "Renamed"})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetOne(ctx, db, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, row.ISO2, got.ISO2)
	assert.True(t, got.Enable)
	assert.True(t, epoch.Equal(got.Register))
	assert.True(t, later.Equal(got.Updated))

	ok, err = repo.Update(ctx, db, 999, map[string]any{"name": "Ghost"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Update(ctx, db, row.ID, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Update(ctx, db, row.ID, map[string]any{"id": 5})
	assert.True(t, validation.IsValidationError(err))
	_, err = repo.Update(ctx, db, row.ID, map[string]any{"population": 5})
	assert.True(t, validation.IsValidationError(err))
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Country](db)
	row := insertCountries(t, db, repo, 1)[0]

	for i := 0; i < 2; i++ {
		ok, err := repo.Delete(ctx, db, row.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	got, err := repo.GetOne(ctx, db, row.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Enable)

	ok, err := repo.Delete(ctx, db, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Role](db)
	role := models.RoleCreate{Name: "admin", Module: types.ModuleUserManagement}.Entity()
	require.NoError(t, repo.Insert(ctx, db, role))

	ok, err := repo.Delete(ctx, db, role.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := repo.Exists(ctx, db, role.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err = repo.Delete(ctx, db, role.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.ClimateHistoricalClimatology](db)
	row := func(month int, v float64) *models.ClimateHistoricalClimatology {
		return models.ClimateHistoricalClimatologyCreate{LocationID: 1, MeasureID: 1, Month: month, Value: v}.Entity()
	}
	keys := []string{"location_id", "measure_id", "month"}

	require.NoError(t, repo.Upsert(ctx, db, []string{"value"}, keys, row(1, 10), row(2, 20)))
	require.NoError(t, repo.Upsert(ctx, db, []string{"value"}, keys, row(1, 15)))

	got, err := repo.List(ctx, db, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 15.0, got[0].Value)
	assert.Equal(t, 20.0, got[1].Value)

	assert.Error(t, repo.Upsert(ctx, db, nil, keys, row(3, 1)))
	assert.True(t, validation.IsValidationError(repo.Upsert(ctx, db, []string{"nope"}, keys, row(3, 1))))
}

func TestFindByAncestor(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	countries := repository.New[models.Country](db)
	co := models.CountryCreate{Name: "Colombia", ISO2: "CO"}.Entity()
	countries.Stamp(co)
	require.NoError(t, countries.Insert(ctx, db, co))

	admin1 := repository.New[models.Admin1](db)
	valle := models.Admin1Create{CountryID: co.ID, Name: "Valle del Cauca"}.Entity()
	other := models.Admin1Create{CountryID: co.ID + 1, Name: "Lima"}.Entity()
	admin1.Stamp(valle, other)
	require.NoError(t, admin1.Insert(ctx, db, valle, other))

	got, err := admin1.FindByAncestor(ctx, db, hierarchy.ByName(hierarchy.Country, "Colombia"), types.Filters{"enable": true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, valle.ID, got[0].ID)

	_, err = admin1.FindByAncestor(ctx, db, hierarchy.ByID(hierarchy.Location, 1), nil)
	assert.True(t, validation.IsValidationError(err), "a location is below an admin 1")

	sources := repository.New[models.Source](db)
	_, err = sources.FindByAncestor(ctx, db, hierarchy.ByID(hierarchy.Country, co.ID), nil)
	assert.True(t, validation.IsValidationError(err))
}

func TestQueryAndFirst(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	repo := repository.New[models.Country](db)
	rows := insertCountries(t, db, repo, 6)

	got, err := repo.Query(ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.name = ?", "Country 00")
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[0].ID, got[0].ID)
	assert.Equal(t, rows[4].ID, got[1].ID)

	first, err := repo.First(ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.name = ?", "Country 03")
	})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, rows[3].ID, first.ID)

	none, err := repo.First(ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.name = ?", "missing")
	})
	require.NoError(t, err)
	assert.Nil(t, none)
}
