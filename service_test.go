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

package aclimate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate"
	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/internal/dbtest"
	"github.com/tomoncle/aclimate/models"
	"github.com/tomoncle/aclimate/repository"
	"github.com/tomoncle/aclimate/types"
	"github.com/tomoncle/aclimate/validation"
)

type countryService = aclimate.BaseService[models.Country, models.CountryCreate, models.CountryRead, models.CountryUpdate]

var _ aclimate.Service[models.Country, models.CountryCreate, models.CountryRead, models.CountryUpdate] = (*countryService)(nil)

var uniqueISO2 = validation.CreateFunc[models.CountryCreate](func(ctx context.Context, db bun.IDB, c models.CountryCreate) error {
	return validation.All("country",
		validation.Unique[models.Country](ctx, db, "iso2", "iso2 taken", validation.In("iso2", c.ISO2)))
})

func newCountries(t *testing.T, opts ...aclimate.Option[models.Country, models.CountryCreate]) (*database.SessionManager, *countryService) {
	t.Helper()
	sm := dbtest.Sessions(t)
	return sm, aclimate.NewService[models.Country, models.CountryCreate, models.CountryRead, models.CountryUpdate](
		sm, (*models.Country).Read, opts...)
}

func countries(n int) []models.CountryCreate {
	out := make([]models.CountryCreate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.CountryCreate{
			Name: fmt.Sprintf("Country %02d", i),
			ISO2: string([]byte{'A' + byte(i/26), 'A' + byte(i%26)}),
		})
	}
	return out
}

func TestCreateReturnsStoredRow(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)

	got, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "co"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "CO", got.ISO2)
	assert.True(t, got.Enable)
	assert.False(t, got.Register.IsZero())

	again, err := svc.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Name, again.Name)
}

func TestCreateKeepsExplicitlyDisabled(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)
	off := false

	got, err := svc.Create(ctx, models.CountryCreate{Name: "Brazil", ISO2: "BR", Enable: &off})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Enable)

	stored, err := svc.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.False(t, stored.Enable)

	_, err = svc.BulkCreate(ctx, []models.CountryCreate{{Name: "Peru", ISO2: "PE", Enable: &off}}, 0)
	require.NoError(t, err)

	enabled, err := svc.GetAll(ctx, types.Filters{"enable": true})
	require.NoError(t, err)
	assert.Empty(t, enabled)

	disabled, err := svc.GetAll(ctx, types.Filters{"enable": false})
	require.NoError(t, err)
	assert.Len(t, disabled, 2)
}

func TestCreateRejectsInvalidShape(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)

	_, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "C0L"})
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))
	assert.False(t, database.IsStorageError(err))

	n, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateRunsValidationHook(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t, aclimate.WithValidator[models.Country, models.CountryCreate](uniqueISO2))

	_, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "CO"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.CountryCreate{Name: "Colombia again", ISO2: "CO"})
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "iso2", ve.Field)
	assert.Equal(t, "country", ve.Entity)

	n, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetByIDMissing(t *testing.T) {
	_, svc := newCountries(t)
	got, err := svc.GetByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBulkCreateCountsEveryBatch(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)

	n, err := svc.BulkCreate(ctx, countries(25), 10)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	total, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, total)

	n, err = svc.BulkCreate(ctx, nil, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkCreateRollsBackFailedBatchAlone(t *testing.T) {
	ctx := context.Background()
	sm := dbtest.Sessions(t)
	svc := aclimate.NewService[models.ClimateHistoricalDaily, models.ClimateHistoricalDailyCreate, models.ObservationRead, models.ClimateHistoricalDailyUpdate](
		sm, (*models.ClimateHistoricalDaily).Read)

	day := func(d int) models.ClimateHistoricalDailyCreate {
		return models.ClimateHistoricalDailyCreate{
			LocationID: 1, MeasureID: 1, Value: float64(d),
			Date: time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
		}
	}
	rows := []models.ClimateHistoricalDailyCreate{day(1), day(2), day(3), day(1), day(5)}

	n, err := svc.BulkCreate(ctx, rows, 2)
	require.Error(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, database.IsConstraintError(err), "got %v", err)

	stored, err := svc.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 1.0, stored[0].Value)
	assert.Equal(t, 2.0, stored[1].Value)
}

func TestBulkCreateJoinsCallerTransaction(t *testing.T) {
	ctx := context.Background()
	sm, svc := newCountries(t)

	err := sm.InTx(ctx, func(ctx context.Context) error {
		n, err := svc.BulkCreate(ctx, countries(6), 2)
		require.NoError(t, err)
		assert.Equal(t, 6, n)

		in, err := svc.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 6, in)
		return errors.New("caller aborts")
	})
	require.ErrorContains(t, err, "caller aborts")

	n, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCallerTransactionGroupsCalls(t *testing.T) {
	ctx := context.Background()
	sm, svc := newCountries(t)

	err := sm.InTx(ctx, func(ctx context.Context) error {
		if _, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "CO"}); err != nil {
			return err
		}
		_, err := svc.Create(ctx, models.CountryCreate{Name: "Peru", ISO2: "PE"})
		return err
	})
	require.NoError(t, err)

	n, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFailedCallInCallerTransactionRollsBackAll(t *testing.T) {
	ctx := context.Background()
	sm, svc := newCountries(t)

	err := sm.InTx(ctx, func(ctx context.Context) error {
		if _, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "CO"}); err != nil {
			return err
		}
		_, err := svc.Create(ctx, models.CountryCreate{Name: "", ISO2: "PE"})
		return err
	})
	require.Error(t, err)
	assert.True(t, validation.IsValidationError(err))

	n, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPanicRollsBackAndPropagates(t *testing.T) {
	ctx := context.Background()
	sm, svc := newCountries(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = sm.InTx(ctx, func(ctx context.Context) error {
			_, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "CO"})
			require.NoError(t, err)
			panic("boom")
		})
	})

	n, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPaginateCoversEveryRowOnce(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)
	_, err := svc.BulkCreate(ctx, countries(23), 0)
	require.NoError(t, err)

	all, err := svc.GetAll(ctx, nil)
	require.NoError(t, err)

	var paged []int64
	for page := 1; ; page++ {
		p, err := svc.Paginate(ctx, types.NewPageRequest(page, 5))
		require.NoError(t, err)
		assert.Equal(t, 23, p.Total)
		assert.Equal(t, 5, p.Pages)
		for _, c := range p.Items {
			paged = append(paged, c.ID)
		}
		if !p.HasNext {
			assert.Len(t, p.Items, 3)
			break
		}
	}
	ids := make([]int64, 0, len(all))
	for _, c := range all {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, ids, paged)

	beyond, err := svc.Paginate(ctx, types.NewPageRequest(9, 5))
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 23, beyond.Total)
}

func TestPaginateOrdersAndFilters(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)
	off := false
	_, err := svc.BulkCreate(ctx, []models.CountryCreate{
		{Name: "Colombia", ISO2: "CO"},
		{Name: "Argentina", ISO2: "AR"},
		{Name: "Brazil", ISO2: "BR", Enable: &off},
		{Name: "Chile", ISO2: "CL"},
	}, 0)
	require.NoError(t, err)

	req := types.NewPageRequest(1, 10).
		WithFilters(types.Filters{"enable": true}).
		OrderBy("name", types.Desc)
	p, err := svc.Paginate(ctx, req)
	require.NoError(t, err)
	require.Len(t, p.Items, 3)
	assert.Equal(t, []string{"Colombia", "Chile", "Argentina"},
		[]string{p.Items[0].Name, p.Items[1].Name, p.Items[2].Name})

	_, err = svc.Paginate(ctx, types.NewPageRequest(1, 10).OrderBy("population", types.Asc))
	assert.True(t, validation.IsValidationError(err))

	def, err := svc.Paginate(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPerPage, def.PerPage)
	assert.Len(t, def.Items, 4)
}

func TestUpdateChangesOnlySuppliedFields(t *testing.T) {
	ctx := context.Background()
	later := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	_, svc := newCountries(t, aclimate.WithRepositoryOptions[models.Country, models.CountryCreate](
		repository.WithClock(func() time.Time { return later })))

	created, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "CO"})
	require.NoError(t, err)

	name := "República de Colombia"
	got, err := svc.Update(ctx, created.ID, models.CountryUpdate{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, "CO", got.ISO2)
	assert.True(t, got.Enable)
	assert.True(t, later.Equal(got.Updated), "updated = %v", got.Updated)

	same, err := svc.Update(ctx, created.ID, models.CountryUpdate{})
	require.NoError(t, err)
	assert.Equal(t, name, same.Name)
}

func TestUpdateMissingRow(t *testing.T) {
	_, svc := newCountries(t)
	name := "nowhere"
	got, err := svc.Update(context.Background(), 99, models.CountryUpdate{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)
	created, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "CO"})
	require.NoError(t, err)

	bad := "COL"
	_, err = svc.Update(ctx, created.ID, models.CountryUpdate{ISO2: &bad})
	assert.True(t, validation.IsValidationError(err))

	_, err = svc.UpdateFields(ctx, created.ID, map[string]any{"population": 50})
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "population", ve.Field)

	_, err = svc.UpdateFields(ctx, created.ID, map[string]any{"id": 7})
	assert.True(t, validation.IsValidationError(err))
}

func TestSoftDeleteKeepsRow(t *testing.T) {
	ctx := context.Background()
	_, svc := newCountries(t)
	created, err := svc.Create(ctx, models.CountryCreate{Name: "Colombia", ISO2: "CO"})
	require.NoError(t, err)

	ok, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Enable)

	ok, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok, "deleting a disabled row still reports the row")

	ok, err = svc.Delete(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := svc.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHardDeleteRemovesRow(t *testing.T) {
	ctx := context.Background()
	sm := dbtest.Sessions(t)
	svc := aclimate.NewService[models.CountryIndicator, models.CountryIndicatorCreate, models.CountryIndicatorRead, models.CountryIndicatorUpdate](
		sm, (*models.CountryIndicator).Read)
	assert.Equal(t, repository.NoAvailabilityFlag, svc.Repository().Policy())

	created, err := svc.Create(ctx, models.CountryIndicatorCreate{CountryID: 1, IndicatorID: 2, SpatialClimate: true})
	require.NoError(t, err)

	ok, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
