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
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate"
	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/models"
	"github.com/tomoncle/aclimate/types"
	"github.com/tomoncle/aclimate/validation"
)

// series carries the queries shared by every location-anchored record.
type series[E any, C validation.CreateShape[E], R any, U validation.UpdateShape] struct {
	*aclimate.BaseService[E, C, R, U]
}

func (s series[E, C, R, U]) GetByLocationID(ctx context.Context, locationID int64) ([]R, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Location, locationID), nil)
}

func (s series[E, C, R, U]) GetByLocationName(ctx context.Context, location string) ([]R, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Location, location), nil)
}

func (s series[E, C, R, U]) GetByAdmin1ID(ctx context.Context, admin1ID int64) ([]R, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Admin1, admin1ID), nil)
}

func (s series[E, C, R, U]) GetByAdmin1Name(ctx context.Context, admin1 string) ([]R, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Admin1, admin1), nil)
}

func (s series[E, C, R, U]) GetByCountryID(ctx context.Context, countryID int64) ([]R, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Country, countryID), nil)
}

func (s series[E, C, R, U]) GetByCountryName(ctx context.Context, country string) ([]R, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Country, country), nil)
}

// measured adds the measure lookups of climate observations.
type measured[E any, C validation.CreateShape[E], R any, U validation.UpdateShape] struct {
	series[E, C, R, U]
}

func (s measured[E, C, R, U]) GetByMeasureID(ctx context.Context, measureID int64) ([]R, error) {
	return s.GetAll(ctx, types.Filters{"measure_id": measureID})
}

func (s measured[E, C, R, U]) GetByMeasureName(ctx context.Context, measure string) ([]R, error) {
	return s.Find(ctx, joinName("mng_climate_measure", "h_measure", "measure_id", measure))
}

// dated adds the date lookups of the daily and monthly series.
type dated[E any, C validation.CreateShape[E], R any, U validation.UpdateShape] struct {
	measured[E, C, R, U]
}

func (s dated[E, C, R, U]) GetByDate(ctx context.Context, date time.Time) ([]R, error) {
	return s.GetAll(ctx, types.Filters{"date": models.Day(date)})
}

// GetByDateRange returns the records dated within [from, to].
func (s dated[E, C, R, U]) GetByDateRange(ctx context.Context, from, to time.Time) ([]R, error) {
	return s.Find(ctx, between("date", models.Day(from), models.Day(to)))
}

// DateRange is the span of dates stored for one location.
type DateRange struct {
	LocationID int64      `json:"location_id"`
	MinDate    *time.Time `json:"min_date"`
	MaxDate    *time.Time `json:"max_date"`
}

// GetDateRangeByLocation returns the first and last dates stored for a
// location. Both are nil when it has no records.
func (s dated[E, C, R, U]) GetDateRangeByLocation(ctx context.Context, locationID int64) (*DateRange, error) {
	out := &DateRange{LocationID: locationID}
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		var lo, hi bun.NullTime
		err := db.NewSelect().Model((*E)(nil)).
			ColumnExpr("MIN(?TableAlias.date)").
			ColumnExpr("MAX(?TableAlias.date)").
			Where("?TableAlias.location_id = ?", locationID).
			Scan(ctx, &lo, &hi)
		if err != nil {
			return database.Classify("date_range", err)
		}
		if !lo.IsZero() {
			out.MinDate = &lo.Time
		}
		if !hi.IsZero() {
			out.MaxDate = &hi.Time
		}
		return nil
	})
	return out, err
}

func observationChecks(ctx context.Context, db bun.IDB, locationID, measureID int64) []error {
	return []error{
		validation.Exists[models.Location](ctx, db, "location_id", locationID),
		validation.Exists[models.ClimateMeasure](ctx, db, "measure_id", measureID),
	}
}

// Clock returns the current time, used to reject future observations.
type Clock func() time.Time

// DailyService manages climate_historical_daily.
type DailyService struct {
	dated[models.ClimateHistoricalDaily, models.ClimateHistoricalDailyCreate, models.ObservationRead, models.ClimateHistoricalDailyUpdate]
}

func NewDailyService(sessions *database.SessionManager, now Clock) *DailyService {
	if now == nil {
		now = time.Now
	}
	validate := validation.CreateFunc[models.ClimateHistoricalDailyCreate](
		func(ctx context.Context, db bun.IDB, c models.ClimateHistoricalDailyCreate) error {
			date := models.Day(c.Date)
			checks := append(observationChecks(ctx, db, c.LocationID, c.MeasureID),
				validation.NotInFuture("date", date, now()),
				validation.Unique[models.ClimateHistoricalDaily](ctx, db, "date",
					fmt.Sprintf("a daily record already exists for location %d, measure %d on %s",
						c.LocationID, c.MeasureID, date.Format(time.DateOnly)),
					validation.In("location_id", c.LocationID, "measure_id", c.MeasureID, "date", date)),
			)
			return validation.All("climate_historical_daily", checks...)
		})
	base := aclimate.NewService[models.ClimateHistoricalDaily, models.ClimateHistoricalDailyCreate, models.ObservationRead, models.ClimateHistoricalDailyUpdate](
		sessions, (*models.ClimateHistoricalDaily).Read,
		aclimate.WithValidator[models.ClimateHistoricalDaily, models.ClimateHistoricalDailyCreate](validate),
	)
	return &DailyService{dated[models.ClimateHistoricalDaily, models.ClimateHistoricalDailyCreate, models.ObservationRead, models.ClimateHistoricalDailyUpdate]{
		measured[models.ClimateHistoricalDaily, models.ClimateHistoricalDailyCreate, models.ObservationRead, models.ClimateHistoricalDailyUpdate]{
			series[models.ClimateHistoricalDaily, models.ClimateHistoricalDailyCreate, models.ObservationRead, models.ClimateHistoricalDailyUpdate]{base},
		},
	}}
}

// Upsert writes observations, replacing the value of any that already exist
// for the same location, measure and date. Rows are not validated.
func (s *DailyService) Upsert(ctx context.Context, rows ...models.ClimateHistoricalDailyCreate) error {
	entities := make([]*models.ClimateHistoricalDaily, 0, len(rows))
	for _, r := range rows {
		entities = append(entities, r.Entity())
	}
	return s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		return s.Repository().Upsert(ctx, db, []string{"value"}, []string{"location_id", "measure_id", "date"}, entities...)
	})
}

// MonthlyService manages climate_historical_monthly.
type MonthlyService struct {
	dated[models.ClimateHistoricalMonthly, models.ClimateHistoricalMonthlyCreate, models.ObservationRead, models.ClimateHistoricalMonthlyUpdate]
}

func NewMonthlyService(sessions *database.SessionManager) *MonthlyService {
	validate := validation.CreateFunc[models.ClimateHistoricalMonthlyCreate](
		func(ctx context.Context, db bun.IDB, c models.ClimateHistoricalMonthlyCreate) error {
			date := models.Day(c.Date)
			checks := append(observationChecks(ctx, db, c.LocationID, c.MeasureID),
				validation.FirstOfMonth("date", date),
				validation.Unique[models.ClimateHistoricalMonthly](ctx, db, "date",
					fmt.Sprintf("a monthly record already exists for location %d, measure %d on %s",
						c.LocationID, c.MeasureID, date.Format(time.DateOnly)),
					validation.In("location_id", c.LocationID, "measure_id", c.MeasureID, "date", date)),
			)
			return validation.All("climate_historical_monthly", checks...)
		})
	base := aclimate.NewService[models.ClimateHistoricalMonthly, models.ClimateHistoricalMonthlyCreate, models.ObservationRead, models.ClimateHistoricalMonthlyUpdate](
		sessions, (*models.ClimateHistoricalMonthly).Read,
		aclimate.WithValidator[models.ClimateHistoricalMonthly, models.ClimateHistoricalMonthlyCreate](validate),
	)
	return &MonthlyService{dated[models.ClimateHistoricalMonthly, models.ClimateHistoricalMonthlyCreate, models.ObservationRead, models.ClimateHistoricalMonthlyUpdate]{
		measured[models.ClimateHistoricalMonthly, models.ClimateHistoricalMonthlyCreate, models.ObservationRead, models.ClimateHistoricalMonthlyUpdate]{
			series[models.ClimateHistoricalMonthly, models.ClimateHistoricalMonthlyCreate, models.ObservationRead, models.ClimateHistoricalMonthlyUpdate]{base},
		},
	}}
}

// ClimatologyService manages climate_historical_climatology.
type ClimatologyService struct {
	measured[models.ClimateHistoricalClimatology, models.ClimateHistoricalClimatologyCreate, models.ClimatologyRead, models.ClimateHistoricalClimatologyUpdate]
}

func NewClimatologyService(sessions *database.SessionManager) *ClimatologyService {
	validate := validation.CreateFunc[models.ClimateHistoricalClimatologyCreate](
		func(ctx context.Context, db bun.IDB, c models.ClimateHistoricalClimatologyCreate) error {
			checks := append(observationChecks(ctx, db, c.LocationID, c.MeasureID),
				validation.Range("month", c.Month, 1, 12),
				validation.Unique[models.ClimateHistoricalClimatology](ctx, db, "month",
					fmt.Sprintf("a climatology record already exists for location %d, measure %d, month %d",
						c.LocationID, c.MeasureID, c.Month),
					validation.In("location_id", c.LocationID, "measure_id", c.MeasureID, "month", c.Month)),
			)
			return validation.All("climate_historical_climatology", checks...)
		})
	base := aclimate.NewService[models.ClimateHistoricalClimatology, models.ClimateHistoricalClimatologyCreate, models.ClimatologyRead, models.ClimateHistoricalClimatologyUpdate](
		sessions, (*models.ClimateHistoricalClimatology).Read,
		aclimate.WithValidator[models.ClimateHistoricalClimatology, models.ClimateHistoricalClimatologyCreate](validate),
	)
	return &ClimatologyService{measured[models.ClimateHistoricalClimatology, models.ClimateHistoricalClimatologyCreate, models.ClimatologyRead, models.ClimateHistoricalClimatologyUpdate]{
		series[models.ClimateHistoricalClimatology, models.ClimateHistoricalClimatologyCreate, models.ClimatologyRead, models.ClimateHistoricalClimatologyUpdate]{base},
	}}
}

func (s *ClimatologyService) GetByMonth(ctx context.Context, month int) ([]models.ClimatologyRead, error) {
	return s.GetAll(ctx, types.Filters{"month": month})
}

// IndicatorRecordService manages climate_historical_indicator.
type IndicatorRecordService struct {
	series[models.ClimateHistoricalIndicator, models.ClimateHistoricalIndicatorCreate, models.ClimateHistoricalIndicatorRead, models.ClimateHistoricalIndicatorUpdate]
}

func NewIndicatorRecordService(sessions *database.SessionManager) *IndicatorRecordService {
	validate := validation.CreateFunc[models.ClimateHistoricalIndicatorCreate](
		func(ctx context.Context, db bun.IDB, c models.ClimateHistoricalIndicatorCreate) error {
			start := models.Day(c.StartDate)
			checks := []error{
				validation.Exists[models.Indicator](ctx, db, "indicator_id", c.IndicatorID),
				validation.Exists[models.Location](ctx, db, "location_id", c.LocationID),
				validation.OneOf("period", c.Period),
				validation.Unique[models.ClimateHistoricalIndicator](ctx, db, "start_date",
					fmt.Sprintf("a %s record already exists for indicator %d at location %d from %s",
						c.Period, c.IndicatorID, c.LocationID, start.Format(time.DateOnly)),
					validation.In("indicator_id", c.IndicatorID, "location_id", c.LocationID, "start_date", start, "period", c.Period)),
			}
			if c.EndDate != nil {
				checks = append(checks, validation.NotAfter("end_date", start, models.Day(*c.EndDate)))
			}
			return validation.All("climate_historical_indicator", checks...)
		})
	base := aclimate.NewService[models.ClimateHistoricalIndicator, models.ClimateHistoricalIndicatorCreate, models.ClimateHistoricalIndicatorRead, models.ClimateHistoricalIndicatorUpdate](
		sessions, (*models.ClimateHistoricalIndicator).Read,
		aclimate.WithValidator[models.ClimateHistoricalIndicator, models.ClimateHistoricalIndicatorCreate](validate),
	)
	return &IndicatorRecordService{series[models.ClimateHistoricalIndicator, models.ClimateHistoricalIndicatorCreate, models.ClimateHistoricalIndicatorRead, models.ClimateHistoricalIndicatorUpdate]{base}}
}

func (s *IndicatorRecordService) GetByIndicatorID(ctx context.Context, indicatorID int64) ([]models.ClimateHistoricalIndicatorRead, error) {
	return s.GetAll(ctx, types.Filters{"indicator_id": indicatorID})
}

func (s *IndicatorRecordService) GetByPeriod(ctx context.Context, period types.Period) ([]models.ClimateHistoricalIndicatorRead, error) {
	return s.GetAll(ctx, types.Filters{"period": period})
}

// GetByDateRange returns the records whose period starts and ends within [from, to].
func (s *IndicatorRecordService) GetByDateRange(ctx context.Context, from, to time.Time) ([]models.ClimateHistoricalIndicatorRead, error) {
	lo, hi := models.Day(from), models.Day(to)
	return s.Find(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.start_date >= ?", lo).
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("?TableAlias.end_date IS NULL").WhereOr("?TableAlias.end_date <= ?", hi)
			}).
			Where("?TableAlias.start_date <= ?", hi)
	})
}

func (s *IndicatorRecordService) GetByIndicatorAndLocation(ctx context.Context, indicatorID, locationID int64) ([]models.ClimateHistoricalIndicatorRead, error) {
	return s.GetAll(ctx, types.Filters{"indicator_id": indicatorID, "location_id": locationID})
}
