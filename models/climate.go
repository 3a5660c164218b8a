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

package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/types"
)

var locationRecord = hierarchy.Via(hierarchy.Location, "location_id")

// ClimateHistoricalDaily is one daily observation of a measure at a location.
type ClimateHistoricalDaily struct {
	bun.BaseModel `bun:"table:climate_historical_daily,alias:chd"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	LocationID int64     `bun:"location_id,notnull,unique:daily_observation" json:"location_id"`
	MeasureID  int64     `bun:"measure_id,notnull,unique:daily_observation" json:"measure_id"`
	Date       time.Time `bun:"date,notnull,type:date,unique:daily_observation" json:"date"`
	Value      float64   `bun:"value,notnull" json:"value"`
}

func (*ClimateHistoricalDaily) HierarchyAnchor() hierarchy.Anchor { return locationRecord }

type ClimateHistoricalDailyCreate struct {
	LocationID int64     `json:"location_id" validate:"required,gt=0"`
	MeasureID  int64     `json:"measure_id" validate:"required,gt=0"`
	Date       time.Time `json:"date" validate:"required"`
	Value      float64   `json:"value"`
}

func (c ClimateHistoricalDailyCreate) Entity() *ClimateHistoricalDaily {
	return &ClimateHistoricalDaily{LocationID: c.LocationID, MeasureID: c.MeasureID, Date: Day(c.Date), Value: c.Value}
}

type ClimateHistoricalDailyUpdate struct {
	Value *float64 `json:"value,omitempty"`
}

func (u ClimateHistoricalDailyUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "value", u.Value)
	return p
}

// ObservationRead is the read shape shared by the daily and monthly series.
type ObservationRead struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"location_id"`
	MeasureID  int64     `json:"measure_id"`
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
}

func (e *ClimateHistoricalDaily) Read() ObservationRead {
	return ObservationRead{ID: e.ID, LocationID: e.LocationID, MeasureID: e.MeasureID, Date: e.Date, Value: e.Value}
}

// ClimateHistoricalMonthly is one monthly aggregate, dated on the first of the month.
type ClimateHistoricalMonthly struct {
	bun.BaseModel `bun:"table:climate_historical_monthly,alias:chm"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	LocationID int64     `bun:"location_id,notnull,unique:monthly_observation" json:"location_id"`
	MeasureID  int64     `bun:"measure_id,notnull,unique:monthly_observation" json:"measure_id"`
	Date       time.Time `bun:"date,notnull,type:date,unique:monthly_observation" json:"date"`
	Value      float64   `bun:"value,notnull" json:"value"`
}

func (*ClimateHistoricalMonthly) HierarchyAnchor() hierarchy.Anchor { return locationRecord }

type ClimateHistoricalMonthlyCreate struct {
	LocationID int64     `json:"location_id" validate:"required,gt=0"`
	MeasureID  int64     `json:"measure_id" validate:"required,gt=0"`
	Date       time.Time `json:"date" validate:"required"`
	Value      float64   `json:"value"`
}

func (c ClimateHistoricalMonthlyCreate) Entity() *ClimateHistoricalMonthly {
	return &ClimateHistoricalMonthly{LocationID: c.LocationID, MeasureID: c.MeasureID, Date: Day(c.Date), Value: c.Value}
}

type ClimateHistoricalMonthlyUpdate struct {
	Value *float64 `json:"value,omitempty"`
}

func (u ClimateHistoricalMonthlyUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "value", u.Value)
	return p
}

func (e *ClimateHistoricalMonthly) Read() ObservationRead {
	return ObservationRead{ID: e.ID, LocationID: e.LocationID, MeasureID: e.MeasureID, Date: e.Date, Value: e.Value}
}

// ClimateHistoricalClimatology is the long-term normal of a measure for one calendar month.
type ClimateHistoricalClimatology struct {
	bun.BaseModel `bun:"table:climate_historical_climatology,alias:chc"`

	ID         int64   `bun:"id,pk,autoincrement" json:"id"`
	LocationID int64   `bun:"location_id,notnull,unique:climatology_observation" json:"location_id"`
	MeasureID  int64   `bun:"measure_id,notnull,unique:climatology_observation" json:"measure_id"`
	Month      int     `bun:"month,notnull,unique:climatology_observation" json:"month"`
	Value      float64 `bun:"value,notnull" json:"value"`
}

func (*ClimateHistoricalClimatology) HierarchyAnchor() hierarchy.Anchor { return locationRecord }

type ClimateHistoricalClimatologyCreate struct {
	LocationID int64   `json:"location_id" validate:"required,gt=0"`
	MeasureID  int64   `json:"measure_id" validate:"required,gt=0"`
	Month      int     `json:"month" validate:"gte=1,lte=12"`
	Value      float64 `json:"value"`
}

func (c ClimateHistoricalClimatologyCreate) Entity() *ClimateHistoricalClimatology {
	return &ClimateHistoricalClimatology{LocationID: c.LocationID, MeasureID: c.MeasureID, Month: c.Month, Value: c.Value}
}

type ClimateHistoricalClimatologyUpdate struct {
	Value *float64 `json:"value,omitempty"`
}

func (u ClimateHistoricalClimatologyUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "value", u.Value)
	return p
}

type ClimatologyRead struct {
	ID         int64   `json:"id"`
	LocationID int64   `json:"location_id"`
	MeasureID  int64   `json:"measure_id"`
	Month      int     `json:"month"`
	Value      float64 `json:"value"`
}

func (e *ClimateHistoricalClimatology) Read() ClimatologyRead {
	return ClimatologyRead{ID: e.ID, LocationID: e.LocationID, MeasureID: e.MeasureID, Month: e.Month, Value: e.Value}
}

// ClimateHistoricalIndicator is an indicator value computed for a location over a period.
type ClimateHistoricalIndicator struct {
	bun.BaseModel `bun:"table:climate_historical_indicator,alias:chi"`

	ID          int64        `bun:"id,pk,autoincrement" json:"id"`
	IndicatorID int64        `bun:"indicator_id,notnull,unique:indicator_record" json:"indicator_id"`
	LocationID  int64        `bun:"location_id,notnull,unique:indicator_record" json:"location_id"`
	Value       float64      `bun:"value,notnull" json:"value"`
	Period      types.Period `bun:"period,notnull,type:varchar(32),unique:indicator_record" json:"period"`
	StartDate   time.Time    `bun:"start_date,notnull,type:date,unique:indicator_record" json:"start_date"`
	EndDate     *time.Time   `bun:"end_date,type:date" json:"end_date,omitempty"`
}

func (*ClimateHistoricalIndicator) HierarchyAnchor() hierarchy.Anchor { return locationRecord }

type ClimateHistoricalIndicatorCreate struct {
	IndicatorID int64        `json:"indicator_id" validate:"required,gt=0"`
	LocationID  int64        `json:"location_id" validate:"required,gt=0"`
	Value       float64      `json:"value"`
	Period      types.Period `json:"period" validate:"required,enum"`
	StartDate   time.Time    `json:"start_date" validate:"required"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
}

func (c ClimateHistoricalIndicatorCreate) Entity() *ClimateHistoricalIndicator {
	return &ClimateHistoricalIndicator{
		IndicatorID: c.IndicatorID,
		LocationID:  c.LocationID,
		Value:       c.Value,
		Period:      c.Period,
		StartDate:   Day(c.StartDate),
		EndDate:     dayPtr(c.EndDate),
	}
}

type ClimateHistoricalIndicatorUpdate struct {
	Value   *float64   `json:"value,omitempty"`
	EndDate *time.Time `json:"end_date,omitempty"`
}

func (u ClimateHistoricalIndicatorUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "value", u.Value)
	if u.EndDate != nil {
		p["end_date"] = Day(*u.EndDate)
	}
	return p
}

type ClimateHistoricalIndicatorRead struct {
	ID          int64        `json:"id"`
	IndicatorID int64        `json:"indicator_id"`
	LocationID  int64        `json:"location_id"`
	Value       float64      `json:"value"`
	Period      types.Period `json:"period"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
}

func (e *ClimateHistoricalIndicator) Read() ClimateHistoricalIndicatorRead {
	return ClimateHistoricalIndicatorRead{
		ID:          e.ID,
		IndicatorID: e.IndicatorID,
		LocationID:  e.LocationID,
		Value:       e.Value,
		Period:      e.Period,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
	}
}
