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
	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/types"
)

// Source is a station kind or data provider a location reports through.
type Source struct {
	bun.BaseModel `bun:"table:mng_source,alias:src"`

	ID         int64            `bun:"id,pk,autoincrement" json:"id"`
	Name       string           `bun:"name,notnull,type:varchar(255)" json:"name"`
	SourceType types.SourceType `bun:"source_type,notnull,type:varchar(32)" json:"source_type"`
	Audit
}

type SourceCreate struct {
	Name       string           `json:"name" validate:"required,max=255"`
	SourceType types.SourceType `json:"source_type" validate:"required,enum"`
	Enable     *bool            `json:"enable,omitempty"`
}

func (c SourceCreate) Entity() *Source {
	return &Source{Name: c.Name, SourceType: c.SourceType, Audit: newAudit(c.Enable)}
}

type SourceUpdate struct {
	Name       *string           `json:"name,omitempty" validate:"omitempty,max=255"`
	SourceType *types.SourceType `json:"source_type,omitempty" validate:"omitempty,enum"`
	Enable     *bool             `json:"enable,omitempty"`
}

func (u SourceUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "name", u.Name)
	set(p, "source_type", u.SourceType)
	set(p, columnEnable, u.Enable)
	return p
}

type SourceRead struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	SourceType types.SourceType `json:"source_type"`
	AuditRead
}

func (e *Source) Read() SourceRead {
	return SourceRead{ID: e.ID, Name: e.Name, SourceType: e.SourceType, AuditRead: e.Audit.read()}
}

// ClimateMeasure is a measured variable such as precipitation or maximum temperature.
type ClimateMeasure struct {
	bun.BaseModel `bun:"table:mng_climate_measure,alias:cm"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Name        string `bun:"name,notnull,type:varchar(150)" json:"name"`
	ShortName   string `bun:"short_name,notnull,type:varchar(75)" json:"short_name"`
	Unit        string `bun:"unit,notnull,type:varchar(50)" json:"unit"`
	Description string `bun:"description,type:text" json:"description"`
	Audit
}

type ClimateMeasureCreate struct {
	Name        string `json:"name" validate:"required,max=150"`
	ShortName   string `json:"short_name" validate:"required,max=75"`
	Unit        string `json:"unit" validate:"required,max=50"`
	Description string `json:"description"`
	Enable      *bool  `json:"enable,omitempty"`
}

func (c ClimateMeasureCreate) Entity() *ClimateMeasure {
	return &ClimateMeasure{
		Name:        c.Name,
		ShortName:   c.ShortName,
		Unit:        c.Unit,
		Description: c.Description,
		Audit:       newAudit(c.Enable),
	}
}

type ClimateMeasureUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=150"`
	ShortName   *string `json:"short_name,omitempty" validate:"omitempty,max=75"`
	Unit        *string `json:"unit,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty"`
	Enable      *bool   `json:"enable,omitempty"`
}

func (u ClimateMeasureUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "name", u.Name)
	set(p, "short_name", u.ShortName)
	set(p, "unit", u.Unit)
	set(p, "description", u.Description)
	set(p, columnEnable, u.Enable)
	return p
}

type ClimateMeasureRead struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	AuditRead
}

func (e *ClimateMeasure) Read() ClimateMeasureRead {
	return ClimateMeasureRead{
		ID: e.ID, Name: e.Name, ShortName: e.ShortName, Unit: e.Unit, Description: e.Description,
		AuditRead: e.Audit.read(),
	}
}

// IndicatorCategory groups indicators.
type IndicatorCategory struct {
	bun.BaseModel `bun:"table:mng_indicator_category,alias:ic"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Name        string `bun:"name,notnull,type:varchar(150)" json:"name"`
	Description string `bun:"description,type:text" json:"description"`
	Audit
}

type IndicatorCategoryCreate struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description"`
	Enable      *bool  `json:"enable,omitempty"`
}

func (c IndicatorCategoryCreate) Entity() *IndicatorCategory {
	return &IndicatorCategory{Name: c.Name, Description: c.Description, Audit: newAudit(c.Enable)}
}

type IndicatorCategoryUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=150"`
	Description *string `json:"description,omitempty"`
	Enable      *bool   `json:"enable,omitempty"`
}

func (u IndicatorCategoryUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "name", u.Name)
	set(p, "description", u.Description)
	set(p, columnEnable, u.Enable)
	return p
}

type IndicatorCategoryRead struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AuditRead
}

func (e *IndicatorCategory) Read() IndicatorCategoryRead {
	return IndicatorCategoryRead{ID: e.ID, Name: e.Name, Description: e.Description, AuditRead: e.Audit.read()}
}

// Indicator is a derived climatic or agroclimatic index.
type Indicator struct {
	bun.BaseModel `bun:"table:mng_indicators,alias:ind"`

	ID                  int64        `bun:"id,pk,autoincrement" json:"id"`
	IndicatorCategoryID int64        `bun:"indicator_category_id,notnull" json:"indicator_category_id"`
	Type                string       `bun:"type,notnull,type:varchar(50)" json:"type"`
	Name                string       `bun:"name,notnull,type:varchar(150)" json:"name"`
	ShortName           string       `bun:"short_name,notnull,type:varchar(50)" json:"short_name"`
	Unit                string       `bun:"unit,notnull,type:varchar(25)" json:"unit"`
	Temporality         types.Period `bun:"temporality,notnull,type:varchar(32)" json:"temporality"`
	Description         string       `bun:"description,type:text" json:"description"`
	Audit
}

type IndicatorCreate struct {
	IndicatorCategoryID int64        `json:"indicator_category_id" validate:"required,gt=0"`
	Type                string       `json:"type" validate:"required,max=50"`
	Name                string       `json:"name" validate:"required,max=150"`
	ShortName           string       `json:"short_name" validate:"required,max=50"`
	Unit                string       `json:"unit" validate:"required,max=25"`
	Temporality         types.Period `json:"temporality" validate:"required,enum"`
	Description         string       `json:"description"`
	Enable              *bool        `json:"enable,omitempty"`
}

func (c IndicatorCreate) Entity() *Indicator {
	return &Indicator{
		IndicatorCategoryID: c.IndicatorCategoryID,
		Type:                c.Type,
		Name:                c.Name,
		ShortName:           c.ShortName,
		Unit:                c.Unit,
		Temporality:         c.Temporality,
		Description:         c.Description,
		Audit:               newAudit(c.Enable),
	}
}

type IndicatorUpdate struct {
	IndicatorCategoryID *int64        `json:"indicator_category_id,omitempty" validate:"omitempty,gt=0"`
	Type                *string       `json:"type,omitempty" validate:"omitempty,max=50"`
	Name                *string       `json:"name,omitempty" validate:"omitempty,max=150"`
	ShortName           *string       `json:"short_name,omitempty" validate:"omitempty,max=50"`
	Unit                *string       `json:"unit,omitempty" validate:"omitempty,max=25"`
	Temporality         *types.Period `json:"temporality,omitempty" validate:"omitempty,enum"`
	Description         *string       `json:"description,omitempty"`
	Enable              *bool         `json:"enable,omitempty"`
}

func (u IndicatorUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "indicator_category_id", u.IndicatorCategoryID)
	set(p, "type", u.Type)
	set(p, "name", u.Name)
	set(p, "short_name", u.ShortName)
	set(p, "unit", u.Unit)
	set(p, "temporality", u.Temporality)
	set(p, "description", u.Description)
	set(p, columnEnable, u.Enable)
	return p
}

type IndicatorRead struct {
	ID                  int64        `json:"id"`
	IndicatorCategoryID int64        `json:"indicator_category_id"`
	Type                string       `json:"type"`
	Name                string       `json:"name"`
	ShortName           string       `json:"short_name"`
	Unit                string       `json:"unit"`
	Temporality         types.Period `json:"temporality"`
	Description         string       `json:"description"`
	AuditRead
}

func (e *Indicator) Read() IndicatorRead {
	return IndicatorRead{
		ID:                  e.ID,
		IndicatorCategoryID: e.IndicatorCategoryID,
		Type:                e.Type,
		Name:                e.Name,
		ShortName:           e.ShortName,
		Unit:                e.Unit,
		Temporality:         e.Temporality,
		Description:         e.Description,
		AuditRead:           e.Audit.read(),
	}
}

// CountryIndicator enables an indicator for a country and records how it is published.
type CountryIndicator struct {
	bun.BaseModel `bun:"table:mng_country_indicator,alias:ci"`

	ID               int64            `bun:"id,pk,autoincrement" json:"id"`
	CountryID        int64            `bun:"country_id,notnull,unique:country_indicator" json:"country_id"`
	IndicatorID      int64            `bun:"indicator_id,notnull,unique:country_indicator" json:"indicator_id"`
	SpatialForecast  bool             `bun:"spatial_forecast,notnull,default:false" json:"spatial_forecast"`
	SpatialClimate   bool             `bun:"spatial_climate,notnull,default:false" json:"spatial_climate"`
	LocationForecast bool             `bun:"location_forecast,notnull,default:false" json:"location_forecast"`
	LocationClimate  bool             `bun:"location_climate,notnull,default:false" json:"location_climate"`
	Criteria         types.JsonObject `bun:"criteria,type:json" json:"criteria,omitempty"`
}

func (*CountryIndicator) HierarchyAnchor() hierarchy.Anchor {
	return hierarchy.Via(hierarchy.Country, "country_id")
}

type CountryIndicatorCreate struct {
	CountryID        int64            `json:"country_id" validate:"required,gt=0"`
	IndicatorID      int64            `json:"indicator_id" validate:"required,gt=0"`
	SpatialForecast  bool             `json:"spatial_forecast"`
	SpatialClimate   bool             `json:"spatial_climate"`
	LocationForecast bool             `json:"location_forecast"`
	LocationClimate  bool             `json:"location_climate"`
	Criteria         types.JsonObject `json:"criteria,omitempty"`
}

func (c CountryIndicatorCreate) Entity() *CountryIndicator {
	return &CountryIndicator{
		CountryID:        c.CountryID,
		IndicatorID:      c.IndicatorID,
		SpatialForecast:  c.SpatialForecast,
		SpatialClimate:   c.SpatialClimate,
		LocationForecast: c.LocationForecast,
		LocationClimate:  c.LocationClimate,
		Criteria:         c.Criteria,
	}
}

type CountryIndicatorUpdate struct {
	SpatialForecast  *bool             `json:"spatial_forecast,omitempty"`
	SpatialClimate   *bool             `json:"spatial_climate,omitempty"`
	LocationForecast *bool             `json:"location_forecast,omitempty"`
	LocationClimate  *bool             `json:"location_climate,omitempty"`
	Criteria         *types.JsonObject `json:"criteria,omitempty"`
}

func (u CountryIndicatorUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "spatial_forecast", u.SpatialForecast)
	set(p, "spatial_climate", u.SpatialClimate)
	set(p, "location_forecast", u.LocationForecast)
	set(p, "location_climate", u.LocationClimate)
	set(p, "criteria", u.Criteria)
	return p
}

type CountryIndicatorRead struct {
	ID               int64            `json:"id"`
	CountryID        int64            `json:"country_id"`
	IndicatorID      int64            `json:"indicator_id"`
	SpatialForecast  bool             `json:"spatial_forecast"`
	SpatialClimate   bool             `json:"spatial_climate"`
	LocationForecast bool             `json:"location_forecast"`
	LocationClimate  bool             `json:"location_climate"`
	Criteria         types.JsonObject `json:"criteria,omitempty"`
}

func (e *CountryIndicator) Read() CountryIndicatorRead {
	return CountryIndicatorRead{
		ID:               e.ID,
		CountryID:        e.CountryID,
		IndicatorID:      e.IndicatorID,
		SpatialForecast:  e.SpatialForecast,
		SpatialClimate:   e.SpatialClimate,
		LocationForecast: e.LocationForecast,
		LocationClimate:  e.LocationClimate,
		Criteria:         e.Criteria,
	}
}

// Crop is a cultivated species.
type Crop struct {
	bun.BaseModel `bun:"table:mng_crop,alias:cr"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,type:varchar(255)" json:"name"`
	Audit
}

type CropCreate struct {
	Name   string `json:"name" validate:"required,max=255"`
	Enable *bool  `json:"enable,omitempty"`
}

func (c CropCreate) Entity() *Crop { return &Crop{Name: c.Name, Audit: newAudit(c.Enable)} }

type CropUpdate struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Enable *bool   `json:"enable,omitempty"`
}

func (u CropUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "name", u.Name)
	set(p, columnEnable, u.Enable)
	return p
}

type CropRead struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	AuditRead
}

func (e *Crop) Read() CropRead { return CropRead{ID: e.ID, Name: e.Name, AuditRead: e.Audit.read()} }

// Cultivar is a crop variety registered for a country.
type Cultivar struct {
	bun.BaseModel `bun:"table:mng_cultivar,alias:cv"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	CountryID int64  `bun:"country_id,notnull" json:"country_id"`
	CropID    int64  `bun:"crop_id,notnull" json:"crop_id"`
	Name      string `bun:"name,notnull,type:varchar(255)" json:"name"`
	SortOrder int    `bun:"sort_order,notnull" json:"sort_order"`
	Rainfed   bool   `bun:"rainfed,notnull,default:false" json:"rainfed"`
	Audit
}

func (*Cultivar) HierarchyAnchor() hierarchy.Anchor { return hierarchy.Via(hierarchy.Country, "country_id") }

type CultivarCreate struct {
	CountryID int64  `json:"country_id" validate:"required,gt=0"`
	CropID    int64  `json:"crop_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=255"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
	Rainfed   bool   `json:"rainfed"`
	Enable    *bool  `json:"enable,omitempty"`
}

func (c CultivarCreate) Entity() *Cultivar {
	return &Cultivar{
		CountryID: c.CountryID,
		CropID:    c.CropID,
		Name:      c.Name,
		SortOrder: c.SortOrder,
		Rainfed:   c.Rainfed,
		Audit:     newAudit(c.Enable),
	}
}

type CultivarUpdate struct {
	CountryID *int64  `json:"country_id,omitempty" validate:"omitempty,gt=0"`
	CropID    *int64  `json:"crop_id,omitempty" validate:"omitempty,gt=0"`
	Name      *string `json:"name,omitempty" validate:"omitempty,max=255"`
	SortOrder *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
	Rainfed   *bool   `json:"rainfed,omitempty"`
	Enable    *bool   `json:"enable,omitempty"`
}

func (u CultivarUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "country_id", u.CountryID)
	set(p, "crop_id", u.CropID)
	set(p, "name", u.Name)
	set(p, "sort_order", u.SortOrder)
	set(p, "rainfed", u.Rainfed)
	set(p, columnEnable, u.Enable)
	return p
}

type CultivarRead struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	CropID    int64  `json:"crop_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	Rainfed   bool   `json:"rainfed"`
	AuditRead
}

func (e *Cultivar) Read() CultivarRead {
	return CultivarRead{
		ID: e.ID, CountryID: e.CountryID, CropID: e.CropID, Name: e.Name,
		SortOrder: e.SortOrder, Rainfed: e.Rainfed, AuditRead: e.Audit.read(),
	}
}

// Soil is a soil profile registered for a crop in a country.
type Soil struct {
	bun.BaseModel `bun:"table:mng_soil,alias:so"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	CountryID int64  `bun:"country_id,notnull" json:"country_id"`
	CropID    int64  `bun:"crop_id,notnull" json:"crop_id"`
	Name      string `bun:"name,notnull,type:varchar(255)" json:"name"`
	SortOrder int    `bun:"sort_order,notnull" json:"sort_order"`
	Audit
}

func (*Soil) HierarchyAnchor() hierarchy.Anchor { return hierarchy.Via(hierarchy.Country, "country_id") }

type SoilCreate struct {
	CountryID int64  `json:"country_id" validate:"required,gt=0"`
	CropID    int64  `json:"crop_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=255"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
	Enable    *bool  `json:"enable,omitempty"`
}

func (c SoilCreate) Entity() *Soil {
	return &Soil{CountryID: c.CountryID, CropID: c.CropID, Name: c.Name, SortOrder: c.SortOrder, Audit: newAudit(c.Enable)}
}

type SoilUpdate struct {
	CountryID *int64  `json:"country_id,omitempty" validate:"omitempty,gt=0"`
	CropID    *int64  `json:"crop_id,omitempty" validate:"omitempty,gt=0"`
	Name      *string `json:"name,omitempty" validate:"omitempty,max=255"`
	SortOrder *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
	Enable    *bool   `json:"enable,omitempty"`
}

func (u SoilUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "country_id", u.CountryID)
	set(p, "crop_id", u.CropID)
	set(p, "name", u.Name)
	set(p, "sort_order", u.SortOrder)
	set(p, columnEnable, u.Enable)
	return p
}

type SoilRead struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	CropID    int64  `json:"crop_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	AuditRead
}

func (e *Soil) Read() SoilRead {
	return SoilRead{
		ID: e.ID, CountryID: e.CountryID, CropID: e.CropID, Name: e.Name,
		SortOrder: e.SortOrder, AuditRead: e.Audit.read(),
	}
}
