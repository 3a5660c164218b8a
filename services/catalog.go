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

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate"
	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/models"
	"github.com/tomoncle/aclimate/types"
	"github.com/tomoncle/aclimate/validation"
)

type (
	sourceBase           = aclimate.BaseService[models.Source, models.SourceCreate, models.SourceRead, models.SourceUpdate]
	measureBase          = aclimate.BaseService[models.ClimateMeasure, models.ClimateMeasureCreate, models.ClimateMeasureRead, models.ClimateMeasureUpdate]
	categoryBase         = aclimate.BaseService[models.IndicatorCategory, models.IndicatorCategoryCreate, models.IndicatorCategoryRead, models.IndicatorCategoryUpdate]
	indicatorBase        = aclimate.BaseService[models.Indicator, models.IndicatorCreate, models.IndicatorRead, models.IndicatorUpdate]
	countryIndicatorBase = aclimate.BaseService[models.CountryIndicator, models.CountryIndicatorCreate, models.CountryIndicatorRead, models.CountryIndicatorUpdate]
	cropBase             = aclimate.BaseService[models.Crop, models.CropCreate, models.CropRead, models.CropUpdate]
	cultivarBase         = aclimate.BaseService[models.Cultivar, models.CultivarCreate, models.CultivarRead, models.CultivarUpdate]
	soilBase             = aclimate.BaseService[models.Soil, models.SoilCreate, models.SoilRead, models.SoilUpdate]
)

// SourceService manages mng_source.
type SourceService struct {
	*sourceBase
}

func NewSourceService(sessions *database.SessionManager) *SourceService {
	validate := validation.CreateFunc[models.SourceCreate](func(ctx context.Context, db bun.IDB, c models.SourceCreate) error {
		return validation.All("source",
			validation.Required("name", c.Name),
			validation.OneOf("source_type", c.SourceType),
			validation.Unique[models.Source](ctx, db, "name",
				fmt.Sprintf("a %s source named %q already exists", c.SourceType, c.Name),
				validation.In("name", c.Name, "source_type", c.SourceType)),
		)
	})
	return &SourceService{aclimate.NewService[models.Source, models.SourceCreate, models.SourceRead, models.SourceUpdate](
		sessions, (*models.Source).Read,
		aclimate.WithValidator[models.Source, models.SourceCreate](validate),
	)}
}

func (s *SourceService) GetByType(ctx context.Context, sourceType types.SourceType, enable bool) ([]models.SourceRead, error) {
	return s.GetAll(ctx, enabled(enable).With("source_type", sourceType))
}

func (s *SourceService) GetByName(ctx context.Context, name string, enable bool) ([]models.SourceRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

// SearchByName matches sources whose name contains term, ignoring case.
func (s *SourceService) SearchByName(ctx context.Context, term string, enable bool) ([]models.SourceRead, error) {
	return s.Find(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("LOWER(?TableAlias.name) LIKE LOWER(?)", "%"+term+"%").Where("?TableAlias.enable = ?", enable)
	})
}

// ClimateMeasureService manages mng_climate_measure.
type ClimateMeasureService struct {
	*measureBase
}

func NewClimateMeasureService(sessions *database.SessionManager) *ClimateMeasureService {
	rules := validation.Rules[models.ClimateMeasureCreate]{
		Create: func(ctx context.Context, db bun.IDB, c models.ClimateMeasureCreate) error {
			return validation.All("climate_measure",
				validation.Required("name", c.Name),
				validation.Required("short_name", c.ShortName),
				validation.Required("unit", c.Unit),
				validation.Unique[models.ClimateMeasure](ctx, db, "name",
					fmt.Sprintf("a climate measure named %q already exists", c.Name), validation.In("name", c.Name)),
				validation.Unique[models.ClimateMeasure](ctx, db, "short_name",
					fmt.Sprintf("a climate measure with short name %q already exists", c.ShortName), validation.In("short_name", c.ShortName)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
			return validation.All("climate_measure",
				uniqueOnUpdate[models.ClimateMeasure](ctx, db, id, fields, "name",
					fmt.Sprintf("a climate measure named %q already exists", text(fields, "name"))),
				uniqueOnUpdate[models.ClimateMeasure](ctx, db, id, fields, "short_name",
					fmt.Sprintf("a climate measure with short name %q already exists", text(fields, "short_name"))),
			)
		},
	}
	return &ClimateMeasureService{aclimate.NewService[models.ClimateMeasure, models.ClimateMeasureCreate, models.ClimateMeasureRead, models.ClimateMeasureUpdate](
		sessions, (*models.ClimateMeasure).Read,
		aclimate.WithValidator[models.ClimateMeasure, models.ClimateMeasureCreate](rules),
	)}
}

func (s *ClimateMeasureService) GetByName(ctx context.Context, name string, enable bool) ([]models.ClimateMeasureRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

func (s *ClimateMeasureService) GetByShortName(ctx context.Context, shortName string, enable bool) ([]models.ClimateMeasureRead, error) {
	return s.GetAll(ctx, enabled(enable).With("short_name", shortName))
}

// IndicatorCategoryService manages mng_indicator_category.
type IndicatorCategoryService struct {
	*categoryBase
}

func NewIndicatorCategoryService(sessions *database.SessionManager) *IndicatorCategoryService {
	rules := validation.Rules[models.IndicatorCategoryCreate]{
		Create: func(ctx context.Context, db bun.IDB, c models.IndicatorCategoryCreate) error {
			return validation.All("indicator_category",
				validation.Required("name", c.Name),
				validation.Unique[models.IndicatorCategory](ctx, db, "name",
					fmt.Sprintf("an indicator category named %q already exists", c.Name), validation.In("name", c.Name)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
			return validation.All("indicator_category",
				uniqueOnUpdate[models.IndicatorCategory](ctx, db, id, fields, "name",
					fmt.Sprintf("an indicator category named %q already exists", text(fields, "name"))),
			)
		},
	}
	return &IndicatorCategoryService{aclimate.NewService[models.IndicatorCategory, models.IndicatorCategoryCreate, models.IndicatorCategoryRead, models.IndicatorCategoryUpdate](
		sessions, (*models.IndicatorCategory).Read,
		aclimate.WithValidator[models.IndicatorCategory, models.IndicatorCategoryCreate](rules),
	)}
}

func (s *IndicatorCategoryService) GetByName(ctx context.Context, name string, enable bool) ([]models.IndicatorCategoryRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

// IndicatorService manages mng_indicators.
type IndicatorService struct {
	*indicatorBase
}

func NewIndicatorService(sessions *database.SessionManager) *IndicatorService {
	rules := validation.Rules[models.IndicatorCreate]{
		Create: func(ctx context.Context, db bun.IDB, c models.IndicatorCreate) error {
			return validation.All("indicator",
				validation.Required("name", c.Name),
				validation.Required("short_name", c.ShortName),
				validation.OneOf("temporality", c.Temporality),
				validation.Exists[models.IndicatorCategory](ctx, db, "indicator_category_id", c.IndicatorCategoryID),
				validation.Unique[models.Indicator](ctx, db, "name",
					fmt.Sprintf("an indicator named %q already exists", c.Name), validation.In("name", c.Name)),
				validation.Unique[models.Indicator](ctx, db, "short_name",
					fmt.Sprintf("an indicator with short name %q already exists", c.ShortName), validation.In("short_name", c.ShortName)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
			checks := []error{
				uniqueOnUpdate[models.Indicator](ctx, db, id, fields, "name",
					fmt.Sprintf("an indicator named %q already exists", text(fields, "name"))),
				uniqueOnUpdate[models.Indicator](ctx, db, id, fields, "short_name",
					fmt.Sprintf("an indicator with short name %q already exists", text(fields, "short_name"))),
				patchExists[models.IndicatorCategory](ctx, db, fields, "indicator_category_id"),
			}
			return validation.All("indicator", checks...)
		},
	}
	return &IndicatorService{aclimate.NewService[models.Indicator, models.IndicatorCreate, models.IndicatorRead, models.IndicatorUpdate](
		sessions, (*models.Indicator).Read,
		aclimate.WithValidator[models.Indicator, models.IndicatorCreate](rules),
	)}
}

func (s *IndicatorService) GetByName(ctx context.Context, name string, enable bool) ([]models.IndicatorRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

func (s *IndicatorService) GetByShortName(ctx context.Context, shortName string, enable bool) ([]models.IndicatorRead, error) {
	return s.GetAll(ctx, enabled(enable).With("short_name", shortName))
}

func (s *IndicatorService) GetByType(ctx context.Context, indicatorType string, enable bool) ([]models.IndicatorRead, error) {
	return s.GetAll(ctx, enabled(enable).With("type", indicatorType))
}

func (s *IndicatorService) GetByTemporality(ctx context.Context, temporality types.Period, enable bool) ([]models.IndicatorRead, error) {
	return s.GetAll(ctx, enabled(enable).With("temporality", temporality))
}

func (s *IndicatorService) GetByCategoryID(ctx context.Context, categoryID int64, enable bool) ([]models.IndicatorRead, error) {
	return s.GetAll(ctx, enabled(enable).With("indicator_category_id", categoryID))
}

func (s *IndicatorService) GetByCategoryName(ctx context.Context, category string, enable bool) ([]models.IndicatorRead, error) {
	return s.Find(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return joinName("mng_indicator_category", "h_category", "indicator_category_id", category)(q).
			Where("?TableAlias.enable = ?", enable)
	})
}

// CountryIndicatorService manages mng_country_indicator.
type CountryIndicatorService struct {
	*countryIndicatorBase
}

func NewCountryIndicatorService(sessions *database.SessionManager) *CountryIndicatorService {
	validate := validation.CreateFunc[models.CountryIndicatorCreate](func(ctx context.Context, db bun.IDB, c models.CountryIndicatorCreate) error {
		return validation.All("country_indicator",
			validation.Exists[models.Country](ctx, db, "country_id", c.CountryID),
			validation.Exists[models.Indicator](ctx, db, "indicator_id", c.IndicatorID),
			validation.Unique[models.CountryIndicator](ctx, db, "indicator_id",
				fmt.Sprintf("indicator %d is already configured for country %d", c.IndicatorID, c.CountryID),
				validation.In("country_id", c.CountryID, "indicator_id", c.IndicatorID)),
		)
	})
	return &CountryIndicatorService{aclimate.NewService[models.CountryIndicator, models.CountryIndicatorCreate, models.CountryIndicatorRead, models.CountryIndicatorUpdate](
		sessions, (*models.CountryIndicator).Read,
		aclimate.WithValidator[models.CountryIndicator, models.CountryIndicatorCreate](validate),
	)}
}

func (s *CountryIndicatorService) GetByCountry(ctx context.Context, countryID int64) ([]models.CountryIndicatorRead, error) {
	return s.GetAll(ctx, types.Filters{"country_id": countryID})
}

func (s *CountryIndicatorService) GetByCountryName(ctx context.Context, country string) ([]models.CountryIndicatorRead, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Country, country), nil)
}

func (s *CountryIndicatorService) GetByIndicator(ctx context.Context, indicatorID int64) ([]models.CountryIndicatorRead, error) {
	return s.GetAll(ctx, types.Filters{"indicator_id": indicatorID})
}

func (s *CountryIndicatorService) GetByCountryAndIndicator(ctx context.Context, countryID, indicatorID int64) (*models.CountryIndicatorRead, error) {
	return s.FindFirst(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.country_id = ?", countryID).Where("?TableAlias.indicator_id = ?", indicatorID)
	})
}

// CropService manages mng_crop.
type CropService struct {
	*cropBase
}

func NewCropService(sessions *database.SessionManager) *CropService {
	rules := validation.Rules[models.CropCreate]{
		Create: func(ctx context.Context, db bun.IDB, c models.CropCreate) error {
			return validation.All("crop",
				validation.Required("name", c.Name),
				validation.Unique[models.Crop](ctx, db, "name",
					fmt.Sprintf("a crop named %q already exists", c.Name), validation.In("name", c.Name)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
			return validation.All("crop",
				uniqueOnUpdate[models.Crop](ctx, db, id, fields, "name",
					fmt.Sprintf("a crop named %q already exists", text(fields, "name"))),
			)
		},
	}
	return &CropService{aclimate.NewService[models.Crop, models.CropCreate, models.CropRead, models.CropUpdate](
		sessions, (*models.Crop).Read,
		aclimate.WithValidator[models.Crop, models.CropCreate](rules),
	)}
}

func (s *CropService) GetByName(ctx context.Context, name string, enable bool) ([]models.CropRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

// CultivarService manages mng_cultivar.
type CultivarService struct {
	*cultivarBase
}

func NewCultivarService(sessions *database.SessionManager) *CultivarService {
	validate := validation.CreateFunc[models.CultivarCreate](func(ctx context.Context, db bun.IDB, c models.CultivarCreate) error {
		return validation.All("cultivar",
			validation.Required("name", c.Name),
			validation.Exists[models.Country](ctx, db, "country_id", c.CountryID),
			validation.Exists[models.Crop](ctx, db, "crop_id", c.CropID),
			validation.Unique[models.Cultivar](ctx, db, "name",
				fmt.Sprintf("a cultivar named %q already exists for this crop and country", c.Name),
				validation.In("name", c.Name, "crop_id", c.CropID, "country_id", c.CountryID)),
		)
	})
	return &CultivarService{aclimate.NewService[models.Cultivar, models.CultivarCreate, models.CultivarRead, models.CultivarUpdate](
		sessions, (*models.Cultivar).Read,
		aclimate.WithValidator[models.Cultivar, models.CultivarCreate](validate),
	)}
}

func (s *CultivarService) GetByCrop(ctx context.Context, cropID int64, enable bool) ([]models.CultivarRead, error) {
	return s.GetAll(ctx, enabled(enable).With("crop_id", cropID))
}

func (s *CultivarService) GetByCountry(ctx context.Context, countryID int64, enable bool) ([]models.CultivarRead, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Country, countryID), enabled(enable))
}

func (s *CultivarService) GetByCountryName(ctx context.Context, country string, enable bool) ([]models.CultivarRead, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Country, country), enabled(enable))
}

// SoilService manages mng_soil.
type SoilService struct {
	*soilBase
}

func NewSoilService(sessions *database.SessionManager) *SoilService {
	validate := validation.CreateFunc[models.SoilCreate](func(ctx context.Context, db bun.IDB, c models.SoilCreate) error {
		return validation.All("soil",
			validation.Required("name", c.Name),
			validation.Exists[models.Country](ctx, db, "country_id", c.CountryID),
			validation.Exists[models.Crop](ctx, db, "crop_id", c.CropID),
			validation.Unique[models.Soil](ctx, db, "name",
				fmt.Sprintf("a soil named %q already exists in this country", c.Name),
				validation.In("name", c.Name, "country_id", c.CountryID)),
		)
	})
	return &SoilService{aclimate.NewService[models.Soil, models.SoilCreate, models.SoilRead, models.SoilUpdate](
		sessions, (*models.Soil).Read,
		aclimate.WithValidator[models.Soil, models.SoilCreate](validate),
	)}
}

func (s *SoilService) GetByCountry(ctx context.Context, countryID int64, enable bool) ([]models.SoilRead, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Country, countryID), enabled(enable))
}

func (s *SoilService) GetByCrop(ctx context.Context, cropID int64, enable bool) ([]models.SoilRead, error) {
	return s.GetAll(ctx, enabled(enable).With("crop_id", cropID))
}

func (s *SoilService) GetByName(ctx context.Context, name string, enable bool) ([]models.SoilRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}
