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
	"strings"

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate"
	"github.com/tomoncle/aclimate/database"
	"github.com/tomoncle/aclimate/hierarchy"
	"github.com/tomoncle/aclimate/models"
	"github.com/tomoncle/aclimate/validation"
)

type (
	countryBase  = aclimate.BaseService[models.Country, models.CountryCreate, models.CountryRead, models.CountryUpdate]
	admin1Base   = aclimate.BaseService[models.Admin1, models.Admin1Create, models.Admin1Read, models.Admin1Update]
	admin2Base   = aclimate.BaseService[models.Admin2, models.Admin2Create, models.Admin2Read, models.Admin2Update]
	locationBase = aclimate.BaseService[models.Location, models.LocationCreate, models.LocationRead, models.LocationUpdate]
)

// CountryService manages mng_country.
type CountryService struct {
	*countryBase
}

func NewCountryService(sessions *database.SessionManager) *CountryService {
	rules := validation.Rules[models.CountryCreate]{
		Create: func(ctx context.Context, db bun.IDB, c models.CountryCreate) error {
			iso2 := strings.ToUpper(c.ISO2)
			return validation.All("country",
				validation.Required("name", c.Name),
				validation.Letters("iso2", c.ISO2, 2),
				validation.Unique[models.Country](ctx, db, "iso2",
					fmt.Sprintf("a country with ISO2 code %q already exists", iso2), validation.In("iso2", iso2)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
			return validation.All("country",
				uniqueOnUpdate[models.Country](ctx, db, id, fields, "iso2",
					fmt.Sprintf("a country with ISO2 code %q already exists", text(fields, "iso2"))),
			)
		},
	}
	return &CountryService{aclimate.NewService[models.Country, models.CountryCreate, models.CountryRead, models.CountryUpdate](
		sessions, (*models.Country).Read,
		aclimate.WithValidator[models.Country, models.CountryCreate](rules),
	)}
}

func (s *CountryService) GetByName(ctx context.Context, name string, enable bool) ([]models.CountryRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

// GetByISO2 returns the country with the two letter code, matched case-insensitively.
func (s *CountryService) GetByISO2(ctx context.Context, iso2 string, enable bool) (*models.CountryRead, error) {
	return s.FindFirst(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.iso2 = ?", strings.ToUpper(iso2)).Where("?TableAlias.enable = ?", enable)
	})
}

func (s *CountryService) GetAllEnabled(ctx context.Context, enable bool) ([]models.CountryRead, error) {
	return s.GetAll(ctx, enabled(enable))
}

// Admin1Service manages mng_admin_1.
type Admin1Service struct {
	*admin1Base
}

func NewAdmin1Service(sessions *database.SessionManager) *Admin1Service {
	rules := validation.Rules[models.Admin1Create]{
		Create: func(ctx context.Context, db bun.IDB, c models.Admin1Create) error {
			return validation.All("admin_1",
				validation.Required("name", c.Name),
				validation.Exists[models.Country](ctx, db, "country_id", c.CountryID),
				validation.Unique[models.Admin1](ctx, db, "name",
					fmt.Sprintf("an admin 1 named %q already exists in this country", c.Name),
					validation.In("name", c.Name, "country_id", c.CountryID)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, _ int64, fields map[string]any) error {
			return validation.All("admin_1", patchExists[models.Country](ctx, db, fields, "country_id"))
		},
	}
	return &Admin1Service{aclimate.NewService[models.Admin1, models.Admin1Create, models.Admin1Read, models.Admin1Update](
		sessions, (*models.Admin1).Read,
		aclimate.WithValidator[models.Admin1, models.Admin1Create](rules),
	)}
}

func (s *Admin1Service) GetByCountryID(ctx context.Context, countryID int64, enable bool) ([]models.Admin1Read, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Country, countryID), enabled(enable))
}

func (s *Admin1Service) GetByCountryName(ctx context.Context, country string, enable bool) ([]models.Admin1Read, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Country, country), enabled(enable))
}

func (s *Admin1Service) GetByName(ctx context.Context, name string, enable bool) ([]models.Admin1Read, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

// Admin2Service manages mng_admin_2.
type Admin2Service struct {
	*admin2Base
}

func NewAdmin2Service(sessions *database.SessionManager) *Admin2Service {
	rules := validation.Rules[models.Admin2Create]{
		Create: func(ctx context.Context, db bun.IDB, c models.Admin2Create) error {
			return validation.All("admin_2",
				validation.Required("name", c.Name),
				validation.Exists[models.Admin1](ctx, db, "admin_1_id", c.Admin1ID),
				validation.Unique[models.Admin2](ctx, db, "name",
					fmt.Sprintf("an admin 2 named %q already exists in this admin 1", c.Name),
					validation.In("name", c.Name, "admin_1_id", c.Admin1ID)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, _ int64, fields map[string]any) error {
			return validation.All("admin_2", patchExists[models.Admin1](ctx, db, fields, "admin_1_id"))
		},
	}
	return &Admin2Service{aclimate.NewService[models.Admin2, models.Admin2Create, models.Admin2Read, models.Admin2Update](
		sessions, (*models.Admin2).Read,
		aclimate.WithValidator[models.Admin2, models.Admin2Create](rules),
	)}
}

func (s *Admin2Service) GetByAdmin1ID(ctx context.Context, admin1ID int64, enable bool) ([]models.Admin2Read, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Admin1, admin1ID), enabled(enable))
}

func (s *Admin2Service) GetByAdmin1Name(ctx context.Context, admin1 string, enable bool) ([]models.Admin2Read, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Admin1, admin1), enabled(enable))
}

func (s *Admin2Service) GetByCountryID(ctx context.Context, countryID int64, enable bool) ([]models.Admin2Read, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Country, countryID), enabled(enable))
}

func (s *Admin2Service) GetByCountryName(ctx context.Context, country string, enable bool) ([]models.Admin2Read, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Country, country), enabled(enable))
}

func (s *Admin2Service) GetByName(ctx context.Context, name string, enable bool) ([]models.Admin2Read, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

func (s *Admin2Service) GetByVisible(ctx context.Context, visible bool, enable bool) ([]models.Admin2Read, error) {
	return s.GetAll(ctx, enabled(enable).With("visible", visible))
}

// LocationService manages mng_location.
type LocationService struct {
	*locationBase
}

func NewLocationService(sessions *database.SessionManager) *LocationService {
	rules := validation.Rules[models.LocationCreate]{
		Create: func(ctx context.Context, db bun.IDB, c models.LocationCreate) error {
			checks := []error{
				validation.Required("name", c.Name),
				validation.Slug("machine_name", c.MachineName),
				validation.Unique[models.Location](ctx, db, "machine_name",
					fmt.Sprintf("a location with machine name %q already exists", c.MachineName),
					validation.In("machine_name", c.MachineName)),
				validation.Exists[models.Admin2](ctx, db, "admin_2_id", c.Admin2ID),
				validation.Unique[models.Location](ctx, db, "name",
					fmt.Sprintf("a location named %q already exists in this admin 2", c.Name),
					validation.In("name", c.Name, "admin_2_id", c.Admin2ID)),
			}
			if c.SourceID != nil {
				checks = append(checks, validation.Exists[models.Source](ctx, db, "source_id", *c.SourceID))
			}
			if c.Latitude != nil {
				checks = append(checks, validation.Range("latitude", *c.Latitude, -90, 90))
			}
			if c.Longitude != nil {
				checks = append(checks, validation.Range("longitude", *c.Longitude, -180, 180))
			}
			return validation.All("location", checks...)
		},
		Update: func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
			checks := []error{
				patchExists[models.Admin2](ctx, db, fields, "admin_2_id"),
				patchExists[models.Source](ctx, db, fields, "source_id"),
				patchRange(fields, "latitude", -90, 90),
				patchRange(fields, "longitude", -180, 180),
			}
			v, ok, err := validation.String("machine_name", fields["machine_name"])
			if err != nil {
				checks = append(checks, err)
			} else if ok {
				checks = append(checks,
					validation.Slug("machine_name", v),
					uniqueOnUpdate[models.Location](ctx, db, id, fields, "machine_name",
						fmt.Sprintf("a location with machine name %q already exists", v)),
				)
			}
			return validation.All("location", checks...)
		},
	}
	return &LocationService{aclimate.NewService[models.Location, models.LocationCreate, models.LocationRead, models.LocationUpdate](
		sessions, (*models.Location).Read,
		aclimate.WithValidator[models.Location, models.LocationCreate](rules),
	)}
}

func (s *LocationService) GetByAdmin2ID(ctx context.Context, admin2ID int64, enable bool) ([]models.LocationRead, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Admin2, admin2ID), enabled(enable))
}

func (s *LocationService) GetByAdmin2Name(ctx context.Context, admin2 string, enable bool) ([]models.LocationRead, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Admin2, admin2), enabled(enable))
}

func (s *LocationService) GetByAdmin1ID(ctx context.Context, admin1ID int64, enable bool) ([]models.LocationRead, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Admin1, admin1ID), enabled(enable))
}

func (s *LocationService) GetByAdmin1Name(ctx context.Context, admin1 string, enable bool) ([]models.LocationRead, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Admin1, admin1), enabled(enable))
}

func (s *LocationService) GetByCountryID(ctx context.Context, countryID int64, enable bool) ([]models.LocationRead, error) {
	return s.FindByAncestor(ctx, byID(hierarchy.Country, countryID), enabled(enable))
}

func (s *LocationService) GetByCountryName(ctx context.Context, country string, enable bool) ([]models.LocationRead, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Country, country), enabled(enable))
}

func (s *LocationService) GetByName(ctx context.Context, name string, enable bool) ([]models.LocationRead, error) {
	return s.GetAll(ctx, enabled(enable).With("name", name))
}

// GetByMachineName returns the location with the given slug. Machine names
// are globally unique.
func (s *LocationService) GetByMachineName(ctx context.Context, machineName string, enable bool) (*models.LocationRead, error) {
	return s.FindFirst(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.machine_name = ?", machineName).Where("?TableAlias.enable = ?", enable)
	})
}

func (s *LocationService) GetByExtID(ctx context.Context, extID string, enable bool) ([]models.LocationRead, error) {
	return s.GetAll(ctx, enabled(enable).With("ext_id", extID))
}

func (s *LocationService) GetByVisible(ctx context.Context, visible bool, enable bool) ([]models.LocationRead, error) {
	return s.GetAll(ctx, enabled(enable).With("visible", visible))
}
