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

// Package services composes the generic CRUD service into one service per
// entity, each with its validation rules and lookup queries.
package services

import (
	"github.com/tomoncle/aclimate/database"
)

// Registry holds every entity service, all bound to one session manager.
type Registry struct {
	Countries           *CountryService
	Admin1              *Admin1Service
	Admin2              *Admin2Service
	Locations           *LocationService
	Sources             *SourceService
	ClimateMeasures     *ClimateMeasureService
	Daily               *DailyService
	Monthly             *MonthlyService
	Climatology         *ClimatologyService
	IndicatorCategories *IndicatorCategoryService
	Indicators          *IndicatorService
	IndicatorRecords    *IndicatorRecordService
	CountryIndicators   *CountryIndicatorService
	Crops               *CropService
	Cultivars           *CultivarService
	Soils               *SoilService
	Roles               *RoleService
	Users               *UserService
	UserAccess          *UserAccessService
}

// Option configures the services built by New.
type Option func(*config)

type config struct {
	now Clock
}

// WithClock sets the clock daily observations are checked against.
func WithClock(now Clock) Option {
	return func(c *config) { c.now = now }
}

// New builds every entity service against sessions.
func New(sessions *database.SessionManager, opts ...Option) *Registry {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return &Registry{
		Countries:           NewCountryService(sessions),
		Admin1:              NewAdmin1Service(sessions),
		Admin2:              NewAdmin2Service(sessions),
		Locations:           NewLocationService(sessions),
		Sources:             NewSourceService(sessions),
		ClimateMeasures:     NewClimateMeasureService(sessions),
		Daily:               NewDailyService(sessions, c.now),
		Monthly:             NewMonthlyService(sessions),
		Climatology:         NewClimatologyService(sessions),
		IndicatorCategories: NewIndicatorCategoryService(sessions),
		Indicators:          NewIndicatorService(sessions),
		IndicatorRecords:    NewIndicatorRecordService(sessions),
		CountryIndicators:   NewCountryIndicatorService(sessions),
		Crops:               NewCropService(sessions),
		Cultivars:           NewCultivarService(sessions),
		Soils:               NewSoilService(sessions),
		Roles:               NewRoleService(sessions),
		Users:               NewUserService(sessions),
		UserAccess:          NewUserAccessService(sessions),
	}
}
