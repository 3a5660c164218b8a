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

package types

import (
	"fmt"
	"strings"
)

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// enumSet is the closed value set behind a string enum.
type enumSet struct {
	values []string
	descs  map[string]string
}

func newEnumSet(pairs ...string) enumSet {
	s := enumSet{descs: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.values = append(s.values, pairs[i])
		s.descs[pairs[i]] = pairs[i+1]
	}
	return s
}

func (s enumSet) index(v string) int {
	for i, value := range s.values {
		if value == v {
			return i
		}
	}
	return IllegalValue
}

func (s enumSet) desc(v string) string {
	if d, ok := s.descs[v]; ok {
		return d
	}
	return IllegalDesc
}

func (s enumSet) name(v string) string {
	if s.index(v) == IllegalValue {
		return IllegalName
	}
	return strings.ToUpper(v)
}

func (s enumSet) parse(kind, v string) error {
	if s.index(v) == IllegalValue {
		return fmt.Errorf("invalid %s %q, must be one of: %s", kind, v, strings.Join(s.values, ", "))
	}
	return nil
}

// Period is the temporal granularity of a time-series or indicator.
type Period string

const (
	PeriodDaily            Period = "daily"
	PeriodMonthly          Period = "monthly"
	PeriodAnnual           Period = "annual"
	PeriodSeasonal         Period = "seasonal"
	PeriodDecadal          Period = "decadal"
	PeriodOther            Period = "other"
	PeriodMultiyearMonthly Period = "multiyear_monthly"
)

var periods = newEnumSet(
	string(PeriodDaily), "Daily",
	string(PeriodMonthly), "Monthly",
	string(PeriodAnnual), "Annual",
	string(PeriodSeasonal), "Seasonal",
	string(PeriodDecadal), "Decadal",
	string(PeriodOther), "Other",
	string(PeriodMultiyearMonthly), "Multi-year monthly",
)

// ParsePeriod returns the Period for s or an error listing the accepted values.
func ParsePeriod(s string) (Period, error) {
	if err := periods.parse("period", s); err != nil {
		return "", err
	}
	return Period(s), nil
}

func (p Period) IsValid() bool  { return periods.index(string(p)) != IllegalValue }
func (p Period) Number() int    { return periods.index(string(p)) }
func (p Period) String() string { return string(p) }
func (p Period) Desc() string   { return periods.desc(string(p)) }
func (p Period) Name() string   { return periods.name(string(p)) }

// SourceType is the acquisition kind of a station or data source.
type SourceType string

const (
	SourceManual            SourceType = "manual"
	SourceAutomatic         SourceType = "automatic"
	SourceSpatial           SourceType = "spatial"
	SourcePluviometer       SourceType = "pluviometer"
	SourceThermopluviometer SourceType = "thermopluviometer"
)

var sourceTypes = newEnumSet(
	string(SourceManual), "Manual station",
	string(SourceAutomatic), "Automatic station",
	string(SourceSpatial), "Spatial (gridded) source",
	string(SourcePluviometer), "Pluviometer",
	string(SourceThermopluviometer), "Thermopluviometer",
)

// ParseSourceType returns the SourceType for s or an error listing the accepted values.
func ParseSourceType(s string) (SourceType, error) {
	if err := sourceTypes.parse("source type", s); err != nil {
		return "", err
	}
	return SourceType(s), nil
}

func (t SourceType) IsValid() bool  { return sourceTypes.index(string(t)) != IllegalValue }
func (t SourceType) Number() int    { return sourceTypes.index(string(t)) }
func (t SourceType) String() string { return string(t) }
func (t SourceType) Desc() string   { return sourceTypes.desc(string(t)) }
func (t SourceType) Name() string   { return sourceTypes.name(string(t)) }

// Module is an access-control area a role or user access applies to.
type Module string

const (
	ModuleGeographic        Module = "geographic"
	ModuleClimateData       Module = "climate_data"
	ModuleCropData          Module = "crop_data"
	ModuleIndicatorsData    Module = "indicators_data"
	ModuleStressData        Module = "stress_data"
	ModulePhenologicalStage Module = "phenological_stage"
	ModuleUserManagement    Module = "user_management"
	ModuleConfiguration     Module = "configuration"
)

var modules = newEnumSet(
	string(ModuleGeographic), "Countries, admin levels and locations",
	string(ModuleClimateData), "Climate data",
	string(ModuleCropData), "Crop data",
	string(ModuleIndicatorsData), "Indicators data",
	string(ModuleStressData), "Stress data",
	string(ModulePhenologicalStage), "Phenological stages",
	string(ModuleUserManagement), "Users and roles",
	string(ModuleConfiguration), "System configuration",
)

// ParseModule returns the Module for s or an error listing the accepted values.
func ParseModule(s string) (Module, error) {
	if err := modules.parse("module", s); err != nil {
		return "", err
	}
	return Module(s), nil
}

func (m Module) IsValid() bool  { return modules.index(string(m)) != IllegalValue }
func (m Module) Number() int    { return modules.index(string(m)) }
func (m Module) String() string { return string(m) }
func (m Module) Desc() string   { return modules.desc(string(m)) }
func (m Module) Name() string   { return modules.name(string(m)) }

// Periods returns every accepted Period in declaration order.
func Periods() []Period {
	out := make([]Period, len(periods.values))
	for i, v := range periods.values {
		out[i] = Period(v)
	}
	return out
}

// SourceTypes returns every accepted SourceType in declaration order.
func SourceTypes() []SourceType {
	out := make([]SourceType, len(sourceTypes.values))
	for i, v := range sourceTypes.values {
		out[i] = SourceType(v)
	}
	return out
}

// Modules returns every accepted Module in declaration order.
func Modules() []Module {
	out := make([]Module, len(modules.values))
	for i, v := range modules.values {
		out[i] = Module(v)
	}
	return out
}
