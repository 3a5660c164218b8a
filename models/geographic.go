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
	"strings"

	"github.com/uptrace/bun"

	"github.com/tomoncle/aclimate/hierarchy"
)

// Country is the root of the administrative hierarchy.
type Country struct {
	bun.BaseModel `bun:"table:mng_country,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,type:varchar(255)" json:"name"`
	ISO2 string `bun:"iso2,notnull,type:varchar(2)" json:"iso2"`
	Audit
}

func (*Country) HierarchyAnchor() hierarchy.Anchor { return hierarchy.Self(hierarchy.Country) }

type CountryCreate struct {
	Name   string `json:"name" validate:"required,max=255"`
	ISO2   string `json:"iso2" validate:"required,len=2,alpha"`
	Enable *bool  `json:"enable,omitempty"`
}

func (c CountryCreate) Entity() *Country {
	return &Country{Name: c.Name, ISO2: strings.ToUpper(c.ISO2), Audit: newAudit(c.Enable)}
}

type CountryUpdate struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=255"`
	ISO2   *string `json:"iso2,omitempty" validate:"omitempty,len=2,alpha"`
	Enable *bool   `json:"enable,omitempty"`
}

func (u CountryUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "name", u.Name)
	if u.ISO2 != nil {
		p["iso2"] = strings.ToUpper(*u.ISO2)
	}
	set(p, columnEnable, u.Enable)
	return p
}

type CountryRead struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	ISO2 string `json:"iso2"`
	AuditRead
}

func (e *Country) Read() CountryRead {
	return CountryRead{ID: e.ID, Name: e.Name, ISO2: e.ISO2, AuditRead: e.Audit.read()}
}

// Admin1 is a first-level subdivision (state, department) of a country.
type Admin1 struct {
	bun.BaseModel `bun:"table:mng_admin_1,alias:a1"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	CountryID int64  `bun:"country_id,notnull" json:"country_id"`
	Name      string `bun:"name,notnull,type:varchar(255)" json:"name"`
	ExtID     string `bun:"ext_id,type:varchar(255)" json:"ext_id"`
	Audit
}

func (*Admin1) HierarchyAnchor() hierarchy.Anchor { return hierarchy.Self(hierarchy.Admin1) }

type Admin1Create struct {
	CountryID int64  `json:"country_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=255"`
	ExtID     string `json:"ext_id" validate:"max=255"`
	Enable    *bool  `json:"enable,omitempty"`
}

func (c Admin1Create) Entity() *Admin1 {
	return &Admin1{CountryID: c.CountryID, Name: c.Name, ExtID: c.ExtID, Audit: newAudit(c.Enable)}
}

type Admin1Update struct {
	CountryID *int64  `json:"country_id,omitempty" validate:"omitempty,gt=0"`
	Name      *string `json:"name,omitempty" validate:"omitempty,max=255"`
	ExtID     *string `json:"ext_id,omitempty" validate:"omitempty,max=255"`
	Enable    *bool   `json:"enable,omitempty"`
}

func (u Admin1Update) Columns() map[string]any {
	p := patch{}
	set(p, "country_id", u.CountryID)
	set(p, "name", u.Name)
	set(p, "ext_id", u.ExtID)
	set(p, columnEnable, u.Enable)
	return p
}

type Admin1Read struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	Name      string `json:"name"`
	ExtID     string `json:"ext_id"`
	AuditRead
}

func (e *Admin1) Read() Admin1Read {
	return Admin1Read{ID: e.ID, CountryID: e.CountryID, Name: e.Name, ExtID: e.ExtID, AuditRead: e.Audit.read()}
}

// Admin2 is a second-level subdivision (municipality) of an Admin1.
type Admin2 struct {
	bun.BaseModel `bun:"table:mng_admin_2,alias:a2"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Admin1ID int64  `bun:"admin_1_id,notnull" json:"admin_1_id"`
	Name     string `bun:"name,notnull,type:varchar(255)" json:"name"`
	ExtID    string `bun:"ext_id,type:varchar(255)" json:"ext_id"`
	Visible  bool   `bun:"visible,notnull" json:"visible"`
	Audit
}

func (*Admin2) HierarchyAnchor() hierarchy.Anchor { return hierarchy.Self(hierarchy.Admin2) }

type Admin2Create struct {
	Admin1ID int64  `json:"admin_1_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,max=255"`
	ExtID    string `json:"ext_id" validate:"max=255"`
	Visible  *bool  `json:"visible,omitempty"`
	Enable   *bool  `json:"enable,omitempty"`
}

func (c Admin2Create) Entity() *Admin2 {
	return &Admin2{
		Admin1ID: c.Admin1ID,
		Name:     c.Name,
		ExtID:    c.ExtID,
		Visible:  c.Visible == nil || *c.Visible,
		Audit:    newAudit(c.Enable),
	}
}

type Admin2Update struct {
	Admin1ID *int64  `json:"admin_1_id,omitempty" validate:"omitempty,gt=0"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	ExtID    *string `json:"ext_id,omitempty" validate:"omitempty,max=255"`
	Visible  *bool   `json:"visible,omitempty"`
	Enable   *bool   `json:"enable,omitempty"`
}

func (u Admin2Update) Columns() map[string]any {
	p := patch{}
	set(p, "admin_1_id", u.Admin1ID)
	set(p, "name", u.Name)
	set(p, "ext_id", u.ExtID)
	set(p, "visible", u.Visible)
	set(p, columnEnable, u.Enable)
	return p
}

type Admin2Read struct {
	ID       int64  `json:"id"`
	Admin1ID int64  `json:"admin_1_id"`
	Name     string `json:"name"`
	ExtID    string `json:"ext_id"`
	Visible  bool   `json:"visible"`
	AuditRead
}

func (e *Admin2) Read() Admin2Read {
	return Admin2Read{
		ID: e.ID, Admin1ID: e.Admin1ID, Name: e.Name, ExtID: e.ExtID, Visible: e.Visible,
		AuditRead: e.Audit.read(),
	}
}

// Location is a station or point of interest inside an Admin2.
type Location struct {
	bun.BaseModel `bun:"table:mng_location,alias:l"`

	ID          int64    `bun:"id,pk,autoincrement" json:"id"`
	Admin2ID    int64    `bun:"admin_2_id,notnull" json:"admin_2_id"`
	SourceID    *int64   `bun:"source_id" json:"source_id,omitempty"`
	Name        string   `bun:"name,notnull,type:varchar(255)" json:"name"`
	MachineName string   `bun:"machine_name,notnull,type:varchar(255)" json:"machine_name"`
	ExtID       string   `bun:"ext_id,type:varchar(255)" json:"ext_id"`
	Origin      string   `bun:"origin,type:varchar(255)" json:"origin"`
	Latitude    *float64 `bun:"latitude" json:"latitude,omitempty"`
	Longitude   *float64 `bun:"longitude" json:"longitude,omitempty"`
	Altitude    *float64 `bun:"altitude" json:"altitude,omitempty"`
	Visible     bool     `bun:"visible,notnull" json:"visible"`
	Audit
}

func (*Location) HierarchyAnchor() hierarchy.Anchor { return hierarchy.Self(hierarchy.Location) }

type LocationCreate struct {
	Admin2ID    int64    `json:"admin_2_id" validate:"required,gt=0"`
	SourceID    *int64   `json:"source_id,omitempty" validate:"omitempty,gt=0"`
	Name        string   `json:"name" validate:"required,max=255"`
	MachineName string   `json:"machine_name" validate:"required,max=255,slug"`
	ExtID       string   `json:"ext_id" validate:"max=255"`
	Origin      string   `json:"origin" validate:"max=255"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Altitude    *float64 `json:"altitude,omitempty"`
	Visible     *bool    `json:"visible,omitempty"`
	Enable      *bool    `json:"enable,omitempty"`
}

func (c LocationCreate) Entity() *Location {
	return &Location{
		Admin2ID:    c.Admin2ID,
		SourceID:    c.SourceID,
		Name:        c.Name,
		MachineName: c.MachineName,
		ExtID:       c.ExtID,
		Origin:      c.Origin,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Altitude:    c.Altitude,
		Visible:     c.Visible == nil || *c.Visible,
		Audit:       newAudit(c.Enable),
	}
}

type LocationUpdate struct {
	Admin2ID    *int64   `json:"admin_2_id,omitempty" validate:"omitempty,gt=0"`
	SourceID    *int64   `json:"source_id,omitempty" validate:"omitempty,gt=0"`
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	MachineName *string  `json:"machine_name,omitempty" validate:"omitempty,max=255,slug"`
	ExtID       *string  `json:"ext_id,omitempty" validate:"omitempty,max=255"`
	Origin      *string  `json:"origin,omitempty" validate:"omitempty,max=255"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Altitude    *float64 `json:"altitude,omitempty"`
	Visible     *bool    `json:"visible,omitempty"`
	Enable      *bool    `json:"enable,omitempty"`
}

func (u LocationUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "admin_2_id", u.Admin2ID)
	set(p, "source_id", u.SourceID)
	set(p, "name", u.Name)
	set(p, "machine_name", u.MachineName)
	set(p, "ext_id", u.ExtID)
	set(p, "origin", u.Origin)
	set(p, "latitude", u.Latitude)
	set(p, "longitude", u.Longitude)
	set(p, "altitude", u.Altitude)
	set(p, "visible", u.Visible)
	set(p, columnEnable, u.Enable)
	return p
}

type LocationRead struct {
	ID          int64    `json:"id"`
	Admin2ID    int64    `json:"admin_2_id"`
	SourceID    *int64   `json:"source_id,omitempty"`
	Name        string   `json:"name"`
	MachineName string   `json:"machine_name"`
	ExtID       string   `json:"ext_id"`
	Origin      string   `json:"origin"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Altitude    *float64 `json:"altitude,omitempty"`
	Visible     bool     `json:"visible"`
	AuditRead
}

func (e *Location) Read() LocationRead {
	return LocationRead{
		ID:          e.ID,
		Admin2ID:    e.Admin2ID,
		SourceID:    e.SourceID,
		Name:        e.Name,
		MachineName: e.MachineName,
		ExtID:       e.ExtID,
		Origin:      e.Origin,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		Altitude:    e.Altitude,
		Visible:     e.Visible,
		AuditRead:   e.Audit.read(),
	}
}
