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

// Role is a named set of permissions scoped to one module.
type Role struct {
	bun.BaseModel `bun:"table:role,alias:ro"`

	ID     int64        `bun:"id,pk,autoincrement" json:"id"`
	Name   string       `bun:"name,notnull,type:varchar(255)" json:"name"`
	Module types.Module `bun:"module,notnull,type:varchar(32)" json:"module"`
}

type RoleCreate struct {
	Name   string       `json:"name" validate:"required,max=255"`
	Module types.Module `json:"module" validate:"required,enum"`
}

func (c RoleCreate) Entity() *Role { return &Role{Name: c.Name, Module: c.Module} }

type RoleUpdate struct {
	Name   *string       `json:"name,omitempty" validate:"omitempty,max=255"`
	Module *types.Module `json:"module,omitempty" validate:"omitempty,enum"`
}

func (u RoleUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "name", u.Name)
	set(p, "module", u.Module)
	return p
}

type RoleRead struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Module types.Module `json:"module"`
}

func (e *Role) Read() RoleRead { return RoleRead{ID: e.ID, Name: e.Name, Module: e.Module} }

// User links an identity provider subject to a role.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	ExtID  string `bun:"ext_id,notnull,type:varchar(255)" json:"ext_id"`
	RoleID int64  `bun:"role_id,notnull" json:"role_id"`
	Audit
}

type UserCreate struct {
	ExtID  string `json:"ext_id" validate:"required,max=255"`
	RoleID int64  `json:"role_id" validate:"required,gt=0"`
	Enable *bool  `json:"enable,omitempty"`
}

func (c UserCreate) Entity() *User {
	return &User{ExtID: c.ExtID, RoleID: c.RoleID, Audit: newAudit(c.Enable)}
}

type UserUpdate struct {
	ExtID  *string `json:"ext_id,omitempty" validate:"omitempty,max=255"`
	RoleID *int64  `json:"role_id,omitempty" validate:"omitempty,gt=0"`
	Enable *bool   `json:"enable,omitempty"`
}

func (u UserUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "ext_id", u.ExtID)
	set(p, "role_id", u.RoleID)
	set(p, columnEnable, u.Enable)
	return p
}

type UserRead struct {
	ID     int64  `json:"id"`
	ExtID  string `json:"ext_id"`
	RoleID int64  `json:"role_id"`
	AuditRead
}

func (e *User) Read() UserRead {
	return UserRead{ID: e.ID, ExtID: e.ExtID, RoleID: e.RoleID, AuditRead: e.Audit.read()}
}

// Action is a CRUD permission bit of a UserAccess row.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// UserAccess grants a user permissions on one module of one country.
type UserAccess struct {
	bun.BaseModel `bun:"table:user_access,alias:ua"`

	ID        int64        `bun:"id,pk,autoincrement" json:"id"`
	UserID    int64        `bun:"user_id,notnull,unique:user_access" json:"user_id"`
	CountryID int64        `bun:"country_id,notnull,unique:user_access" json:"country_id"`
	RoleID    int64        `bun:"role_id,notnull" json:"role_id"`
	Module    types.Module `bun:"module,notnull,type:varchar(32),unique:user_access" json:"module"`
	CanCreate bool         `bun:"can_create,notnull,default:false" json:"can_create"`
	CanRead   bool         `bun:"can_read,notnull,default:false" json:"can_read"`
	CanUpdate bool         `bun:"can_update,notnull,default:false" json:"can_update"`
	CanDelete bool         `bun:"can_delete,notnull,default:false" json:"can_delete"`
}

func (*UserAccess) HierarchyAnchor() hierarchy.Anchor { return hierarchy.Via(hierarchy.Country, "country_id") }

// Allows reports whether the row grants action. Unknown actions are denied.
func (e *UserAccess) Allows(action Action) bool {
	switch action {
	case ActionCreate:
		return e.CanCreate
	case ActionRead:
		return e.CanRead
	case ActionUpdate:
		return e.CanUpdate
	case ActionDelete:
		return e.CanDelete
	}
	return false
}

type UserAccessCreate struct {
	UserID    int64        `json:"user_id" validate:"required,gt=0"`
	CountryID int64        `json:"country_id" validate:"required,gt=0"`
	RoleID    int64        `json:"role_id" validate:"required,gt=0"`
	Module    types.Module `json:"module" validate:"required,enum"`
	CanCreate bool         `json:"can_create"`
	CanRead   bool         `json:"can_read"`
	CanUpdate bool         `json:"can_update"`
	CanDelete bool         `json:"can_delete"`
}

func (c UserAccessCreate) Entity() *UserAccess {
	return &UserAccess{
		UserID:    c.UserID,
		CountryID: c.CountryID,
		RoleID:    c.RoleID,
		Module:    c.Module,
		CanCreate: c.CanCreate,
		CanRead:   c.CanRead,
		CanUpdate: c.CanUpdate,
		CanDelete: c.CanDelete,
	}
}

type UserAccessUpdate struct {
	RoleID    *int64 `json:"role_id,omitempty" validate:"omitempty,gt=0"`
	CanCreate *bool  `json:"can_create,omitempty"`
	CanRead   *bool  `json:"can_read,omitempty"`
	CanUpdate *bool  `json:"can_update,omitempty"`
	CanDelete *bool  `json:"can_delete,omitempty"`
}

func (u UserAccessUpdate) Columns() map[string]any {
	p := patch{}
	set(p, "role_id", u.RoleID)
	set(p, "can_create", u.CanCreate)
	set(p, "can_read", u.CanRead)
	set(p, "can_update", u.CanUpdate)
	set(p, "can_delete", u.CanDelete)
	return p
}

type UserAccessRead struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	CountryID int64        `json:"country_id"`
	RoleID    int64        `json:"role_id"`
	Module    types.Module `json:"module"`
	CanCreate bool         `json:"can_create"`
	CanRead   bool         `json:"can_read"`
	CanUpdate bool         `json:"can_update"`
	CanDelete bool         `json:"can_delete"`
}

func (e *UserAccess) Read() UserAccessRead {
	return UserAccessRead{
		ID:        e.ID,
		UserID:    e.UserID,
		CountryID: e.CountryID,
		RoleID:    e.RoleID,
		Module:    e.Module,
		CanCreate: e.CanCreate,
		CanRead:   e.CanRead,
		CanUpdate: e.CanUpdate,
		CanDelete: e.CanDelete,
	}
}
