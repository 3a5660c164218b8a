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
	roleBase       = aclimate.BaseService[models.Role, models.RoleCreate, models.RoleRead, models.RoleUpdate]
	userBase       = aclimate.BaseService[models.User, models.UserCreate, models.UserRead, models.UserUpdate]
	userAccessBase = aclimate.BaseService[models.UserAccess, models.UserAccessCreate, models.UserAccessRead, models.UserAccessUpdate]
)

// RoleService manages role.
type RoleService struct {
	*roleBase
}

func NewRoleService(sessions *database.SessionManager) *RoleService {
	validate := validation.CreateFunc[models.RoleCreate](func(ctx context.Context, db bun.IDB, c models.RoleCreate) error {
		return validation.All("role",
			validation.Required("name", c.Name),
			validation.OneOf("module", c.Module),
			validation.Unique[models.Role](ctx, db, "name",
				fmt.Sprintf("a role named %q already exists for module %s", c.Name, c.Module),
				validation.In("name", c.Name, "module", c.Module)),
		)
	})
	return &RoleService{aclimate.NewService[models.Role, models.RoleCreate, models.RoleRead, models.RoleUpdate](
		sessions, (*models.Role).Read,
		aclimate.WithValidator[models.Role, models.RoleCreate](validate),
	)}
}

func (s *RoleService) GetByName(ctx context.Context, name string) ([]models.RoleRead, error) {
	return s.GetAll(ctx, types.Filters{"name": name})
}

func (s *RoleService) GetByModule(ctx context.Context, module types.Module) ([]models.RoleRead, error) {
	return s.GetAll(ctx, types.Filters{"module": module})
}

func (s *RoleService) GetByNameAndModule(ctx context.Context, name string, module types.Module) (*models.RoleRead, error) {
	return s.FindFirst(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.name = ?", name).Where("?TableAlias.module = ?", module)
	})
}

// UserService manages users.
type UserService struct {
	*userBase
}

func NewUserService(sessions *database.SessionManager) *UserService {
	rules := validation.Rules[models.UserCreate]{
		Create: func(ctx context.Context, db bun.IDB, c models.UserCreate) error {
			return validation.All("user",
				validation.Required("ext_id", c.ExtID),
				validation.Exists[models.Role](ctx, db, "role_id", c.RoleID),
				validation.Unique[models.User](ctx, db, "ext_id",
					fmt.Sprintf("a user with external id %q already exists", c.ExtID), validation.In("ext_id", c.ExtID)),
			)
		},
		Update: func(ctx context.Context, db bun.IDB, id int64, fields map[string]any) error {
			checks := []error{
				uniqueOnUpdate[models.User](ctx, db, id, fields, "ext_id",
					fmt.Sprintf("a user with external id %q already exists", text(fields, "ext_id"))),
				patchExists[models.Role](ctx, db, fields, "role_id"),
			}
			return validation.All("user", checks...)
		},
	}
	return &UserService{aclimate.NewService[models.User, models.UserCreate, models.UserRead, models.UserUpdate](
		sessions, (*models.User).Read,
		aclimate.WithValidator[models.User, models.UserCreate](rules),
	)}
}

// GetByExtID returns the user bound to an identity provider subject.
func (s *UserService) GetByExtID(ctx context.Context, extID string, enable bool) (*models.UserRead, error) {
	return s.FindFirst(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.ext_id = ?", extID).Where("?TableAlias.enable = ?", enable)
	})
}

func (s *UserService) GetByRole(ctx context.Context, roleID int64, enable bool) ([]models.UserRead, error) {
	return s.GetAll(ctx, enabled(enable).With("role_id", roleID))
}

func (s *UserService) GetByRoleName(ctx context.Context, role string, enable bool) ([]models.UserRead, error) {
	return s.Find(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return joinName("role", "h_role", "role_id", role)(q).Where("?TableAlias.enable = ?", enable)
	})
}

// UserAccessService manages user_access.
type UserAccessService struct {
	*userAccessBase
}

func NewUserAccessService(sessions *database.SessionManager) *UserAccessService {
	validate := validation.CreateFunc[models.UserAccessCreate](func(ctx context.Context, db bun.IDB, c models.UserAccessCreate) error {
		return validation.All("user_access",
			validation.OneOf("module", c.Module),
			validation.Exists[models.User](ctx, db, "user_id", c.UserID),
			validation.Exists[models.Country](ctx, db, "country_id", c.CountryID),
			validation.Exists[models.Role](ctx, db, "role_id", c.RoleID),
			validation.Unique[models.UserAccess](ctx, db, "module",
				fmt.Sprintf("user %d already has %s access in country %d", c.UserID, c.Module, c.CountryID),
				validation.In("user_id", c.UserID, "country_id", c.CountryID, "module", c.Module)),
		)
	})
	return &UserAccessService{aclimate.NewService[models.UserAccess, models.UserAccessCreate, models.UserAccessRead, models.UserAccessUpdate](
		sessions, (*models.UserAccess).Read,
		aclimate.WithValidator[models.UserAccess, models.UserAccessCreate](validate),
	)}
}

func (s *UserAccessService) GetByUser(ctx context.Context, userID int64) ([]models.UserAccessRead, error) {
	return s.GetAll(ctx, types.Filters{"user_id": userID})
}

func (s *UserAccessService) GetByCountry(ctx context.Context, countryID int64) ([]models.UserAccessRead, error) {
	return s.GetAll(ctx, types.Filters{"country_id": countryID})
}

func (s *UserAccessService) GetByCountryName(ctx context.Context, country string) ([]models.UserAccessRead, error) {
	return s.FindByAncestor(ctx, byName(hierarchy.Country, country), nil)
}

func (s *UserAccessService) GetByModule(ctx context.Context, module types.Module) ([]models.UserAccessRead, error) {
	return s.GetAll(ctx, types.Filters{"module": module})
}

// HasPermission reports whether the user may perform action on module in
// country. A user without a matching access row has no permissions.
func (s *UserAccessService) HasPermission(ctx context.Context, userID, countryID int64, module types.Module, action models.Action) (bool, error) {
	var allowed bool
	err := s.Scope(ctx, func(ctx context.Context, db bun.IDB) error {
		row, err := s.Repository().First(ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.user_id = ?", userID).
				Where("?TableAlias.country_id = ?", countryID).
				Where("?TableAlias.module = ?", module)
		})
		if row != nil {
			allowed = row.Allows(action)
		}
		return err
	})
	return allowed, err
}
