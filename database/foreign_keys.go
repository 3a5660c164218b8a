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

package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/aclimate/hierarchy"
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete,omitempty"` // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string `yaml:"on_update,omitempty"`
	ConstraintName  string `yaml:"constraint_name,omitempty"`
}

// ForeignKeyConfig is the YAML document listing foreign key constraints.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement to add the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.GenerateConstraintName(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		sql += fmt.Sprintf(" ON DELETE %s", fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		sql += fmt.Sprintf(" ON UPDATE %s", fk.OnUpdate)
	}
	return sql
}

// GenerateDropSQL returns the statement removing the constraint for the dialect.
func (fk *ForeignKeyConstraint) GenerateDropSQL(name dialect.Name) string {
	if name == dialect.MySQL {
		return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", fk.Table, fk.GenerateConstraintName())
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", fk.Table, fk.GenerateConstraintName())
}

func fk(table, column, refTable, onDelete string) ForeignKeyConstraint {
	return ForeignKeyConstraint{Table: table, Column: column, ReferenceTable: refTable, ReferenceColumn: "id", OnDelete: onDelete}
}

// DefaultForeignKeys returns the hierarchy edges followed by the catalog references.
func DefaultForeignKeys() []ForeignKeyConstraint {
	var out []ForeignKeyConstraint
	for _, e := range hierarchy.Edges() {
		out = append(out, ForeignKeyConstraint{
			Table:           e.Table,
			Column:          e.Column,
			ReferenceTable:  e.ParentTable,
			ReferenceColumn: e.ParentColumn,
			OnDelete:        "RESTRICT",
		})
	}
	return append(out,
		fk("mng_location", "source_id", "mng_source", "SET NULL"),
		fk("climate_historical_daily", "location_id", "mng_location", "CASCADE"),
		fk("climate_historical_daily", "measure_id", "mng_climate_measure", "RESTRICT"),
		fk("climate_historical_monthly", "location_id", "mng_location", "CASCADE"),
		fk("climate_historical_monthly", "measure_id", "mng_climate_measure", "RESTRICT"),
		fk("climate_historical_climatology", "location_id", "mng_location", "CASCADE"),
		fk("climate_historical_climatology", "measure_id", "mng_climate_measure", "RESTRICT"),
		fk("mng_indicators", "indicator_category_id", "mng_indicator_category", "RESTRICT"),
		fk("climate_historical_indicator", "indicator_id", "mng_indicators", "CASCADE"),
		fk("climate_historical_indicator", "location_id", "mng_location", "CASCADE"),
		fk("mng_country_indicator", "country_id", "mng_country", "CASCADE"),
		fk("mng_country_indicator", "indicator_id", "mng_indicators", "CASCADE"),
		fk("mng_cultivar", "country_id", "mng_country", "RESTRICT"),
		fk("mng_cultivar", "crop_id", "mng_crop", "RESTRICT"),
		fk("mng_soil", "country_id", "mng_country", "RESTRICT"),
		fk("mng_soil", "crop_id", "mng_crop", "RESTRICT"),
		fk("users", "role_id", "role", "RESTRICT"),
		fk("user_access", "user_id", "users", "CASCADE"),
		fk("user_access", "country_id", "mng_country", "CASCADE"),
		fk("user_access", "role_id", "role", "RESTRICT"),
	)
}

// ForeignKeyManager manages adding and validating foreign key constraints.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager over constraints, or the defaults when none are given.
func NewForeignKeyManager(logger Logger, constraints ...ForeignKeyConstraint) *ForeignKeyManager {
	if len(constraints) == 0 {
		constraints = DefaultForeignKeys()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &ForeignKeyManager{constraints: constraints, logger: logger}
}

// LoadForeignKeyManager reads constraints from the YAML file at path and
// falls back to the defaults when the file is missing.
func LoadForeignKeyManager(logger Logger, path string) (*ForeignKeyManager, error) {
	if path == "" {
		return NewForeignKeyManager(logger), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if logger != nil {
			logger.Debug("Foreign key file not found, using code-defined defaults", "config_path", path)
		}
		return NewForeignKeyManager(logger), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign key file: %w", err)
	}
	var cfg ForeignKeyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foreign key file: %w", err)
	}
	m := NewForeignKeyManager(logger, cfg.ForeignKeys...)
	if errs := m.ValidateConstraints(); len(errs) > 0 {
		for _, e := range errs {
			m.logger.Debug("Foreign key constraint validation failed", "error", e.Error())
		}
		return nil, fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
	}
	return m, nil
}

// Export writes the constraints as a YAML document.
func (fkm *ForeignKeyManager) Export() ([]byte, error) {
	return yaml.Marshal(ForeignKeyConfig{ForeignKeys: fkm.constraints})
}

// AddAllForeignKeys adds every constraint. The first failure aborts.
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	for _, constraint := range fkm.constraints {
		if _, err := db.ExecContext(ctx, constraint.GenerateSQL()); err != nil {
			return fmt.Errorf("failed to add foreign key %s: %w", constraint.GenerateConstraintName(), err)
		}
		fkm.logger.Debug("Successfully added foreign key constraint", "constraint", constraint.GenerateConstraintName())
	}
	return nil
}

// DropAllForeignKeys removes every constraint, last added first.
func (fkm *ForeignKeyManager) DropAllForeignKeys(ctx context.Context, db bun.IDB) error {
	name := db.Dialect().Name()
	for i := len(fkm.constraints) - 1; i >= 0; i-- {
		constraint := fkm.constraints[i]
		if _, err := db.ExecContext(ctx, constraint.GenerateDropSQL(name)); err != nil {
			return fmt.Errorf("failed to drop foreign key %s: %w", constraint.GenerateConstraintName(), err)
		}
	}
	return nil
}

// GetConstraintsByTable returns the constraints defined for a table.
func (fkm *ForeignKeyManager) GetConstraintsByTable(tableName string) []ForeignKeyConstraint {
	var result []ForeignKeyConstraint
	for _, constraint := range fkm.constraints {
		if strings.EqualFold(constraint.Table, tableName) {
			result = append(result, constraint)
		}
	}
	return result
}

// ListAllConstraints returns all configured constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

var validActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

func validAction(action string) bool {
	for _, a := range validActions {
		if strings.EqualFold(action, a) {
			return true
		}
	}
	return false
}

// ValidateConstraints checks the configured constraints for common issues.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error
	for _, c := range fkm.constraints {
		if c.Table == "" {
			errs = append(errs, fmt.Errorf("table name cannot be empty"))
		}
		if c.Column == "" {
			errs = append(errs, fmt.Errorf("column name cannot be empty: %s", c.Table))
		}
		if c.ReferenceTable == "" {
			errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", c.Table, c.Column))
		}
		if c.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", c.Table, c.Column, c.ReferenceTable))
		}
		if c.OnDelete != "" && !validAction(c.OnDelete) {
			errs = append(errs, fmt.Errorf("invalid delete policy: %s, constraint: %s", c.OnDelete, c.GenerateConstraintName()))
		}
		if c.OnUpdate != "" && !validAction(c.OnUpdate) {
			errs = append(errs, fmt.Errorf("invalid update policy: %s, constraint: %s", c.OnUpdate, c.GenerateConstraintName()))
		}
	}
	return errs
}
