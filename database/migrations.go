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
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Revision targets accepted besides explicit revision ids.
const (
	RevisionHead = "head"
	RevisionBase = "base"
)

// Built-in revisions, in order.
const (
	RevisionReferenceTables   = "001_reference_tables"
	RevisionHierarchyKeys     = "002_hierarchy_foreign_keys"
	RevisionSeedReferenceData = "003_seed_reference_data"
)

// ErrUnknownRevision is returned for a target that names no revision.
var ErrUnknownRevision = errors.New("unknown revision")

// Migration is an applied revision recorded in the database.
type Migration struct {
	bun.BaseModel `bun:"table:aclimate_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single revision with up/down functions.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// Migrator evolves the schema forwards and backwards. The data access layer
// never calls it; the host runs it before serving.
type Migrator struct {
	db     *bun.DB
	models *ModelRegistry
	config *Config
	logger Logger
	items  []MigrationItem
}

// NewMigrator builds the revision chain for the tables in models.
func NewMigrator(db *bun.DB, models *ModelRegistry, cfg *Config, logger Logger) *Migrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if models == nil {
		models = NewModelRegistry()
	}
	if logger == nil {
		logger = NopLogger()
	}
	mm := &Migrator{db: db, models: models, config: cfg, logger: logger}
	mm.items = []MigrationItem{
		{
			Version:     RevisionReferenceTables,
			Name:        "reference_tables",
			Description: "Create reference, hierarchy and time-series tables",
			Up:          mm.createTables,
			Down:        mm.dropTables,
		},
		{
			Version:     RevisionHierarchyKeys,
			Name:        "hierarchy_foreign_keys",
			Description: "Add hierarchy and catalog foreign key constraints",
			Up:          mm.addForeignKeys,
			Down:        mm.dropForeignKeys,
		},
		{
			Version:     RevisionSeedReferenceData,
			Name:        "seed_reference_data",
			Description: "Load seed SQL files",
			Up:          mm.seed,
			Down:        func(context.Context, bun.IDB) error { return nil },
		},
	}
	return mm
}

// Revisions returns the revision chain in application order.
func (mm *Migrator) Revisions() []MigrationItem {
	out := make([]MigrationItem, len(mm.items))
	copy(out, mm.items)
	return out
}

// index resolves target to the number of revisions it includes.
func (mm *Migrator) index(target string) (int, error) {
	switch target {
	case RevisionHead, "":
		return len(mm.items), nil
	case RevisionBase:
		return 0, nil
	}
	for i, item := range mm.items {
		if item.Version == target {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownRevision, target)
}

func (mm *Migrator) createVersionTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	var rows []Migration
	if err := mm.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.Version] = true
	}
	return out, nil
}

// Upgrade applies every pending revision up to and including target.
func (mm *Migrator) Upgrade(ctx context.Context, target string) error {
	n, err := mm.index(target)
	if err != nil {
		return err
	}
	if err := mm.createVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	done, err := mm.applied(ctx)
	if err != nil {
		return err
	}
	for _, item := range mm.items[:n] {
		if done[item.Version] {
			continue
		}
		if err := mm.runMigration(ctx, item, true); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", item.Version, err)
		}
	}
	mm.logger.Info("Database upgraded", "revision", target)
	return nil
}

// Downgrade reverts applied revisions above target, newest first.
func (mm *Migrator) Downgrade(ctx context.Context, target string) error {
	n, err := mm.index(target)
	if err != nil {
		return err
	}
	if err := mm.createVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	done, err := mm.applied(ctx)
	if err != nil {
		return err
	}
	for i := len(mm.items) - 1; i >= n; i-- {
		item := mm.items[i]
		if !done[item.Version] {
			continue
		}
		if err := mm.runMigration(ctx, item, false); err != nil {
			return fmt.Errorf("failed to revert migration %s: %w", item.Version, err)
		}
	}
	mm.logger.Info("Database downgraded", "revision", target)
	return nil
}

// Current returns the newest applied revision, or "" at base.
func (mm *Migrator) Current(ctx context.Context) (string, error) {
	if err := mm.createVersionTable(ctx); err != nil {
		return "", fmt.Errorf("failed to create migrations table: %w", err)
	}
	done, err := mm.applied(ctx)
	if err != nil {
		return "", err
	}
	current := ""
	for _, item := range mm.items {
		if done[item.Version] {
			current = item.Version
		}
	}
	return current, nil
}

// Stamp records target as the current revision without running any step.
func (mm *Migrator) Stamp(ctx context.Context, target string) error {
	n, err := mm.index(target)
	if err != nil {
		return err
	}
	if err := mm.createVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Migration)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		for _, item := range mm.items[:n] {
			if _, err := tx.NewInsert().Model(record(item)).Exec(ctx); err != nil {
				return err
			}
		}
		mm.logger.Info("Database stamped", "revision", target)
		return nil
	})
}

func record(item MigrationItem) *Migration {
	return &Migration{
		Version:     item.Version,
		Name:        item.Name,
		AppliedAt:   time.Now(),
		Description: item.Description,
	}
}

func (mm *Migrator) runMigration(ctx context.Context, item MigrationItem, up bool) error {
	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func(tx bun.Tx) {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				mm.logger.Error("Failed to rollback transaction", "error", rollbackErr)
			}
		}
	}(tx)

	step := item.Up
	if !up {
		step = item.Down
	}
	if step != nil {
		if err := step(ctx, tx); err != nil {
			return err
		}
	}

	if up {
		_, err = tx.NewInsert().Model(record(item)).Exec(ctx)
	} else {
		_, err = tx.NewDelete().Model((*Migration)(nil)).Where("version = ?", item.Version).Exec(ctx)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	mm.logger.Info("Migration executed successfully", "version", item.Version, "up", up)
	return nil
}

func (mm *Migrator) createTables(ctx context.Context, db bun.IDB) error {
	for _, model := range mm.models.Instances() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", modelName(model), err)
		}
	}
	return nil
}

func (mm *Migrator) dropTables(ctx context.Context, db bun.IDB) error {
	instances := mm.models.Instances()
	for i := len(instances) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(instances[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", modelName(instances[i]), err)
		}
	}
	return nil
}

func (mm *Migrator) foreignKeys() (*ForeignKeyManager, error) {
	return LoadForeignKeyManager(mm.logger, mm.config.Migrate.ForeignKeyFile)
}

// sqlite cannot add constraints to existing tables; the revision is recorded as a no-op.
func (mm *Migrator) skipForeignKeys(db bun.IDB) bool {
	if !mm.config.Migrate.EnableForeignKey {
		return true
	}
	if db.Dialect().Name() == dialect.SQLite {
		mm.logger.Debug("Foreign keys are not altered on sqlite")
		return true
	}
	return false
}

func (mm *Migrator) addForeignKeys(ctx context.Context, db bun.IDB) error {
	if mm.skipForeignKeys(db) {
		return nil
	}
	fkm, err := mm.foreignKeys()
	if err != nil {
		return err
	}
	return fkm.AddAllForeignKeys(ctx, db)
}

func (mm *Migrator) dropForeignKeys(ctx context.Context, db bun.IDB) error {
	if mm.skipForeignKeys(db) {
		return nil
	}
	fkm, err := mm.foreignKeys()
	if err != nil {
		return err
	}
	return fkm.DropAllForeignKeys(ctx, db)
}

func (mm *Migrator) seed(ctx context.Context, db bun.IDB) error {
	_, err := NewSeedRunner(mm.config.Seed, mm.logger).Run(ctx, db)
	return err
}
