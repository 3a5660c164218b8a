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
	"time"
)

const (
	columnEnable  = "enable"
	columnUpdated = "updated"
)

// Audit is embedded by soft-deletable catalog entities.
type Audit struct {
	Enable   bool      `bun:"enable,notnull" json:"enable"`
	Register time.Time `bun:"register,nullzero,notnull,default:current_timestamp" json:"register"`
	Updated  time.Time `bun:"updated,nullzero,notnull,default:current_timestamp" json:"updated"`
}

func newAudit(enable *bool) Audit {
	return Audit{Enable: enable == nil || *enable}
}

// Stamp fills the creation and modification times of a new row.
func (a *Audit) Stamp(now time.Time) {
	if a.Register.IsZero() {
		a.Register = now
	}
	a.Updated = now
}

func (*Audit) UpdatedColumn() string      { return columnUpdated }
func (*Audit) AvailabilityColumn() string { return columnEnable }

// AuditRead is the read view of Audit.
type AuditRead struct {
	Enable   bool      `json:"enable"`
	Register time.Time `json:"register"`
	Updated  time.Time `json:"updated"`
}

func (a Audit) read() AuditRead {
	return AuditRead{Enable: a.Enable, Register: a.Register, Updated: a.Updated}
}

// patch collects the supplied fields of an update shape.
type patch map[string]any

func set[T any](p patch, column string, v *T) {
	if v != nil {
		p[column] = *v
	}
}

// Day returns midnight UTC of the calendar date of t in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := Day(*t)
	return &d
}
