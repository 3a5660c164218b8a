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

package repository

import "time"

// SoftDeletable marks entities whose delete only clears an availability flag.
// AvailabilityColumn names that boolean column.
type SoftDeletable interface {
	AvailabilityColumn() string
}

// Audited marks entities carrying creation and modification timestamps.
type Audited interface {
	// Stamp sets the audit fields of a row about to be inserted.
	Stamp(now time.Time)
	// UpdatedColumn names the column bumped by every update.
	UpdatedColumn() string
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time
