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

package validation

import (
	"errors"
	"fmt"
)

// ValidationError reports a candidate that violates a domain rule. It is
// always raised before any write reaches the store.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	subject := e.Field
	if e.Entity != "" && e.Field != "" {
		subject = e.Entity + "." + e.Field
	} else if e.Entity != "" {
		subject = e.Entity
	}
	if subject == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", subject, e.Message)
}

// Errorf builds a ValidationError on field with a formatted message.
func Errorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err, or anything it wraps or joins, is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError returns the first ValidationError found in err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Fields returns every ValidationError joined into err, in order.
func Fields(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}

// Report collects the outcome of several checks for one entity.
//
// Validation failures are accumulated and joined. Any other error, typically a
// storage failure raised by a query-based check, wins over them and is returned
// unchanged.
type Report struct {
	entity string
	failed []error
	fatal  error
}

// NewReport starts an empty report for entity.
func NewReport(entity string) *Report {
	return &Report{entity: entity}
}

// Add records err. Nil is ignored.
func (r *Report) Add(err error) *Report {
	if err == nil || r.fatal != nil {
		return r
	}
	fields := Fields(err)
	if len(fields) == 0 {
		r.fatal = err
		return r
	}
	for _, ve := range fields {
		if ve.Entity == "" {
			ve.Entity = r.entity
		}
		r.failed = append(r.failed, ve)
	}
	return r
}

// Err returns nil when every check passed.
func (r *Report) Err() error {
	if r.fatal != nil {
		return r.fatal
	}
	if len(r.failed) == 1 {
		return r.failed[0]
	}
	return errors.Join(r.failed...)
}

// All joins the outcome of checks for entity. See Report.
func All(entity string, checks ...error) error {
	r := NewReport(entity)
	for _, err := range checks {
		r.Add(err)
	}
	return r.Err()
}
