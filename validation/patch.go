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
	"math"
	"reflect"
)

// deref follows pointers of a patch value. A nil pointer reports ok=false.
func deref(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

// Int64 converts a patch value of any integer kind, or a pointer to one, to
// int64. A nil value reports ok=false. Fractional, out of range and
// non-numeric values fail with a ValidationError on field.
func Int64(field string, v any) (n int64, ok bool, err error) {
	rv, ok := deref(v)
	if !ok {
		return 0, false, nil
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false, Errorf(field, "value %d is out of range", u)
		}
		return int64(u), true, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false, Errorf(field, "must be an integer, got %v", f)
		}
		return int64(f), true, nil
	}
	return 0, false, Errorf(field, "must be an integer, got %T", v)
}

// Float64 converts a patch value of any numeric kind, or a pointer to one, to
// float64. A nil value reports ok=false.
func Float64(field string, v any) (f float64, ok bool, err error) {
	rv, ok := deref(v)
	if !ok {
		return 0, false, nil
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true, nil
	}
	return 0, false, Errorf(field, "must be a number, got %T", v)
}

// String converts a patch value of string kind, or a pointer to one.
func String(field string, v any) (s string, ok bool, err error) {
	rv, ok := deref(v)
	if !ok {
		return "", false, nil
	}
	if rv.Kind() != reflect.String {
		return "", false, Errorf(field, "must be a string, got %T", v)
	}
	return rv.String(), true, nil
}
