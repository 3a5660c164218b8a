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
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomoncle/aclimate/types"
)

var (
	structOnce     sync.Once
	structValidate *validator.Validate
)

func engine() *validator.Validate {
	structOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("enum", validateEnum)
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		structValidate = v
	})
	return structValidate
}

func validateEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	if !field.CanInterface() {
		return false
	}
	e, ok := field.Interface().(types.BaseEnum)
	return ok && e.IsValid()
}

// Struct checks the `validate` tags of shape and reports each failing field
// as a ValidationError of entity.
func Struct(entity string, shape any) error {
	err := engine().Struct(shape)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	r := NewReport(entity)
	for _, fe := range fieldErrs {
		r.Add(&ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return r.Err()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "min":
		return "must be at least " + fe.Param() + " long"
	case "len":
		return "must be exactly " + fe.Param() + " long"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "enum":
		return "has an invalid value"
	case "slug":
		return "must contain only lowercase letters, digits and single hyphens"
	}
	return "failed on the '" + fe.Tag() + "' rule"
}
