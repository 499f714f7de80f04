/*
 * Copyright 2026 romakot321.
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

package types

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// SchemaField is one column value extracted from a schema struct.
type SchemaField struct {
	Column string
	Value  interface{}
}

// SchemaFields extracts column values from a schema struct or pointer to one.
// A schema is a plain struct whose fields map onto entity columns: the column
// name is taken from the first token of the bun tag, then the json tag, and
// falls back to the snake_case field name. Nil pointer fields are treated as
// absent and skipped; non-nil pointers are dereferenced.
func SchemaFields(schema interface{}) ([]SchemaField, error) {
	if schema == nil {
		return nil, nil
	}
	v := reflect.ValueOf(schema)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema must be a struct, got %T", schema)
	}

	t := v.Type()
	fields := make([]SchemaField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		column := columnName(sf)
		if column == "" {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		fields = append(fields, SchemaField{Column: column, Value: fv.Interface()})
	}
	return fields, nil
}

// ApplyFields sets the given column values on an entity struct pointer and
// reports whether any field value actually changed. Columns are resolved the
// same way as in SchemaFields. An unknown column or an unassignable value is
// an error.
func ApplyFields(entity interface{}, fields []SchemaField) (bool, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false, fmt.Errorf("entity must be a non-nil struct pointer, got %T", entity)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return false, fmt.Errorf("entity must point to a struct, got %T", entity)
	}

	byColumn := make(map[string]reflect.Value, v.NumField())
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		if column := columnName(sf); column != "" {
			byColumn[column] = v.Field(i)
		}
	}

	modified := false
	for _, f := range fields {
		fv, ok := byColumn[f.Column]
		if !ok {
			return modified, fmt.Errorf("entity %s has no column %q", t.Name(), f.Column)
		}
		val := reflect.ValueOf(f.Value)
		if fv.Kind() == reflect.Pointer && val.Kind() != reflect.Pointer {
			p := reflect.New(fv.Type().Elem())
			p.Elem().Set(val)
			val = p
		}
		if !val.Type().AssignableTo(fv.Type()) {
			if !val.Type().ConvertibleTo(fv.Type()) {
				return modified, fmt.Errorf("cannot assign %s to column %q (%s)",
					val.Type(), f.Column, fv.Type())
			}
			val = val.Convert(fv.Type())
		}
		if !reflect.DeepEqual(fv.Interface(), val.Interface()) {
			modified = true
		}
		fv.Set(val)
	}
	return modified, nil
}

func columnName(sf reflect.StructField) string {
	for _, key := range []string{"bun", "json"} {
		tag, ok := sf.Tag.Lookup(key)
		if !ok {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return toSnake(sf.Name)
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
