package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// TagName is the struct tag holding a rule expression
const TagName = "rules"

// StructField is a field path declared through struct tags
type StructField struct {
	Path        string
	Constraints []Constraint
}

var timeType = reflect.TypeOf(time.Time{})

// FieldsFromStruct reads rule expressions from the `rules` tags of t. Field
// names follow the json tag. Nested structs become dotted paths and slices
// of structs use the wildcard segment.
func FieldsFromStruct(t reflect.Type) ([]StructField, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", t)
	}
	var out []StructField
	if err := collectFields(t, "", &out, map[reflect.Type]bool{}); err != nil {
		return nil, err
	}
	return out, nil
}

func collectFields(t reflect.Type, prefix string, out *[]StructField, visiting map[reflect.Type]bool) error {
	if visiting[t] {
		return fmt.Errorf("recursive type %s cannot be flattened", t)
	}
	visiting[t] = true
	defer delete(visiting, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		// embedded structs promote their exported fields even when the
		// embedded type itself is unexported
		if f.Anonymous && ft.Kind() == reflect.Struct && f.Tag.Get("json") == "" {
			if err := collectFields(ft, prefix, out, visiting); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}

		name := fieldName(f)
		if name == "-" {
			continue
		}

		path := JoinPath(prefix, name)
		if expr, ok := f.Tag.Lookup(TagName); ok {
			constraints, err := ParseRules(expr)
			if err != nil {
				return fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
			}
			*out = append(*out, StructField{Path: path, Constraints: constraints})
		}

		switch {
		case ft.Kind() == reflect.Struct && ft != timeType:
			if err := collectFields(ft, path, out, visiting); err != nil {
				return err
			}
		case ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array:
			elem := ft.Elem()
			for elem.Kind() == reflect.Pointer {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct && elem != timeType {
				if err := collectFields(elem, JoinPath(path, Wildcard), out, visiting); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return f.Name
	}
	return name
}
