package weaver

import (
	"fmt"
	"reflect"

	"github.com/toyz/weaver/pkg/metadata"
	"github.com/toyz/weaver/pkg/validation"
)

// SchemaField is the ordered constraint list of one field path
type SchemaField struct {
	Path        string
	Constraints []validation.Constraint
}

func cloneSchema(fields []SchemaField) []SchemaField {
	out := make([]SchemaField, len(fields))
	for i, f := range fields {
		out[i] = SchemaField{Path: f.Path, Constraints: append([]validation.Constraint(nil), f.Constraints...)}
	}
	return out
}

// appendConstraints adds constraints to the field at path, creating it at
// the end of the schema when missing
func appendConstraints(fields []SchemaField, path string, constraints ...validation.Constraint) []SchemaField {
	for i := range fields {
		if fields[i].Path == path {
			fields[i].Constraints = append(fields[i].Constraints, constraints...)
			return fields
		}
	}
	return append(fields, SchemaField{Path: path, Constraints: append([]validation.Constraint(nil), constraints...)})
}

// GetSchema returns a copy of the field constraints of class
func GetSchema(class *metadata.Class) []SchemaField {
	fields, _ := metadata.Lookup[[]SchemaField](metadata.Default(), metadata.KeySchema, metadata.Instance(class))
	return cloneSchema(fields)
}

// SetSchema stores the field constraints of class
func SetSchema(class *metadata.Class, fields []SchemaField) {
	metadata.Default().Set(metadata.KeySchema, metadata.Instance(class), fields)
}

// GetSchemaLocation returns the declared location of a validation object
func GetSchemaLocation(class *metadata.Class) (validation.Location, bool) {
	return metadata.Lookup[validation.Location](metadata.Default(), metadata.KeySchemaLocation, metadata.Instance(class))
}

// GetOneOfs returns the OneOf groups of class
func GetOneOfs(class *metadata.Class) []validation.OneOfGroup {
	groups, _ := metadata.Lookup[[]validation.OneOfGroup](metadata.Default(), metadata.KeyOneOfSchema, metadata.Instance(class))
	return append([]validation.OneOfGroup(nil), groups...)
}

// Constraint appends constraints to field of class
func Constraint(class *metadata.Class, field string, constraints ...validation.Constraint) {
	SetSchema(class, appendConstraints(GetSchema(class), field, constraints...))
}

// NestedOptions customizes NestedConstraint
type NestedOptions struct {
	// Array nests the child under field.*.sub instead of field.sub
	Array bool
	// ExtraRules appends one constraint to the named child fields
	ExtraRules map[string]validation.Constraint
	// If guards every copied constraint
	If validation.Guard
}

// NestedConstraint copies the schema of child below field of class. The
// child's schema is left untouched.
func NestedConstraint(class *metadata.Class, field string, child *metadata.Class, opts ...NestedOptions) {
	var opt NestedOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	linker := "."
	if opt.Array {
		linker = "." + validation.Wildcard + "."
	}

	fields := GetSchema(class)
	for _, f := range GetSchema(child) {
		constraints := f.Constraints
		if extra, ok := opt.ExtraRules[f.Path]; ok {
			constraints = append(constraints, extra)
		}
		if opt.If != nil {
			for i := range constraints {
				constraints[i] = constraints[i].If(opt.If)
			}
		}
		fields = appendConstraints(fields, field+linker+f.Path, constraints...)
	}
	SetSchema(class, fields)
}

// OneOf registers an alternation on class
func OneOf(class *metadata.Class, message string, alternatives ...[]validation.Chain) {
	groups := append(GetOneOfs(class), validation.OneOf(message, alternatives...))
	metadata.Default().Set(metadata.KeyOneOfSchema, metadata.Instance(class), groups)
}

// ValidationObject declares the location of class. With a parent, the
// parent's fields come first and fields the class redeclares are appended
// to; the parent's OneOf groups precede the class's own.
func ValidationObject(class *metadata.Class, loc validation.Location, parent ...*metadata.Class) error {
	if len(parent) > 0 && parent[0] != nil {
		p := parent[0]
		if !class.SetParent(p) {
			return fmt.Errorf("validation object %s cannot extend %s: inheritance cycle", class.Name(), p.Name())
		}
		merged := GetSchema(p)
		for _, f := range GetSchema(class) {
			merged = appendConstraints(merged, f.Path, f.Constraints...)
		}
		SetSchema(class, merged)

		groups := append(GetOneOfs(p), GetOneOfs(class)...)
		metadata.Default().Set(metadata.KeyOneOfSchema, metadata.Instance(class), groups)
	}
	metadata.Default().Set(metadata.KeySchemaLocation, metadata.Instance(class), loc)
	return nil
}

// ValidationObjectBuilder declares the schema of T
type ValidationObjectBuilder[T any] struct {
	class *metadata.Class
	errs  []error
}

// NewValidationObject starts the declaration of validation object T
func NewValidationObject[T any]() *ValidationObjectBuilder[T] {
	return &ValidationObjectBuilder[T]{class: metadata.ClassOf[T]()}
}

// Constraint appends constraints to field
func (b *ValidationObjectBuilder[T]) Constraint(field string, constraints ...validation.Constraint) *ValidationObjectBuilder[T] {
	Constraint(b.class, field, constraints...)
	return b
}

// Rules appends the constraints of a rule expression to field
func (b *ValidationObjectBuilder[T]) Rules(field, expr string) *ValidationObjectBuilder[T] {
	constraints, err := validation.ParseRules(expr)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s.%s: %w", b.class.Name(), field, err))
		return b
	}
	return b.Constraint(field, constraints...)
}

// NestedConstraint copies child's schema below field
func (b *ValidationObjectBuilder[T]) NestedConstraint(field string, child *metadata.Class, opts ...NestedOptions) *ValidationObjectBuilder[T] {
	NestedConstraint(b.class, field, child, opts...)
	return b
}

// OneOf registers an alternation
func (b *ValidationObjectBuilder[T]) OneOf(message string, alternatives ...[]validation.Chain) *ValidationObjectBuilder[T] {
	OneOf(b.class, message, alternatives...)
	return b
}

// ValidationObject finishes the declaration
func (b *ValidationObjectBuilder[T]) ValidationObject(loc validation.Location, parent ...*metadata.Class) (*metadata.Class, error) {
	if len(b.errs) > 0 {
		return b.class, b.errs[0]
	}
	return b.class, ValidationObject(b.class, loc, parent...)
}

// MustValidationObject is like ValidationObject but panics on error
func (b *ValidationObjectBuilder[T]) MustValidationObject(loc validation.Location, parent ...*metadata.Class) *metadata.Class {
	class, err := b.ValidationObject(loc, parent...)
	if err != nil {
		panic(err)
	}
	return class
}

// ValidationObjectFromStruct declares T from its `rules` struct tags
func ValidationObjectFromStruct[T any](loc validation.Location, parent ...*metadata.Class) (*metadata.Class, error) {
	b := NewValidationObject[T]()
	fields, err := validation.FieldsFromStruct(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return b.class, err
	}
	for _, f := range fields {
		b.Constraint(f.Path, f.Constraints...)
	}
	return b.ValidationObject(loc, parent...)
}

// GetSchemaValidators compiles the schemas of classes. Every class must be
// a validation object. OneOf groups of a class compile before its fields.
func GetSchemaValidators(classes ...*metadata.Class) ([]validation.Validator, []validation.Location, error) {
	var (
		validators []validation.Validator
		locations  []validation.Location
		seen       = make(map[validation.Location]bool)
	)
	for _, class := range classes {
		loc, ok := GetSchemaLocation(class)
		if !ok {
			return nil, nil, fmt.Errorf("%s is not a ValidationObject", class.Name())
		}
		if !seen[loc] {
			seen[loc] = true
			locations = append(locations, loc)
		}
		for _, group := range GetOneOfs(class) {
			validators = append(validators, validation.CompileOneOf(group, loc))
		}
		for _, f := range GetSchema(class) {
			for _, c := range f.Constraints {
				validators = append(validators, validation.NewFieldValidator(loc, f.Path, c))
			}
		}
	}
	return validators, locations, nil
}
