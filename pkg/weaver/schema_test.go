package weaver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/weaver/pkg/metadata"
	"github.com/toyz/weaver/pkg/validation"
)

type schemaItem struct{}
type schemaOrder struct{}
type schemaBase struct{}
type schemaDerived struct{}
type schemaChoice struct{}
type schemaNotDeclared struct{}
type schemaGuarded struct{}
type schemaTagged struct {
	Name  string `json:"name" rules:"required|isLength(min=2)"`
	Email string `json:"email" rules:"optional|isEmail"`
}

func compile(t *testing.T, classes ...*metadata.Class) []validation.Validator {
	t.Helper()
	validators, _, err := GetSchemaValidators(classes...)
	require.NoError(t, err)
	return validators
}

func runBody(t *testing.T, body map[string]interface{}, classes ...*metadata.Class) []validation.FieldError {
	t.Helper()
	ctx := newFakeContext(http.MethodPost, "/").withJSON(body)
	result, err := RunValidators(ctx, compile(t, classes...))
	require.NoError(t, err)
	return result.Errors
}

func TestNestedConstraint_ArrayPath(t *testing.T) {
	withStore(t)
	item := NewValidationObject[schemaItem]().
		Constraint("sku", validation.Required()).
		MustValidationObject(validation.Body)
	order := NewValidationObject[schemaOrder]().
		Constraint("items", validation.IsArray(validation.Min(1))).
		NestedConstraint("items", item, NestedOptions{Array: true}).
		MustValidationObject(validation.Body)

	errs := runBody(t, map[string]interface{}{
		"items": []interface{}{map[string]interface{}{}},
	}, order)

	require.Len(t, errs, 1)
	assert.Equal(t, "items[0].sku", errs[0].Param)
	assert.Equal(t, "sku is required", errs[0].Message)

	// the child schema is not modified by nesting
	assert.Len(t, GetSchema(item), 1)
	assert.Equal(t, "sku", GetSchema(item)[0].Path)
}

func TestNestedConstraint_ObjectAndExtraRules(t *testing.T) {
	withStore(t)
	item := NewValidationObject[schemaItem]().
		Constraint("sku", validation.Required()).
		MustValidationObject(validation.Body)
	order := NewValidationObject[schemaOrder]().
		NestedConstraint("item", item, NestedOptions{
			ExtraRules: map[string]validation.Constraint{"sku": validation.IsLength(validation.Min(3))},
		}).
		MustValidationObject(validation.Body)

	fields := GetSchema(order)
	require.Len(t, fields, 1)
	assert.Equal(t, "item.sku", fields[0].Path)
	assert.Len(t, fields[0].Constraints, 2)

	errs := runBody(t, map[string]interface{}{"item": map[string]interface{}{"sku": "ab"}}, order)
	require.Len(t, errs, 1)
	assert.Equal(t, "item.sku", errs[0].Param)
}

func TestNestedConstraint_Guard(t *testing.T) {
	withStore(t)
	item := NewValidationObject[schemaItem]().
		Constraint("sku", validation.Required()).
		MustValidationObject(validation.Body)
	guarded := NewValidationObject[schemaGuarded]().
		NestedConstraint("item", item, NestedOptions{
			If: validation.GuardFunc(func(ctx context.Context, input map[string]interface{}, meta validation.Meta) (bool, error) {
				return input["kind"] == "physical", nil
			}),
		}).
		MustValidationObject(validation.Body)

	assert.Empty(t, runBody(t, map[string]interface{}{"kind": "digital"}, guarded))
	assert.Len(t, runBody(t, map[string]interface{}{"kind": "physical"}, guarded), 1)
}

func TestValidationObject_Inheritance(t *testing.T) {
	withStore(t)
	base := NewValidationObject[schemaBase]().
		Constraint("id", validation.Required()).
		Constraint("name", validation.IsString()).
		MustValidationObject(validation.Body)
	derived := NewValidationObject[schemaDerived]().
		Constraint("name", validation.IsLength(validation.Max(5))).
		Constraint("extra", validation.Optional()).
		MustValidationObject(validation.Query, base)

	fields := GetSchema(derived)
	require.Len(t, fields, 3)
	assert.Equal(t, "id", fields[0].Path)
	assert.Equal(t, "name", fields[1].Path)
	assert.Len(t, fields[1].Constraints, 2)
	assert.Equal(t, validation.KindIsString, fields[1].Constraints[0].Rule.Kind)
	assert.Equal(t, "extra", fields[2].Path)

	loc, ok := GetSchemaLocation(derived)
	require.True(t, ok)
	assert.Equal(t, validation.Query, loc)
	assert.Equal(t, base, derived.Parent())
}

func TestValidationObject_InheritanceCycle(t *testing.T) {
	withStore(t)
	a := metadata.ClassOf[schemaBase]()
	b := metadata.ClassOf[schemaDerived]()
	require.NoError(t, ValidationObject(b, validation.Body, a))
	assert.Error(t, ValidationObject(a, validation.Body, b))
}

func TestOneOf_UsesObjectLocation(t *testing.T) {
	withStore(t)
	choice := NewValidationObject[schemaChoice]().
		OneOf("Provide an email or a phone",
			validation.Alt(validation.Field("email", validation.IsEmail())),
			validation.Alt(validation.Field("phone", validation.IsNumeric())),
		).
		MustValidationObject(validation.Query)

	validators := compile(t, choice)
	require.Len(t, validators, 1)
	oneOf, ok := validators[0].(*validation.OneOfValidator)
	require.True(t, ok)
	assert.Equal(t, validation.Query, oneOf.Location())

	ctx := newFakeContext(http.MethodGet, "/").withQuery("phone", "12345")
	result, err := RunValidators(ctx, validators)
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())

	ctx = newFakeContext(http.MethodGet, "/").withQuery("phone", "abc")
	result, err = RunValidators(ctx, validators)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Provide an email or a phone", result.Errors[0].Message)
}

func TestGetSchemaValidators_Deterministic(t *testing.T) {
	withStore(t)
	item := NewValidationObject[schemaItem]().
		Rules("sku", "required|isLength(min=3)").
		Constraint("qty", validation.IsInt(validation.Min(1))).
		MustValidationObject(validation.Body)
	order := NewValidationObject[schemaOrder]().
		NestedConstraint("items", item, NestedOptions{Array: true}).
		MustValidationObject(validation.Body)

	first := validation.Describe(compile(t, order))
	second := validation.Describe(compile(t, order))
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestGetSchemaValidators_NotAValidationObject(t *testing.T) {
	withStore(t)
	_, _, err := GetSchemaValidators(metadata.ClassOf[schemaNotDeclared]())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schemaNotDeclared is not a ValidationObject")

	_, err = UseValidator(metadata.ClassOf[schemaNotDeclared]())
	assert.Error(t, err)
}

func TestValidationObjectBuilder_BadRules(t *testing.T) {
	withStore(t)
	_, err := NewValidationObject[schemaItem]().
		Rules("sku", "required|notARule").
		ValidationObject(validation.Body)
	assert.Error(t, err)
}

func TestValidationObjectFromStruct(t *testing.T) {
	withStore(t)
	class, err := ValidationObjectFromStruct[schemaTagged](validation.Body)
	require.NoError(t, err)

	fields := GetSchema(class)
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Path)

	errs := runBody(t, map[string]interface{}{"name": "a", "email": "nope"}, class)
	require.Len(t, errs, 2)
	assert.Equal(t, "name", errs[0].Param)
	assert.Equal(t, "email", errs[1].Param)
}
