package weaver

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/metadata"
	"github.com/toyz/weaver/pkg/validation"
)

type validateSignup struct{}
type validatePaging struct{}
type validateContact struct{}
type validateProfile struct{}

func signupObject(t *testing.T) *metadata.Class {
	t.Helper()
	return NewValidationObject[validateSignup]().
		Constraint("email", validation.Required(), validation.IsEmail()).
		Constraint("name", validation.Trim(), validation.IsLength(validation.Min(2))).
		Constraint("nickname", validation.Optional(), validation.IsString()).
		MustValidationObject(validation.Body)
}

func runMiddleware(t *testing.T, mw MiddlewareFunc, ctx RequestContext) (bool, error) {
	t.Helper()
	reached := false
	err := mw(func(RequestContext) error {
		reached = true
		return nil
	})(ctx)
	return reached, err
}

func TestUseValidator_RejectsInvalidInput(t *testing.T) {
	withStore(t)
	mw, err := UseValidator(signupObject(t))
	require.NoError(t, err)

	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{"name": "a"})
	reached, err := runMiddleware(t, mw, ctx)
	assert.False(t, reached)

	var appErr *errors.BaseError
	require.True(t, stderrors.As(err, &appErr))
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode())
	assert.Equal(t, []interface{}{
		map[string]interface{}{"parameter": "email", "message": "email is required"},
		map[string]interface{}{"parameter": "name", "message": validation.DefaultMessage},
	}, appErr.Fields)
}

func TestUseValidator_AllErrors(t *testing.T) {
	withStore(t)
	validators, locations, err := GetSchemaValidators(signupObject(t))
	require.NoError(t, err)
	mw := CreateValidationMiddleware(validators, locations, ValidationOptions{
		AllErrors: true,
		ErrorFormatter: func(e validation.FieldError) interface{} {
			return e.Param
		},
	})

	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{"name": "a"})
	_, err = runMiddleware(t, mw, ctx)

	var appErr *errors.BaseError
	require.True(t, stderrors.As(err, &appErr))
	// a missing email fails both the required and the email check
	assert.Equal(t, []interface{}{"email", "email", "name"}, appErr.Fields)
}

func TestUseValidator_StoresMatchedData(t *testing.T) {
	withStore(t)
	mw, err := UseValidator(signupObject(t))
	require.NoError(t, err)

	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{
		"email":   "ada@example.com",
		"name":    "  Ada  ",
		"isAdmin": true,
	})
	reached, err := runMiddleware(t, mw, ctx)
	require.NoError(t, err)
	assert.True(t, reached)

	req := RequestFrom(ctx)
	validated, ok := req.Validated(validation.Body)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{
		"email":    "ada@example.com",
		"name":     "Ada",
		"nickname": nil,
	}, validated)

	// sanitized values are written back to the raw body
	raw, err := req.Body()
	require.NoError(t, err)
	assert.Equal(t, "Ada", raw["name"])
	assert.Equal(t, true, raw["isAdmin"])

	args, err := ResolveArgs([]ArgSource{Body()}, req, nil)
	require.NoError(t, err)
	assert.NotContains(t, args[0], "isAdmin")
}

func TestUseValidatorWith_Chains(t *testing.T) {
	withStore(t)
	paging := NewValidationObject[validatePaging]().
		Constraint("page", validation.Optional(), validation.IsInt(validation.Min(1)), validation.ToInt()).
		MustValidationObject(validation.Query)

	mw, err := UseValidatorWith(ValidatorConfig{
		Objects:   []*metadata.Class{paging},
		Chains:    []validation.Chain{validation.Field("x-api-key", validation.Required())},
		Locations: []validation.Location{validation.Headers},
	})
	require.NoError(t, err)

	ctx := newFakeContext(http.MethodGet, "/").withQuery("page", "3")
	_, err = runMiddleware(t, mw, ctx)
	var appErr *errors.BaseError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, []interface{}{
		map[string]interface{}{"parameter": "x-api-key", "message": "x-api-key is required"},
	}, appErr.Fields)

	ctx = newFakeContext(http.MethodGet, "/").withQuery("page", "3")
	ctx.headers.Set("X-Api-Key", "k")
	reached, err := runMiddleware(t, mw, ctx)
	require.NoError(t, err)
	assert.True(t, reached)

	query, ok := RequestFrom(ctx).Validated(validation.Query)
	require.True(t, ok)
	assert.Equal(t, 3, query["page"])
	_, ok = RequestFrom(ctx).Validated(validation.Headers)
	assert.True(t, ok)
}

func TestUseValidator_StackedValidatorsMergeMatchedData(t *testing.T) {
	withStore(t)
	contact := NewValidationObject[validateContact]().
		Constraint("email", validation.Required(), validation.IsEmail()).
		MustValidationObject(validation.Body)
	profile := NewValidationObject[validateProfile]().
		Constraint("name", validation.Required(), validation.Trim()).
		MustValidationObject(validation.Body)

	outer, err := UseValidator(contact)
	require.NoError(t, err)
	inner, err := UseValidator(profile)
	require.NoError(t, err)

	var email, name interface{}
	h := Chain(func(ctx RequestContext) error {
		args, err := ResolveArgs([]ArgSource{Body("email"), Body("name")}, RequestFrom(ctx), nil)
		if err != nil {
			return err
		}
		email, name = args[0], args[1]
		return nil
	}, outer, inner)

	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{"email": "x@y.z", "name": " Ada "})
	require.NoError(t, h(ctx))
	assert.Equal(t, "x@y.z", email)
	assert.Equal(t, "Ada", name)

	validated, ok := RequestFrom(ctx).Validated(validation.Body)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"email": "x@y.z", "name": "Ada"}, validated)
}

func TestUseValidatorWith_Empty(t *testing.T) {
	_, err := UseValidatorWith(ValidatorConfig{})
	assert.Error(t, err)
}

func TestRunValidationMiddleware(t *testing.T) {
	withStore(t)
	signup := signupObject(t)

	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{"email": "ada@example.com", "name": "Ada"})
	require.NoError(t, RunValidationMiddleware(ctx, []*metadata.Class{signup}))

	ctx = newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{})
	assert.ErrorIs(t, RunValidationMiddleware(ctx, []*metadata.Class{signup}), errors.ErrValidation)
}

func TestSetGlobalValidationOptions(t *testing.T) {
	withStore(t)
	t.Cleanup(func() { SetGlobalValidationOptions(ValidationOptions{}) })
	SetGlobalValidationOptions(ValidationOptions{
		ErrorFormatter: func(e validation.FieldError) interface{} { return e.Message },
	})

	mw, err := UseValidator(signupObject(t))
	require.NoError(t, err)
	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{"email": "ada@example.com"})
	_, err = runMiddleware(t, mw, ctx)

	var appErr *errors.BaseError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, []interface{}{validation.InvalidTypeMessage}, appErr.Fields)
}
