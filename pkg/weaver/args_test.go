package weaver

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/validation"
)

func TestResolveArgs_BodyKeyAndRequest(t *testing.T) {
	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{"id": 42})
	req := RequestFrom(ctx)

	args, err := ResolveArgs([]ArgSource{Body("id"), Req()}, req, nil)
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, float64(42), args[0])
	assert.Same(t, req, args[1])
}

func TestResolveArgs_Sources(t *testing.T) {
	ctx := newFakeContext(http.MethodGet, "/users/7").
		withParam("id", "7").
		withQuery("page", "2").
		withQuery("tag", "a", "b")
	ctx.headers.Set("X-Token", "secret")
	req := RequestFrom(ctx)
	next := NextFunc(func(...error) error { return nil })

	args, err := ResolveArgs([]ArgSource{
		Param("id"),
		Query(),
		Header("x-token"),
		Res(),
		Next(),
		{},
		Custom(func(r *Request, key string) (interface{}, error) {
			return "custom:" + key, nil
		}, "k"),
	}, req, next)
	require.NoError(t, err)

	assert.Equal(t, "7", args[0])
	assert.Equal(t, map[string]interface{}{"page": "2", "tag": []interface{}{"a", "b"}}, args[1])
	assert.Equal(t, "secret", args[2])
	assert.Same(t, ctx.res, args[3])
	assert.NotNil(t, args[4])
	assert.Nil(t, args[5])
	assert.Equal(t, "custom:k", args[6])
}

func TestResolveArgs_PrefersValidatedData(t *testing.T) {
	ctx := newFakeContext(http.MethodPost, "/").withJSON(map[string]interface{}{"name": "raw", "extra": true})
	req := RequestFrom(ctx)
	req.SetValidated(validation.Body, map[string]interface{}{"name": "clean"})

	args, err := ResolveArgs([]ArgSource{Body()}, req, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "clean"}, args[0])
}

func TestResolveArgs_InvalidResolver(t *testing.T) {
	req := RequestFrom(newFakeContext(http.MethodGet, "/"))

	_, err := ResolveArgs([]ArgSource{{Kind: ArgCustom}}, req, nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid param resolver", err.Error())
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = ResolveArgs([]ArgSource{{Kind: ArgKind(99)}}, req, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestResolveArgs_MalformedBody(t *testing.T) {
	ctx := newFakeContext(http.MethodPost, "/")
	ctx.body = []byte("{not json")
	ctx.headers.Set("Content-Type", "application/json")

	_, err := ResolveArgs([]ArgSource{Body()}, RequestFrom(ctx), nil)
	assert.ErrorIs(t, err, errors.ErrBadRequest)
}

type boundUser struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestConvertArg(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		typ   reflect.Type
		want  interface{}
	}{
		{"nil is zero", nil, reflect.TypeOf(0), 0},
		{"float to int", float64(42), reflect.TypeOf(0), 42},
		{"string to int", "12", reflect.TypeOf(int64(0)), int64(12)},
		{"string to bool", "true", reflect.TypeOf(false), true},
		{"assignable", "x", reflect.TypeOf(""), "x"},
		{"map to struct", map[string]interface{}{"name": "ada", "age": "36"}, reflect.TypeOf(boundUser{}), boundUser{Name: "ada", Age: 36}},
		{"any", map[string]interface{}{"a": 1}, reflect.TypeOf((*interface{})(nil)).Elem(), map[string]interface{}{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertArg(tt.value, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Interface())
		})
	}
}

func TestConvertArg_Mismatch(t *testing.T) {
	_, err := convertArg([]interface{}{"a"}, reflect.TypeOf(boundUser{}))
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestConvertArg_LossyNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		typ   reflect.Type
	}{
		{"fraction to int", 1.9, reflect.TypeOf(0)},
		{"fraction to int64", float32(2.5), reflect.TypeOf(int64(0))},
		{"negative to uint", float64(-3), reflect.TypeOf(uint(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convertArg(tt.value, tt.typ)
			assert.ErrorIs(t, err, errors.ErrInvalidArgument)
		})
	}

	got, err := convertArg(1.5, reflect.TypeOf(float32(0)))
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), got.Interface())
}

func TestArgSource_String(t *testing.T) {
	assert.Equal(t, "body(id)", Body("id").String())
	assert.Equal(t, "request", Req().String())
	assert.Equal(t, "unset", ArgSource{}.String())
}
