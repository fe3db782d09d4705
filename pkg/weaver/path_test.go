package weaver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Parts(t *testing.T) {
	parts := NewPath("/users/{id:int}/files/{*}").Parts()
	require.Len(t, parts, 4)
	assert.Equal(t, PathPart{Type: StaticPart, Value: "/users/"}, parts[0])
	assert.Equal(t, PathPart{Type: ParameterPart, Value: "id", ParamType: "int"}, parts[1])
	assert.Equal(t, PathPart{Type: StaticPart, Value: "/files/"}, parts[2])
	assert.Equal(t, PathPart{Type: WildcardPart, Value: "*"}, parts[3])
}

func TestPath_Unterminated(t *testing.T) {
	parts := NewPath("/users/{id").Parts()
	require.Len(t, parts, 2)
	assert.Equal(t, StaticPart, parts[1].Type)
	assert.Equal(t, "{id", parts[1].Value)
}

func TestPath_ColonPath(t *testing.T) {
	tests := []struct {
		path     string
		wildcard string
		want     string
	}{
		{"/users/{id:int}", "*", "/users/:id"},
		{"/users/{id}/posts/{slug:string}", "*", "/users/:id/posts/:slug"},
		{"/static/{*}", "*path", "/static/*path"},
		{"", "*", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewPath(tt.path).ColonPath(tt.wildcard), tt.path)
	}
}

func TestPath_ParamTypes(t *testing.T) {
	types := NewPath("/{org}/{id:uuid}/{page:int}").ParamTypes()
	assert.Equal(t, map[string]string{"id": "uuid", "page": "int"}, types)
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "/", JoinPaths())
	assert.Equal(t, "/", JoinPaths("/", ""))
	assert.Equal(t, "/api/users", JoinPaths("/api/", "/users/"))
	assert.Equal(t, "/api/users/{id}", JoinPaths("api", "users", "{id}"))
}

func TestNormalizeMountPath(t *testing.T) {
	assert.Equal(t, "/users", NormalizeMountPath("users"))
	assert.Equal(t, "/users", NormalizeMountPath("/users"))
}

func TestParseParam(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name        string
		typ         string
		raw         string
		want        interface{}
		expectError bool
	}{
		{name: "untyped", typ: "", raw: "abc", want: "abc"},
		{name: "int", typ: "int", raw: "-456", want: -456},
		{name: "int alias", typ: "integer", raw: "7", want: 7},
		{name: "invalid int", typ: "int", raw: "123abc", expectError: true},
		{name: "int64", typ: "int64", raw: "9223372036854775807", want: int64(9223372036854775807)},
		{name: "float64", typ: "float", raw: "1.5", want: 1.5},
		{name: "float32", typ: "float32", raw: "2.5", want: float32(2.5)},
		{name: "bool", typ: "boolean", raw: "true", want: true},
		{name: "uuid", typ: "uuid.UUID", raw: id.String(), want: id},
		{name: "invalid uuid", typ: "uuid", raw: "nope", expectError: true},
		{name: "unknown type", typ: "money", raw: "1", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParam(tt.typ, tt.raw)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegisterParamParser(t *testing.T) {
	RegisterParamParser("upper", func(raw string) (interface{}, error) {
		return "UP:" + raw, nil
	})
	got, err := ParseParam("upper", "x")
	require.NoError(t, err)
	assert.Equal(t, "UP:x", got)
}
