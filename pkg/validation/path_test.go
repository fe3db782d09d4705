package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	root := map[string]interface{}{
		"user": map[string]interface{}{"name": "paul"},
		"tags": []interface{}{"a", "b"},
		"meta": map[string]interface{}{"z": 1, "a": 2},
	}

	found := expand(root, "user.name")
	require.Len(t, found, 1)
	assert.Equal(t, "user.name", found[0].path())
	assert.Equal(t, "paul", found[0].value)
	assert.True(t, found[0].exists)

	found = expand(root, "tags.*")
	require.Len(t, found, 2)
	assert.Equal(t, "tags[1]", found[1].path())

	found = expand(root, "meta.*")
	require.Len(t, found, 2)
	assert.Equal(t, "meta.a", found[0].path())

	found = expand(root, "user.address.city")
	require.Len(t, found, 1)
	assert.False(t, found[0].exists)
	assert.Equal(t, "user.address.city", found[0].path())

	assert.Empty(t, expand(root, "missing.*.name"))

	found = expand(root, "tags.0")
	require.Len(t, found, 1)
	assert.Equal(t, "a", found[0].value)
}

func TestAssign(t *testing.T) {
	var out interface{} = map[string]interface{}{}
	out = assign(out, []pathKey{{name: "items"}, {index: 1, isIndex: true}, {name: "sku"}}, "B")
	out = assign(out, []pathKey{{name: "items"}, {index: 0, isIndex: true}, {name: "sku"}}, "A")

	assert.Equal(t, map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"sku": "A"},
			map[string]interface{}{"sku": "B"},
		},
	}, out)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "a.*.b", JoinPath("a", "", Wildcard, "b"))
	assert.Equal(t, "", JoinPath())
}
