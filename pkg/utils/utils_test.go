package utils

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	assert.NotPanics(t, func() { Noop(1, "a", nil) })
}

func TestNumberReference(t *testing.T) {
	before := time.Now().UnixMilli()
	ref := NumberReference()
	assert.GreaterOrEqual(t, ref, before)
	assert.LessOrEqual(t, ref, time.Now().UnixMilli())
}

func TestUniqueReference(t *testing.T) {
	ref := UniqueReference()
	parsed, err := uuid.Parse(ref)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, ref, UniqueReference())
}

func TestShortID(t *testing.T) {
	id := ShortID()
	assert.Len(t, id, 26)
	assert.NotEqual(t, id, ShortID())
}

func TestRandom(t *testing.T) {
	for _, digits := range []int{1, 4, 9, 18} {
		for i := 0; i < 50; i++ {
			assert.Len(t, strconv.FormatInt(Random(digits), 10), digits)
		}
	}
	assert.Len(t, strconv.FormatInt(Random(0), 10), 1)
	assert.Len(t, strconv.FormatInt(Random(40), 10), 18)
}
