package storage

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memConfig struct {
	Name string
	Size int
}

type memConn struct {
	cfg    memConfig
	closed bool
}

func newMem() (*Adapter[*memConn, memConfig], *[]*memConn) {
	var opened []*memConn
	a := NewAdapter("mem", memConfig{Name: "default", Size: 1},
		func(ctx context.Context, cfg memConfig) (*memConn, error) {
			if cfg.Size < 0 {
				return nil, stderrors.New("negative size")
			}
			conn := &memConn{cfg: cfg}
			opened = append(opened, conn)
			return conn, nil
		},
		func(conn *memConn) error {
			conn.closed = true
			return nil
		})
	return a, &opened
}

func withSize(n int) Option[memConfig] {
	return func(cfg *memConfig) { cfg.Size = n }
}

func TestAdapter_Initialize(t *testing.T) {
	a, opened := newMem()
	_, err := a.Connection()
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, a.Initialize(context.Background(), withSize(5)))
	conn, err := a.Connection()
	require.NoError(t, err)
	assert.Equal(t, memConfig{Name: "default", Size: 5}, conn.cfg)
	assert.Equal(t, "mem", a.Name())

	// reinitializing closes the previous connection
	require.NoError(t, a.Initialize(context.Background()))
	require.Len(t, *opened, 2)
	assert.True(t, (*opened)[0].closed)
	assert.Equal(t, 1, a.Config().Size)
}

func TestAdapter_InitializeError(t *testing.T) {
	a, _ := newMem()
	err := a.Initialize(context.Background(), withSize(-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mem: open connection")
	assert.False(t, a.Ready())
}

func TestAdapter_Clone(t *testing.T) {
	a, opened := newMem()
	require.NoError(t, a.Initialize(context.Background(), withSize(3)))

	clone, err := a.Clone(context.Background(), func(cfg *memConfig) { cfg.Name = "clone" })
	require.NoError(t, err)
	conn, err := clone.Connection()
	require.NoError(t, err)
	assert.Equal(t, memConfig{Name: "clone", Size: 3}, conn.cfg)
	assert.Len(t, *opened, 2)

	require.NoError(t, clone.Close())
	assert.True(t, conn.closed)
	assert.True(t, a.Ready())
	assert.NoError(t, clone.Close())
}

func TestDefaultHandle_Ensure(t *testing.T) {
	var handle DefaultHandle[*memConn, memConfig]
	_, err := handle.Ensure(nil)
	assert.ErrorIs(t, err, ErrNoConnection)

	def, _ := newMem()
	require.NoError(t, def.Initialize(context.Background()))
	handle.Set(def)

	conn, err := handle.Ensure(nil)
	require.NoError(t, err)
	assert.Equal(t, "default", conn.cfg.Name)

	own, _ := newMem()
	require.NoError(t, own.Initialize(context.Background(), func(cfg *memConfig) { cfg.Name = "own" }))
	conn, err = handle.Ensure(own)
	require.NoError(t, err)
	assert.Equal(t, "own", conn.cfg.Name)

	// an uninitialized adapter falls back to the default
	idle, _ := newMem()
	conn, err = handle.Ensure(idle)
	require.NoError(t, err)
	assert.Equal(t, "default", conn.cfg.Name)

	assert.Same(t, def, handle.Reset())
	assert.Nil(t, handle.Get())
}
