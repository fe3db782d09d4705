// Package storage holds the connection lifecycle shared by the storage
// adapters: configuration with defaults, a connection per adapter and an
// optional process wide default adapter.
package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
)

var (
	// ErrNotInitialized is returned when a connection is requested before Initialize
	ErrNotInitialized = stderrors.New("storage adapter is not initialized")
	// ErrNoConnection is returned by Ensure when neither the given adapter nor a default is usable
	ErrNoConnection = stderrors.New("pass an initialized adapter or initialize a default connection")
)

// Factory opens the connection of an adapter
type Factory[T any, C any] func(ctx context.Context, cfg C) (T, error)

// Closer releases a connection
type Closer[T any] func(conn T) error

// Option changes the configuration before a connection is opened
type Option[C any] func(cfg *C)

// Adapter owns one connection of type T configured by C
type Adapter[T any, C any] struct {
	name     string
	defaults C
	open     Factory[T, C]
	close    Closer[T]

	mu    sync.RWMutex
	cfg   C
	conn  T
	ready bool
}

// NewAdapter creates an adapter. close may be nil.
func NewAdapter[T any, C any](name string, defaults C, open Factory[T, C], close Closer[T]) *Adapter[T, C] {
	return &Adapter[T, C]{name: name, defaults: defaults, open: open, close: close, cfg: defaults}
}

// Name returns the adapter name
func (a *Adapter[T, C]) Name() string {
	return a.name
}

// Initialize applies opts over the defaults and opens the connection. An
// open connection is closed first.
func (a *Adapter[T, C]) Initialize(ctx context.Context, opts ...Option[C]) error {
	cfg := a.defaults
	for _, opt := range opts {
		opt(&cfg)
	}
	return a.initialize(ctx, cfg)
}

func (a *Adapter[T, C]) initialize(ctx context.Context, cfg C) error {
	conn, err := a.open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: open connection: %w", a.name, err)
	}

	a.mu.Lock()
	prev, hadPrev := a.conn, a.ready
	a.cfg, a.conn, a.ready = cfg, conn, true
	a.mu.Unlock()

	if hadPrev && a.close != nil {
		_ = a.close(prev)
	}
	return nil
}

// Config returns the configuration of the last Initialize
func (a *Adapter[T, C]) Config() C {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Ready reports whether the adapter holds an open connection
func (a *Adapter[T, C]) Ready() bool {
	if a == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

// Connection returns the open connection
func (a *Adapter[T, C]) Connection() (T, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.ready {
		var zero T
		return zero, fmt.Errorf("%s: %w", a.name, ErrNotInitialized)
	}
	return a.conn, nil
}

// Clone opens a second connection with the current configuration
// overridden by opts
func (a *Adapter[T, C]) Clone(ctx context.Context, opts ...Option[C]) (*Adapter[T, C], error) {
	cfg := a.Config()
	for _, opt := range opts {
		opt(&cfg)
	}
	clone := NewAdapter(a.name, a.defaults, a.open, a.close)
	if err := clone.initialize(ctx, cfg); err != nil {
		return nil, err
	}
	return clone, nil
}

// Close releases the connection. Closing an adapter that is not
// initialized is a no-op.
func (a *Adapter[T, C]) Close() error {
	a.mu.Lock()
	conn, ready := a.conn, a.ready
	var zero T
	a.conn, a.ready = zero, false
	a.mu.Unlock()

	if !ready || a.close == nil {
		return nil
	}
	return a.close(conn)
}

// DefaultHandle holds the default adapter of one storage kind
type DefaultHandle[T any, C any] struct {
	mu      sync.RWMutex
	adapter *Adapter[T, C]
}

// Set makes adapter the default
func (h *DefaultHandle[T, C]) Set(adapter *Adapter[T, C]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adapter = adapter
}

// Get returns the default adapter, nil when none is set
func (h *DefaultHandle[T, C]) Get() *Adapter[T, C] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.adapter
}

// Reset clears the default and returns the previous one
func (h *DefaultHandle[T, C]) Reset() *Adapter[T, C] {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.adapter
	h.adapter = nil
	return prev
}

// Ensure returns the connection of adapter when it is initialized, the
// connection of the default adapter otherwise
func (h *DefaultHandle[T, C]) Ensure(adapter *Adapter[T, C]) (T, error) {
	if adapter.Ready() {
		return adapter.Connection()
	}
	if def := h.Get(); def.Ready() {
		return def.Connection()
	}
	var zero T
	return zero, ErrNoConnection
}
