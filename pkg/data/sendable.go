// Package data provides response-shaped values that controllers can return
// instead of raw bodies.
package data

import (
	"context"
	"net/http"
	"sync"
)

// Event names emitted around sending a Sendable
type Event string

const (
	EventBeforeSend Event = "beforesend"
	EventAfterSend  Event = "aftersend"
)

// Emitter dispatches send lifecycle events to listeners
type Emitter struct {
	mu        sync.RWMutex
	listeners map[Event][]func()
}

// On registers fn for event
func (e *Emitter) On(event Event, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[Event][]func())
	}
	e.listeners[event] = append(e.listeners[event], fn)
}

// Emit calls every listener of event in registration order
func (e *Emitter) Emit(event Event) {
	e.mu.RLock()
	fns := append([]func(){}, e.listeners[event]...)
	e.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// Sendable is a return value that carries its own status code and knows
// how to produce its body
type Sendable interface {
	HTTPCode() int
	Send(ctx context.Context) (interface{}, error)
	Emitter() *Emitter
}

// HTMLRenderer is a Sendable whose body is rendered markup
type HTMLRenderer interface {
	Sendable
	Render(ctx context.Context) (string, error)
}

// Redirector is a Sendable that redirects instead of writing a body
type Redirector interface {
	Sendable
	Location() string
}

// Base carries the status code and emitter shared by all sendables
type Base struct {
	code    int
	emitter Emitter
}

// HTTPCode returns the status code, 200 when unset
func (b *Base) HTTPCode() int {
	if b.code == 0 {
		return http.StatusOK
	}
	return b.code
}

// SetHTTPCode sets the status code
func (b *Base) SetHTTPCode(code int) {
	b.code = code
}

// Emitter returns the lifecycle emitter
func (b *Base) Emitter() *Emitter {
	return &b.emitter
}

// On is shorthand for Emitter().On
func (b *Base) On(event Event, fn func()) {
	b.emitter.On(event, fn)
}
