package metadata

import (
	"reflect"
	"sync"
)

// Class identifies a registered Go type that carries metadata. Pointer
// types resolve to their element type so *T and T share one Class.
type Class struct {
	typ reflect.Type

	mu     sync.RWMutex
	parent *Class
}

var (
	classesMu sync.Mutex
	classes   = map[reflect.Type]*Class{}
)

// ClassOf returns the Class for T
func ClassOf[T any]() *Class {
	return ClassFor(reflect.TypeOf((*T)(nil)).Elem())
}

// ClassFor returns the Class for t, creating it on first use
func ClassFor(t reflect.Type) *Class {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	classesMu.Lock()
	defer classesMu.Unlock()

	if c, ok := classes[t]; ok {
		return c
	}
	c := &Class{typ: t}
	classes[t] = c
	return c
}

// ClassOfValue returns the Class for the dynamic type of v
func ClassOfValue(v interface{}) *Class {
	return ClassFor(reflect.TypeOf(v))
}

// Type returns the underlying struct type
func (c *Class) Type() reflect.Type {
	return c.typ
}

// Name returns the type name
func (c *Class) Name() string {
	if c.typ.Name() != "" {
		return c.typ.Name()
	}
	return c.typ.String()
}

// String implements fmt.Stringer
func (c *Class) String() string {
	return c.typ.String()
}

// Parent returns the class this class extends, or nil
func (c *Class) Parent() *Class {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parent
}

// SetParent records an explicit extends relationship. It returns false when
// the relationship would introduce a cycle.
func (c *Class) SetParent(parent *Class) bool {
	for p := parent; p != nil; p = p.Parent() {
		if p == c {
			return false
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parent = parent
	return true
}

// Ancestors returns the chain of parents, nearest first
func (c *Class) Ancestors() []*Class {
	var out []*Class
	for p := c.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}
