package updraft

import (
	"reflect"
	"sync/atomic"
)

// Context is a type-indexed registry of shared service instances: the API
// client, a session manager, application services.
//
// Services are registered while the application is being assembled. Building
// a Dispatcher seals the context; after that it is read-only and safe to
// share across concurrently dispatched updates without locking.
type Context struct {
	items map[reflect.Type]any
	// order keeps registration order so interface lookups are
	// deterministic.
	order  []reflect.Type
	sealed atomic.Bool
}

// NewContext creates an empty service context.
func NewContext() *Context {
	return &Context{items: make(map[reflect.Type]any)}
}

// Register stores value under its dynamic type, replacing any previous value
// of the same type. It returns ErrContextSealed once a Dispatcher has been
// built from this context.
func (c *Context) Register(value any) error {
	if c.sealed.Load() {
		return ErrContextSealed
	}
	t := reflect.TypeOf(value)
	if _, exists := c.items[t]; !exists {
		c.order = append(c.order, t)
	}
	c.items[t] = value
	return nil
}

// MustRegister is Register that panics on a sealed context.
// Intended for application assembly where registration cannot fail.
func (c *Context) MustRegister(value any) {
	if err := c.Register(value); err != nil {
		panic(err)
	}
}

func (c *Context) seal() {
	c.sealed.Store(true)
}

func (c *Context) lookup(t reflect.Type) (any, bool) {
	v, ok := c.items[t]
	return v, ok
}

// Lookup returns the registered service of type T. When T is an interface,
// the first registered service implementing it is returned.
func Lookup[T any](c *Context) (T, bool) {
	want := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := c.lookup(want); ok {
		return v.(T), true
	}
	if want.Kind() == reflect.Interface {
		for _, t := range c.order {
			if t.Implements(want) {
				return c.items[t].(T), true
			}
		}
	}
	var zero T
	return zero, false
}
