package updraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name string
}

type greeter interface {
	Greet() string
}

type fakeGreeter struct{}

func (fakeGreeter) Greet() string { return "hi" }

func TestContextRegisterLookup(t *testing.T) {
	ctx := NewContext()
	require.NoError(t, ctx.Register(&fakeService{name: "a"}))

	got, ok := Lookup[*fakeService](ctx)
	require.True(t, ok)
	assert.Equal(t, "a", got.name)

	_, ok = Lookup[string](ctx)
	assert.False(t, ok)
}

func TestContextRegisterReplaces(t *testing.T) {
	ctx := NewContext()
	require.NoError(t, ctx.Register(&fakeService{name: "a"}))
	require.NoError(t, ctx.Register(&fakeService{name: "b"}))

	got, ok := Lookup[*fakeService](ctx)
	require.True(t, ok)
	assert.Equal(t, "b", got.name)
}

func TestContextInterfaceLookup(t *testing.T) {
	ctx := NewContext()
	require.NoError(t, ctx.Register(fakeGreeter{}))

	got, ok := Lookup[greeter](ctx)
	require.True(t, ok)
	assert.Equal(t, "hi", got.Greet())
}

type loudGreeter struct{}

func (loudGreeter) Greet() string { return "HI" }

func TestContextInterfaceLookupPrefersFirstRegistered(t *testing.T) {
	first := NewContext()
	require.NoError(t, first.Register(fakeGreeter{}))
	require.NoError(t, first.Register(loudGreeter{}))

	got, ok := Lookup[greeter](first)
	require.True(t, ok)
	assert.Equal(t, "hi", got.Greet())

	// Registration order decides, not type identity.
	second := NewContext()
	require.NoError(t, second.Register(loudGreeter{}))
	require.NoError(t, second.Register(fakeGreeter{}))

	got, ok = Lookup[greeter](second)
	require.True(t, ok)
	assert.Equal(t, "HI", got.Greet())
}

func TestContextSealedAfterBuild(t *testing.T) {
	ctx := NewContext()
	require.NoError(t, ctx.Register(&fakeService{}))

	NewDispatcher().Build(ctx)

	err := ctx.Register(&fakeService{})
	require.ErrorIs(t, err, ErrContextSealed)

	// Registered services stay readable after sealing.
	_, ok := Lookup[*fakeService](ctx)
	assert.True(t, ok)

	assert.Panics(t, func() { ctx.MustRegister(&fakeService{}) })
}
