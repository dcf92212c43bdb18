package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/configo/node"
)

func noop(ctx context.Context) (any, error) { return nil, nil }

func newCallable(name string) *node.Callable {
	return node.MustCallable(noop, node.WithName(name))
}

type fakeModule struct {
	symbols []Symbol
}

func (m *fakeModule) Register(r *Registry) error {
	return r.RegisterEach(m.symbols...)
}

func TestRegisterAndResolve(t *testing.T) {
	t.Parallel()
	r := New()
	add := newCallable("add")
	relu := newCallable("ReLU")

	require.NoError(t, r.Register("arith.add", add))
	require.NoError(t, r.Register("layers.nn.ReLU", relu))

	got, err := r.Resolve("arith.add")
	require.NoError(t, err)
	assert.Same(t, add, got)

	got, err = r.Resolve("layers.nn.ReLU")
	require.NoError(t, err)
	assert.Same(t, relu, got)

	assert.Equal(t, 2, r.Len())
}

func TestBuiltinNamespace(t *testing.T) {
	t.Parallel()
	r := New()
	p := newCallable("print")
	require.NoError(t, r.Register("print", p))

	t.Run("bare name resolves", func(t *testing.T) {
		got, err := r.Resolve("print")
		require.NoError(t, err)
		assert.Same(t, p, got)
	})

	t.Run("qualified name resolves", func(t *testing.T) {
		got, err := r.Resolve("builtins.print")
		require.NoError(t, err)
		assert.Same(t, p, got)
	})

	t.Run("reverse lookup reports bare name", func(t *testing.T) {
		ref, err := r.NameOf(p)
		require.NoError(t, err)
		assert.Equal(t, "print", ref)
	})

	t.Run("unknown builtin", func(t *testing.T) {
		_, err := r.Resolve("nope")
		var symErr *SymbolResolutionError
		require.ErrorAs(t, err, &symErr)
		assert.Equal(t, "nope", symErr.Segment)
		assert.True(t, symErr.Symbol)
		assert.ErrorContains(t, err, "builtins namespace")
	})
}

func TestNameOf(t *testing.T) {
	t.Parallel()
	r := New()
	add := newCallable("add")
	require.NoError(t, r.Register("arith.add", add))

	ref, err := r.NameOf(add)
	require.NoError(t, err)
	assert.Equal(t, "arith.add", ref)

	_, err = r.NameOf(newCallable("arith.Stray"))
	require.ErrorIs(t, err, ErrSymbolResolution)
	assert.EqualError(t, err, "callable arith.Stray is not registered")
	assert.NotContains(t, err.Error(), BuiltinNamespace)
}

func TestRegisterErrors(t *testing.T) {
	t.Parallel()

	t.Run("duplicate reference", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("arith.add", newCallable("a")))
		err := r.Register("arith.add", newCallable("b"))
		assert.ErrorIs(t, err, ErrDuplicateSymbol)
	})

	t.Run("same callable twice", func(t *testing.T) {
		r := New()
		c := newCallable("a")
		require.NoError(t, r.Register("arith.add", c))
		err := r.Register("arith.plus", c)
		assert.ErrorIs(t, err, ErrDuplicateSymbol)
		assert.ErrorContains(t, err, `"arith.add"`)
	})

	t.Run("malformed references", func(t *testing.T) {
		r := New()
		for _, ref := range []string{"", "arith..add", ".add", "arith."} {
			err := r.Register(ref, newCallable("x"))
			assert.ErrorIs(t, err, ErrInvalidReference, "ref %q", ref)
		}
	})

	t.Run("nil callable", func(t *testing.T) {
		err := New().Register("arith.add", nil)
		assert.ErrorIs(t, err, ErrInvalidReference)
	})

	t.Run("must register panics", func(t *testing.T) {
		r := New()
		r.MustRegister("arith.add", newCallable("a"))
		assert.Panics(t, func() { r.MustRegister("arith.add", newCallable("b")) })
	})
}

func TestResolveReportsFirstUnresolvedSegment(t *testing.T) {
	t.Parallel()
	r := New()
	require.NoError(t, r.Register("layers.nn.Linear", newCallable("Linear")))

	testCases := []struct {
		name    string
		ref     string
		segment string
		module  string
		symbol  bool
	}{
		{name: "unknown root module", ref: "torch.nn.Linear", segment: "torch"},
		{name: "unknown submodule", ref: "layers.optim.SGD", segment: "optim", module: "layers"},
		{name: "unknown symbol", ref: "layers.nn.Conv2d", segment: "Conv2d", module: "layers.nn", symbol: true},
		{name: "module is not a symbol", ref: "layers.nn", segment: "nn", module: "layers", symbol: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(tc.ref)
			require.ErrorIs(t, err, ErrSymbolResolution)

			var symErr *SymbolResolutionError
			require.True(t, errors.As(err, &symErr))
			assert.Equal(t, tc.ref, symErr.Ref)
			assert.Equal(t, tc.segment, symErr.Segment)
			assert.Equal(t, tc.module, symErr.Module)
			assert.Equal(t, tc.symbol, symErr.Symbol)
			assert.Contains(t, err.Error(), tc.segment)
		})
	}
}

func TestResolveBelowASymbol(t *testing.T) {
	t.Parallel()
	r := New()
	require.NoError(t, r.Register("arith.add", newCallable("add")))
	require.NoError(t, r.Register("print", newCallable("print")))

	testCases := []struct {
		ref     string
		within  string
		segment string
	}{
		{ref: "arith.add.extra", within: "arith.add", segment: "extra"},
		{ref: "arith.add.extra.more", within: "arith.add", segment: "extra"},
		{ref: "print.x", within: "print", segment: "x"},
	}
	for _, tc := range testCases {
		t.Run(tc.ref, func(t *testing.T) {
			_, err := r.Resolve(tc.ref)

			var symErr *SymbolResolutionError
			require.ErrorAs(t, err, &symErr)
			assert.Equal(t, tc.within, symErr.Within)
			assert.Equal(t, tc.segment, symErr.Segment)
			assert.Contains(t, err.Error(), "is a symbol and has no member")
			assert.NotContains(t, err.Error(), "module")
		})
	}
}

func TestRegisterModules(t *testing.T) {
	t.Parallel()

	t.Run("registers every module", func(t *testing.T) {
		r := New()
		err := r.RegisterModules(
			&fakeModule{symbols: []Symbol{{Ref: "a.one", Callable: newCallable("one")}}},
			&fakeModule{symbols: []Symbol{{Ref: "b.two", Callable: newCallable("two")}}},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.one", "b.two"}, r.Refs())
	})

	t.Run("collects every failure", func(t *testing.T) {
		r := New()
		require.NoError(t, r.Register("a.one", newCallable("one")))

		err := r.RegisterModules(
			&fakeModule{symbols: []Symbol{
				{Ref: "a.one", Callable: newCallable("dup")},
				{Ref: "a..bad", Callable: newCallable("bad")},
				{Ref: "a.fine", Callable: newCallable("fine")},
			}},
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateSymbol)
		assert.ErrorIs(t, err, ErrInvalidReference)
		assert.Contains(t, r.Refs(), "a.fine")
	})
}
