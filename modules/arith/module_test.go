package arith

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/configo/builder"
	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.RegisterModules(&Module{}))
	return r
}

func resolve(t *testing.T, r *registry.Registry, ref string) *node.Callable {
	t.Helper()
	c, err := r.Resolve(ref)
	require.NoError(t, err)
	return c
}

func TestRegister(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)
	assert.Equal(t, []string{"arith.add", "arith.divide", "arith.multiply", "arith.subtract", "arith.sum"}, r.Refs())
}

func TestNestedArithmetic(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)
	add, subtract, multiply := resolve(t, r, "arith.add"), resolve(t, r, "arith.subtract"), resolve(t, r, "arith.multiply")

	// Arrange
	n := node.New(true,
		node.Obj(add),
		node.KV("a", 10),
		node.KV("b", node.New(true,
			node.Obj(subtract),
			node.KV("a", 10),
			node.KV("b", node.New(false, node.Obj(multiply), node.KV("a", 4), node.KV("b", 2))),
		)),
	)

	// Act
	got, err := builder.Build(context.Background(), n)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 12.0, got)
}

func TestDivide(t *testing.T) {
	t.Parallel()

	got, err := Divide(context.Background(), &Operands{A: 9, B: 3})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	_, err = Divide(context.Background(), &Operands{A: 1})
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSum(t *testing.T) {
	t.Parallel()
	r := newRegistry(t)
	sum := resolve(t, r, "arith.sum")

	t.Run("positional and start", func(t *testing.T) {
		n := node.New(false, node.Obj(sum), node.KV("start", 100), node.Args(1, int64(2), 3.5))

		got, err := builder.Build(context.Background(), n, builder.WithArgs(10))

		require.NoError(t, err)
		assert.Equal(t, 116.5, got)
	})

	t.Run("rejects non-numbers and unknown keywords", func(t *testing.T) {
		_, err := builder.Build(context.Background(), node.New(false, node.Obj(sum), node.Args("x")))
		assert.ErrorIs(t, err, node.ErrBadArguments)

		_, err = builder.Build(context.Background(), node.New(false, node.Obj(sum), node.KV("stop", 1)))
		assert.ErrorIs(t, err, node.ErrBadArguments)
	})
}
