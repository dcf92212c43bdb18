package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/configo/builder"
	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

func TestPrint(t *testing.T) {
	t.Parallel()

	t.Run("sorted keywords", func(t *testing.T) {
		// Arrange
		var out bytes.Buffer
		r := registry.New()
		require.NoError(t, r.RegisterModules(&Module{Out: &out}))
		p, err := r.Resolve("print")
		require.NoError(t, err)
		n := node.New(false, node.Obj(p), node.KV("zeta", 1), node.KV("alpha", "x"))

		// Act
		got, err := builder.Build(context.Background(), n)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "      alpha = x\n      zeta = 1\n", out.String())
		assert.Equal(t, map[string]any{"alpha": "x", "zeta": 1}, got)
	})

	t.Run("no arguments", func(t *testing.T) {
		var out bytes.Buffer
		m := &Module{Out: &out}

		got, err := m.Print(context.Background(), &node.Call{})

		require.NoError(t, err)
		assert.Equal(t, "      (null)\n", out.String())
		assert.Empty(t, got)
	})

	t.Run("registered as builtin", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.RegisterModules(&Module{}))
		assert.Equal(t, []string{"print"}, r.Refs())
	})
}
