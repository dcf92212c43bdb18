package layers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/configo/builder"
	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

func TestSequentialReceivesLayersInOrder(t *testing.T) {
	t.Parallel()
	// Arrange
	r := registry.New()
	require.NoError(t, r.RegisterModules(&Module{}))
	linear, err := r.Resolve("layers.Linear")
	require.NoError(t, err)
	relu, err := r.Resolve("layers.ReLU")
	require.NoError(t, err)
	sequential, err := r.Resolve("layers.Sequential")
	require.NoError(t, err)

	n := node.New(true,
		node.Obj(sequential),
		node.Args(
			node.New(false, node.Obj(linear), node.KV("in_features", 4), node.KV("out_features", 3)),
			node.New(false, node.Obj(relu)),
			node.New(false, node.Obj(linear), node.KV("in_features", 3), node.KV("out_features", 2)),
		),
	)

	// Act
	built, err := builder.Build(context.Background(), n)

	// Assert
	require.NoError(t, err)
	seq, ok := built.(*Sequential)
	require.True(t, ok)
	require.Len(t, seq.Layers, 3)
	assert.Equal(t, "Sequential(Linear(in_features=4, out_features=3), ReLU(), Linear(in_features=3, out_features=2))", seq.String())

	y, err := seq.Forward([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Len(t, y, 2)
}

func TestLinear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l, err := NewLinear(ctx, &LinearInput{InFeatures: 2, OutFeatures: 2})
	require.NoError(t, err)

	y, err := l.Forward([]float64{1, 1})
	require.NoError(t, err)
	// Rows are [0, 0.1] and [0.2, -0.1] with biases 0 and 0.1.
	assert.InDeltaSlice(t, []float64{0.1, 0.2}, y, 1e-9)

	_, err = l.Forward([]float64{1})
	assert.ErrorIs(t, err, ErrShape)

	noBias := false
	l, err = NewLinear(ctx, &LinearInput{InFeatures: 2, OutFeatures: 2, Bias: &noBias})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, l.Bias)

	_, err = NewLinear(ctx, &LinearInput{InFeatures: 0, OutFeatures: 2})
	assert.ErrorIs(t, err, node.ErrBadArguments)
}

func TestReLU(t *testing.T) {
	t.Parallel()
	y, err := ReLU{}.Forward([]float64{-1, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 2}, y)
}
