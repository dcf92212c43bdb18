// Package layers provides a few toy neural network layers. They exist to
// show nested construction: a Sequential receives already built layers as its
// positional arguments.
package layers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

// ErrShape is returned when an input does not match a layer's width.
var ErrShape = errors.New("shape mismatch")

// Layer transforms a vector.
type Layer interface {
	Forward(x []float64) ([]float64, error)
	fmt.Stringer
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Linear is a dense layer y = Wx + b.
type Linear struct {
	In, Out int
	Weights [][]float64
	Bias    []float64
}

// LinearInput are the keyword arguments of NewLinear.
type LinearInput struct {
	InFeatures  int   `cfg:"in_features"`
	OutFeatures int   `cfg:"out_features"`
	Bias        *bool `cfg:"bias"`
}

// NewLinear creates a Linear layer with deterministic weights.
func NewLinear(ctx context.Context, in *LinearInput) (*Linear, error) {
	if in.InFeatures <= 0 || in.OutFeatures <= 0 {
		return nil, fmt.Errorf("%w: in_features and out_features must be positive, got %d and %d",
			node.ErrBadArguments, in.InFeatures, in.OutFeatures)
	}
	l := &Linear{
		In:      in.InFeatures,
		Out:     in.OutFeatures,
		Weights: make([][]float64, in.OutFeatures),
		Bias:    make([]float64, in.OutFeatures),
	}
	withBias := in.Bias == nil || *in.Bias
	for o := range l.Weights {
		l.Weights[o] = make([]float64, in.InFeatures)
		for i := range l.Weights[o] {
			l.Weights[o][i] = float64((o+1)*(i+2)%5-2) / 10
		}
		if withBias {
			l.Bias[o] = float64(o%3) / 10
		}
	}
	return l, nil
}

// Forward implements Layer.
func (l *Linear) Forward(x []float64) ([]float64, error) {
	if len(x) != l.In {
		return nil, fmt.Errorf("%w: %s got %d features", ErrShape, l, len(x))
	}
	y := make([]float64, l.Out)
	for o, row := range l.Weights {
		sum := l.Bias[o]
		for i, w := range row {
			sum += w * x[i]
		}
		y[o] = sum
	}
	return y, nil
}

func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in_features=%d, out_features=%d)", l.In, l.Out)
}

// ReLU clamps negative values to zero.
type ReLU struct{}

// NewReLU creates a ReLU layer.
func NewReLU(ctx context.Context) (*ReLU, error) {
	return &ReLU{}, nil
}

// Forward implements Layer.
func (ReLU) Forward(x []float64) ([]float64, error) {
	y := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			y[i] = v
		}
	}
	return y, nil
}

func (ReLU) String() string { return "ReLU()" }

// Sequential applies its layers in order.
type Sequential struct {
	Layers []Layer
}

// SequentialInput receives the layers as positional arguments.
type SequentialInput struct {
	Layers []Layer `cfg:"__args__"`
}

// NewSequential chains the given layers.
func NewSequential(ctx context.Context, in *SequentialInput) (*Sequential, error) {
	for i, l := range in.Layers {
		if l == nil {
			return nil, fmt.Errorf("%w: layer %d is nil", node.ErrBadArguments, i)
		}
	}
	return &Sequential{Layers: in.Layers}, nil
}

// Forward implements Layer.
func (s *Sequential) Forward(x []float64) ([]float64, error) {
	var err error
	for i, l := range s.Layers {
		if x, err = l.Forward(x); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return x, nil
}

func (s *Sequential) String() string {
	parts := make([]string, len(s.Layers))
	for i, l := range s.Layers {
		parts[i] = l.String()
	}
	return "Sequential(" + strings.Join(parts, ", ") + ")"
}

var (
	linearFn     = node.MustCallable(NewLinear, node.WithName("layers.Linear"))
	reluFn       = node.MustCallable(NewReLU, node.WithName("layers.ReLU"))
	sequentialFn = node.MustCallable(NewSequential, node.WithName("layers.Sequential"))
)

// Register registers the layer constructors under the "layers" module path.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterEach(
		registry.Symbol{Ref: "layers.Linear", Callable: linearFn},
		registry.Symbol{Ref: "layers.ReLU", Callable: reluFn},
		registry.Symbol{Ref: "layers.Sequential", Callable: sequentialFn},
	)
}
