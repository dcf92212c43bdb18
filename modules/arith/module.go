package arith

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/configo/internal/ctxlog"
	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

// ErrDivisionByZero is returned by Divide when b is zero.
var ErrDivisionByZero = errors.New("division by zero")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Operands are the keyword arguments of the binary operations.
type Operands struct {
	A float64 `cfg:"a"`
	B float64 `cfg:"b"`
}

// Add returns a + b.
func Add(ctx context.Context, in *Operands) (float64, error) {
	return in.A + in.B, nil
}

// Subtract returns a - b.
func Subtract(ctx context.Context, in *Operands) (float64, error) {
	return in.A - in.B, nil
}

// Multiply returns a * b.
func Multiply(ctx context.Context, in *Operands) (float64, error) {
	return in.A * in.B, nil
}

// Divide returns a / b.
func Divide(ctx context.Context, in *Operands) (float64, error) {
	if in.B == 0 {
		return 0, fmt.Errorf("%w: %v / 0", ErrDivisionByZero, in.A)
	}
	return in.A / in.B, nil
}

// Sum adds its positional arguments to the optional "start" keyword.
func Sum(ctx context.Context, call *node.Call) (any, error) {
	total := 0.0
	if start, ok := call.Kwarg("start"); ok {
		f, err := toFloat(start)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		total = f
	}
	if call.Kwargs != nil {
		for pair := call.Kwargs.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key != "start" {
				return nil, fmt.Errorf("%w: unexpected keyword %q", node.ErrBadArguments, pair.Key)
			}
		}
	}
	for i, a := range call.Args {
		f, err := toFloat(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		total += f
	}
	ctxlog.FromContext(ctx).Debug("Summed arguments.", "count", len(call.Args), "total", total)
	return total, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: %v (%T) is not a number", node.ErrBadArguments, v, v)
}

var (
	addFn      = node.MustCallable(Add)
	subtractFn = node.MustCallable(Subtract)
	multiplyFn = node.MustCallable(Multiply)
	divideFn   = node.MustCallable(Divide)
	sumFn      = node.MustCallable(Sum)
)

// Register registers the arithmetic callables under the "arith" module path.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterEach(
		registry.Symbol{Ref: "arith.add", Callable: addFn},
		registry.Symbol{Ref: "arith.subtract", Callable: subtractFn},
		registry.Symbol{Ref: "arith.multiply", Callable: multiplyFn},
		registry.Symbol{Ref: "arith.divide", Callable: divideFn},
		registry.Symbol{Ref: "arith.sum", Callable: sumFn},
	)
}
