// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// InputTag is the struct tag naming the keyword argument a field receives.
// A field tagged `cfg:"__args__"` receives the positional arguments.
const InputTag = "cfg"

// Func is the raw callable shape. It receives positional arguments and the
// ordered keyword arguments exactly as assembled by the builder.
type Func func(ctx context.Context, call *Call) (any, error)

// Call holds the arguments of a single invocation.
type Call struct {
	Args   []any
	Kwargs *orderedmap.OrderedMap[string, any]
}

// Kwarg returns the keyword argument stored under key.
func (c *Call) Kwarg(key string) (any, bool) {
	if c.Kwargs == nil {
		return nil, false
	}
	return c.Kwargs.Get(key)
}

type shape int

const (
	shapeRaw shape = iota
	shapeNoInput
	shapeInput
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Callable is a Go function that can be referenced from a Node's "obj" entry.
type Callable struct {
	name  string
	shape shape
	raw   Func
	fn    reflect.Value
	input *inputSpec
}

// CallableOption customizes a Callable.
type CallableOption func(*Callable)

// WithName overrides the display name derived from the Go function.
func WithName(name string) CallableOption {
	return func(c *Callable) { c.name = name }
}

// NewCallable wraps fn. Accepted shapes are Func,
// func(context.Context) (R, error) and func(context.Context, *T) (R, error)
// where T is a struct whose fields receive the keyword arguments.
func NewCallable(fn any, opts ...CallableOption) (*Callable, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil function", ErrInvalidCallable)
	}

	c := &Callable{}
	switch f := fn.(type) {
	case Func:
		c.shape, c.raw = shapeRaw, f
	case func(context.Context, *Call) (any, error):
		c.shape, c.raw = shapeRaw, f
	default:
		v := reflect.ValueOf(fn)
		t := v.Type()
		if t.Kind() != reflect.Func {
			return nil, fmt.Errorf("%w: expected a function, got %s", ErrInvalidCallable, t)
		}
		if t.IsVariadic() || t.NumOut() != 2 || t.Out(1) != errorType {
			return nil, fmt.Errorf("%w: %s must return (R, error)", ErrInvalidCallable, t)
		}
		if t.NumIn() == 0 || t.In(0) != contextType {
			return nil, fmt.Errorf("%w: %s must take context.Context first", ErrInvalidCallable, t)
		}
		switch t.NumIn() {
		case 1:
			c.shape = shapeNoInput
		case 2:
			in := t.In(1)
			if in.Kind() != reflect.Ptr || in.Elem().Kind() != reflect.Struct {
				return nil, fmt.Errorf("%w: %s input must be a pointer to a struct", ErrInvalidCallable, t)
			}
			spec, err := newInputSpec(in.Elem())
			if err != nil {
				return nil, err
			}
			c.shape, c.input = shapeInput, spec
		default:
			return nil, fmt.Errorf("%w: %s takes too many parameters", ErrInvalidCallable, t)
		}
		c.fn = v
	}

	c.name = funcName(fn)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustCallable is like NewCallable but panics on error. It is meant for
// package-level registration of module functions.
func MustCallable(fn any, opts ...CallableOption) *Callable {
	c, err := NewCallable(fn, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the display name of the callable.
func (c *Callable) Name() string { return c.name }

// DisplayName implements the interface Flatten uses for named values.
func (c *Callable) DisplayName() string { return c.name }

func (c *Callable) String() string { return c.name }

// Invoke calls the wrapped function. kwargs may be nil.
func (c *Callable) Invoke(ctx context.Context, args []any, kwargs *orderedmap.OrderedMap[string, any]) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if kwargs == nil {
		kwargs = orderedmap.New[string, any]()
	}

	switch c.shape {
	case shapeRaw:
		return c.raw(ctx, &Call{Args: args, Kwargs: kwargs})

	case shapeNoInput:
		if len(args) > 0 || kwargs.Len() > 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments (got %d positional, %d keyword)",
				ErrBadArguments, c.name, len(args), kwargs.Len())
		}
		return unpack(c.fn.Call([]reflect.Value{reflect.ValueOf(ctx)}))

	default:
		in, err := c.input.decode(args, kwargs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		return unpack(c.fn.Call([]reflect.Value{reflect.ValueOf(ctx), in}))
	}
}

func unpack(results []reflect.Value) (any, error) {
	if errVal := results[1]; !errVal.IsNil() {
		return nil, errVal.Interface().(error)
	}
	return results[0].Interface(), nil
}

// funcName derives a short package-qualified name such as "arith.Add".
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return v.Type().String()
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
