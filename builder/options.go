package builder

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Option supplies call-time arguments to Build.
type Option func(*callOptions)

type callOptions struct {
	args   []any
	kwargs *orderedmap.OrderedMap[string, any]
}

// WithArgs adds positional arguments. They come before the Node's own
// "__args__" entries.
func WithArgs(vs ...any) Option {
	return func(o *callOptions) {
		o.args = append(o.args, vs...)
	}
}

// WithKwarg sets a keyword argument, overriding the Node's entry of the same
// name.
func WithKwarg(key string, v any) Option {
	return func(o *callOptions) {
		o.kwargs.Set(key, v)
	}
}

// WithKwargs sets every keyword argument of kw, in order.
func WithKwargs(kw *orderedmap.OrderedMap[string, any]) Option {
	return func(o *callOptions) {
		if kw == nil {
			return
		}
		for pair := kw.Oldest(); pair != nil; pair = pair.Next() {
			o.kwargs.Set(pair.Key, pair.Value)
		}
	}
}

func collect(opts []Option) *callOptions {
	o := &callOptions{kwargs: orderedmap.New[string, any]()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
