package bridge

import (
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vk/configo/node"
)

// Resolver returns the callable a reference denotes.
type Resolver interface {
	Resolve(ref string) (*node.Callable, error)
}

// Resolve returns the callable denoted by ref.
func Resolve(res Resolver, ref string) (*node.Callable, error) {
	return res.Resolve(ref)
}

type options struct {
	shallowSequences bool
}

// Option customizes Deserialize.
type Option func(*options)

// WithShallowSequences leaves mappings found inside sequences as raw ordered
// maps instead of turning them into Nodes. Their "obj" references stay
// unresolved strings.
func WithShallowSequences() Option {
	return func(o *options) { o.shallowSequences = true }
}

// Deserialize turns a generic tree into a Node. tree must be a mapping, either
// an *orderedmap.OrderedMap[string, any] or a map[string]any (whose keys are
// taken in sorted order). Every nested mapping becomes a Node; an "obj" entry
// is resolved through res.
func Deserialize(res Resolver, tree any, opts ...Option) (*node.Node, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	m, ok := asOrdered(tree)
	if !ok {
		return nil, fmt.Errorf("%w: document root is %T", ErrNotMapping, tree)
	}
	d := &decoder{res: res, opts: o}
	return d.node(m, "")
}

type decoder struct {
	res  Resolver
	opts *options
}

func (d *decoder) node(m *orderedmap.OrderedMap[string, any], path string) (*node.Node, error) {
	n := node.New(false)
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		at := join(path, pair.Key)
		if pair.Key == node.KeyCallable {
			c, err := d.callable(pair.Value, at)
			if err != nil {
				return nil, err
			}
			n.Set(node.KeyCallable, node.Scalar(c))
			continue
		}
		v, err := d.value(pair.Value, at)
		if err != nil {
			return nil, err
		}
		n.Set(pair.Key, v)
	}
	return n, nil
}

func (d *decoder) callable(raw any, path string) (*node.Callable, error) {
	ref, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want a string", ErrInvalidReference, path, raw)
	}
	c, err := d.res.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (d *decoder) value(raw any, path string) (node.Value, error) {
	if m, ok := asOrdered(raw); ok {
		child, err := d.node(m, path)
		if err != nil {
			return node.Value{}, err
		}
		return node.NodeValue(child), nil
	}

	items, ok := raw.([]any)
	if !ok {
		return node.Scalar(raw), nil
	}
	elems := make([]node.Value, len(items))
	for i, item := range items {
		if d.opts.shallowSequences {
			elems[i] = shallow(item)
			continue
		}
		v, err := d.value(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return node.Value{}, err
		}
		elems[i] = v
	}
	return node.Sequence(elems...), nil
}

// shallow keeps mappings as they are, at any depth, while nested lists still
// become sequences.
func shallow(raw any) node.Value {
	items, ok := raw.([]any)
	if !ok {
		return node.Scalar(raw)
	}
	elems := make([]node.Value, len(items))
	for i, item := range items {
		elems[i] = shallow(item)
	}
	return node.Sequence(elems...)
}

func asOrdered(v any) (*orderedmap.OrderedMap[string, any], bool) {
	switch t := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		return t, t != nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := orderedmap.New[string, any](len(t))
		for _, k := range keys {
			out.Set(k, t[k])
		}
		return out, true
	}
	return nil, false
}
