package builder

import (
	"context"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vk/configo/internal/ctxlog"
	"github.com/vk/configo/node"
)

// ErrReservedKeyword is returned when a call-time keyword uses a reserved key.
var ErrReservedKeyword = errors.New("reserved keyword")

// Error reports a callable that failed while a tree was being built.
type Error struct {
	// Path is the dotted location of the failing Node; empty for the root.
	Path string
	// Callable is the display name of the callable that failed.
	Callable string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("building %s (%s): %v", describePath(e.Path), e.Callable, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func describePath(path string) string {
	if path == "" {
		return "root node"
	}
	return fmt.Sprintf("node %q", path)
}

// Build invokes n's callable and returns its result.
//
// When n has self_build set, every entry holding a Node with its own "obj" is
// built first (without arguments), and so is every such Node found directly
// inside a sequence entry. Nodes without "obj" are passed through as literal
// data. Positional arguments are the call-time ones followed by "__args__";
// keyword arguments are the Node's non-reserved entries overridden by the
// call-time ones.
func Build(ctx context.Context, n *node.Node, opts ...Option) (any, error) {
	if n == nil {
		return nil, &node.MissingCallableError{}
	}
	o := collect(opts)
	for pair := o.kwargs.Oldest(); pair != nil; pair = pair.Next() {
		if node.IsReserved(pair.Key) {
			return nil, fmt.Errorf("%w: %q cannot be passed at call time", ErrReservedKeyword, pair.Key)
		}
	}
	return build(ctx, n, "", o.args, o.kwargs)
}

func build(ctx context.Context, n *node.Node, path string, args []any, callKwargs *orderedmap.OrderedMap[string, any]) (any, error) {
	logger := ctxlog.FromContext(ctx).With("node", describePath(path))

	c, ok := n.Callable()
	if !ok {
		return nil, &node.MissingCallableError{Path: path, Keys: n.Keys()}
	}

	selfBuild := n.SelfBuild()
	if selfBuild {
		logger.Debug("Resolving nested nodes.", "callable", c.Name())
	}

	kwargs := orderedmap.New[string, any](n.Len())
	var overflow []any
	var err error
	n.Range(func(key string, v node.Value) bool {
		switch key {
		case node.KeyCallable, node.KeySelfBuild:
		case node.KeyArgs:
			overflow, err = resolveOverflow(ctx, n, path, selfBuild)
		default:
			var resolved any
			resolved, err = resolve(ctx, v, join(path, key), selfBuild)
			kwargs.Set(key, resolved)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	positional := make([]any, 0, len(args)+len(overflow))
	positional = append(positional, args...)
	positional = append(positional, overflow...)

	if callKwargs != nil {
		for pair := callKwargs.Oldest(); pair != nil; pair = pair.Next() {
			kwargs.Set(pair.Key, pair.Value)
		}
	}

	logger.Debug("Invoking callable.", "callable", c.Name(), "positional", len(positional), "keywords", kwargs.Len())
	result, err := c.Invoke(ctxlog.WithLogger(ctx, logger), positional, kwargs)
	if err != nil {
		logger.Debug("Callable failed.", "callable", c.Name(), "error", err)
		return nil, &Error{Path: path, Callable: c.Name(), Err: err}
	}
	return result, nil
}

// resolve returns the argument form of an entry value.
func resolve(ctx context.Context, v node.Value, path string, selfBuild bool) (any, error) {
	switch v.Kind() {
	case node.NodeKind:
		if selfBuild && v.IsCallableNode() {
			return build(ctx, v.Node(), path, nil, nil)
		}
		return v.Node(), nil
	case node.SequenceKind:
		return resolveElems(ctx, v.Elems(), path, selfBuild)
	default:
		return v.Scalar(), nil
	}
}

func resolveElems(ctx context.Context, elems []node.Value, path string, selfBuild bool) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		if selfBuild && e.IsCallableNode() {
			built, err := build(ctx, e.Node(), fmt.Sprintf("%s[%d]", path, i), nil, nil)
			if err != nil {
				return nil, err
			}
			out[i] = built
			continue
		}
		out[i] = e.Interface()
	}
	return out, nil
}

func resolveOverflow(ctx context.Context, n *node.Node, path string, selfBuild bool) ([]any, error) {
	return resolveElems(ctx, n.Overflow(), join(path, node.KeyArgs), selfBuild)
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
