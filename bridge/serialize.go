package bridge

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vk/configo/node"
)

// Namer reports the reference a callable is registered under.
type Namer interface {
	NameOf(c *node.Callable) (string, error)
}

// Serialize returns the generic form of n. The "obj" entry of n and of every
// nested Node becomes a reference string. n is not modified.
func Serialize(namer Namer, n *node.Node) (*orderedmap.OrderedMap[string, any], error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrNotSerializable)
	}
	return serializeNode(namer, n, "")
}

func serializeNode(namer Namer, n *node.Node, path string) (*orderedmap.OrderedMap[string, any], error) {
	out := orderedmap.New[string, any](n.Len())
	var err error
	n.Range(func(key string, v node.Value) bool {
		var encoded any
		if key == node.KeyCallable {
			encoded, err = serializeCallable(namer, v, join(path, key))
		} else {
			encoded, err = serializeValue(namer, v, join(path, key))
		}
		out.Set(key, encoded)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func serializeCallable(namer Namer, v node.Value, path string) (string, error) {
	c, ok := v.Scalar().(*node.Callable)
	if !ok || c == nil {
		return "", fmt.Errorf("%w: %s holds %T, want a callable", ErrNotSerializable, path, v.Interface())
	}
	ref, err := namer.NameOf(c)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

func serializeValue(namer Namer, v node.Value, path string) (any, error) {
	switch v.Kind() {
	case node.NodeKind:
		return serializeNode(namer, v.Node(), path)
	case node.SequenceKind:
		out := make([]any, len(v.Elems()))
		for i, e := range v.Elems() {
			encoded, err := serializeValue(namer, e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	default:
		return serializeScalar(v.Scalar(), path)
	}
}

// serializeScalar accepts the JSON data model only.
func serializeScalar(s any, path string) (any, error) {
	switch t := s.(type) {
	case nil, bool, string, json.Number:
		return t, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: %s holds %v", ErrNotSerializable, path, t)
		}
		return t, nil
	case *orderedmap.OrderedMap[string, any]:
		out := orderedmap.New[string, any](t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			encoded, err := serializeScalar(pair.Value, join(path, pair.Key))
			if err != nil {
				return nil, err
			}
			out.Set(pair.Key, encoded)
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := orderedmap.New[string, any](len(t))
		for _, k := range keys {
			encoded, err := serializeScalar(t[k], join(path, k))
			if err != nil {
				return nil, err
			}
			out.Set(k, encoded)
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			encoded, err := serializeScalar(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	case *node.Node:
		return nil, fmt.Errorf("%w: %s holds a node outside the tree structure", ErrNotSerializable, path)
	}

	rv := reflect.ValueOf(s)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return serializeScalar(rv.Float(), path)
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			encoded, err := serializeScalar(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s holds %T", ErrNotSerializable, path, s)
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
