// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	"reflect"

	"github.com/mitchellh/copystructure"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var copier = copystructure.Config{
	ShallowCopiers: map[reflect.Type]struct{}{
		reflect.TypeOf(&Callable{}): {},
	},
}

// Duplicate returns a deep copy of n. Nested Nodes and sequences are copied,
// as are map and slice payloads of scalars. Callables, functions and other
// pointers are shared with the original. A payload copystructure cannot copy
// is shared as well.
func Duplicate(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{entries: orderedmap.New[string, Value](n.Len())}
	n.Range(func(key string, v Value) bool {
		out.entries.Set(key, duplicateValue(v))
		return true
	})
	return out
}

func duplicateValue(v Value) Value {
	switch v.Kind() {
	case NodeKind:
		return NodeValue(Duplicate(v.Node()))
	case SequenceKind:
		seq := make([]Value, len(v.Elems()))
		for i, e := range v.Elems() {
			seq[i] = duplicateValue(e)
		}
		return Value{kind: SequenceKind, seq: seq}
	default:
		return Scalar(duplicateScalar(v.Scalar()))
	}
}

func duplicateScalar(s any) any {
	if om, ok := s.(*orderedmap.OrderedMap[string, any]); ok {
		out := orderedmap.New[string, any](om.Len())
		for pair := om.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, duplicateScalar(pair.Value))
		}
		return out
	}
	if items, ok := s.([]any); ok {
		out := make([]any, len(items))
		for i, e := range items {
			out[i] = duplicateScalar(e)
		}
		return out
	}
	switch reflect.ValueOf(s).Kind() {
	case reflect.Map, reflect.Slice:
		if cp, err := copier.Copy(s); err == nil {
			return cp
		}
	}
	return s
}
