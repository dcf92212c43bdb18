// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Reserved keys. They are never treated as keyword arguments.
const (
	// KeyCallable holds the *Callable a Node invokes when built.
	KeyCallable = "obj"
	// KeySelfBuild enables building of nested callable Nodes before invocation.
	KeySelfBuild = "self_build"
	// KeyArgs holds positional arguments appended after call-time ones.
	KeyArgs = "__args__"
)

// IsReserved reports whether key is one of the reserved keys.
func IsReserved(key string) bool {
	switch key {
	case KeyCallable, KeySelfBuild, KeyArgs:
		return true
	}
	return false
}

// Node is an ordered mapping describing either a pending call or a plain
// data record.
type Node struct {
	entries *orderedmap.OrderedMap[string, Value]
}

// Entry is a single key/value pair used to construct a Node.
type Entry struct {
	Key   string
	Value Value
}

// KV builds an entry, classifying v with ValueOf.
func KV(key string, v any) Entry {
	return Entry{Key: key, Value: ValueOf(v)}
}

// Obj builds the "obj" entry.
func Obj(c *Callable) Entry {
	return Entry{Key: KeyCallable, Value: Scalar(c)}
}

// Args builds the "__args__" entry from the given positional values.
func Args(vs ...any) Entry {
	return Entry{Key: KeyArgs, Value: ValueOf(vs)}
}

// New creates a Node. When selfBuild is true the "self_build" flag is set
// before the entries are applied, so an explicit "self_build" entry still
// wins. Entries are kept in the order given.
func New(selfBuild bool, entries ...Entry) *Node {
	n := &Node{entries: orderedmap.New[string, Value](len(entries) + 1)}
	if selfBuild {
		n.Set(KeySelfBuild, Scalar(true))
	}
	for _, e := range entries {
		n.Set(e.Key, e.Value)
	}
	return n
}

// emptyEntries backs reads of a zero Node. It is never written.
var emptyEntries = orderedmap.New[string, Value]()

func (n *Node) view() *orderedmap.OrderedMap[string, Value] {
	if n.entries == nil {
		return emptyEntries
	}
	return n.entries
}

// Len returns the number of entries, reserved ones included.
func (n *Node) Len() int {
	return n.view().Len()
}

// Get returns the value stored under key.
func (n *Node) Get(key string) (Value, bool) {
	return n.view().Get(key)
}

// Set stores v under key. An existing key keeps its position.
func (n *Node) Set(key string, v Value) {
	if n.entries == nil {
		n.entries = orderedmap.New[string, Value]()
	}
	n.entries.Set(key, v)
}

// SetAny classifies v with ValueOf and stores it under key.
func (n *Node) SetAny(key string, v any) {
	n.Set(key, ValueOf(v))
}

// Delete removes key and reports whether it was present.
func (n *Node) Delete(key string) bool {
	_, ok := n.view().Delete(key)
	return ok
}

// Keys returns the keys in insertion order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, n.view().Len())
	for pair := n.view().Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for every entry in insertion order until fn returns false.
func (n *Node) Range(fn func(key string, v Value) bool) {
	for pair := n.view().Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Callable returns the callable stored under "obj".
func (n *Node) Callable() (*Callable, bool) {
	v, ok := n.view().Get(KeyCallable)
	if !ok || v.Kind() != ScalarKind {
		return nil, false
	}
	c, ok := v.Scalar().(*Callable)
	return c, ok && c != nil
}

// HasCallable reports whether the Node can be invoked.
func (n *Node) HasCallable() bool {
	_, ok := n.Callable()
	return ok
}

// SelfBuild reports whether the "self_build" flag is set to true.
func (n *Node) SelfBuild() bool {
	v, ok := n.view().Get(KeySelfBuild)
	if !ok {
		return false
	}
	b, _ := v.Scalar().(bool)
	return b
}

// Overflow returns the elements of "__args__". A non-sequence value is
// treated as a single positional argument.
func (n *Node) Overflow() []Value {
	v, ok := n.view().Get(KeyArgs)
	if !ok {
		return nil
	}
	if v.IsSequence() {
		return v.Elems()
	}
	return []Value{v}
}

// ToMap returns the native form of the Node as an ordered map. Nested Nodes
// are converted recursively, including Nodes inside sequences.
func (n *Node) ToMap() *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any](n.view().Len())
	n.Range(func(key string, v Value) bool {
		out.Set(key, nativeDeep(v))
		return true
	})
	return out
}

func nativeDeep(v Value) any {
	switch v.Kind() {
	case NodeKind:
		return v.Node().ToMap()
	case SequenceKind:
		out := make([]any, len(v.Elems()))
		for i, e := range v.Elems() {
			out[i] = nativeDeep(e)
		}
		return out
	default:
		return v.Scalar()
	}
}
