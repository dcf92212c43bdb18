// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import "fmt"

// Kind distinguishes the variants a Value can hold.
type Kind int

const (
	// ScalarKind is any leaf value, including strings and opaque Go values.
	ScalarKind Kind = iota
	// NodeKind is a nested Node.
	NodeKind
	// SequenceKind is an ordered list of Values.
	SequenceKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case NodeKind:
		return "node"
	case SequenceKind:
		return "sequence"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single entry value of a Node.
type Value struct {
	kind   Kind
	scalar any
	node   *Node
	seq    []Value
}

// Scalar wraps v as a leaf value without inspecting it.
func Scalar(v any) Value {
	return Value{kind: ScalarKind, scalar: v}
}

// NodeValue wraps a nested Node.
func NodeValue(n *Node) Value {
	return Value{kind: NodeKind, node: n}
}

// Sequence wraps an ordered list of values.
func Sequence(vs ...Value) Value {
	seq := make([]Value, len(vs))
	copy(seq, vs)
	return Value{kind: SequenceKind, seq: seq}
}

// ValueOf classifies v. A *Node becomes a NodeKind value; []Value, []*Node and
// []any become sequences with every element classified in turn; a Value is
// returned as is. Everything else, strings and typed slices included, is a
// scalar.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case *Node:
		if t == nil {
			return Scalar(nil)
		}
		return NodeValue(t)
	case []Value:
		return Sequence(t...)
	case []*Node:
		seq := make([]Value, 0, len(t))
		for _, n := range t {
			seq = append(seq, ValueOf(n))
		}
		return Value{kind: SequenceKind, seq: seq}
	case []any:
		seq := make([]Value, 0, len(t))
		for _, e := range t {
			seq = append(seq, ValueOf(e))
		}
		return Value{kind: SequenceKind, seq: seq}
	default:
		return Scalar(v)
	}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNode reports whether the value is a nested Node.
func (v Value) IsNode() bool { return v.kind == NodeKind }

// IsSequence reports whether the value is a sequence.
func (v Value) IsSequence() bool { return v.kind == SequenceKind }

// Node returns the nested Node, or nil for other kinds.
func (v Value) Node() *Node { return v.node }

// Elems returns the elements of a sequence. The slice must not be modified.
func (v Value) Elems() []Value { return v.seq }

// Scalar returns the payload of a scalar value, or nil for other kinds.
func (v Value) Scalar() any { return v.scalar }

// Interface returns the native form of the value: the scalar payload, the
// *Node, or a []any of the elements' native forms.
func (v Value) Interface() any {
	switch v.kind {
	case NodeKind:
		return v.node
	case SequenceKind:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	default:
		return v.scalar
	}
}

// IsCallableNode reports whether the value is a nested Node carrying "obj".
func (v Value) IsCallableNode() bool {
	return v.kind == NodeKind && v.node.HasCallable()
}
