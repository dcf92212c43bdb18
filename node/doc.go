// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package node provides the data model for describing a tree of function calls
// as plain data.
//
// # Core Concepts
//
//   - Node: an ordered mapping from string keys to Values. A Node either
//     describes a pending call (it carries an "obj" entry holding a Callable)
//     or is a plain data record.
//
//   - Value: a tagged variant holding a Scalar, a nested Node or a Sequence of
//     Values. The kind is decided once, when the Value is constructed.
//
//   - Callable: a Go function wrapped with enough reflection metadata to be
//     invoked with positional and keyword arguments.
//
//   - Params: the flattened, ordered table of leaf parameters of a tree.
//
// Three keys are reserved and never passed to a callable as keyword arguments:
// "obj" (the callable), "self_build" (build nested callable Nodes before
// invoking this one) and "__args__" (positional arguments appended after the
// ones supplied at call time).
//
// Nodes are not safe for concurrent mutation. Building and serializing never
// mutate a Node, so a tree that is no longer being edited may be shared freely.
package node
