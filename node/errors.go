// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCallable is returned when a Node without "obj" is invoked.
	ErrMissingCallable = errors.New("node has no callable")
	// ErrInvalidCallable is returned for Go functions that cannot be wrapped.
	ErrInvalidCallable = errors.New("invalid callable")
	// ErrBadArguments is returned when call arguments do not fit a callable.
	ErrBadArguments = errors.New("bad arguments")
)

// MissingCallableError names the Node that could not be invoked.
type MissingCallableError struct {
	// Path is the dotted location of the Node inside the tree being built.
	// It is empty for the root.
	Path string
	// Keys are the keys the Node did carry.
	Keys []string
}

func (e *MissingCallableError) Error() string {
	where := "root node"
	if e.Path != "" {
		where = fmt.Sprintf("node %q", e.Path)
	}
	return fmt.Sprintf("%s has no %q entry (keys: [%s]); pass %s=<callable> to make it buildable",
		where, KeyCallable, strings.Join(e.Keys, ", "), KeyCallable)
}

// Is makes errors.Is(err, ErrMissingCallable) hold.
func (e *MissingCallableError) Is(target error) bool {
	return target == ErrMissingCallable
}
