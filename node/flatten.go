// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Named is implemented by values that have a canonical display name, such as
// callables. Flatten stores the name instead of the value.
type Named interface {
	DisplayName() string
}

// Params is the ordered table of leaf parameters produced by Flatten.
type Params struct {
	entries *orderedmap.OrderedMap[string, any]
}

func newParams() *Params {
	return &Params{entries: orderedmap.New[string, any]()}
}

// Len returns the number of parameters.
func (p *Params) Len() int { return p.entries.Len() }

// Get returns the parameter stored under path.
func (p *Params) Get(path string) (any, bool) { return p.entries.Get(path) }

// Keys returns the parameter paths in order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.entries.Len())
	for pair := p.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for every parameter in order until fn returns false.
func (p *Params) Range(fn func(path string, v any) bool) {
	for pair := p.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// MarshalJSON writes the table as a JSON object in order.
func (p *Params) MarshalJSON() ([]byte, error) {
	return p.entries.MarshalJSON()
}

const paramColumn = 18

// String renders the table with a "key | argument" header.
func (p *Params) String() string {
	var b strings.Builder
	b.WriteString(center("key", paramColumn) + "|" + center("argument", paramColumn) + "\n")
	b.WriteString(strings.Repeat("-", 2*paramColumn+1) + "\n")
	p.Range(func(path string, v any) bool {
		b.WriteString(center(path, paramColumn) + "|" + center(fmt.Sprint(v), paramColumn) + "\n")
		return true
	})
	return b.String()
}

// center pads s to width, putting the odd space on the right.
func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// Flatten projects the tree rooted at n into a table of leaf parameters.
// Nested Node entries are joined to their parent key with "_". Reserved keys
// are skipped, callables and other named values are stored by name. Nothing
// is invoked and n is not modified.
func Flatten(n *Node) *Params {
	return FlattenPrefix(n, "")
}

// FlattenPrefix is Flatten with every path prefixed by prefix.
func FlattenPrefix(n *Node, prefix string) *Params {
	out := newParams()
	flattenInto(out, n, prefix)
	return out
}

func flattenInto(out *Params, n *Node, prefix string) {
	n.Range(func(key string, v Value) bool {
		path := key
		if prefix != "" {
			path = prefix + "_" + key
		}
		if v.IsNode() {
			flattenInto(out, v.Node(), path)
			return true
		}
		if IsReserved(key) {
			return true
		}
		leaf := v.Interface()
		if name, ok := displayName(leaf); ok {
			out.entries.Set(path, name)
		} else {
			out.entries.Set(path, leaf)
		}
		return true
	})
}

func displayName(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case Named:
		return t.DisplayName(), true
	case reflect.Type:
		return t.String(), true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func && !rv.IsNil() {
		return funcName(v), true
	}
	return "", false
}
