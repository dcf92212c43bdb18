// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Render draws the tree rooted at n, one line per entry. Callable Nodes are
// labeled with their callable's name and a "*" when self_build is set.
func Render(n *Node) string {
	tree := treeprint.NewWithRoot(label(n))
	renderEntries(tree, n)
	return tree.String()
}

func label(n *Node) string {
	name := "{}"
	if c, ok := n.Callable(); ok {
		name = c.Name() + "()"
	}
	if n.SelfBuild() {
		name += " *"
	}
	return name
}

func renderEntries(tree treeprint.Tree, n *Node) {
	n.Range(func(key string, v Value) bool {
		if key == KeyCallable || key == KeySelfBuild {
			return true
		}
		renderValue(tree, key, v)
		return true
	})
}

func renderValue(tree treeprint.Tree, meta string, v Value) {
	switch v.Kind() {
	case NodeKind:
		renderEntries(tree.AddMetaBranch(meta, label(v.Node())), v.Node())
	case SequenceKind:
		branch := tree.AddMetaBranch(meta, fmt.Sprintf("[%d]", len(v.Elems())))
		for i, e := range v.Elems() {
			renderValue(branch, fmt.Sprint(i), e)
		}
	default:
		s := v.Scalar()
		if name, ok := displayName(s); ok {
			tree.AddMetaNode(meta, name)
			return
		}
		tree.AddMetaNode(meta, fmt.Sprintf("%#v", s))
	}
}
