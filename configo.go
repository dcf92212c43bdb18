// Package configo describes trees of function calls as data and builds them.
//
// A Node names a callable under "obj" and carries its keyword arguments as
// ordinary entries. Nodes nest: with self_build set, a Node builds its nested
// callable Nodes first and passes their results on. The same tree can be
// flattened into a parameter table for experiment logs, or dumped to a JSON,
// YAML or HCL document in which every callable is replaced by the reference
// it was registered under, and loaded back later.
//
//	reg := registry.New()
//	reg.MustRegister("arith.add", add)
//
//	n := configo.MakeNode(true,
//		node.Obj(add),
//		node.KV("a", 10),
//		node.KV("b", configo.MakeNode(false, node.Obj(add), node.KV("a", 1), node.KV("b", 1))),
//	)
//	sum, err := configo.Build(ctx, n)
//
// The subpackages hold the pieces: node (data model and flattening), builder,
// registry, bridge (serialization) and document (file formats).
package configo

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vk/configo/bridge"
	"github.com/vk/configo/builder"
	"github.com/vk/configo/document"
	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

// MakeNode creates a Node. With selfBuild set, nested callable Nodes are built
// before the Node's own callable is invoked.
func MakeNode(selfBuild bool, entries ...node.Entry) *node.Node {
	return node.New(selfBuild, entries...)
}

// Build invokes the callable of n and returns its result. n is not modified.
func Build(ctx context.Context, n *node.Node, opts ...builder.Option) (any, error) {
	return builder.Build(ctx, n, opts...)
}

// Flatten returns the leaf parameters of n keyed by their "_"-joined paths.
func Flatten(n *node.Node) *node.Params {
	return node.Flatten(n)
}

// Serialize returns the persisted form of n with every callable replaced by
// its registered reference.
func Serialize(reg *registry.Registry, n *node.Node) (*orderedmap.OrderedMap[string, any], error) {
	return bridge.Serialize(reg, n)
}

// Duplicate returns a deep copy of n.
func Duplicate(n *node.Node) *node.Node {
	return node.Duplicate(n)
}

// FromPersisted loads the document at path from the OS filesystem and turns it
// into a Node, resolving references through reg.
func FromPersisted(reg *registry.Registry, path string, opts ...bridge.Option) (*node.Node, error) {
	return NewLoader(reg, afero.NewOsFs()).Load(path, opts...)
}

// Dump writes n to path on the OS filesystem. The format follows the file
// extension.
func Dump(reg *registry.Registry, n *node.Node, path string) error {
	return NewLoader(reg, afero.NewOsFs()).Dump(n, path)
}

// Loader reads and writes Node documents on a chosen filesystem.
type Loader struct {
	reg   *registry.Registry
	store *document.Store
}

// NewLoader returns a Loader resolving references through reg.
func NewLoader(reg *registry.Registry, fs afero.Fs) *Loader {
	return &Loader{reg: reg, store: document.NewStore(fs)}
}

// Store returns the document store of the loader.
func (l *Loader) Store() *document.Store { return l.store }

// Load reads the document at path and deserializes it.
func (l *Loader) Load(path string, opts ...bridge.Option) (*node.Node, error) {
	tree, err := l.store.Load(path)
	if err != nil {
		return nil, err
	}
	n, err := bridge.Deserialize(l.reg, tree, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// Dump serializes a copy of n and saves it to path.
func (l *Loader) Dump(n *node.Node, path string) error {
	if _, ok := document.FormatOf(path); !ok {
		return fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}
	tree, err := bridge.Serialize(l.reg, node.Duplicate(n))
	if err != nil {
		return err
	}
	return l.store.Save(path, tree)
}
