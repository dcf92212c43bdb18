// Package bridge converts Node trees to and from generic trees that hold
// symbol references instead of callables.
//
// A generic tree is made of ordered maps, []any and JSON-safe scalars, which is
// what the document package reads and writes. Serialize replaces every "obj"
// callable by the reference it was registered under; Deserialize resolves the
// references again and turns every nested mapping into a Node.
package bridge
