// Package registry maps symbol references such as "arith.add" to callables
// and back.
//
// The Registry is the glue between the persisted form of a configuration and
// the compiled Go functions it refers to. Go cannot import a function by name
// at runtime, so every callable a document may mention is registered up front,
// usually by a Module during application startup. Serialization asks the
// registry for the reference of a callable, deserialization asks it for the
// callable behind a reference.
//
// A reference is a dot-separated path: everything before the last dot is the
// module path, the last segment is the symbol name. A bare name lives in the
// builtin namespace.
package registry
