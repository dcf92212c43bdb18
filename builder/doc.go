// Package builder turns a Node tree into a runtime value by invoking the
// referenced callables bottom-up.
//
// A build never modifies the Node it is given: nested results are collected
// into a fresh argument list for the parent's callable. A Node can therefore
// be built any number of times, and a failed build leaves it exactly as it
// was.
package builder
