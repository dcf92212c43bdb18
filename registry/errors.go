package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrSymbolResolution is returned when a reference names no registered callable.
	ErrSymbolResolution = errors.New("symbol resolution failed")
	// ErrDuplicateSymbol is returned when a reference or callable is registered twice.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// ErrInvalidReference is returned for malformed references.
	ErrInvalidReference = errors.New("invalid symbol reference")
)

// SymbolResolutionError names the reference and the first segment of it that
// could not be resolved.
type SymbolResolutionError struct {
	Ref string
	// Segment is the unresolved path segment.
	Segment string
	// Module is the longest registered module path that did resolve. It is
	// empty when not even the first segment is known.
	Module string
	// Symbol is true when Segment is the terminal symbol name.
	Symbol bool
	// Within names the registered symbol the reference tries to descend
	// into, as in "arith.add.extra".
	Within string
	// Unregistered is set by reverse lookups of a callable that was never
	// registered; Ref is then the callable's display name.
	Unregistered bool
}

func (e *SymbolResolutionError) Error() string {
	switch {
	case e.Unregistered:
		return fmt.Sprintf("callable %s is not registered", e.Ref)
	case e.Within != "":
		return fmt.Sprintf("cannot resolve %q: %q is a symbol and has no member %q", e.Ref, e.Within, e.Segment)
	case e.Symbol && e.Module != "":
		return fmt.Sprintf("cannot resolve %q: module %q has no symbol %q", e.Ref, e.Module, e.Segment)
	case e.Symbol:
		return fmt.Sprintf("cannot resolve %q: no symbol %q in the %s namespace", e.Ref, e.Segment, BuiltinNamespace)
	case e.Module != "":
		return fmt.Sprintf("cannot resolve %q: module %q has no member %q", e.Ref, e.Module, e.Segment)
	default:
		return fmt.Sprintf("cannot resolve %q: unknown module %q", e.Ref, e.Segment)
	}
}

// Is makes errors.Is(err, ErrSymbolResolution) hold.
func (e *SymbolResolutionError) Is(target error) bool {
	return target == ErrSymbolResolution
}
