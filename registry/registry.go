package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/vk/configo/node"
)

const (
	// BuiltinNamespace holds the callables registered under a bare name.
	BuiltinNamespace = "builtins"
	// Separator splits a reference into module path and symbol name.
	Separator = "."
)

// Module is the interface that callable packages implement to be registered.
type Module interface {
	Register(r *Registry) error
}

// Symbol pairs a reference with the callable it denotes.
type Symbol struct {
	Ref      string
	Callable *node.Callable
}

// Registry holds the callables known to one application instance. It is safe
// for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	byRef      map[string]*node.Callable
	byCallable map[*node.Callable]string
	modules    map[string]struct{}
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byRef:      make(map[string]*node.Callable),
		byCallable: make(map[*node.Callable]string),
		modules:    make(map[string]struct{}),
	}
}

// canonical returns the registry key for ref: bare names get the builtin
// namespace prefix.
func canonical(ref string) (string, []string, error) {
	if ref == "" {
		return "", nil, fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}
	segments := strings.Split(ref, Separator)
	for _, s := range segments {
		if s == "" {
			return "", nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidReference, ref)
		}
	}
	if len(segments) == 1 {
		segments = []string{BuiltinNamespace, ref}
	}
	return strings.Join(segments, Separator), segments, nil
}

// Register binds ref to c. Both the reference and the callable must be new to
// the registry.
func (r *Registry) Register(ref string, c *node.Callable) error {
	if c == nil {
		return fmt.Errorf("%w: nil callable for %q", ErrInvalidReference, ref)
	}
	key, segments, err := canonical(ref)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byRef[key]; exists {
		return fmt.Errorf("%w: %q already registered", ErrDuplicateSymbol, ref)
	}
	if prev, exists := r.byCallable[c]; exists {
		return fmt.Errorf("%w: callable %s already registered as %q", ErrDuplicateSymbol, c.Name(), display(prev))
	}

	r.byRef[key] = c
	r.byCallable[c] = key
	for i := 1; i < len(segments); i++ {
		r.modules[strings.Join(segments[:i], Separator)] = struct{}{}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ref string, c *node.Callable) {
	if err := r.Register(ref, c); err != nil {
		panic(err)
	}
}

// RegisterEach registers every symbol and reports all failures together.
func (r *Registry) RegisterEach(symbols ...Symbol) error {
	var errs *multierror.Error
	for _, s := range symbols {
		errs = multierror.Append(errs, r.Register(s.Ref, s.Callable))
	}
	return errs.ErrorOrNil()
}

// RegisterModules registers each module and reports all failures together.
func (r *Registry) RegisterModules(mods ...Module) error {
	var errs *multierror.Error
	for _, mod := range mods {
		if err := mod.Register(r); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("module %T: %w", mod, err))
		}
	}
	return errs.ErrorOrNil()
}

// Resolve returns the callable denoted by ref.
func (r *Registry) Resolve(ref string) (*node.Callable, error) {
	key, segments, err := canonical(ref)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byRef[key]; ok {
		return c, nil
	}
	return nil, r.diagnose(ref, segments)
}

// diagnose finds the first segment of segments that does not resolve.
func (r *Registry) diagnose(ref string, segments []string) error {
	last := len(segments) - 1
	if last == 1 && segments[0] == BuiltinNamespace {
		return &SymbolResolutionError{Ref: ref, Segment: segments[1], Symbol: true}
	}
	known := 0
	for i := 1; i <= last; i++ {
		if _, ok := r.modules[strings.Join(segments[:i], Separator)]; !ok {
			break
		}
		known = i
	}

	e := &SymbolResolutionError{Ref: ref}
	if known > 0 {
		e.Module = strings.Join(segments[:known], Separator)
	}
	if known == last {
		e.Segment, e.Symbol = segments[last], true
		return e
	}
	e.Segment = segments[known]
	if prefix := strings.Join(segments[:known+1], Separator); r.isSymbol(prefix) {
		e.Within, e.Segment = display(prefix), segments[known+1]
	}
	return e
}

// isSymbol reports whether ref, as written or in the builtin namespace, is
// registered. The caller holds the read lock.
func (r *Registry) isSymbol(ref string) bool {
	if _, ok := r.byRef[ref]; ok {
		return true
	}
	_, ok := r.byRef[BuiltinNamespace+Separator+ref]
	return ok
}

// NameOf returns the reference c was registered under. Callables in the
// builtin namespace are reported by their bare name.
func (r *Registry) NameOf(c *node.Callable) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.byCallable[c]
	if !ok {
		name := "<nil>"
		if c != nil {
			name = c.Name()
		}
		return "", &SymbolResolutionError{Ref: name, Segment: name, Unregistered: true}
	}
	return display(key), nil
}

// Refs returns every registered reference, sorted.
func (r *Registry) Refs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make([]string, 0, len(r.byRef))
	for key := range r.byRef {
		refs = append(refs, display(key))
	}
	sort.Strings(refs)
	return refs
}

// Len returns the number of registered callables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRef)
}

func display(key string) string {
	return strings.TrimPrefix(key, BuiltinNamespace+Separator)
}
