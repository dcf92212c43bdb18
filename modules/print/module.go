package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vk/configo/internal/ctxlog"
	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

// Module implements the registry.Module interface for this package. It
// registers "print" in the builtin namespace.
type Module struct {
	// Out receives the printed lines. Nil means os.Stdout.
	Out io.Writer
}

func (m *Module) out() io.Writer {
	if m.Out == nil {
		return os.Stdout
	}
	return m.Out
}

// Print writes its positional arguments and then its keyword arguments, sorted
// by key, one per line. It returns the keyword arguments.
func (m *Module) Print(ctx context.Context, call *node.Call) (any, error) {
	ctxlog.FromContext(ctx).Debug("Printing input.", "positional", len(call.Args))
	w := m.out()

	for _, a := range call.Args {
		if _, err := fmt.Fprintf(w, "      %v\n", a); err != nil {
			return nil, err
		}
	}

	values := make(map[string]any)
	if call.Kwargs != nil {
		for pair := call.Kwargs.Oldest(); pair != nil; pair = pair.Next() {
			values[pair.Key] = pair.Value
		}
	}
	if len(call.Args) == 0 && len(values) == 0 {
		_, err := fmt.Fprintln(w, "      (null)")
		return values, err
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "      %s = %v\n", k, values[k]); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// Register registers the print callable.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register("print", node.MustCallable(node.Func(m.Print), node.WithName("print")))
}
