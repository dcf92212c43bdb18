package env

import (
	"context"
	"os"
	"strings"

	"github.com/vk/configo/node"
	"github.com/vk/configo/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Environ and Getwd default to the os functions.
	Environ func() []string
	Getwd   func() (string, error)
}

// GetInput names a variable and the value to use when it is unset.
type GetInput struct {
	Name    string `cfg:"name"`
	Default string `cfg:"default"`
}

func (m *Module) vars() map[string]string {
	environ := m.Environ
	if environ == nil {
		environ = os.Environ
	}
	envMap := make(map[string]string)
	for _, e := range environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Get returns the value of one environment variable.
func (m *Module) Get(ctx context.Context, in *GetInput) (string, error) {
	if v, ok := m.vars()[in.Name]; ok {
		return v, nil
	}
	return in.Default, nil
}

// All returns the whole environment.
func (m *Module) All(ctx context.Context) (map[string]string, error) {
	return m.vars(), nil
}

// Cwd returns the working directory.
func (m *Module) Cwd(ctx context.Context) (string, error) {
	if m.Getwd != nil {
		return m.Getwd()
	}
	return os.Getwd()
}

// Register registers the callables under the "env" module path.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterEach(
		registry.Symbol{Ref: "env.get", Callable: node.MustCallable(m.Get, node.WithName("env.Get"))},
		registry.Symbol{Ref: "env.all", Callable: node.MustCallable(m.All, node.WithName("env.All"))},
		registry.Symbol{Ref: "env.cwd", Callable: node.MustCallable(m.Cwd, node.WithName("env.Cwd"))},
	)
}
