package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/vk/configo"
	"github.com/vk/configo/internal/ctxlog"
	"github.com/vk/configo/registry"
)

// App encapsulates the application's dependencies and configuration.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	fs       afero.Fs
	registry *registry.Registry
	loader   *configo.Loader
}

// NewApp is the constructor for the main application. Logs go to logW, command
// output to outW. Without explicit modules the core modules are registered.
// A module that fails to register is a programmer error and panics.
func NewApp(outW, logW io.Writer, cfg *Config, fs afero.Fs, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = CoreModules(outW)
	}
	if err := reg.RegisterModules(modules...); err != nil {
		panic(fmt.Errorf("failed to register modules: %w", err))
	}
	logger.Debug("All Go modules registered.", "modules", len(modules), "symbols", reg.Len())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		fs:       fs,
		registry: reg,
		loader:   configo.NewLoader(reg, fs),
	}
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Context returns ctx carrying the application's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
