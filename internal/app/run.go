package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vk/configo/bridge"
	"github.com/vk/configo/builder"
	"github.com/vk/configo/document"
	"github.com/vk/configo/internal/ctxlog"
	"github.com/vk/configo/internal/fsutil"
	"github.com/vk/configo/node"
)

// Load reads the document at path and resolves it into a Node.
func (a *App) Load(ctx context.Context, path string) (*node.Node, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading document.", "path", path, "shallow_sequences", a.config.ShallowSequences)

	var opts []bridge.Option
	if a.config.ShallowSequences {
		opts = append(opts, bridge.WithShallowSequences())
	}
	n, err := a.loader.Load(path, opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Document loaded.", "path", path, "entries", n.Len())
	return n, nil
}

// Build loads the document at path and builds it with the given call-time
// arguments.
func (a *App) Build(ctx context.Context, path string, args []any, kwargs *orderedmap.OrderedMap[string, any]) (any, error) {
	ctx = a.Context(ctx)
	n, err := a.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	overrides := 0
	if kwargs != nil {
		overrides = kwargs.Len()
	}
	a.logger.Debug("Building document.", "path", path, "args", len(args), "kwargs", overrides)
	result, err := builder.Build(ctx, n, builder.WithArgs(args...), builder.WithKwargs(kwargs))
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", path, err)
	}
	a.logger.Info("Build finished.", "path", path, "result_type", fmt.Sprintf("%T", result))
	return result, nil
}

// Flatten loads the document at path and returns its parameter table.
func (a *App) Flatten(ctx context.Context, path string) (*node.Params, error) {
	n, err := a.Load(a.Context(ctx), path)
	if err != nil {
		return nil, err
	}
	return node.Flatten(n), nil
}

// Tree loads the document at path and renders it as a tree.
func (a *App) Tree(ctx context.Context, path string) (string, error) {
	n, err := a.Load(a.Context(ctx), path)
	if err != nil {
		return "", err
	}
	return node.Render(n), nil
}

// Convert loads src and writes it to dst. Every reference is resolved and
// serialized again on the way, so dst only names registered symbols.
func (a *App) Convert(ctx context.Context, src, dst string) error {
	ctx = a.Context(ctx)
	if _, ok := document.FormatOf(dst); !ok {
		return fmt.Errorf("%w: %q", document.ErrInvalidPath, dst)
	}
	n, err := a.Load(ctx, src)
	if err != nil {
		return err
	}
	if err := a.loader.Dump(n, dst); err != nil {
		return err
	}
	a.logger.Info("Document converted.", "src", src, "dst", dst)
	return nil
}

// Check loads every document under dir and reports all that fail to parse or
// resolve. It returns the number of documents checked.
func (a *App) Check(ctx context.Context, dir string) (int, error) {
	ctx = a.Context(ctx)
	files, err := fsutil.FindFilesByExtension(a.fs, dir, document.Extensions()...)
	if err != nil {
		return 0, fmt.Errorf("finding documents: %w", err)
	}
	a.logger.Debug("Checking documents.", "dir", dir, "count", len(files))

	var errs *multierror.Error
	for _, f := range files {
		if _, err := a.Load(ctx, f); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return len(files), errs.ErrorOrNil()
}

// Symbols returns every registered reference.
func (a *App) Symbols() []string {
	return a.registry.Refs()
}
