package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/vk/configo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type rootOptions struct {
	logFormat        string
	logLevel         string
	shallowSequences bool
}

// NewRootCommand returns the configo command tree. Command output goes to
// outW, logs to errW. Documents are read from and written to fs.
func NewRootCommand(outW, errW io.Writer, fs afero.Fs) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "configo",
		Short: "Build, inspect and convert configuration documents",
		Long: `configo turns configuration documents into live objects.

A document is a JSON, YAML or HCL mapping. Mappings with an "obj" key name a
registered callable, "__args__" holds its positional arguments and
"self_build" builds nested callables first.

Examples:
  configo build experiment.yaml --set lr=0.01
  configo flatten experiment.json
  configo convert experiment.json experiment.hcl
  configo check ./configs`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().BoolVar(&opts.shallowSequences, "shallow-sequences", false, "Leave mappings inside sequences unresolved when loading.")

	newApp := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := app.NewConfig(app.Config{
			LogFormat:        opts.logFormat,
			LogLevel:         opts.logLevel,
			ShallowSequences: opts.shallowSequences,
		})
		if err != nil {
			return nil, &ExitError{Code: 2, Message: err.Error()}
		}
		return app.NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, fs), nil
	}

	root.AddCommand(
		newBuildCommand(newApp),
		newFlattenCommand(newApp),
		newTreeCommand(newApp),
		newConvertCommand(newApp),
		newCheckCommand(newApp),
		newSymbolsCommand(newApp),
	)
	return root
}

type appFactory func(cmd *cobra.Command) (*app.App, error)

func newBuildCommand(newApp appFactory) *cobra.Command {
	var sets, positionals []string
	cmd := &cobra.Command{
		Use:   "build FILE",
		Short: "Build a document and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			kwargs, err := parseSets(sets)
			if err != nil {
				return err
			}
			callArgs := make([]any, 0, len(positionals))
			for _, raw := range positionals {
				v, err := parseValue(raw)
				if err != nil {
					return &ExitError{Code: 2, Message: fmt.Sprintf("invalid --arg %q: %v", raw, err)}
				}
				callArgs = append(callArgs, v)
			}

			result, err := a.Build(cmd.Context(), args[0], callArgs, kwargs)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Override a keyword argument of the root callable (key=value).")
	cmd.Flags().StringArrayVar(&positionals, "arg", nil, "Prepend a positional argument for the root callable.")
	return cmd
}

func newFlattenCommand(newApp appFactory) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "flatten FILE",
		Short: "Print the flattened parameters of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			params, err := a.Flatten(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !asJSON {
				_, err = fmt.Fprint(cmd.OutOrStdout(), params)
				return err
			}
			out, err := json.Marshal(params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parameters as a JSON object.")
	return cmd
}

func newTreeCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the structure of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			tree, err := a.Tree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tree)
			return err
		},
	}
}

func newConvertCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Rewrite a document in the format of the destination extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.Convert(cmd.Context(), args[0], args[1])
		},
	}
}

func newCheckCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "check DIR",
		Short: "Load every document under a directory and report failures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			count, err := a.Check(cmd.Context(), args[0])
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d documents ok\n", count)
			return err
		},
	}
}

func newSymbolsCommand(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List the registered callables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(a.Symbols(), "\n"))
			return err
		},
	}
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	var exitErr *ExitError
	if err == nil || errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// parseSets turns key=value pairs into keyword arguments, keeping flag order.
func parseSets(sets []string) (*orderedmap.OrderedMap[string, any], error) {
	kwargs := orderedmap.New[string, any]()
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return nil, &ExitError{Code: 2, Message: fmt.Sprintf("invalid --set %q: expected key=value", s)}
		}
		v, err := parseValue(raw)
		if err != nil {
			return nil, &ExitError{Code: 2, Message: fmt.Sprintf("invalid --set %q: %v", s, err)}
		}
		kwargs.Set(key, v)
	}
	return kwargs, nil
}

// parseValue reads a flag value as YAML, so "3" is an int, "true" a bool and
// "[1, 2]" a list. Mappings stay strings.
func parseValue(raw string) (any, error) {
	if raw == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	if _, ok := v.(map[string]any); ok {
		return raw, nil
	}
	return v, nil
}
