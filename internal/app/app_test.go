package app

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vk/configo/document"
	"github.com/vk/configo/modules/arith"
	"github.com/vk/configo/registry"
)

const arithDoc = `{
    "self_build": true,
    "obj": "arith.add",
    "a": 10,
    "b": {
        "obj": "arith.multiply",
        "a": 4,
        "b": 2
    }
}
`

func newTestFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{LogLevel: "DEBUG"})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = NewConfig(Config{LogFormat: "xml"})
	assert.ErrorContains(t, err, "invalid log-format")

	_, err = NewConfig(Config{LogLevel: "loud"})
	assert.ErrorContains(t, err, "invalid log-level")
}

func TestNewApp_PanicsOnDuplicateModules(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		NewApp(&SafeBuffer{}, &SafeBuffer{}, &Config{}, afero.NewMemMapFs(), &arith.Module{}, &arith.Module{})
	})
}

func TestApp_Build(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("builds the document", func(t *testing.T) {
		// Arrange
		a, _, logs := SetupAppTest(t, &Config{}, newTestFs(t, map[string]string{"exp.json": arithDoc}))

		// Act
		got, err := a.Build(ctx, "exp.json", nil, nil)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 18.0, got)
		assert.Contains(t, logs.String(), "Build finished.")
	})

	t.Run("keyword override", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, &Config{}, newTestFs(t, map[string]string{"exp.json": arithDoc}))
		kw := orderedmap.New[string, any]()
		kw.Set("a", 2)

		got, err := a.Build(ctx, "exp.json", nil, kw)

		require.NoError(t, err)
		assert.Equal(t, 10.0, got)
	})

	t.Run("print writes to the output", func(t *testing.T) {
		doc := `{"obj": "print", "__args__": ["hello"], "k": 1}`
		a, out, _ := SetupAppTest(t, &Config{}, newTestFs(t, map[string]string{"p.json": doc}))

		_, err := a.Build(ctx, "p.json", nil, nil)

		require.NoError(t, err)
		assert.Equal(t, "      hello\n      k = 1\n", out.String())
	})

	t.Run("unknown symbol", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, &Config{}, newTestFs(t, map[string]string{"bad.json": `{"obj": "arith.pow"}`}))

		_, err := a.Build(ctx, "bad.json", nil, nil)

		assert.ErrorIs(t, err, registry.ErrSymbolResolution)
	})
}

func TestApp_FlattenAndTree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, _, _ := SetupAppTest(t, &Config{}, newTestFs(t, map[string]string{"exp.json": arithDoc}))

	params, err := a.Flatten(ctx, "exp.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b_a", "b_b"}, params.Keys())

	tree, err := a.Tree(ctx, "exp.json")
	require.NoError(t, err)
	assert.Contains(t, tree, "arith.Add() *")
	assert.Contains(t, tree, "[b]  arith.Multiply()")
}

func TestApp_Convert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newTestFs(t, map[string]string{"exp.json": arithDoc})
	a, _, _ := SetupAppTest(t, &Config{}, fs)

	require.NoError(t, a.Convert(ctx, "exp.json", "out/exp.yaml"))

	got, err := a.Build(ctx, "out/exp.yaml", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 18.0, got)

	err = a.Convert(ctx, "exp.json", "exp.txt")
	require.ErrorIs(t, err, document.ErrInvalidPath)
	exists, _ := afero.Exists(fs, "exp.txt")
	assert.False(t, exists)
}

func TestApp_Check(t *testing.T) {
	t.Parallel()
	fs := newTestFs(t, map[string]string{
		"conf/good.json":      arithDoc,
		"conf/nested/ok.yaml": "obj: arith.add\na: 1\nb: 2\n",
		"conf/broken.json":    `{"obj": `,
		"conf/unknown.hcl":    `obj = "nope.thing"`,
		"conf/readme.md":      "not a document",
	})
	a, _, _ := SetupAppTest(t, &Config{}, fs)

	count, err := a.Check(context.Background(), "conf")

	assert.Equal(t, 4, count)
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrMalformedDocument)
	assert.ErrorIs(t, err, registry.ErrSymbolResolution)
	assert.NotContains(t, err.Error(), "good.json")
}

func TestApp_Symbols(t *testing.T) {
	t.Parallel()
	a, _, _ := SetupAppTest(t, &Config{}, afero.NewMemMapFs())

	symbols := a.Symbols()

	assert.Contains(t, symbols, "arith.add")
	assert.Contains(t, symbols, "layers.Sequential")
	assert.Contains(t, symbols, "print")
	assert.Contains(t, symbols, "env.get")
	assert.Contains(t, symbols, "http.Client")
}
