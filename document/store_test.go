package document

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type kv struct {
	Key   string
	Value any
}

// orderedPairs lets cmp compare ordered maps including their key order.
var orderedPairs = cmp.Transformer("orderedPairs", func(m *orderedmap.OrderedMap[string, any]) []kv {
	out := make([]kv, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, kv{Key: pair.Key, Value: pair.Value})
	}
	return out
})

func omap(pairs ...any) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any]()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func sampleTree() *orderedmap.OrderedMap[string, any] {
	return omap(
		"self_build", true,
		"obj", "layers.Sequential",
		"__args__", []any{
			omap("obj", "layers.Linear", "in_features", int64(4), "out_features", int64(3)),
			omap("obj", "layers.ReLU"),
		},
		"lr", 0.25,
		"name", "tiny net",
		"note", nil,
	)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"exp/net.json", "exp/net.yaml", "exp/net.yml", "exp/net.hcl"} {
		path := path
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			// Arrange
			store := NewStore(afero.NewMemMapFs())
			want := sampleTree()

			// Act
			require.NoError(t, store.Save(path, want))
			got, err := store.Load(path)

			// Assert
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, orderedPairs); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveJSONUsesFourSpaceIndent(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	store := NewStore(fs)

	require.NoError(t, store.Save("out.json", omap("obj", "arith.add", "a", int64(1))))

	raw, err := afero.ReadFile(fs, "out.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"obj\": \"arith.add\",\n    \"a\": 1\n}\n", string(raw))
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	store := NewStore(fs)

	err := store.Save("out.txt", omap())

	require.ErrorIs(t, err, ErrInvalidPath)
	exists, statErr := afero.Exists(fs, "out.txt")
	require.NoError(t, statErr)
	assert.False(t, exists)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("unknown extension is read as JSON", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "exp.cfg", []byte(`{"b": 1, "a": 2.5}`), 0o644))

		got, err := NewStore(fs).Load("exp.cfg")

		require.NoError(t, err)
		if diff := cmp.Diff(omap("b", int64(1), "a", 2.5), got, orderedPairs); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewStore(afero.NewMemMapFs()).Load("nope.json")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed documents", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		files := map[string]string{
			"bad.json":      `{"a": 1,}`,
			"trailing.json": `{"a": 1} {"b": 2}`,
			"bad.yaml":      "a: [1, 2\n",
			"bad.hcl":       "a = \n",
		}
		for name, src := range files {
			require.NoError(t, afero.WriteFile(fs, name, []byte(src), 0o644))
		}
		store := NewStore(fs)

		for name := range files {
			_, err := store.Load(name)
			require.ErrorIs(t, err, ErrMalformedDocument, name)
			var malformed *MalformedError
			require.True(t, errors.As(err, &malformed), name)
			assert.Equal(t, name, malformed.Path)
		}
	})
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()
	src := `
obj: arith.add
b: 2
a:
  obj: arith.multiply
  a: 4
  b: 2
shared: &base
  x: 1
copy: *base
`
	got, err := Decode(YAML, []byte(src), "inline.yaml")

	require.NoError(t, err)
	want := omap(
		"obj", "arith.add",
		"b", int64(2),
		"a", omap("obj", "arith.multiply", "a", int64(4), "b", int64(2)),
		"shared", omap("x", int64(1)),
		"copy", omap("x", int64(1)),
	)
	if diff := cmp.Diff(want, got, orderedPairs); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHCL(t *testing.T) {
	t.Parallel()

	t.Run("attributes, blocks and functions in source order", func(t *testing.T) {
		src := `
self_build = true
obj = "layers.Sequential"

optimizer {
  name = upper("sgd")
  lr   = max(0.1, 0.01)
}

layer "first" {
  width = length([1, 2, 3])
}

tags = concat(["a"], ["b"])
label = format("%s-%d", "run", 7)
pair = { z = 1, a = join("/", ["x", "y"]) }
`
		got, err := Decode(HCL, []byte(src), "inline.hcl")

		require.NoError(t, err)
		want := omap(
			"self_build", true,
			"obj", "layers.Sequential",
			"optimizer", omap("name", "SGD", "lr", 0.1),
			"layer", omap("first", omap("width", int64(3))),
			"tags", []any{"a", "b"},
			"label", "run-7",
			"pair", omap("z", int64(1), "a", "x/y"),
		)
		if diff := cmp.Diff(want, got, orderedPairs); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("duplicate blocks are rejected", func(t *testing.T) {
		_, err := Decode(HCL, []byte("a {\n}\na {\n}\n"), "dup.hcl")
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})
}

func TestEncodeHCL(t *testing.T) {
	t.Parallel()

	t.Run("renders attributes", func(t *testing.T) {
		out, err := Encode(HCL, omap("obj", "arith.add", "a", int64(10), "__args__", []any{int64(1), "x"}))

		require.NoError(t, err)
		text := string(out)
		assert.Contains(t, text, `obj      = "arith.add"`)
		assert.Contains(t, text, `__args__ = [1, "x"]`)
		assert.Less(t, strings.Index(text, "obj"), strings.Index(text, "__args__"))
	})

	t.Run("rejects invalid names and non-mapping roots", func(t *testing.T) {
		_, err := Encode(HCL, omap("not valid", int64(1)))
		assert.ErrorIs(t, err, ErrUnencodable)

		_, err = Encode(HCL, []any{int64(1)})
		assert.ErrorIs(t, err, ErrUnencodable)
	})
}

func TestFormatOf(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		path   string
		format string
		ok     bool
	}{
		{"a.json", JSON, true},
		{"a.JSON", JSON, true},
		{"dir/a.yml", YAML, true},
		{"a.yaml", YAML, true},
		{"a.hcl", HCL, true},
		{"a.txt", "", false},
		{"noext", "", false},
	}
	for _, tc := range testCases {
		format, ok := FormatOf(tc.path)
		assert.Equal(t, tc.ok, ok, tc.path)
		assert.Equal(t, tc.format, format, tc.path)
	}
	assert.Equal(t, []string{".hcl", ".json", ".yaml", ".yml"}, Extensions())
}
