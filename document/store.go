package document

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Format names.
const (
	JSON = "json"
	YAML = "yaml"
	HCL  = "hcl"
)

type codec interface {
	decode(src []byte, filename string) (any, error)
	encode(tree any) ([]byte, error)
}

var codecs = map[string]codec{
	JSON: jsonCodec{},
	YAML: yamlCodec{},
	HCL:  hclCodec{},
}

var extensions = map[string]string{
	".json": JSON,
	".yaml": YAML,
	".yml":  YAML,
	".hcl":  HCL,
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (string, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Extensions returns the supported file extensions, sorted.
func Extensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Store loads and saves documents on a filesystem.
type Store struct {
	fs afero.Fs
}

// NewStore returns a Store backed by fs.
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewOsStore returns a Store backed by the OS filesystem.
func NewOsStore() *Store {
	return NewStore(afero.NewOsFs())
}

// Fs returns the filesystem of the store.
func (s *Store) Fs() afero.Fs { return s.fs }

// Load reads the document at path. Files without a known extension are read
// as JSON.
func (s *Store) Load(path string) (any, error) {
	src, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	format, ok := FormatOf(path)
	if !ok {
		format = JSON
	}
	return Decode(format, src, path)
}

// Save writes tree to path in the format named by its extension. Missing
// parent directories are created.
func (s *Store) Save(path string, tree any) error {
	format, ok := FormatOf(path)
	if !ok {
		return fmt.Errorf("%w: %q should end with one of %s", ErrInvalidPath, path, strings.Join(Extensions(), ", "))
	}
	out, err := Encode(format, tree)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for document: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, path, out, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// Decode parses src in the given format. filename is only used in messages.
func Decode(format string, src []byte, filename string) (any, error) {
	c, ok := codecs[format]
	if !ok {
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	tree, err := c.decode(src, filename)
	if err != nil {
		return nil, &MalformedError{Path: filename, Format: format, Err: err}
	}
	return tree, nil
}

// Encode renders tree in the given format.
func Encode(format string, tree any) ([]byte, error) {
	c, ok := codecs[format]
	if !ok {
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	return c.encode(tree)
}
