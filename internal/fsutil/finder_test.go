package fsutil

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// Arrange
	fs := afero.NewMemMapFs()
	for _, name := range []string{"exp/b.json", "exp/a.YAML", "exp/nested/c.hcl", "exp/notes.txt", "exp/nested/d.json.bak"} {
		require.NoError(t, afero.WriteFile(fs, name, []byte("{}"), 0o644))
	}

	// Act
	files, err := FindFilesByExtension(fs, "exp", ".json", ".yaml", ".hcl")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"exp/a.YAML", "exp/b.json", "exp/nested/c.hcl"}, files)
}

func TestFindFilesByExtensionErrors(t *testing.T) {
	t.Parallel()

	_, err := FindFilesByExtension(afero.NewMemMapFs(), "missing", ".json")
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(afero.NewMemMapFs(), ".") })
}
