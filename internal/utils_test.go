package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidVideoID(t *testing.T) {
	assert.True(t, IsValidVideoID("dQw4w9WgXcQ"))
	assert.True(t, IsValidVideoID("a-b_c123XYZ"))
	assert.False(t, IsValidVideoID("short"))
	assert.False(t, IsValidVideoID("dQw4w9WgXcQtoolong"))
	assert.False(t, IsValidVideoID("dQw4w9WgXc!"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	assert.False(t, FileExists(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.True(t, FileExists(path))
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	nested := filepath.Join(base, "a", "b")
	require.NoError(t, EnsureDirs(nested, filepath.Join(base, "c")))

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
