package locate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFind_RecursiveMatchesExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.dcm"))
	writeFile(t, filepath.Join(root, "sub", "b.dcm"))
	writeFile(t, filepath.Join(root, "sub", "c.txt"))

	files, err := Find(root, Options{Extension: ".dcm", Recursive: true})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFind_NonRecursiveSkipsSubdirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.dcm"))
	writeFile(t, filepath.Join(root, "sub", "b.dcm"))

	files, err := Find(root, Options{Extension: ".dcm", Recursive: false})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFind_EmptyExtensionMatchesEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.dcm"))
	writeFile(t, filepath.Join(root, "b.txt"))

	files, err := Find(root, Options{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFind_ExtensionMatchIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.DCM"))

	files, err := Find(root, Options{Extension: ".dcm", Recursive: true})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFind_NonExistentRoot(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "missing"), DefaultOptions())
	assert.Error(t, err)
}

func TestFind_RootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.dcm")
	writeFile(t, file)

	_, err := Find(file, DefaultOptions())
	assert.Error(t, err)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, ".dcm", opts.Extension)
	assert.True(t, opts.Recursive)
}
