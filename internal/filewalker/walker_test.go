package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"rpy-translator/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("label start:\n"), 0644))
}

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "script.rpy"))
	touch(t, filepath.Join(root, "script.rpyc"))
	touch(t, filepath.Join(root, "tl", "turkish", "script.RPY"))
	touch(t, filepath.Join(root, "cache", "bytecode.rpy"))
	touch(t, filepath.Join(root, "notes.txt"))

	entries, err := NewWalker(parser.ModeTranslate).Walk(root)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "script.rpy", entries[0].Rel)
	assert.Equal(t, "tl/turkish/script.RPY", entries[1].Rel)
	for _, e := range entries {
		assert.True(t, filepath.IsAbs(e.Path))
		assert.Equal(t, parser.ModeTranslate, e.Mode)
	}
}

func TestWalker_RootMustBeDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "script.rpy")
	touch(t, file)

	_, err := NewWalker(parser.ModeAuto).Walk(file)
	assert.Error(t, err)

	_, err = NewWalker(parser.ModeAuto).Walk(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
