package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rpy-translator/internal/parser"

	"github.com/rs/zerolog/log"
)

// ScriptExtension is the only file type handled by the tool. Compiled
// .rpyc files are never touched.
const ScriptExtension = ".rpy"

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":  true,
	"cache": true,
	"saves": true,
}

// Walker discovers Ren'Py script files under a directory.
type Walker struct {
	mode parser.Mode
}

// NewWalker creates a Walker that tags every entry with mode.
func NewWalker(mode parser.Mode) *Walker {
	return &Walker{mode: mode}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path string
	// Rel is Path relative to the walked root, slash separated.
	Rel  string
	Mode parser.Mode
}

// Walk discovers all script files under root, sorted by relative path.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.ToLower(filepath.Ext(path)) != ScriptExtension {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}

		entries = append(entries, FileEntry{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Mode: w.mode,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered scripts")
	return entries, nil
}
