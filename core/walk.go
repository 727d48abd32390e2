package core

import (
	"io/fs"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// collectMedia gathers files under root in a stable pre-order walk;
// WalkDir visits each directory's entries in lexical order, which is the
// traversal order collision resolution later depends on. keep selects the
// extension set (the fill run casts a wider net than the mover). skipDir,
// when non-empty, prunes that subtree (the mover's destination).
func collectMedia(logger hclog.Logger, root, skipDir string, keep func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if skipDir != "" && path == skipDir {
				return filepath.SkipDir
			}
			return nil
		}
		if keep(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
