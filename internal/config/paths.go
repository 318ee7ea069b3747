package config

import (
	"path/filepath"
)

// Resolved returns a copy of d with every relative source path joined to
// Root. Absolute paths and an empty Root leave the paths unchanged.
func (d DataConfig) Resolved() DataConfig {
	if d.Root == "" {
		return d
	}
	d.ONETDir = resolvePath(d.Root, d.ONETDir)
	d.ITUFile = resolvePath(d.Root, d.ITUFile)
	d.BLSFile = resolvePath(d.Root, d.BLSFile)
	return d
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
