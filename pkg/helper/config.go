package helper

import (
	"os"
	"path/filepath"
)

const systemCfgDir = "/etc/collab"

// GetCfgPath resolves where a configuration file lives. An absolute
// filename is returned as-is; otherwise the working directory and its
// configs/ subdirectory are searched, falling back to the system config
// directory.
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}
	if filepath.IsAbs(filename) {
		return filename
	}

	if wd, err := os.Getwd(); err == nil && wd != "" {
		for _, dir := range []string{wd, filepath.Join(wd, "configs")} {
			candidate := filepath.Join(dir, filename)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
		}
	}

	return filepath.Join(systemCfgDir, filename)
}
