// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// SplitModelOutput turns an --output value into a store directory and a model base name.
// "models/quality.model" and "models/quality" both yield ("models", "quality").
// A bare name is placed in defaultDir.
func SplitModelOutput(output, defaultDir string) (dir, name string) {
	output = ExpandPath(output)
	dir, file := filepath.Split(output)
	name = strings.TrimSuffix(file, filepath.Ext(file))
	if dir == "" {
		dir = defaultDir
	}
	return filepath.Clean(dir), name
}
