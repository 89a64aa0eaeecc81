package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path of the user-level config file, following
// the platform's user config directory (XDG on Linux).
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "changelog", "config.yml"), nil
}

// UserConfigDir returns the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "changelog"), nil
}

// ProjectConfigPath returns the project-level config file path, relative to
// the current directory.
func ProjectConfigPath() string {
	return filepath.Join(".changelog", "config.yml")
}

// ProjectConfigDir returns the project-level config directory.
func ProjectConfigDir() string {
	return ".changelog"
}
