package common

import (
	"os"
	"path/filepath"
)

func ConfigDir() string {
	home := configHome()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "keyer")
}

// https://specifications.freedesktop.org/basedir/latest/#variables
func configHome() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return dir
}
