package ambient

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const configFileName = "config.toml"

// GetConfigPath resolves the frontconf configuration directory and file path.
// FRONTCONF_HOME wins, then XDG_CONFIG_HOME/frontconf, then
// ~/.config/frontconf.
func GetConfigPath() (string, string, error) {
	if override := strings.TrimSpace(os.Getenv("FRONTCONF_HOME")); override != "" {
		dir := filepath.Clean(override)
		if !filepath.IsAbs(dir) {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return "", "", fmt.Errorf("resolve FRONTCONF_HOME %q: %w", override, err)
			}
			dir = abs
		}
		return dir, filepath.Join(dir, configFileName), nil
	}

	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		dir := filepath.Join(base, "frontconf")
		return dir, filepath.Join(dir, configFileName), nil
	}

	home, err := resolveHomeDir()
	if err != nil {
		return "", "", err
	}
	dir := filepath.Join(home, ".config", "frontconf")
	return dir, filepath.Join(dir, configFileName), nil
}

// resolveHomeDir reads HOME-style variables on each call instead of trusting
// os.UserHomeDir alone, so tests that rewrite the environment see the change.
func resolveHomeDir() (string, error) {
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		drive := strings.TrimSpace(os.Getenv("HOMEDRIVE"))
		path := strings.TrimSpace(os.Getenv("HOMEPATH"))
		if drive != "" && path != "" {
			home = filepath.Join(drive, path)
		} else {
			home = strings.TrimSpace(os.Getenv("USERPROFILE"))
		}
	}
	if home != "" {
		return filepath.Clean(home), nil
	}

	resolved, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(resolved) == "" {
		if err == nil {
			err = fmt.Errorf("home directory not found")
		}
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Clean(resolved), nil
}
