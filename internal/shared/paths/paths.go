package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under each XDG base directory.
const AppName = "phishguard"

// File names
const (
	IdentityFileName = "identity.json"
	EnvFileName      = ".env"
	ProfilesDirName  = "profiles"
)

// DataDir returns the agent's data directory.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ConfigDir returns the agent's config directory.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// IdentityFile returns the default location of the file-backed store.
func IdentityFile() string {
	return filepath.Join(DataDir(), IdentityFileName)
}

// EnvFile returns the per-user .env file.
func EnvFile() string {
	return filepath.Join(ConfigDir(), EnvFileName)
}

// ProfilesDir returns the directory searched for named guard profiles.
func ProfilesDir() string {
	return filepath.Join(ConfigDir(), ProfilesDirName)
}

// Profile resolves a guard profile reference. Anything that looks like a
// path is returned unchanged; a bare name maps to <ProfilesDir>/<name>.yaml,
// or .toml when only that exists.
func Profile(ref string) string {
	if ref == "" || strings.ContainsRune(ref, filepath.Separator) || filepath.Ext(ref) != "" {
		return ref
	}
	yaml := filepath.Join(ProfilesDir(), ref+".yaml")
	toml := filepath.Join(ProfilesDir(), ref+".toml")
	if _, err := os.Stat(yaml); err != nil {
		if _, err := os.Stat(toml); err == nil {
			return toml
		}
	}
	return yaml
}

// EnsureDir creates the parent directory of file with private permissions.
func EnsureDir(file string) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
