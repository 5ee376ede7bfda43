// Package paths resolves jellytidy's per-user directories.
//
// Under sudo the directories belong to the invoking user (SUDO_USER), not
// root, so a plan written as a normal user is found again by a privileged
// apply.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

const appName = "jellytidy"

// UserHomeDir returns the home directory of the actual user.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// UserConfigDir returns ~/.config for the actual user.
func UserConfigDir() (string, error) {
	homeDir, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config"), nil
}

// AppDir returns ~/.config/jellytidy.
func AppDir() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

func inAppDir(elem ...string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// ConfigPath returns ~/.config/jellytidy/config.toml.
func ConfigPath() (string, error) {
	return inAppDir("config.toml")
}

// PlansDir returns ~/.config/jellytidy/plans.
func PlansDir() (string, error) {
	return inAppDir("plans")
}

// HistoryPath returns the SQLite plan archive, ~/.config/jellytidy/history.db.
func HistoryPath() (string, error) {
	return inAppDir("history.db")
}

// LogPath returns ~/.config/jellytidy/logs/jellytidy.log.
func LogPath() (string, error) {
	return inAppDir("logs", appName+".log")
}

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
