package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

// GetUserHomeDir returns the user's home directory on linux, windows or macOS
// taken from: https://gist.github.com/miguelmota/f30a04a6d64bd52d7ab59ea8d95e54da
func GetUserHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		if home == "" {
			home = os.Getenv("USERPROFILE")
		}
		return home
	} else if runtime.GOOS == "linux" {
		home := os.Getenv("XDG_CONFIG_HOME")
		if home != "" {
			return home
		}
	}
	return os.Getenv("HOME")
}

// DefaultKeyFile is where govctl looks for keys when none are configured.
func DefaultKeyFile() string {
	return filepath.Join(GetUserHomeDir(), ".oceanguard", "keys")
}

// Exists checks if the given file or folder for a path exists
func Exists(path string) bool {
	if path == "" {
		return false
	}

	_, err := os.Stat(path)
	if err != nil || os.IsNotExist(err) {
		return false
	}

	return true
}

// Read reads data from a file
func Read(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// AppendLine appends line to the file at path, creating the file and its
// folder readable only by the owner.
func AppendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
