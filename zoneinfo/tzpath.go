package zoneinfo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// tzPath lists the directories probed for compiled TZif files, in
// order. It is initialised from the GOZONEINFOPATH environment variable
// (entries separated by the OS path list separator) and falls back to
// the conventional zoneinfo locations.
var (
	tzPathMu sync.RWMutex
	tzPath   = defaultTZPath()
)

func defaultTZPath() []string {
	if env, ok := os.LookupEnv("GOZONEINFOPATH"); ok {
		if env == "" {
			return nil
		}
		return filepath.SplitList(env)
	}
	return []string{
		"/usr/share/zoneinfo",
		"/usr/lib/zoneinfo",
		"/usr/share/lib/zoneinfo",
		"/etc/zoneinfo",
	}
}

// SetTZPath replaces the search path.
func SetTZPath(paths []string) {
	tzPathMu.Lock()
	defer tzPathMu.Unlock()
	tzPath = append([]string(nil), paths...)
}

// TZPath returns a copy of the current search path.
func TZPath() []string {
	tzPathMu.RLock()
	defer tzPathMu.RUnlock()
	return append([]string(nil), tzPath...)
}

// LoadTZData, when non-nil, is consulted for keys that are not present
// on the search path, e.g. to serve files from an embedded or bundled
// database. Returning an error wrapping fs.ErrNotExist reports the key
// as unknown. Replace it before the first zone is constructed.
var LoadTZData func(key string) (io.ReadCloser, error)

// findTZFile resolves a key to a file on the search path. An empty path
// with a nil error means no file was found and the LoadTZData hook
// should be consulted.
func findTZFile(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	for _, dir := range TZPath() {
		p := filepath.Join(dir, key)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", nil
}

// validateKey rejects keys that are not normalized relative paths, so
// that joining a key to a search directory can never escape it.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.ContainsAny(key, "\\\x00") {
		return fmt.Errorf("zoneinfo: %w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		switch part {
		case "", ".", "..":
			return fmt.Errorf("zoneinfo: %w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
