package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"udalist/internal/history"
)

// CheckReadableDir verifies that the directory exists and can be listed.
func CheckReadableDir(name, path string) Result {
	if res, ok := statDir(name, path); !ok {
		return res
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if res, ok := statDir(name, path); !ok {
		return res
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDir accepts a missing directory when its nearest existing
// ancestor is writable, since the build creates it.
func CheckOutputDir(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckHistory opens the history database to surface schema mismatches early.
func CheckHistory(path string) Result {
	const name = "History database"
	store, err := history.Open(path)
	if err != nil {
		if errors.Is(err, history.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: schema mismatch, delete the file)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	_ = store.Close()
	return Result{Name: name, Passed: true, Detail: path}
}

func statDir(name, path string) (Result, bool) {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}, false
	}
	return Result{}, true
}
