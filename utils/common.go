// Common package contains small file and path helpers shared by the harness stages
// Exporting these functions from the Common package reduces redundant code
package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RemoveIfExists deletes a file, treating an already-missing file as success.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LocalExecutable turns a bare executable name into a path exec will not look up in $PATH.
// Names that already contain a separator are returned unchanged.
func LocalExecutable(name string) string {
	if name == "" || filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return name
	}
	return "." + string(filepath.Separator) + name
}

// ParseIntList parses a comma separated list such as "100,200,300".
// Whitespace around entries is ignored; empty entries are rejected.
func ParseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in list", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// SizeRange expands start..end (inclusive) in steps, e.g. 100..1200 step 100.
func SizeRange(start, end, step int) ([]int, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %d", step)
	}
	if start <= 0 || end < start {
		return nil, fmt.Errorf("invalid range %d..%d", start, end)
	}
	var out []int
	for n := start; n <= end; n += step {
		out = append(out, n)
	}
	return out, nil
}
