package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExt is the extension of files collected from a directory.
const sourceExt = ".js"

// CollectSources returns explicit followed by the .js files directly inside
// dir (sorted, not recursive). Duplicate paths are dropped, keeping the
// first occurrence.
func CollectSources(explicit []string, dir string) ([]string, error) {
	sources := make([]string, 0, len(explicit))
	seen := make(map[string]bool)

	add := func(p string) {
		key := filepath.Clean(p)
		if seen[key] {
			return
		}
		seen[key] = true
		sources = append(sources, p)
	}

	for _, p := range explicit {
		add(p)
	}

	if dir == "" {
		return sources, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	found := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), sourceExt) {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}
	sort.Strings(found)

	for _, p := range found {
		add(p)
	}
	return sources, nil
}
