package ingest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// denyListDirs are always skipped during discovery regardless of the
// caller's glob patterns (spec.md §4.4 step 1).
var denyListDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".cache":       true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
}

// DiscoveredFile is one file surfaced by Discover, before parsing.
type DiscoveredFile struct {
	AbsPath string
	RelPath string
	Size    int64
	ModTime time.Time
}

// Discover walks root recursively, excluding the deny-list directories
// and any dot-prefixed path component, and returns files matching
// patterns (or every file, if patterns is empty) sorted by relative
// path for determinism.
func Discover(root string, patterns []string) ([]DiscoveredFile, error) {
	var out []DiscoveredFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		base := d.Name()
		if strings.HasPrefix(base, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if denyListDirs[base] {
				return filepath.SkipDir
			}
			return nil
		}
		rel = filepath.ToSlash(rel)
		if len(patterns) > 0 && !matchesAny(rel, patterns) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, DiscoveredFile{AbsPath: path, RelPath: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func matchesAny(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(p, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}
