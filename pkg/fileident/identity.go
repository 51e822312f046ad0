// Package fileident implements per-file identity (device+inode on Unix;
// on Windows, a hash of the file's base name) and the case-insensitive
// import-root path resolver that sits in front of it.
package fileident

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
)

// Identity is a stable key per on-disk file, used by the import graph
// loader to deduplicate imports and detect cycles.
type Identity struct {
	Device uint64
	Inode  uint64
}

// Identify stats path and returns its stable Identity.
func Identify(path string) (Identity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Identity{}, jsfxerr.NewIoError("stat", path, err)
	}
	return identityFromInfo(info), nil
}

// Resolver performs case-insensitive file lookup under an import root plus
// the importer's own directory.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver rooted at root (the Configuration's
// import-root).
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Resolve finds the on-disk file that importPath refers to, searching in
// order: alongside importerDir, then under the import root, then
// recursively under both. The match is case-insensitive even on
// case-sensitive filesystems.
func (r *Resolver) Resolve(importerDir, importPath string) (string, error) {
	candidates := []string{
		filepath.Join(importerDir, importPath),
	}
	if r.root != "" {
		candidates = append(candidates, filepath.Join(r.root, importPath))
	}

	for _, c := range candidates {
		if abs, ok := exactOrCaseInsensitive(c); ok {
			return abs, nil
		}
	}

	// Recursive search: walk both roots and take the first file, in walk
	// order, whose case-folded relative path equals importPath, ends with
	// "/"+importPath, or has the same base name as importPath.
	searchRoots := []string{importerDir}
	if r.root != "" {
		searchRoots = append(searchRoots, r.root)
	}
	target := filepath.ToSlash(importPath)
	for _, root := range searchRoots {
		if root == "" {
			continue
		}
		if found, ok := recursiveFind(root, target); ok {
			return found, nil
		}
	}

	return "", &jsfxerr.ImportNotFound{
		ParseError: jsfxerr.ParseError{Message: "import not found: " + importPath},
		Path:       importPath,
	}
}

// exactOrCaseInsensitive stats path directly, then falls back to a
// case-insensitive scan of its parent directory.
func exactOrCaseInsensitive(path string) (string, bool) {
	if _, err := os.Stat(path); err == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return path, true
		}
		return abs, true
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	lowerBase := strings.ToLower(base)
	for _, e := range entries {
		if strings.ToLower(e.Name()) == lowerBase {
			abs, err := filepath.Abs(filepath.Join(dir, e.Name()))
			if err != nil {
				return filepath.Join(dir, e.Name()), true
			}
			return abs, true
		}
	}
	return "", false
}

// recursiveFind walks root looking for a file whose slash-form relative
// path equals target or ends with "/"+target, or whose base name equals
// target's base name, all case-insensitively; the first match wins.
func recursiveFind(root, target string) (string, bool) {
	lowerTarget := strings.ToLower(target)
	var found string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relSlash := strings.ToLower(filepath.ToSlash(rel))
		if relSlash == lowerTarget || strings.HasSuffix(relSlash, "/"+lowerTarget) || filepath.Base(relSlash) == filepath.Base(lowerTarget) {
			abs, err := filepath.Abs(path)
			if err == nil {
				found = abs
			} else {
				found = path
			}
		}
		return nil
	})
	if found == "" {
		return "", false
	}
	return found, true
}
