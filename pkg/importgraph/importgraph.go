// Package importgraph recursively resolves and loads a source file's
// `import:` directives into a dependency-ordered graph, with
// case-insensitive path resolution, cycle detection, and diamond-import
// deduplication.
package importgraph

import (
	"os"
	"path/filepath"

	"github.com/audioscript/jsfxgo/pkg/fileident"
	"github.com/audioscript/jsfxgo/pkg/jsfxconfig"
	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
	"github.com/audioscript/jsfxgo/pkg/parse"
	"github.com/audioscript/jsfxgo/pkg/preprocess"
)

// MaxDepth is the maximum import recursion depth before the loader gives up
// with an ImportTooDeep error.
const MaxDepth = 32

// Node is one loaded file: its resolved path, stable identity, preprocessed
// source, and parsed Unit.
type Node struct {
	Path     string
	Identity fileident.Identity
	Unit     parse.Unit
	Source   string
}

// Graph is a fully loaded source and its transitive imports.
type Graph struct {
	Root *Node

	// Imports holds every distinct imported file, in dependency-first
	// (topological) order: a file always appears after everything it
	// imports and before everything that imports it, and exactly once no
	// matter how many times it is reached (diamond dependencies collapse
	// to their first completed load).
	Imports []*Node
}

type loader struct {
	resolver *fileident.Resolver
	visiting map[fileident.Identity]bool
	visited  map[fileident.Identity]*Node
	order    []*Node
}

// Load reads rootPath, preprocesses and parses it, then recursively does the
// same for every file it imports (and everything those import, and so on),
// resolving each import path via cfg's import root.
func Load(cfg *jsfxconfig.Configuration, rootPath string) (*Graph, error) {
	l := &loader{
		resolver: fileident.NewResolver(cfg.ImportRoot()),
		visiting: make(map[fileident.Identity]bool),
		visited:  make(map[fileident.Identity]*Node),
	}

	root, err := l.load(rootPath, 0)
	if err != nil {
		return nil, err
	}

	imports := make([]*Node, 0, len(l.order))
	for _, n := range l.order {
		if n.Identity != root.Identity {
			imports = append(imports, n)
		}
	}
	return &Graph{Root: root, Imports: imports}, nil
}

func (l *loader) load(path string, depth int) (*Node, error) {
	if depth > MaxDepth {
		return nil, &jsfxerr.ImportTooDeep{
			ParseError: jsfxerr.ParseError{File: path, Message: "import nesting exceeds maximum depth"},
			Depth:      depth,
		}
	}

	id, err := fileident.Identify(path)
	if err != nil {
		return nil, err
	}

	if n, ok := l.visited[id]; ok {
		return n, nil
	}
	if l.visiting[id] {
		return nil, &jsfxerr.ParseError{File: path, Message: "import cycle detected"}
	}
	l.visiting[id] = true
	defer delete(l.visiting, id)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, jsfxerr.NewIoError("read", path, err)
	}

	pre, err := preprocess.Preprocess(path, string(raw))
	if err != nil {
		return nil, err
	}

	unit, err := parse.Parse(path, pre)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for _, imp := range unit.Header.Imports {
		resolved, err := l.resolver.Resolve(dir, imp)
		if err != nil {
			return nil, err
		}
		if _, err := l.load(resolved, depth+1); err != nil {
			return nil, err
		}
	}

	node := &Node{Path: path, Identity: id, Unit: unit, Source: pre}
	l.visited[id] = node
	l.order = append(l.order, node)
	return node, nil
}
