// Command ysfxpp is a standalone preprocessor utility: given a .jsfx
// file, it resolves and preprocesses the file and its transitive
// imports, then writes each preprocessed source into a <name>_processed/
// directory beside the input file, logging each file as it is written.
// The root file is written first, then its imports in dependency-first
// order. Every file goes under its base name directly into that
// directory: the input's subdirectory layout is not reproduced, and a
// later file with the same base name overwrites an earlier one.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/audioscript/jsfxgo/pkg/importgraph"
	"github.com/audioscript/jsfxgo/pkg/jsfxconfig"
)

func main() {
	file := flag.String("f", "", "path to the .jsfx file to preprocess")
	flag.Parse()

	if *file == "" {
		log.Fatal("Usage: ysfxpp -f <filename.jsfx>\nFiles will be written to a directory named filename_processed.\nNote that it will overwrite existing files.")
	}

	cfg := jsfxconfig.New()
	cfg.SetImportRoot(filepath.Dir(*file))
	defer cfg.Release()

	graph, err := importgraph.Load(cfg, *file)
	if err != nil {
		log.Fatalf("%s: %v", *file, err)
	}

	base := filepath.Base(*file)
	ext := filepath.Ext(base)
	outDir := filepath.Join(filepath.Dir(*file), strings.TrimSuffix(base, ext)+"_processed")

	root := graph.Root.Unit.Header
	log.Printf("Plugin: %s, Author: %s\n", root.Desc, root.Author)
	log.Printf("Output path: %s\n", outDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("%s: %v", outDir, err)
	}

	log.Println("Files:")
	nodes := append([]*importgraph.Node{graph.Root}, graph.Imports...)
	for _, n := range nodes {
		name := filepath.Base(n.Path)
		target := filepath.Join(outDir, name)
		if err := os.WriteFile(target, []byte(n.Source), 0o644); err != nil {
			log.Fatalf("%s: %v", target, err)
		}
		log.Printf(" ./%s\n", name)
	}
}
