// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command drl-query builds (or loads a cached) document-listing index
// over a collection and answers a batch of patterns against it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/duscob/drl"
	"github.com/duscob/drl/internal/slp"
	"github.com/duscob/drl/pdlrp"
	"github.com/duscob/drl/sa"
)

const (
	exitOK = iota
	exitUsage
	exitSALoadFailure
	exitPatternsFailure
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out *os.File) int {
	fs := flag.NewFlagSet("drl-query", flag.ContinueOnError)
	data := fs.String("data", "", "collection file: one document per line")
	patterns := fs.String("patterns", "", "patterns file: one pattern per line")
	build := fs.Bool("build", false, "rebuild the index even if a cached copy exists")
	indexKind := fs.String("index", "gcda", "index scheme: gcda (sampled tree) or pdlrp (fixed block)")
	blockSize := fs.Int("bs", 512, "pdlrp block size (validated but unused by gcda)")
	storingFactor := fs.Int("sf", 4, "sampled-tree storing factor (gcda only)")
	fs.SetOutput(os.Stderr)

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *data == "" || *patterns == "" {
		fmt.Fprintln(os.Stderr, "drl-query: --data and --patterns are required")
		fs.Usage()
		return exitUsage
	}

	docs, err := readDocs(*data)
	if err != nil {
		log.Printf("loading collection: %v", err)
		return exitSALoadFailure
	}

	fakeSA := sa.BuildFake(docs, '$')
	log.Printf("built reference suffix array: n=%d docs=%d", fakeSA.Len(), fakeSA.DocCount())

	pats, err := readPatterns(*patterns)
	if err != nil {
		log.Printf("loading patterns: %v", err)
		return exitPatternsFailure
	}

	cachePath := *data + "." + *indexKind
	switch *indexKind {
	case "pdlrp":
		idx, err := buildOrLoadPDLRP(fakeSA, cachePath, *blockSize, *build)
		if err != nil {
			log.Printf("building pdlrp index: %v", err)
			return exitSALoadFailure
		}
		for _, p := range pats {
			answer(out, p, func() ([]uint64, error) { return idx.List(fakeSA, []byte(p)) })
		}
	default:
		idx, err := buildOrLoadGCDA(fakeSA, cachePath, *blockSize, *storingFactor, *build)
		if err != nil {
			log.Printf("building gcda index: %v", err)
			return exitSALoadFailure
		}
		for _, p := range pats {
			answer(out, p, func() ([]uint64, error) { return idx.List(fakeSA, []byte(p)) })
		}
	}

	return exitOK
}

func buildOrLoadGCDA(idx sa.Index, cachePath string, blockSize, storingFactor int, forceBuild bool) (*drl.Index, error) {
	if !forceBuild {
		if built, err := drl.Open(cachePath); err == nil {
			log.Printf("loaded cached index from %s", cachePath)
			return built, nil
		}
	}

	cfg := drl.DefaultConfig()
	cfg.BlockSize = blockSize
	cfg.StoringFactor = storingFactor

	built, err := drl.Build(idx, cfg, slp.NaivePair{})
	if err != nil {
		return nil, err
	}
	if err := built.Save(cachePath); err != nil {
		log.Printf("warning: could not cache index to %s: %v", cachePath, err)
	}
	return built, nil
}

func buildOrLoadPDLRP(idx sa.Index, cachePath string, blockSize int, forceBuild bool) (*pdlrp.Index, error) {
	if !forceBuild {
		if f, err := os.Open(cachePath); err == nil {
			defer f.Close()
			if built, err := pdlrp.ReadFrom(f); err == nil {
				log.Printf("loaded cached index from %s", cachePath)
				return built, nil
			}
		}
	}

	built, err := pdlrp.Build(idx, blockSize, slp.NaivePair{})
	if err != nil {
		return nil, err
	}
	if f, err := os.Create(cachePath); err == nil {
		defer f.Close()
		if err := built.WriteTo(f); err != nil {
			log.Printf("warning: could not cache index to %s: %v", cachePath, err)
		}
	}
	return built, nil
}

func answer(out *os.File, pattern string, list func() ([]uint64, error)) {
	docs, err := list()
	if err != nil {
		fmt.Fprintf(out, "%s\tERROR: %v\n", pattern, err)
		return
	}
	fmt.Fprintf(out, "%s\t%v\n", pattern, docs)
}

func readDocs(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		docs = append(docs, []byte(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %s", filepath.Clean(path))
	}
	return docs, nil
}

func readPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pats []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		pats = append(pats, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pats, nil
}
