package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"tsdoclint/internal/config"
	"tsdoclint/internal/facts"
	"tsdoclint/internal/indexer"
)

func main() {
	output := flag.String("output", "", "write doc tables JSON to file (default: stdout)")
	flag.StringVar(output, "o", "", "write doc tables JSON to file (shorthand)")
	deltaFrom := flag.String("delta-from", "", "previous doc tables JSON to compute delta from")
	deltaOut := flag.String("delta-out", "", "write delta JSON to file (requires --delta-from)")
	filesFlag := flag.String("files", "", "comma-separated file paths restricting tables and delta")
	cached := flag.Bool("cached", false, "dump the last run's cached tables without re-linting")
	quiet := flag.Bool("quiet", false, "suppress pipeline output during the run")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tsdoc-model [--output file] [--delta-from prev.json --delta-out delta.json] [--files a.ts,b.ts] [--cached] [--quiet] <path>")
		os.Exit(1)
	}

	path := args[0]
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var tables facts.Tables
	if *cached {
		snapshot, ok, err := indexer.CachedTables(path, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading cached tables: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: no cached tables for this path (run tsdoc-lint first)")
			os.Exit(1)
		}
		tables = snapshot
	} else {
		idx := indexer.NewWithConfig(cfg)
		if err := runIndexer(idx, path, *quiet); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		tables = facts.BuildTables(idx.Project, idx.Sources)
	}

	if *filesFlag != "" {
		tables = facts.FilterTablesByFiles(tables, fileSet(*filesFlag))
	}

	if *output != "" {
		if err := writeJSON(*output, tables); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing tables: %v\n", err)
			os.Exit(1)
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tables); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding tables: %v\n", err)
			os.Exit(1)
		}
	}

	if *deltaFrom != "" || *deltaOut != "" {
		if *deltaFrom == "" || *deltaOut == "" {
			fmt.Fprintln(os.Stderr, "Error: --delta-from and --delta-out must be used together")
			os.Exit(1)
		}
		prev, err := readTables(*deltaFrom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading delta-from: %v\n", err)
			os.Exit(1)
		}
		delta := facts.ComputeDelta(prev, tables)
		if *filesFlag != "" {
			delta = facts.FilterDeltaByFiles(delta, fileSet(*filesFlag))
		}
		if err := writeJSON(*deltaOut, delta); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing delta: %v\n", err)
			os.Exit(1)
		}
	}
}

// runIndexer runs the lint pipeline, swapping stdout to /dev/null when quiet
// so the JSON dump stays the only stdout output.
func runIndexer(idx *indexer.Indexer, path string, quiet bool) error {
	if !quiet {
		return idx.Run(path)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	oldStdout := os.Stdout
	os.Stdout = devNull
	runErr := idx.Run(path)
	_ = devNull.Close()
	os.Stdout = oldStdout
	return runErr
}

func fileSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			set[f] = true
		}
	}
	return set
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
