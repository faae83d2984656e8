// =============================================================================
// TypeScript Doc Linter - Main Entry Point
// =============================================================================
//
// This tool turns TypeScript/JavaScript doc comments from "text in files" into
// a queryable relational model, so documentation coverage can be checked the
// way code is checked.
//
// THE PIPELINE:
//   1. Tree-sitter parses each source file into a syntax tree
//   2. Extractor collects declaration nodes with their raw comment text
//   3. Converter builds the reflection tree, running the comment engine
//      (tokenize, modifiers, module-comment selection) per node
//   4. Resolve redistributes returns/param docs across overload signatures
//   5. Facts flatten the resolved tree into relational doc tables
//   6. CUE Validator enforces the data contract (crash on schema mismatch)
//   7. OPA evaluates doc-coverage rules against the tables
//   8. Violations are reported with file/line locations
//
// WHEN INVESTIGATING FALSE POSITIVES:
//   Start at the beginning of the pipeline, not the end!
//   Grammar issues → Walker issues → Converter issues → Policy issues
// =============================================================================

package main

import (
	"fmt"
	"os"
	"strings"

	"tsdoclint/internal/config"
	"tsdoclint/internal/indexer"
	"tsdoclint/internal/policy"
)

type lintOptions struct {
	paths      []string
	configPath string
	impactFile string
	verbose    bool
	progress   bool
	trace      bool
	jsonOutput bool
	strict     bool
	noCache    bool
	timing     bool
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit()
		return
	case "rules":
		runRules()
		return
	case "clear-cache":
		if len(os.Args) < 3 {
			printUsage()
			os.Exit(1)
		}
		runClearCache(os.Args[2])
		return
	case "-h", "--help", "help":
		printUsage()
		return
	}

	opts, ok := parseLintArgs(os.Args[1:])
	if !ok {
		printUsage()
		os.Exit(1)
	}
	os.Exit(runLint(opts))
}

func parseLintArgs(args []string) (lintOptions, bool) {
	var opts lintOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v", "--verbose":
			opts.verbose = true
		case "--progress":
			opts.progress = true
		case "--trace":
			opts.trace = true
		case "--json":
			opts.jsonOutput = true
		case "--strict":
			opts.strict = true
		case "--no-cache":
			opts.noCache = true
		case "--timing":
			opts.timing = true
		case "--impact":
			if i+1 >= len(args) {
				return opts, false
			}
			i++
			opts.impactFile = args[i]
		case "-c", "--config":
			if i+1 >= len(args) {
				return opts, false
			}
			i++
			opts.configPath = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", args[i])
				return opts, false
			}
			opts.paths = append(opts.paths, args[i])
		}
	}
	if len(opts.paths) == 0 {
		return opts, false
	}
	return opts, true
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: tsdoc-lint [command] [options] <path>...

Commands:
  init              Create a tsdoc_lint.json configuration file
  rules             List known lint rules with their default severities
  clear-cache       Remove the stored policy result cache for <path>
  <path>            Lint TypeScript/JavaScript files in the given path

Options:
  -v, --verbose     Enable verbose output (doc table dump)
  --progress        Show per-file extraction progress
  --trace           Show per-file extraction detail
  --json            Emit the lint result as JSON on stdout
  --strict          Exit nonzero on any violation, not just errors
  --no-cache        Disable the extraction and policy caches for this run
  --timing          Write timing.jsonl next to <path>
  --impact FILE     After linting, report which files re-lint when FILE changes
  -c, --config      Specify config file: tsdoc-lint -c config.json <path>
  -h, --help        Show this help message

Exit status:
  0                 No violations at error severity
  1                 Errors found (or any violation with --strict)
  2                 Pipeline or contract failure

Configuration:
  tsdoc-lint looks for configuration in:
    1. ./tsdoc_lint.json
    2. ./.tsdoc_lint.json
    3. <path>/tsdoc_lint.json
    4. ~/.config/tsdoc_lint/config.json

  Run 'tsdoc-lint init' to create a default configuration file.`)
}

func runInit() {
	configPath := "tsdoc_lint.json"

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Source include/exclude patterns")
	fmt.Println("  - Lint rule severities")
	fmt.Println("  - Cache and parallelism settings")
}

func runRules() {
	engine, err := policy.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
		os.Exit(2)
	}
	rules, err := engine.Rules()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing rules: %v\n", err)
		os.Exit(2)
	}
	names, err := engine.RuleNames()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing rules: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("Known rules (default severity):")
	for _, name := range names {
		fmt.Printf("  %-26s %s\n", name, rules[name])
	}
}

func runClearCache(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(2)
	}
	cacheDir, err := indexer.ClearPolicyCache(path, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing policy cache: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("Cleared policy cache in %s\n", cacheDir)
}

func runLint(opts lintOptions) int {
	exitCode := 0
	for _, path := range opts.paths {
		if code := lintPath(path, opts); code > exitCode {
			exitCode = code
		}
	}
	return exitCode
}

func lintPath(path string, opts lintOptions) int {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", opts.configPath, err)
			return 2
		}
	} else {
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Printf("Warning: Could not load config: %v (using defaults)\n", err)
			cfg = config.DefaultConfig()
		}
	}
	if opts.noCache {
		disabled := false
		cfg.Analysis.Cache.Enabled = &disabled
	}

	idx := indexer.NewWithConfig(cfg)
	idx.Verbose = opts.verbose
	idx.Progress = opts.progress
	idx.Trace = opts.trace
	idx.JSONOutput = opts.jsonOutput
	idx.Timing = opts.timing
	if err := idx.Run(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if opts.impactFile != "" && !opts.jsonOutput {
		fmt.Printf("\n=== Impact of %s ===\n", opts.impactFile)
		fmt.Print(idx.ImpactReport(opts.impactFile))
	}

	result := idx.Result
	if result == nil {
		return 2
	}
	if result.Summary.Errors > 0 {
		return 1
	}
	if opts.strict && result.Summary.TotalViolations > 0 {
		return 1
	}
	return 0
}
