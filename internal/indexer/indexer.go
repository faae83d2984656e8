package indexer

// =============================================================================
// INDEXER PHILOSOPHY: TRUST THE EXTRACTOR, VALIDATE WITH CUE
// =============================================================================
//
// The indexer sits between extraction and policy evaluation. Its job is to:
// 1. Scan and extract every configured source file (in parallel, cached)
// 2. Build the reflection tree and run comment resolution over it
// 3. Flatten the resolved tree into relational doc tables
// 4. Hand validated data to Rego policy evaluation
//
// IMPORTANT: The indexer should NOT work around extraction bugs!
//
// If the indexer needs to "fix" or "clean up" extracted data, that's a sign
// that either:
// - The WALKER is missing a construct (fix internal/extractor first!)
// - The CONVERTER is missing logic (fix internal/converter second!)
//
// The CUE validator (internal/validator) catches schema mismatches between
// what we produce here and what the Rego rules expect. If validation fails,
// it means our contract is broken - fix the source, don't suppress the error.
// =============================================================================

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"tsdoclint/internal/config"
	"tsdoclint/internal/converter"
	"tsdoclint/internal/extractor"
	"tsdoclint/internal/facts"
	"tsdoclint/internal/model"
	"tsdoclint/internal/policy"
	"tsdoclint/internal/validator"
)

// Indexer drives the whole lint pipeline over one project root.
type Indexer struct {
	// Configuration loaded from tsdoc_lint.json
	Config *config.Config

	// Extracted sources from all files, in path order after extraction
	Sources []extractor.FileSource

	// Reflection tree built from the sources
	Project *model.Project

	// Result of the last completed Run
	Result *LintResult

	// Verbose output
	Verbose bool

	// Progress output (lightweight, streaming)
	Progress bool

	// Trace output (progress + per-file extraction summaries)
	Trace bool

	// JSON output mode
	JSONOutput bool

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Optional extractor factory (for tests)
	extractorFactory func() SourceExtractor

	// Optional cache version override (for tests)
	cacheVersionOverride *cacheVersions
}

// LintResult is the structured result of running the linter
// This can be serialized to JSON for programmatic consumption
type LintResult struct {
	// Violations found by policy evaluation
	Violations []policy.Violation `json:"violations"`

	// Summary counts
	Summary ResultSummary `json:"summary"`

	// Extraction statistics
	Stats ExtractionStats `json:"stats"`

	// Per-file breakdown
	Files []FileResult `json:"files"`

	// Parse errors encountered
	ParseErrors []ParseError `json:"parse_errors,omitempty"`
}

// ResultSummary provides aggregate violation counts
type ResultSummary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// ExtractionStats provides counts of the doc table rows
type ExtractionStats struct {
	Files        int `json:"files"`
	Modules      int `json:"modules"`
	Declarations int `json:"declarations"`
	Signatures   int `json:"signatures"`
	Parameters   int `json:"parameters"`
	TypeParams   int `json:"type_params"`
	Imports      int `json:"imports"`
}

// FileResult provides per-file violation counts
type FileResult struct {
	Path     string `json:"path"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Info     int    `json:"info"`
}

// ParseError represents a syntax error, recovered or fatal. File is empty
// when the whole file could not be read or parsed.
type ParseError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// SourceExtractor abstracts extraction for caching tests
type SourceExtractor interface {
	Extract(path string) (extractor.FileSource, error)
}

type cacheVersions struct {
	grammar   string
	extractor string
}

var (
	errorIconColor = color.New(color.FgRed, color.Bold)
	warnIconColor  = color.New(color.FgYellow)
	infoIconColor  = color.New(color.FgCyan)
)

// New creates a new Indexer with default configuration
func New() *Indexer {
	return &Indexer{
		Config: config.DefaultConfig(),
	}
}

// NewWithConfig creates a new Indexer with the given configuration
func NewWithConfig(cfg *config.Config) *Indexer {
	idx := New()
	idx.Config = cfg
	return idx
}

func (idx *Indexer) newExtractor() SourceExtractor {
	if idx.extractorFactory != nil {
		return idx.extractorFactory()
	}
	return extractor.New()
}

func (idx *Indexer) cacheVersions(rootPath string) cacheVersions {
	if idx.cacheVersionOverride != nil {
		return *idx.cacheVersionOverride
	}
	return computeCacheVersions(rootPath)
}

// findSourceFiles resolves the include globs against rootPath. A single-file
// root lints just that file.
func (idx *Indexer) findSourceFiles(rootPath string) ([]string, error) {
	if info, err := os.Stat(rootPath); err == nil && !info.IsDir() {
		if extractor.LanguageName(rootPath) == "" {
			return nil, fmt.Errorf("unsupported file type: %s", rootPath)
		}
		return []string{rootPath}, nil
	}
	return idx.Config.ResolveFiles(rootPath)
}

// Run executes the lint pipeline
func (idx *Indexer) Run(rootPath string) error {
	runStart := time.Now()
	pipelineErrs := make([]error, 0)
	recordPipelineErr := func(err error) {
		pipelineErrs = append(pipelineErrs, err)
	}
	timing := newTimingRecorder(runStart, idx.resolveTimingPath(rootPath))
	if err := timing.Err(); err != nil {
		recordPipelineErr(fmt.Errorf("timing output disabled: %w", err))
	}
	defer timing.Close()

	// 0. Load configuration if not already loaded
	if idx.Config == nil {
		cfg, err := config.Load(rootPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		idx.Config = cfg
	}

	// Reset per-run state
	idx.Sources = nil
	idx.Project = nil
	idx.Result = nil

	// 1. Find all source files using configuration
	stepStart := time.Now()
	files, err := idx.findSourceFiles(rootPath)
	if err != nil {
		return fmt.Errorf("scanning files: %w", err)
	}

	// Filter out ignored files
	var filteredFiles []string
	for _, f := range files {
		if !idx.Config.ShouldIgnoreFile(f) {
			filteredFiles = append(filteredFiles, f)
		}
	}
	files = filteredFiles

	if !idx.JSONOutput {
		fmt.Printf("Found %d source files\n", len(files))
	}
	scanDuration := time.Since(stepStart)
	timing.RecordStage("scan", stepStart, scanDuration, "")

	// 2. Pass 1: Parallel extraction (with optional cache)
	stepStart = time.Now()
	var cache *sourceCache
	var cacheDir string
	if cacheEnabled(idx.Config) {
		cacheDir = resolveCacheDir(rootPath, idx.Config)
		versions := idx.cacheVersions(rootPath)
		cache = newSourceCache(cacheDir, versions.grammar, versions.extractor)
		if err := cache.Load(); err != nil {
			recordPipelineErr(fmt.Errorf("cache disabled: %w", err))
			cache = nil
		}
	}
	var wg sync.WaitGroup
	var progressMu sync.Mutex
	progress := 0
	progressEnabled := (idx.Verbose || idx.Progress || idx.Trace) && !idx.JSONOutput
	if progressEnabled {
		fmt.Printf("\n=== Extraction Progress ===\n")
	}
	sourcesChan := make(chan extractor.FileSource, len(files))
	errChan := make(chan error, len(files))
	pipelineErrChan := make(chan error, len(files))
	var changedMu sync.Mutex
	changedFiles := make(map[string]bool)

	// A Tree-sitter parser is not safe for concurrent use, so each worker
	// owns one. Worker count follows maxParallelFiles, CPU count when unset.
	workers := idx.Config.Analysis.MaxParallelFiles
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}
	fileChan := make(chan string)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ext := idx.newExtractor()
			for f := range fileChan {
				fileStart := time.Now()
				var contentHash string
				if cache != nil {
					h, err := hashFile(f)
					if err != nil {
						errChan <- fmt.Errorf("%s: %w", f, err)
						continue
					}
					contentHash = h
					if src, ok, err := cache.Get(f, contentHash); err == nil && ok {
						sourcesChan <- src
						fileDuration := time.Since(fileStart)
						timing.RecordFile("extract", f, "cache_hit", fileStart, fileDuration)
						if progressEnabled {
							emitProgress(&progressMu, &progress, len(files), src, "cache hit", idx.Trace, fileDuration)
						}
						continue
					} else if err != nil {
						pipelineErrChan <- fmt.Errorf("cache read failed for %s: %w", f, err)
					}
				}

				src, err := ext.Extract(f)
				if err != nil {
					errChan <- fmt.Errorf("%s: %w", f, err)
					continue
				}
				if cache != nil && contentHash != "" {
					if err := cache.Put(f, contentHash, src); err != nil {
						pipelineErrChan <- fmt.Errorf("cache write failed for %s: %w", f, err)
					}
				}
				if cache != nil {
					changedMu.Lock()
					changedFiles[f] = true
					changedMu.Unlock()
				}
				fileDuration := time.Since(fileStart)
				timing.RecordFile("extract", f, "extracted", fileStart, fileDuration)
				if progressEnabled {
					emitProgress(&progressMu, &progress, len(files), src, "extracted", idx.Trace, fileDuration)
				}
				sourcesChan <- src
			}
		}()
	}
	for _, file := range files {
		fileChan <- file
	}
	close(fileChan)

	wg.Wait()
	close(sourcesChan)
	close(errChan)
	close(pipelineErrChan)

	// Collect errors
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	for err := range pipelineErrChan {
		recordPipelineErr(err)
	}

	// Collect sources in path order so reflection IDs replay deterministically
	for src := range sourcesChan {
		idx.Sources = append(idx.Sources, src)
	}
	sort.Slice(idx.Sources, func(i, j int) bool { return idx.Sources[i].File < idx.Sources[j].File })
	if cache != nil {
		if err := cache.Save(); err != nil {
			recordPipelineErr(fmt.Errorf("cache save failed: %w", err))
		}
	}
	extractDuration := time.Since(stepStart)
	timing.RecordStage("extract", stepStart, extractDuration, "")

	// Cache impact visualization (verbose/progress/trace)
	if cache != nil && progressEnabled && len(changedFiles) > 0 {
		fmt.Printf("\n=== Cache Impact ===\n")
		dependents := buildDependentsGraph(idx.Sources)
		changedList := make([]string, 0, len(changedFiles))
		for f := range changedFiles {
			changedList = append(changedList, f)
		}
		sort.Strings(changedList)
		for _, f := range changedList {
			report := computeImpact(f, dependents)
			fmt.Print(formatImpactReport(report))
		}
	}

	// 3. Pass 2: Build the reflection tree and resolve comments over it
	stepStart = time.Now()
	projectName := idx.Config.ProjectName
	if projectName == "" {
		if abs, err := filepath.Abs(rootPath); err == nil {
			projectName = filepath.Base(abs)
		} else {
			projectName = filepath.Base(rootPath)
		}
	}
	cv := converter.New(projectName)
	if idx.Config.FileModules != nil {
		cv.FileModules = *idx.Config.FileModules
	}
	for _, src := range idx.Sources {
		cv.ConvertFile(src)
	}
	cv.Resolve()
	idx.Project = cv.Project()
	convertDuration := time.Since(stepStart)
	timing.RecordStage("convert", stepStart, convertDuration, "")

	// 4. Flatten the resolved tree into relational doc tables
	stepStart = time.Now()
	docTables := facts.BuildTables(idx.Project, idx.Sources)
	tableFiles := sortedTableFiles(docTables)
	buildDuration := time.Since(stepStart)
	timing.RecordStage("build_tables", stepStart, buildDuration, "")

	if idx.Verbose {
		printVerboseTables(docTables)
	}

	// 5. Validate the tables before policy evaluation (CUE contract enforcement)
	stepStart = time.Now()
	tablesValidator, err := validator.NewTablesValidator()
	if err != nil {
		return fmt.Errorf("CRITICAL: Failed to initialize tables validator: %w", err)
	}
	if err := tablesValidator.Validate(docTables); err != nil {
		return fmt.Errorf("CRITICAL: Doc table contract violation: %w", err)
	}
	validateDuration := time.Since(stepStart)
	timing.RecordStage("validate", stepStart, validateDuration, "")

	// 6. Run policy evaluation and build the result
	stepStart = time.Now()
	lintResult := LintResult{
		Violations:  []policy.Violation{},
		ParseErrors: []ParseError{},
		Stats: ExtractionStats{
			Files:        len(docTables.Files),
			Modules:      len(docTables.Modules),
			Declarations: len(docTables.Declarations),
			Signatures:   len(docTables.Signatures),
			Parameters:   len(docTables.Parameters),
			TypeParams:   len(docTables.TypeParams),
			Imports:      len(docTables.Imports),
		},
		Files: []FileResult{},
	}

	// Recovered syntax errors first, then files that failed outright
	for _, src := range idx.Sources {
		for _, msg := range src.ParseErrors {
			lintResult.ParseErrors = append(lintResult.ParseErrors, ParseError{File: src.File, Message: msg})
		}
	}
	for _, e := range errs {
		lintResult.ParseErrors = append(lintResult.ParseErrors, ParseError{File: "", Message: e.Error()})
	}

	policyEngine, err := policy.New()
	if err != nil {
		return fmt.Errorf("initialize policy engine: %w", err)
	}
	if err := checkRuleNames(policyEngine, idx.Config.Lint.Rules); err != nil {
		return err
	}

	policyCached := false
	cacheHash := ""
	if cache != nil {
		if hash, err := policyConfigHash(idx.Config); err == nil {
			cacheHash = hash
		} else {
			recordPipelineErr(fmt.Errorf("policy cache disabled: %w", err))
		}
	}
	if cache != nil && len(changedFiles) == 0 && cacheHash != "" {
		if entry, err := loadPolicyCache(cacheDir); err != nil {
			recordPipelineErr(fmt.Errorf("policy cache load failed: %w", err))
		} else if ok, err := policyCacheValid(entry, idx.Config, tableFiles); err == nil && ok {
			applyPolicyResult(&lintResult, &entry.Result)
			policyCached = true
		} else if err != nil {
			recordPipelineErr(fmt.Errorf("policy cache disabled: %w", err))
		}
	}

	if !policyCached {
		result, err := policyEngine.Evaluate(policy.Input{
			Tables: docTables,
			Rules:  idx.Config.Lint.Rules,
		})
		if err != nil {
			return fmt.Errorf("policy evaluation failed: %w", err)
		}
		applyPolicyResult(&lintResult, result)
		if cache != nil && cacheHash != "" {
			if err := savePolicyCache(cacheDir, policyCacheEntry{
				Version:    policyCacheVersion,
				ConfigHash: cacheHash,
				Files:      tableFiles,
				Result:     *result,
			}); err != nil {
				recordPipelineErr(fmt.Errorf("policy cache save failed: %w", err))
			}
		}
	}

	if cache != nil {
		if err := saveTablesCache(cacheDir, docTables); err != nil {
			recordPipelineErr(fmt.Errorf("doc tables cache save failed: %w", err))
		}
	}
	policyDuration := time.Since(stepStart)
	policyStatus := ""
	if policyCached {
		policyStatus = "cached"
	}
	timing.RecordStage("policy", stepStart, policyDuration, policyStatus)

	// 7. Validate the result against the output contract, then emit it
	outputValidator, err := validator.NewOutputValidator()
	if err != nil {
		return fmt.Errorf("CRITICAL: Failed to initialize output validator: %w", err)
	}
	if err := outputValidator.Validate(lintResult); err != nil {
		return fmt.Errorf("CRITICAL: Lint result contract violation: %w", err)
	}
	idx.Result = &lintResult

	if idx.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(lintResult); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	} else {
		if len(lintResult.Violations) > 0 {
			fmt.Printf("\n=== Policy Violations ===\n")
			for _, v := range lintResult.Violations {
				icon := infoIconColor.Sprint("ℹ")
				if v.Severity == "error" {
					icon = errorIconColor.Sprint("✗")
				} else if v.Severity == "warning" {
					icon = warnIconColor.Sprint("⚠")
				}
				fmt.Printf("%s [%s] %s:%d - %s\n", icon, v.Rule, v.File, v.Line, v.Message)
			}
		}

		fmt.Printf("\n=== Policy Summary ===\n")
		fmt.Printf("  Errors:   %d\n", lintResult.Summary.Errors)
		fmt.Printf("  Warnings: %d\n", lintResult.Summary.Warnings)
		fmt.Printf("  Info:     %d\n", lintResult.Summary.Info)

		fmt.Printf("\n=== Extraction Summary ===\n")
		fmt.Printf("  Files:        %d\n", lintResult.Stats.Files)
		fmt.Printf("  Modules:      %d\n", lintResult.Stats.Modules)
		fmt.Printf("  Declarations: %d\n", lintResult.Stats.Declarations)
		fmt.Printf("  Signatures:   %d\n", lintResult.Stats.Signatures)
		fmt.Printf("  Parameters:   %d\n", lintResult.Stats.Parameters)
		fmt.Printf("  Type params:  %d\n", lintResult.Stats.TypeParams)
		fmt.Printf("  Imports:      %d\n", lintResult.Stats.Imports)

		if len(lintResult.ParseErrors) > 0 {
			fmt.Printf("\n=== Parse Errors ===\n")
			for _, e := range lintResult.ParseErrors {
				if e.File != "" {
					fmt.Printf("  %s: %s\n", e.File, e.Message)
				} else {
					fmt.Printf("  %s\n", e.Message)
				}
			}
		}
	}

	if (idx.Verbose || idx.Progress || idx.Trace) && !idx.JSONOutput {
		fmt.Printf("\n=== Timing Summary ===\n")
		fmt.Printf("  scan:         %s\n", formatDuration(scanDuration))
		fmt.Printf("  extract:      %s\n", formatDuration(extractDuration))
		fmt.Printf("  convert:      %s\n", formatDuration(convertDuration))
		fmt.Printf("  build tables: %s\n", formatDuration(buildDuration))
		fmt.Printf("  validate:     %s\n", formatDuration(validateDuration))
		if policyCached {
			fmt.Printf("  policy:       cached (%s)\n", formatDuration(policyDuration))
		} else {
			fmt.Printf("  policy:       %s\n", formatDuration(policyDuration))
		}
		fmt.Printf("  total:        %s\n", formatDuration(time.Since(runStart)))
	}
	timing.RecordStage("total", runStart, time.Since(runStart), "")

	if len(pipelineErrs) > 0 {
		return fmt.Errorf("pipeline errors:\n%s", formatPipelineErrors(pipelineErrs))
	}
	return nil
}

func formatPipelineErrors(errs []error) string {
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func applyPolicyResult(lintResult *LintResult, result *policy.Result) {
	if lintResult == nil || result == nil {
		return
	}
	lintResult.Violations = result.Violations
	if lintResult.Violations == nil {
		// Cached results round-trip through JSON and can come back nil
		lintResult.Violations = []policy.Violation{}
	}
	lintResult.Summary = ResultSummary{
		TotalViolations: result.Summary.TotalViolations,
		Errors:          result.Summary.Errors,
		Warnings:        result.Summary.Warnings,
		Info:            result.Summary.Info,
	}

	fileViolations := make(map[string]*FileResult)
	for _, v := range result.Violations {
		fr, ok := fileViolations[v.File]
		if !ok {
			fr = &FileResult{Path: v.File}
			fileViolations[v.File] = fr
		}
		switch v.Severity {
		case "error":
			fr.Errors++
		case "warning":
			fr.Warnings++
		case "info":
			fr.Info++
		}
	}
	lintResult.Files = lintResult.Files[:0]
	for _, fr := range fileViolations {
		lintResult.Files = append(lintResult.Files, *fr)
	}
	sort.Slice(lintResult.Files, func(i, j int) bool {
		return lintResult.Files[i].Path < lintResult.Files[j].Path
	})
}

// checkRuleNames rejects configured rules the engine does not know, listing
// what it does know so a typo fails fast instead of silently never firing.
func checkRuleNames(engine *policy.Engine, rules map[string]string) error {
	if len(rules) == 0 {
		return nil
	}
	names, err := engine.RuleNames()
	if err != nil {
		return fmt.Errorf("list policy rules: %w", err)
	}
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}
	configured := make([]string, 0, len(rules))
	for rule := range rules {
		configured = append(configured, rule)
	}
	sort.Strings(configured)
	for _, rule := range configured {
		if !known[rule] {
			return fmt.Errorf("unknown lint rule %q (known rules: %s)", rule, strings.Join(names, ", "))
		}
	}
	return nil
}

func envBool(key string) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "on"
}

func sortedTableFiles(tables facts.Tables) []string {
	files := make([]string, 0, len(tables.Files))
	for _, file := range tables.Files {
		files = append(files, file.File)
	}
	sort.Strings(files)
	return files
}

func printVerboseTables(tables facts.Tables) {
	fmt.Printf("\n=== Verbose: Modules ===\n")
	for _, m := range tables.Modules {
		fmt.Printf("  %s (%s:%d) documented=%v\n", m.Name, m.File, m.Line, m.HasComment)
	}
	fmt.Printf("\n=== Verbose: Declarations ===\n")
	for _, d := range tables.Declarations {
		vis := d.Visibility
		if d.DeclaredVisibility != "" && d.DeclaredVisibility != d.Visibility {
			vis = fmt.Sprintf("%s (declared %s)", d.Visibility, d.DeclaredVisibility)
		}
		exported := ""
		if d.Exported {
			exported = " exported"
		}
		fmt.Printf("  %s [%s]%s %s documented=%v signatures=%d\n",
			d.QualifiedName, d.Kind, exported, vis, d.HasComment, d.SignatureCount)
		if d.Returns != "" {
			fmt.Printf("    returns: %s\n", d.Returns)
		}
	}
	fmt.Printf("\n=== Verbose: Signatures ===\n")
	for _, s := range tables.Signatures {
		fmt.Printf("  %s#%d [%s] line %d returns %q documented=%v params=%d\n",
			s.Name, s.Index, s.Kind, s.Line, s.ReturnType, s.HasComment, s.ParamCount)
	}
	fmt.Printf("\n=== Verbose: Parameters ===\n")
	for _, p := range tables.Parameters {
		flags := ""
		if p.Optional {
			flags += " optional"
		}
		if p.Rest {
			flags += " rest"
		}
		if p.HasDefault {
			flags += " default"
		}
		fmt.Printf("  decl %d sig %d: %s %q%s documented=%v\n",
			p.DeclID, p.SigIndex, p.Name, p.Type, flags, p.HasComment)
	}
	fmt.Printf("\n=== Verbose: Type Parameters ===\n")
	for _, tp := range tables.TypeParams {
		constraint := ""
		if tp.Constraint != "" {
			constraint = " extends " + tp.Constraint
		}
		fmt.Printf("  decl %d: %s%s documented=%v\n", tp.DeclID, tp.Name, constraint, tp.HasComment)
	}
	fmt.Printf("\n=== Verbose: Leftover Tags ===\n")
	for _, lt := range tables.LeftoverTags {
		target := lt.ParamName
		if target == "" {
			target = "-"
		}
		fmt.Printf("  decl %d [%s]: @%s %s\n", lt.DeclID, lt.Owner, lt.TagName, target)
	}
	fmt.Printf("\n=== Verbose: Imports ===\n")
	for _, imp := range tables.Imports {
		name := imp.Name
		if name == "" {
			name = "*"
		}
		fmt.Printf("  %s:%d imports %s from %q\n", imp.File, imp.Line, name, imp.From)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.2fm", d.Minutes())
	default:
		return fmt.Sprintf("%.2fh", d.Hours())
	}
}

func emitProgress(mu *sync.Mutex, progress *int, total int, src extractor.FileSource, status string, trace bool, duration time.Duration) {
	imports := formatImportTargets(src.Imports)
	mu.Lock()
	defer mu.Unlock()
	*progress = *progress + 1
	fmt.Printf("  [%d/%d] %s (%s, %s)\n", *progress, total, src.File, status, formatDuration(duration))
	if imports != "" {
		fmt.Printf("    imports: %s\n", imports)
	}
	if trace {
		for _, line := range formatSourceSummary(src) {
			fmt.Printf("    %s\n", line)
		}
	}
}

func formatImportTargets(imports []extractor.RawImport) string {
	if len(imports) == 0 {
		return ""
	}
	seen := make(map[string]bool)
	var targets []string
	for _, imp := range imports {
		if imp.From == "" {
			continue
		}
		if !seen[imp.From] {
			seen[imp.From] = true
			targets = append(targets, imp.From)
		}
	}
	if len(targets) == 0 {
		return ""
	}
	sort.Strings(targets)
	return summarizeList(targets, 6)
}

func formatSourceSummary(src extractor.FileSource) []string {
	counts := make(map[string]int)
	countNodes(src.Nodes, counts)
	lines := []string{
		fmt.Sprintf("nodes: functions=%d classes=%d interfaces=%d enums=%d variables=%d type_aliases=%d imports=%d parse_errors=%d",
			counts[extractor.KindFunction], counts[extractor.KindClass], counts[extractor.KindInterface],
			counts[extractor.KindEnum], counts[extractor.KindVariable], counts[extractor.KindTypeAlias],
			len(src.Imports), len(src.ParseErrors)),
	}

	if names := summarizeNodes(src.Nodes, extractor.KindClass, 6); names != "" {
		lines = append(lines, "classes: "+names)
	}
	if names := summarizeNodes(src.Nodes, extractor.KindInterface, 6); names != "" {
		lines = append(lines, "interfaces: "+names)
	}
	if names := summarizeNodes(src.Nodes, extractor.KindFunction, 6); names != "" {
		lines = append(lines, "functions: "+names)
	}

	return lines
}

func countNodes(nodes []extractor.RawNode, counts map[string]int) {
	for _, n := range nodes {
		counts[n.Kind]++
		countNodes(n.Children, counts)
	}
}

func summarizeNodes(nodes []extractor.RawNode, kind string, max int) string {
	var names []string
	for _, n := range nodes {
		if n.Kind == kind && n.Name != "" {
			names = append(names, n.Name)
		}
	}
	return summarizeList(names, max)
}

func summarizeList(items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) > max {
		return fmt.Sprintf("%s, ... (+%d more)", strings.Join(items[:max], ", "), len(items)-max)
	}
	return strings.Join(items, ", ")
}
