package indexer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"tsdoclint/internal/extractor"
)

type dependentsGraph map[string]map[string]bool

// buildDependentsGraph inverts the import edges of the extracted sources:
// graph[f] holds the files that import f. Only relative specifiers resolve;
// package imports have no file in the scanned set to point at.
func buildDependentsGraph(sources []extractor.FileSource) dependentsGraph {
	fileSet := make(map[string]bool, len(sources))
	for _, src := range sources {
		fileSet[src.File] = true
	}

	graph := make(dependentsGraph)
	for _, src := range sources {
		for _, imp := range src.Imports {
			target := resolveImport(src.File, imp.From, fileSet)
			if target == "" || target == src.File {
				continue
			}
			if graph[target] == nil {
				graph[target] = make(map[string]bool)
			}
			graph[target][src.File] = true
		}
	}
	return graph
}

var resolveExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

var jsToTSExt = map[string]string{
	".js":  ".ts",
	".jsx": ".tsx",
	".mjs": ".mts",
	".cjs": ".cts",
}

// resolveImport maps a relative import specifier to a file in the scanned
// set, trying the specifier itself, its TypeScript twin for ESM-style ".js"
// specifiers, the specifier plus each source extension, and finally an index
// file inside a directory of that name.
func resolveImport(fromFile, specifier string, fileSet map[string]bool) string {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return ""
	}
	base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(specifier))

	candidates := []string{base}
	if twin := jsToTSExt[filepath.Ext(base)]; twin != "" {
		candidates = append(candidates, strings.TrimSuffix(base, filepath.Ext(base))+twin)
	}
	for _, ext := range resolveExtensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range resolveExtensions {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}

	for _, candidate := range candidates {
		if fileSet[candidate] {
			return candidate
		}
	}
	return ""
}

type impactReport struct {
	Root   string
	Levels [][]string
}

func computeImpact(root string, dependents dependentsGraph) impactReport {
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var levels [][]string

	for len(frontier) > 0 {
		var next []string
		for _, f := range frontier {
			for dep := range dependents[f] {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				next = append(next, dep)
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Strings(next)
		levels = append(levels, next)
		frontier = next
	}

	return impactReport{Root: root, Levels: levels}
}

func formatImpactReport(report impactReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s\n", report.Root))
	for i, level := range report.Levels {
		b.WriteString(fmt.Sprintf("    level %d (%d): %s\n", i+1, len(level), strings.Join(level, ", ")))
	}
	return b.String()
}

// ImpactReport formats the transitive dependents of file from the sources of
// the last Run, level by level. The path is matched as given, then absolute.
func (idx *Indexer) ImpactReport(file string) string {
	fileSet := make(map[string]bool, len(idx.Sources))
	for _, src := range idx.Sources {
		fileSet[src.File] = true
	}
	target := file
	if !fileSet[target] {
		if abs, err := filepath.Abs(file); err == nil && fileSet[abs] {
			target = abs
		}
	}
	report := computeImpact(target, buildDependentsGraph(idx.Sources))
	if len(report.Levels) == 0 {
		return fmt.Sprintf("  %s\n    no dependents\n", target)
	}
	return formatImpactReport(report)
}
