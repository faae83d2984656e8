package indexer

import (
	"path/filepath"
	"testing"

	"tsdoclint/internal/extractor"
)

func TestImpactExpansion(t *testing.T) {
	sources := []extractor.FileSource{
		{File: "a.ts"},
		{File: "b.ts", Imports: []extractor.RawImport{{From: "./a", Names: []string{"run"}, Line: 1}}},
		{File: "c.ts", Imports: []extractor.RawImport{{From: "./a.js", Names: []string{"run"}, Line: 1}}},
	}

	deps := buildDependentsGraph(sources)
	report := computeImpact("a.ts", deps)

	if len(report.Levels) != 1 {
		t.Fatalf("expected 1 level, got %d", len(report.Levels))
	}
	level := report.Levels[0]
	if len(level) != 2 {
		t.Fatalf("expected 2 dependents, got %d", len(level))
	}
	if level[0] != "b.ts" || level[1] != "c.ts" {
		t.Fatalf("unexpected dependents: %v", level)
	}
}

func TestImpactTransitiveLevels(t *testing.T) {
	sources := []extractor.FileSource{
		{File: "a.ts"},
		{File: "b.ts", Imports: []extractor.RawImport{{From: "./a", Line: 1}}},
		{File: "c.ts", Imports: []extractor.RawImport{{From: "./b", Line: 2}}},
	}

	deps := buildDependentsGraph(sources)
	report := computeImpact("a.ts", deps)

	if len(report.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %+v", report.Levels)
	}
	if report.Levels[0][0] != "b.ts" || report.Levels[1][0] != "c.ts" {
		t.Fatalf("unexpected levels: %+v", report.Levels)
	}
}

func TestPackageImportsIgnored(t *testing.T) {
	sources := []extractor.FileSource{
		{File: "a.ts"},
		{File: "b.ts", Imports: []extractor.RawImport{
			{From: "react", Line: 1},
			{From: "./a", Line: 2},
		}},
	}

	deps := buildDependentsGraph(sources)
	if len(deps["a.ts"]) != 1 || !deps["a.ts"]["b.ts"] {
		t.Fatalf("expected only the relative import edge, got %+v", deps)
	}
}

func TestResolveImport(t *testing.T) {
	appTS := filepath.Join("src", "app.ts")
	utilTS := filepath.Join("src", "util.ts")
	indexTS := filepath.Join("src", "lib", "index.ts")
	sharedTS := "shared.ts"

	fileSet := map[string]bool{
		appTS:    true,
		utilTS:   true,
		indexTS:  true,
		sharedTS: true,
	}

	cases := []struct {
		specifier string
		want      string
	}{
		{"./util", utilTS},
		{"./util.ts", utilTS},
		{"./util.js", utilTS},
		{"./lib", indexTS},
		{"../shared", sharedTS},
		{"./missing", ""},
		{"react", ""},
		{"@scope/pkg", ""},
	}

	for _, tc := range cases {
		got := resolveImport(appTS, tc.specifier, fileSet)
		if got != tc.want {
			t.Errorf("resolveImport(%q) = %q, want %q", tc.specifier, got, tc.want)
		}
	}
}

func TestFormatImpactReport(t *testing.T) {
	report := impactReport{
		Root:   "a.ts",
		Levels: [][]string{{"b.ts", "c.ts"}, {"d.ts"}},
	}
	got := formatImpactReport(report)
	want := "  a.ts\n    level 1 (2): b.ts, c.ts\n    level 2 (1): d.ts\n"
	if got != want {
		t.Fatalf("unexpected report:\n%q\nwant:\n%q", got, want)
	}
}

func TestImpactReportMethod(t *testing.T) {
	idx := &Indexer{Sources: []extractor.FileSource{
		{File: "a.ts"},
		{File: "b.ts", Imports: []extractor.RawImport{{From: "./a", Line: 1}}},
	}}

	got := idx.ImpactReport("a.ts")
	want := "  a.ts\n    level 1 (1): b.ts\n"
	if got != want {
		t.Fatalf("unexpected report: %q", got)
	}

	got = idx.ImpactReport("b.ts")
	want = "  b.ts\n    no dependents\n"
	if got != want {
		t.Fatalf("unexpected leaf report: %q", got)
	}
}
