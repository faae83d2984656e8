package indexer

import (
	"strings"
	"testing"
)

func findViolations(result LintResult, rule string) []violationView {
	var out []violationView
	for _, v := range result.Violations {
		if v.Rule == rule {
			out = append(out, violationView{
				Severity: v.Severity,
				File:     v.File,
				Line:     v.Line,
				Message:  v.Message,
			})
		}
	}
	return out
}

type violationView struct {
	Severity string
	File     string
	Line     int
	Message  string
}

func TestRunReportsViolations(t *testing.T) {
	dir := t.TempDir()
	documented := writeSource(t, dir, "a.ts",
		"/** Application entry. */\n"+
			"/** Runs the app in the given mode. */\n"+
			"export function run(mode: string): void {}\n"+
			"\n"+
			"export const limit = 10;\n")
	undocumented := writeSource(t, dir, "b.ts",
		"import { run } from \"./a\";\n"+
			"\n"+
			"const internalFlag = run;\n")

	cfg := defaultTestConfig([]string{documented, undocumented}, "", false)
	idx := NewWithConfig(cfg)
	result := normalizeResult(runIndexerForTest(t, idx, dir))

	if result.Summary.TotalViolations != 3 {
		t.Fatalf("expected 3 violations, got %d: %+v", result.Summary.TotalViolations, result.Violations)
	}
	if result.Summary.Errors != 1 || result.Summary.Warnings != 2 || result.Summary.Info != 0 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}

	undoc := findViolations(result, "exported-undocumented")
	if len(undoc) != 1 {
		t.Fatalf("expected 1 exported-undocumented violation, got %+v", undoc)
	}
	if undoc[0].File != documented || undoc[0].Line != 5 || !strings.Contains(undoc[0].Message, `"limit"`) {
		t.Errorf("unexpected exported-undocumented violation: %+v", undoc[0])
	}

	params := findViolations(result, "param-undocumented")
	if len(params) != 1 {
		t.Fatalf("expected 1 param-undocumented violation, got %+v", params)
	}
	if params[0].File != documented || params[0].Line != 3 || !strings.Contains(params[0].Message, `"mode"`) {
		t.Errorf("unexpected param-undocumented violation: %+v", params[0])
	}

	modules := findViolations(result, "module-missing-doc")
	if len(modules) != 1 {
		t.Fatalf("expected 1 module-missing-doc violation, got %+v", modules)
	}
	if modules[0].File != undocumented {
		t.Errorf("module-missing-doc should point at the undocumented file: %+v", modules[0])
	}

	if result.Stats.Files != 2 {
		t.Errorf("expected 2 files, got %d", result.Stats.Files)
	}
	if result.Stats.Modules != 2 {
		t.Errorf("expected 2 modules, got %d", result.Stats.Modules)
	}
	if result.Stats.Declarations != 3 {
		t.Errorf("expected 3 declarations, got %d", result.Stats.Declarations)
	}
	if result.Stats.Signatures != 1 || result.Stats.Parameters != 1 {
		t.Errorf("unexpected signature/parameter stats: %+v", result.Stats)
	}
	if result.Stats.Imports != 1 {
		t.Errorf("expected 1 import, got %d", result.Stats.Imports)
	}

	if len(result.Files) != 2 {
		t.Fatalf("expected per-file counts for 2 files, got %+v", result.Files)
	}
	if result.Files[0].Path != documented || result.Files[0].Errors != 1 || result.Files[0].Warnings != 1 {
		t.Errorf("unexpected counts for %s: %+v", documented, result.Files[0])
	}
	if result.Files[1].Path != undocumented || result.Files[1].Warnings != 1 {
		t.Errorf("unexpected counts for %s: %+v", undocumented, result.Files[1])
	}
	if len(result.ParseErrors) != 0 {
		t.Errorf("unexpected parse errors: %+v", result.ParseErrors)
	}
}

func TestRunSeverityOverrides(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "a.ts", "export const limit = 10;\n")

	cfg := defaultTestConfig([]string{file}, "", false)
	cfg.Lint.Rules = map[string]string{
		"exported-undocumented": "info",
		"module-missing-doc":    "off",
	}
	idx := NewWithConfig(cfg)
	result := runIndexerForTest(t, idx, dir)

	if result.Summary.TotalViolations != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	if result.Summary.Info != 1 || result.Summary.Errors != 0 || result.Summary.Warnings != 0 {
		t.Fatalf("override should downgrade to info: %+v", result.Summary)
	}
	if result.Violations[0].Severity != "info" {
		t.Fatalf("expected info severity, got %q", result.Violations[0].Severity)
	}
}

func TestRunUnknownRuleFails(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "a.ts", "export const limit = 10;\n")

	cfg := defaultTestConfig([]string{file}, "", false)
	cfg.Lint.Rules = map[string]string{"no-such-rule": "error"}
	idx := NewWithConfig(cfg)
	idx.JSONOutput = true

	err := idx.Run(dir)
	if err == nil {
		t.Fatal("expected unknown rule to fail the run")
	}
	if !strings.Contains(err.Error(), "no-such-rule") || !strings.Contains(err.Error(), "known rules") {
		t.Fatalf("error should name the rule and list known ones: %v", err)
	}
}

func TestRunSingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "single.ts", "/** Doc. */\n/** Answers. */\nexport function answer(): number { return 42; }\n")

	cfg := defaultTestConfig(nil, "", false)
	idx := NewWithConfig(cfg)
	result := runIndexerForTest(t, idx, file)

	if result.Stats.Files != 1 {
		t.Fatalf("expected single file, got %d", result.Stats.Files)
	}
	if result.Stats.Declarations != 1 {
		t.Fatalf("expected single declaration, got %d", result.Stats.Declarations)
	}
}

func TestRunRecoversParseErrors(t *testing.T) {
	dir := t.TempDir()
	broken := writeSource(t, dir, "broken.ts", "function fine(): void {}\nfunction broken( {\n")

	cfg := defaultTestConfig([]string{broken}, "", false)
	idx := NewWithConfig(cfg)
	result := runIndexerForTest(t, idx, dir)

	if len(result.ParseErrors) == 0 {
		t.Fatal("expected recovered parse errors in the result")
	}
	if result.ParseErrors[0].File != broken {
		t.Fatalf("parse error should carry the file: %+v", result.ParseErrors[0])
	}
	if result.Stats.Files != 1 {
		t.Fatalf("file with syntax errors should still be counted: %+v", result.Stats)
	}
}

func TestRunIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	kept := writeSource(t, dir, "kept.ts", "/** Doc. */\n/** Keeps. */\nexport function keep(): void {}\n")
	skipped := writeSource(t, dir, "skipped.generated.ts", "export const dropped = 1;\n")

	cfg := defaultTestConfig([]string{kept, skipped}, "", false)
	cfg.Lint.IgnorePatterns = []string{"*.generated.ts"}
	idx := NewWithConfig(cfg)
	result := runIndexerForTest(t, idx, dir)

	if result.Stats.Files != 1 {
		t.Fatalf("expected ignored file to be dropped, got %d files", result.Stats.Files)
	}
	for _, v := range result.Violations {
		if v.File == skipped {
			t.Fatalf("ignored file should produce no violations: %+v", v)
		}
	}
}
