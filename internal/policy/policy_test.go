package policy

import (
	"sort"
	"testing"

	"tsdoclint/internal/facts"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return engine
}

func evaluate(t *testing.T, tables facts.Tables, rules map[string]string) *Result {
	t.Helper()
	result, err := newTestEngine(t).Evaluate(Input{Tables: tables, Rules: rules})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	return result
}

func emptyTables() facts.Tables {
	return facts.Tables{
		Files:        []facts.FileRow{},
		Modules:      []facts.ModuleRow{},
		Declarations: []facts.DeclarationRow{},
		Signatures:   []facts.SignatureRow{},
		Parameters:   []facts.ParameterRow{},
		TypeParams:   []facts.TypeParamRow{},
		LeftoverTags: []facts.LeftoverTagRow{},
		Imports:      []facts.ImportRow{},
	}
}

func violationsFor(result *Result, rule string) []Violation {
	var matched []Violation
	for _, v := range result.Violations {
		if v.Rule == rule {
			matched = append(matched, v)
		}
	}
	return matched
}

func TestExportedUndocumented(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations,
		facts.DeclarationRow{ID: 1, Name: "run", QualifiedName: "run", Kind: "function", File: "a.ts", Line: 3, Exported: true, Visibility: "public"},
		facts.DeclarationRow{ID: 2, Name: "helper", QualifiedName: "helper", Kind: "function", File: "a.ts", Line: 9, Visibility: "public"},
	)

	result := evaluate(t, tables, nil)

	matched := violationsFor(result, "exported-undocumented")
	if len(matched) != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	v := matched[0]
	if v.Severity != "error" || v.File != "a.ts" || v.Line != 3 || v.Name != "run" {
		t.Fatalf("unexpected violation: %+v", v)
	}
}

func TestExportedUndocumentedAcceptsSignatureDoc(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations, facts.DeclarationRow{
		ID: 1, Name: "run", QualifiedName: "run", Kind: "function", File: "a.ts", Line: 3, Exported: true, SignatureCount: 1,
	})
	tables.Signatures = append(tables.Signatures, facts.SignatureRow{
		DeclID: 1, Index: 0, Name: "run", Kind: "call_signature", Line: 3, ReturnType: "void", HasComment: true, ShortText: "Runs.",
	})

	result := evaluate(t, tables, nil)

	if matched := violationsFor(result, "exported-undocumented"); len(matched) != 0 {
		t.Fatalf("expected no violations, got %+v", matched)
	}
}

func TestParamUndocumentedJoinsOnSignature(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations, facts.DeclarationRow{
		ID: 1, Name: "run", QualifiedName: "app.run", Kind: "function", File: "a.ts", Line: 3, Exported: true, SignatureCount: 2,
	})
	tables.Signatures = append(tables.Signatures,
		facts.SignatureRow{DeclID: 1, Index: 0, Name: "run", Kind: "call_signature", Line: 3, ReturnType: "void", HasComment: true, ParamCount: 2},
		facts.SignatureRow{DeclID: 1, Index: 1, Name: "run", Kind: "call_signature", Line: 8, ReturnType: "void", ParamCount: 1},
	)
	tables.Parameters = append(tables.Parameters,
		facts.ParameterRow{DeclID: 1, SigIndex: 0, Index: 0, Name: "mode", Type: "string", HasComment: true, CommentText: "the mode"},
		facts.ParameterRow{DeclID: 1, SigIndex: 0, Index: 1, Name: "count", Type: "number"},
		facts.ParameterRow{DeclID: 1, SigIndex: 1, Index: 0, Name: "bare", Type: "string"},
	)

	result := evaluate(t, tables, nil)

	matched := violationsFor(result, "param-undocumented")
	if len(matched) != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	if matched[0].Severity != "warning" || matched[0].Line != 3 || matched[0].Name != "app.run" {
		t.Fatalf("unexpected violation: %+v", matched[0])
	}
}

func TestReturnsUndocumented(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations,
		facts.DeclarationRow{ID: 1, Name: "parse", QualifiedName: "parse", Kind: "function", File: "a.ts", Line: 3, HasComment: true},
		facts.DeclarationRow{ID: 2, Name: "reset", QualifiedName: "reset", Kind: "function", File: "a.ts", Line: 9, HasComment: true},
		facts.DeclarationRow{ID: 3, Name: "value", QualifiedName: "Box.value", Kind: "accessor", File: "a.ts", Line: 15, HasComment: true},
		facts.DeclarationRow{ID: 4, Name: "total", QualifiedName: "total", Kind: "function", File: "a.ts", Line: 21, HasComment: true},
	)
	tables.Signatures = append(tables.Signatures,
		facts.SignatureRow{DeclID: 1, Index: 0, Name: "parse", Kind: "call_signature", Line: 3, ReturnType: "number", HasComment: true},
		facts.SignatureRow{DeclID: 2, Index: 0, Name: "reset", Kind: "call_signature", Line: 9, ReturnType: "void", HasComment: true},
		facts.SignatureRow{DeclID: 3, Index: 0, Name: "value", Kind: "call_signature", Line: 15, ReturnType: "number", HasComment: true},
		facts.SignatureRow{DeclID: 4, Index: 0, Name: "total", Kind: "call_signature", Line: 21, ReturnType: "number", HasComment: true, Returns: "the sum"},
	)

	result := evaluate(t, tables, nil)

	matched := violationsFor(result, "returns-undocumented")
	if len(matched) != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	if matched[0].Name != "parse" || matched[0].Severity != "warning" {
		t.Fatalf("unexpected violation: %+v", matched[0])
	}
}

func TestTypeParamUndocumented(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations,
		facts.DeclarationRow{ID: 1, Name: "Box", QualifiedName: "Box", Kind: "class", File: "a.ts", Line: 3, HasComment: true, ShortText: "A box.", TypeParamCount: 2},
		facts.DeclarationRow{ID: 2, Name: "Pair", QualifiedName: "Pair", Kind: "type_alias", File: "a.ts", Line: 12, TypeParamCount: 1},
	)
	tables.TypeParams = append(tables.TypeParams,
		facts.TypeParamRow{DeclID: 1, Index: 0, Name: "T", HasComment: true, CommentText: "element type"},
		facts.TypeParamRow{DeclID: 1, Index: 1, Name: "U"},
		facts.TypeParamRow{DeclID: 2, Index: 0, Name: "A"},
	)

	result := evaluate(t, tables, nil)

	matched := violationsFor(result, "type-param-undocumented")
	if len(matched) != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	if matched[0].Severity != "info" || matched[0].Name != "Box" {
		t.Fatalf("unexpected violation: %+v", matched[0])
	}
}

func TestLeftoverTagsOnlyParamFamily(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations, facts.DeclarationRow{
		ID: 1, Name: "run", QualifiedName: "run", Kind: "function", File: "a.ts", Line: 3, HasComment: true,
	})
	tables.LeftoverTags = append(tables.LeftoverTags,
		facts.LeftoverTagRow{DeclID: 1, Owner: "declaration", SigIndex: -1, TagName: "param", ParamName: "ghost", Text: "never existed"},
		facts.LeftoverTagRow{DeclID: 1, Owner: "declaration", SigIndex: -1, TagName: "deprecated", Text: "use runAll"},
	)

	result := evaluate(t, tables, nil)

	matched := violationsFor(result, "leftover-tags")
	if len(matched) != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	if matched[0].Severity != "info" || matched[0].Name != "run" {
		t.Fatalf("unexpected violation: %+v", matched[0])
	}
}

func TestModuleMissingDoc(t *testing.T) {
	tables := emptyTables()
	tables.Modules = append(tables.Modules,
		facts.ModuleRow{ID: 1, Name: "app", File: "a.ts", Line: 1, HasComment: true, ShortText: "App."},
		facts.ModuleRow{ID: 2, Name: "util", File: "b.ts", Line: 1},
	)

	result := evaluate(t, tables, nil)

	matched := violationsFor(result, "module-missing-doc")
	if len(matched) != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	if matched[0].Name != "util" || matched[0].Severity != "warning" {
		t.Fatalf("unexpected violation: %+v", matched[0])
	}
}

func TestVisibilityConflict(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations,
		facts.DeclarationRow{ID: 1, Name: "reset", QualifiedName: "Box.reset", Kind: "method", File: "a.ts", Line: 4, HasComment: true, Visibility: "private", DeclaredVisibility: "public"},
		facts.DeclarationRow{ID: 2, Name: "tick", QualifiedName: "Box.tick", Kind: "method", File: "a.ts", Line: 9, HasComment: true, Visibility: "protected", DeclaredVisibility: "protected"},
	)

	result := evaluate(t, tables, nil)

	matched := violationsFor(result, "visibility-conflict")
	if len(matched) != 1 {
		t.Fatalf("expected 1 violation, got %+v", result.Violations)
	}
	if matched[0].Name != "Box.reset" {
		t.Fatalf("unexpected violation: %+v", matched[0])
	}
}

func TestSeverityOverrides(t *testing.T) {
	tables := emptyTables()
	tables.Declarations = append(tables.Declarations, facts.DeclarationRow{
		ID: 1, Name: "run", QualifiedName: "run", Kind: "function", File: "a.ts", Line: 3, Exported: true,
	})

	result := evaluate(t, tables, map[string]string{"exported-undocumented": "info"})
	matched := violationsFor(result, "exported-undocumented")
	if len(matched) != 1 || matched[0].Severity != "info" {
		t.Fatalf("expected info severity, got %+v", result.Violations)
	}
	if result.Summary.Info != 1 || result.Summary.Errors != 0 {
		t.Fatalf("summary did not follow override: %+v", result.Summary)
	}

	result = evaluate(t, tables, map[string]string{"exported-undocumented": "off"})
	if len(result.Violations) != 0 {
		t.Fatalf("expected rule disabled, got %+v", result.Violations)
	}
	if result.Summary.TotalViolations != 0 {
		t.Fatalf("expected empty summary, got %+v", result.Summary)
	}
}

func TestSummaryAndOrdering(t *testing.T) {
	tables := emptyTables()
	tables.Modules = append(tables.Modules, facts.ModuleRow{ID: 1, Name: "util", File: "b.ts", Line: 1})
	tables.Declarations = append(tables.Declarations,
		facts.DeclarationRow{ID: 2, Name: "b", QualifiedName: "b", Kind: "function", File: "b.ts", Line: 4, Exported: true},
		facts.DeclarationRow{ID: 3, Name: "a", QualifiedName: "a", Kind: "function", File: "a.ts", Line: 2, Exported: true},
	)

	result := evaluate(t, tables, nil)

	if result.Summary.TotalViolations != 3 || result.Summary.Errors != 2 || result.Summary.Warnings != 1 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if len(result.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %+v", result.Violations)
	}
	if result.Violations[0].File != "a.ts" {
		t.Fatalf("expected a.ts first, got %+v", result.Violations[0])
	}
	if result.Violations[1].File != "b.ts" || result.Violations[1].Line != 1 {
		t.Fatalf("expected b.ts module violation second, got %+v", result.Violations[1])
	}
}

func TestEmptyTablesYieldNoViolations(t *testing.T) {
	result := evaluate(t, emptyTables(), nil)
	if len(result.Violations) != 0 {
		t.Fatalf("expected no violations, got %+v", result.Violations)
	}
	if result.Summary.TotalViolations != 0 {
		t.Fatalf("expected zero summary, got %+v", result.Summary)
	}
}

func TestRulesListsDefaults(t *testing.T) {
	engine := newTestEngine(t)
	rules, err := engine.Rules()
	if err != nil {
		t.Fatalf("Rules error: %v", err)
	}
	if len(rules) != 7 {
		t.Fatalf("expected 7 rules, got %v", rules)
	}
	if rules["exported-undocumented"] != "error" {
		t.Fatalf("unexpected default severity: %v", rules)
	}
	names, err := engine.RuleNames()
	if err != nil {
		t.Fatalf("RuleNames error: %v", err)
	}
	if len(names) != 7 || !sort.StringsAreSorted(names) {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRulesHashIsStable(t *testing.T) {
	h1, err := RulesHash()
	if err != nil {
		t.Fatalf("RulesHash error: %v", err)
	}
	h2, err := RulesHash()
	if err != nil {
		t.Fatalf("RulesHash error: %v", err)
	}
	if h1 == "" || h1 != h2 {
		t.Fatalf("expected stable non-empty hash, got %q and %q", h1, h2)
	}
}
