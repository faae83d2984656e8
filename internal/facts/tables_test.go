package facts

import (
	"testing"

	"tsdoclint/internal/comment"
	"tsdoclint/internal/extractor"
	"tsdoclint/internal/model"
)

func TestBuildTablesPopulatesCoreRelations(t *testing.T) {
	p := model.NewProject("test")

	mod := p.NewChild(p.Root, "app", model.KindModule)
	mod.File = "src/app.ts"
	mod.Line = 1
	mod.Comment = comment.New("The app module.")

	fn := p.NewChild(mod, "run", model.KindFunction)
	fn.File = "src/app.ts"
	fn.Line = 10
	fn.Flags.Set(model.FlagExported)
	fn.TypeParams = []*model.TypeParam{{Name: "T", Constraint: "object"}}

	sig := &model.Signature{Name: "run", Kind: model.KindCallSignature, ReturnType: "void", Line: 10}
	sig.Comment = comment.New("Runs the app.")
	mode := &model.Parameter{Name: "mode", Type: "string"}
	mode.Comment = comment.New("the mode")
	sig.Params = []*model.Parameter{mode}
	fn.Signatures = append(fn.Signatures, sig)

	sources := []extractor.FileSource{{
		File:        "src/app.ts",
		Language:    "typescript",
		Lines:       42,
		ParseErrors: []string{"line 3: syntax error"},
		Imports:     []extractor.RawImport{{From: "./util", Names: []string{"a", "b"}, Line: 1}},
	}}

	tables := BuildTables(p, sources)

	if len(tables.Files) != 1 || tables.Files[0].ParseErrorCount != 1 {
		t.Fatalf("expected 1 file row with a parse error, got %+v", tables.Files)
	}
	if len(tables.Modules) != 1 || !tables.Modules[0].HasComment || tables.Modules[0].ShortText != "The app module." {
		t.Fatalf("expected documented module row, got %+v", tables.Modules)
	}
	if len(tables.Declarations) != 1 {
		t.Fatalf("expected 1 declaration row, got %+v", tables.Declarations)
	}
	decl := tables.Declarations[0]
	if decl.Name != "run" || decl.QualifiedName != "app.run" || !decl.Exported {
		t.Fatalf("expected exported app.run, got %+v", decl)
	}
	if decl.Visibility != "public" || decl.HasComment {
		t.Fatalf("expected public declaration without own comment, got %+v", decl)
	}
	if decl.SignatureCount != 1 || decl.TypeParamCount != 1 {
		t.Fatalf("expected one signature and one type param, got %+v", decl)
	}
	if len(tables.Signatures) != 1 || !tables.Signatures[0].HasComment || tables.Signatures[0].ReturnType != "void" {
		t.Fatalf("expected documented void signature row, got %+v", tables.Signatures)
	}
	if len(tables.Parameters) != 1 || tables.Parameters[0].CommentText != "the mode" {
		t.Fatalf("expected documented parameter row, got %+v", tables.Parameters)
	}
	if len(tables.TypeParams) != 1 || tables.TypeParams[0].Constraint != "object" {
		t.Fatalf("expected constrained type param row, got %+v", tables.TypeParams)
	}
	if len(tables.Imports) != 2 {
		t.Fatalf("expected one import row per name, got %+v", tables.Imports)
	}

	counts := tables.Counts()
	if counts["declarations"] != 1 || counts["imports"] != 2 {
		t.Fatalf("expected counts to match rows, got %+v", counts)
	}
}

func TestBuildTablesRecordsLeftoverTags(t *testing.T) {
	p := model.NewProject("test")

	v := p.NewChild(p.Root, "cfg", model.KindVariable)
	v.File = "src/cfg.ts"
	c := comment.New("Config.")
	c.Tags = append(c.Tags,
		&comment.Tag{TagName: "deprecated", Text: "use env"},
		&comment.Tag{TagName: "param", ParamName: "ghost", Text: "stale"},
	)
	v.Comment = c

	tables := BuildTables(p, nil)

	if len(tables.LeftoverTags) != 2 {
		t.Fatalf("expected 2 leftover tag rows, got %+v", tables.LeftoverTags)
	}
	first := tables.LeftoverTags[0]
	if first.Owner != "declaration" || first.SigIndex != -1 || first.TagName != "deprecated" {
		t.Fatalf("expected declaration-owned deprecated tag, got %+v", first)
	}
	second := tables.LeftoverTags[1]
	if second.TagName != "param" || second.ParamName != "ghost" {
		t.Fatalf("expected stale param tag, got %+v", second)
	}
}

func TestBuildTablesEmptyCommentDoesNotCount(t *testing.T) {
	p := model.NewProject("test")
	v := p.NewChild(p.Root, "x", model.KindVariable)
	v.File = "a.ts"
	v.Comment = &comment.Comment{}

	tables := BuildTables(p, nil)
	if tables.Declarations[0].HasComment {
		t.Fatalf("expected empty comment to count as undocumented, got %+v", tables.Declarations[0])
	}
}
