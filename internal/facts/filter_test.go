package facts

import "testing"

func TestFilterTablesByFiles(t *testing.T) {
	tables := Tables{
		Files: []FileRow{
			{File: "a.ts"},
			{File: "b.ts"},
		},
		Declarations: []DeclarationRow{
			{ID: 1, Name: "a", File: "a.ts"},
			{ID: 2, Name: "b", File: "b.ts"},
		},
		Signatures: []SignatureRow{
			{DeclID: 1, Name: "a"},
			{DeclID: 2, Name: "b"},
		},
		Parameters: []ParameterRow{
			{DeclID: 1, Name: "x"},
			{DeclID: 2, Name: "y"},
		},
		LeftoverTags: []LeftoverTagRow{
			{DeclID: 2, TagName: "param"},
		},
		Imports: []ImportRow{
			{File: "a.ts", From: "./b"},
			{File: "b.ts", From: "./a"},
		},
	}

	files := map[string]bool{"a.ts": true}
	filtered := FilterTablesByFiles(tables, files)

	if len(filtered.Files) != 1 || filtered.Files[0].File != "a.ts" {
		t.Fatalf("expected only a.ts file row, got %#v", filtered.Files)
	}
	if len(filtered.Declarations) != 1 || filtered.Declarations[0].File != "a.ts" {
		t.Fatalf("expected only a.ts declaration rows, got %#v", filtered.Declarations)
	}
	if len(filtered.Signatures) != 1 || filtered.Signatures[0].DeclID != 1 {
		t.Fatalf("expected signatures to follow kept declarations, got %#v", filtered.Signatures)
	}
	if len(filtered.Parameters) != 1 || filtered.Parameters[0].Name != "x" {
		t.Fatalf("expected parameters to follow kept declarations, got %#v", filtered.Parameters)
	}
	if len(filtered.LeftoverTags) != 0 {
		t.Fatalf("expected leftover tags of dropped declarations to go, got %#v", filtered.LeftoverTags)
	}
	if len(filtered.Imports) != 1 || filtered.Imports[0].File != "a.ts" {
		t.Fatalf("expected only a.ts import rows, got %#v", filtered.Imports)
	}
}

func TestFilterDeltaByFilesEmpty(t *testing.T) {
	delta := Delta{
		Added: Tables{
			Files: []FileRow{{File: "a.ts"}},
		},
		Removed: Tables{
			Files: []FileRow{{File: "b.ts"}},
		},
	}

	filtered := FilterDeltaByFiles(delta, map[string]bool{})
	if len(filtered.Added.Files) != 0 || len(filtered.Removed.Files) != 0 {
		t.Fatalf("expected empty delta, got %#v", filtered)
	}
}
