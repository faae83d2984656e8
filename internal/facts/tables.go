package facts

import (
	"sort"

	"tsdoclint/internal/comment"
	"tsdoclint/internal/extractor"
	"tsdoclint/internal/model"
)

// Tables is the relational fact model the policy rules run over. Each slice
// is a relation with flat rows; every slice is present in the JSON output
// even when empty.
type Tables struct {
	Files        []FileRow        `json:"files"`
	Modules      []ModuleRow      `json:"modules"`
	Declarations []DeclarationRow `json:"declarations"`
	Signatures   []SignatureRow   `json:"signatures"`
	Parameters   []ParameterRow   `json:"parameters"`
	TypeParams   []TypeParamRow   `json:"type_params"`
	LeftoverTags []LeftoverTagRow `json:"leftover_tags"`
	Imports      []ImportRow      `json:"imports"`
}

type FileRow struct {
	File            string `json:"file"`
	Language        string `json:"language"`
	Lines           int    `json:"lines"`
	ParseErrorCount int    `json:"parse_error_count"`
}

type ModuleRow struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	HasComment bool   `json:"has_comment"`
	ShortText  string `json:"short_text"`
}

type DeclarationRow struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	QualifiedName      string `json:"qualified_name"`
	Kind               string `json:"kind"`
	File               string `json:"file"`
	Line               int    `json:"line"`
	Exported           bool   `json:"exported"`
	Visibility         string `json:"visibility"`
	DeclaredVisibility string `json:"declared_visibility"`
	HasComment         bool   `json:"has_comment"`
	ShortText          string `json:"short_text"`
	HasLongText        bool   `json:"has_long_text"`
	Returns            string `json:"returns"`
	SignatureCount     int    `json:"signature_count"`
	TypeParamCount     int    `json:"type_param_count"`
	Event              bool   `json:"event"`
}

type SignatureRow struct {
	DeclID     int    `json:"decl_id"`
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Line       int    `json:"line"`
	ReturnType string `json:"return_type"`
	HasComment bool   `json:"has_comment"`
	ShortText  string `json:"short_text"`
	Returns    string `json:"returns"`
	ParamCount int    `json:"param_count"`
}

type ParameterRow struct {
	DeclID      int    `json:"decl_id"`
	SigIndex    int    `json:"sig_index"`
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Optional    bool   `json:"optional"`
	Rest        bool   `json:"rest"`
	HasDefault  bool   `json:"has_default"`
	HasComment  bool   `json:"has_comment"`
	CommentText string `json:"comment_text"`
}

type TypeParamRow struct {
	DeclID      int    `json:"decl_id"`
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Constraint  string `json:"constraint"`
	HasComment  bool   `json:"has_comment"`
	CommentText string `json:"comment_text"`
}

// LeftoverTagRow records a tag still present on a comment after the resolve
// pass. SigIndex is -1 when the tag sits on the declaration comment itself.
type LeftoverTagRow struct {
	DeclID    int    `json:"decl_id"`
	Owner     string `json:"owner"`
	SigIndex  int    `json:"sig_index"`
	TagName   string `json:"tag_name"`
	ParamName string `json:"param_name"`
	Text      string `json:"text"`
}

type ImportRow struct {
	File string `json:"file"`
	From string `json:"from"`
	Name string `json:"name"`
	Line int    `json:"line"`
}

// BuildTables flattens a resolved reflection tree and its extracted sources
// into the relational model. Rows follow ascending reflection IDs, which
// replay construction order, so output is deterministic for a given input
// set.
func BuildTables(project *model.Project, sources []extractor.FileSource) Tables {
	tables := Tables{
		Files:        []FileRow{},
		Modules:      []ModuleRow{},
		Declarations: []DeclarationRow{},
		Signatures:   []SignatureRow{},
		Parameters:   []ParameterRow{},
		TypeParams:   []TypeParamRow{},
		LeftoverTags: []LeftoverTagRow{},
		Imports:      []ImportRow{},
	}

	for _, src := range sources {
		tables.Files = append(tables.Files, FileRow{
			File:            src.File,
			Language:        src.Language,
			Lines:           src.Lines,
			ParseErrorCount: len(src.ParseErrors),
		})
		for _, imp := range src.Imports {
			if len(imp.Names) == 0 {
				tables.Imports = append(tables.Imports, ImportRow{File: src.File, From: imp.From, Line: imp.Line})
				continue
			}
			for _, name := range imp.Names {
				tables.Imports = append(tables.Imports, ImportRow{File: src.File, From: imp.From, Name: name, Line: imp.Line})
			}
		}
	}

	project.Walk(func(r *model.Reflection) {
		switch r.Kind {
		case model.KindProject:
			return
		case model.KindModule:
			tables.Modules = append(tables.Modules, ModuleRow{
				ID:         r.ID,
				Name:       r.Name,
				File:       r.File,
				Line:       r.Line,
				HasComment: commentHasContent(r.Comment),
				ShortText:  shortText(r.Comment),
			})
			appendLeftoverTags(&tables, r)
			return
		}

		// TypeScript members are public unless a modifier or access tag says
		// otherwise.
		visibility := r.Flags.Visibility()
		if visibility == "" {
			visibility = "public"
		}

		row := DeclarationRow{
			ID:                 r.ID,
			Name:               r.Name,
			QualifiedName:      r.QualifiedName(),
			Kind:               r.Kind.String(),
			File:               r.File,
			Line:               r.Line,
			Exported:           r.Flags.Has(model.FlagExported),
			Visibility:         visibility,
			DeclaredVisibility: r.SourceVisibility,
			HasComment:         commentHasContent(r.Comment),
			ShortText:          shortText(r.Comment),
			SignatureCount:     len(r.Signatures),
			TypeParamCount:     len(r.TypeParams),
			Event:              r.Flags.Has(model.FlagEvent),
		}
		if r.Comment != nil {
			row.HasLongText = r.Comment.Text != ""
			row.Returns = r.Comment.Returns
		}
		tables.Declarations = append(tables.Declarations, row)

		for i, sig := range r.Signatures {
			sigRow := SignatureRow{
				DeclID:     r.ID,
				Index:      i,
				Name:       sig.Name,
				Kind:       sig.Kind.String(),
				Line:       sig.Line,
				ReturnType: sig.ReturnType,
				HasComment: commentHasContent(sig.Comment),
				ShortText:  shortText(sig.Comment),
				ParamCount: len(sig.Params),
			}
			if sig.Comment != nil {
				sigRow.Returns = sig.Comment.Returns
			}
			tables.Signatures = append(tables.Signatures, sigRow)

			for j, p := range sig.Params {
				tables.Parameters = append(tables.Parameters, ParameterRow{
					DeclID:      r.ID,
					SigIndex:    i,
					Index:       j,
					Name:        p.Name,
					Type:        p.Type,
					Optional:    p.Flags.Has(model.FlagOptional),
					Rest:        p.Flags.Has(model.FlagRest),
					HasDefault:  p.Flags.Has(model.FlagDefaultValue),
					HasComment:  commentHasContent(p.Comment),
					CommentText: shortText(p.Comment),
				})
			}
		}

		for i, tp := range r.TypeParams {
			tables.TypeParams = append(tables.TypeParams, TypeParamRow{
				DeclID:      r.ID,
				Index:       i,
				Name:        tp.Name,
				Constraint:  tp.Constraint,
				HasComment:  commentHasContent(tp.Comment),
				CommentText: shortText(tp.Comment),
			})
		}

		appendLeftoverTags(&tables, r)
	})

	sort.Slice(tables.Files, func(i, j int) bool { return tables.Files[i].File < tables.Files[j].File })
	sort.Slice(tables.Imports, func(i, j int) bool {
		a, b := tables.Imports[i], tables.Imports[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Name < b.Name
	})

	return tables
}

func appendLeftoverTags(tables *Tables, r *model.Reflection) {
	if r.Comment != nil {
		for _, tag := range r.Comment.Tags {
			tables.LeftoverTags = append(tables.LeftoverTags, LeftoverTagRow{
				DeclID:    r.ID,
				Owner:     "declaration",
				SigIndex:  -1,
				TagName:   tag.TagName,
				ParamName: tag.ParamName,
				Text:      tag.Text,
			})
		}
	}
	for i, sig := range r.Signatures {
		if sig.Comment == nil {
			continue
		}
		for _, tag := range sig.Comment.Tags {
			tables.LeftoverTags = append(tables.LeftoverTags, LeftoverTagRow{
				DeclID:    r.ID,
				Owner:     "signature",
				SigIndex:  i,
				TagName:   tag.TagName,
				ParamName: tag.ParamName,
				Text:      tag.Text,
			})
		}
	}
}

func commentHasContent(c *comment.Comment) bool {
	return c != nil && (c.ShortText != "" || c.Text != "" || c.Returns != "" || len(c.Tags) > 0)
}

func shortText(c *comment.Comment) string {
	if c == nil {
		return ""
	}
	return c.ShortText
}

// Counts returns per-table row counts, keyed by the JSON table name.
func (t Tables) Counts() map[string]int {
	return map[string]int{
		"files":         len(t.Files),
		"modules":       len(t.Modules),
		"declarations":  len(t.Declarations),
		"signatures":    len(t.Signatures),
		"parameters":    len(t.Parameters),
		"type_params":   len(t.TypeParams),
		"leftover_tags": len(t.LeftoverTags),
		"imports":       len(t.Imports),
	}
}
