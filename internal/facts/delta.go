package facts

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two
// snapshots. Reflection IDs are registration order and shift whenever the
// file set changes, so row keys use stable fields only.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Files = diffFileRows(from.Files, to.Files)
	out.Modules = diffModuleRows(from.Modules, to.Modules)
	out.Declarations = diffDeclarationRows(from.Declarations, to.Declarations)
	out.Signatures = diffSignatureRows(from.Signatures, to.Signatures)
	out.Parameters = diffParameterRows(from.Parameters, to.Parameters)
	out.TypeParams = diffTypeParamRows(from.TypeParams, to.TypeParams)
	out.LeftoverTags = diffLeftoverTagRows(from.LeftoverTags, to.LeftoverTags)
	out.Imports = diffImportRows(from.Imports, to.Imports)

	return out
}

func emptyTables() Tables {
	return Tables{
		Files:        []FileRow{},
		Modules:      []ModuleRow{},
		Declarations: []DeclarationRow{},
		Signatures:   []SignatureRow{},
		Parameters:   []ParameterRow{},
		TypeParams:   []TypeParamRow{},
		LeftoverTags: []LeftoverTagRow{},
		Imports:      []ImportRow{},
	}
}

func diffFileRows(from, to []FileRow) []FileRow {
	return diffRows(from, to, func(r FileRow) string {
		return r.File + "|" + r.Language + "|" + intKey(r.Lines) + "|" + intKey(r.ParseErrorCount)
	})
}

func diffModuleRows(from, to []ModuleRow) []ModuleRow {
	return diffRows(from, to, func(r ModuleRow) string {
		return r.Name + "|" + r.File + "|" + intKey(r.Line) + "|" + boolKey(r.HasComment) + "|" + r.ShortText
	})
}

func diffDeclarationRows(from, to []DeclarationRow) []DeclarationRow {
	return diffRows(from, to, func(r DeclarationRow) string {
		return r.QualifiedName + "|" + r.Kind + "|" + r.File + "|" + intKey(r.Line) +
			"|" + boolKey(r.Exported) + "|" + r.Visibility + "|" + r.DeclaredVisibility +
			"|" + boolKey(r.HasComment) + "|" + r.ShortText + "|" + boolKey(r.HasLongText) +
			"|" + r.Returns + "|" + intKey(r.SignatureCount) + "|" + intKey(r.TypeParamCount) +
			"|" + boolKey(r.Event)
	})
}

func diffSignatureRows(from, to []SignatureRow) []SignatureRow {
	return diffRows(from, to, func(r SignatureRow) string {
		return r.Name + "|" + r.Kind + "|" + intKey(r.Line) + "|" + r.ReturnType +
			"|" + boolKey(r.HasComment) + "|" + r.ShortText + "|" + r.Returns + "|" + intKey(r.ParamCount)
	})
}

func diffParameterRows(from, to []ParameterRow) []ParameterRow {
	return diffRows(from, to, func(r ParameterRow) string {
		return r.Name + "|" + r.Type + "|" + intKey(r.Index) + "|" + boolKey(r.Optional) +
			"|" + boolKey(r.Rest) + "|" + boolKey(r.HasDefault) + "|" + boolKey(r.HasComment) + "|" + r.CommentText
	})
}

func diffTypeParamRows(from, to []TypeParamRow) []TypeParamRow {
	return diffRows(from, to, func(r TypeParamRow) string {
		return r.Name + "|" + r.Constraint + "|" + intKey(r.Index) + "|" + boolKey(r.HasComment) + "|" + r.CommentText
	})
}

func diffLeftoverTagRows(from, to []LeftoverTagRow) []LeftoverTagRow {
	return diffRows(from, to, func(r LeftoverTagRow) string {
		return r.Owner + "|" + intKey(r.SigIndex) + "|" + r.TagName + "|" + r.ParamName + "|" + r.Text
	})
}

func diffImportRows(from, to []ImportRow) []ImportRow {
	return diffRows(from, to, func(r ImportRow) string {
		return r.File + "|" + r.From + "|" + r.Name + "|" + intKey(r.Line)
	})
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	var diff []T
	for _, row := range to {
		rowKey := key(row)
		if _, ok := fromSet[rowKey]; !ok {
			diff = append(diff, row)
		}
	}
	if diff == nil {
		diff = []T{}
	}
	return diff
}

func boolKey(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func intKey(v int) string {
	if v == 0 {
		return "0"
	}
	return itoa(v)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
