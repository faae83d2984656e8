package facts

// FilterTablesByFiles returns a new Tables object containing only rows that
// belong to the provided file set. Signature, parameter, type parameter, and
// leftover tag rows carry no file of their own; they follow their owning
// declaration or module.
func FilterTablesByFiles(tables Tables, files map[string]bool) Tables {
	out := emptyTables()
	if len(files) == 0 {
		return out
	}

	keepID := make(map[int]bool)

	for _, row := range tables.Files {
		if files[row.File] {
			out.Files = append(out.Files, row)
		}
	}
	for _, row := range tables.Modules {
		if files[row.File] {
			out.Modules = append(out.Modules, row)
			keepID[row.ID] = true
		}
	}
	for _, row := range tables.Declarations {
		if files[row.File] {
			out.Declarations = append(out.Declarations, row)
			keepID[row.ID] = true
		}
	}
	for _, row := range tables.Signatures {
		if keepID[row.DeclID] {
			out.Signatures = append(out.Signatures, row)
		}
	}
	for _, row := range tables.Parameters {
		if keepID[row.DeclID] {
			out.Parameters = append(out.Parameters, row)
		}
	}
	for _, row := range tables.TypeParams {
		if keepID[row.DeclID] {
			out.TypeParams = append(out.TypeParams, row)
		}
	}
	for _, row := range tables.LeftoverTags {
		if keepID[row.DeclID] {
			out.LeftoverTags = append(out.LeftoverTags, row)
		}
	}
	for _, row := range tables.Imports {
		if files[row.File] {
			out.Imports = append(out.Imports, row)
		}
	}

	return out
}

// FilterDeltaByFiles returns a new Delta containing only rows for the
// specified files.
func FilterDeltaByFiles(delta Delta, files map[string]bool) Delta {
	if len(files) == 0 {
		return Delta{
			Added:   emptyTables(),
			Removed: emptyTables(),
		}
	}
	return Delta{
		Added:   FilterTablesByFiles(delta.Added, files),
		Removed: FilterTablesByFiles(delta.Removed, files),
	}
}
