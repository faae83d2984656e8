package extractor

// Raw node kinds produced by the walker.
const (
	KindFunction           = "function"
	KindClass              = "class"
	KindInterface          = "interface"
	KindMethod             = "method"
	KindConstructor        = "constructor"
	KindAccessor           = "accessor"
	KindProperty           = "property"
	KindVariable           = "variable"
	KindNamespace          = "namespace"
	KindEnum               = "enum"
	KindEnumMember         = "enum_member"
	KindTypeAlias          = "type_alias"
	KindCallSignature      = "call_signature"
	KindConstructSignature = "construct_signature"
)

// FileSource is everything extracted from one source file: its declaration
// nodes in source order, imports, and any parse errors. The shape
// round-trips through JSON for the extraction cache.
type FileSource struct {
	File        string      `json:"file"`
	Language    string      `json:"language"`
	Lines       int         `json:"lines"`
	ModuleDoc   string      `json:"module_doc,omitempty"`
	Nodes       []RawNode   `json:"nodes,omitempty"`
	Imports     []RawImport `json:"imports,omitempty"`
	ParseErrors []string    `json:"parse_errors,omitempty"`
}

// RawNode is one declaration as written in source, before conversion into
// the reflection model. Doc carries the attached raw comment text with its
// markers intact; empty means undocumented. HasBody is false for overload
// declarations and ambient or interface signatures.
type RawNode struct {
	Kind          string         `json:"kind"`
	Name          string         `json:"name"`
	Doc           string         `json:"doc,omitempty"`
	Line          int            `json:"line"`
	Exported      bool           `json:"exported,omitempty"`
	Static        bool           `json:"static,omitempty"`
	Abstract      bool           `json:"abstract,omitempty"`
	Optional      bool           `json:"optional,omitempty"`
	Accessibility string         `json:"accessibility,omitempty"`
	HasBody       bool           `json:"has_body,omitempty"`
	ReturnType    string         `json:"return_type,omitempty"`
	Params        []RawParam     `json:"params,omitempty"`
	TypeParams    []RawTypeParam `json:"type_params,omitempty"`
	Children      []RawNode      `json:"children,omitempty"`
}

// RawParam is one formal parameter of a function-like raw node.
type RawParam struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Optional   bool   `json:"optional,omitempty"`
	Rest       bool   `json:"rest,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
}

// RawTypeParam is one generic type parameter of a raw node.
type RawTypeParam struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
}

// RawImport is one import statement, kept for the dependency graph.
type RawImport struct {
	From  string   `json:"from"`
	Names []string `json:"names,omitempty"`
	Line  int      `json:"line"`
}
