package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Name given to destructured parameters, which have no single identifier.
const namedParametersName = "__namedParameters"

// walker turns a parse tree into RawNodes. Documentation comments attach to
// the declaration they immediately precede: within any statement or member
// list, the last doc comment before a declaration becomes its Doc, and any
// other statement in between clears it. Line comments and plain block
// comments are invisible to attachment.
type walker struct {
	source []byte
}

// fileModuleDoc returns the file-level comment: the first of two or more
// doc comments at the very top of the file, before any statement. A single
// leading comment belongs to the first declaration instead.
func (w *walker) fileModuleDoc(root *sitter.Node) string {
	var run []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "comment" {
			break
		}
		if text := child.Content(w.source); isDocComment(text) {
			run = append(run, text)
		}
	}
	if len(run) >= 2 {
		return run[0]
	}
	return ""
}

// statements walks a statement list (file top level or a namespace body).
func (w *walker) statements(container *sitter.Node, exported bool) []RawNode {
	var out []RawNode
	var pendingDoc string
	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		if child.Type() == "comment" {
			if text := child.Content(w.source); isDocComment(text) {
				pendingDoc = text
			}
			continue
		}
		out = append(out, w.statement(child, pendingDoc, exported)...)
		pendingDoc = ""
	}
	return out
}

func (w *walker) statement(node *sitter.Node, doc string, exported bool) []RawNode {
	switch node.Type() {
	case "export_statement":
		decl := node.ChildByFieldName("declaration")
		if decl == nil {
			decl = node.ChildByFieldName("value")
		}
		if decl == nil {
			return nil
		}
		out := w.statement(decl, doc, true)
		for i := range out {
			if out[i].Name == "" {
				out[i].Name = "default"
			}
		}
		return out

	case "ambient_declaration":
		var out []RawNode
		for i := 0; i < int(node.NamedChildCount()); i++ {
			out = append(out, w.statement(node.NamedChild(i), doc, exported)...)
		}
		return out

	case "function_declaration", "generator_function_declaration", "function_signature":
		n := w.callable(node, KindFunction, doc)
		n.Exported = exported
		return []RawNode{*n}

	case "class_declaration", "abstract_class_declaration":
		n := RawNode{
			Kind:       KindClass,
			Doc:        doc,
			Line:       line(node),
			Exported:   exported,
			Abstract:   node.Type() == "abstract_class_declaration",
			TypeParams: w.typeParameters(node.ChildByFieldName("type_parameters")),
		}
		if name := node.ChildByFieldName("name"); name != nil {
			n.Name = name.Content(w.source)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			n.Children = w.members(body)
		}
		return []RawNode{n}

	case "interface_declaration":
		n := RawNode{
			Kind:       KindInterface,
			Doc:        doc,
			Line:       line(node),
			Exported:   exported,
			TypeParams: w.typeParameters(node.ChildByFieldName("type_parameters")),
		}
		if name := node.ChildByFieldName("name"); name != nil {
			n.Name = name.Content(w.source)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			n.Children = w.members(body)
		}
		return []RawNode{n}

	case "internal_module", "module":
		n := RawNode{Kind: KindNamespace, Doc: doc, Line: line(node), Exported: exported}
		if name := node.ChildByFieldName("name"); name != nil {
			n.Name = stripQuotes(name.Content(w.source))
		}
		if body := node.ChildByFieldName("body"); body != nil {
			n.Children = w.statements(body, false)
		}
		return []RawNode{n}

	case "enum_declaration":
		n := RawNode{Kind: KindEnum, Doc: doc, Line: line(node), Exported: exported}
		if name := node.ChildByFieldName("name"); name != nil {
			n.Name = name.Content(w.source)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			n.Children = w.enumMembers(body)
		}
		return []RawNode{n}

	case "type_alias_declaration":
		n := RawNode{
			Kind:       KindTypeAlias,
			Doc:        doc,
			Line:       line(node),
			Exported:   exported,
			TypeParams: w.typeParameters(node.ChildByFieldName("type_parameters")),
		}
		if name := node.ChildByFieldName("name"); name != nil {
			n.Name = name.Content(w.source)
		}
		return []RawNode{n}

	case "lexical_declaration", "variable_declaration":
		return w.variableDeclarators(node, doc, exported)
	}
	return nil
}

// variableDeclarators emits one variable node per declarator. The statement
// level comment is adopted by every declarator it covers.
func (w *walker) variableDeclarators(node *sitter.Node, doc string, exported bool) []RawNode {
	var out []RawNode
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		name := child.ChildByFieldName("name")
		if name == nil {
			continue
		}
		out = append(out, RawNode{
			Kind:     KindVariable,
			Name:     name.Content(w.source),
			Doc:      doc,
			Line:     line(child),
			Exported: exported,
			HasBody:  child.ChildByFieldName("value") != nil,
		})
	}
	return out
}

// members walks a class or interface body.
func (w *walker) members(body *sitter.Node) []RawNode {
	var out []RawNode
	var pendingDoc string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			if text := child.Content(w.source); isDocComment(text) {
				pendingDoc = text
			}
			continue
		}
		if member := w.member(child, pendingDoc); member != nil {
			out = append(out, *member)
		}
		pendingDoc = ""
	}
	return out
}

func (w *walker) member(node *sitter.Node, doc string) *RawNode {
	switch node.Type() {
	case "method_definition", "method_signature", "abstract_method_signature":
		kind := KindMethod
		if hasToken(node, "get") || hasToken(node, "set") {
			kind = KindAccessor
		}
		n := w.callable(node, kind, doc)
		if n.Name == "constructor" && n.Kind == KindMethod {
			n.Kind = KindConstructor
		}
		n.Static = hasToken(node, "static")
		n.Abstract = node.Type() == "abstract_method_signature" || hasToken(node, "abstract")
		n.Accessibility = accessibilityOf(node, w.source)
		return n

	case "public_field_definition", "field_definition", "property_signature":
		n := &RawNode{
			Kind:          KindProperty,
			Doc:           doc,
			Line:          line(node),
			Optional:      hasToken(node, "?"),
			Static:        hasToken(node, "static"),
			Abstract:      hasToken(node, "abstract"),
			Accessibility: accessibilityOf(node, w.source),
		}
		if name := node.ChildByFieldName("name"); name != nil {
			n.Name = stripQuotes(name.Content(w.source))
		}
		return n

	case "call_signature":
		return w.callable(node, KindCallSignature, doc)

	case "construct_signature":
		return w.callable(node, KindConstructSignature, doc)
	}
	return nil
}

// enumMembers walks an enum body. Members appear either as bare names or as
// assignments with a value.
func (w *walker) enumMembers(body *sitter.Node) []RawNode {
	var out []RawNode
	var pendingDoc string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			if text := child.Content(w.source); isDocComment(text) {
				pendingDoc = text
			}
			continue
		}
		n := RawNode{Kind: KindEnumMember, Doc: pendingDoc, Line: line(child)}
		pendingDoc = ""
		switch child.Type() {
		case "enum_assignment":
			if name := child.ChildByFieldName("name"); name != nil {
				n.Name = stripQuotes(name.Content(w.source))
			}
		case "property_identifier", "string":
			n.Name = stripQuotes(child.Content(w.source))
		default:
			continue
		}
		if n.Name != "" {
			out = append(out, n)
		}
	}
	return out
}

// callable extracts the shared shape of functions, methods, constructors,
// accessors, and interface signatures.
func (w *walker) callable(node *sitter.Node, kind string, doc string) *RawNode {
	n := &RawNode{
		Kind:       kind,
		Doc:        doc,
		Line:       line(node),
		Optional:   hasToken(node, "?"),
		HasBody:    node.ChildByFieldName("body") != nil,
		ReturnType: typeText(node.ChildByFieldName("return_type"), w.source),
		Params:     w.parameters(node.ChildByFieldName("parameters")),
		TypeParams: w.typeParameters(node.ChildByFieldName("type_parameters")),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		n.Name = stripQuotes(name.Content(w.source))
	}
	return n
}

func (w *walker) parameters(node *sitter.Node) []RawParam {
	if node == nil {
		return nil
	}
	var out []RawParam
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		var p RawParam
		switch child.Type() {
		case "required_parameter", "optional_parameter":
			pattern := child.ChildByFieldName("pattern")
			if pattern == nil {
				continue
			}
			p.Name = patternName(pattern, w.source)
			p.Rest = pattern.Type() == "rest_pattern"
			p.Optional = child.Type() == "optional_parameter"
			p.Type = typeText(child.ChildByFieldName("type"), w.source)
			p.HasDefault = child.ChildByFieldName("value") != nil
		case "identifier":
			p.Name = child.Content(w.source)
		case "assignment_pattern":
			if left := child.ChildByFieldName("left"); left != nil {
				p.Name = patternName(left, w.source)
			}
			p.HasDefault = true
		case "rest_pattern":
			p.Name = patternName(child, w.source)
			p.Rest = true
		case "object_pattern", "array_pattern":
			p.Name = namedParametersName
		default:
			continue
		}
		if p.Name == "" || p.Name == "this" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func patternName(pattern *sitter.Node, source []byte) string {
	switch pattern.Type() {
	case "rest_pattern":
		if inner := pattern.NamedChild(0); inner != nil {
			return patternName(inner, source)
		}
		return strings.TrimPrefix(pattern.Content(source), "...")
	case "object_pattern", "array_pattern":
		return namedParametersName
	default:
		return pattern.Content(source)
	}
}

func (w *walker) typeParameters(node *sitter.Node) []RawTypeParam {
	if node == nil {
		return nil
	}
	var out []RawTypeParam
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "type_parameter" {
			continue
		}
		var tp RawTypeParam
		if name := child.ChildByFieldName("name"); name != nil {
			tp.Name = name.Content(w.source)
		}
		if c := child.ChildByFieldName("constraint"); c != nil {
			text := strings.TrimSpace(c.Content(w.source))
			tp.Constraint = strings.TrimSpace(strings.TrimPrefix(text, "extends"))
		}
		if tp.Name != "" {
			out = append(out, tp)
		}
	}
	return out
}

// imports collects import statements and re-exports with a source module,
// for the dependency graph.
func (w *walker) imports(root *sitter.Node) []RawImport {
	var out []RawImport
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement", "export_statement":
			src := child.ChildByFieldName("source")
			if src == nil {
				continue
			}
			out = append(out, RawImport{
				From:  stripQuotes(src.Content(w.source)),
				Names: importNames(child, w.source),
				Line:  line(child),
			})
		}
	}
	return out
}

func importNames(node *sitter.Node, source []byte) []string {
	var names []string
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "import_specifier", "export_specifier":
			if name := n.ChildByFieldName("name"); name != nil {
				names = append(names, name.Content(source))
			}
			return
		case "namespace_import":
			if id := n.NamedChild(0); id != nil {
				names = append(names, id.Content(source))
			}
			return
		case "import_clause":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				if c.Type() == "identifier" {
					names = append(names, c.Content(source))
				} else {
					visit(c)
				}
			}
			return
		case "string":
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(node)
	return names
}

func isDocComment(text string) bool {
	return strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/**/")
}

func typeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	text := strings.TrimSpace(node.Content(source))
	text = strings.TrimPrefix(text, ":")
	return strings.TrimSpace(text)
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

func hasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}

func accessibilityOf(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "accessibility_modifier" {
			return c.Content(source)
		}
	}
	return ""
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}
