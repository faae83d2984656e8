package converter

import (
	"strings"

	"tsdoclint/internal/comment"
	"tsdoclint/internal/extractor"
	"tsdoclint/internal/model"
)

// Converter builds the reflection tree from extracted sources and drives the
// comment engine hooks in construction order. Conversion is single-threaded;
// all parallelism stays in extraction.
type Converter struct {
	project *model.Project
	engine  *Engine

	// FileModules makes each file a module reflection of its own, with the
	// file's leading comment block as a module comment candidate.
	FileModules bool
}

// New creates a converter with a fresh project of the given name.
func New(projectName string) *Converter {
	p := model.NewProject(projectName)
	return &Converter{project: p, engine: NewEngine(p)}
}

// Project returns the reflection tree under construction.
func (cv *Converter) Project() *model.Project { return cv.project }

// Engine returns the comment engine bound to this conversion pass.
func (cv *Converter) Engine() *Engine { return cv.engine }

// ConvertFile adds one extracted file to the reflection tree.
func (cv *Converter) ConvertFile(src extractor.FileSource) {
	scope := cv.project.Root
	if cv.FileModules {
		scope = cv.findOrCreate(cv.project.Root, src.File, model.KindModule, src.File, 1)
		if src.ModuleDoc != "" {
			cv.engine.NodeVisited(scope, src.ModuleDoc)
		}
	}
	for i := range src.Nodes {
		cv.convertNode(scope, &src.Nodes[i], src.File)
	}
}

// Resolve runs the resolve pass over the completed tree: module comment
// finalization first, then one reconciliation visit per reflection.
func (cv *Converter) Resolve() {
	cv.engine.ResolveBegin()
	cv.project.Walk(cv.engine.Resolve)
}

func (cv *Converter) convertNode(parent *model.Reflection, n *extractor.RawNode, file string) {
	switch n.Kind {
	case extractor.KindNamespace:
		cv.convertNamespace(parent, n, file)
	case extractor.KindFunction:
		cv.convertCallable(parent, n, file, model.KindFunction, model.KindCallSignature)
	case extractor.KindMethod:
		cv.convertCallable(parent, n, file, model.KindMethod, model.KindCallSignature)
	case extractor.KindConstructor:
		cv.convertCallable(parent, n, file, model.KindConstructor, model.KindConstructorSignature)
	case extractor.KindAccessor:
		cv.convertAccessor(parent, n, file)
	case extractor.KindCallSignature:
		cv.appendBareSignature(parent, n, model.KindCallSignature)
	case extractor.KindConstructSignature:
		cv.appendBareSignature(parent, n, model.KindConstructorSignature)
	case extractor.KindClass:
		cv.convertContainer(parent, n, file, model.KindClass)
	case extractor.KindInterface:
		cv.convertContainer(parent, n, file, model.KindInterface)
	case extractor.KindEnum:
		cv.convertContainer(parent, n, file, model.KindEnum)
	case extractor.KindTypeAlias:
		decl := cv.declare(parent, n, file, model.KindTypeAlias)
		cv.convertTypeParams(decl, n, decl.Comment)
	case extractor.KindProperty:
		cv.declare(parent, n, file, model.KindProperty)
	case extractor.KindVariable:
		cv.declare(parent, n, file, model.KindVariable)
	case extractor.KindEnumMember:
		cv.declare(parent, n, file, model.KindEnumMember)
	}
}

// declare converts a plain declaration: find or create the reflection, carry
// the source modifiers over, and hand the raw comment to the engine.
func (cv *Converter) declare(parent *model.Reflection, n *extractor.RawNode, file string, kind model.Kind) *model.Reflection {
	decl := cv.findOrCreate(parent, n.Name, kind, file, n.Line)
	applySourceFlags(decl, n)
	cv.engine.NodeVisited(decl, n.Doc)
	return decl
}

func (cv *Converter) convertContainer(parent *model.Reflection, n *extractor.RawNode, file string, kind model.Kind) {
	decl := cv.declare(parent, n, file, kind)
	cv.convertTypeParams(decl, n, decl.Comment)
	for i := range n.Children {
		cv.convertNode(decl, &n.Children[i], file)
	}
}

// convertNamespace expands a possibly dotted namespace chain into nested
// module reflections, merging with any segments already declared elsewhere.
// The raw comment belongs to the chain as a whole and is recorded once,
// against the innermost segment; intermediate segments contribute none.
func (cv *Converter) convertNamespace(parent *model.Reflection, n *extractor.RawNode, file string) {
	scope := parent
	for _, segment := range strings.Split(n.Name, ".") {
		scope = cv.findOrCreate(scope, segment, model.KindModule, file, n.Line)
		if n.Exported {
			scope.Flags.Set(model.FlagExported)
		}
	}
	cv.engine.NodeVisited(scope, n.Doc)
	for i := range n.Children {
		cv.convertNode(scope, &n.Children[i], file)
	}
}

// convertCallable handles functions, methods, and constructors, merging
// overload declarations into one reflection with one signature each. The
// implementation node contributes no signature of its own once overloads
// exist; its comment merges into the declaration instead.
func (cv *Converter) convertCallable(parent *model.Reflection, n *extractor.RawNode, file string, kind, sigKind model.Kind) {
	decl := cv.findOrCreate(parent, n.Name, kind, file, n.Line)
	applySourceFlags(decl, n)
	cv.engine.NodeVisited(decl, n.Doc)

	if !n.HasBody || len(decl.Signatures) == 0 {
		sig := newSignature(n, sigKind)
		decl.Signatures = append(decl.Signatures, sig)
		cv.convertTypeParams(decl, n, sig.Comment)
		return
	}
	cv.engine.FunctionImplementation(decl, n.Doc)
}

// convertAccessor merges get and set declarations of one property name into
// a single accessor reflection, each contributing its own signature.
func (cv *Converter) convertAccessor(parent *model.Reflection, n *extractor.RawNode, file string) {
	decl := cv.findOrCreate(parent, n.Name, model.KindAccessor, file, n.Line)
	applySourceFlags(decl, n)
	cv.engine.NodeVisited(decl, n.Doc)
	decl.Signatures = append(decl.Signatures, newSignature(n, model.KindCallSignature))
}

// appendBareSignature attaches an interface call or construct signature
// directly to the owning declaration.
func (cv *Converter) appendBareSignature(parent *model.Reflection, n *extractor.RawNode, kind model.Kind) {
	sig := newSignature(n, kind)
	if sig.Name == "" {
		sig.Name = parent.Name
	}
	parent.Signatures = append(parent.Signatures, sig)
}

// convertTypeParams adds newly seen type parameters to the declaration and
// lets the engine pull their documentation out of the owning comment.
// Overload repeats of a name are not added twice.
func (cv *Converter) convertTypeParams(decl *model.Reflection, n *extractor.RawNode, owner *comment.Comment) {
	for _, raw := range n.TypeParams {
		if decl.TypeParamByName(raw.Name) != nil {
			continue
		}
		tp := &model.TypeParam{Name: raw.Name, Constraint: raw.Constraint}
		decl.TypeParams = append(decl.TypeParams, tp)
		cv.engine.TypeParamCreated(tp, owner)
	}
}

func newSignature(n *extractor.RawNode, kind model.Kind) *model.Signature {
	sig := &model.Signature{Name: n.Name, Kind: kind, ReturnType: n.ReturnType, Line: n.Line}
	if n.Doc != "" {
		sig.Comment = comment.Parse(n.Doc, nil)
	}
	for _, p := range n.Params {
		param := &model.Parameter{Name: p.Name, Type: p.Type}
		if p.Optional {
			param.Flags.Set(model.FlagOptional)
		}
		if p.Rest {
			param.Flags.Set(model.FlagRest)
		}
		if p.HasDefault {
			param.Flags.Set(model.FlagDefaultValue)
		}
		sig.Params = append(sig.Params, param)
	}
	return sig
}

func applySourceFlags(r *model.Reflection, n *extractor.RawNode) {
	if n.Exported {
		r.Flags.Set(model.FlagExported)
	}
	if n.Static {
		r.Flags.Set(model.FlagStatic)
	}
	if n.Abstract {
		r.Flags.Set(model.FlagAbstract)
	}
	if n.Optional {
		r.Flags.Set(model.FlagOptional)
	}
	switch n.Accessibility {
	case "private":
		r.Flags.Set(model.FlagPrivate)
	case "protected":
		r.Flags.Set(model.FlagProtected)
	case "public":
		r.Flags.Set(model.FlagPublic)
	}
	if n.Accessibility != "" {
		r.SourceVisibility = n.Accessibility
	}
}

func (cv *Converter) findOrCreate(parent *model.Reflection, name string, kind model.Kind, file string, line int) *model.Reflection {
	if r := parent.ChildByName(name, kind); r != nil {
		return r
	}
	r := cv.project.NewChild(parent, name, kind)
	r.File = file
	r.Line = line
	return r
}
