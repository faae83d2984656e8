package converter

import (
	"sort"
	"strings"

	"tsdoclint/internal/comment"
	"tsdoclint/internal/model"
)

// moduleComment is one raw comment candidate recorded for a module-like
// reflection during tree construction. Selection happens at resolve-begin.
type moduleComment struct {
	reflection  *model.Reflection
	fullText    string
	isPreferred bool
}

// Engine applies documentation comments to the reflection tree. All of its
// state is pass-scoped: the module comment candidates and the hidden set are
// created at tree-begin and fully drained at resolve-begin, so nothing leaks
// between conversion runs.
type Engine struct {
	project  *model.Project
	comments map[int]*moduleComment
	hidden   []*model.Reflection
}

// NewEngine creates an engine bound to the given project, ready for a new
// conversion pass.
func NewEngine(project *model.Project) *Engine {
	e := &Engine{project: project}
	e.TreeBegin()
	return e
}

// TreeBegin resets pass state for a new conversion run.
func (e *Engine) TreeBegin() {
	e.comments = make(map[int]*moduleComment)
	e.hidden = nil
}

// NodeVisited handles the raw comment attached to a just-created or merged
// reflection. Function-like reflections only get modifiers applied here;
// their comment text lives on signatures or arrives later from the
// implementation node. Module-like reflections defer into the candidate
// table. Everything else is tokenized and assigned immediately.
func (e *Engine) NodeVisited(r *model.Reflection, raw string) {
	if raw == "" {
		return
	}
	switch {
	case r.Kind.Is(model.KindFunctionOrMethod):
		c := comment.Parse(raw, r.Comment)
		e.applyModifiers(r, c)
	case r.Kind.Is(model.KindModuleLike):
		e.storeModuleComment(raw, r)
	default:
		c := comment.Parse(raw, r.Comment)
		e.applyModifiers(r, c)
		r.Comment = c
	}
}

// FunctionImplementation merges the implementation node's comment into a
// declaration whose overload signatures were already collected.
func (e *Engine) FunctionImplementation(r *model.Reflection, raw string) {
	if raw == "" {
		return
	}
	r.Comment = comment.Parse(raw, r.Comment)
}

// storeModuleComment keeps at most one candidate per reflection id. A
// candidate whose raw text contains @preferred (case-insensitive) beats any
// non-preferred one; among equals the longer text wins and equal lengths
// keep the earliest candidate.
func (e *Engine) storeModuleComment(raw string, r *model.Reflection) {
	isPreferred := strings.Contains(strings.ToLower(raw), "@preferred")

	stored, ok := e.comments[r.ID]
	if !ok {
		e.comments[r.ID] = &moduleComment{reflection: r, fullText: raw, isPreferred: isPreferred}
		return
	}
	if !isPreferred && (stored.isPreferred || len(stored.fullText) >= len(raw)) {
		return
	}
	if isPreferred == stored.isPreferred && len(stored.fullText) == len(raw) {
		return
	}
	stored.fullText = raw
	stored.isPreferred = isPreferred
}

// TypeParamCreated resolves a type parameter's documentation from the
// owner's comment, trying the typeparam and template spellings before the
// param ones. The matched tag is consumed so a sibling with the same name
// cannot claim it again.
func (e *Engine) TypeParamCreated(tp *model.TypeParam, owner *comment.Comment) {
	if owner == nil {
		return
	}
	tag := owner.ParamTag("typeparam", tp.Name)
	if tag == nil {
		tag = owner.ParamTag("template", tp.Name)
	}
	if tag == nil {
		tag = owner.ParamTag("param", "<"+tp.Name+">")
	}
	if tag == nil {
		tag = owner.ParamTag("param", tp.Name)
	}
	if tag == nil {
		return
	}
	tp.Comment = comment.New(tag.Text)
	owner.Remove(tag)
}

// ResolveBegin finalizes deferred module comments, then removes reflections
// marked hidden. All pass state is discarded before reconciliation starts.
func (e *Engine) ResolveBegin() {
	ids := make([]int, 0, len(e.comments))
	for id := range e.comments {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		info := e.comments[id]
		c := comment.Parse(info.fullText, nil)
		c.RemoveTags("preferred")
		e.applyModifiers(info.reflection, c)
		info.reflection.Comment = c
	}
	e.comments = make(map[int]*moduleComment)

	for _, r := range e.hidden {
		e.project.Remove(r)
	}
	e.hidden = nil
}

// Resolve reconciles one declaration's documentation across its signatures.
// Reflections without signatures have nothing to reconcile.
func (e *Engine) Resolve(r *model.Reflection) {
	if len(r.Signatures) == 0 {
		return
	}
	reconcile(r)
}
