package converter

import (
	"tsdoclint/internal/comment"
	"tsdoclint/internal/model"
)

// applyModifiers turns access tags on a freshly parsed comment into flags on
// the reflection and strips every consumed tag. Applying a second time is a
// no-op since the tags are gone.
func (e *Engine) applyModifiers(r *model.Reflection, c *comment.Comment) {
	if c.HasTag("private") {
		r.Flags.Set(model.FlagPrivate)
		c.RemoveTags("private")
	}
	if c.HasTag("protected") {
		r.Flags.Set(model.FlagProtected)
		c.RemoveTags("protected")
	}
	if c.HasTag("public") {
		r.Flags.Set(model.FlagPublic)
		c.RemoveTags("public")
	}
	if c.HasTag("event") {
		if r.Kind.Is(model.KindFunctionOrMethod | model.KindProperty) {
			r.Flags.Set(model.FlagEvent)
		}
		c.RemoveTags("event")
	}
	if c.HasTag("hidden") {
		r.Flags.Set(model.FlagHidden)
		e.hidden = append(e.hidden, r)
		c.RemoveTags("hidden")
	}
}
