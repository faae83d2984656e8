package converter

import (
	"tsdoclint/internal/comment"
	"tsdoclint/internal/model"
)

// reconcile redistributes a declaration's documentation across its
// signatures once the whole tree exists. Returns tags migrate into the
// Returns field, prose copies onto signatures that lack their own, and
// param tags resolve onto parameters, with a signature-level tag always
// beating a declaration-level one. Matched and unmatched param tags alike
// are stripped afterwards.
func reconcile(decl *model.Reflection) {
	c := decl.Comment
	if c.HasTag("returns") {
		c.Returns = c.Tag("returns").Text
		c.RemoveTags("returns")
	}

	for _, sig := range decl.Signatures {
		sc := sig.Comment
		if sc.HasTag("returns") {
			sc.Returns = sc.Tag("returns").Text
			sc.RemoveTags("returns")
		}

		if c != nil {
			if sc == nil {
				sc = &comment.Comment{}
				sig.Comment = sc
			}
			if sc.ShortText == "" {
				sc.ShortText = c.ShortText
			}
			if sc.Text == "" {
				sc.Text = c.Text
			}
			if sc.Returns == "" {
				sc.Returns = c.Returns
			}
		}

		for _, param := range sig.Params {
			tag := sc.ParamTag("param", param.Name)
			if tag == nil {
				tag = c.ParamTag("param", param.Name)
			}
			if tag != nil {
				param.Comment = comment.New(tag.Text)
			}
		}

		sc.RemoveTags("param")
	}

	c.RemoveTags("param")
}
