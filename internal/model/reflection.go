package model

import (
	"tsdoclint/internal/comment"
)

// Reflection is one node of the documentation model: a module, class,
// function, property, or other declaration. Identity is the numeric ID
// assigned at registration; merged declarations (namespaces split across
// files, overload groups) share a single reflection.
type Reflection struct {
	ID         int
	Name       string
	Kind       Kind
	Flags      Flags
	Comment    *comment.Comment
	Parent     *Reflection
	Children   []*Reflection
	Signatures []*Signature
	TypeParams []*TypeParam
	File       string
	Line       int

	// SourceVisibility is the accessibility modifier as written in source,
	// kept apart from Flags so a conflicting access tag stays detectable.
	SourceVisibility string
}

// Signature is one callable shape of a declaration: an overload, a call
// signature, or a construct signature, with its parameters in source order.
type Signature struct {
	Name       string
	Kind       Kind
	Comment    *comment.Comment
	Params     []*Parameter
	ReturnType string
	Line       int
}

// Parameter is a formal parameter of one signature.
type Parameter struct {
	Name    string
	Comment *comment.Comment
	Type    string
	Flags   Flags
}

// TypeParam is a generic type parameter declared on a reflection.
type TypeParam struct {
	Name       string
	Comment    *comment.Comment
	Constraint string
}

// QualifiedName joins the names from the project root down to this
// reflection with dots. The project root itself contributes nothing.
func (r *Reflection) QualifiedName() string {
	if r.Parent == nil || r.Parent.Kind == KindProject {
		return r.Name
	}
	return r.Parent.QualifiedName() + "." + r.Name
}

// ChildByName returns the direct child with the given name whose kind
// matches the given group, or nil. This is the merge lookup: converting a
// second declaration of the same symbol finds the first one's reflection.
func (r *Reflection) ChildByName(name string, group Kind) *Reflection {
	for _, c := range r.Children {
		if c.Name == name && c.Kind.Is(group) {
			return c
		}
	}
	return nil
}

// TypeParamByName returns the declared type parameter with the given name,
// or nil.
func (r *Reflection) TypeParamByName(name string) *TypeParam {
	for _, tp := range r.TypeParams {
		if tp.Name == name {
			return tp
		}
	}
	return nil
}
