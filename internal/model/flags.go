package model

// Flags carries visibility and trait markers on a reflection. Visibility
// flags come either from source modifiers or from consumed access tags in
// the documentation.
type Flags int

const (
	FlagPrivate Flags = 1 << iota
	FlagProtected
	FlagPublic
	FlagStatic
	FlagAbstract
	FlagOptional
	FlagRest
	FlagDefaultValue
	FlagExported
	FlagHidden
	FlagEvent
)

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Set turns the given flag bits on.
func (f *Flags) Set(flag Flags) {
	*f |= flag
}

// Visibility renders the visibility portion of the flags, or "" when no
// visibility flag is set. Private wins over protected wins over public when
// conflicting sources set more than one.
func (f Flags) Visibility() string {
	switch {
	case f.Has(FlagPrivate):
		return "private"
	case f.Has(FlagProtected):
		return "protected"
	case f.Has(FlagPublic):
		return "public"
	}
	return ""
}
