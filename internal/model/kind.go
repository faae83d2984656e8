package model

// Kind identifies what a reflection describes. Kinds are bitflags so that
// group membership tests stay cheap.
type Kind int

const (
	KindProject Kind = 1 << iota
	KindModule
	KindEnum
	KindEnumMember
	KindVariable
	KindFunction
	KindClass
	KindInterface
	KindConstructor
	KindProperty
	KindMethod
	KindAccessor
	KindTypeAlias
	KindTypeParameter
	KindParameter
	KindCallSignature
	KindConstructorSignature
)

// Kind groups used by the conversion hooks.
const (
	KindFunctionOrMethod = KindFunction | KindMethod | KindConstructor | KindAccessor
	KindModuleLike       = KindProject | KindModule
	KindSignaturePart    = KindCallSignature | KindConstructorSignature
	KindClassOrInterface = KindClass | KindInterface
)

// Is reports whether the kind belongs to the given kind or group.
func (k Kind) Is(group Kind) bool {
	return k&group != 0
}

var kindNames = map[Kind]string{
	KindProject:              "project",
	KindModule:               "module",
	KindEnum:                 "enum",
	KindEnumMember:           "enum_member",
	KindVariable:             "variable",
	KindFunction:             "function",
	KindClass:                "class",
	KindInterface:            "interface",
	KindConstructor:          "constructor",
	KindProperty:             "property",
	KindMethod:               "method",
	KindAccessor:             "accessor",
	KindTypeAlias:            "type_alias",
	KindTypeParameter:        "type_parameter",
	KindParameter:            "parameter",
	KindCallSignature:        "call_signature",
	KindConstructorSignature: "construct_signature",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
