package srcast

// Type is the resolved type carried by every typed node in the input AST
// (spec.md §3/§6: "every expression carries exactly one type encoding").
// It is a closed set of concrete implementations, not an open interface
// for the front end to extend.
type Type interface {
	isType()
	String() string
}

// ElementaryType is a primitive integer.
type ElementaryType struct {
	Bits   int // 8, 16, ..., 256
	Signed bool
}

func (*ElementaryType) isType() {}
func (t *ElementaryType) String() string {
	if t.Signed {
		return "int"
	}
	return "uint"
}

// BoolType is the primitive boolean.
type BoolType struct{}

func (*BoolType) isType()        {}
func (*BoolType) String() string { return "bool" }

// AddressType is an address, optionally payable. Payability does not
// change the encoding (spec.md §3: behaves as a scalar) but is recorded
// for call sites that require a payable destination (.transfer/.send).
type AddressType struct {
	Payable bool
}

func (*AddressType) isType()        {}
func (*AddressType) String() string { return "address" }

// StringLiteralType is the type of a raw string literal prior to any
// conversion; string values themselves are unsupported outside of literal
// hashing (spec.md §4.8).
type StringLiteralType struct{}

func (*StringLiteralType) isType()        {}
func (*StringLiteralType) String() string { return "string" }

// FixedBytesType and ArrayType are recognized only so that member access
// like `.length` can be identified and reported as the fatal "not yet
// supported" case spec.md §4.8 calls for; no array/bytes value is ever
// lowered successfully.
type FixedBytesType struct{ Size int }

func (*FixedBytesType) isType()        {}
func (*FixedBytesType) String() string { return "bytes" }

type ArrayType struct{ Element Type }

func (*ArrayType) isType()        {}
func (*ArrayType) String() string { return "array" }

// StructDeclType names a user struct declared in some contract.
type StructDeclType struct {
	Decl *StructDecl
}

func (*StructDeclType) isType()        {}
func (t *StructDeclType) String() string { return t.Decl.Name }

// ContractDeclType names a user contract.
type ContractDeclType struct {
	Decl *ContractDecl
}

func (*ContractDeclType) isType()        {}
func (t *ContractDeclType) String() string { return t.Decl.Name }

// MappingType models `mapping(K1 => mapping(K2 => ... => V))`, already
// flattened into a non-empty ordered key-type list plus one value type
// (spec.md §3: "Map(id, key-types[], value-type)").
type MappingType struct {
	KeyTypes []Type
	Value    Type
}

func (*MappingType) isType()        {}
func (*MappingType) String() string { return "mapping" }

// MagicType is the pseudo-type of `msg`, `block`, `tx`.
type MagicType struct {
	Kind MagicKind
}

type MagicKind int

const (
	MagicMessage MagicKind = iota
	MagicBlock
	MagicTransaction
)

func (*MagicType) isType()        {}
func (*MagicType) String() string { return "magic" }

// TypeTypeRef is the type of a type name used as an expression (only used
// here for enum member access, which surfaces as fatal per spec.md §4.8).
type TypeTypeRef struct {
	Actual Type
}

func (*TypeTypeRef) isType()        {}
func (*TypeTypeRef) String() string { return "type" }

// InaccessibleDynamicType stands in for arguments (e.g. assert/require
// conditions) whose own type is irrelevant to the lowering - mirrors
// original_source's `InaccessibleDynamicType` used for assertion args.
type InaccessibleDynamicType struct{}

func (*InaccessibleDynamicType) isType()        {}
func (*InaccessibleDynamicType) String() string { return "<dynamic>" }

// IsWrapped reports whether values of t are represented as a WrappedScalar
// struct (everything except user structs, contracts, maps, and the
// inaccessible placeholder type - spec.md §4.1).
func IsWrapped(t Type) bool {
	switch t.(type) {
	case *ElementaryType, *BoolType, *AddressType:
		return true
	default:
		return false
	}
}
