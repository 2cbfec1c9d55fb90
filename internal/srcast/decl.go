package srcast

// Visibility mirrors the handful of visibility/mutability modifiers that
// matter to the lowering: whether a function belongs to a contract's
// public interface (spec.md §4.5 get_interface) and whether it is payable
// (spec.md §4.9 payment pre-amble).
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityExternal
	VisibilityInternal
	VisibilityPrivate
)

// IsExported reports whether _v belongs to a contract's external
// interface (spec.md §4.5: "every public/external function").
func (v Visibility) IsExported() bool {
	return v == VisibilityPublic || v == VisibilityExternal
}

// ContractDecl is a single `contract C is Base1, Base2 { ... }` declaration.
type ContractDecl struct {
	Pos     Position
	Name    string
	Bases   []*ContractDecl // resolved base list, declaration order (not yet linearized)
	Structs []*StructDecl
	State   []*VariableDecl // state variables declared directly on this contract
	Funcs   []*FunctionDecl
	Mods    []*ModifierDecl
	Ctor    *FunctionDecl // nil if the contract has no explicit constructor
}

// StructDecl is a user-defined struct, nested within its containing
// contract (spec.md §3: Struct(name, fields)).
type StructDecl struct {
	Pos      Position
	Name     string
	Contract *ContractDecl
	Fields   []*StructField
}

// StructField is one field of a struct, in declaration order.
type StructField struct {
	Pos  Position
	Name string
	Type Type
}

// VariableDecl is a state variable, a local variable, or a parameter/return
// value. StorageQualified matches spec.md §4.7: "Storage-qualified locals
// become pointer-typed; value-qualified locals are embedded."
type VariableDecl struct {
	Pos              Position
	Name             string
	Type             Type
	IsStateVariable  bool
	StorageQualified bool
	Payable          bool // only meaningful for AddressType locals/params
}

// FunctionDecl is a function or constructor body, already resolved against
// its containing contract and (for non-constructors) annotated with the
// set of modifier invocations in source order.
type FunctionDecl struct {
	Pos         Position
	Name        string
	Contract    *ContractDecl
	Visibility  Visibility
	Payable     bool
	IsConstructor bool
	Params      []*VariableDecl
	Returns     []*VariableDecl // named or unnamed return values, in order
	Modifiers   []*ModifierInvocation
	Body        *Block
	// Override is set when this function explicitly overrides a base
	// function of the same name and signature (spec.md §4.3).
	Override bool
}

// Signature returns a signature key used for override resolution: same
// name and same parameter type strings, in order; return types are not
// part of the key. This is a coarse
// stand-in for Solidity's full signature matching, sufficient for the
// lowering's override-hides-base rule (spec.md §4.3).
func (f *FunctionDecl) Signature() string {
	sig := f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			sig += ","
		}
		sig += p.Type.String()
	}
	sig += ")"
	return sig
}

// ModifierDecl is a `modifier m(...) { ... _; ... }` declaration.
type ModifierDecl struct {
	Pos      Position
	Name     string
	Contract *ContractDecl
	Params   []*VariableDecl
	Body     *Block
}

// ModifierInvocation is one entry in a function's modifier list. It may
// name a modifier declared on the contract or an ancestor, or (in the case
// of a constructor) name a base contract whose constructor should run with
// the given arguments - those are filtered out during modifier discovery
// (spec.md §4.9).
type ModifierInvocation struct {
	Pos  Position
	Name string
	Args []Expression
	// Resolved is filled in by front-end resolution: either a *ModifierDecl
	// or a *ContractDecl (for a base-constructor pseudo-modifier).
	Resolved interface{}
}

// IsConstructorCall reports whether this invocation names a base
// contract's constructor rather than a real modifier.
func (m *ModifierInvocation) IsConstructorCall() bool {
	_, ok := m.Resolved.(*ContractDecl)
	return ok
}

// ResolvedModifier returns the modifier declaration this invocation names,
// or nil if it is a constructor-call pseudo-modifier.
func (m *ModifierInvocation) ResolvedModifier() *ModifierDecl {
	d, _ := m.Resolved.(*ModifierDecl)
	return d
}
