// Package convert implements C8, the Expression Converter, and C9, the
// Block Converter (spec.md §4.8/§4.9). Ported from
// original_source/.../translation/Expression.cpp and
// original_source/.../model/Block.h, generalized from Solidity's AST shape
// to this package's srcast shape.
package convert

import (
	"fmt"
	"hash/fnv"

	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/inherit"
	"github.com/martin-neuhaeusser/smartace/internal/names"
	"github.com/martin-neuhaeusser/smartace/internal/scope"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/target"
	"github.com/martin-neuhaeusser/smartace/internal/types"
)

// Converter carries the read-only analyzer tables and the live scope stack
// for a single expression/block walk (spec.md §9: "an explicit context
// record threaded through every call", replacing the source's mutable
// visitor member fields m_find_ref/m_lval/m_last_assignment/m_subexpr with
// explicit parameters and return values -- more idiomatic in Go, and just
// as deterministic).
type Converter struct {
	Types *types.Analyzer
	Scope *scope.Resolver
	Flat  *inherit.Flattener
}

// New builds a converter over the given read-only analyzer tables. Scope
// starts with its top-level frame already pushed.
func New(t *types.Analyzer, f *inherit.Flattener) *Converter {
	return &Converter{Types: t, Scope: scope.New(), Flat: f}
}

// Convert lowers a single expression. findRef requests the expression's
// address rather than its value (used when building a map call's base
// pointer, or an external call's receiver); lval marks the l-value side of
// an assignment (storage-qualified target, not yet unwrapped).
func (c *Converter) Convert(e srcast.Expression, findRef, lval bool) (target.CExpr, error) {
	switch n := e.(type) {
	case *srcast.Literal:
		return c.convertLiteral(n)
	case *srcast.Identifier:
		return c.convertIdentifier(n, findRef, lval)
	case *srcast.MemberAccess:
		return c.convertMemberAccess(n, findRef)
	case *srcast.IndexAccess:
		return c.convertIndexAccess(n, findRef, lval)
	case *srcast.Assignment:
		return c.convertAssignment(n)
	case *srcast.TupleExpression:
		return c.convertTuple(n)
	case *srcast.UnaryOperation:
		return c.convertUnary(n)
	case *srcast.BinaryOperation:
		return c.convertBinary(n)
	case *srcast.Conditional:
		cond, err := c.Convert(n.Cond, false, false)
		if err != nil {
			return nil, err
		}
		t1, err := c.Convert(n.True, false, false)
		if err != nil {
			return nil, err
		}
		f1, err := c.Convert(n.False, false, false)
		if err != nil {
			return nil, err
		}
		return &target.CTernary{Cond: cond, True: t1, False: f1}, nil
	case *srcast.FunctionCall:
		return c.convertCall(n)
	case *srcast.TypeConversionExpr:
		return c.convertCast(n)
	case *srcast.StructConstructorCallExpr:
		return c.convertStructCtor(n)
	default:
		return nil, diag.Unsupported(srcast.Position{}, fmt.Sprintf("expression category %T", e))
	}
}

// wrap produces the full wrapped-struct value for a raw scalar (spec.md
// §4.8's CFuncCallBuilder::push wrapping behavior): every argument slot
// whose static type is a WrappedScalar/Address must carry a fresh
// `Init_<T>(raw)` call, never the bare raw value.
func (c *Converter) wrap(t srcast.Type, raw target.CExpr) (target.CExpr, error) {
	if !c.Types.IsWrappedType(t) {
		return raw, nil
	}
	name, err := c.Types.GetName(t)
	if err != nil {
		return nil, err
	}
	return &target.CCall{Callee: "Init_" + name, Args: []target.CExpr{raw}}, nil
}

// unwrapIfWrapped appends `.v` to a freshly produced wrapped-type
// subexpression, matching every Identifier/MemberAccess/IndexAccess visit
// in Expression.cpp which auto-unwraps unless find_ref is active.
func (c *Converter) unwrapIfWrapped(t srcast.Type, findRef bool, e target.CExpr) target.CExpr {
	if findRef {
		return &target.CAddr{Inner: e}
	}
	if c.Types.IsWrappedType(t) {
		return &target.CMember{Base: e, Field: "v"}
	}
	return e
}

func (c *Converter) convertLiteral(n *srcast.Literal) (target.CExpr, error) {
	switch n.Kind {
	case srcast.LiteralBool:
		if n.BoolValue {
			return target.CLiteral("1"), nil
		}
		return target.CLiteral("0"), nil
	case srcast.LiteralNumber:
		return target.CLiteral(fmt.Sprintf("%d", n.IntValue*n.Denom.Multiplier())), nil
	case srcast.LiteralString:
		h := fnv.New64a()
		_, _ = h.Write([]byte(n.StrValue))
		return target.CLiteral(fmt.Sprintf("%d", h.Sum64())), nil
	default:
		return nil, diag.Unsupported(n.Pos, "literal of unsupported token kind")
	}
}

func (c *Converter) convertIdentifier(n *srcast.Identifier, findRef, lval bool) (target.CExpr, error) {
	if n.Decl == nil {
		return nil, diag.Invariant(n.Pos, "identifier references no declaration: "+n.Name)
	}
	rewritten, ok := c.Scope.ResolveIdentifier(n.Name)
	if !ok {
		// Unresolved in any open lexical scope: falls through to a
		// contract-state lookup via self (spec.md §4.7).
		return c.resolveStateField(n, findRef, lval)
	}
	ident := target.CExpr(target.CIdent(rewritten))
	if findRef {
		return &target.CAddr{Inner: ident}, nil
	}
	if lval {
		return ident, nil
	}
	if c.Types.IsWrappedType(n.Annotation().Type) {
		return &target.CMember{Base: ident, Field: "v"}, nil
	}
	return ident, nil
}

func (c *Converter) resolveStateField(n *srcast.Identifier, findRef, lval bool) (target.CExpr, error) {
	field := names.Join("user", n.Name)
	member := &target.CMember{Base: target.CIdent("self"), Field: field, Arrow: true}
	if findRef {
		return &target.CAddr{Inner: member}, nil
	}
	if lval {
		return member, nil
	}
	if c.Types.IsWrappedType(n.Annotation().Type) {
		return &target.CMember{Base: member, Field: "v"}, nil
	}
	return member, nil
}

func (c *Converter) convertMemberAccess(n *srcast.MemberAccess, findRef bool) (target.CExpr, error) {
	baseType := n.Expr.Annotation().Type

	switch bt := baseType.(type) {
	case *srcast.AddressType:
		if n.MemberName != "balance" {
			return nil, diag.Unsupported(n.Pos, "address member ."+n.MemberName)
		}
		base, err := c.Convert(n.Expr, false, false)
		if err != nil {
			return nil, err
		}
		member := &target.CMember{Base: base, Field: "model_balance", Arrow: true}
		return c.unwrapIfWrapped(n.Annotation().Type, findRef, member), nil

	case *srcast.ArrayType, *srcast.StringLiteralType, *srcast.FixedBytesType:
		return nil, diag.Unsupported(n.Pos, "array/byte-array member ."+n.MemberName)

	case *srcast.StructDeclType, *srcast.ContractDeclType:
		base, err := c.Convert(n.Expr, false, false)
		if err != nil {
			return nil, err
		}
		member := &target.CMember{Base: base, Field: names.Join("user", n.MemberName), Arrow: c.isPointerExpr(n.Expr)}
		return c.unwrapIfWrapped(n.Annotation().Type, findRef, member), nil

	case *srcast.MagicType:
		field, err := magicField(bt.Kind, n.MemberName)
		if err != nil {
			return nil, diag.Wrap(err, n.Pos.String())
		}
		member := &target.CMember{Base: target.CIdent("state"), Field: field, Arrow: false}
		return c.unwrapIfWrapped(n.Annotation().Type, findRef, member), nil

	default:
		return nil, diag.Unsupported(n.Pos, fmt.Sprintf("member access on %T", baseType))
	}
}

func magicField(kind srcast.MagicKind, member string) (string, error) {
	switch kind {
	case srcast.MagicMessage:
		switch member {
		case "sender":
			return "model_sender", nil
		case "value":
			return "model_value", nil
		}
	case srcast.MagicBlock:
		switch member {
		case "number":
			return "model_blocknum", nil
		case "timestamp":
			return "model_timestamp", nil
		}
	case srcast.MagicTransaction:
		switch member {
		case "origin":
			return "model_origin", nil
		}
	}
	return "", diag.Unsupported(srcast.Position{}, "magic member ."+member)
}

// isPointerExpr reports whether the target representation of a struct/
// contract-typed sub-expression is already a pointer, so MemberAccess knows
// whether to emit `.` or `->`.
func (c *Converter) isPointerExpr(e srcast.Expression) bool {
	if id, ok := e.(*srcast.Identifier); ok {
		return c.Types.IsPointer(id)
	}
	// Every non-identifier expression (a Read_<M> result, a call, ...) is
	// treated as a value.
	return false
}

// mapBasePointer builds the pointer argument a map helper call's first
// parameter needs (spec.md §4.8: "Index access on a map" pushes the base
// with find_ref=true). This is deliberately not routed through the
// generic Convert(base, findRef=true, ...) path: a state-variable map
// field needs the single-parenthesized `self->user_m` shape (CMapFieldRef,
// testable property S2), whereas generic MemberAccess always double-
// parenthesizes its base (CMember, testable property S6) -- the two are
// genuinely distinct call sites in the original, not the same code path
// wearing different flags.
func (c *Converter) mapBasePointer(e srcast.Expression) (target.CExpr, error) {
	switch n := e.(type) {
	case *srcast.Identifier:
		if n.Decl == nil {
			return nil, diag.Invariant(n.Pos, "identifier references no declaration: "+n.Name)
		}
		if rewritten, ok := c.Scope.ResolveIdentifier(n.Name); ok {
			if c.Types.IsPointer(n) {
				return target.CIdent(rewritten), nil
			}
			return &target.CAddr{Inner: target.CIdent(rewritten)}, nil
		}
		field := names.Join("user", n.Name)
		return &target.CAddr{Inner: &target.CMapFieldRef{Receiver: target.CIdent("self"), Field: field}}, nil
	case *srcast.MemberAccess:
		base, err := c.Convert(n.Expr, false, false)
		if err != nil {
			return nil, err
		}
		field := names.Join("user", n.MemberName)
		return &target.CAddr{Inner: &target.CMapFieldRef{Receiver: base, Field: field}}, nil
	default:
		return nil, diag.Invariant(srcast.Position{}, "map base expression of unsupported shape")
	}
}

// resolveMapAccess walks a chain of nested IndexAccess nodes that all index
// into the same flattened map declaration (spec.md §4.1: a MappingType is
// already flattened, so a depth-d map like `m[10][10]` arrives as d nested
// IndexAccess nodes sharing one underlying MappingType, one key consumed
// per level) and returns the map's translated name plus the full
// `(base, key0, key1, ...)` argument list a Read_/Write_/Ref_ call needs.
func (c *Converter) resolveMapAccess(n *srcast.IndexAccess) (mapName string, args []target.CExpr, err error) {
	chain := []*srcast.IndexAccess{n}
	cur := n
	for {
		base, ok := cur.Base.(*srcast.IndexAccess)
		if !ok {
			break
		}
		chain = append(chain, base)
		cur = base
	}
	root := chain[len(chain)-1]
	mapType, ok := root.Base.Annotation().Type.(*srcast.MappingType)
	if !ok {
		return "", nil, diag.Invariant(n.Pos, "index access on a non-mapping")
	}
	if len(chain) != len(mapType.KeyTypes) {
		return "", nil, diag.Invariant(n.Pos, "map index count does not match its key arity")
	}
	mapName, err = c.Types.GetName(mapType)
	if err != nil {
		return "", nil, err
	}
	basePtr, err := c.mapBasePointer(root.Base)
	if err != nil {
		return "", nil, err
	}
	args = make([]target.CExpr, 0, len(chain)+1)
	args = append(args, basePtr)
	for i := len(chain) - 1; i >= 0; i-- {
		keyIdx := len(chain) - 1 - i
		key, kerr := c.Convert(chain[i].Index, false, false)
		if kerr != nil {
			return "", nil, kerr
		}
		key, kerr = c.wrap(mapType.KeyTypes[keyIdx], key)
		if kerr != nil {
			return "", nil, kerr
		}
		args = append(args, key)
	}
	return mapName, args, nil
}

func (c *Converter) convertIndexAccess(n *srcast.IndexAccess, findRef, lval bool) (target.CExpr, error) {
	mapName, args, err := c.resolveMapAccess(n)
	if err != nil {
		return nil, err
	}

	var call target.CExpr
	switch {
	case findRef:
		call = &target.CCall{Callee: "Ref_" + mapName, Args: args}
	case lval:
		call = &target.CDeref{Inner: &target.CCall{Callee: "Ref_" + mapName, Args: args}}
	default:
		call = &target.CCall{Callee: "Read_" + mapName, Args: args}
	}

	if c.Types.IsWrappedType(n.Annotation().Type) && !lval && !findRef {
		return &target.CMember{Base: call, Field: "v"}, nil
	}
	return call, nil
}

func (c *Converter) convertTuple(n *srcast.TupleExpression) (target.CExpr, error) {
	if n.InlineArray {
		return nil, diag.Unsupported(n.Pos, "inline array literal")
	}
	if len(n.Components) != 1 {
		return nil, diag.Unsupported(n.Pos, "multi-value tuple expression")
	}
	return c.Convert(n.Components[0], false, false)
}

func (c *Converter) convertUnary(n *srcast.UnaryOperation) (target.CExpr, error) {
	if n.IsDelete {
		return nil, diag.Unsupported(n.Pos, "delete")
	}
	operand, err := c.Convert(n.Sub, false, false)
	if err != nil {
		return nil, err
	}
	return &target.CUnary{Op: n.Op, Operand: operand, Prefix: n.IsPrefix}, nil
}

func (c *Converter) convertBinary(n *srcast.BinaryOperation) (target.CExpr, error) {
	switch n.Op {
	case "**", ">>>":
		return nil, diag.Unsupported(n.Pos, "operator "+n.Op)
	case ">>":
		if et, ok := n.Left.Annotation().Type.(*srcast.ElementaryType); ok && et.Signed {
			return nil, diag.Unsupported(n.Pos, "operator >> on a signed operand")
		}
	}
	left, err := c.Convert(n.Left, false, false)
	if err != nil {
		return nil, err
	}
	right, err := c.Convert(n.Right, false, false)
	if err != nil {
		return nil, err
	}
	return &target.CBinary{Op: n.Op, Left: left, Right: right}, nil
}

func (c *Converter) convertAssignment(n *srcast.Assignment) (target.CExpr, error) {
	var rhs target.CExpr
	var err error
	if n.Op == srcast.AssignSimple {
		rhs, err = c.Convert(n.Right, false, false)
	} else {
		left, lerr := c.Convert(n.Left, false, false)
		if lerr != nil {
			return nil, lerr
		}
		right, rerr := c.Convert(n.Right, false, false)
		if rerr != nil {
			return nil, rerr
		}
		rhs = &target.CBinary{Op: n.Op.BinaryOpFor(), Left: left, Right: right}
	}
	if err != nil {
		return nil, err
	}
	rhs, err = c.wrap(n.Left.Annotation().Type, rhs)
	if err != nil {
		return nil, err
	}

	if idx, ok := n.Left.(*srcast.IndexAccess); ok {
		mapName, args, err := c.resolveMapAccess(idx)
		if err != nil {
			return nil, err
		}
		args = append(args, rhs)
		return &target.CCall{Callee: "Write_" + mapName, Args: args}, nil
	}

	lhs, err := c.Convert(n.Left, false, true)
	if err != nil {
		return nil, err
	}
	return &target.CAssign{Op: "=", Left: lhs, Right: rhs}, nil
}
