// Package harness provides the shared building blocks C12 needs but that
// are not themselves per-type printing logic: the six-field call-state
// record (spec.md §6 "Call-state field names") and the odometer-style
// key-space walk used to unroll a map's interference space into a finite
// list of cells (spec.md §4.12 step 5b).
//
// Grounded on original_source/.../harness/StateGenerator.cpp (declare/
// update/pay) and original_source/.../utils/KeyIterator.cpp (the odometer
// counter), per SPEC_FULL.md §12.
package harness

import "github.com/martin-neuhaeusser/smartace/internal/target"

// CallState field type names, fixed by spec.md §6's emitted vocabulary --
// unlike a contract's own state, these never vary with the source
// program, so they are named directly rather than looked up through
// internal/types.
const (
	addressType = "sol_address_t"
	uint256Type = "sol_uint256_t"
	boolType    = "sol_bool_t"
)

// CallStateFields lists the six call-state fields in the order
// SPEC_FULL.md §12 fixes them (sender, value, blocknum, timestamp, paid,
// origin).
func CallStateFields() []target.CField {
	return []target.CField{
		{Type: addressType, Name: "sender"},
		{Type: uint256Type, Name: "value"},
		{Type: uint256Type, Name: "blocknum"},
		{Type: uint256Type, Name: "timestamp"},
		{Type: boolType, Name: "paid"},
		{Type: addressType, Name: "origin"},
	}
}

// CallStateStructDef builds the fixed `struct CallState` definition every
// method function takes a pointer to.
func CallStateStructDef() *target.CStructDef {
	return &target.CStructDef{Name: "CallState", Fields: CallStateFields()}
}

func field(recv target.CExpr, name string) *target.CMember {
	return &target.CMember{Base: recv, Field: name, Arrow: true}
}

func wrappedField(recv target.CExpr, name string) *target.CMember {
	return &target.CMember{Base: field(recv, name), Field: "v"}
}

// DeclareCallState builds step 1: a local call-state record, plus (when
// lockstep is enabled) a non-deterministic `take_step` byte declared
// alongside it.
func DeclareCallState(lockstep bool) []target.CStmt {
	out := []target.CStmt{
		&target.CVarDecl{Type: "struct CallState", Name: "state"},
	}
	if lockstep {
		out = append(out, &target.CVarDecl{
			Type: "unsigned char",
			Name: "take_step",
			Init: &target.CCall{Callee: "nd_uint8_t", Args: []target.CExpr{target.CLiteral(`"take_step"`)}},
		})
	}
	return out
}

// UpdateCallState builds step 5c: the per-iteration advance of the global
// call-state (blocknum/timestamp monotone, value reset, a fresh sender
// drawn from the client range, origin untouched, paid pinned to 1).
// clientLo/clientHi name the symbolic bounds of the "client" sender range
// (spec.md §4.12 step 3's caller-reserved range) as already-built target
// expressions, e.g. integer literals or named constants.
func UpdateCallState(recv target.CExpr, lockstep bool, clientLo, clientHi target.CExpr) []target.CStmt {
	var out []target.CStmt

	advance := func(fieldName string) target.CStmt {
		dst := wrappedField(recv, fieldName)
		if lockstep {
			cond := &target.CBinary{Op: "!=", Left: target.CIdent("take_step"), Right: target.CLiteral("0")}
			inc := &target.CExprStmt{Expr: &target.CAssign{Op: "+=", Left: dst, Right: target.CLiteral("1")}}
			return &target.CIf{Cond: cond, Then: inc}
		}
		nd := &target.CCall{Callee: "nd_range", Args: []target.CExpr{
			target.CLiteral("0"), target.CLiteral("1000000"), target.CLiteral(`"` + fieldName + `"`),
		}}
		return &target.CExprStmt{Expr: &target.CAssign{Op: "+=", Left: dst, Right: nd}}
	}

	out = append(out, advance("blocknum"), advance("timestamp"))

	out = append(out, &target.CExprStmt{Expr: &target.CAssign{
		Op: "=", Left: wrappedField(recv, "value"), Right: target.CLiteral("0"),
	}})

	senderND := &target.CCall{Callee: "nd_range", Args: []target.CExpr{clientLo, clientHi, target.CLiteral(`"sender"`)}}
	out = append(out, &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: wrappedField(recv, "sender"), Right: senderND}})

	out = append(out, &target.CExprStmt{Expr: &target.CAssign{
		Op: "=", Left: wrappedField(recv, "paid"), Right: target.CLiteral("1"),
	}})

	return out
}

// Pay builds the balance-transfer call a payable dispatch case issues
// before invoking its target method (spec.md §4.12 step 5e's "calls
// pay() for payable methods"), wrapping the `_pay` primitive spec.md §6
// lists among the functions the verifier harness itself provides.
func Pay(balanceRef, dst, amount target.CExpr) target.CStmt {
	return &target.CExprStmt{Expr: &target.CCall{Callee: "_pay", Args: []target.CExpr{balanceRef, dst, amount}}}
}
