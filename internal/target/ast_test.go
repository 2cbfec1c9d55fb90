package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgumentRegistrationShape(t *testing.T) {
	block := &CBlock{Stmts: []CStmt{
		&CExprStmt{Expr: &CMember{Base: CIdent("func_user_a"), Field: "v"}},
		&CExprStmt{Expr: &CMember{Base: CIdent("func_user_b"), Field: "v"}},
	}}
	assert.Equal(t, "{(func_user_a).v;(func_user_b).v;}", block.String())
}

func TestReadOnlyMapAccessShape(t *testing.T) {
	base := &CAddr{Inner: &CMapFieldRef{Receiver: CIdent("self"), Field: "user_m"}}
	read := &CCall{Callee: "Read_Map_2", Args: []CExpr{
		base,
		&CCall{Callee: "Init_sol_int256_t", Args: []CExpr{CLiteral("10")}},
		&CCall{Callee: "Init_sol_int256_t", Args: []CExpr{CLiteral("10")}},
	}}
	expr := &CMember{Base: read, Field: "v"}
	stmt := &CExprStmt{Expr: expr}

	assert.Equal(t,
		"(Read_Map_2(&(self->user_m),Init_sol_int256_t(10),Init_sol_int256_t(10))).v;",
		stmt.String())
}

func TestCompoundAssignmentOnMapShape(t *testing.T) {
	base := &CAddr{Inner: &CMapFieldRef{Receiver: CIdent("self"), Field: "user_a"}}
	key := &CCall{Callee: "Init_sol_int256_t", Args: []CExpr{CLiteral("1")}}
	read := &CMember{Base: &CCall{Callee: "Read_Map_2", Args: []CExpr{base, key}}, Field: "v"}
	sum := &CBinary{Op: "+", Left: read, Right: CLiteral("2")}
	write := &CCall{Callee: "Write_Map_2", Args: []CExpr{
		base, key, &CCall{Callee: "Init_sol_int256_t", Args: []CExpr{sum}},
	}}

	assert.Equal(t,
		"Write_Map_2(&(self->user_a),Init_sol_int256_t(1),Init_sol_int256_t(((Read_Map_2(&(self->user_a),Init_sol_int256_t(1))).v)+(2)));",
		(&CExprStmt{Expr: write}).String())
}

func TestPayablePreambleShape(t *testing.T) {
	cond := &CBinary{
		Op:   "==",
		Left: &CMember{Base: CIdent("paid"), Field: "v"},
		Right: CLiteral("1"),
	}
	lhs := &CMember{Base: &CMember{Base: CIdent("self"), Field: "model_balance", Arrow: true}, Field: "v"}
	rhs := &CMember{Base: CIdent("value"), Field: "v"}
	assign := &CAssign{Op: "+=", Left: lhs, Right: rhs}

	stmt := &CIf{Cond: cond, Then: &CExprStmt{Expr: assign}}

	assert.Equal(t,
		"if(((paid).v)==(1))(((self)->model_balance).v)+=((value).v);",
		stmt.String())
}

func TestTransferLoweringShape(t *testing.T) {
	balance := &CAddr{Inner: &CMember{Base: CIdent("self"), Field: "model_balance", Arrow: true}}
	addr := &CCall{Callee: "Init_sol_address_t", Args: []CExpr{&CMember{Base: CIdent("func_user_dst"), Field: "v"}}}
	amount := &CCall{Callee: "Init_sol_uint256_t", Args: []CExpr{CLiteral("5")}}
	pay := &CCall{Callee: "_pay", Args: []CExpr{balance, addr, amount}}

	assert.Equal(t,
		"_pay(&((self)->model_balance),Init_sol_address_t((func_user_dst).v),Init_sol_uint256_t(5));",
		(&CExprStmt{Expr: pay}).String())
}
