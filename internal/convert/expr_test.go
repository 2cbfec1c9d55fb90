package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-neuhaeusser/smartace/internal/convert"
	"github.com/martin-neuhaeusser/smartace/internal/scope"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/types"
)

func int256() *srcast.ElementaryType { return &srcast.ElementaryType{Bits: 256, Signed: true} }

func ident(name string, decl *srcast.VariableDecl, t srcast.Type) *srcast.Identifier {
	id := &srcast.Identifier{Name: name, Decl: decl}
	id.Annotation().Type = t
	return id
}

func numLit(v int64, t srcast.Type) *srcast.Literal {
	l := &srcast.Literal{Kind: srcast.LiteralNumber, IntValue: v}
	l.Annotation().Type = t
	return l
}

// TestArgumentRegistrationEndToEnd reproduces spec.md §8 testable property
// S1 (`function f(int a, int b) public { a; b; }`) through the real
// converter rather than a hand-built target-AST fragment.
func TestArgumentRegistrationEndToEnd(t *testing.T) {
	elem := int256()
	contractA := &srcast.ContractDecl{Name: "A"}
	aParam := &srcast.VariableDecl{Name: "a", Type: elem}
	bParam := &srcast.VariableDecl{Name: "b", Type: elem}
	fn := &srcast.FunctionDecl{
		Name:       "f",
		Contract:   contractA,
		Visibility: srcast.VisibilityPublic,
		Params:     []*srcast.VariableDecl{aParam, bParam},
		Body: &srcast.Block{Statements: []srcast.Statement{
			&srcast.ExpressionStatement{Expr: ident("a", aParam, elem)},
			&srcast.ExpressionStatement{Expr: ident("b", bParam, elem)},
		}},
	}
	contractA.Funcs = []*srcast.FunctionDecl{fn}

	ta := types.NewAnalyzer([]*srcast.ContractDecl{contractA})
	conv := convert.New(ta, nil)
	bc := convert.NewBlockConverter(conv)

	defs, err := bc.ConvertFunction(fn)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "{(func_user_a).v;(func_user_b).v;}", defs[0].Body.String())
}

// TestReadOnlyMapAccessEndToEnd reproduces spec.md §8 testable property S2
// exactly: a two-level nested map read (`m[10][10]` against
// `mapping(int=>mapping(int=>int)) m`) lowers to a single Read_<M> call over
// the flattened map with both keys, via the converter rather than a
// hand-built target-AST fragment.
func TestReadOnlyMapAccessEndToEnd(t *testing.T) {
	elem := int256()
	mapType := &srcast.MappingType{KeyTypes: []srcast.Type{elem, elem}, Value: elem}
	contractA := &srcast.ContractDecl{Name: "A"}
	mDecl := &srcast.VariableDecl{Name: "m", Type: mapType, IsStateVariable: true}
	contractA.State = []*srcast.VariableDecl{mDecl}

	ta := types.NewAnalyzer([]*srcast.ContractDecl{contractA})
	mapName, err := ta.GetName(mapType)
	require.NoError(t, err)

	inner := &srcast.IndexAccess{Base: ident("m", mDecl, mapType), Index: numLit(10, elem)}
	outer := &srcast.IndexAccess{Base: inner, Index: numLit(10, elem)}
	outer.Annotation().Type = elem

	conv := convert.New(ta, nil)
	out, err := conv.Convert(outer, false, false)
	require.NoError(t, err)

	want := "(Read_" + mapName + "(&(self->user_m),Init_sol_int256_t(10),Init_sol_int256_t(10))).v"
	assert.Equal(t, want, out.String())
}

// TestCompoundMapAssignmentEndToEnd exercises the map write + compound-op
// path (spec.md §8 testable property S3's shape).
func TestCompoundMapAssignmentEndToEnd(t *testing.T) {
	elem := int256()
	mapType := &srcast.MappingType{KeyTypes: []srcast.Type{elem}, Value: elem}
	contractA := &srcast.ContractDecl{Name: "A"}
	mDecl := &srcast.VariableDecl{Name: "a", Type: mapType, IsStateVariable: true}
	contractA.State = []*srcast.VariableDecl{mDecl}

	ta := types.NewAnalyzer([]*srcast.ContractDecl{contractA})
	mapName, err := ta.GetName(mapType)
	require.NoError(t, err)

	lhs := &srcast.IndexAccess{Base: ident("a", mDecl, mapType), Index: numLit(1, elem)}
	lhs.Annotation().Type = elem

	assign := &srcast.Assignment{Left: lhs, Op: srcast.AssignAdd, Right: numLit(2, elem)}
	assign.Annotation().Type = elem

	conv := convert.New(ta, nil)
	out, err := conv.Convert(assign, false, false)
	require.NoError(t, err)

	want := "Write_" + mapName + "(&(self->user_a),Init_sol_int256_t(1),Init_sol_int256_t(((Read_" +
		mapName + "(&(self->user_a),Init_sol_int256_t(1))).v)+(2)))"
	assert.Equal(t, want, out.String())
}

// TestPayableFunctionGetsBalancePreamble reproduces testable property S4's
// shape: a payable function's body is prefixed with the `paid` check that
// credits `value` onto the contract's running balance.
func TestPayableFunctionGetsBalancePreamble(t *testing.T) {
	contractA := &srcast.ContractDecl{Name: "A"}
	fn := &srcast.FunctionDecl{
		Name:       "deposit",
		Contract:   contractA,
		Visibility: srcast.VisibilityPublic,
		Payable:    true,
		Body:       &srcast.Block{},
	}
	contractA.Funcs = []*srcast.FunctionDecl{fn}

	ta := types.NewAnalyzer([]*srcast.ContractDecl{contractA})
	conv := convert.New(ta, nil)
	bc := convert.NewBlockConverter(conv)

	defs, err := bc.ConvertFunction(fn)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Len(t, defs[0].Body.Stmts, 1)
	assert.Equal(t,
		"if(((paid).v)==(1))(((self)->model_balance).v)+=((value).v);",
		defs[0].Body.Stmts[0].String())
}

// TestTransferLoweringEndToEnd reproduces testable property S6's shape: a
// `dst.transfer(5)` call lowers to a `_pay(...)` call against the running
// balance.
func TestTransferLoweringEndToEnd(t *testing.T) {
	addrType := &srcast.AddressType{Payable: true}
	contractA := &srcast.ContractDecl{Name: "A"}
	dstParam := &srcast.VariableDecl{Name: "dst", Type: addrType}

	call := &srcast.FunctionCall{
		Kind:     srcast.FuncTransfer,
		Receiver: ident("dst", dstParam, addrType),
		Args:     []srcast.Expression{numLit(5, &srcast.ElementaryType{Bits: 256, Signed: false})},
	}

	ta := types.NewAnalyzer([]*srcast.ContractDecl{contractA})
	conv := convert.New(ta, nil)
	conv.Scope.Declare("dst", scope.RoleParameter)

	out, err := conv.Convert(call, false, false)
	require.NoError(t, err)
	assert.Equal(t,
		"_pay(&((self)->model_balance),Init_sol_address_t((func_user_dst).v),Init_sol_uint256_t(5))",
		out.String())
}
