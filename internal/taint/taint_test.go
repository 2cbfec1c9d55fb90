package taint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

func TestTaintPropagatesThroughAssignment(t *testing.T) {
	input := &srcast.VariableDecl{Name: "input"}
	x := &srcast.VariableDecl{Name: "x"}
	y := &srcast.VariableDecl{Name: "y"}

	// x = input; y = x;
	fn := &srcast.FunctionDecl{Body: &srcast.Block{Statements: []srcast.Statement{
		&srcast.ExpressionStatement{Expr: &srcast.Assignment{
			Left:  &srcast.Identifier{Name: "x", Decl: x},
			Right: &srcast.Identifier{Name: "input", Decl: input},
		}},
		&srcast.ExpressionStatement{Expr: &srcast.Assignment{
			Left:  &srcast.Identifier{Name: "y", Decl: y},
			Right: &srcast.Identifier{Name: "x", Decl: x},
		}},
	}}}

	a := New(1)
	a.Taint(input, 0)
	require.NoError(t, a.Run(fn))

	assert.True(t, a.TaintFor(x)[0])
	assert.True(t, a.TaintFor(y)[0])
}

func TestUntaintedVariableStaysClean(t *testing.T) {
	clean := &srcast.VariableDecl{Name: "clean"}
	out := &srcast.VariableDecl{Name: "out"}
	fn := &srcast.FunctionDecl{Body: &srcast.Block{Statements: []srcast.Statement{
		&srcast.ExpressionStatement{Expr: &srcast.Assignment{
			Left:  &srcast.Identifier{Name: "out", Decl: out},
			Right: &srcast.Identifier{Name: "clean", Decl: clean},
		}},
	}}}

	a := New(1)
	require.NoError(t, a.Run(fn))
	assert.False(t, a.TaintFor(out)[0])
}

func TestDestinationThroughMemberAccess(t *testing.T) {
	wallet := &srcast.VariableDecl{Name: "wallet"}
	lhs := &srcast.MemberAccess{Expr: &srcast.Identifier{Name: "wallet", Decl: wallet}, MemberName: "balance"}

	dest, err := Destination(lhs)
	require.NoError(t, err)
	assert.Same(t, wallet, dest)
}

func TestDestinationAmbiguityIsFatal(t *testing.T) {
	a := &srcast.VariableDecl{Name: "a"}
	b := &srcast.VariableDecl{Name: "b"}
	lhs := &srcast.TupleExpression{Components: []srcast.Expression{
		&srcast.Identifier{Name: "a", Decl: a},
		&srcast.Identifier{Name: "b", Decl: b},
	}}

	_, err := Destination(lhs)
	require.Error(t, err)
}
