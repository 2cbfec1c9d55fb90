package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

func newCreationCall(target *srcast.ContractDecl) *srcast.FunctionCall {
	return &srcast.FunctionCall{Kind: srcast.FuncCreation, TargetType: target}
}

func ctorCalling(name string, calls ...*srcast.FunctionCall) *srcast.ContractDecl {
	var stmts []srcast.Statement
	for _, call := range calls {
		stmts = append(stmts, &srcast.ExpressionStatement{Expr: call})
	}
	c := &srcast.ContractDecl{Name: name}
	c.Ctor = &srcast.FunctionDecl{
		Name:          name,
		Contract:      c,
		IsConstructor: true,
		Body:          &srcast.Block{Statements: stmts},
	}
	return c
}

func TestClosureFollowsConstructorCreations(t *testing.T) {
	leaf := &srcast.ContractDecl{Name: "Leaf"}
	root := ctorCalling("Root", newCreationCall(leaf))

	g := Build([]*srcast.ContractDecl{root, leaf})

	closure, err := g.Closure([]*srcast.ContractDecl{root})
	require.NoError(t, err)
	assert.Equal(t, []*srcast.ContractDecl{root, leaf}, closure)
	assert.Equal(t, []*srcast.ContractDecl{leaf}, g.Constructs(root))
	assert.Empty(t, g.Constructs(leaf))
}

func TestClosureDetectsCycle(t *testing.T) {
	a := &srcast.ContractDecl{Name: "A"}
	b := &srcast.ContractDecl{Name: "B"}
	a.Ctor = &srcast.FunctionDecl{Name: "A", Contract: a, IsConstructor: true,
		Body: &srcast.Block{Statements: []srcast.Statement{
			&srcast.ExpressionStatement{Expr: newCreationCall(b)},
		}}}
	b.Ctor = &srcast.FunctionDecl{Name: "B", Contract: b, IsConstructor: true,
		Body: &srcast.Block{Statements: []srcast.Statement{
			&srcast.ExpressionStatement{Expr: newCreationCall(a)},
		}}}

	g := Build([]*srcast.ContractDecl{a, b})

	_, err := g.Closure([]*srcast.ContractDecl{a})
	require.Error(t, err)
}

func TestClosureHandlesDiamond(t *testing.T) {
	leaf := &srcast.ContractDecl{Name: "Leaf"}
	left := ctorCalling("Left", newCreationCall(leaf))
	right := ctorCalling("Right", newCreationCall(leaf))
	root := ctorCalling("Root", newCreationCall(left), newCreationCall(right))

	g := Build([]*srcast.ContractDecl{root, left, right, leaf})

	closure, err := g.Closure([]*srcast.ContractDecl{root})
	require.NoError(t, err)
	assert.Equal(t, []*srcast.ContractDecl{root, left, leaf, right}, closure)
}

func TestClosureWithoutConstructorIsJustTheRoot(t *testing.T) {
	solo := &srcast.ContractDecl{Name: "Solo"}
	g := Build([]*srcast.ContractDecl{solo})

	closure, err := g.Closure([]*srcast.ContractDecl{solo})
	require.NoError(t, err)
	assert.Equal(t, []*srcast.ContractDecl{solo}, closure)
}
