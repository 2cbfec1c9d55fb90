package dependance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/martin-neuhaeusser/smartace/internal/inherit"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

func callTo(target *srcast.FunctionDecl) *srcast.ExpressionStatement {
	return &srcast.ExpressionStatement{Expr: &srcast.FunctionCall{Kind: srcast.FuncInternal, Target: target}}
}

func TestBuildExpandsCallROI(t *testing.T) {
	c := &srcast.ContractDecl{Name: "Wallet"}

	helper := &srcast.FunctionDecl{Name: "helper", Contract: c, Visibility: srcast.VisibilityPrivate,
		Body: &srcast.Block{}}
	entry := &srcast.FunctionDecl{Name: "entry", Contract: c, Visibility: srcast.VisibilityPublic,
		Body: &srcast.Block{Statements: []srcast.Statement{callTo(helper)}}}
	c.Funcs = []*srcast.FunctionDecl{helper, entry}

	flat, err := inherit.Flatten([]*srcast.ContractDecl{c})
	require.NoError(t, err)

	analyzer := &FullSource{Flat: flat}
	dep, err := Build([]*srcast.ContractDecl{c}, analyzer)
	require.NoError(t, err)

	assert.True(t, dep.IsDeployed(c))
	assert.ElementsMatch(t, []*srcast.FunctionDecl{entry}, dep.GetInterface(c))
	assert.Contains(t, dep.GetExecutedCode(), helper)
	assert.Contains(t, dep.GetExecutedCode(), entry)
	assert.Equal(t, []*srcast.FunctionDecl{helper}, dep.GetFunctionROI(entry))
}

func TestBuildRejectsEmptyInterface(t *testing.T) {
	c := &srcast.ContractDecl{Name: "Empty"}
	flat, err := inherit.Flatten([]*srcast.ContractDecl{c})
	require.NoError(t, err)

	_, err = Build([]*srcast.ContractDecl{c}, &FullSource{Flat: flat})
	require.Error(t, err)
}

func TestBuildCollectsMapROI(t *testing.T) {
	mapType := &srcast.MappingType{KeyTypes: []srcast.Type{&srcast.AddressType{}}, Value: &srcast.ElementaryType{Bits: 256}}
	balances := &srcast.VariableDecl{Name: "balances", Type: mapType, IsStateVariable: true}

	c := &srcast.ContractDecl{Name: "Token"}
	c.State = []*srcast.VariableDecl{balances}

	idx := &srcast.IndexAccess{
		Base:  &srcast.Identifier{Name: "balances", Decl: balances},
		Index: &srcast.Identifier{Name: "who"},
	}
	entry := &srcast.FunctionDecl{Name: "balanceOf", Contract: c, Visibility: srcast.VisibilityExternal,
		Body: &srcast.Block{Statements: []srcast.Statement{&srcast.ReturnStatement{Value: idx}}}}
	c.Funcs = []*srcast.FunctionDecl{entry}

	flat, err := inherit.Flatten([]*srcast.ContractDecl{c})
	require.NoError(t, err)

	dep, err := Build([]*srcast.ContractDecl{c}, &FullSource{Flat: flat})
	require.NoError(t, err)

	assert.Equal(t, []*srcast.VariableDecl{balances}, dep.GetMapROI(entry))
}
