package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-neuhaeusser/smartace/internal/emit"
	"github.com/martin-neuhaeusser/smartace/internal/pipeline"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

func oneContractFixture() *srcast.ContractDecl {
	balance := &srcast.VariableDecl{Name: "balance", Type: &srcast.ElementaryType{Bits: 256}, IsStateVariable: true}
	contractA := &srcast.ContractDecl{Name: "A", State: []*srcast.VariableDecl{balance}}
	ping := &srcast.FunctionDecl{
		Name: "ping", Contract: contractA, Visibility: srcast.VisibilityPublic,
		Body: &srcast.Block{},
	}
	contractA.Funcs = []*srcast.FunctionDecl{ping}
	return contractA
}

func TestRunFullSourceModeEmitsDefinitions(t *testing.T) {
	contractA := oneContractFixture()

	out, err := pipeline.Run([]*srcast.ContractDecl{contractA}, nil, emit.Config{})
	require.NoError(t, err)

	assert.Contains(t, out, "struct A {")
	assert.Contains(t, out, "Method_A_Funcping(")
	assert.Contains(t, out, "run_model")
}

func TestRunModelDrivenModeRestrictsToNamedRoots(t *testing.T) {
	contractA := oneContractFixture()

	out, err := pipeline.Run([]*srcast.ContractDecl{contractA}, []string{"A"}, emit.Config{ForwardDeclare: true})
	require.NoError(t, err)

	assert.Contains(t, out, "struct A;")
}

func TestRunRejectsUnknownModelName(t *testing.T) {
	contractA := oneContractFixture()

	_, err := pipeline.Run([]*srcast.ContractDecl{contractA}, []string{"Nope"}, emit.Config{})
	assert.Error(t, err)
}
