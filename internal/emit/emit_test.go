package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-neuhaeusser/smartace/internal/convert"
	"github.com/martin-neuhaeusser/smartace/internal/dependance"
	"github.com/martin-neuhaeusser/smartace/internal/emit"
	"github.com/martin-neuhaeusser/smartace/internal/inherit"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/types"
)

// buildFixture assembles a one-contract model: a uint256 state variable
// and a single exported, argument-free function, wired through the real
// C1/C3/C5/C8 components exactly as internal/pipeline eventually will.
func buildFixture(t *testing.T) (*types.Analyzer, *dependance.Dependance, *convert.Converter) {
	t.Helper()

	balance := &srcast.VariableDecl{Name: "balance", Type: &srcast.ElementaryType{Bits: 256}, IsStateVariable: true}
	contractA := &srcast.ContractDecl{Name: "A", State: []*srcast.VariableDecl{balance}}
	ping := &srcast.FunctionDecl{
		Name: "ping", Contract: contractA, Visibility: srcast.VisibilityPublic,
		Body: &srcast.Block{},
	}
	contractA.Funcs = []*srcast.FunctionDecl{ping}

	ta := types.NewAnalyzer([]*srcast.ContractDecl{contractA})

	flat, err := inherit.Flatten([]*srcast.ContractDecl{contractA})
	require.NoError(t, err)

	dep, err := dependance.Build([]*srcast.ContractDecl{contractA}, &dependance.FullSource{Flat: flat})
	require.NoError(t, err)

	conv := convert.New(ta, flat)
	return ta, dep, conv
}

func TestPrintDefinitionModeEmitsFullDefinitions(t *testing.T) {
	ta, dep, conv := buildFixture(t)
	printer := emit.New(ta, dep, conv, emit.Config{})

	var buf strings.Builder
	require.NoError(t, printer.Print(&buf))
	out := buf.String()

	assert.Contains(t, out, "struct CallState {")
	assert.Contains(t, out, "struct A {")
	assert.Contains(t, out, "Init_A(")
	assert.Contains(t, out, "ND_A(")
	assert.Contains(t, out, "Method_A_Funcping(")
	assert.Contains(t, out, "void run_model(")
	assert.Contains(t, out, "sol_continue()")
	assert.Contains(t, out, "sol_on_transaction()")
}

func TestPrintForwardDeclareModeEmitsOnlyPrototypes(t *testing.T) {
	ta, dep, conv := buildFixture(t)
	printer := emit.New(ta, dep, conv, emit.Config{ForwardDeclare: true})

	var buf strings.Builder
	require.NoError(t, printer.Print(&buf))
	out := buf.String()

	assert.Contains(t, out, "struct CallState;")
	assert.Contains(t, out, "struct A;")
	assert.NotContains(t, out, "struct A {")
	assert.Contains(t, out, "run_model();")
	assert.NotContains(t, out, "sol_continue()")
}

func TestPrintFailsOnEmptyModel(t *testing.T) {
	empty := &srcast.ContractDecl{Name: "Empty"}
	ta := types.NewAnalyzer([]*srcast.ContractDecl{empty})
	flat, err := inherit.Flatten([]*srcast.ContractDecl{empty})
	require.NoError(t, err)

	_, err = dependance.Build([]*srcast.ContractDecl{empty}, &dependance.FullSource{Flat: flat})
	require.Error(t, err)
	_ = ta
}
