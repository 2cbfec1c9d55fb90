package inherit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

func fn(name string, c *srcast.ContractDecl) *srcast.FunctionDecl {
	return &srcast.FunctionDecl{Name: name, Contract: c}
}

func TestLinearizeDiamond(t *testing.T) {
	// O is the common root of A and B, both of which D inherits from, in
	// that order - the textbook C3 diamond example.
	o := &srcast.ContractDecl{Name: "O"}
	a := &srcast.ContractDecl{Name: "A", Bases: []*srcast.ContractDecl{o}}
	b := &srcast.ContractDecl{Name: "B", Bases: []*srcast.ContractDecl{o}}
	d := &srcast.ContractDecl{Name: "D", Bases: []*srcast.ContractDecl{a, b}}

	f, err := Flatten([]*srcast.ContractDecl{o, a, b, d})
	require.NoError(t, err)

	lin := f.Get(d).Linearization
	names := make([]string, len(lin))
	for i, c := range lin {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"D", "A", "B", "O"}, names)
}

func TestOverrideHidesBase(t *testing.T) {
	base := &srcast.ContractDecl{Name: "Base"}
	baseFn := fn("greet", base)
	base.Funcs = []*srcast.FunctionDecl{baseFn}

	derived := &srcast.ContractDecl{Name: "Derived", Bases: []*srcast.ContractDecl{base}}
	derivedFn := fn("greet", derived)
	derivedFn.Override = true
	derived.Funcs = []*srcast.FunctionDecl{derivedFn}

	f, err := Flatten([]*srcast.ContractDecl{base, derived})
	require.NoError(t, err)

	resolved := f.Get(derived).Functions[derivedFn.Signature()]
	assert.Same(t, derivedFn, resolved)
}

func TestStateFlattenedBaseBeforeDerived(t *testing.T) {
	base := &srcast.ContractDecl{Name: "Base"}
	base.State = []*srcast.VariableDecl{{Name: "owner"}}

	derived := &srcast.ContractDecl{Name: "Derived", Bases: []*srcast.ContractDecl{base}}
	derived.State = []*srcast.VariableDecl{{Name: "balance"}}

	f, err := Flatten([]*srcast.ContractDecl{base, derived})
	require.NoError(t, err)

	state := f.Get(derived).State
	require.Len(t, state, 2)
	assert.Equal(t, "owner", state[0].Name)
	assert.Equal(t, "balance", state[1].Name)
}

func TestSuperChainWalksMostToLeastDerived(t *testing.T) {
	root := &srcast.ContractDecl{Name: "Root"}
	rootFn := fn("greet", root)
	root.Funcs = []*srcast.FunctionDecl{rootFn}

	mid := &srcast.ContractDecl{Name: "Mid", Bases: []*srcast.ContractDecl{root}}
	midFn := fn("greet", mid)
	mid.Funcs = []*srcast.FunctionDecl{midFn}

	leaf := &srcast.ContractDecl{Name: "Leaf", Bases: []*srcast.ContractDecl{mid}}
	leafFn := fn("greet", leaf)
	leaf.Funcs = []*srcast.FunctionDecl{leafFn}

	f, err := Flatten([]*srcast.ContractDecl{root, mid, leaf})
	require.NoError(t, err)

	chain := f.SuperChain(leafFn)
	require.Len(t, chain, 2)
	assert.Same(t, midFn, chain[0])
	assert.Same(t, rootFn, chain[1])
}

func TestInconsistentBaseOrderIsFatal(t *testing.T) {
	x := &srcast.ContractDecl{Name: "X"}
	y := &srcast.ContractDecl{Name: "Y"}
	a := &srcast.ContractDecl{Name: "A", Bases: []*srcast.ContractDecl{x, y}}
	b := &srcast.ContractDecl{Name: "B", Bases: []*srcast.ContractDecl{y, x}}
	bad := &srcast.ContractDecl{Name: "Bad", Bases: []*srcast.ContractDecl{a, b}}

	_, err := Flatten([]*srcast.ContractDecl{x, y, a, b, bad})
	require.Error(t, err)
}
