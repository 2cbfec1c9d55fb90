package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

func TestGetNameScalars(t *testing.T) {
	a := NewAnalyzer(nil)

	name, err := a.GetName(&srcast.ElementaryType{Bits: 256, Signed: true})
	require.NoError(t, err)
	assert.Equal(t, "sol_int256_t", name)

	name, err = a.GetName(&srcast.ElementaryType{Bits: 256, Signed: false})
	require.NoError(t, err)
	assert.Equal(t, "sol_uint256_t", name)

	name, err = a.GetName(&srcast.BoolType{})
	require.NoError(t, err)
	assert.Equal(t, "sol_bool_t", name)

	name, err = a.GetName(&srcast.AddressType{})
	require.NoError(t, err)
	assert.Equal(t, "sol_address_t", name)
}

func TestGetNameStructAndContract(t *testing.T) {
	c := &srcast.ContractDecl{Name: "Wallet"}
	s := &srcast.StructDecl{Name: "Entry", Contract: c}
	c.Structs = []*srcast.StructDecl{s}

	a := NewAnalyzer([]*srcast.ContractDecl{c})

	name, err := a.GetName(&srcast.ContractDeclType{Decl: c})
	require.NoError(t, err)
	assert.Equal(t, "Wallet", name)

	name, err = a.GetName(&srcast.StructDeclType{Decl: s})
	require.NoError(t, err)
	assert.Equal(t, "Wallet_Entry", name)
}

func TestMapIDsAreDenseAndStable(t *testing.T) {
	mapA := &srcast.MappingType{KeyTypes: []srcast.Type{&srcast.AddressType{}}, Value: &srcast.ElementaryType{Bits: 256, Signed: false}}
	mapB := &srcast.MappingType{KeyTypes: []srcast.Type{&srcast.AddressType{}}, Value: mapA}

	c := &srcast.ContractDecl{Name: "A"}
	c.State = []*srcast.VariableDecl{
		{Name: "m", Type: mapB, IsStateVariable: true},
	}

	a := NewAnalyzer([]*srcast.ContractDecl{c})

	nameA, err := a.GetName(mapA)
	require.NoError(t, err)
	nameB, err := a.GetName(mapB)
	require.NoError(t, err)

	assert.Equal(t, "Map_1", nameB)
	assert.Equal(t, "Map_2", nameA)
	assert.Len(t, a.AllMaps(), 2)
}

func TestIsPointer(t *testing.T) {
	a := NewAnalyzer(nil)

	storageVar := &srcast.VariableDecl{Name: "x", StorageQualified: true}
	valueVar := &srcast.VariableDecl{Name: "y", StorageQualified: false}

	storageID := &srcast.Identifier{Name: "x", Decl: storageVar}
	valueID := &srcast.Identifier{Name: "y", Decl: valueVar}

	assert.True(t, a.IsPointer(storageID))
	assert.False(t, a.IsPointer(valueID))
	assert.False(t, a.IsPointer(nil))
}
