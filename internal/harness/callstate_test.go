package harness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/martin-neuhaeusser/smartace/internal/harness"
	"github.com/martin-neuhaeusser/smartace/internal/target"
)

func TestCallStateStructDefHasSixFields(t *testing.T) {
	def := harness.CallStateStructDef()
	assert.Equal(t, "CallState", def.Name)
	var names []string
	for _, f := range def.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"sender", "value", "blocknum", "timestamp", "paid", "origin"}, names)
}

func TestDeclareCallStateOmitsTakeStepWithoutLockstep(t *testing.T) {
	stmts := harness.DeclareCallState(false)
	assert.Len(t, stmts, 1)
}

func TestDeclareCallStateAddsTakeStepUnderLockstep(t *testing.T) {
	stmts := harness.DeclareCallState(true)
	assert.Len(t, stmts, 2)
	assert.Contains(t, stmts[1].String(), "take_step")
}

func TestUpdateCallStateResetsValueAndPinsPaid(t *testing.T) {
	stmts := harness.UpdateCallState(&target.CAddr{Inner: target.CIdent("state")}, false, target.CLiteral("1"), target.CLiteral("10"))
	var joined string
	for _, s := range stmts {
		joined += s.String()
	}
	assert.Contains(t, joined, "value")
	assert.Contains(t, joined, "=(0)")
	assert.Contains(t, joined, "paid")
	assert.Contains(t, joined, "sender")
}

func TestPayBuildsUnderlyingPrimitiveCall(t *testing.T) {
	stmt := harness.Pay(target.CIdent("bal"), target.CIdent("dst"), target.CIdent("amt"))
	assert.Equal(t, "_pay(bal,dst,amt);", stmt.String())
}

