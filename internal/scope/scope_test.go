package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclareRewritesByRole(t *testing.T) {
	r := New()
	assert.Equal(t, "func_user_x", r.Declare("x", RoleParameter))
	assert.Equal(t, "func_user_acct", r.Declare("acct", RoleLocalStorage))
	assert.Equal(t, "func_user_n", r.Declare("n", RoleLocalValue))
	assert.Equal(t, "user_balance", r.Declare("balance", RoleStructField))
	assert.Equal(t, "model_sender", r.Declare("sender", RoleBuiltinState))
}

func TestInnermostBindingShadowsOuter(t *testing.T) {
	r := New()
	r.Declare("x", RoleParameter)

	r.Push()
	r.Declare("x", RoleLocalValue)

	name, ok := r.ResolveIdentifier("x")
	assert.True(t, ok)
	assert.Equal(t, "func_user_x", name)

	r.Pop()
	name, ok = r.ResolveIdentifier("x")
	assert.True(t, ok)
	assert.Equal(t, "func_user_x", name)
}

func TestUnresolvedNameFallsThrough(t *testing.T) {
	r := New()
	_, ok := r.ResolveIdentifier("totalSupply")
	assert.False(t, ok)
}
