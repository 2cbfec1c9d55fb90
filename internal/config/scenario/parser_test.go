package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-neuhaeusser/smartace/internal/config"
	"github.com/martin-neuhaeusser/smartace/internal/config/scenario"
)

func TestParseStringParsesEveryStatementKind(t *testing.T) {
	src := `
// a wallet-plus-proxy scenario
model Wallet, Proxy;
lockstep on;
invariant universal;
output result;
`
	s, err := scenario.ParseString("inline", src)
	require.NoError(t, err)

	assert.Equal(t, []string{"Wallet", "Proxy"}, s.Model)
	assert.True(t, s.UseLockstepTime)
	assert.Equal(t, config.InvariantUniversal, s.InvariantMode)
	assert.Equal(t, "result", s.Output)
}

func TestParseStringDefaultsOmittedStatements(t *testing.T) {
	s, err := scenario.ParseString("inline", `model Wallet;`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Wallet"}, s.Model)
	assert.False(t, s.UseLockstepTime)
	assert.Equal(t, config.InvariantMode(""), s.InvariantMode)
}

func TestParseStringRejectsMalformedInput(t *testing.T) {
	_, err := scenario.ParseString("inline", `model;`)
	assert.Error(t, err)
}
