package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-neuhaeusser/smartace/internal/config"
	"github.com/martin-neuhaeusser/smartace/internal/emit"
)

func TestLoadParsesYAMLScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	contents := "forward_declare: false\nuse_lockstep_time: true\ninvariant_mode: existential\nmodel: [Wallet, Proxy]\noutput: out.c\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	s, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, s.ForwardDeclare)
	assert.True(t, s.UseLockstepTime)
	assert.Equal(t, config.InvariantExistential, s.InvariantMode)
	assert.Equal(t, []string{"Wallet", "Proxy"}, s.Model)
	assert.Equal(t, "out.c", s.Output)
}

func TestToEmitConfigResolvesInvariantMode(t *testing.T) {
	s := &config.Scenario{InvariantMode: config.InvariantUniversal, UseLockstepTime: true}
	cfg, err := s.ToEmitConfig()
	require.NoError(t, err)

	assert.Equal(t, emit.InvariantUniversal, cfg.InvariantMode)
	assert.True(t, cfg.UseLockstepTime)
}

func TestToEmitConfigRejectsUnknownInvariantMode(t *testing.T) {
	s := &config.Scenario{InvariantMode: "bogus"}
	_, err := s.ToEmitConfig()
	assert.Error(t, err)
}
