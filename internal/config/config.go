// Package config implements the four configuration options spec.md §6
// enumerates (forward_declare, use_lockstep_time, invariant_mode, model)
// plus the output path, loaded either from a YAML scenario file
// (gopkg.in/yaml.v3) or from the small inline scenario language in
// internal/config/scenario. Grounded on the teacher's promotion of YAML
// from a transitive test dependency to a direct one for its own scenario
// fixtures, per SPEC_FULL.md §10.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/emit"
)

// InvariantMode is the YAML-facing spelling of emit.InvariantMode (spec.md
// §6: "invariant_mode ∈ {none, existential, universal}").
type InvariantMode string

const (
	InvariantNone        InvariantMode = "none"
	InvariantExistential InvariantMode = "existential"
	InvariantUniversal   InvariantMode = "universal"
)

func (m InvariantMode) resolve() (emit.InvariantMode, error) {
	switch m {
	case "", InvariantNone:
		return emit.InvariantNone, nil
	case InvariantExistential:
		return emit.InvariantExistential, nil
	case InvariantUniversal:
		return emit.InvariantUniversal, nil
	default:
		return 0, diag.Modelling("unknown invariant_mode: " + string(m))
	}
}

// Scenario is the full configuration surface a translation run needs:
// spec.md §6's four options plus the output path this exercise's CLI
// needs to know where to write the emitted stream.
type Scenario struct {
	ForwardDeclare  bool          `yaml:"forward_declare"`
	UseLockstepTime bool          `yaml:"use_lockstep_time"`
	InvariantMode   InvariantMode `yaml:"invariant_mode"`
	Model           []string      `yaml:"model"`
	Output          string        `yaml:"output"`
}

// ToEmitConfig resolves the YAML-facing scenario into the emit.Config the
// printer actually consumes.
func (s *Scenario) ToEmitConfig() (emit.Config, error) {
	mode, err := s.InvariantMode.resolve()
	if err != nil {
		return emit.Config{}, err
	}
	return emit.Config{
		ForwardDeclare:  s.ForwardDeclare,
		UseLockstepTime: s.UseLockstepTime,
		InvariantMode:   mode,
	}, nil
}

// Load reads and parses a YAML scenario file from path.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario file")
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(err, "parsing scenario file")
	}
	return &s, nil
}
