// Package pipeline wires C1..C12 into the single end-to-end driver spec.md
// §2's data-flow table describes: AST ⇒ {C1, C2} ⇒ C3 ⇒ {C4, C6} ⇒ C5 ⇒
// C7 ⇒ {C8, C9} ⇒ {C10, C11, C12} ⇒ emitted source. C4 (call/map reach) and
// C7 (scope) are consumed internally by C5 and C8/C9 respectively, not
// driven directly here; C6 (taint) is built and tested standalone, same as
// the original source, per the Open Question decision recorded in
// DESIGN.md.
package pipeline

import (
	"strings"

	"github.com/martin-neuhaeusser/smartace/internal/alloc"
	"github.com/martin-neuhaeusser/smartace/internal/convert"
	"github.com/martin-neuhaeusser/smartace/internal/dependance"
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/emit"
	"github.com/martin-neuhaeusser/smartace/internal/inherit"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/types"
)

// Run lowers allContracts (the complete, already-annotated input program)
// to target source, restricted to the transitive closure of modelNames
// (spec.md §6: "model = ordered list of contract names -- roots for the
// model-driven build"). An empty modelNames falls back to the full-source
// build (every exported function of every contract), which the teacher's
// own test fixtures rely on for plain translation-correctness checks that
// aren't scenario-shaped.
func Run(allContracts []*srcast.ContractDecl, modelNames []string, cfg emit.Config) (string, error) {
	ta := types.NewAnalyzer(allContracts)

	flat, err := inherit.Flatten(allContracts)
	if err != nil {
		return "", diag.Wrap(err, "flattening inheritance")
	}

	var dep *dependance.Dependance
	if len(modelNames) == 0 {
		dep, err = dependance.Build(allContracts, &dependance.FullSource{Flat: flat})
	} else {
		graph := alloc.Build(allContracts)
		roots, rerr := resolveRoots(allContracts, modelNames)
		if rerr != nil {
			return "", rerr
		}
		deployed, cerr := graph.Closure(roots)
		if cerr != nil {
			return "", diag.Wrap(cerr, "computing allocation closure")
		}
		dep, err = dependance.Build(deployed, &dependance.ModelDriven{Flat: flat, Graph: graph})
	}
	if err != nil {
		return "", diag.Wrap(err, "building contract dependance")
	}

	conv := convert.New(ta, flat)
	printer := emit.New(ta, dep, conv, cfg)

	var out strings.Builder
	if err := printer.Print(&out); err != nil {
		return "", diag.Wrap(err, "printing target source")
	}
	return out.String(), nil
}

// resolveRoots looks up each named root contract by its source name,
// preserving modelNames' own order (spec.md §6: "ordered list").
func resolveRoots(all []*srcast.ContractDecl, modelNames []string) ([]*srcast.ContractDecl, error) {
	byName := make(map[string]*srcast.ContractDecl, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}

	roots := make([]*srcast.ContractDecl, 0, len(modelNames))
	for _, name := range modelNames {
		c, ok := byName[name]
		if !ok {
			return nil, diag.Modelling("model names unknown contract: " + name)
		}
		roots = append(roots, c)
	}
	return roots, nil
}
