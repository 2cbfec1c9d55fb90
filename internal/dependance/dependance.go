// Package dependance implements C5, Contract Dependance (spec.md §4.5): the
// second pass over the allocation graph that determines, for the set of
// contracts actually scheduled by the harness, exactly which functions and
// which mapping state variables must be emitted at all.
//
// Grounded on original_source/.../analysis/ContractDependance.h, kept
// method-for-method: get_model, get_executed_code, is_deployed,
// get_interface, get_superchain, get_function_roi, get_map_roi, and the
// DependancyAnalyzer strategy split into a full-source and a model-driven
// implementation.
package dependance

import (
	"github.com/martin-neuhaeusser/smartace/internal/alloc"
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/inherit"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

// Analyzer is the strategy DependancyAnalyzer abstracts over in the
// original: it knows how to compute a contract's public interface and a
// function's super-chain, without concerning itself with how the result is
// stitched into the rest of Dependance.
type Analyzer interface {
	InterfaceFor(c *srcast.ContractDecl) []*srcast.FunctionDecl
	SuperchainFor(fn *srcast.FunctionDecl) []*srcast.FunctionDecl
}

// FullSource is the FullSourceContractDependance equivalent: every exported
// function of every contract is part of the interface (used for codegen
// testing against an entire source tree, not a specific harness model).
type FullSource struct {
	Flat *inherit.Flattener
}

func (a *FullSource) InterfaceFor(c *srcast.ContractDecl) []*srcast.FunctionDecl {
	flat := a.Flat.Get(c)
	var out []*srcast.FunctionDecl
	for _, fn := range flat.Functions {
		if fn.Visibility.IsExported() {
			out = append(out, fn)
		}
	}
	return out
}

func (a *FullSource) SuperchainFor(fn *srcast.FunctionDecl) []*srcast.FunctionDecl {
	return a.Flat.SuperChain(fn)
}

// ModelDriven is the ModelDrivenContractDependance equivalent. Its
// InterfaceFor and SuperchainFor return the same results as FullSource's,
// and Graph is not consulted by either; the restriction to contracts
// reachable from the scheduled model comes from the model slice handed to
// Build (pipeline.Run passes the allocation graph's closure of the roots).
type ModelDriven struct {
	Flat  *inherit.Flattener
	Graph *alloc.Graph
}

func (a *ModelDriven) InterfaceFor(c *srcast.ContractDecl) []*srcast.FunctionDecl {
	flat := a.Flat.Get(c)
	var out []*srcast.FunctionDecl
	for _, fn := range flat.Functions {
		if fn.Visibility.IsExported() {
			out = append(out, fn)
		}
	}
	return out
}

func (a *ModelDriven) SuperchainFor(fn *srcast.FunctionDecl) []*srcast.FunctionDecl {
	return a.Flat.SuperChain(fn)
}

// Dependance is the fully expanded result: every contract in the model,
// every function reachable from any of their interfaces or super-chains,
// and, for each of those functions, the functions and mapping state
// variables its own body directly calls or indexes (its ROI; the ROIs of
// its callees are not merged in).
type Dependance struct {
	model      []*srcast.ContractDecl
	deployed   map[*srcast.ContractDecl]bool
	interfaces map[*srcast.ContractDecl][]*srcast.FunctionDecl
	executed   map[*srcast.FunctionDecl]bool
	superchain map[*srcast.FunctionDecl][]*srcast.FunctionDecl
	callROI    map[*srcast.FunctionDecl][]*srcast.FunctionDecl
	mapROI     map[*srcast.FunctionDecl][]*srcast.VariableDecl
}

// Build expands the dependance graph for model (the top-level scheduled
// contracts), using analyzer for the interface/super-chain strategy.
func Build(model []*srcast.ContractDecl, analyzer Analyzer) (*Dependance, error) {
	d := &Dependance{
		model:      model,
		deployed:   make(map[*srcast.ContractDecl]bool),
		interfaces: make(map[*srcast.ContractDecl][]*srcast.FunctionDecl),
		executed:   make(map[*srcast.FunctionDecl]bool),
		superchain: make(map[*srcast.FunctionDecl][]*srcast.FunctionDecl),
		callROI:    make(map[*srcast.FunctionDecl][]*srcast.FunctionDecl),
		mapROI:     make(map[*srcast.FunctionDecl][]*srcast.VariableDecl),
	}

	for _, c := range model {
		d.deployed[c] = true
	}

	// Seed the executed-code worklist with every contract's interface and
	// the super-chain of each interface method (a method reachable only via
	// `super.f()` must still be emitted).
	var worklist []*srcast.FunctionDecl
	for _, c := range model {
		iface := analyzer.InterfaceFor(c)
		d.interfaces[c] = iface
		worklist = append(worklist, iface...)
	}

	if len(worklist) == 0 {
		return nil, diag.Modelling("model has no deployed contract with a non-empty public interface")
	}

	for i := 0; i < len(worklist); i++ {
		fn := worklist[i]
		if d.executed[fn] {
			continue
		}
		d.executed[fn] = true

		chain := analyzer.SuperchainFor(fn)
		d.superchain[fn] = chain
		worklist = append(worklist, chain...)

		reach := computeCallReach(fn)
		var calls []*srcast.FunctionDecl
		for called := range reach.calls {
			calls = append(calls, called)
			worklist = append(worklist, called)
		}
		d.callROI[fn] = calls

		var maps []*srcast.VariableDecl
		for v := range reach.reads {
			maps = append(maps, v)
		}
		d.mapROI[fn] = maps
	}

	return d, nil
}

// GetModel returns the top-level scheduled contracts.
func (d *Dependance) GetModel() []*srcast.ContractDecl { return d.model }

// GetExecutedCode returns every function reachable from any interface or
// super-chain -- the full set of functions later components must emit.
func (d *Dependance) GetExecutedCode() []*srcast.FunctionDecl {
	out := make([]*srcast.FunctionDecl, 0, len(d.executed))
	for fn := range d.executed {
		out = append(out, fn)
	}
	return out
}

// IsDeployed reports whether c is one of the scheduled top-level contracts.
func (d *Dependance) IsDeployed(c *srcast.ContractDecl) bool { return d.deployed[c] }

// GetInterface returns the public interface computed for c.
func (d *Dependance) GetInterface(c *srcast.ContractDecl) []*srcast.FunctionDecl {
	return d.interfaces[c]
}

// GetSuperchain returns the super-call chain for fn.
func (d *Dependance) GetSuperchain(fn *srcast.FunctionDecl) []*srcast.FunctionDecl {
	return d.superchain[fn]
}

// GetFunctionROI returns every function directly called from fn's body.
func (d *Dependance) GetFunctionROI(fn *srcast.FunctionDecl) []*srcast.FunctionDecl {
	return d.callROI[fn]
}

// GetMapROI returns every mapping state variable directly indexed from
// fn's body.
func (d *Dependance) GetMapROI(fn *srcast.FunctionDecl) []*srcast.VariableDecl {
	return d.mapROI[fn]
}
