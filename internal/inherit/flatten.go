// Package inherit implements C3, the Inheritance Flattener (spec.md §4.3):
// C3-linearizes each contract's base list, resolves override-hides-base for
// functions and modifiers, and folds every ancestor's state variables into a
// single flattened layout in base-before-derived order.
package inherit

import (
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

// Flat is the flattened view of one contract: its own declaration plus
// everything C3 linearization, override resolution and super-chain
// computation derive from it.
type Flat struct {
	Decl         *srcast.ContractDecl
	Linearization []*srcast.ContractDecl // most-derived first, Decl itself first
	State        []*srcast.VariableDecl // base-before-derived, de-duplicated by name
	Functions    map[string]*srcast.FunctionDecl // signature -> most-derived definition
	Modifiers    map[string]*srcast.ModifierDecl // name -> most-derived definition
}

// Flattener holds the flattened view for every contract in the program,
// keyed by declaration so later components (C4-C9) can look one up in O(1).
type Flattener struct {
	flat map[*srcast.ContractDecl]*Flat
}

// Flatten linearizes every contract in contracts. Contracts may be given in
// any order; each contract's flattened view is built once and cached. The
// C3 linearization itself is not cached: linearize recomputes a shared
// base's linearization every time it is reached.
func Flatten(contracts []*srcast.ContractDecl) (*Flattener, error) {
	f := &Flattener{flat: make(map[*srcast.ContractDecl]*Flat)}
	for _, c := range contracts {
		if _, err := f.flatten(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Flattener) flatten(c *srcast.ContractDecl) (*Flat, error) {
	if existing, ok := f.flat[c]; ok {
		return existing, nil
	}

	lin, err := f.linearize(c)
	if err != nil {
		return nil, err
	}

	flat := &Flat{
		Decl:          c,
		Linearization: lin,
		Functions:     make(map[string]*srcast.FunctionDecl),
		Modifiers:     make(map[string]*srcast.ModifierDecl),
	}

	// Functions/modifiers: walk most-derived to least-derived, only filling
	// in a signature/name the first time it's seen, so the most-derived
	// override always wins (spec.md §4.3: "override hides base").
	for _, ancestor := range lin {
		for _, fn := range ancestor.Funcs {
			sig := fn.Signature()
			if _, seen := flat.Functions[sig]; !seen {
				flat.Functions[sig] = fn
			}
		}
		for _, m := range ancestor.Mods {
			if _, seen := flat.Modifiers[m.Name]; !seen {
				flat.Modifiers[m.Name] = m
			}
		}
	}

	// State: walk least-derived to most-derived so storage slots are laid
	// out in the order a constructor's inherited initializers run in
	// (base before derived), de-duplicating by name (Solidity forbids
	// shadowing a state variable's name across the hierarchy, so the first
	// occurrence found walking this direction is also the only one).
	seen := make(map[string]bool)
	for i := len(lin) - 1; i >= 0; i-- {
		for _, v := range lin[i].State {
			if !seen[v.Name] {
				seen[v.Name] = true
				flat.State = append(flat.State, v)
			}
		}
	}

	f.flat[c] = flat
	return flat, nil
}

// linearize computes the C3 linearization of c's base list: c itself,
// followed by a merge of each direct base's own linearization and the
// direct base list itself, most-derived first (spec.md §4.3).
func (f *Flattener) linearize(c *srcast.ContractDecl) ([]*srcast.ContractDecl, error) {
	if len(c.Bases) == 0 {
		return []*srcast.ContractDecl{c}, nil
	}

	sequences := make([][]*srcast.ContractDecl, 0, len(c.Bases)+1)
	for _, base := range c.Bases {
		baseLin, err := f.linearize(base)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, baseLin)
	}
	sequences = append(sequences, append([]*srcast.ContractDecl(nil), c.Bases...))

	merged, err := merge(sequences)
	if err != nil {
		return nil, diag.Modelling("contract " + c.Name + " has no consistent C3 linearization (inconsistent base order)")
	}
	return append([]*srcast.ContractDecl{c}, merged...), nil
}

// merge implements the standard C3 merge step: repeatedly take the head of
// the first sequence that does not appear in the tail of any sequence, and
// remove it from every sequence's front.
func merge(sequences [][]*srcast.ContractDecl) ([]*srcast.ContractDecl, error) {
	var result []*srcast.ContractDecl
	for {
		sequences = dropEmpty(sequences)
		if len(sequences) == 0 {
			return result, nil
		}

		var candidate *srcast.ContractDecl
		for _, seq := range sequences {
			head := seq[0]
			if !inAnyTail(head, sequences) {
				candidate = head
				break
			}
		}
		if candidate == nil {
			return nil, errLinearizationFailed
		}

		result = append(result, candidate)
		for i, seq := range sequences {
			if len(seq) > 0 && seq[0] == candidate {
				sequences[i] = seq[1:]
			}
		}
	}
}

var errLinearizationFailed = &linearizationError{}

type linearizationError struct{}

func (*linearizationError) Error() string { return "c3 linearization failed" }

func dropEmpty(sequences [][]*srcast.ContractDecl) [][]*srcast.ContractDecl {
	out := sequences[:0]
	for _, s := range sequences {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func inAnyTail(c *srcast.ContractDecl, sequences [][]*srcast.ContractDecl) bool {
	for _, seq := range sequences {
		for _, other := range seq[1:] {
			if other == c {
				return true
			}
		}
	}
	return false
}

// Get returns the flattened view for c, computed by an earlier call to
// Flatten. It panics if c was not part of the flattened set, since that
// indicates a pipeline wiring bug rather than a malformed input.
func (f *Flattener) Get(c *srcast.ContractDecl) *Flat {
	flat, ok := f.flat[c]
	if !ok {
		panic("inherit: contract was not flattened: " + c.Name)
	}
	return flat
}

// SuperChain returns the chain of overridden definitions for fn, starting
// just above fn's own contract and walking up the linearization, most- to
// least-derived (spec.md §4.3's super-chain; mirrors
// ContractDependance.h's SuperChainExtractor, which collects this same
// chain by visiting `super.f(...)` call sites).
func (f *Flattener) SuperChain(fn *srcast.FunctionDecl) []*srcast.FunctionDecl {
	flat := f.Get(fn.Contract)
	sig := fn.Signature()

	var chain []*srcast.FunctionDecl
	afterSelf := false
	for _, ancestor := range flat.Linearization {
		if !afterSelf {
			if ancestor == fn.Contract {
				afterSelf = true
			}
			continue
		}
		for _, candidate := range ancestor.Funcs {
			if candidate.Signature() == sig {
				chain = append(chain, candidate)
				break
			}
		}
	}
	return chain
}
