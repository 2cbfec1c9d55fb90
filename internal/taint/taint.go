// Package taint implements C6, the Taint Analyzer (spec.md §4.6): an
// intraprocedural, flow-insensitive, field-insensitive fixed-point
// propagation of a small set of numbered taint sources through a function
// body.
//
// Ported from original_source/.../analysis/TaintAnalysis.h. Per spec.md's
// own framing and the "Taint analyzer consumer" decision recorded in
// DESIGN.md, this package is complete and tested standalone but is not
// consulted anywhere else in the pipeline.
package taint

import (
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

// Analysis tracks, for every variable declaration seen so far, which of the
// numbered taint sources [0, sources) it is tainted by.
type Analysis struct {
	sources      int
	defaultTaint []bool
	taint        map[*srcast.VariableDecl][]bool
	changed      bool
}

// New builds an analysis with the given number of distinguishable taint
// sources (spec.md §4.6: "sources are numbered, not merely boolean").
func New(sources int) *Analysis {
	return &Analysis{
		sources:      sources,
		defaultTaint: make([]bool, sources),
		taint:        make(map[*srcast.VariableDecl][]bool),
	}
}

// Taint marks decl as tainted by source i, before Run is called.
func (a *Analysis) Taint(decl *srcast.VariableDecl, i int) {
	v := a.vectorFor(decl)
	v[i] = true
}

// SourceCount returns the number of distinguishable taint sources.
func (a *Analysis) SourceCount() int { return a.sources }

// TaintFor returns the taint vector computed for decl (a fresh copy of the
// all-false default if decl was never tainted).
func (a *Analysis) TaintFor(decl *srcast.VariableDecl) []bool {
	if v, ok := a.taint[decl]; ok {
		return v
	}
	return append([]bool(nil), a.defaultTaint...)
}

func (a *Analysis) vectorFor(decl *srcast.VariableDecl) []bool {
	v, ok := a.taint[decl]
	if !ok {
		v = make([]bool, a.sources)
		a.taint[decl] = v
	}
	return v
}

// Run propagates taint through fn's body until a fixed point is reached:
// the coarse, flow-insensitive rule is "if x = e and e reads any tainted
// variable y, then x is tainted by everything y is tainted by, regardless
// of e's actual operation" (spec.md §4.6 / TaintAnalysis.h's own doc
// comment). It iterates the whole body repeatedly until a full pass makes
// no further change.
func (a *Analysis) Run(fn *srcast.FunctionDecl) error {
	if fn.Body == nil {
		return nil
	}
	for {
		a.changed = false
		if err := a.walkBlock(fn.Body); err != nil {
			return err
		}
		if !a.changed {
			return nil
		}
	}
}

func (a *Analysis) walkBlock(b *srcast.Block) error {
	if b == nil {
		return nil
	}
	for _, s := range b.Statements {
		if err := a.walkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analysis) walkStmt(s srcast.Statement) error {
	switch n := s.(type) {
	case *srcast.Block:
		return a.walkBlock(n)
	case *srcast.IfStatement:
		if err := a.walkStmt(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return a.walkStmt(n.Else)
		}
	case *srcast.WhileStatement:
		return a.walkStmt(n.Body)
	case *srcast.ForStatement:
		if n.Init != nil {
			if err := a.walkStmt(n.Init); err != nil {
				return err
			}
		}
		return a.walkStmt(n.Body)
	case *srcast.VariableDeclarationStatement:
		if n.Value == nil {
			return nil
		}
		sources := a.readSources(n.Value)
		a.propagate(n.Decl, sources)
	case *srcast.ExpressionStatement:
		switch expr := n.Expr.(type) {
		case *srcast.Assignment:
			dest, err := Destination(expr.Left)
			if err != nil {
				return diag.Wrap(err, "taint analysis")
			}
			sources := a.readSources(expr.Right)
			if dest != nil {
				a.propagate(dest, sources)
			}
		case *srcast.FunctionCall:
			a.propagateCallArgs(expr)
		}
	}
	return nil
}

// propagate ORs sources into dest's current taint vector, recording a
// change if the vector actually grew (TaintAnalysis::propogate).
func (a *Analysis) propagate(dest *srcast.VariableDecl, sources []bool) {
	if dest == nil {
		return
	}
	v := a.vectorFor(dest)
	for i, tainted := range sources {
		if tainted && !v[i] {
			v[i] = true
			a.changed = true
		}
	}
}

// propagateCallArgs applies propogate_unknown()'s coarse rule to a call's
// argument list: every argument that names a variable is treated as a
// possible out-parameter and tainted by all sources, since nothing here
// tracks which parameters a callee actually writes back through.
func (a *Analysis) propagateCallArgs(call *srcast.FunctionCall) {
	full := make([]bool, a.sources)
	for i := range full {
		full[i] = true
	}
	for _, arg := range call.Args {
		dest, err := Destination(arg)
		if err != nil || dest == nil {
			continue
		}
		a.propagate(dest, full)
	}
}

// readSources computes the union of taint carried by every identifier read
// within e (TaintAnalysis::propogate_unknown's coarse over-approximation:
// every variable referenced anywhere in the expression contributes all of
// its taint to the result, regardless of how it's combined).
func (a *Analysis) readSources(e srcast.Expression) []bool {
	out := make([]bool, a.sources)
	a.collectReads(e, out)
	return out
}

func (a *Analysis) collectReads(e srcast.Expression, out []bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *srcast.Identifier:
		if n.Decl != nil {
			v := a.TaintFor(n.Decl)
			for i, t := range v {
				if t {
					out[i] = true
				}
			}
		}
	case *srcast.MemberAccess:
		a.collectReads(n.Expr, out)
	case *srcast.IndexAccess:
		a.collectReads(n.Base, out)
		a.collectReads(n.Index, out)
	case *srcast.BinaryOperation:
		a.collectReads(n.Left, out)
		a.collectReads(n.Right, out)
	case *srcast.UnaryOperation:
		a.collectReads(n.Sub, out)
	case *srcast.Conditional:
		a.collectReads(n.Cond, out)
		a.collectReads(n.True, out)
		a.collectReads(n.False, out)
	case *srcast.TupleExpression:
		for _, c := range n.Components {
			a.collectReads(c, out)
		}
	case *srcast.FunctionCall:
		if n.Receiver != nil {
			a.collectReads(n.Receiver, out)
		}
		for _, arg := range n.Args {
			a.collectReads(arg, out)
		}
		a.propagateCallArgs(n)
		for i := range out {
			out[i] = true
		}
	case *srcast.TypeConversionExpr:
		a.collectReads(n.Arg, out)
	case *srcast.StructConstructorCallExpr:
		for _, arg := range n.Args {
			a.collectReads(arg, out)
		}
	case *srcast.Assignment:
		a.collectReads(n.Right, out)
	}
}

// Destination extracts the single variable declaration an assignment's LHS
// ultimately writes through (TaintDestination::extract). Field-insensitivity
// means a write through a member or index access still names its underlying
// variable; if the LHS somehow names two distinct declarations (which a
// well-formed single-target assignment never does), that's reported as a
// modelling error rather than guessed at.
func Destination(lhs srcast.Expression) (*srcast.VariableDecl, error) {
	var dest *srcast.VariableDecl
	var err error
	var walk func(e srcast.Expression)
	walk = func(e srcast.Expression) {
		if e == nil || err != nil {
			return
		}
		switch n := e.(type) {
		case *srcast.Identifier:
			if n.Decl == nil {
				return
			}
			if dest != nil && dest != n.Decl {
				err = diag.Modelling("ambiguous taint assignment destination")
				return
			}
			dest = n.Decl
		case *srcast.MemberAccess:
			walk(n.Expr)
		case *srcast.IndexAccess:
			walk(n.Base)
		case *srcast.TupleExpression:
			for _, c := range n.Components {
				walk(c)
			}
		}
	}
	walk(lhs)
	return dest, err
}
