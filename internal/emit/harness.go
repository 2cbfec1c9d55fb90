package emit

import (
	"fmt"
	"io"

	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/harness"
	"github.com/martin-neuhaeusser/smartace/internal/names"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/target"
	"github.com/martin-neuhaeusser/smartace/internal/types"
)

// printRunModel is C12 (spec.md §4.12): a single `run_model` driver built
// from the model's deployed actors and their public interfaces. The
// `struct CallState` record every method function takes a pointer to is
// printed earlier, alongside the other struct definitions (see Print in
// emit.go), since function bodies reference it before this point runs.
func (p *Printer) printRunModel(w io.Writer, order []nominal) error {
	actors := modelOrder(p.Dep)
	body, err := p.runModelBody(actors)
	if err != nil {
		return err
	}
	def := &target.CFuncDef{ReturnType: "void", Name: "run_model", Body: body}
	_, err = io.WriteString(w, def.String())
	return err
}

// actorVar names the local variable holding one deployed actor's struct
// (one per entry in spec.md §6's `model` list).
func actorVar(i int) string { return fmt.Sprintf("actor_%d", i) }

// runModelBody builds the five declared steps of spec.md §4.12 in order.
func (p *Printer) runModelBody(actors []*srcast.ContractDecl) (*target.CBlock, error) {
	var stmts []target.CStmt

	stmts = append(stmts, harness.DeclareCallState(p.Cfg.UseLockstepTime)...)

	for i, c := range actors {
		cType := "struct " + p.Types.ContractName(c)
		stmts = append(stmts, &target.CVarDecl{Type: cType, Name: actorVar(i)})
	}

	for i, c := range actors {
		initCall, err := p.actorInit(c)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, &target.CExprStmt{Expr: &target.CAssign{
			Op: "=", Left: target.CIdent(actorVar(i)), Right: initCall,
		}})
		addrAssign := &target.CAssign{
			Op:   "=",
			Left: &target.CMember{Base: &target.CMember{Base: target.CIdent(actorVar(i)), Field: "user_address"}, Field: "v"},
			Right: &target.CCall{Callee: "Init_sol_address_t", Args: []target.CExpr{target.CLiteral(fmt.Sprintf("%d", i+1))}},
		}
		stmts = append(stmts, &target.CExprStmt{Expr: addrAssign})
	}

	clientLo := target.CLiteral(fmt.Sprintf("%d", len(actors)+1))
	clientHi := target.CLiteral(fmt.Sprintf("%d", len(actors)+1+64))

	loopBody, err := p.transactionBody(actors, clientLo, clientHi)
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, &target.CWhile{
		Cond: &target.CCall{Callee: "sol_continue"},
		Body: loopBody,
	})

	return &target.CBlock{Stmts: stmts}, nil
}

// actorInit builds the `Init_<Contract>(...)` call that constructs one
// deployed actor, supplying a fresh non-deterministic value for every
// constructor argument -- the harness has no source-level call site to
// borrow concrete arguments from (spec.md §4.12 step 4).
func (p *Printer) actorInit(c *srcast.ContractDecl) (target.CExpr, error) {
	name := p.Types.ContractName(c)
	var args []target.CExpr
	if c.Ctor != nil {
		for _, pd := range c.Ctor.Params {
			nd, err := p.ndExpr(pd.Type)
			if err != nil {
				return nil, err
			}
			args = append(args, nd)
		}
	}
	return &target.CCall{Callee: "Init_" + name, Args: args}, nil
}

// transactionBody builds spec.md §4.12 step 5's loop body, in its five
// named sub-steps.
func (p *Printer) transactionBody(actors []*srcast.ContractDecl, clientLo, clientHi target.CExpr) (*target.CBlock, error) {
	var stmts []target.CStmt

	stmts = append(stmts, &target.CExprStmt{Expr: &target.CCall{Callee: "sol_on_transaction"}})

	interference, err := p.interferenceBlock()
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, &target.CIf{
		Cond: &target.CCall{Callee: "sol_is_using_reps"},
		Then: interference,
	})

	stmts = append(stmts, harness.UpdateCallState(&target.CAddr{Inner: target.CIdent("state")}, p.Cfg.UseLockstepTime, clientLo, clientHi)...)

	cases, err := p.dispatchCases(actors)
	if err != nil {
		return nil, err
	}
	if len(cases.Cases) == 0 {
		return nil, diag.Modelling("model has no actor with a callable public method -- empty case count")
	}

	stmts = append(stmts, &target.CVarDecl{Type: "int", Name: "next_call"})
	stmts = append(stmts, &target.CExprStmt{Expr: &target.CAssign{
		Op:   "=",
		Left: target.CIdent("next_call"),
		Right: &target.CCall{Callee: "nd_range", Args: []target.CExpr{
			target.CLiteral("0"), target.CLiteral(fmt.Sprintf("%d", len(cases.Cases))), target.CLiteral(`"next_call"`),
		}},
	}})
	stmts = append(stmts, cases)

	return &target.CBlock{Stmts: stmts}, nil
}

// interferenceBlock unrolls every address-keyed map's interference space
// (spec.md §4.12 step 5b) into one non-deterministic assignment, and one
// optional invariant check, per cell -- using the odometer walk in
// internal/harness to enumerate the coordinate space explicitly rather
// than emitting a runtime loop, since the downstream verifier consumes
// fully unrolled C (spec.md §9: bounded model checking). Maps keyed by
// anything other than addresses have no natural "known address count" to
// size the coordinate space from and are left out of this expansion --
// an intentional scope narrowing, documented in DESIGN.md.
func (p *Printer) interferenceBlock() (*target.CBlock, error) {
	var stmts []target.CStmt
	width := len(modelOrder(p.Dep))
	for _, m := range p.Types.AllMaps() {
		if _, ok := m.ValueType.(*srcast.StructDeclType); ok && p.Cfg.InvariantMode != InvariantNone {
			return nil, diag.Modelling("invariants over a struct-valued map are not supported")
		}
		if !allAddressKeyed(m) {
			continue
		}
		valTypeName, err := p.Types.GetName(m.ValueType)
		if err != nil {
			return nil, err
		}
		it := harness.NewKeyIterator(width, len(m.KeyTypes))
		for !it.IsFull() {
			cellName := fmt.Sprintf("data_%d%s", m.ID, it.Suffix())
			decl := &target.CVarDecl{
				Type: valTypeName,
				Name: cellName,
				Init: &target.CCall{Callee: "ND_" + valTypeName},
			}
			stmts = append(stmts, decl)
			if p.Cfg.InvariantMode != InvariantNone {
				check := &target.CCall{Callee: fmt.Sprintf("Inv_%d", m.ID), Args: []target.CExpr{target.CIdent(cellName)}}
				callee := "sol_require"
				if p.Cfg.InvariantMode == InvariantUniversal {
					callee = "sol_assert"
				}
				stmts = append(stmts, &target.CExprStmt{Expr: &target.CCall{Callee: callee, Args: []target.CExpr{check, target.CLiteral(fmt.Sprintf(`"%s"`, cellName))}}})
			}
			it.Next()
		}
	}
	return &target.CBlock{Stmts: stmts}, nil
}

func allAddressKeyed(m *types.MapEntry) bool {
	for _, kt := range m.KeyTypes {
		if _, ok := kt.(*srcast.AddressType); !ok {
			return false
		}
	}
	return len(m.KeyTypes) > 0
}

// dispatchCases builds spec.md §4.12 step 5e: one switch case per (actor,
// exposed function) pair, each supplying non-deterministic arguments and,
// for a payable method, a pay() call before invoking it.
func (p *Printer) dispatchCases(actors []*srcast.ContractDecl) (*target.CSwitch, error) {
	sw := &target.CSwitch{Tag: target.CIdent("next_call")}
	idx := 0
	for i, c := range actors {
		for _, fn := range p.Dep.GetInterface(c) {
			body, err := p.dispatchCase(i, fn)
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, target.CCase{Value: target.CLiteral(fmt.Sprintf("%d", idx)), Body: body})
			idx++
		}
	}
	return sw, nil
}

func (p *Printer) dispatchCase(actorIdx int, fn *srcast.FunctionDecl) ([]target.CStmt, error) {
	var stmts []target.CStmt
	receiver := &target.CAddr{Inner: target.CIdent(actorVar(actorIdx))}

	if fn.Payable {
		valueND := &target.CCall{Callee: "nd_range", Args: []target.CExpr{
			target.CLiteral("0"), target.CLiteral("1000000"), target.CLiteral(`"value"`),
		}}
		stmts = append(stmts, &target.CExprStmt{Expr: &target.CAssign{
			Op: "=", Left: &target.CMember{Base: &target.CMember{Base: target.CIdent("state"), Field: "value"}, Field: "v"}, Right: valueND,
		}})
		balanceRef := &target.CAddr{Inner: &target.CMember{Base: target.CIdent(actorVar(actorIdx)), Field: "model_balance"}}
		sender := &target.CMember{Base: &target.CMember{Base: target.CIdent("state"), Field: "sender"}, Field: "v"}
		amount := &target.CMember{Base: &target.CMember{Base: target.CIdent("state"), Field: "value"}, Field: "v"}
		stmts = append(stmts, harness.Pay(balanceRef, sender, amount))
	}

	callee := "Method_" + p.Types.ContractName(fn.Contract) + "_Func" + names.Sanitize(fn.Name)
	args := []target.CExpr{receiver, &target.CAddr{Inner: target.CIdent("state")}}
	for _, param := range fn.Params {
		nd, err := p.ndExpr(param.Type)
		if err != nil {
			return nil, err
		}
		args = append(args, nd)
	}
	stmts = append(stmts, &target.CExprStmt{Expr: &target.CCall{Callee: callee, Args: args}})
	return stmts, nil
}
