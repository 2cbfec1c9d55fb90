package emit

import (
	"fmt"
	"io"

	"github.com/martin-neuhaeusser/smartace/internal/convert"
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/names"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/target"
	"github.com/martin-neuhaeusser/smartace/internal/types"
)

// printFunctionDecls is C11's forward-declare-mode counterpart to
// printFunctionDefs: one prototype per Init_/ND_/map-helper/method
// function, same enumeration order, no bodies.
func (p *Printer) printFunctionDecls(w io.Writer, order []nominal) error {
	defs, err := p.allFunctionDefs(order)
	if err != nil {
		return err
	}
	for _, d := range defs {
		decl := &target.CFuncDecl{ReturnType: d.ReturnType, Name: d.Name, Params: d.Params}
		if _, err := io.WriteString(w, decl.String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// printFunctionDefs is C11 proper: full bodies for every Init_/ND_
// constructor, every map helper, and every method function the model
// reaches (spec.md §4.11).
func (p *Printer) printFunctionDefs(w io.Writer, order []nominal) error {
	defs, err := p.allFunctionDefs(order)
	if err != nil {
		return err
	}
	for _, d := range defs {
		if _, err := io.WriteString(w, d.String()); err != nil {
			return err
		}
	}
	return nil
}

// allFunctionDefs enumerates every function C11 emits, in the same order
// C10 emitted the nominal types it's keyed to (spec.md testable property
// 4: determinism) followed by the method-function set.
func (p *Printer) allFunctionDefs(order []nominal) ([]*target.CFuncDef, error) {
	var out []*target.CFuncDef
	for _, n := range order {
		var defs []*target.CFuncDef
		var err error
		switch n.kind {
		case nominalStruct:
			defs, err = p.structFuncs(n.strct)
		case nominalContract:
			defs, err = p.contractFuncs(n.contract)
		case nominalMap:
			defs, err = p.mapFuncs(n.mapEntry)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, defs...)
	}

	methods, err := p.methodFuncs()
	if err != nil {
		return nil, err
	}
	out = append(out, methods...)
	return out, nil
}

func (p *Printer) defaultExpr(t srcast.Type) (target.CExpr, error) {
	name, err := p.Types.GetName(t)
	if err != nil {
		return nil, err
	}
	if p.Types.IsWrappedType(t) {
		return &target.CCall{Callee: "Init_" + name, Args: []target.CExpr{target.CLiteral("0")}}, nil
	}
	return &target.CCall{Callee: "Init_" + name}, nil
}

func (p *Printer) ndExpr(t srcast.Type) (target.CExpr, error) {
	name, err := p.Types.GetName(t)
	if err != nil {
		return nil, err
	}
	return &target.CCall{Callee: "ND_" + name}, nil
}

// structFuncs builds Init_<S>(one arg per field) and ND_<S>() (spec.md
// §4.11: "Init_<T>(defaulted args…)", "ND_<T>()").
func (p *Printer) structFuncs(s *srcast.StructDecl) ([]*target.CFuncDef, error) {
	name := p.Types.StructName(s)
	cType := "struct " + name

	params := make([]target.CParam, 0, len(s.Fields))
	var initStmts []target.CStmt
	initStmts = append(initStmts, &target.CVarDecl{Type: cType, Name: "tmp"})
	var ndStmts []target.CStmt
	ndStmts = append(ndStmts, &target.CVarDecl{Type: cType, Name: "tmp"})

	for _, f := range s.Fields {
		typeName, err := p.fieldTypeName(f.Type)
		if err != nil {
			return nil, err
		}
		argName := "arg_" + f.Name
		params = append(params, target.CParam{Type: typeName, Name: argName})

		lhs := &target.CMember{Base: target.CIdent("tmp"), Field: "user_" + f.Name}
		initStmts = append(initStmts, &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: lhs, Right: target.CIdent(argName)}})

		nd, err := p.ndExpr(f.Type)
		if err != nil {
			return nil, err
		}
		ndStmts = append(ndStmts, &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: lhs, Right: nd}})
	}
	initStmts = append(initStmts, &target.CReturn{Value: target.CIdent("tmp")})
	ndStmts = append(ndStmts, &target.CReturn{Value: target.CIdent("tmp")})

	return []*target.CFuncDef{
		{ReturnType: cType, Name: "Init_" + name, Params: params, Body: &target.CBlock{Stmts: initStmts}},
		{ReturnType: cType, Name: "ND_" + name, Params: nil, Body: &target.CBlock{Stmts: ndStmts}},
	}, nil
}

// contractFuncs builds Init_<C>/ND_<C>, threading the contract's own
// constructor body (if any) through Init_<C> so that `new C(args)`
// (convertContractCtor) keeps calling a single, argument-shaped entry
// point. Construction happens before the harness's transactional loop
// starts, so it has no ambient call-state to inherit; Init_<C> synthesizes
// a zeroed local `struct CallState` to run the constructor body against
// (documented in DESIGN.md -- a deliberate simplification, not a literal
// port).
func (p *Printer) contractFuncs(c *srcast.ContractDecl) ([]*target.CFuncDef, error) {
	name := p.Types.ContractName(c)
	cType := "struct " + name

	var params []target.CParam
	var ctorArgNames []string
	if c.Ctor != nil {
		for _, pd := range c.Ctor.Params {
			typeName, err := p.Types.GetName(pd.Type)
			if err != nil {
				return nil, err
			}
			argName := "arg_" + pd.Name
			params = append(params, target.CParam{Type: typeName, Name: argName})
			ctorArgNames = append(ctorArgNames, argName)
		}
	}

	var initStmts []target.CStmt
	initStmts = append(initStmts, &target.CVarDecl{Type: cType, Name: "tmp"})
	initStmts = append(initStmts, zeroAssign("user_address", "Init_sol_address_t", target.CLiteral("0")))
	initStmts = append(initStmts, zeroAssign("model_balance", "Init_sol_uint256_t", target.CLiteral("0")))

	var ndStmts []target.CStmt
	ndStmts = append(ndStmts, &target.CVarDecl{Type: cType, Name: "tmp"})
	ndStmts = append(ndStmts, zeroAssign("user_address", "ND_sol_address_t", nil))
	ndStmts = append(ndStmts, zeroAssign("model_balance", "ND_sol_uint256_t", nil))

	for _, v := range c.State {
		def, err := p.defaultExpr(v.Type)
		if err != nil {
			return nil, err
		}
		lhs := &target.CMember{Base: target.CIdent("tmp"), Field: "user_" + v.Name}
		initStmts = append(initStmts, &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: lhs, Right: def}})

		nd, err := p.ndExpr(v.Type)
		if err != nil {
			return nil, err
		}
		ndStmts = append(ndStmts, &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: lhs, Right: nd}})
	}

	if c.Ctor != nil {
		initStmts = append(initStmts, &target.CVarDecl{Type: "struct CallState", Name: "cstate"})
		callArgs := []target.CExpr{&target.CAddr{Inner: target.CIdent("tmp")}, &target.CAddr{Inner: target.CIdent("cstate")}}
		for _, a := range ctorArgNames {
			callArgs = append(callArgs, target.CIdent(a))
		}
		ctorName := "Method_" + name + "_Func" + p.ctorFuncSuffix(c)
		initStmts = append(initStmts, &target.CExprStmt{Expr: &target.CCall{Callee: ctorName, Args: callArgs}})
	}

	initStmts = append(initStmts, &target.CReturn{Value: target.CIdent("tmp")})
	ndStmts = append(ndStmts, &target.CReturn{Value: target.CIdent("tmp")})

	return []*target.CFuncDef{
		{ReturnType: cType, Name: "Init_" + name, Params: params, Body: &target.CBlock{Stmts: initStmts}},
		{ReturnType: cType, Name: "ND_" + name, Params: nil, Body: &target.CBlock{Stmts: ndStmts}},
	}, nil
}

func zeroAssign(field, callee string, arg target.CExpr) target.CStmt {
	var args []target.CExpr
	if arg != nil {
		args = []target.CExpr{arg}
	}
	lhs := &target.CMember{Base: target.CIdent("tmp"), Field: field}
	return &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: lhs, Right: &target.CCall{Callee: callee, Args: args}}}
}

// ctorFuncSuffix names the synthesized method function backing a
// contract's constructor body, matching methodName's own
// "Method_<Contract>_Func<Sanitize(fn.Name)>" composition (internal/convert
// /call.go) so Init_<C> calls exactly the entry point ConvertFunction
// would have produced for this same *srcast.FunctionDecl.
func (p *Printer) ctorFuncSuffix(c *srcast.ContractDecl) string {
	return names.Sanitize(c.Ctor.Name)
}

// mapFuncs builds Init_<M>/ND_<M>/Read_<M>/Write_<M>/Ref_<M> (spec.md
// §4.11). The remembered-single-cell semantics: the first access of any
// kind latches m_curr to the supplied key (m_set := 1); a later access at
// the latched key sees/updates `d_`; a later access at any other key reads
// `d_nd`, a single frozen symbolic value generated once and shared by
// every non-latched key (an intentionally coarse, sound
// over-approximation of the rest of an unbounded map), and silently drops
// writes there.
func (p *Printer) mapFuncs(m *types.MapEntry) ([]*target.CFuncDef, error) {
	mapName := fmt.Sprintf("Map_%d", m.ID)
	cType := "struct " + mapName

	valTypeName, err := p.Types.GetName(m.ValueType)
	if err != nil {
		return nil, err
	}
	valCType, err := p.fieldTypeName(m.ValueType)
	if err != nil {
		return nil, err
	}

	keyParams := make([]target.CParam, len(m.KeyTypes))
	for i, kt := range m.KeyTypes {
		tn, err := p.fieldTypeName(kt)
		if err != nil {
			return nil, err
		}
		keyParams[i] = target.CParam{Type: tn, Name: fmt.Sprintf("key%d", i)}
	}

	initND := func(fname string, valInit target.CExpr) *target.CFuncDef {
		stmts := []target.CStmt{&target.CVarDecl{Type: cType, Name: "tmp"}}
		stmts = append(stmts, &target.CExprStmt{Expr: &target.CAssign{
			Op: "=", Left: &target.CMember{Base: target.CIdent("tmp"), Field: "m_set"}, Right: target.CLiteral("0"),
		}})
		for i := range m.KeyTypes {
			stmts = append(stmts, &target.CExprStmt{Expr: &target.CAssign{
				Op:   "=",
				Left: &target.CMember{Base: target.CIdent("tmp"), Field: fmt.Sprintf("m_curr%d", i)},
				Right: target.CLiteral("0"),
			}})
		}
		stmts = append(stmts,
			&target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: &target.CMember{Base: target.CIdent("tmp"), Field: "d_"}, Right: valInit}},
			&target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: &target.CMember{Base: target.CIdent("tmp"), Field: "d_nd"}, Right: &target.CCall{Callee: "ND_" + valTypeName}}},
			&target.CReturn{Value: target.CIdent("tmp")},
		)
		return &target.CFuncDef{ReturnType: cType, Name: fname, Body: &target.CBlock{Stmts: stmts}}
	}

	defaultVal, err := p.defaultExpr(m.ValueType)
	if err != nil {
		return nil, err
	}
	ndVal, err := p.ndExpr(m.ValueType)
	if err != nil {
		return nil, err
	}
	initDef := initND("Init_"+mapName, defaultVal)
	ndDef := initND("ND_"+mapName, ndVal)

	mParam := target.CParam{Type: cType + " *", Name: "m"}

	keyMatch := func() target.CExpr {
		var cond target.CExpr = target.CLiteral("1")
		for i := range m.KeyTypes {
			eq := &target.CBinary{
				Op:   "==",
				Left: &target.CMember{Base: target.CIdent("m"), Field: fmt.Sprintf("m_curr%d", i), Arrow: true},
				Right: target.CIdent(fmt.Sprintf("key%d", i)),
			}
			cond = &target.CBinary{Op: "&&", Left: cond, Right: eq}
		}
		return cond
	}

	latchKey := func() []target.CStmt {
		var out []target.CStmt
		for i := range m.KeyTypes {
			out = append(out, &target.CExprStmt{Expr: &target.CAssign{
				Op:   "=",
				Left: &target.CMember{Base: target.CIdent("m"), Field: fmt.Sprintf("m_curr%d", i), Arrow: true},
				Right: target.CIdent(fmt.Sprintf("key%d", i)),
			}})
		}
		return out
	}

	dField := &target.CMember{Base: target.CIdent("m"), Field: "d_", Arrow: true}
	dndField := &target.CMember{Base: target.CIdent("m"), Field: "d_nd", Arrow: true}
	mSet := &target.CMember{Base: target.CIdent("m"), Field: "m_set", Arrow: true}

	readParams := append([]target.CParam{mParam}, keyParams...)
	readStmts := []target.CStmt{
		&target.CIf{
			Cond: &target.CUnary{Op: "!", Operand: mSet, Prefix: true},
			Then: &target.CBlock{Stmts: append(append([]target.CStmt{
				&target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: mSet, Right: target.CLiteral("1")}},
			}, latchKey()...), &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: dField, Right: &target.CCall{Callee: "ND_" + valTypeName}}})},
		},
		&target.CIf{Cond: keyMatch(), Then: &target.CReturn{Value: dField}, Else: &target.CReturn{Value: dndField}},
	}
	readDef := &target.CFuncDef{ReturnType: valCType, Name: "Read_" + mapName, Params: readParams, Body: &target.CBlock{Stmts: readStmts}}

	refParams := readParams
	refStmts := []target.CStmt{
		&target.CIf{
			Cond: &target.CUnary{Op: "!", Operand: mSet, Prefix: true},
			Then: &target.CBlock{Stmts: append(append([]target.CStmt{
				&target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: mSet, Right: target.CLiteral("1")}},
			}, latchKey()...), &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: dField, Right: &target.CCall{Callee: "ND_" + valTypeName}}})},
		},
		&target.CIf{Cond: keyMatch(), Then: &target.CReturn{Value: &target.CAddr{Inner: dField}}, Else: &target.CReturn{Value: &target.CAddr{Inner: dndField}}},
	}
	refDef := &target.CFuncDef{ReturnType: valCType + " *", Name: "Ref_" + mapName, Params: refParams, Body: &target.CBlock{Stmts: refStmts}}

	writeParams := append(append([]target.CParam{}, readParams...), target.CParam{Type: valCType, Name: "v"})
	writeStmts := []target.CStmt{
		&target.CIf{
			Cond: &target.CUnary{Op: "!", Operand: mSet, Prefix: true},
			Then: &target.CBlock{Stmts: append(append([]target.CStmt{
				&target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: mSet, Right: target.CLiteral("1")}},
			}, latchKey()...), &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: dField, Right: target.CIdent("v")}})},
			Else: &target.CIf{Cond: keyMatch(), Then: &target.CExprStmt{Expr: &target.CAssign{Op: "=", Left: dField, Right: target.CIdent("v")}}},
		},
	}
	writeDef := &target.CFuncDef{ReturnType: "void", Name: "Write_" + mapName, Params: writeParams, Body: &target.CBlock{Stmts: writeStmts}}

	return []*target.CFuncDef{initDef, ndDef, readDef, refDef, writeDef}, nil
}

// methodFuncs lowers every function C5 says the model reaches, plus every
// contract's own constructor body (always needed by contractFuncs'
// Init_<C> even when no exported function calls it directly).
func (p *Printer) methodFuncs() ([]*target.CFuncDef, error) {
	seen := map[*srcast.FunctionDecl]bool{}
	var fns []*srcast.FunctionDecl
	for _, fn := range executedSorted(p.Dep, p.Types) {
		if !seen[fn] {
			seen[fn] = true
			fns = append(fns, fn)
		}
	}
	for _, c := range p.Types.AllContracts() {
		if c.Ctor != nil && !seen[c.Ctor] {
			seen[c.Ctor] = true
			fns = append(fns, c.Ctor)
		}
	}

	var out []*target.CFuncDef
	for _, fn := range fns {
		bc := convert.NewBlockConverter(p.Conv)
		defs, err := bc.ConvertFunction(fn)
		if err != nil {
			return nil, diag.Wrap(err, "function "+fn.Name)
		}
		out = append(out, defs...)
	}
	return out, nil
}
