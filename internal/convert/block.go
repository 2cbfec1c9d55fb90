package convert

import (
	"strconv"

	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/names"
	"github.com/martin-neuhaeusser/smartace/internal/scope"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/target"
)

// BlockConverter implements C9 (spec.md §4.9): it lowers a statement body
// to the target AST and, for functions carrying a modifier chain, builds
// the `_mod0`/`_mod1`/.../`_base` wrapper chain that threads the
// placeholder statement `_;` through each modifier body in source order.
// Functions, modifiers, and constructors all lower through the same
// statement walk (convertStmt below); only the top-level entry/exit
// wrapping differs between the three, which is why they are not three
// separate types.
type BlockConverter struct {
	Expr *Converter

	// returnType is the wrapped-or-not type of the current function's sole
	// return value (nil if it returns nothing), consulted by ReturnStatement
	// lowering to decide whether the returned expression needs wrapping.
	returnType srcast.Type
}

// NewBlockConverter builds a block converter sharing the given expression
// converter's scope/type tables.
func NewBlockConverter(expr *Converter) *BlockConverter {
	return &BlockConverter{Expr: expr}
}

// Block lowers a nested `{ ... }`, pushing and popping its own lexical
// frame (spec.md §4.7: "a scope frame is pushed on block entry").
func (bc *BlockConverter) Block(b *srcast.Block) (*target.CBlock, error) {
	bc.Expr.Scope.Push()
	defer bc.Expr.Scope.Pop()
	stmts, err := bc.stmts(b.Statements)
	if err != nil {
		return nil, err
	}
	return &target.CBlock{Stmts: stmts}, nil
}

func (bc *BlockConverter) stmts(in []srcast.Statement) ([]target.CStmt, error) {
	var out []target.CStmt
	for _, s := range in {
		cs, err := bc.stmt(s)
		if err != nil {
			return nil, err
		}
		if cs != nil {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (bc *BlockConverter) stmt(s srcast.Statement) (target.CStmt, error) {
	switch n := s.(type) {
	case *srcast.Block:
		return bc.Block(n)

	case *srcast.IfStatement:
		cond, err := bc.Expr.Convert(n.Cond, false, false)
		if err != nil {
			return nil, err
		}
		then, err := bc.stmt(n.Then)
		if err != nil {
			return nil, err
		}
		var els target.CStmt
		if n.Else != nil {
			els, err = bc.stmt(n.Else)
			if err != nil {
				return nil, err
			}
		}
		return &target.CIf{Cond: cond, Then: then, Else: els}, nil

	case *srcast.WhileStatement:
		cond, err := bc.Expr.Convert(n.Cond, false, false)
		if err != nil {
			return nil, err
		}
		body, err := bc.stmt(n.Body)
		if err != nil {
			return nil, err
		}
		return &target.CWhile{Cond: cond, Body: body}, nil

	case *srcast.ForStatement:
		bc.Expr.Scope.Push()
		defer bc.Expr.Scope.Pop()
		// A declaration init clause (`for (T x = 0; ...)`) cannot be
		// expressed inside the parenthesized CFor header (spec.md §8
		// pins no for-loop shape, and this AST's CFor.Init is an
		// expression slot, not a statement slot), so it is hoisted into
		// an enclosing block: `{T x=0;for(;cond;post)body}`.
		var preStmt target.CStmt
		var init target.CExpr
		if n.Init != nil {
			if vdecl, ok := n.Init.(*srcast.VariableDeclarationStatement); ok {
				vd, err := bc.varDecl(vdecl)
				if err != nil {
					return nil, err
				}
				preStmt = vd
			} else {
				initStmt, err := bc.stmt(n.Init)
				if err != nil {
					return nil, err
				}
				if es, ok := initStmt.(*target.CExprStmt); ok {
					init = es.Expr
				}
			}
		}
		var cond target.CExpr
		if n.Cond != nil {
			c, err := bc.Expr.Convert(n.Cond, false, false)
			if err != nil {
				return nil, err
			}
			cond = c
		}
		var post target.CExpr
		if n.Post != nil {
			postStmt, err := bc.stmt(n.Post)
			if err != nil {
				return nil, err
			}
			if es, ok := postStmt.(*target.CExprStmt); ok {
				post = es.Expr
			}
		}
		body, err := bc.stmt(n.Body)
		if err != nil {
			return nil, err
		}
		forStmt := &target.CFor{Init: init, Cond: cond, Post: post, Body: body}
		if preStmt != nil {
			return &target.CBlock{Stmts: []target.CStmt{preStmt, forStmt}}, nil
		}
		return forStmt, nil

	case *srcast.VariableDeclarationStatement:
		return bc.varDecl(n)

	case *srcast.ExpressionStatement:
		e, err := bc.Expr.Convert(n.Expr, false, false)
		if err != nil {
			return nil, err
		}
		return &target.CExprStmt{Expr: e}, nil

	case *srcast.ReturnStatement:
		if n.Value == nil {
			return &target.CReturn{}, nil
		}
		v, err := bc.Expr.Convert(n.Value, false, false)
		if err != nil {
			return nil, err
		}
		if bc.returnType != nil {
			v, err = bc.Expr.wrap(bc.returnType, v)
			if err != nil {
				return nil, err
			}
		}
		return &target.CReturn{Value: v}, nil

	case *srcast.BreakStatement:
		return target.CBreak{}, nil

	case *srcast.ContinueStatement:
		return target.CContinue{}, nil

	case *srcast.EmitStatement:
		// Events are filtered from the output entirely (spec.md §4.9).
		return nil, nil

	case *srcast.ThrowStatement:
		return nil, diag.Unsupported(n.Pos, "throw")

	case *srcast.InlineAssemblyStatement:
		return nil, diag.Unsupported(n.Pos, "inline assembly")

	case *srcast.PlaceholderStatement:
		return nil, diag.Invariant(n.Pos, "placeholder statement outside a modifier chain rewrite")

	default:
		return nil, diag.Invariant(srcast.Position{}, "statement category not recognized")
	}
}

func (bc *BlockConverter) varDecl(n *srcast.VariableDeclarationStatement) (target.CStmt, error) {
	role := scope.RoleLocalValue
	if n.Decl.StorageQualified {
		role = scope.RoleLocalStorage
	}
	rewritten := bc.Expr.Scope.Declare(n.Decl.Name, role)

	typeName, err := bc.Expr.Types.GetName(n.Decl.Type)
	if err != nil {
		return nil, err
	}
	if n.Decl.StorageQualified {
		typeName += " *"
	}

	var init target.CExpr
	if n.Value != nil {
		v, err := bc.Expr.Convert(n.Value, false, false)
		if err != nil {
			return nil, err
		}
		init, err = bc.Expr.wrap(n.Decl.Type, v)
		if err != nil {
			return nil, err
		}
	}
	return &target.CVarDecl{Type: typeName, Name: rewritten, Init: init}, nil
}

// ConvertFunction lowers one exported or internal function to its entry
// point plus, when the function carries a modifier chain, one wrapper
// function per modifier (spec.md §4.9's `_mod0`/`_mod1`/.../`_base`
// rewrite of the placeholder statement `_;`). Payable functions also get
// the balance pre-amble stitched onto the base body (testable property
// S4: `if(((paid).v)==(1))(((self)->model_balance).v)+=((value).v);`).
func (bc *BlockConverter) ConvertFunction(fn *srcast.FunctionDecl) ([]*target.CFuncDef, error) {
	bc.Expr.Scope.Push()
	defer bc.Expr.Scope.Pop()

	for _, p := range fn.Params {
		bc.Expr.Scope.Declare(p.Name, scope.RoleParameter)
	}

	bc.returnType = nil
	if len(fn.Returns) == 1 {
		bc.returnType = fn.Returns[0].Type
	} else if len(fn.Returns) > 1 {
		return nil, diag.Unsupported(fn.Pos, "function with multiple return values")
	}

	params := bc.targetParams(fn)

	chain := activeModifiers(fn)
	baseName := methodName(bc.Expr, fn)
	if len(chain) > 0 {
		baseName += "_base"
	}

	baseBody, err := bc.functionBody(fn)
	if err != nil {
		return nil, err
	}
	baseDef := &target.CFuncDef{ReturnType: bc.returnCType(), Name: baseName, Params: params, Body: baseBody}

	if len(chain) == 0 {
		return []*target.CFuncDef{baseDef}, nil
	}

	defs := []*target.CFuncDef{baseDef}
	nextCallee := baseName
	// Walk the modifier list innermost-first (closest to the function body
	// wraps _base; the first-declared modifier becomes _mod0, reached only
	// through the exported entry point's own dispatch call below).
	for i := len(chain) - 1; i >= 0; i-- {
		mod := chain[i]
		name := methodName(bc.Expr, fn) + "_mod" + strconv.Itoa(i)
		def, err := bc.modifierWrapper(name, mod, nextCallee, params, fn.Params)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		nextCallee = name
	}

	// The exported entry point is always a pure dispatcher to _mod0, never
	// the first modifier's own body -- callers see a stable entry point
	// whose shape doesn't depend on how long the modifier chain is.
	entryCall := &target.CCall{Callee: nextCallee, Args: callArgs(fn.Params)}
	var entryStmt target.CStmt = &target.CExprStmt{Expr: entryCall}
	if bc.returnType != nil {
		entryStmt = &target.CReturn{Value: entryCall}
	}
	defs = append(defs, &target.CFuncDef{
		ReturnType: bc.returnCType(), Name: methodName(bc.Expr, fn), Params: params,
		Body: &target.CBlock{Stmts: []target.CStmt{entryStmt}},
	})
	return defs, nil
}

// functionBody lowers a function's own statement list, stitching the
// payable pre-amble onto the front when applicable.
func (bc *BlockConverter) functionBody(fn *srcast.FunctionDecl) (*target.CBlock, error) {
	body, err := bc.Block(fn.Body)
	if err != nil {
		return nil, err
	}
	if fn.Payable {
		preamble := payablePreamble()
		body.Stmts = append([]target.CStmt{preamble}, body.Stmts...)
	}
	return body, nil
}

// payablePreamble builds testable property S4's literal statement shape.
func payablePreamble() target.CStmt {
	cond := &target.CBinary{
		Op:   "==",
		Left: &target.CMember{Base: target.CIdent("paid"), Field: "v"},
		Right: target.CLiteral("1"),
	}
	lhs := &target.CMember{Base: &target.CMember{Base: target.CIdent("self"), Field: "model_balance", Arrow: true}, Field: "v"}
	rhs := &target.CMember{Base: target.CIdent("value"), Field: "v"}
	assign := &target.CAssign{Op: "+=", Left: lhs, Right: rhs}
	return &target.CIf{Cond: cond, Then: &target.CExprStmt{Expr: assign}}
}

// modifierWrapper lowers one modifier body, rewriting its placeholder
// statement `_;` into a forwarding call to the next function in the chain.
func (bc *BlockConverter) modifierWrapper(name string, mod *srcast.ModifierDecl, nextCallee string, params []target.CParam, userParams []*srcast.VariableDecl) (*target.CFuncDef, error) {
	bc.Expr.Scope.Push()
	defer bc.Expr.Scope.Pop()
	for _, p := range mod.Params {
		bc.Expr.Scope.Declare(p.Name, scope.RoleParameter)
	}

	forward := forwardingCall(nextCallee, userParams)
	stmts, err := bc.stmtsWithPlaceholder(mod.Body.Statements, forward)
	if err != nil {
		return nil, err
	}
	return &target.CFuncDef{ReturnType: bc.returnCType(), Name: name, Params: params, Body: &target.CBlock{Stmts: stmts}}, nil
}

func forwardingCall(callee string, userParams []*srcast.VariableDecl) target.CStmt {
	return &target.CExprStmt{Expr: &target.CCall{Callee: callee, Args: callArgs(userParams)}}
}

// callArgs builds the (self, &state, user-arg...) argument list shared by
// every forwarding/dispatch call in a modifier chain.
func callArgs(userParams []*srcast.VariableDecl) []target.CExpr {
	args := []target.CExpr{target.CIdent("self"), &target.CAddr{Inner: target.CIdent("state")}}
	for _, p := range userParams {
		args = append(args, &target.CMember{Base: target.CIdent(names.Join("func", "user", p.Name)), Field: "v"})
	}
	return args
}

func (bc *BlockConverter) stmtsWithPlaceholder(in []srcast.Statement, placeholder target.CStmt) ([]target.CStmt, error) {
	var out []target.CStmt
	for _, s := range in {
		if _, ok := s.(*srcast.PlaceholderStatement); ok {
			out = append(out, placeholder)
			continue
		}
		cs, err := bc.stmt(s)
		if err != nil {
			return nil, err
		}
		if cs != nil {
			out = append(out, cs)
		}
	}
	return out, nil
}

func (bc *BlockConverter) targetParams(fn *srcast.FunctionDecl) []target.CParam {
	out := make([]target.CParam, 0, len(fn.Params)+2)
	selfType := "struct " + bc.Expr.Types.ContractName(fn.Contract) + " *"
	out = append(out, target.CParam{Type: selfType, Name: "self"})
	out = append(out, target.CParam{Type: "struct CallState *", Name: "state"})
	for _, p := range fn.Params {
		name, _ := bc.Expr.Types.GetName(p.Type)
		out = append(out, target.CParam{Type: name, Name: names.Join("func", "user", p.Name)})
	}
	return out
}

func (bc *BlockConverter) returnCType() string {
	if bc.returnType == nil {
		return "void"
	}
	name, err := bc.Expr.Types.GetName(bc.returnType)
	if err != nil {
		return "void"
	}
	return name
}

// activeModifiers filters out base-constructor pseudo-modifiers (spec.md
// §4.9: "constructor-call pseudo-modifiers are filtered during modifier
// discovery"), returning only the real modifier declarations in source
// order.
func activeModifiers(fn *srcast.FunctionDecl) []*srcast.ModifierDecl {
	var out []*srcast.ModifierDecl
	for _, inv := range fn.Modifiers {
		if inv.IsConstructorCall() {
			continue
		}
		if d := inv.ResolvedModifier(); d != nil {
			out = append(out, d)
		}
	}
	return out
}

