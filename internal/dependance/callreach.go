package dependance

import "github.com/martin-neuhaeusser/smartace/internal/srcast"

// callReach walks fn's body once, collecting every function directly called
// from it and every mapping-typed state variable directly indexed from it.
// This is a direct, single-function analysis, and Build stores its result
// as the function's ROI unexpanded: get_function_roi/get_map_roi do not
// include what the callees themselves call or index. It mirrors CallReachAnalyzer in
// original_source/.../analysis/ContractDependance.h, which visits
// IndexAccess (for m_reads) and FunctionCall (for m_calls) in one pass.
type callReach struct {
	calls map[*srcast.FunctionDecl]bool
	reads map[*srcast.VariableDecl]bool
}

func newCallReach() *callReach {
	return &callReach{calls: make(map[*srcast.FunctionDecl]bool), reads: make(map[*srcast.VariableDecl]bool)}
}

func computeCallReach(fn *srcast.FunctionDecl) *callReach {
	r := newCallReach()
	if fn.Body != nil {
		r.walkBlock(fn.Body)
	}
	return r
}

func (r *callReach) walkBlock(b *srcast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		r.walkStmt(s)
	}
}

func (r *callReach) walkStmt(s srcast.Statement) {
	switch n := s.(type) {
	case *srcast.Block:
		r.walkBlock(n)
	case *srcast.IfStatement:
		r.walkExpr(n.Cond)
		r.walkStmt(n.Then)
		if n.Else != nil {
			r.walkStmt(n.Else)
		}
	case *srcast.WhileStatement:
		r.walkExpr(n.Cond)
		r.walkStmt(n.Body)
	case *srcast.ForStatement:
		if n.Init != nil {
			r.walkStmt(n.Init)
		}
		if n.Cond != nil {
			r.walkExpr(n.Cond)
		}
		if n.Post != nil {
			r.walkStmt(n.Post)
		}
		r.walkStmt(n.Body)
	case *srcast.VariableDeclarationStatement:
		if n.Value != nil {
			r.walkExpr(n.Value)
		}
	case *srcast.ExpressionStatement:
		r.walkExpr(n.Expr)
	case *srcast.ReturnStatement:
		if n.Value != nil {
			r.walkExpr(n.Value)
		}
	case *srcast.EmitStatement:
		for _, a := range n.Args {
			r.walkExpr(a)
		}
	}
}

func (r *callReach) walkExpr(e srcast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *srcast.FunctionCall:
		switch n.Kind {
		case srcast.FuncInternal, srcast.FuncExternal, srcast.FuncSuper:
			if n.Target != nil {
				r.calls[n.Target] = true
			}
		}
		if n.Receiver != nil {
			r.walkExpr(n.Receiver)
		}
		if n.Value != nil {
			r.walkExpr(n.Value)
		}
		for _, a := range n.Args {
			r.walkExpr(a)
		}
	case *srcast.IndexAccess:
		if id, ok := n.Base.(*srcast.Identifier); ok && id.Decl != nil {
			if _, isMap := id.Decl.Type.(*srcast.MappingType); isMap {
				r.reads[id.Decl] = true
			}
		}
		r.walkExpr(n.Base)
		r.walkExpr(n.Index)
	case *srcast.Assignment:
		r.walkExpr(n.Left)
		r.walkExpr(n.Right)
	case *srcast.BinaryOperation:
		r.walkExpr(n.Left)
		r.walkExpr(n.Right)
	case *srcast.UnaryOperation:
		r.walkExpr(n.Sub)
	case *srcast.Conditional:
		r.walkExpr(n.Cond)
		r.walkExpr(n.True)
		r.walkExpr(n.False)
	case *srcast.TupleExpression:
		for _, c := range n.Components {
			r.walkExpr(c)
		}
	case *srcast.MemberAccess:
		r.walkExpr(n.Expr)
	case *srcast.TypeConversionExpr:
		r.walkExpr(n.Arg)
	case *srcast.StructConstructorCallExpr:
		for _, a := range n.Args {
			r.walkExpr(a)
		}
	}
}
