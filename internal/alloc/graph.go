// Package alloc implements C2, the Allocation Graph (spec.md §4.2):
// traverses every constructor body (and state-variable initializer) for
// `new <Contract>`, and derives the transitive set of deployed contracts
// from a given root set.
package alloc

import (
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
)

// color is the standard DFS-color used for cycle detection, per spec.md
// §9 Design Notes ("cycle detection is a standard DFS-color pass").
type color int

const (
	white color = iota
	gray
	black
)

// Graph is a directed "constructs an instance of" relation between
// contracts, built once and treated as read-only thereafter.
type Graph struct {
	edges map[*srcast.ContractDecl][]*srcast.ContractDecl
}

// Build walks every contract's constructor body (recursively through all
// statements/expressions) and every state-variable initializer, recording
// an edge whenever a `new C(...)` expression is found. A downcast in a
// constructor argument is treated as an allocation of the static type of
// the assigned field (spec.md §4.2) -- in this AST that static type is
// simply the FunctionCall's own TargetType, since the front end has
// already resolved it.
func Build(contracts []*srcast.ContractDecl) *Graph {
	g := &Graph{edges: make(map[*srcast.ContractDecl][]*srcast.ContractDecl)}
	for _, c := range contracts {
		g.edges[c] = nil
		if c.Ctor != nil && c.Ctor.Body != nil {
			g.walkBlock(c, c.Ctor.Body)
		}
		for _, v := range c.State {
			// State variable initializers are not modeled as expressions
			// in this AST (VariableDecl carries no initializer field for
			// state variables); any `new C(...)` in a state-variable
			// initializer would already have been lowered into the
			// synthesized constructor body by the front end, matching
			// Solidity's own desugaring of inline initializers into the
			// constructor.
			_ = v
		}
	}
	return g
}

func (g *Graph) walkBlock(owner *srcast.ContractDecl, b *srcast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		g.walkStmt(owner, s)
	}
}

func (g *Graph) walkStmt(owner *srcast.ContractDecl, s srcast.Statement) {
	switch n := s.(type) {
	case *srcast.Block:
		g.walkBlock(owner, n)
	case *srcast.IfStatement:
		g.walkExpr(owner, n.Cond)
		g.walkStmt(owner, n.Then)
		if n.Else != nil {
			g.walkStmt(owner, n.Else)
		}
	case *srcast.WhileStatement:
		g.walkExpr(owner, n.Cond)
		g.walkStmt(owner, n.Body)
	case *srcast.ForStatement:
		if n.Init != nil {
			g.walkStmt(owner, n.Init)
		}
		if n.Cond != nil {
			g.walkExpr(owner, n.Cond)
		}
		if n.Post != nil {
			g.walkStmt(owner, n.Post)
		}
		g.walkStmt(owner, n.Body)
	case *srcast.VariableDeclarationStatement:
		if n.Value != nil {
			g.walkExpr(owner, n.Value)
		}
	case *srcast.ExpressionStatement:
		g.walkExpr(owner, n.Expr)
	case *srcast.ReturnStatement:
		if n.Value != nil {
			g.walkExpr(owner, n.Value)
		}
	}
}

func (g *Graph) walkExpr(owner *srcast.ContractDecl, e srcast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *srcast.FunctionCall:
		if n.Kind == srcast.FuncCreation && n.TargetType != nil {
			g.edges[owner] = append(g.edges[owner], n.TargetType)
		}
		if n.Receiver != nil {
			g.walkExpr(owner, n.Receiver)
		}
		if n.Value != nil {
			g.walkExpr(owner, n.Value)
		}
		for _, a := range n.Args {
			g.walkExpr(owner, a)
		}
	case *srcast.Assignment:
		g.walkExpr(owner, n.Left)
		g.walkExpr(owner, n.Right)
	case *srcast.BinaryOperation:
		g.walkExpr(owner, n.Left)
		g.walkExpr(owner, n.Right)
	case *srcast.UnaryOperation:
		g.walkExpr(owner, n.Sub)
	case *srcast.Conditional:
		g.walkExpr(owner, n.Cond)
		g.walkExpr(owner, n.True)
		g.walkExpr(owner, n.False)
	case *srcast.TupleExpression:
		for _, c := range n.Components {
			g.walkExpr(owner, c)
		}
	case *srcast.MemberAccess:
		g.walkExpr(owner, n.Expr)
	case *srcast.IndexAccess:
		g.walkExpr(owner, n.Base)
		g.walkExpr(owner, n.Index)
	case *srcast.TypeConversionExpr:
		g.walkExpr(owner, n.Arg)
	case *srcast.StructConstructorCallExpr:
		for _, a := range n.Args {
			g.walkExpr(owner, a)
		}
	}
}

// Constructs returns the contracts directly constructed by c's own
// constructor.
func (g *Graph) Constructs(c *srcast.ContractDecl) []*srcast.ContractDecl {
	return g.edges[c]
}

// Closure returns the transitive set of contracts deployed starting from
// roots, including the roots themselves, in a deterministic
// first-discovered order. A cycle in the construction graph is a fatal
// modelling error (spec.md §4.2: "Cycles are reported as a fatal input
// error").
func (g *Graph) Closure(roots []*srcast.ContractDecl) ([]*srcast.ContractDecl, error) {
	colors := make(map[*srcast.ContractDecl]color)
	var order []*srcast.ContractDecl
	seen := make(map[*srcast.ContractDecl]bool)

	var visit func(c *srcast.ContractDecl) error
	visit = func(c *srcast.ContractDecl) error {
		switch colors[c] {
		case gray:
			return diag.Modelling("allocation graph contains a cycle at contract " + c.Name)
		case black:
			return nil
		}
		colors[c] = gray
		if !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
		for _, dep := range g.edges[c] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		colors[c] = black
		return nil
	}

	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return order, nil
}
