package convert

import (
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/names"
	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/target"
)

// methodName is the target-language entry point for a function, built the
// same way regardless of call site (internal, external, or super-routed):
// the call always names a concrete FunctionDecl (the front end has already
// resolved overrides and super dispatch onto the right declaration), so the
// name only ever needs the declaring contract and the function's own
// source name (spec.md §4.11).
func methodName(t *Converter, fn *srcast.FunctionDecl) string {
	return "Method_" + t.Types.ContractName(fn.Contract) + "_Func" + names.Sanitize(fn.Name)
}

// pushArgs converts and wraps each call argument per its declared parameter
// type (CFuncCallBuilder::push in Expression.cpp).
func (c *Converter) pushArgs(args []srcast.Expression, params []*srcast.VariableDecl) ([]target.CExpr, error) {
	if len(args) != len(params) {
		return nil, diag.Invariant(srcast.Position{}, "call argument count does not match declared parameters")
	}
	out := make([]target.CExpr, len(args))
	for i, a := range args {
		v, err := c.Convert(a, false, false)
		if err != nil {
			return nil, err
		}
		v, err = c.wrap(params[i].Type, v)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Converter) convertCall(n *srcast.FunctionCall) (target.CExpr, error) {
	switch n.Kind {
	case srcast.FuncInternal, srcast.FuncSuper:
		return c.convertMethodCall(n, target.CIdent("self"))
	case srcast.FuncExternal:
		receiver, err := c.convertReceiver(n.Receiver)
		if err != nil {
			return nil, err
		}
		return c.convertMethodCall(n, receiver)
	case srcast.FuncBareCall, srcast.FuncBareStaticCall:
		return nil, diag.Unsupported(n.Pos, "low-level call")
	case srcast.FuncCreation:
		return c.convertContractCtor(n)
	case srcast.FuncTransfer, srcast.FuncSend:
		return c.convertPayment(n)
	case srcast.FuncAssert:
		return c.convertAssertion(n, "sol_assert")
	case srcast.FuncRequire:
		return c.convertAssertion(n, "sol_require")
	case srcast.FuncMetaType:
		return nil, diag.Unsupported(n.Pos, "type(...) meta-expression")
	case srcast.FuncUnsupported:
		return nil, diag.Unsupported(n.Pos, n.Unsupported)
	default:
		return nil, diag.Invariant(n.Pos, "function call of unrecognized kind")
	}
}

// convertReceiver produces the pointer-valued base for an external call: a
// pointer-typed identifier is used directly, anything else has its address
// taken (Expression.cpp: "push the converted+referenced receiver unless it
// is already a pointer").
func (c *Converter) convertReceiver(e srcast.Expression) (target.CExpr, error) {
	if c.isPointerExpr(e) {
		return c.Convert(e, false, false)
	}
	return c.Convert(e, true, false)
}

func (c *Converter) convertMethodCall(n *srcast.FunctionCall, receiver target.CExpr) (target.CExpr, error) {
	if n.Target == nil {
		return nil, diag.Invariant(n.Pos, "call has no resolved target function")
	}
	fn := n.Target
	args, err := c.pushArgs(n.Args, fn.Params)
	if err != nil {
		return nil, err
	}

	// Every non-constructor call threads the caller's own call-state record
	// forward to the callee (spec.md §4.9's "paid" open-question decision:
	// ambient call-state, including the paid flag, is carried forward
	// rather than recomputed at each call site).
	allArgs := append([]target.CExpr{receiver, &target.CAddr{Inner: target.CIdent("state")}}, args...)

	call := target.CExpr(&target.CCall{Callee: methodName(c, fn), Args: allArgs})
	if len(fn.Returns) == 1 && c.Types.IsWrappedType(fn.Returns[0].Type) {
		call = &target.CMember{Base: call, Field: "v"}
	} else if len(fn.Returns) > 1 {
		return nil, diag.Unsupported(n.Pos, "function with multiple return values")
	}
	return call, nil
}

func (c *Converter) convertContractCtor(n *srcast.FunctionCall) (target.CExpr, error) {
	if n.TargetType == nil {
		return nil, diag.Invariant(n.Pos, "contract constructor call without a resolvable target contract")
	}
	var params []*srcast.VariableDecl
	if n.TargetType.Ctor != nil {
		params = n.TargetType.Ctor.Params
	} else if len(n.Args) != 0 {
		return nil, diag.Invariant(n.Pos, "constructor call supplies arguments to a contract with no declared constructor")
	}
	args, err := c.pushArgs(n.Args, params)
	if err != nil {
		return nil, err
	}
	name := c.Types.ContractName(n.TargetType)
	return &target.CCall{Callee: "Init_" + name, Args: args}, nil
}

func (c *Converter) convertPayment(n *srcast.FunctionCall) (target.CExpr, error) {
	if len(n.Args) != 1 {
		return nil, diag.Invariant(n.Pos, "transfer/send called with other than one amount argument")
	}
	dst, err := c.Convert(n.Receiver, false, false)
	if err != nil {
		return nil, err
	}
	dst, err = c.wrap(&srcast.AddressType{}, dst)
	if err != nil {
		return nil, err
	}
	amount, err := c.Convert(n.Args[0], false, false)
	if err != nil {
		return nil, err
	}
	amount, err = c.wrap(n.Args[0].Annotation().Type, amount)
	if err != nil {
		return nil, err
	}
	balance := &target.CAddr{Inner: &target.CMember{Base: target.CIdent("self"), Field: "model_balance", Arrow: true}}

	callee := "_pay"
	if n.Kind == srcast.FuncSend {
		callee = "_pay_use_rv"
	}
	return &target.CCall{Callee: callee, Args: []target.CExpr{balance, dst, amount}}, nil
}

func (c *Converter) convertAssertion(n *srcast.FunctionCall, builtin string) (target.CExpr, error) {
	if len(n.Args) != 1 {
		return nil, diag.Invariant(n.Pos, builtin+" called with other than one condition argument")
	}
	cond, err := c.Convert(n.Args[0], false, false)
	if err != nil {
		return nil, err
	}
	return &target.CCall{Callee: builtin, Args: []target.CExpr{cond, target.CLiteral("0")}}, nil
}

func (c *Converter) convertCast(n *srcast.TypeConversionExpr) (target.CExpr, error) {
	from := n.Arg.Annotation().Type
	to := n.Annotation().Type

	arg, err := c.Convert(n.Arg, false, false)
	if err != nil {
		return nil, err
	}

	switch f := from.(type) {
	case *srcast.ElementaryType:
		t, ok := to.(*srcast.ElementaryType)
		if !ok {
			if _, ok := to.(*srcast.AddressType); ok && !f.Signed {
				return &target.CCall{Callee: "Init_sol_address_t", Args: []target.CExpr{&target.CCast{Type: "int", Inner: arg}}}, nil
			}
			return nil, diag.Unsupported(n.Pos, "integer cast to unsupported target type")
		}
		if f.Signed == t.Signed {
			return arg, nil
		}
		if t.Signed {
			return &target.CCast{Type: "int", Inner: arg}, nil
		}
		return &target.CCast{Type: "unsigned int", Inner: arg}, nil

	case *srcast.AddressType:
		if t, ok := to.(*srcast.ElementaryType); ok {
			if !t.Signed {
				return &target.CCast{Type: "unsigned int", Inner: arg}, nil
			}
			return arg, nil
		}
		return nil, diag.Unsupported(n.Pos, "address cast to unsupported target type")

	case *srcast.BoolType:
		if _, ok := to.(*srcast.BoolType); ok {
			return arg, nil
		}
		return nil, diag.Unsupported(n.Pos, "unsupported bool cast")

	case *srcast.ContractDeclType:
		if _, ok := to.(*srcast.AddressType); ok {
			member := &target.CMember{Base: arg, Field: "user_address", Arrow: c.isPointerExpr(n.Arg)}
			return &target.CMember{Base: member, Field: "v"}, nil
		}
		return nil, diag.Unsupported(n.Pos, "contract cast to unsupported target type")

	default:
		return nil, diag.Unsupported(n.Pos, "cast from unsupported source type")
	}
}

func (c *Converter) convertStructCtor(n *srcast.StructConstructorCallExpr) (target.CExpr, error) {
	if n.Struct == nil {
		return nil, diag.Invariant(n.Pos, "struct constructor called without a resolvable struct declaration")
	}
	if len(n.Args) != len(n.Struct.Fields) {
		return nil, diag.Invariant(n.Pos, "struct constructor argument count does not match declared fields")
	}
	args := make([]target.CExpr, len(n.Args))
	for i, a := range n.Args {
		v, err := c.Convert(a, false, false)
		if err != nil {
			return nil, err
		}
		v, err = c.wrap(n.Struct.Fields[i].Type, v)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	name := c.Types.StructName(n.Struct)
	return &target.CCall{Callee: "Init_" + name, Args: args}, nil
}
