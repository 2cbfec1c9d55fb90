// Package target is the small C-like target-language AST that C8-C12 build
// and print. Node names mirror the CExprPtr/CStmtPtr builders referenced
// throughout original_source/.../translation/Expression.cpp and
// .../scheduler/MainFunction.cpp (CFuncCallBuilder, CBlockList, CVarDecl,
// CReference, CDereference, ...); the printer itself is a plain
// strings.Builder walk, styled after kanso/internal/ir/printer.go.
//
// Expression/statement printing is deliberately whitespace-free and fully
// parenthesized -- this is not a cosmetic choice, it is the exact
// mechanical form spec.md §8's literal end-to-end scenarios pin down byte
// for byte (e.g. `(((self)->model_balance).v)+=((value).v);`). Top-level
// declarations (functions, structs) use ordinary indentation, since nothing
// in spec.md §8 constrains their layout.
package target

import (
	"fmt"
	"strings"
)

// CExpr is any target expression node.
type CExpr interface {
	String() string
}

// CIdent is a bare identifier reference.
type CIdent string

func (c CIdent) String() string { return string(c) }

// CLiteral is already-rendered literal text (an integer, "0"/"1" for a
// bool, or a bare type name used inside a cast).
type CLiteral string

func (c CLiteral) String() string { return string(c) }

// CMember is `Base.Field` or `Base->Field`; Base is always parenthesized,
// matching testable property S4's `((self)->model_balance).v`.
type CMember struct {
	Base  CExpr
	Field string
	Arrow bool
}

func (m *CMember) String() string {
	sep := "."
	if m.Arrow {
		sep = "->"
	}
	return "(" + m.Base.String() + ")" + sep + m.Field
}

// CMapFieldRef is the bare `receiver->field` used only as the argument to
// CAddr when building a map helper call's base pointer (spec.md §4.8
// "Index access on a map"); unlike CMember it does not parenthesize the
// receiver, matching testable property S2's `&(self->user_m)` (one pair of
// parens total, supplied by the enclosing CAddr).
type CMapFieldRef struct {
	Receiver CExpr
	Field    string
}

func (m *CMapFieldRef) String() string {
	return m.Receiver.String() + "->" + m.Field
}

// CAddr is `&(inner)`.
type CAddr struct{ Inner CExpr }

func (a *CAddr) String() string { return "&(" + a.Inner.String() + ")" }

// CDeref is `*(inner)`, used when a map `Ref_<M>` result is dereferenced
// for an l-value write-through.
type CDeref struct{ Inner CExpr }

func (d *CDeref) String() string { return "*(" + d.Inner.String() + ")" }

// CCall is `callee(arg,arg,...)` with no separating spaces.
type CCall struct {
	Callee string
	Args   []CExpr
}

func (c *CCall) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Callee + "(" + strings.Join(parts, ",") + ")"
}

// CBinary is `(left)op(right)`.
type CBinary struct {
	Op    string
	Left  CExpr
	Right CExpr
}

func (b *CBinary) String() string {
	return "(" + b.Left.String() + ")" + b.Op + "(" + b.Right.String() + ")"
}

// CAssign is `(left)op(right)` for an assignment operator (`=`, `+=`, ...);
// printed identically to CBinary, kept as a distinct type so callers never
// confuse "build an assignment" with "build a comparison".
type CAssign struct {
	Op    string
	Left  CExpr
	Right CExpr
}

func (a *CAssign) String() string {
	return "(" + a.Left.String() + ")" + a.Op + "(" + a.Right.String() + ")"
}

// CUnary is a prefix (`!x`, `-x`, `++x`) or postfix (`x++`, `x--`) unary
// operator.
type CUnary struct {
	Op      string
	Operand CExpr
	Prefix  bool
}

func (u *CUnary) String() string {
	if u.Prefix {
		return u.Op + "(" + u.Operand.String() + ")"
	}
	return "(" + u.Operand.String() + ")" + u.Op
}

// CCast is a C-style cast `(type)(inner)`, used by the integer/address cast
// matrix (spec.md §4.8 print_cast).
type CCast struct {
	Type  string
	Inner CExpr
}

func (c *CCast) String() string { return "(" + c.Type + ")(" + c.Inner.String() + ")" }

// CTernary is `cond ? a : b`.
type CTernary struct {
	Cond, True, False CExpr
}

func (t *CTernary) String() string {
	return "(" + t.Cond.String() + ")?(" + t.True.String() + "):(" + t.False.String() + ")"
}

// CStmt is any target statement node.
type CStmt interface {
	String() string
}

// CExprStmt is a bare expression used as a statement.
type CExprStmt struct{ Expr CExpr }

func (s *CExprStmt) String() string { return s.Expr.String() + ";" }

// CBlock is a `{ ... }` sequence of statements, with no separators beyond
// each statement's own trailing punctuation.
type CBlock struct{ Stmts []CStmt }

func (b *CBlock) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for _, s := range b.Stmts {
		sb.WriteString(s.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// CIf is `if(cond)then` or `if(cond)thenelse else`: `else` is followed by
// one space so it never runs into a following keyword or identifier.
type CIf struct {
	Cond       CExpr
	Then, Else CStmt
}

func (i *CIf) String() string {
	var sb strings.Builder
	sb.WriteString("if(")
	sb.WriteString(i.Cond.String())
	sb.WriteByte(')')
	sb.WriteString(i.Then.String())
	if i.Else != nil {
		sb.WriteString("else ")
		sb.WriteString(i.Else.String())
	}
	return sb.String()
}

// CWhile is `while(cond)body`.
type CWhile struct {
	Cond CExpr
	Body CStmt
}

func (w *CWhile) String() string {
	return "while(" + w.Cond.String() + ")" + w.Body.String()
}

// CFor is `for(init;cond;post)body`; Init/Post may be nil.
type CFor struct {
	Init CExpr
	Cond CExpr
	Post CExpr
	Body CStmt
}

func (f *CFor) String() string {
	init, cond, post := "", "", ""
	if f.Init != nil {
		init = f.Init.String()
	}
	if f.Cond != nil {
		cond = f.Cond.String()
	}
	if f.Post != nil {
		post = f.Post.String()
	}
	return "for(" + init + ";" + cond + ";" + post + ")" + f.Body.String()
}

// CVarDecl is `type name=init;` (or `type name;` if Init is nil).
type CVarDecl struct {
	Type string
	Name string
	Init CExpr
}

func (v *CVarDecl) String() string {
	if v.Init == nil {
		return v.Type + " " + v.Name + ";"
	}
	return v.Type + " " + v.Name + "=" + v.Init.String() + ";"
}

// CReturn is `return value;` or `return;` when Value is nil.
type CReturn struct{ Value CExpr }

func (r *CReturn) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

// CBreak and CContinue are the two loop-escape statements.
type CBreak struct{}

func (CBreak) String() string { return "break;" }

type CContinue struct{}

func (CContinue) String() string { return "continue;" }

// CCase is one `case value: stmts... break;` arm of a CSwitch.
type CCase struct {
	Value CExpr
	Body  []CStmt
}

// CSwitch is `switch(tag){ case ...: ...; default: ...; }`.
type CSwitch struct {
	Tag     CExpr
	Cases   []CCase
	Default []CStmt
}

func (s *CSwitch) String() string {
	var sb strings.Builder
	sb.WriteString("switch(")
	sb.WriteString(s.Tag.String())
	sb.WriteString("){")
	for _, c := range s.Cases {
		sb.WriteString("case ")
		sb.WriteString(c.Value.String())
		sb.WriteByte(':')
		for _, st := range c.Body {
			sb.WriteString(st.String())
		}
		sb.WriteString("break;")
	}
	if len(s.Default) > 0 {
		sb.WriteString("default:")
		for _, st := range s.Default {
			sb.WriteString(st.String())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// CParam is one function parameter.
type CParam struct {
	Type string
	Name string
}

func (p CParam) String() string { return p.Type + " " + p.Name }

// CFuncDecl is a forward declaration: `returnType name(params...);`.
type CFuncDecl struct {
	ReturnType string
	Name       string
	Params     []CParam
}

func (f *CFuncDecl) String() string {
	return fmt.Sprintf("%s %s(%s);", f.ReturnType, f.Name, joinParams(f.Params))
}

// CFuncDef is a full function definition.
type CFuncDef struct {
	ReturnType string
	Name       string
	Params     []CParam
	Body       *CBlock
}

func (f *CFuncDef) String() string {
	return fmt.Sprintf("%s %s(%s) %s\n", f.ReturnType, f.Name, joinParams(f.Params), blockPretty(f.Body))
}

func joinParams(params []CParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// blockPretty renders a block with one statement per line and tab
// indentation, for top-level function/struct definitions where spec.md §8
// imposes no byte-level constraint; the statements themselves are still
// the exact mechanical CExpr/CStmt text described above.
func blockPretty(b *CBlock) string {
	if b == nil || len(b.Stmts) == 0 {
		return "{\n}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteByte('\t')
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	sb.WriteByte('}')
	return sb.String()
}

// CField is one struct field.
type CField struct {
	Type string
	Name string
}

// CStructDecl is a forward declaration: `struct Name;`.
type CStructDecl struct{ Name string }

func (s *CStructDecl) String() string { return "struct " + s.Name + ";" }

// CStructDef is a full struct definition.
type CStructDef struct {
	Name   string
	Fields []CField
}

func (s *CStructDef) String() string {
	var sb strings.Builder
	sb.WriteString("struct ")
	sb.WriteString(s.Name)
	sb.WriteString(" {\n")
	for _, f := range s.Fields {
		sb.WriteByte('\t')
		sb.WriteString(f.Type)
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
		sb.WriteString(";\n")
	}
	sb.WriteString("};\n")
	return sb.String()
}
