// Package codegen implements component J: register-machine lowering.
// It only runs when the driver is producing a long listing — the tool's
// compiled pseudo-assembly output mode, as opposed to the binary and
// short-listing modes which tokenize surviving high-level statements
// directly. Each high-level statement still standing after desugar and
// the optimizer is rewritten into one new statement drawn from a fixed
// pseudo-instruction set: MLET (a typed register/variable store),
// EXEC_ASM (a named assembly-routine call), GO_S/LBL_S/RETURN (already
// final forms reused as-is). Per spec.md §4.J, JUMP_COND exists in the
// instruction set for predicated branches, but nothing in this compiler
// produces non-constant branch conditions past desugar's IF_NUMBER/
// IF_THEN forms, so the lowering table below never emits one; it is
// wired into the toktab/ir vocabulary for a downstream assembler to use
// should conditional branches other than IF_NUMBER ever reach this
// stage.
package codegen

import (
	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

type codegen struct {
	prog *ir.Program
	d    *diag.Sink
}

// Run lowers every surviving pass-through statement in prog to
// register-machine form in place.
func Run(prog *ir.Program, d *diag.Sink) error {
	g := &codegen{prog: prog, d: d}
	for _, s := range prog.Statements() {
		if err := g.lower(s); err != nil {
			return err
		}
	}
	return nil
}

func (g *codegen) lower(s *ir.Statement) error {
	switch s.Code {
	case toktab.StmtLet:
		return g.lowerLet(s)
	case toktab.StmtPlot, toktab.StmtDrawTo, toktab.StmtPoke, toktab.StmtDPoke,
		toktab.StmtPut, toktab.StmtGet, toktab.StmtOpen, toktab.StmtClose,
		toktab.StmtStatus, toktab.StmtLocate, toktab.StmtNote, toktab.StmtRead,
		toktab.StmtInput, toktab.StmtPrint, toktab.StmtSound:
		return g.lowerAsmCall(s)
	default:
		return nil
	}
}

// asmRoutines names the assembly entry point each pass-through statement
// expands to. Argument marshalling into AX/bas_param_1/bas_param_2/AL/
// FR0 is the downstream assembler's job (out of scope); codegen's
// contribution is picking the routine and the ordered argument
// expressions it is called with.
var asmRoutines = map[toktab.Stmt]string{
	toktab.StmtPlot:    "bas_plot",
	toktab.StmtDrawTo:  "bas_drawto",
	toktab.StmtPoke:    "bas_poke",
	toktab.StmtDPoke:   "bas_dpoke",
	toktab.StmtPut:     "bas_put",
	toktab.StmtGet:     "bas_get",
	toktab.StmtOpen:    "bas_open",
	toktab.StmtClose:   "bas_close",
	toktab.StmtStatus:  "bas_status",
	toktab.StmtLocate:  "bas_locate",
	toktab.StmtNote:    "bas_note",
	toktab.StmtRead:    "bas_read",
	toktab.StmtInput:   "bas_input",
	toktab.StmtPrint:   "bas_print",
	toktab.StmtSound:   "bas_sound",
}

func (g *codegen) lowerAsmCall(s *ir.Statement) error {
	name, ok := asmRoutines[s.Code]
	if !ok {
		return g.d.Errorf(g.prog.Arena.File(), s.SourceLine(), "codegen: no assembly routine registered for %v", s.Code)
	}
	call := g.prog.Arena.NewAsmCall(name, argsOf(s.Args))
	s.Code = toktab.StmtExecAsm
	s.Args = call
	return nil
}

// argsOf normalizes a pre-codegen Args expression into a flat,
// left-to-right argument list: nil becomes no arguments, an *ir.ExprList
// (PRINT/INPUT-style item lists) becomes its items, a chain of nested
// *ir.Pair (the shape SETCOLOR/SOUND/POKE/DPOKE-style multi-operand
// statements use before this pass) is flattened depth-first, and any
// other expression is a single argument.
func argsOf(e ir.Expr) []ir.Expr {
	switch v := e.(type) {
	case nil:
		return nil
	case *ir.ExprList:
		return v.Items
	case *ir.Pair:
		return flattenPair(v)
	default:
		return []ir.Expr{v}
	}
}

func flattenPair(p *ir.Pair) []ir.Expr {
	return append(flattenArg(p.A), flattenArg(p.B)...)
}

func flattenArg(e ir.Expr) []ir.Expr {
	if p, ok := e.(*ir.Pair); ok {
		return flattenPair(p)
	}
	return []ir.Expr{e}
}

// lowerLet rewrites a LET into an MLET/RegAssign. A string-valued target
// has no register-machine counterpart (there is no string pseudo-
// register) and is left as a plain LET for the downstream assembler to
// handle with its own string-store routine.
func (g *codegen) lowerLet(s *ir.Statement) error {
	pair, ok := s.Args.(*ir.Pair)
	if !ok {
		return g.d.Errorf(g.prog.Arena.File(), s.SourceLine(), "codegen: LET missing target/value pair")
	}
	target, value := pair.A, pair.B

	if _, isString := target.(*ir.VarString); isString {
		return nil
	}

	if idx, ok := indirectTarget(target); ok {
		kind := toktab.TokFStore
		if isIntegral(classify(value)) {
			kind = toktab.TokIStore
		}
		s.Code = toktab.StmtMLet
		s.Args = g.prog.Arena.NewRegAssign(kind, idx, value)
		return nil
	}

	cls := classify(value)
	kind := toktab.TokFAssign
	switch {
	case cls == classBool:
		kind = toktab.TokBAssign
	case isIntegral(cls):
		kind = toktab.TokIAssign
	}
	s.Code = toktab.StmtMLet
	s.Args = g.prog.Arena.NewRegAssign(kind, target, value)
	return nil
}

// indirectTarget recognizes an array-element assignment target: a
// Token(TokLParen, Left: *ir.VarArray, Right: index-expr).
func indirectTarget(e ir.Expr) (ir.Expr, bool) {
	t, ok := e.(*ir.Token)
	if !ok || t.Tok != toktab.TokLParen {
		return nil, false
	}
	if _, ok := t.Left.(*ir.VarArray); !ok {
		return nil, false
	}
	return e, true
}

// class is the conservative result of range-analyzing an expression for
// store-kind selection: every case not provably integral or boolean
// falls through to float, per spec.md §4.J.
type class int

const (
	classFloat class = iota
	classInt16
	classInt8
	classBool
)

func isIntegral(c class) bool { return c == classInt16 || c == classInt8 }

func classify(e ir.Expr) class {
	switch v := e.(type) {
	case *ir.ConstNumber:
		return classifyLiteral(v.Value)
	case *ir.ConstHexNumber:
		return classifyLiteral(v.Value)
	case *ir.Token:
		switch {
		case isComparison(v.Tok) || isLogical(v.Tok):
			return classBool
		case isArith(v.Tok):
			if v.Left == nil {
				return classFloat // unary +/-: keep simple, fall to float
			}
			if isIntegral(classify(v.Left)) && isIntegral(classify(v.Right)) {
				return classInt16
			}
			return classFloat
		default:
			return classFloat
		}
	default:
		// Variable reads, definitions, and intrinsic calls are of unknown
		// range: fall through to float per spec.md §4.J.
		return classFloat
	}
}

func classifyLiteral(v float64) class {
	if v != float64(int64(v)) {
		return classFloat
	}
	switch {
	case v >= 0 && v <= 255:
		return classInt8
	case v >= -32768 && v <= 32767:
		return classInt16
	default:
		return classFloat
	}
}

func isComparison(t toktab.Tok) bool {
	switch t {
	case toktab.TokLt, toktab.TokGt, toktab.TokLe, toktab.TokGe, toktab.TokEq, toktab.TokNe:
		return true
	}
	return false
}

func isLogical(t toktab.Tok) bool {
	switch t {
	case toktab.TokAnd, toktab.TokOr, toktab.TokNot:
		return true
	}
	return false
}

func isArith(t toktab.Tok) bool {
	switch t {
	case toktab.TokAdd, toktab.TokSub, toktab.TokMul, toktab.TokIDiv, toktab.TokMod,
		toktab.TokBitAnd, toktab.TokBitOr, toktab.TokBitExor:
		return true
	}
	return false
}
