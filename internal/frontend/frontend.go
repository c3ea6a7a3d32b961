// Package frontend implements component M: the adapter a grammar-driven
// parser (out of scope; only the shape of the IR it must produce is
// specified) drives to build a *ir.Program. It owns nothing of its own —
// no lexing, no grammar — it is the narrow seam between "parser recognized
// a construct" and "here is the IR node(s) that construct lowers to,"
// plus the per-file line-number bookkeeping every emitted node is stamped
// with.
//
// Builder is deliberately low-level: one method per IR shape a parser
// event needs to produce, not one method per BASIC keyword. A parser
// driving this adapter decides which sequence of calls a given piece of
// source text turns into; Builder only guarantees the result is
// well-formed IR satisfying the contracts internal/desugar, internal/lower
// and internal/optimize already assume (e.g. that GOTO/GOSUB/TRAP/RESTORE
// targets are *ir.ConstNumber line numbers, that ON...GOTO's label list
// holds raw line numbers until desugar resolves them, that SETCOLOR/SOUND
// arguments are right-nested *ir.Pair chains).
package frontend

import (
	"fmt"

	"tbxlc/internal/deftab"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

// Builder accumulates one program's statement chain. It has no parsing
// logic of its own: a parser event handler calls Line/Emit/the various
// Expr-shape constructors in source order, then reads Prog when done.
type Builder struct {
	Prog *ir.Program
	file string
	tail ir.ChainNode
}

// New returns a builder for a fresh, empty program.
func New(name, file string) *Builder {
	return &Builder{Prog: ir.NewProgram(name, file), file: file}
}

// append splices n onto the end of the statement chain.
func (b *Builder) append(n ir.ChainNode) {
	if b.Prog.Head == nil {
		b.Prog.Head = n
	} else {
		ir.SetNext(b.tail, n)
	}
	b.tail = n
}

// Line opens a new user-numbered source line: it appends a LineNumber
// marker and repoints the arena's current position so every node built
// from here on is stamped with n, until the next Line/FakeLine call.
func (b *Builder) Line(n int) {
	b.Prog.Arena.SetPosition(b.file, n)
	b.append(b.Prog.Arena.NewLineNumber(n))
}

// FakeLine reserves the next line number with no statements — the
// "fake DATA line" marker a DATA statement spanning an otherwise-unused
// line number needs (spec.md §4.K/§4.L both special-case LineNumber(-1)).
func (b *Builder) FakeLine() {
	b.append(b.Prog.Arena.NewLineNumber(-1))
}

// Emit appends a statement with the given code and already-built Args
// expression (nil for an argument-less statement) and returns it so the
// caller can still mutate it (e.g. a block-opening statement a later
// parser event needs to patch once its matching closer is seen).
func (b *Builder) Emit(code toktab.Stmt, args ir.Expr) *ir.Statement {
	s := b.Prog.Arena.NewStatement(code, args)
	b.append(s)
	return s
}

// --- Variable references ---

// NumberVar resolves (or creates) a numeric scalar variable and returns a
// reference expression to it.
func (b *Builder) NumberVar(name string) (*ir.VarNumber, error) {
	id, err := b.Prog.Vars.NewVar(name, vartab.Float)
	if err != nil {
		return nil, b.errorf("variable %s: %w", name, err)
	}
	return b.Prog.Arena.NewVarNumber(id), nil
}

// StringVar resolves (or creates) a string variable and returns a
// reference expression to it.
func (b *Builder) StringVar(name string) (*ir.VarString, error) {
	id, err := b.Prog.Vars.NewVar(name, vartab.String)
	if err != nil {
		return nil, b.errorf("variable %s$: %w", name, err)
	}
	return b.Prog.Arena.NewVarString(id), nil
}

// ArrayVar resolves (or creates) an array variable and returns a
// reference expression to it.
func (b *Builder) ArrayVar(name string) (*ir.VarArray, error) {
	id, err := b.Prog.Vars.NewVar(name, vartab.Array)
	if err != nil {
		return nil, b.errorf("array %s: %w", name, err)
	}
	return b.Prog.Arena.NewVarArray(id), nil
}

// Label resolves (or creates) a named label — the target of a PROC
// declaration, or a user-written "name:" label — and returns a reference
// to it. Labels are looked up by name across the whole program, so a
// forward reference (a GOTO to a label not yet declared) resolves to the
// same variable id the eventual declaration creates.
func (b *Builder) Label(name string) (*ir.VarLabel, error) {
	id, err := b.Prog.Vars.NewVar(name, vartab.Label)
	if err != nil {
		return nil, b.errorf("label %s: %w", name, err)
	}
	return b.Prog.Arena.NewVarLabel(id), nil
}

// AsmLabel resolves (or creates) an external assembly symbol reference,
// used by POKE/USR-style source forms that name a machine-language
// routine directly rather than going through EXEC_ASM.
func (b *Builder) AsmLabel(name string) (*ir.VarAsmLabel, error) {
	id, err := b.Prog.Vars.NewVar(name, vartab.AsmLabel)
	if err != nil {
		return nil, b.errorf("asm label %s: %w", name, err)
	}
	return b.Prog.Arena.NewVarAsmLabel(id), nil
}

// --- Definition table (DEFINE name = value / name = "string") ---

// keywordChecker adapts internal/toktab's package-level spelling tables
// to deftab.KeywordChecker without an import cycle.
var keywordChecker = toktab.Keywords{}

// DefineNumber creates (or looks up) a numeric definition and records its
// value, warning through d is left to the caller via Clashes.
func (b *Builder) DefineNumber(name string, v float64) (int, error) {
	id, err := b.Prog.Defs.NewDef(name, keywordChecker, b.defLoc())
	if err != nil {
		return -1, b.errorf("definition %s: %w", name, err)
	}
	b.Prog.Defs.SetNumber(id, v)
	return id, nil
}

// DefineString creates (or looks up) a string definition and records its
// byte value.
func (b *Builder) DefineString(name string, data []byte) (int, error) {
	id, err := b.Prog.Defs.NewDef(name, keywordChecker, b.defLoc())
	if err != nil {
		return -1, b.errorf("definition %s: %w", name, err)
	}
	if err := b.Prog.Defs.SetString(id, data); err != nil {
		return -1, b.errorf("definition %s: %w", name, err)
	}
	return id, nil
}

// DefNumberRef builds a reference to an already-declared numeric
// definition.
func (b *Builder) DefNumberRef(name string) (*ir.DefNumber, error) {
	id := b.Prog.Defs.Search(name)
	if id < 0 {
		return nil, b.errorf("undefined definition %s", name)
	}
	return b.Prog.Arena.NewDefNumber(id), nil
}

// DefStringRef builds a reference to an already-declared string
// definition.
func (b *Builder) DefStringRef(name string) (*ir.DefString, error) {
	id := b.Prog.Defs.Search(name)
	if id < 0 {
		return nil, b.errorf("undefined definition %s", name)
	}
	return b.Prog.Arena.NewDefString(id), nil
}

func (b *Builder) defLoc() deftab.Loc {
	return deftab.Loc{File: b.file, Line: b.Prog.Arena.Line()}
}

// --- Composite argument shapes the downstream passes expect ---

// Pair builds a two-child grouping node, used for every statement whose
// Args needs more than one sub-expression.
func (b *Builder) Pair(x, y ir.Expr) *ir.Pair {
	return b.Prog.Arena.NewPair(x, y)
}

// Token builds an operator/punctuation node.
func (b *Builder) Token(tok toktab.Tok, left, right ir.Expr) *ir.Token {
	return b.Prog.Arena.NewToken(tok, left, right)
}

// Number builds a decimal-formatted numeric constant.
func (b *Builder) Number(v float64) *ir.ConstNumber {
	return b.Prog.Arena.NewConstNumber(v)
}

// HexNumber builds a hex-formatted numeric constant, retaining its
// display form but semantically identical to Number.
func (b *Builder) HexNumber(v float64) *ir.ConstHexNumber {
	return b.Prog.Arena.NewConstHexNumber(v)
}

// String builds a raw byte-string constant.
func (b *Builder) String(data []byte) (*ir.ConstString, error) {
	if len(data) > 255 {
		return nil, b.errorf("string constant too long (%d > 255 bytes)", len(data))
	}
	return b.Prog.Arena.NewConstString(data), nil
}

// Rem builds the Args of a REM/REM_HIDDEN statement: the raw comment
// bytes, kept only so -k (KeepComments) can round-trip them.
func (b *Builder) Rem(data []byte) *ir.Data {
	return b.Prog.Arena.NewData(data)
}

// DataBytes builds the Args of a DATA statement: the literal byte payload
// after "DATA", unparsed until a READ consumes it at run time — which
// this compiler never does, so the bytes pass through untouched.
func (b *Builder) DataBytes(data []byte) *ir.Data {
	return b.Prog.Arena.NewData(data)
}

// Goto builds the Args of a GOTO/GOSUB/TRAP/RESTORE statement targeting a
// literal line number. internal/desugar's rewriteGoto/rewriteGosub/
// rewriteTrap/rewriteRestore all expect a *ir.ConstNumber here — the
// line-to-label resolution happens later, once every line number in the
// program is known.
func (b *Builder) Goto(lineNumber int) *ir.ConstNumber {
	return b.Prog.Arena.NewConstNumber(float64(lineNumber))
}

// OnGotoTargets builds the Args of an ON...GOTO/ON...GOSUB statement: the
// selector expression paired with the ordered list of literal target line
// numbers. Like Goto, the line numbers are resolved to label ids by
// internal/desugar, not here.
func (b *Builder) OnGotoTargets(selector ir.Expr, lineNumbers []int) *ir.Pair {
	return b.Prog.Arena.NewPair(selector, b.Prog.Arena.NewLabelList(append([]int(nil), lineNumbers...)))
}

// ForSpec builds the Args of a FOR statement: the control variable and
// its start/limit/step expressions. step is nil when the source omitted
// STEP, implying a step of 1.
func (b *Builder) ForSpec(v *ir.VarNumber, start, limit, step ir.Expr) *ir.ForSpec {
	return b.Prog.Arena.NewForSpec(v.ID, start, limit, step)
}

// DimEntry builds one variable entry of a DIM/COM declaration list: v is
// the declared *ir.VarArray or *ir.VarString (or a plain *ir.VarNumber for
// a scalar COM entry); sizes is its dimension expressions in source order
// (empty for a scalar).
func (b *Builder) DimEntry(v ir.Expr, sizes []ir.Expr) *ir.DimSpec {
	return b.Prog.Arena.NewDimSpec(v, sizes)
}

// Dim builds the Args of a DIM/COM statement from one or more DimEntry
// results. A single entry is passed through directly so internal/desugar's
// rewriteDim only splits the multi-variable case; desugar treats both
// shapes as valid input.
func (b *Builder) Dim(entries []*ir.DimSpec) ir.Expr {
	if len(entries) == 1 {
		return entries[0]
	}
	items := make([]ir.Expr, len(entries))
	for i, e := range entries {
		items[i] = e
	}
	return b.Prog.Arena.NewExprList(items)
}

// ProcParams declares a PROC's formal parameters and locals by name,
// creating one variable per name, and returns the Args of a PROC_VAR
// statement. Use Emit(toktab.StmtProcVar, ...) with the result; a PROC
// declared with no parameters and no locals should instead use Proc
// below, which needs no ProcDef at all.
func (b *Builder) ProcParams(label string, params, locals []Param) (*ir.ProcDef, error) {
	labelID, err := b.Prog.Vars.NewVar(label, vartab.Label)
	if err != nil {
		return nil, b.errorf("procedure %s: %w", label, err)
	}
	paramIDs, err := b.declareAll(label, "parameter", params)
	if err != nil {
		return nil, err
	}
	localIDs, err := b.declareAll(label, "local", locals)
	if err != nil {
		return nil, err
	}
	return b.Prog.Arena.NewProcDef(labelID, paramIDs, localIDs), nil
}

// Param pairs a declared parameter/local name with its variable type, the
// shape ProcParams needs for each formal.
type Param struct {
	Name string
	Type vartab.Type
}

func (b *Builder) declareAll(proc, kind string, decls []Param) ([]int, error) {
	ids := make([]int, len(decls))
	for i, d := range decls {
		id, err := b.Prog.Vars.NewVar(d.Name, d.Type)
		if err != nil {
			return nil, b.errorf("procedure %s %s %s: %w", proc, kind, d.Name, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// Proc builds the Args of a plain, parameterless PROC statement: a
// direct label reference, matching the shape internal/lower leaves
// behind once it has flattened a PROC_VAR away.
func (b *Builder) Proc(label string) (*ir.VarLabel, error) {
	return b.Label(label)
}

// ExecArgs builds the Args of an EXEC_PAR statement: the called
// procedure's label and its call-site argument expressions, in source
// (left-to-right) order. internal/lower consumes this to synthesize the
// hidden assignment prelude and right-to-left evaluation order.
func (b *Builder) ExecArgs(label string, args []ir.Expr) (*ir.ExecCall, error) {
	id, err := b.Prog.Vars.NewVar(label, vartab.Label)
	if err != nil {
		return nil, b.errorf("EXEC %s: %w", label, err)
	}
	return b.Prog.Arena.NewExecCall(id, args), nil
}

// SetColorArgs builds SETCOLOR c,h,l's Args as the right-nested Pair
// chain internal/desugar's rewriteSetColor expects: Pair{c, Pair{h, l}}.
func (b *Builder) SetColorArgs(c, h, l ir.Expr) *ir.Pair {
	return b.Prog.Arena.NewPair(c, b.Prog.Arena.NewPair(h, l))
}

// SoundArgs builds SOUND c,f,d,v's Args as the right-nested Pair chain
// internal/desugar's rewriteSound expects: Pair{c, Pair{f, Pair{d, v}}}.
func (b *Builder) SoundArgs(c, f, d, v ir.Expr) *ir.Pair {
	return b.Prog.Arena.NewPair(c, b.Prog.Arena.NewPair(f, b.Prog.Arena.NewPair(d, v)))
}

// IfThenArgs builds a single-line "IF cond THEN stmt" construct's
// condition/body pair before control-flow desugar runs; desugar itself
// decides whether body is a bare line-number target (collapsing straight
// to IF_NUMBER) or a statement list.
func (b *Builder) IfThenArgs(cond ir.Expr, body ir.Expr) *ir.Pair {
	return b.Prog.Arena.NewPair(cond, body)
}

func (b *Builder) errorf(format string, args ...any) error {
	inner := fmt.Errorf(format, args...)
	return fmt.Errorf("%s:%d: %w", b.file, b.Prog.Arena.Line(), inner)
}
