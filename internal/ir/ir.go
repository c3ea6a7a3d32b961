// Package ir defines the compiler's intermediate representation: a tree of
// typed expression nodes plus a statement chain, all owned by an Arena.
// Unlike the historical implementation's single tagged node type, the
// expression/statement/chain distinction is enforced here at the type
// level, per spec.md §9's design note: Expr, Stmt, and ChainNode are
// separate sum types, each satisfied only by the node kinds that
// legitimately belong to it.
package ir

import "tbxlc/internal/toktab"

// Expr is any expression-tree node: constants, variable/definition
// references, operator applications, and raw byte payloads.
type Expr interface {
	exprNode()
	SourceLine() int
}

// ChainNode is either a *Statement or a *LineNumber: the two node kinds
// that may appear as the Next link in the program's statement chain.
type ChainNode interface {
	chainNode()
	SourceLine() int
}

// base carries the fields every node needs regardless of variant: the
// source line it was allocated at. (The arena that owns it is implicit —
// nodes never outlive the arena that allocated them.)
type base struct {
	Line int
}

// SourceLine returns the source line the node was allocated at.
func (b base) SourceLine() int { return b.Line }

// Void is an empty placeholder expression.
type Void struct{ base }

func (*Void) exprNode() {}

// ConstNumber is a decimal-formatted numeric constant.
type ConstNumber struct {
	base
	Value float64
}

func (*ConstNumber) exprNode() {}

// ConstHexNumber is a hex-formatted numeric constant: it retains its
// display form but is semantically identical to ConstNumber.
type ConstHexNumber struct {
	base
	Value float64
}

func (*ConstHexNumber) exprNode() {}

// ConstString is a raw byte string of at most 255 bytes.
type ConstString struct {
	base
	Bytes []byte
}

func (*ConstString) exprNode() {}

// VarNumber references a numeric-variable table entry.
type VarNumber struct {
	base
	ID int
}

func (*VarNumber) exprNode() {}

// VarString references a string-variable table entry.
type VarString struct {
	base
	ID int
}

func (*VarString) exprNode() {}

// VarArray references an array-variable table entry.
type VarArray struct {
	base
	ID int
}

func (*VarArray) exprNode() {}

// VarLabel references a label-variable table entry.
type VarLabel struct {
	base
	ID int
}

func (*VarLabel) exprNode() {}

// VarAsmLabel references an external assembly symbol; never printed in
// user-visible listings.
type VarAsmLabel struct {
	base
	ID int
}

func (*VarAsmLabel) exprNode() {}

// DefNumber references a numeric definition-table entry; removed by an
// early pass once the definition is resolved to a literal.
type DefNumber struct {
	base
	ID int
}

func (*DefNumber) exprNode() {}

// DefString references a string definition-table entry; removed the same
// way as DefNumber.
type DefString struct {
	base
	ID int
}

func (*DefString) exprNode() {}

// Token is an operator or punctuation node. Left is populated only for
// binary operators; unary operators use only Right.
type Token struct {
	base
	Tok   toktab.Tok
	Left  Expr
	Right Expr
}

func (*Token) exprNode() {}

// Data is a raw byte payload, used as the Args of a REM, DATA, or
// BAS_ERROR statement.
type Data struct {
	base
	Bytes []byte
}

func (*Data) exprNode() {}

// Pair groups two sub-expressions for statements whose Args needs more
// than a single operator tree: IF_NUMBER's (condition, target-label) and
// ON_GO/ON_EXEC's (selector, label-list).
type Pair struct {
	base
	A, B Expr
}

func (*Pair) exprNode() {}

// LabelList is the label-list operand of ON_GO/ON_EXEC: the ordered
// variable-table ids of the labels to dispatch to.
type LabelList struct {
	base
	IDs []int
}

func (*LabelList) exprNode() {}

// ProcDef is the Args of a PROC/PROC_VAR statement: the procedure's
// entry label, its formal parameter variable ids (in declared order),
// and its local variable ids. Component G (semantic lowering) rewrites
// a PROC_VAR's body to reference the synthetic per-proc variables these
// ids name, then demotes the statement's Code to plain PROC.
type ProcDef struct {
	base
	Label  int
	Params []int
	Locals []int
}

func (*ProcDef) exprNode() {}

// ExecCall is the Args of an EXEC_PAR statement (or an ON_EXEC list
// entry before lowering): the target procedure's label id and the
// call-site argument expressions, in source (left-to-right) order.
// Component G consumes this to synthesize the hidden LET_INV prelude
// before replacing the statement with a plain EXEC.
type ExecCall struct {
	base
	Label int
	Args  []Expr
}

func (*ExecCall) exprNode() {}

// ForSpec is the Args of a FOR statement before control-flow desugar:
// the loop control variable and its start/limit/step expressions. Step
// is nil when the source omitted STEP (implying a step of 1).
type ForSpec struct {
	base
	Var          int
	Start, Limit Expr
	Step         Expr
}

func (*ForSpec) exprNode() {}

// DimSpec is one variable entry of a DIM/COM statement before component
// H splits multi-variable declarations apart: the declared variable
// (*VarArray or *VarString; a plain *VarNumber for a scalar COM entry)
// and its dimension-size expressions, in declared order. Sizes is empty
// for a scalar entry.
type DimSpec struct {
	base
	Var   Expr
	Sizes []Expr
}

func (*DimSpec) exprNode() {}

// ExprList is an ordered list of sub-expressions used as the Args of a
// multi-variable DIM/COM statement before component H splits it: each
// entry is a *DimSpec.
type ExprList struct {
	base
	Items []Expr
}

func (*ExprList) exprNode() {}

// RegAssign is the Args of an MLET statement (component J): Kind is one
// of TokIAssign/TokBAssign/TokFAssign/TokIStore/TokFStore, tagging how
// Value is stored into Target. Target is always the real program
// variable being assigned, never a literal pseudo-register; Kind alone
// says whether that store goes through AL/AX/FR0 and whether it is
// direct or (for an array element) indirect.
type RegAssign struct {
	base
	Kind   toktab.Tok
	Target Expr
	Value  Expr
}

func (*RegAssign) exprNode() {}

// AsmCall is the Args of an EXEC_ASM statement: the name of the
// assembly routine to invoke and its already-lowered argument
// expressions, loaded by codegen into AX/bas_param_1/bas_param_2/AL/FR0
// per the fixed parameter-passing convention before the call.
type AsmCall struct {
	base
	Name string
	Args []Expr
}

func (*AsmCall) exprNode() {}

// Statement is a single statement: Args is its expression (nil for
// argument-less statements), and Next continues the program's statement
// chain.
type Statement struct {
	base
	Code toktab.Stmt
	Args Expr
	Next ChainNode
}

func (*Statement) chainNode() {}

// LineNumber marks a user-assigned line number in the source chain. Num
// of -1 denotes a synthetic "force new line" marker (a "fake DATA line"):
// the binary encoder writes an empty line under the next unused line
// number for it, advancing the line counter.
type LineNumber struct {
	base
	Num  int
	Next ChainNode
}

func (*LineNumber) chainNode() {}
