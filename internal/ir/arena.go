package ir

import (
	"fmt"

	"tbxlc/internal/toktab"
)

// blockSize and maxBlocks mirror the historical implementation's
// block-based allocator: nodes are allocated from blocks of 1024, up to a
// hard cap of 128 blocks (131072 nodes total). Exceeding the cap is fatal,
// matching spec.md §4.E — this is an internal-errors-class condition, not
// a recoverable compile error.
const (
	blockSize = 1024
	maxBlocks = 128
	maxNodes  = blockSize * maxBlocks
)

// Arena owns every IR node allocated for one program. Nodes are never
// freed individually; rewrites mutate fields in place or allocate fresh
// nodes and splice them into the statement chain. Program teardown
// releases the whole arena (in Go, simply dropping the last reference).
type Arena struct {
	program  string // containing program handle / identifier
	file     string // current input file name
	line     int    // current input line number
	numNodes int
}

// NewArena returns an arena for the named program, initially attributing
// allocations to file at line 1.
func NewArena(program, file string) *Arena {
	return &Arena{program: program, file: file, line: 1}
}

// SetPosition updates the file/line new allocations will be stamped with;
// the front-end adapter (component M) calls this as it consumes parser
// events advancing through the source.
func (a *Arena) SetPosition(file string, line int) {
	a.file = file
	a.line = line
}

// File returns the arena's current input file name.
func (a *Arena) File() string { return a.file }

// Line returns the arena's current input line number.
func (a *Arena) Line() int { return a.line }

// NodeCount returns the number of nodes allocated so far.
func (a *Arena) NodeCount() int { return a.numNodes }

func (a *Arena) reserve() base {
	a.numNodes++
	if a.numNodes > maxNodes {
		panic(fmt.Sprintf("ir: arena %q exceeded %d nodes (128 blocks of 1024)", a.program, maxNodes))
	}
	return base{Line: a.line}
}

// --- Expression constructors ---

func (a *Arena) NewVoid() *Void { return &Void{base: a.reserve()} }

func (a *Arena) NewConstNumber(v float64) *ConstNumber {
	return &ConstNumber{base: a.reserve(), Value: v}
}

func (a *Arena) NewConstHexNumber(v float64) *ConstHexNumber {
	return &ConstHexNumber{base: a.reserve(), Value: v}
}

func (a *Arena) NewConstString(b []byte) *ConstString {
	cp := append([]byte(nil), b...)
	return &ConstString{base: a.reserve(), Bytes: cp}
}

func (a *Arena) NewVarNumber(id int) *VarNumber     { return &VarNumber{base: a.reserve(), ID: id} }
func (a *Arena) NewVarString(id int) *VarString     { return &VarString{base: a.reserve(), ID: id} }
func (a *Arena) NewVarArray(id int) *VarArray       { return &VarArray{base: a.reserve(), ID: id} }
func (a *Arena) NewVarLabel(id int) *VarLabel       { return &VarLabel{base: a.reserve(), ID: id} }
func (a *Arena) NewVarAsmLabel(id int) *VarAsmLabel { return &VarAsmLabel{base: a.reserve(), ID: id} }
func (a *Arena) NewDefNumber(id int) *DefNumber     { return &DefNumber{base: a.reserve(), ID: id} }
func (a *Arena) NewDefString(id int) *DefString     { return &DefString{base: a.reserve(), ID: id} }

func (a *Arena) NewData(b []byte) *Data {
	cp := append([]byte(nil), b...)
	return &Data{base: a.reserve(), Bytes: cp}
}

func (a *Arena) NewPair(x, y Expr) *Pair { return &Pair{base: a.reserve(), A: x, B: y} }

func (a *Arena) NewLabelList(ids []int) *LabelList {
	cp := append([]int(nil), ids...)
	return &LabelList{base: a.reserve(), IDs: cp}
}

func (a *Arena) NewProcDef(label int, params, locals []int) *ProcDef {
	return &ProcDef{
		base:   a.reserve(),
		Label:  label,
		Params: append([]int(nil), params...),
		Locals: append([]int(nil), locals...),
	}
}

func (a *Arena) NewExecCall(label int, args []Expr) *ExecCall {
	return &ExecCall{base: a.reserve(), Label: label, Args: append([]Expr(nil), args...)}
}

func (a *Arena) NewForSpec(v int, start, limit, step Expr) *ForSpec {
	return &ForSpec{base: a.reserve(), Var: v, Start: start, Limit: limit, Step: step}
}

func (a *Arena) NewDimSpec(v Expr, sizes []Expr) *DimSpec {
	return &DimSpec{base: a.reserve(), Var: v, Sizes: append([]Expr(nil), sizes...)}
}

func (a *Arena) NewExprList(items []Expr) *ExprList {
	return &ExprList{base: a.reserve(), Items: append([]Expr(nil), items...)}
}

func (a *Arena) NewRegAssign(kind toktab.Tok, target, value Expr) *RegAssign {
	return &RegAssign{base: a.reserve(), Kind: kind, Target: target, Value: value}
}

func (a *Arena) NewAsmCall(name string, args []Expr) *AsmCall {
	return &AsmCall{base: a.reserve(), Name: name, Args: append([]Expr(nil), args...)}
}

// NewToken allocates an operator/punctuation node. Pass left=nil for unary
// operators that only use Right.
func (a *Arena) NewToken(tok toktab.Tok, left, right Expr) *Token {
	return &Token{base: a.reserve(), Tok: tok, Left: left, Right: right}
}

// --- Statement / chain constructors ---

// NewStatement allocates a statement with the given code and argument
// expression (args may be nil). Next is left nil; callers splice it into
// the chain.
func (a *Arena) NewStatement(code toktab.Stmt, args Expr) *Statement {
	return &Statement{base: a.reserve(), Code: code, Args: args}
}

// NewLineNumber allocates a line-number marker. num of -1 denotes the
// synthetic "force new line" marker.
func (a *Arena) NewLineNumber(num int) *LineNumber {
	return &LineNumber{base: a.reserve(), Num: num}
}
