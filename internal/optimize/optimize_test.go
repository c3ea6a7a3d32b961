package optimize_test

import (
	"bytes"
	"testing"

	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/optimize"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

func newProgram(t *testing.T) *ir.Program {
	t.Helper()
	return ir.NewProgram("p", "test.bas")
}

func TestFoldConstantsCollapsesArithmetic(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	expr := a.NewToken(toktab.TokAdd, a.NewConstNumber(2), a.NewConstNumber(3))
	s := a.NewStatement(toktab.StmtLet, expr)
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := optimize.Run(p, optimize.ConstFold, d); err != nil {
		t.Fatal(err)
	}
	cn, ok := s.Args.(*ir.ConstNumber)
	if !ok || cn.Value != 5 {
		t.Errorf("expected folded constant 5, got %#v", s.Args)
	}
}

func TestSmallIntSubstitution(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	s := a.NewStatement(toktab.StmtLet, a.NewConstNumber(2))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := optimize.Run(p, optimize.NumberTok, d); err != nil {
		t.Fatal(err)
	}
	tok, ok := s.Args.(*ir.Token)
	if !ok || tok.Tok != toktab.TokPer2 {
		t.Errorf("expected TOK_PER_2, got %#v", s.Args)
	}
}

func TestDeadVariableRemoval(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	used, _ := p.Vars.NewVar("USED", vartab.Float)
	_, _ = p.Vars.NewVar("UNUSED", vartab.Float)

	s := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(used), a.NewConstNumber(1)))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := optimize.Run(p, optimize.None, d); err != nil {
		t.Fatal(err)
	}
	if p.Vars.Count() != 1 {
		t.Errorf("expected 1 surviving variable, got %d", p.Vars.Count())
	}
	if p.Vars.LongName(0) != "USED" {
		t.Errorf("expected survivor to be USED, got %s", p.Vars.LongName(0))
	}
}

func TestFixedVariablePropagation(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	x, _ := p.Vars.NewVar("X", vartab.Float)

	assign := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(x), a.NewConstNumber(7)))
	use := a.NewStatement(toktab.StmtPrint, a.NewVarNumber(x))
	assign.Next = use
	p.Head = assign

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := optimize.Run(p, optimize.FixedVars, d); err != nil {
		t.Fatal(err)
	}
	cn, ok := use.Args.(*ir.ConstNumber)
	if !ok || cn.Value != 7 {
		t.Errorf("expected read of X to be replaced by constant 7, got %#v", use.Args)
	}
	if assign.Code != toktab.StmtRemHidden {
		t.Errorf("expected defining assignment demoted to hidden REM, got %v", assign.Code)
	}
}

func TestCollapseIfGoto(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	target, _ := p.Vars.NewVar("@_lin_200", vartab.Label)
	skip, _ := p.Vars.NewVar("@_lbl_1", vartab.Label)

	cond := a.NewToken(toktab.TokNot, nil, a.NewToken(toktab.TokEq, a.NewVarNumber(mustVar(p, "X")), a.NewConstNumber(1)))
	guard := a.NewStatement(toktab.StmtIfThen, a.NewPair(cond, a.NewVarLabel(skip)))
	jump := a.NewStatement(toktab.StmtGoLabel, a.NewVarLabel(target))
	label := a.NewStatement(toktab.StmtLabel, a.NewVarLabel(skip))
	guard.Next = jump
	jump.Next = label
	p.Head = guard

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := optimize.Run(p, optimize.None, d); err != nil {
		t.Fatal(err)
	}
	first, ok := p.Head.(*ir.Statement)
	if !ok || first.Code != toktab.StmtIfNumber {
		t.Fatalf("expected collapsed IF_NUMBER, got %#v", p.Head)
	}
}

func mustVar(p *ir.Program, name string) int {
	id, err := p.Vars.NewVar(name, vartab.Float)
	if err != nil {
		panic(err)
	}
	return id
}
