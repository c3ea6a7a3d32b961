package codegen_test

import (
	"bytes"
	"strings"
	"testing"

	"tbxlc/internal/codegen"
	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

func newProgram(t *testing.T) *ir.Program {
	t.Helper()
	return ir.NewProgram("p", "test.bas")
}

func mustVar(t *testing.T, p *ir.Program, name string, typ vartab.Type) int {
	t.Helper()
	id, err := p.Vars.NewVar(name, typ)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestLowerLetIntegerLiteralUsesIAssign(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	x := mustVar(t, p, "X", vartab.Float)

	s := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(x), a.NewConstNumber(7)))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := codegen.Run(p, d); err != nil {
		t.Fatal(err)
	}
	if s.Code != toktab.StmtMLet {
		t.Fatalf("expected MLET, got %v", s.Code)
	}
	ra, ok := s.Args.(*ir.RegAssign)
	if !ok {
		t.Fatalf("expected RegAssign, got %#v", s.Args)
	}
	if ra.Kind != toktab.TokIAssign {
		t.Errorf("expected I_ASGN for a small integer literal, got %v", ra.Kind)
	}
}

func TestLowerLetComparisonUsesBAssign(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	x := mustVar(t, p, "X", vartab.Float)
	y := mustVar(t, p, "Y", vartab.Float)
	flag := mustVar(t, p, "FLAG", vartab.Float)

	cond := a.NewToken(toktab.TokGt, a.NewVarNumber(x), a.NewVarNumber(y))
	s := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(flag), cond))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := codegen.Run(p, d); err != nil {
		t.Fatal(err)
	}
	ra := s.Args.(*ir.RegAssign)
	if ra.Kind != toktab.TokBAssign {
		t.Errorf("expected B_ASGN for a comparison, got %v", ra.Kind)
	}
}

func TestLowerLetVariableValueFallsThroughToFAssign(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	x := mustVar(t, p, "X", vartab.Float)
	y := mustVar(t, p, "Y", vartab.Float)

	s := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(x), a.NewVarNumber(y)))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := codegen.Run(p, d); err != nil {
		t.Fatal(err)
	}
	ra := s.Args.(*ir.RegAssign)
	if ra.Kind != toktab.TokFAssign {
		t.Errorf("expected F_ASGN when the value's range is unknown, got %v", ra.Kind)
	}
}

func TestLowerLetArrayElementUsesIndirectStore(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	arr := mustVar(t, p, "A", vartab.Array)

	target := a.NewToken(toktab.TokLParen, a.NewVarArray(arr), a.NewConstNumber(1))
	s := a.NewStatement(toktab.StmtLet, a.NewPair(target, a.NewConstNumber(5)))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := codegen.Run(p, d); err != nil {
		t.Fatal(err)
	}
	ra := s.Args.(*ir.RegAssign)
	if ra.Kind != toktab.TokIStore {
		t.Errorf("expected I_XSTO for an array element store, got %v", ra.Kind)
	}
}

func TestLowerLetStringTargetIsUntouched(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	str := mustVar(t, p, "S", vartab.String)

	s := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarString(str), a.NewConstString([]byte("hi"))))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := codegen.Run(p, d); err != nil {
		t.Fatal(err)
	}
	if s.Code != toktab.StmtLet {
		t.Errorf("string LET should stay a plain LET, got %v", s.Code)
	}
}

func TestLowerPokeBecomesExecAsm(t *testing.T) {
	p := newProgram(t)
	a := p.Arena

	s := a.NewStatement(toktab.StmtPoke, a.NewPair(a.NewConstNumber(752), a.NewConstNumber(1)))
	p.Head = s

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := codegen.Run(p, d); err != nil {
		t.Fatal(err)
	}
	if s.Code != toktab.StmtExecAsm {
		t.Fatalf("expected EXEC_ASM, got %v", s.Code)
	}
	call := s.Args.(*ir.AsmCall)
	if call.Name != "bas_poke" || len(call.Args) != 2 {
		t.Errorf("expected bas_poke(752,1), got %q with %d args", call.Name, len(call.Args))
	}
}

func TestRenderProducesLabelAndAssignmentLines(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	x := mustVar(t, p, "X", vartab.Float)
	lbl, err := p.Vars.NewVar("@_lbl_1", vartab.Label)
	if err != nil {
		t.Fatal(err)
	}

	letStmt := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(x), a.NewConstNumber(1)))
	labelStmt := a.NewStatement(toktab.StmtLabel, a.NewVarLabel(lbl))
	letStmt.Next = labelStmt
	p.Head = letStmt

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := codegen.Run(p, d); err != nil {
		t.Fatal(err)
	}
	out := codegen.Render(p, codegen.DefaultRenderConfig())
	if !strings.Contains(out, "I_ASGN X,1") {
		t.Errorf("expected an I_ASGN line, got:\n%s", out)
	}
	if !strings.Contains(out, "@_lbl_1:") {
		t.Errorf("expected a label line, got:\n%s", out)
	}
}
