package desugar_test

import (
	"bytes"
	"testing"

	"tbxlc/internal/desugar"
	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

func newProgram(t *testing.T) *ir.Program {
	t.Helper()
	return ir.NewProgram("p", "test.bas")
}

func chainFrom(stmts ...*ir.Statement) *ir.Statement {
	for i := 0; i+1 < len(stmts); i++ {
		stmts[i].Next = stmts[i+1]
	}
	return stmts[0]
}

func collectStmts(head ir.ChainNode) []*ir.Statement {
	var out []*ir.Statement
	for n := head; n != nil; n = ir.Next(n) {
		if s, ok := n.(*ir.Statement); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestDoLoopBecomesLabelAndBackjump(t *testing.T) {
	p := newProgram(t)
	a := p.Arena

	doStmt := a.NewStatement(toktab.StmtDo, nil)
	printStmt := a.NewStatement(toktab.StmtPrint, a.NewConstNumber(1))
	loopStmt := a.NewStatement(toktab.StmtLoop, nil)
	p.Head = chainFrom(doStmt, printStmt, loopStmt)

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err != nil {
		t.Fatal(err)
	}

	stmts := collectStmts(p.Head)
	// LBL_S L1, PRINT, GO_S L1, LBL_S L2
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}
	if stmts[0].Code != toktab.StmtLabel || stmts[3].Code != toktab.StmtLabel {
		t.Errorf("expected label bookends, got %v / %v", stmts[0].Code, stmts[3].Code)
	}
	if stmts[2].Code != toktab.StmtGoLabel {
		t.Errorf("expected GO_S back-jump, got %v", stmts[2].Code)
	}
	l1 := stmts[0].Args.(*ir.VarLabel).ID
	back := stmts[2].Args.(*ir.VarLabel).ID
	if l1 != back {
		t.Errorf("back-jump should target the loop's own top label")
	}
}

func TestExitTargetsLoopEnd(t *testing.T) {
	p := newProgram(t)
	a := p.Arena

	doStmt := a.NewStatement(toktab.StmtDo, nil)
	exitStmt := a.NewStatement(toktab.StmtExit, nil)
	loopStmt := a.NewStatement(toktab.StmtLoop, nil)
	p.Head = chainFrom(doStmt, exitStmt, loopStmt)

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err != nil {
		t.Fatal(err)
	}

	stmts := collectStmts(p.Head)
	// LBL_S L1, GO_S L2 (exit), GO_S L1 (back-jump), LBL_S L2
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}
	exitTarget := stmts[1].Args.(*ir.VarLabel).ID
	tailLabel := stmts[3].Args.(*ir.VarLabel).ID
	if exitTarget != tailLabel {
		t.Errorf("EXIT should jump to the loop's exit label, got %d want %d", exitTarget, tailLabel)
	}
}

func TestLoopWithoutDoIsNestingError(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	loopStmt := a.NewStatement(toktab.StmtLoop, nil)
	p.Head = chainFrom(loopStmt)

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err == nil {
		t.Error("expected a nesting error for LOOP without DO")
	}
}

func TestSingleLineIfThenKeepsCollapsibleGuardShape(t *testing.T) {
	p := newProgram(t)
	a := p.Arena

	cond := a.NewToken(toktab.TokGt, a.NewVarNumber(mustVar(p, "X")), a.NewConstNumber(0))
	ifStmt := a.NewStatement(toktab.StmtIfThen, cond)
	printStmt := a.NewStatement(toktab.StmtPrint, a.NewConstNumber(1))
	endifStmt := a.NewStatement(toktab.StmtEndifInvisible, nil)
	p.Head = chainFrom(ifStmt, printStmt, endifStmt)

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err != nil {
		t.Fatal(err)
	}

	stmts := collectStmts(p.Head)
	// IF_THEN(NOT cond, L1), PRINT, LBL_S L1 — kept as StmtIfThen so the
	// optimizer's IF-GOTO-collapse pass has something to fold.
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	if stmts[0].Code != toktab.StmtIfThen {
		t.Errorf("expected a collapsible IF_THEN guard, got %v", stmts[0].Code)
	}
	pair := stmts[0].Args.(*ir.Pair)
	notTok, ok := pair.A.(*ir.Token)
	if !ok || notTok.Tok != toktab.TokNot {
		t.Errorf("condition should be negated, got %#v", pair.A)
	}
}

func TestGotoResolvesToSharedLineLabel(t *testing.T) {
	p := newProgram(t)
	a := p.Arena

	gotoStmt := a.NewStatement(toktab.StmtGoto, a.NewConstNumber(100))
	ln := a.NewLineNumber(100)
	endStmt := a.NewStatement(toktab.StmtEnd, nil)
	gotoStmt.Next = ln
	ln.Next = endStmt
	p.Head = gotoStmt

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err != nil {
		t.Fatal(err)
	}

	stmts := collectStmts(p.Head)
	if stmts[0].Code != toktab.StmtGoLabel {
		t.Fatalf("expected GO_S, got %v", stmts[0].Code)
	}
	if stmts[1].Code != toktab.StmtLabel {
		t.Fatalf("expected LBL_S from the line-number marker, got %v", stmts[1].Code)
	}
	target := stmts[0].Args.(*ir.VarLabel).ID
	defined := stmts[1].Args.(*ir.VarLabel).ID
	if target != defined {
		t.Errorf("GOTO 100 should resolve to line 100's own label")
	}
	if p.Vars.LongName(target) != "@_lin_100" {
		t.Errorf("expected canonical line-label name, got %q", p.Vars.LongName(target))
	}
}

func TestForNextDesugarsToSignAwareLoop(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	i := mustVar(p, "I")

	spec := a.NewForSpec(i, a.NewConstNumber(1), a.NewConstNumber(10), nil)
	forStmt := a.NewStatement(toktab.StmtFor, spec)
	printStmt := a.NewStatement(toktab.StmtPrint, a.NewVarNumber(i))
	nextStmt := a.NewStatement(toktab.StmtNext, a.NewVarNumber(i))
	p.Head = chainFrom(forStmt, printStmt, nextStmt)

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err != nil {
		t.Fatal(err)
	}

	stmts := collectStmts(p.Head)
	var sawPrint, sawIncrement bool
	var ifCount int
	for _, s := range stmts {
		switch s.Code {
		case toktab.StmtPrint:
			sawPrint = true
		case toktab.StmtIfNumber:
			ifCount++
		case toktab.StmtLet:
			if pair, ok := s.Args.(*ir.Pair); ok {
				if vn, ok := pair.A.(*ir.VarNumber); ok && vn.ID == i {
					if _, isAdd := pair.B.(*ir.Token); isAdd {
						sawIncrement = true
					}
				}
			}
		}
	}
	if !sawPrint || !sawIncrement {
		t.Errorf("expected body and increment to survive: print=%v increment=%v", sawPrint, sawIncrement)
	}
	if ifCount != 2 {
		t.Errorf("expected 2 IF_NUMBER tests (entry guard + back-edge), got %d", ifCount)
	}
	// No FOR/NEXT should remain.
	for _, s := range stmts {
		if s.Code == toktab.StmtFor || s.Code == toktab.StmtNext {
			t.Errorf("FOR/NEXT should not survive desugar, found %v", s.Code)
		}
	}
}

func TestMismatchedNextVariableIsError(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	i := mustVar(p, "I")
	j := mustVar(p, "J")

	spec := a.NewForSpec(i, a.NewConstNumber(1), a.NewConstNumber(10), nil)
	forStmt := a.NewStatement(toktab.StmtFor, spec)
	nextStmt := a.NewStatement(toktab.StmtNext, a.NewVarNumber(j))
	p.Head = chainFrom(forStmt, nextStmt)

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err == nil {
		t.Error("expected a NEXT/FOR variable mismatch error")
	}
}

func TestClsRewritesToPut(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	clsStmt := a.NewStatement(toktab.StmtCls, nil)
	p.Head = chainFrom(clsStmt)

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := desugar.Run(p, d); err != nil {
		t.Fatal(err)
	}
	stmts := collectStmts(p.Head)
	if stmts[0].Code != toktab.StmtPut {
		t.Fatalf("expected PUT, got %v", stmts[0].Code)
	}
	if c, ok := stmts[0].Args.(*ir.ConstNumber); !ok || c.Value != 125 {
		t.Errorf("expected PUT 125, got %#v", stmts[0].Args)
	}
}

func mustVar(p *ir.Program, name string) int {
	id, err := p.Vars.NewVar(name, vartab.Float)
	if err != nil {
		panic(err)
	}
	return id
}
