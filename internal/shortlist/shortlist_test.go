package shortlist_test

import (
	"strings"
	"testing"

	"tbxlc/internal/ir"
	"tbxlc/internal/shortlist"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

func newProgram(t *testing.T) *ir.Program {
	t.Helper()
	return ir.NewProgram("p", "test.bas")
}

func TestRenderSimpleLet(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	x, err := p.Vars.NewVar("X", vartab.Float)
	if err != nil {
		t.Fatal(err)
	}
	letStmt := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(x), a.NewConstNumber(1)))
	ln := a.NewLineNumber(10)
	ln.Next = letStmt
	p.Head = ln

	out := shortlist.Render(p, shortlist.DefaultConfig())
	if !strings.Contains(out, "10 A=1") {
		t.Errorf("expected %q in output, got:\n%s", "10 A=1", out)
	}
}

func TestRenderScientificLineNumbers(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	endStmt := a.NewStatement(toktab.StmtEnd, nil)
	ln := a.NewLineNumber(10000)
	ln.Next = endStmt
	p.Head = ln

	out := shortlist.Render(p, shortlist.DefaultConfig())
	if !strings.Contains(out, "1E4") {
		t.Errorf("expected scientific line number 1E4, got:\n%s", out)
	}
}

func TestRenderEmptyLinePadsWithDot(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	fake := a.NewLineNumber(-1)
	endStmt := a.NewStatement(toktab.StmtEnd, nil)
	fake.Next = endStmt
	p.Head = fake

	out := shortlist.Render(p, shortlist.DefaultConfig())
	if !strings.Contains(out, "0 .\n") {
		t.Errorf("expected a dot-padded fake line, got:\n%s", out)
	}
}

func TestRenderSplitsLongLineAtStatementBoundary(t *testing.T) {
	p := newProgram(t)
	a := p.Arena
	x, err := p.Vars.NewVar("X", vartab.Float)
	if err != nil {
		t.Fatal(err)
	}
	s1 := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(x), a.NewConstNumber(1)))
	s2 := a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(x), a.NewConstNumber(2)))
	s1.Next = s2
	ln := a.NewLineNumber(10)
	ln.Next = s1
	p.Head = ln

	cfg := shortlist.Config{MaxLineChars: 8}
	out := shortlist.Render(p, cfg)
	if strings.Count(out, "\n") < 2 {
		t.Errorf("expected the line to split across at least two output lines, got:\n%s", out)
	}
}
