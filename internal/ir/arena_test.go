package ir_test

import (
	"testing"

	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

func TestAllocationStampsCurrentLine(t *testing.T) {
	a := ir.NewArena("p", "test.bas")
	a.SetPosition("test.bas", 42)
	n := a.NewConstNumber(1)
	if n.SourceLine() != 42 {
		t.Errorf("got line %d, want 42", n.SourceLine())
	}
}

func TestStatementChain(t *testing.T) {
	a := ir.NewArena("p", "test.bas")
	p := ir.NewProgram("p", "test.bas")
	p.Arena = a

	s1 := a.NewStatement(toktab.StmtEnd, nil)
	s2 := a.NewStatement(toktab.StmtEnd, nil)
	s1.Next = s2
	p.Head = s1

	stmts := p.Statements()
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
}

func TestRewriteExprFoldsConstants(t *testing.T) {
	a := ir.NewArena("p", "test.bas")
	left := a.NewConstNumber(1)
	right := a.NewConstNumber(2)
	tok := a.NewToken(toktab.TokAdd, left, right)

	out := ir.RewriteExpr(tok, func(e ir.Expr) ir.Expr {
		if t, ok := e.(*ir.Token); ok && t.Tok == toktab.TokAdd {
			if l, ok := t.Left.(*ir.ConstNumber); ok {
				if r, ok := t.Right.(*ir.ConstNumber); ok {
					return a.NewConstNumber(l.Value + r.Value)
				}
			}
		}
		return e
	})
	cn, ok := out.(*ir.ConstNumber)
	if !ok || cn.Value != 3 {
		t.Errorf("expected folded constant 3, got %#v", out)
	}
}
