package optimize

import (
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// collapseIfGoto implements pass 9 (spec.md §4.I.9): `IF e THEN : GOTO n
// : ENDIF_INVISIBLE` becomes `IF e THEN n`, the historical IF-with-target
// form, whenever the GOTO is the only statement in the THEN and its
// target is a constant line number.
//
// Component H desugars a single-line `IF e THEN stmts` into a
// StmtIfThen skip-guard — Args = Pair{NOT e, skip-label} — followed by
// stmts, followed by the skip label. This pass looks for the case where,
// after every other optimizer pass, exactly one statement (a GO_S) is
// left between the guard and its own skip label: that is precisely the
// collapsible pattern, and it folds the three nodes into one
// StmtIfNumber, restoring e's original polarity.
func collapseIfGoto(prog *ir.Program) error {
	var prev *ir.Statement
	for n := prog.Head; n != nil; {
		s, ok := n.(*ir.Statement)
		if !ok {
			prev, n = nil, ir.Next(n)
			continue
		}
		if collapsed := tryCollapse(prog, s); collapsed != nil {
			if prev != nil {
				prev.Next = collapsed
			} else {
				prog.Head = collapsed
			}
			prev, n = collapsed, ir.Next(collapsed)
			continue
		}
		prev, n = s, ir.Next(s)
	}
	return nil
}

func tryCollapse(prog *ir.Program, s *ir.Statement) *ir.Statement {
	if s.Code != toktab.StmtIfThen {
		return nil
	}
	guard, ok := s.Args.(*ir.Pair)
	if !ok {
		return nil
	}
	skipLbl, ok := guard.B.(*ir.VarLabel)
	if !ok {
		return nil
	}
	body, ok := s.Next.(*ir.Statement)
	if !ok || body.Code != toktab.StmtGoLabel {
		return nil
	}
	target, ok := body.Args.(*ir.VarLabel)
	if !ok {
		return nil
	}
	after, ok := body.Next.(*ir.Statement)
	if !ok || after.Code != toktab.StmtLabel {
		return nil
	}
	lbl, ok := after.Args.(*ir.VarLabel)
	if !ok || lbl.ID != skipLbl.ID {
		return nil
	}

	cond := negate(prog, guard.A)
	out := prog.Arena.NewStatement(toktab.StmtIfNumber, prog.Arena.NewPair(cond, prog.Arena.NewVarLabel(target.ID)))
	out.Next = after.Next
	return out
}

// negate returns the logical negation of cond, collapsing a double
// negation rather than wrapping it.
func negate(prog *ir.Program, cond ir.Expr) ir.Expr {
	if t, ok := cond.(*ir.Token); ok && t.Tok == toktab.TokNot {
		return t.Right
	}
	return prog.Arena.NewToken(toktab.TokNot, nil, cond)
}
