package optimize

import (
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// assignTarget returns the variable id a LET/LET_INV statement writes,
// provided the target is a plain scalar (not an array element), along
// with whether it is numeric.
func assignTarget(s *ir.Statement) (id int, numeric bool, ok bool) {
	if s.Code != toktab.StmtLet && s.Code != toktab.StmtLetInv {
		return 0, false, false
	}
	p, ok := s.Args.(*ir.Pair)
	if !ok {
		return 0, false, false
	}
	switch t := p.A.(type) {
	case *ir.VarNumber:
		return t.ID, true, true
	case *ir.VarString:
		return t.ID, false, true
	}
	return 0, false, false
}

// constOperand evaluates e as a trivial constant expression: a bare
// constant, or a ±a op b combination of constants with op in
// {+,-,*,/}, per spec.md §4.I.7.
func constOperand(e ir.Expr) (ir.Expr, bool) {
	switch n := e.(type) {
	case *ir.ConstNumber:
		return n, true
	case *ir.ConstString:
		return n, true
	case *ir.Token:
		if n.Tok == toktab.TokUMinus {
			if v, ok := n.Right.(*ir.ConstNumber); ok {
				return &ir.ConstNumber{Value: -v.Value}, true
			}
			return nil, false
		}
		l, lok := n.Left.(*ir.ConstNumber)
		r, rok := n.Right.(*ir.ConstNumber)
		if !lok || !rok {
			return nil, false
		}
		switch n.Tok {
		case toktab.TokAdd:
			return &ir.ConstNumber{Value: l.Value + r.Value}, true
		case toktab.TokSub:
			return &ir.ConstNumber{Value: l.Value - r.Value}, true
		case toktab.TokMul:
			return &ir.ConstNumber{Value: l.Value * r.Value}, true
		case toktab.TokDiv:
			return &ir.ConstNumber{Value: l.Value / r.Value}, true
		}
	}
	return nil, false
}

// propagateFixedVars implements pass 7 (spec.md §4.I.7): a variable
// written exactly once, with a constant (or trivial constant
// expression), has every read replaced by that constant and its unique
// assignment demoted to a hidden comment. Runs to a fixpoint (a caller
// loop calls this repeatedly until it reports no change).
func propagateFixedVars(prog *ir.Program) (bool, error) {
	writeCount := map[int]int{}
	writeStmt := map[int]*ir.Statement{}
	for n := prog.Head; n != nil; n = ir.Next(n) {
		s, ok := n.(*ir.Statement)
		if !ok {
			continue
		}
		if id, _, ok := assignTarget(s); ok {
			writeCount[id]++
			writeStmt[id] = s
		}
	}

	fixed := map[int]ir.Expr{}
	for id, cnt := range writeCount {
		if cnt != 1 {
			continue
		}
		s := writeStmt[id]
		p := s.Args.(*ir.Pair)
		if v, ok := constOperand(p.B); ok {
			fixed[id] = v
		}
	}
	if len(fixed) == 0 {
		return false, nil
	}

	changed := false
	substitute := func(e ir.Expr) ir.Expr {
		switch n := e.(type) {
		case *ir.VarNumber:
			if v, ok := fixed[n.ID]; ok {
				changed = true
				return v
			}
		case *ir.VarString:
			if v, ok := fixed[n.ID]; ok {
				changed = true
				return v
			}
		}
		return e
	}

	for n := prog.Head; n != nil; n = ir.Next(n) {
		s, ok := n.(*ir.Statement)
		if !ok || s.Args == nil {
			continue
		}
		if defID, _, isAssign := assignTarget(s); isAssign {
			if s == writeStmt[defID] {
				if _, isFixed := fixed[defID]; isFixed {
					// The defining statement itself: demoted below, not
					// rewritten here.
					continue
				}
			}
			// An assignment's target (Pair.A) is a write, never a read to
			// substitute; only its value (Pair.B) can contain reads.
			p := s.Args.(*ir.Pair)
			p.B = ir.RewriteExpr(p.B, substitute)
			continue
		}
		s.Args = ir.RewriteExpr(s.Args, substitute)
	}

	for id := range fixed {
		s := writeStmt[id]
		s.Code = toktab.StmtRemHidden
		s.Args = prog.Arena.NewData([]byte("constant-propagated assignment"))
		changed = true
	}
	return changed, nil
}
