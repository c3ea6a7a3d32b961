package optimize

import (
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// commutative lists the operators for which swapping operands preserves
// the result.
var commutative = map[toktab.Tok]bool{
	toktab.TokAdd:     true,
	toktab.TokMul:     true,
	toktab.TokBitAnd:  true,
	toktab.TokBitOr:   true,
	toktab.TokBitExor: true,
	toktab.TokEq:      true,
	toktab.TokNe:      true,
	toktab.TokAnd:     true,
	toktab.TokOr:      true,
}

// commute implements pass 4 (spec.md §4.I.4): for commutative operators,
// swap operands when the right subtree is taller than the left one,
// preferring left-leaning trees. Printed parenthesization is not weighed:
// operands of equal height are never swapped. Swapping non-commutative inverses (a<b to b>a) is
// intentionally left undone, per the spec's own note.
func commute(prog *ir.Program) (bool, error) {
	changed := false
	ir.RewriteProgramExprs(prog.Head, func(e ir.Expr) ir.Expr {
		t, ok := e.(*ir.Token)
		if !ok || !commutative[t.Tok] {
			return e
		}
		if height(t.Right) > height(t.Left) {
			t.Left, t.Right = t.Right, t.Left
			changed = true
		}
		return t
	})
	return changed, nil
}

func height(e ir.Expr) int {
	t, ok := e.(*ir.Token)
	if !ok {
		return 0
	}
	l, r := height(t.Left), height(t.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}
