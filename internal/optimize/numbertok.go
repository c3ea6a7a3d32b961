package optimize

import (
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// substituteSmallInts implements pass 3 (spec.md §4.I.3): after folding,
// numeric constants equal to 0..3 are replaced by the dedicated
// zero-operand tokens TOK_PER_0..TOK_PER_3, each six bytes cheaper to
// encode than a full 6-byte BCD literal.
func substituteSmallInts(prog *ir.Program) (bool, error) {
	changed := false
	ir.RewriteProgramExprs(prog.Head, func(e ir.Expr) ir.Expr {
		cn, ok := e.(*ir.ConstNumber)
		if !ok {
			return e
		}
		n := int(cn.Value)
		if float64(n) != cn.Value {
			return e
		}
		tok, ok := toktab.SmallIntToken(n)
		if !ok {
			return e
		}
		changed = true
		return prog.Arena.NewToken(tok, nil, nil)
	})
	return changed, nil
}
