package optimize

import (
	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
)

// replaceDefs implements pass 1 (spec.md §4.I.1): every DefNumber/
// DefString node is replaced by the literal value it names. This always
// runs, independent of the -O level, since later passes assume no
// DefNumber/DefString nodes remain.
func replaceDefs(prog *ir.Program, d *diag.Sink) error {
	var failed error
	ir.RewriteProgramExprs(prog.Head, func(e ir.Expr) ir.Expr {
		switch n := e.(type) {
		case *ir.DefNumber:
			if v, ok := prog.Defs.GetNumber(n.ID); ok {
				return prog.Arena.NewConstNumber(v)
			}
		case *ir.DefString:
			if s, ok := prog.Defs.GetString(n.ID); ok {
				return prog.Arena.NewConstString(s)
			}
		}
		return e
	})
	return failed
}
