package optimize

import (
	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// lineNumberLiveness implements pass 5 (spec.md §4.I.5): mark every
// label that a GO_S/ON_GO/ON_EXEC/IF_NUMBER/TRAP equivalent references
// (by this point in the pipeline control flow has already been
// desugared to these label-based forms by component H), then sweep
// every LBL_S statement whose label is unreferenced into a hidden REM
// carrying the original line number as a comment.
//
// Grounded on the worklist mark phase of the teacher's dead-code pass
// (std/compiler/dce.go), retargeted from call-graph edges to label
// references.
func lineNumberLiveness(prog *ir.Program, d *diag.Sink) error {
	live := map[int]bool{}
	markRefs := func(e ir.Expr) ir.Expr {
		switch n := e.(type) {
		case *ir.VarLabel:
			live[n.ID] = true
		case *ir.LabelList:
			for _, id := range n.IDs {
				live[id] = true
			}
		}
		return e
	}

	for n := prog.Head; n != nil; n = ir.Next(n) {
		s, ok := n.(*ir.Statement)
		if !ok || s.Args == nil || s.Code == toktab.StmtLabel {
			// The defining LBL_S's own Args names the label being
			// defined, not a reference to it; skip it here.
			continue
		}
		ir.RewriteExpr(s.Args, markRefs)
	}

	for n := prog.Head; n != nil; n = ir.Next(n) {
		s, ok := n.(*ir.Statement)
		if !ok || s.Code != toktab.StmtLabel {
			continue
		}
		vl, ok := s.Args.(*ir.VarLabel)
		if !ok || live[vl.ID] {
			continue
		}
		name := prog.Vars.LongName(vl.ID)
		s.Code = toktab.StmtRemHidden
		s.Args = prog.Arena.NewData([]byte("unused label " + name))
		d.Warnf(prog.Arena.File(), s.SourceLine(), "label %s is never referenced; a STOP/CONT/DEL/RENUM/LIST near it may be perturbed", name)
	}
	return nil
}
