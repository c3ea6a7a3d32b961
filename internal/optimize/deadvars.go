package optimize

import (
	"sort"

	"tbxlc/internal/ir"
)

// removeDeadVariables implements pass 6 (spec.md §4.I.6): count every
// variable's occurrences across the statement chain, drop variables with
// zero uses, and renumber survivors most-used-first when there are more
// than 127 (each reference past index 127 costs one extra encoded
// byte). Always runs, independent of -O level.
//
// The historical implementation distinguishes read vs. write operands
// per statement kind; this port counts every occurrence uniformly
// (reads and writes alike count toward "used" and toward the
// most-referenced-first ordering), since only the read/write split — not
// raw occurrence counting — depends on that distinction, and nothing
// downstream of this pass needs it.
func removeDeadVariables(prog *ir.Program) error {
	refCount := map[int]int{}
	count := func(e ir.Expr) ir.Expr {
		switch n := e.(type) {
		case *ir.VarNumber:
			refCount[n.ID]++
		case *ir.VarString:
			refCount[n.ID]++
		case *ir.VarArray:
			refCount[n.ID]++
		case *ir.VarLabel:
			refCount[n.ID]++
		case *ir.VarAsmLabel:
			refCount[n.ID]++
		case *ir.LabelList:
			for _, id := range n.IDs {
				refCount[id]++
			}
		}
		return e
	}
	for n := prog.Head; n != nil; n = ir.Next(n) {
		if s, ok := n.(*ir.Statement); ok && s.Args != nil {
			ir.RewriteExpr(s.Args, count)
		}
	}

	var keep []int
	for id := 0; id < prog.Vars.Count(); id++ {
		if refCount[id] > 0 {
			keep = append(keep, id)
		}
	}
	if len(keep) == len(refCount) && len(keep) == prog.Vars.Count() && len(keep) <= 127 {
		// Nothing dead and no renumbering benefit; skip the rebuild.
		return nil
	}
	if len(keep) > 127 {
		sort.SliceStable(keep, func(i, j int) bool {
			return refCount[keep[i]] > refCount[keep[j]]
		})
	}

	fresh, remap := prog.Vars.Rebuild(keep)
	remapExpr := func(e ir.Expr) ir.Expr {
		switch n := e.(type) {
		case *ir.VarNumber:
			n.ID = remap[n.ID]
		case *ir.VarString:
			n.ID = remap[n.ID]
		case *ir.VarArray:
			n.ID = remap[n.ID]
		case *ir.VarLabel:
			n.ID = remap[n.ID]
		case *ir.VarAsmLabel:
			n.ID = remap[n.ID]
		case *ir.LabelList:
			for i, id := range n.IDs {
				n.IDs[i] = remap[id]
			}
		}
		return e
	}
	for n := prog.Head; n != nil; n = ir.Next(n) {
		if s, ok := n.(*ir.Statement); ok && s.Args != nil {
			ir.RewriteExpr(s.Args, remapExpr)
		}
	}
	prog.Vars = fresh
	return nil
}
