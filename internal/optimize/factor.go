package optimize

import (
	"fmt"
	"sort"

	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

// Byte-cost constants for the factoring decision (spec.md §4.I.8). The
// historical compiler tabulates a cheapest-initializer search over
// combinations of small constants and previously factored values; this
// port uses a flat per-kind overhead instead of that combinatorial
// search (see DESIGN.md), since the table itself isn't reproducible
// without the original's exact byte-counting constants.
const (
	numericInlineCost = 7 // bytes per inlined 6-byte-BCD literal occurrence (+1 opcode byte)
	numericVarOverhead = 9 // prelude LET statement overhead for a numeric initializer
	stringVarOverhead  = 6 // prelude DIM+LET overhead beyond the string's own bytes
	refByteCost        = 1 // encoded cost of one variable reference
)

type numConst struct {
	val   float64
	count int
}

type strConst struct {
	bytes string
	count int
}

// factorConstants implements pass 8 (spec.md §4.I.8): introduce
// variables for constants whose total inlined cost exceeds the cost of
// declaring and referencing a variable, subject to the 256-variable
// cap.
func factorConstants(prog *ir.Program) error {
	numCounts := map[float64]int{}
	strCounts := map[string]int{}
	ir.RewriteProgramExprs(prog.Head, func(e ir.Expr) ir.Expr {
		switch n := e.(type) {
		case *ir.ConstNumber:
			numCounts[n.Value]++
		case *ir.ConstString:
			strCounts[string(n.Bytes)]++
		}
		return e
	})

	var nums []numConst
	for v, c := range numCounts {
		nums = append(nums, numConst{v, c})
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i].val < nums[j].val })

	var strs []strConst
	for s, c := range strCounts {
		strs = append(strs, strConst{s, c})
	}
	sort.Slice(strs, func(i, j int) bool { return strs[i].bytes < strs[j].bytes })

	budget := 256 - prog.Vars.Count()
	if budget <= 0 {
		return nil
	}

	numAssign := map[float64]int{}
	strAssign := map[string]int{}
	nIdx, sIdx := 0, 0

	for _, nc := range nums {
		if budget <= 0 {
			break
		}
		inlined := nc.count * numericInlineCost
		factored := numericVarOverhead + nc.count*refByteCost
		if factored >= inlined {
			continue
		}
		name := numericFactorName(nc.val, nIdx)
		nIdx++
		id, err := prog.Vars.NewVar(name, vartab.Float)
		if err != nil {
			continue
		}
		numAssign[nc.val] = id
		budget--
	}
	for _, sc := range strs {
		if budget <= 0 {
			break
		}
		inlined := sc.count * (len(sc.bytes) + 2)
		factored := stringVarOverhead + len(sc.bytes) + sc.count*refByteCost
		if factored >= inlined {
			continue
		}
		name := fmt.Sprintf("__s%d", sIdx)
		sIdx++
		id, err := prog.Vars.NewVar(name, vartab.String)
		if err != nil {
			continue
		}
		strAssign[sc.bytes] = id
		budget--
	}
	if len(numAssign) == 0 && len(strAssign) == 0 {
		return nil
	}

	ir.RewriteProgramExprs(prog.Head, func(e ir.Expr) ir.Expr {
		switch n := e.(type) {
		case *ir.ConstNumber:
			if id, ok := numAssign[n.Value]; ok {
				return prog.Arena.NewVarNumber(id)
			}
		case *ir.ConstString:
			if id, ok := strAssign[string(n.Bytes)]; ok {
				return prog.Arena.NewVarString(id)
			}
		}
		return e
	})

	var prelude ir.ChainNode
	var tail *ir.Statement
	appendStmt := func(s *ir.Statement) {
		if prelude == nil {
			prelude = s
		} else {
			tail.Next = s
		}
		tail = s
	}
	for _, nc := range nums {
		id, ok := numAssign[nc.val]
		if !ok {
			continue
		}
		target := prog.Arena.NewVarNumber(id)
		value := prog.Arena.NewConstNumber(nc.val)
		appendStmt(prog.Arena.NewStatement(toktab.StmtLet, prog.Arena.NewPair(target, value)))
	}
	for _, sc := range strs {
		id, ok := strAssign[sc.bytes]
		if !ok {
			continue
		}
		target := prog.Arena.NewVarString(id)
		value := prog.Arena.NewConstString([]byte(sc.bytes))
		appendStmt(prog.Arena.NewStatement(toktab.StmtDim, prog.Arena.NewVarString(id)))
		appendStmt(prog.Arena.NewStatement(toktab.StmtLet, prog.Arena.NewPair(target, value)))
	}
	if prelude != nil {
		tail.Next = prog.Head
		prog.Head = prelude
	}
	return nil
}

// numericFactorName synthesizes __n<k>, __n_<k> (negative), or
// __n<int>_<frac> per spec.md §4.I.8's naming scheme.
func numericFactorName(v float64, idx int) string {
	if v < 0 {
		return fmt.Sprintf("__n_%d", idx)
	}
	if v == float64(int64(v)) {
		return fmt.Sprintf("__n%d", idx)
	}
	ip := int64(v)
	fp := int64((v - float64(ip)) * 1e6)
	if fp < 0 {
		fp = -fp
	}
	return fmt.Sprintf("__n%d_%d", ip, fp)
}
