// Package lower implements semantic lowering of PROC/EXEC with
// parameters (component G): convert_proc_exec rewrites parameterized
// procedures to the flat PROC/EXEC form the historical interpreter
// actually supports, synthesizing per-call assignment statements and
// per-procedure synthetic variables. Grounded on spec.md §4.G; since
// the front end (and therefore any real proc-parameter source syntax)
// is out of scope, this package's input shapes (ir.ProcDef, ir.ExecCall)
// are this compiler's own chosen contract for what the front-end
// adapter (component M) must already have resolved by the time lowering
// runs.
package lower

import (
	"fmt"

	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

// defaultStringParamDim is the DIM size lowering gives a synthesized
// string parameter/local when the front end didn't record an explicit
// one. The historical front end carries this per-declaration; absent
// that information here, every synthesized string gets the same
// generous default, documented as a simplification in DESIGN.md.
const defaultStringParamDim = 64

type paramInfo struct {
	origID  int
	synthID int
}

type procInfo struct {
	label  int
	params []paramInfo
}

// Run lowers every PROC_VAR/EXEC_PAR/ON_EXEC in prog in place.
func Run(prog *ir.Program, d *diag.Sink) error {
	procs := map[int]*procInfo{}
	var stringDimTargets []int

	// Pass 1: descriptors, parameter/local renaming, PROC_VAR -> PROC.
	var prev ir.ChainNode
	for n := prog.Head; n != nil; n = ir.Next(n) {
		s, ok := n.(*ir.Statement)
		if !ok || s.Code != toktab.StmtProcVar {
			prev = n
			continue
		}
		def, ok := s.Args.(*ir.ProcDef)
		if !ok {
			prev = n
			continue
		}
		name := prog.Vars.LongName(def.Label)
		pi := &procInfo{label: def.Label}
		remap := map[int]int{}

		for _, origID := range def.Params {
			typ := prog.Vars.TypeOf(origID)
			synthName := fmt.Sprintf("_param_%s_%s", name, prog.Vars.LongName(origID))
			synthID, err := prog.Vars.NewVar(synthName, typ)
			if err != nil {
				return d.Errorf(prog.Arena.File(), s.SourceLine(), "lowering PROC %s: %v", name, err)
			}
			pi.params = append(pi.params, paramInfo{origID: origID, synthID: synthID})
			remap[origID] = synthID
			if typ == vartab.String {
				stringDimTargets = append(stringDimTargets, synthID)
			}
		}
		for _, origID := range def.Locals {
			typ := prog.Vars.TypeOf(origID)
			synthName := fmt.Sprintf("_local_%s_%s", name, prog.Vars.LongName(origID))
			synthID, err := prog.Vars.NewVar(synthName, typ)
			if err != nil {
				return d.Errorf(prog.Arena.File(), s.SourceLine(), "lowering PROC %s: %v", name, err)
			}
			remap[origID] = synthID
			if typ == vartab.String {
				stringDimTargets = append(stringDimTargets, synthID)
			}
		}
		procs[def.Label] = pi

		renameRefs(prog, s.Next, toktab.StmtEndProc, remap)

		s.Code = toktab.StmtProc
		s.Args = prog.Arena.NewVarLabel(def.Label)
		prev = n
	}

	// Pass 2: EXEC_PAR call-site conversion (and ON_EXEC arity validation).
	prev = nil
	for n := prog.Head; n != nil; {
		s, ok := n.(*ir.Statement)
		if !ok {
			prev, n = n, ir.Next(n)
			continue
		}
		switch s.Code {
		case toktab.StmtExecPar:
			call, ok := s.Args.(*ir.ExecCall)
			if !ok {
				prev, n = n, ir.Next(n)
				continue
			}
			pi, known := procs[call.Label]
			if !known {
				return d.Errorf(prog.Arena.File(), s.SourceLine(), "EXEC to undeclared procedure %s", prog.Vars.LongName(call.Label))
			}
			if len(call.Args) != len(pi.params) {
				return d.Errorf(prog.Arena.File(), s.SourceLine(), "procedure %s called with %d arguments, expected %d", prog.Vars.LongName(call.Label), len(call.Args), len(pi.params))
			}
			prelude := buildPrelude(prog, pi, call.Args)
			// Right-to-left argument evaluation order, per spec.md §4.G.4.
			var head, tail *ir.Statement
			for i := len(prelude) - 1; i >= 0; i-- {
				if head == nil {
					head, tail = prelude[i], prelude[i]
				} else {
					tail.Next = prelude[i]
					tail = prelude[i]
				}
			}
			s.Code = toktab.StmtExec
			s.Args = prog.Arena.NewVarLabel(call.Label)
			if head != nil {
				tail.Next = s
				if prev != nil {
					ir.SetNext(prev, head)
				} else {
					prog.Head = head
				}
				prev = tail
			} else {
				prev = s
			}
		case toktab.StmtOnExec:
			p, ok := s.Args.(*ir.Pair)
			if ok {
				if ll, ok := p.B.(*ir.LabelList); ok {
					for _, lbl := range ll.IDs {
						if pi, known := procs[lbl]; known && len(pi.params) > 0 {
							d.Warnf(prog.Arena.File(), s.SourceLine(), "ON...EXEC target %s takes parameters; call ignores them", prog.Vars.LongName(lbl))
						}
					}
				}
			}
			prev = s
		default:
			prev = s
		}
		n = ir.Next(s)
	}

	emitDimPrelude(prog, stringDimTargets)
	return nil
}

// renameRefs substitutes every reference in remap across the statement
// range (exclusive of the defining PROC_VAR itself) up to and including
// the statement coded stop.
func renameRefs(prog *ir.Program, n ir.ChainNode, stop toktab.Stmt, remap map[int]int) {
	rewrite := func(e ir.Expr) ir.Expr {
		switch v := e.(type) {
		case *ir.VarNumber:
			if nid, ok := remap[v.ID]; ok {
				return prog.Arena.NewVarNumber(nid)
			}
		case *ir.VarString:
			if nid, ok := remap[v.ID]; ok {
				return prog.Arena.NewVarString(nid)
			}
		case *ir.VarArray:
			if nid, ok := remap[v.ID]; ok {
				return prog.Arena.NewVarArray(nid)
			}
		}
		return e
	}
	for ; n != nil; n = ir.Next(n) {
		s, ok := n.(*ir.Statement)
		if !ok {
			continue
		}
		if s.Args != nil {
			s.Args = ir.RewriteExpr(s.Args, rewrite)
		}
		if s.Code == stop {
			return
		}
	}
}

// buildPrelude synthesizes the hidden LET_INV statements assigning each
// call-site expression to its corresponding synthetic parameter.
func buildPrelude(prog *ir.Program, pi *procInfo, args []ir.Expr) []*ir.Statement {
	out := make([]*ir.Statement, len(pi.params))
	for i, p := range pi.params {
		var target ir.Expr
		if prog.Vars.TypeOf(p.synthID) == vartab.String {
			target = prog.Arena.NewVarString(p.synthID)
		} else {
			target = prog.Arena.NewVarNumber(p.synthID)
		}
		out[i] = prog.Arena.NewStatement(toktab.StmtLetInv, prog.Arena.NewPair(target, args[i]))
	}
	return out
}

// emitDimPrelude prepends one DIM statement per synthesized string
// parameter/local to the program, each sized to defaultStringParamDim.
// Component H (control-flow desugar) unconditionally splits any
// multi-variable DIM into one statement per variable, so batching them
// here (the historical "group up to 14 per statement" step) would be
// undone again before code generation; this port emits them singly from
// the start and notes the equivalence in DESIGN.md.
func emitDimPrelude(prog *ir.Program, ids []int) {
	if len(ids) == 0 {
		return
	}
	var head, tail *ir.Statement
	for _, id := range ids {
		dimArgs := prog.Arena.NewToken(toktab.TokLParen, prog.Arena.NewVarString(id), prog.Arena.NewConstNumber(defaultStringParamDim))
		s := prog.Arena.NewStatement(toktab.StmtDim, dimArgs)
		if head == nil {
			head, tail = s, s
		} else {
			tail.Next = s
			tail = s
		}
	}
	tail.Next = prog.Head
	prog.Head = head
}
