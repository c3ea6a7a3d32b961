package lower_test

import (
	"bytes"
	"testing"

	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/lower"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

func TestLowerRenamesParamsAndConvertsCallSite(t *testing.T) {
	p := ir.NewProgram("p", "test.bas")
	a := p.Arena

	procLabel, _ := p.Vars.NewVar("GREET", vartab.Label)
	origParam, _ := p.Vars.NewVar("NAME", vartab.String)

	def := a.NewProcDef(procLabel, []int{origParam}, nil)
	procStmt := a.NewStatement(toktab.StmtProcVar, def)

	// Body: PRINT NAME
	printStmt := a.NewStatement(toktab.StmtPrint, a.NewVarString(origParam))
	endProc := a.NewStatement(toktab.StmtEndProc, nil)
	procStmt.Next = printStmt
	printStmt.Next = endProc

	callExpr := a.NewConstString([]byte("WORLD"))
	call := a.NewExecCall(procLabel, []ir.Expr{callExpr})
	callStmt := a.NewStatement(toktab.StmtExecPar, call)
	endProc.Next = callStmt

	p.Head = procStmt

	d := diag.New(&bytes.Buffer{}, diag.Quiet)
	if err := lower.Run(p, d); err != nil {
		t.Fatal(err)
	}

	if procStmt.Code != toktab.StmtProc {
		t.Errorf("PROC_VAR should become PROC, got %v", procStmt.Code)
	}
	vs, ok := printStmt.Args.(*ir.VarString)
	if !ok || p.Vars.LongName(vs.ID) != "_param_GREET_NAME" {
		t.Errorf("body reference should be renamed to the synthetic param, got %#v", printStmt.Args)
	}

	// Walk to the call site: a DIM prelude may now precede everything.
	var stmts []*ir.Statement
	for n := p.Head; n != nil; n = ir.Next(n) {
		if s, ok := n.(*ir.Statement); ok {
			stmts = append(stmts, s)
		}
	}
	found := false
	for i, s := range stmts {
		if s.Code == toktab.StmtLetInv {
			found = true
			pair := s.Args.(*ir.Pair)
			if _, ok := pair.B.(*ir.ConstString); !ok {
				t.Errorf("LET_INV value should be the call-site expression")
			}
			if i+1 >= len(stmts) || stmts[i+1].Code != toktab.StmtExec {
				t.Errorf("LET_INV should immediately precede the converted EXEC")
			}
		}
	}
	if !found {
		t.Error("expected a synthesized LET_INV statement")
	}
}
