package frontend_test

import (
	"testing"

	"tbxlc/internal/frontend"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

func TestLineAndEmitBuildChain(t *testing.T) {
	b := frontend.New("p", "test.bas")
	b.Line(10)
	x, err := b.NumberVar("X")
	if err != nil {
		t.Fatal(err)
	}
	b.Emit(toktab.StmtLet, b.Pair(x, b.Number(1)))
	b.Line(20)
	b.Emit(toktab.StmtEnd, nil)

	ln, ok := b.Prog.Head.(*ir.LineNumber)
	if !ok || ln.Num != 10 {
		t.Fatalf("expected first chain node to be LineNumber(10), got %#v", b.Prog.Head)
	}
	stmts := b.Prog.Statements()
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if stmts[0].Code != toktab.StmtLet || stmts[1].Code != toktab.StmtEnd {
		t.Fatalf("unexpected statement codes: %v, %v", stmts[0].Code, stmts[1].Code)
	}
}

func TestFakeLineInsertsNegativeOneMarker(t *testing.T) {
	b := frontend.New("p", "test.bas")
	b.Line(10)
	b.Emit(toktab.StmtEnd, nil)
	b.FakeLine()

	n := b.Prog.Head
	for {
		next := ir.Next(n)
		if next == nil {
			break
		}
		n = next
	}
	ln, ok := n.(*ir.LineNumber)
	if !ok || ln.Num != -1 {
		t.Fatalf("expected trailing LineNumber(-1), got %#v", n)
	}
}

func TestVariableResolutionIsIdempotentByNameAndType(t *testing.T) {
	b := frontend.New("p", "test.bas")
	a1, err := b.NumberVar("X")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := b.NumberVar("X")
	if err != nil {
		t.Fatal(err)
	}
	if a1.ID != a2.ID {
		t.Errorf("expected resolving the same name/type twice to return the same id, got %d and %d", a1.ID, a2.ID)
	}

	s, err := b.StringVar("X")
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == a1.ID {
		t.Errorf("expected X (float) and X$ (string) to be distinct variables, both got id %d", s.ID)
	}
}

func TestGotoBuildsLiteralLineNumberTarget(t *testing.T) {
	b := frontend.New("p", "test.bas")
	target := b.Goto(100)
	if target.Value != 100 {
		t.Errorf("expected GOTO target value 100, got %v", target.Value)
	}
}

func TestOnGotoTargetsBuildsPairOfSelectorAndLineNumberList(t *testing.T) {
	b := frontend.New("p", "test.bas")
	x, err := b.NumberVar("X")
	if err != nil {
		t.Fatal(err)
	}
	args := b.OnGotoTargets(x, []int{10, 20, 30})
	ll, ok := args.B.(*ir.LabelList)
	if !ok {
		t.Fatalf("expected Pair.B to be a LabelList, got %T", args.B)
	}
	if len(ll.IDs) != 3 || ll.IDs[1] != 20 {
		t.Errorf("expected raw line numbers [10 20 30], got %v", ll.IDs)
	}
}

func TestSetColorArgsBuildsRightNestedPair(t *testing.T) {
	b := frontend.New("p", "test.bas")
	c, h, l := b.Number(1), b.Number(2), b.Number(3)
	args := b.SetColorArgs(c, h, l)
	inner, ok := args.B.(*ir.Pair)
	if !ok {
		t.Fatalf("expected Pair.B to be a nested Pair, got %T", args.B)
	}
	if args.A != ir.Expr(c) || inner.A != ir.Expr(h) || inner.B != ir.Expr(l) {
		t.Error("SETCOLOR args not nested as Pair{c, Pair{h, l}}")
	}
}

func TestProcParamsSynthesizesParamAndLocalVariables(t *testing.T) {
	b := frontend.New("p", "test.bas")
	def, err := b.ProcParams("MYPROC",
		[]frontend.Param{{Name: "N", Type: vartab.Float}},
		[]frontend.Param{{Name: "TMP", Type: vartab.String}})
	if err != nil {
		t.Fatal(err)
	}
	if b.Prog.Vars.TypeOf(def.Label) != vartab.Label {
		t.Errorf("expected PROC name to be declared as a Label variable")
	}
	if len(def.Params) != 1 || b.Prog.Vars.TypeOf(def.Params[0]) != vartab.Float {
		t.Errorf("expected one Float parameter, got %v", def.Params)
	}
	if len(def.Locals) != 1 || b.Prog.Vars.TypeOf(def.Locals[0]) != vartab.String {
		t.Errorf("expected one String local, got %v", def.Locals)
	}
}

func TestDimEntryAndDimSingleEntryPassthrough(t *testing.T) {
	b := frontend.New("p", "test.bas")
	arr, err := b.ArrayVar("A")
	if err != nil {
		t.Fatal(err)
	}
	entry := b.DimEntry(arr, []ir.Expr{b.Number(10)})
	args := b.Dim([]*ir.DimSpec{entry})
	if args != ir.Expr(entry) {
		t.Errorf("expected a single DIM entry to pass through unwrapped, got %T", args)
	}
}
