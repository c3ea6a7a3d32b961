// Package desugar implements control-flow desugaring (component H):
// replace_complex_stmt walks the statement chain once and rewrites every
// structured control-flow form — DO/LOOP, WHILE/WEND, REPEAT/UNTIL,
// FOR/NEXT, multi-line and single-line IF — into the flat label+jump
// vocabulary the historical interpreter actually runs: LBL_S, GO_S,
// EXEC, IF_NUMBER (a single-line IF keeps an IF_THEN guard). It also flattens GOTO/GOSUB/TRAP/ON targets from raw
// source line numbers to labels, and rewrites the convenience statements
// (CLS, SETCOLOR, SOUND, multi-variable DIM/COM) into their lower-level
// forms. Grounded on spec.md §4.H.
package desugar

import (
	"fmt"

	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

// closerCodes names the statement codes that only ever close a block;
// encountering one without a matching opener on the call stack is a
// nesting error.
var closerCodes = map[toktab.Stmt]string{
	toktab.StmtLoop:           "LOOP",
	toktab.StmtWend:           "WEND",
	toktab.StmtUntil:          "UNTIL",
	toktab.StmtNext:           "NEXT",
	toktab.StmtElse:           "ELSE",
	toktab.StmtEndif:          "ENDIF",
	toktab.StmtEndifInvisible: "ENDIF",
}

type loopCtx struct {
	exitLabel int
}

type desugarer struct {
	prog       *ir.Program
	d          *diag.Sink
	lblCounter int
	tmpCounter int
	lineLbls   map[int]int
	loops      []loopCtx
}

// Run desugars every structured control-flow statement in prog in
// place. It returns the first nesting or arity error encountered;
// desugar.Run never partially applies a malformed construct.
func Run(prog *ir.Program, d *diag.Sink) error {
	ds := &desugarer{prog: prog, d: d, lineLbls: map[int]int{}}
	items := flatten(prog.Head)
	out, next, err := ds.block(items, 0, nil, nil, "")
	if err != nil {
		return err
	}
	if next != len(items) {
		n := items[next]
		return d.Errorf(prog.Arena.File(), n.SourceLine(), "unexpected statement with no matching opener")
	}
	prog.Head = relink(out)
	return nil
}

func flatten(head ir.ChainNode) []ir.ChainNode {
	var out []ir.ChainNode
	for n := head; n != nil; n = ir.Next(n) {
		out = append(out, n)
	}
	return out
}

func relink(nodes []ir.ChainNode) ir.ChainNode {
	for i, n := range nodes {
		if i+1 < len(nodes) {
			ir.SetNext(n, nodes[i+1])
		} else {
			ir.SetNext(n, nil)
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (ds *desugarer) freshLabel() int {
	ds.lblCounter++
	id, err := ds.prog.Vars.NewVar(fmt.Sprintf("@_lbl_%d", ds.lblCounter), vartab.Label)
	if err != nil {
		// The arena/vartab cap is enforced elsewhere; Run has no error
		// path for it because a full table is reported earlier, at the
		// first ordinary variable that overflowed it.
		panic(err)
	}
	return id
}

// lineLabel returns the canonical @_lin_<n> label for source line n,
// creating it on first reference and reusing it thereafter.
func (ds *desugarer) lineLabel(n int) int {
	if id, ok := ds.lineLbls[n]; ok {
		return id
	}
	id, err := ds.prog.Vars.NewVar(fmt.Sprintf("@_lin_%d", n), vartab.Label)
	if err != nil {
		panic(err)
	}
	ds.lineLbls[n] = id
	return id
}

func (ds *desugarer) freshTemp(typ vartab.Type, prefix string) int {
	ds.tmpCounter++
	id, err := ds.prog.Vars.NewVar(fmt.Sprintf("%s_%d", prefix, ds.tmpCounter), typ)
	if err != nil {
		panic(err)
	}
	return id
}

// labelStmt builds an LBL_S statement.
func (ds *desugarer) labelStmt(id int) *ir.Statement {
	return ds.prog.Arena.NewStatement(toktab.StmtLabel, ds.prog.Arena.NewVarLabel(id))
}

// goLabelStmt builds a GO_S statement, the unconditional jump form.
func (ds *desugarer) goLabelStmt(id int) *ir.Statement {
	return ds.prog.Arena.NewStatement(toktab.StmtGoLabel, ds.prog.Arena.NewVarLabel(id))
}

// ifGotoStmt builds the collapsed IF_NUMBER form directly: IF cond THEN
// #target. Loops and multi-line IF desugar straight to this form rather
// than to IF_THEN+GOTO+ENDIF_INVISIBLE, since the synthesized branch has
// no source THEN-body to preserve. A single-line IF instead keeps its
// guard tagged IF_THEN (see controlflow.go).
func (ds *desugarer) ifGotoStmt(cond ir.Expr, target int) *ir.Statement {
	a := ds.prog.Arena
	return a.NewStatement(toktab.StmtIfNumber, a.NewPair(cond, a.NewVarLabel(target)))
}

// negate wraps cond in NOT, collapsing a double negation.
func negate(prog *ir.Program, cond ir.Expr) ir.Expr {
	if t, ok := cond.(*ir.Token); ok && t.Tok == toktab.TokNot {
		return t.Right
	}
	return prog.Arena.NewToken(toktab.TokNot, nil, cond)
}

// letStmt builds a LET statement assigning value to the numeric variable
// target.
func (ds *desugarer) letStmt(target int, value ir.Expr) *ir.Statement {
	a := ds.prog.Arena
	return a.NewStatement(toktab.StmtLet, a.NewPair(a.NewVarNumber(target), value))
}
