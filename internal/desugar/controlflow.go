package desugar

import (
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// block consumes items starting at i, translating each statement, until
// either stop is non-nil and a statement coded in stop is reached (not
// consumed; its index is returned), or — when stop is nil — the input is
// exhausted. open/openName name the construct this block's caller is
// inside, for the "missing closer" error message; both are zero/empty at
// the top level.
func (ds *desugarer) block(items []ir.ChainNode, i int, stop map[toktab.Stmt]bool, open *ir.Statement, openName string) ([]ir.ChainNode, int, error) {
	var out []ir.ChainNode
	for i < len(items) {
		n := items[i]
		if s, ok := n.(*ir.Statement); ok {
			if stop != nil && stop[s.Code] {
				return out, i, nil
			}
			if name, isCloser := closerCodes[s.Code]; isCloser {
				return nil, 0, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "%s without matching opening statement", name)
			}
		}
		if ln, ok := n.(*ir.LineNumber); ok {
			if ln.Num >= 0 {
				out = append(out, ds.labelStmt(ds.lineLabel(ln.Num)))
			}
			i++
			continue
		}
		s := n.(*ir.Statement)
		add, next, err := ds.statement(items, i, s)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, add...)
		i = next
	}
	if stop != nil {
		return nil, 0, ds.d.Errorf(ds.prog.Arena.File(), open.SourceLine(), "%s without matching closing statement", openName)
	}
	return out, i, nil
}

// statement dispatches a single statement at items[i]; it returns the
// chain nodes it produced and the index of the next unconsumed item
// (past any matching closer it consumed).
func (ds *desugarer) statement(items []ir.ChainNode, i int, s *ir.Statement) ([]ir.ChainNode, int, error) {
	switch s.Code {
	case toktab.StmtDo:
		return ds.desugarDo(items, i, s)
	case toktab.StmtRepeat:
		return ds.desugarRepeat(items, i, s)
	case toktab.StmtWhile:
		return ds.desugarWhile(items, i, s)
	case toktab.StmtFor:
		return ds.desugarFor(items, i, s)
	case toktab.StmtIfMultiline, toktab.StmtIfThen:
		return ds.desugarIf(items, i, s)
	case toktab.StmtExit:
		out, err := ds.desugarExit(s)
		if err != nil {
			return nil, 0, err
		}
		return out, i + 1, nil
	default:
		out, err := ds.desugarLeaf(s)
		if err != nil {
			return nil, 0, err
		}
		return out, i + 1, nil
	}
}

func (ds *desugarer) desugarDo(items []ir.ChainNode, i int, open *ir.Statement) ([]ir.ChainNode, int, error) {
	l1 := ds.freshLabel()
	l2 := ds.freshLabel()
	ds.loops = append(ds.loops, loopCtx{exitLabel: l2})
	body, next, err := ds.block(items, i+1, map[toktab.Stmt]bool{toktab.StmtLoop: true}, open, "DO")
	ds.loops = ds.loops[:len(ds.loops)-1]
	if err != nil {
		return nil, 0, err
	}
	out := append([]ir.ChainNode{ds.labelStmt(l1)}, body...)
	out = append(out, ds.goLabelStmt(l1), ds.labelStmt(l2))
	return out, next + 1, nil
}

func (ds *desugarer) desugarRepeat(items []ir.ChainNode, i int, open *ir.Statement) ([]ir.ChainNode, int, error) {
	l1 := ds.freshLabel()
	l2 := ds.freshLabel()
	ds.loops = append(ds.loops, loopCtx{exitLabel: l2})
	body, next, err := ds.block(items, i+1, map[toktab.Stmt]bool{toktab.StmtUntil: true}, open, "REPEAT")
	ds.loops = ds.loops[:len(ds.loops)-1]
	if err != nil {
		return nil, 0, err
	}
	until := items[next].(*ir.Statement)
	out := append([]ir.ChainNode{ds.labelStmt(l1)}, body...)
	out = append(out, ds.ifGotoStmt(negate(ds.prog, until.Args), l1), ds.labelStmt(l2))
	return out, next + 1, nil
}

func (ds *desugarer) desugarWhile(items []ir.ChainNode, i int, open *ir.Statement) ([]ir.ChainNode, int, error) {
	cond := open.Args
	l1 := ds.freshLabel()
	l2 := ds.freshLabel()
	l3 := ds.freshLabel()
	ds.loops = append(ds.loops, loopCtx{exitLabel: l3})
	body, next, err := ds.block(items, i+1, map[toktab.Stmt]bool{toktab.StmtWend: true}, open, "WHILE")
	ds.loops = ds.loops[:len(ds.loops)-1]
	if err != nil {
		return nil, 0, err
	}
	out := []ir.ChainNode{ds.goLabelStmt(l2), ds.labelStmt(l1)}
	out = append(out, body...)
	out = append(out, ds.labelStmt(l2), ds.ifGotoStmt(cond, l1), ds.labelStmt(l3))
	return out, next + 1, nil
}

func (ds *desugarer) desugarFor(items []ir.ChainNode, i int, open *ir.Statement) ([]ir.ChainNode, int, error) {
	spec, ok := open.Args.(*ir.ForSpec)
	if !ok {
		return nil, 0, ds.d.Errorf(ds.prog.Arena.File(), open.SourceLine(), "FOR missing loop specification")
	}
	a := ds.prog.Arena
	endVar := ds.freshTemp(ds.prog.Vars.TypeOf(spec.Var), "__for_end")
	stepVar := ds.freshTemp(ds.prog.Vars.TypeOf(spec.Var), "__for_step")
	l1 := ds.freshLabel()
	l2 := ds.freshLabel()
	l3 := ds.freshLabel()

	ds.loops = append(ds.loops, loopCtx{exitLabel: l3})
	body, next, err := ds.block(items, i+1, map[toktab.Stmt]bool{toktab.StmtNext: true}, open, "FOR")
	ds.loops = ds.loops[:len(ds.loops)-1]
	if err != nil {
		return nil, 0, err
	}
	nextStmt := items[next].(*ir.Statement)
	if v, ok := nextStmt.Args.(*ir.VarNumber); ok && v.ID != spec.Var {
		return nil, 0, ds.d.Errorf(ds.prog.Arena.File(), nextStmt.SourceLine(),
			"NEXT %s does not match FOR %s", ds.prog.Vars.LongName(v.ID), ds.prog.Vars.LongName(spec.Var))
	}

	step := spec.Step
	if step == nil {
		step = a.NewConstNumber(1)
	}

	cond := signAwareCond(a, spec.Var, endVar, stepVar)

	out := []ir.ChainNode{
		ds.letStmt(spec.Var, spec.Start),
		ds.letStmt(endVar, spec.Limit),
		ds.letStmt(stepVar, step),
		ds.ifGotoStmt(negate(ds.prog, cond), l2),
		ds.labelStmt(l1),
	}
	out = append(out, body...)
	out = append(out,
		ds.letStmt(spec.Var, a.NewToken(toktab.TokAdd, a.NewVarNumber(spec.Var), a.NewVarNumber(stepVar))),
		ds.labelStmt(l2),
		ds.ifGotoStmt(cond, l1),
		ds.labelStmt(l3),
	)
	return out, next + 1, nil
}

// signAwareCond builds the "continue looping" test: with a positive or
// zero step, continue while ctrl<=limit; with a negative step, continue
// while ctrl>=limit.
func signAwareCond(a *ir.Arena, ctrl, limit, step int) ir.Expr {
	ctrlRef := func() ir.Expr { return a.NewVarNumber(ctrl) }
	limitRef := func() ir.Expr { return a.NewVarNumber(limit) }
	stepRef := func() ir.Expr { return a.NewVarNumber(step) }
	ascending := a.NewToken(toktab.TokAnd,
		a.NewToken(toktab.TokGe, stepRef(), a.NewConstNumber(0)),
		a.NewToken(toktab.TokLe, ctrlRef(), limitRef()))
	descending := a.NewToken(toktab.TokAnd,
		a.NewToken(toktab.TokLt, stepRef(), a.NewConstNumber(0)),
		a.NewToken(toktab.TokGe, ctrlRef(), limitRef()))
	return a.NewToken(toktab.TokOr, ascending, descending)
}

func (ds *desugarer) desugarIf(items []ir.ChainNode, i int, open *ir.Statement) ([]ir.ChainNode, int, error) {
	cond := open.Args
	l1 := ds.freshLabel()

	var stop map[toktab.Stmt]bool
	var label string
	if open.Code == toktab.StmtIfThen {
		stop = map[toktab.Stmt]bool{toktab.StmtEndifInvisible: true}
		label = "IF"
	} else {
		stop = map[toktab.Stmt]bool{toktab.StmtElse: true, toktab.StmtEndif: true}
		label = "IF"
	}

	thenBody, next, err := ds.block(items, i+1, stop, open, label)
	if err != nil {
		return nil, 0, err
	}
	closer := items[next].(*ir.Statement)

	if closer.Code == toktab.StmtElse {
		l2 := ds.freshLabel()
		elseBody, next2, err := ds.block(items, next+1, map[toktab.Stmt]bool{toktab.StmtEndif: true}, open, "ELSE")
		if err != nil {
			return nil, 0, err
		}
		out := []ir.ChainNode{ds.ifGotoStmt(negate(ds.prog, cond), l1)}
		out = append(out, thenBody...)
		out = append(out, ds.goLabelStmt(l2), ds.labelStmt(l1))
		out = append(out, elseBody...)
		out = append(out, ds.labelStmt(l2))
		return out, next2 + 1, nil
	}

	// A single-line `IF e THEN stmts`, ended by the invisible ENDIF, keeps
	// its guard tagged StmtIfThen (rather than the collapsed IF_NUMBER
	// every other construct emits directly) so that the optimizer's
	// IF-GOTO-collapse pass can fold it back to `IF e THEN n` when the
	// THEN body turns out to be a lone GOTO to a constant line.
	if open.Code == toktab.StmtIfThen {
		a := ds.prog.Arena
		guard := a.NewStatement(toktab.StmtIfThen, a.NewPair(negate(ds.prog, cond), a.NewVarLabel(l1)))
		out := []ir.ChainNode{guard}
		out = append(out, thenBody...)
		out = append(out, ds.labelStmt(l1))
		return out, next + 1, nil
	}

	out := []ir.ChainNode{ds.ifGotoStmt(negate(ds.prog, cond), l1)}
	out = append(out, thenBody...)
	out = append(out, ds.labelStmt(l1))
	return out, next + 1, nil
}

func (ds *desugarer) desugarExit(s *ir.Statement) ([]ir.ChainNode, error) {
	if len(ds.loops) == 0 {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "EXIT outside any loop")
	}
	if s.Args != nil {
		ds.d.Warnf(ds.prog.Arena.File(), s.SourceLine(), "EXIT level argument is ignored")
	}
	target := ds.loops[len(ds.loops)-1].exitLabel
	return []ir.ChainNode{ds.goLabelStmt(target)}, nil
}
