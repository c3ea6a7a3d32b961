package desugar

import (
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// desugarLeaf rewrites any statement that isn't a block opener or EXIT:
// line-number-target statements, the convenience statements, and
// multi-variable DIM/COM. Most statements fall through unchanged.
func (ds *desugarer) desugarLeaf(s *ir.Statement) ([]ir.ChainNode, error) {
	switch s.Code {
	case toktab.StmtGoto:
		return ds.rewriteGoto(s)
	case toktab.StmtGosub:
		return ds.rewriteGosub(s)
	case toktab.StmtTrap:
		return ds.rewriteTrap(s)
	case toktab.StmtOnGoto:
		return ds.rewriteOnGoto(s)
	case toktab.StmtOnGosub:
		return ds.rewriteOnGosub(s)
	case toktab.StmtRestore:
		return ds.rewriteRestore(s)
	case toktab.StmtPop:
		ds.d.Warnf(ds.prog.Arena.File(), s.SourceLine(), "POP is unnecessary in flat control-flow form, removed")
		return nil, nil
	case toktab.StmtEndProc:
		s.Code = toktab.StmtReturn
		return []ir.ChainNode{s}, nil
	case toktab.StmtLetInv:
		s.Code = toktab.StmtLet
		return []ir.ChainNode{s}, nil
	case toktab.StmtCls:
		return ds.rewriteCls(s)
	case toktab.StmtSetColor:
		return ds.rewriteSetColor(s)
	case toktab.StmtSound:
		return ds.rewriteSound(s)
	case toktab.StmtDim, toktab.StmtCom:
		return ds.rewriteDim(s)
	default:
		return []ir.ChainNode{s}, nil
	}
}

func lineTarget(e ir.Expr) (int, bool) {
	if c, ok := e.(*ir.ConstNumber); ok {
		return int(c.Value), true
	}
	return 0, false
}

func (ds *desugarer) rewriteGoto(s *ir.Statement) ([]ir.ChainNode, error) {
	n, ok := lineTarget(s.Args)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "GOTO target is not a constant line number")
	}
	s.Code = toktab.StmtGoLabel
	s.Args = ds.prog.Arena.NewVarLabel(ds.lineLabel(n))
	return []ir.ChainNode{s}, nil
}

func (ds *desugarer) rewriteGosub(s *ir.Statement) ([]ir.ChainNode, error) {
	n, ok := lineTarget(s.Args)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "GOSUB target is not a constant line number")
	}
	s.Code = toktab.StmtExec
	s.Args = ds.prog.Arena.NewVarLabel(ds.lineLabel(n))
	return []ir.ChainNode{s}, nil
}

func (ds *desugarer) rewriteTrap(s *ir.Statement) ([]ir.ChainNode, error) {
	if s.Args == nil {
		return []ir.ChainNode{s}, nil
	}
	n, ok := lineTarget(s.Args)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "TRAP target is not a constant line number")
	}
	if n > 32767 {
		s.Args = nil
		return []ir.ChainNode{s}, nil
	}
	s.Args = ds.prog.Arena.NewVarLabel(ds.lineLabel(n))
	return []ir.ChainNode{s}, nil
}

func (ds *desugarer) rewriteRestore(s *ir.Statement) ([]ir.ChainNode, error) {
	if s.Args == nil {
		return []ir.ChainNode{s}, nil
	}
	n, ok := lineTarget(s.Args)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "RESTORE target is not a constant line number")
	}
	s.Args = ds.prog.Arena.NewVarLabel(ds.lineLabel(n))
	return []ir.ChainNode{s}, nil
}

func (ds *desugarer) resolveLabelList(ll *ir.LabelList) {
	for i, n := range ll.IDs {
		ll.IDs[i] = ds.lineLabel(n)
	}
}

func (ds *desugarer) rewriteOnGoto(s *ir.Statement) ([]ir.ChainNode, error) {
	p, ok := s.Args.(*ir.Pair)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "ON...GOTO missing a label list")
	}
	ll, ok := p.B.(*ir.LabelList)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "ON...GOTO missing a label list")
	}
	ds.resolveLabelList(ll)
	s.Code = toktab.StmtOnGo
	return []ir.ChainNode{s}, nil
}

func (ds *desugarer) rewriteOnGosub(s *ir.Statement) ([]ir.ChainNode, error) {
	p, ok := s.Args.(*ir.Pair)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "ON...GOSUB missing a label list")
	}
	ll, ok := p.B.(*ir.LabelList)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "ON...GOSUB missing a label list")
	}
	ds.resolveLabelList(ll)
	s.Code = toktab.StmtOnExec
	return []ir.ChainNode{s}, nil
}

// rewriteCls converts CLS / CLS #c into PUT 125 / PUT #c,125: both
// terminals clear to Atari's "clear screen" control character.
func (ds *desugarer) rewriteCls(s *ir.Statement) ([]ir.ChainNode, error) {
	a := ds.prog.Arena
	const clearChar = 125
	if s.Args == nil {
		s.Code = toktab.StmtPut
		s.Args = a.NewConstNumber(clearChar)
		return []ir.ChainNode{s}, nil
	}
	s.Code = toktab.StmtPut
	s.Args = a.NewPair(s.Args, a.NewConstNumber(clearChar))
	return []ir.ChainNode{s}, nil
}

// rewriteSetColor converts SETCOLOR c,h,l into a single POKE to the
// color-register table at $2C1 (705): ((c&7)+3)&7+705, (h&255)*16!l.
func (ds *desugarer) rewriteSetColor(s *ir.Statement) ([]ir.ChainNode, error) {
	p1, ok := s.Args.(*ir.Pair)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "SETCOLOR missing operands")
	}
	p2, ok := p1.B.(*ir.Pair)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "SETCOLOR missing operands")
	}
	c, h, l := p1.A, p2.A, p2.B
	a := ds.prog.Arena
	addr := a.NewToken(toktab.TokAdd,
		a.NewToken(toktab.TokBitAnd,
			a.NewToken(toktab.TokAdd, a.NewToken(toktab.TokBitAnd, c, a.NewConstNumber(7)), a.NewConstNumber(3)),
			a.NewConstNumber(7)),
		a.NewConstNumber(705))
	value := a.NewToken(toktab.TokBitOr,
		a.NewToken(toktab.TokMul, a.NewToken(toktab.TokBitAnd, h, a.NewConstNumber(255)), a.NewConstNumber(16)),
		l)
	s.Code = toktab.StmtPoke
	s.Args = a.NewPair(addr, value)
	return []ir.ChainNode{s}, nil
}

// POKEY register base addresses for rewriteSound.
const (
	addrSkctl = 53775
	addrAudf1 = 53760
	addrAudc1 = 53761
)

// rewriteSound converts SOUND c,f,d,v into three POKEs when c is a
// constant channel 0-3: enable the sound chip via SKCTL, then set the
// channel's frequency and distortion/volume registers. A non-constant
// channel can't be resolved to a fixed POKE address at compile time, so
// the statement is left as SOUND for codegen to expand with a runtime
// address computation.
func (ds *desugarer) rewriteSound(s *ir.Statement) ([]ir.ChainNode, error) {
	p1, ok := s.Args.(*ir.Pair)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "SOUND missing operands")
	}
	p2, ok := p1.B.(*ir.Pair)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "SOUND missing operands")
	}
	p3, ok := p2.B.(*ir.Pair)
	if !ok {
		return nil, ds.d.Errorf(ds.prog.Arena.File(), s.SourceLine(), "SOUND missing operands")
	}
	c, f, d, v := p1.A, p2.A, p3.A, p3.B

	cc, ok := lineTarget(c)
	if !ok || cc < 0 || cc > 3 {
		return []ir.ChainNode{s}, nil
	}

	a := ds.prog.Arena
	pokes := []ir.ChainNode{
		a.NewStatement(toktab.StmtPoke, a.NewPair(a.NewConstNumber(addrSkctl), a.NewConstNumber(3))),
		a.NewStatement(toktab.StmtPoke, a.NewPair(a.NewConstNumber(addrAudf1+2*cc), f)),
		a.NewStatement(toktab.StmtPoke, a.NewPair(a.NewConstNumber(addrAudc1+2*cc),
			a.NewToken(toktab.TokBitOr, a.NewToken(toktab.TokMul, d, a.NewConstNumber(16)), v))),
	}
	return pokes, nil
}

// rewriteDim splits a multi-variable DIM/COM into one DIM statement per
// variable; COM is folded into DIM since no other pass distinguishes
// them once program chaining is out of scope.
func (ds *desugarer) rewriteDim(s *ir.Statement) ([]ir.ChainNode, error) {
	a := ds.prog.Arena
	if list, ok := s.Args.(*ir.ExprList); ok {
		out := make([]ir.ChainNode, len(list.Items))
		for i, item := range list.Items {
			out[i] = a.NewStatement(toktab.StmtDim, item)
		}
		return out, nil
	}
	s.Code = toktab.StmtDim
	return []ir.ChainNode{s}, nil
}
