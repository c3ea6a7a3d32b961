package encoder

import (
	"tbxlc/internal/ir"
	"tbxlc/internal/sbuf"
	"tbxlc/internal/toktab"
)

// lineBuilder accumulates the encoded statement blobs for one output
// line, tracking the running payload size against the configured cap.
type lineBuilder struct {
	num   int
	stmts [][]byte
	size  int // 3-byte header + sum of (statement blob + its colon/EOL separator) so far
}

func newLine(num int) *lineBuilder {
	return &lineBuilder{num: num, size: 3}
}

func (lb *lineBuilder) fits(blobLen int, limit int) bool {
	return lb.size+blobLen <= limit
}

func (lb *lineBuilder) add(blob []byte) {
	lb.stmts = append(lb.stmts, blob)
	lb.size += len(blob) + 1 // +1 for the colon/EOL separator emit writes after it
}

// emit writes this line's bytes (header + statements, colon-separated,
// last one EOL-terminated) to out.
func (lb *lineBuilder) emit(out *sbuf.Buf) {
	out.Put(byte(lb.num & 0xFF))
	out.Put(byte((lb.num >> 8) & 0xFF))
	out.Put(byte(lb.size))
	for i, s := range lb.stmts {
		out.Write(s)
		if i == len(lb.stmts)-1 {
			out.Put(0x10 + byte(toktab.TokEOL))
		} else {
			out.Put(0x10 + byte(toktab.TokColon))
		}
	}
}

// buildTOK walks prog's statement chain and packs it into encoded
// lines per spec.md §4.K's rules: a LineNumber(n>=0) marker opens line
// n; LineNumber(-1) is a "fake DATA line" that reserves the next
// unused line number without emitting any statements; LBL_S and PROC
// always start a fresh line; a statement that doesn't fit forces a new
// line with the next unused number; a statement that can't fit alone
// is a hard TooLongError.
func buildTOK(prog *ir.Program, cfg Config) (sbuf.Buf, error) {
	var out sbuf.Buf
	var cur *lineBuilder
	lastLineNo := -1

	flush := func() {
		if cur != nil && len(cur.stmts) > 0 {
			cur.emit(&out)
		}
		cur = nil
	}

	newSyntheticLine := func() *lineBuilder {
		lastLineNo++
		return newLine(lastLineNo)
	}

	for n := prog.Head; n != nil; n = ir.Next(n) {
		switch v := n.(type) {
		case *ir.LineNumber:
			flush()
			if v.Num == -1 {
				lastLineNo++
				empty := newLine(lastLineNo)
				empty.emit(&out)
				continue
			}
			if v.Num > 32767 {
				return out, &LineNumberError{Line: v.Num, Msg: "line number exceeds 32767"}
			}
			if v.Num <= lastLineNo {
				return out, &LineNumberError{Line: v.Num, Msg: "line number must increase monotonically"}
			}
			lastLineNo = v.Num
			cur = newLine(v.Num)

		case *ir.Statement:
			if (v.Code == toktab.StmtRem || v.Code == toktab.StmtRemHidden) && !cfg.KeepComments {
				continue
			}
			blob, err := encodeStatement(prog, v)
			if err != nil {
				return out, err
			}
			startsFresh := v.Code == toktab.StmtLabel || v.Code == toktab.StmtProc
			if cur == nil {
				cur = newSyntheticLine()
			}
			if startsFresh && len(cur.stmts) > 0 {
				flush()
				cur = newSyntheticLine()
			}
			if !cur.fits(len(blob)+1, cfg.MaxLineBytes) {
				if len(cur.stmts) == 0 {
					return out, &TooLongError{Line: cur.num, Size: len(blob) + 4, Cap: cfg.MaxLineBytes}
				}
				flush()
				cur = newSyntheticLine()
				if !cur.fits(len(blob)+1, cfg.MaxLineBytes) {
					return out, &TooLongError{Line: cur.num, Size: len(blob) + 4, Cap: cfg.MaxLineBytes}
				}
			}
			cur.add(blob)
		}
	}
	flush()
	return out, nil
}

// encodeStatement renders one statement's blob: length byte, statement
// code byte, then its token stream. The length byte and the trailing
// colon/EOL separator (added by the line builder) are not counted
// twice; len(blob) already includes the length byte itself.
func encodeStatement(prog *ir.Program, s *ir.Statement) ([]byte, error) {
	var body sbuf.Buf
	body.Put(byte(s.Code))

	if s.Code == toktab.StmtRem || s.Code == toktab.StmtRemHidden || s.Code == toktab.StmtData {
		if d, ok := s.Args.(*ir.Data); ok {
			body.Write(d.Bytes)
		}
	} else if s.Args != nil {
		if err := encodeArgs(prog, &body, s); err != nil {
			return nil, err
		}
	}

	var out sbuf.Buf
	out.Put(byte(body.Len() + 1))
	out.Cat(&body)
	return out.Bytes(), nil
}

// encodeArgs dispatches on the statement's Args shape: most statements
// are a single expression tree, but IF_NUMBER/IF_THEN and ON_GO/ON_EXEC
// use Pair, and ON_GO/ON_EXEC's second element is a LabelList.
func encodeArgs(prog *ir.Program, b *sbuf.Buf, s *ir.Statement) error {
	switch s.Code {
	case toktab.StmtLet, toktab.StmtLetInv:
		p := s.Args.(*ir.Pair)
		if err := encodeExpr(prog, b, p.A); err != nil {
			return err
		}
		b.Put(0x10 + byte(toktab.TokEq))
		return encodeExpr(prog, b, p.B)
	case toktab.StmtIfNumber, toktab.StmtIfThen:
		p := s.Args.(*ir.Pair)
		if err := encodeExpr(prog, b, p.A); err != nil {
			return err
		}
		b.Put(0x10 + byte(toktab.TokThen))
		return encodeExpr(prog, b, p.B)
	case toktab.StmtOnGo, toktab.StmtOnExec:
		p := s.Args.(*ir.Pair)
		if err := encodeExpr(prog, b, p.A); err != nil {
			return err
		}
		ll := p.B.(*ir.LabelList)
		for i, id := range ll.IDs {
			if i > 0 {
				b.Put(0x10 + byte(toktab.TokComma))
			}
			encodeVarRef(b, id)
		}
		return nil
	default:
		return encodeExpr(prog, b, s.Args)
	}
}

func encodeExpr(prog *ir.Program, b *sbuf.Buf, e ir.Expr) error {
	switch v := e.(type) {
	case nil:
		return nil
	case *ir.ConstNumber:
		encodeBCD(b, 0x0E, v.Value)
		return nil
	case *ir.ConstHexNumber:
		encodeBCD(b, 0x0D, v.Value)
		return nil
	case *ir.ConstString:
		b.Put(0x0F)
		b.Put(byte(len(v.Bytes)))
		b.Write(v.Bytes)
		return nil
	case *ir.VarNumber:
		encodeVarRef(b, v.ID)
		return nil
	case *ir.VarString:
		encodeVarRef(b, v.ID)
		return nil
	case *ir.VarArray:
		encodeVarRef(b, v.ID)
		return nil
	case *ir.VarLabel:
		encodeVarRef(b, v.ID)
		return nil
	case *ir.VarAsmLabel:
		encodeVarRef(b, v.ID)
		return nil
	case *ir.Token:
		return encodeToken(prog, b, v)
	case *ir.Data:
		b.Write(v.Bytes)
		return nil
	default:
		return &InternalError{Line: e.SourceLine(), What: "unencodable expression node"}
	}
}

// InternalError marks an assertion-class failure: an IR shape the
// encoder should never see in a fully lowered program.
type InternalError struct {
	Line int
	What string
}

func (e *InternalError) Error() string { return e.What }

func encodeVarRef(b *sbuf.Buf, id int) {
	if id <= 127 {
		b.Put(byte(id) ^ 0x80)
		return
	}
	b.Put(0)
	b.Put(byte(id) ^ 0x80)
}

func encodeBCD(b *sbuf.Buf, marker byte, v float64) {
	f := bcd.FromFloat(v)
	b.Put(marker)
	b.Put(f.Exp)
	b.Write(f.Digits[:])
}

func encodeToken(prog *ir.Program, b *sbuf.Buf, t *ir.Token) error {
	if t.Tok == toktab.TokLParen {
		if err := encodeExpr(prog, b, t.Left); err != nil {
			return err
		}
		b.Put(0x10 + byte(toktab.TokLParen))
		if err := encodeExpr(prog, b, t.Right); err != nil {
			return err
		}
		b.Put(0x10 + byte(toktab.TokRParen))
		return nil
	}

	prec := toktab.Prec(t.Tok)
	if toktab.Arity(t.Tok) == 1 {
		b.Put(0x10 + byte(t.Tok))
		return encodeChild(prog, b, t.Right, prec, false)
	}
	if err := encodeChild(prog, b, t.Left, prec, true); err != nil {
		return err
	}
	b.Put(0x10 + byte(t.Tok))
	return encodeChild(prog, b, t.Right, prec, false)
}

func encodeChild(prog *ir.Program, b *sbuf.Buf, e ir.Expr, parentPrec int, isLeft bool) error {
	childPrec := exprPrec(e)
	needsParen := false
	if isLeft {
		needsParen = toktab.NeedsLeftParen(parentPrec, childPrec)
	} else {
		needsParen = toktab.NeedsRightParen(parentPrec, childPrec)
	}
	if needsParen {
		b.Put(0x10 + byte(toktab.TokLParen))
	}
	if err := encodeExpr(prog, b, e); err != nil {
		return err
	}
	if needsParen {
		b.Put(0x10 + byte(toktab.TokRParen))
	}
	return nil
}

func exprPrec(e ir.Expr) int {
	if t, ok := e.(*ir.Token); ok && t.Tok != toktab.TokLParen {
		return toktab.Prec(t.Tok)
	}
	return 13
}
