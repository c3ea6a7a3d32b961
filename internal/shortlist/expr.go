package shortlist

import (
	"fmt"
	"strconv"
	"strings"

	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// statementText renders one statement using tok_short spellings.
func (b *builder) statementText(s *ir.Statement) string {
	switch s.Code {
	case toktab.StmtLabel:
		return b.exprText(s.Args) + ":"
	case toktab.StmtIfNumber, toktab.StmtIfThen:
		p := s.Args.(*ir.Pair)
		return "IF " + b.exprText(p.A) + " THEN " + b.exprText(p.B)
	case toktab.StmtOnGo, toktab.StmtOnExec:
		p := s.Args.(*ir.Pair)
		ll := p.B.(*ir.LabelList)
		names := make([]string, len(ll.IDs))
		for i, id := range ll.IDs {
			names[i] = b.prog.Vars.ShortName(id)
		}
		verb := "GO#"
		if s.Code == toktab.StmtOnExec {
			verb = "EXEC"
		}
		return "ON " + b.exprText(p.A) + " " + verb + " " + strings.Join(names, ",")
	case toktab.StmtLet:
		p := s.Args.(*ir.Pair)
		return b.exprText(p.A) + "=" + b.exprText(p.B)
	case toktab.StmtLetInv:
		p := s.Args.(*ir.Pair)
		return b.exprText(p.A) + "=" + b.exprText(p.B)
	case toktab.StmtRem, toktab.StmtRemHidden:
		if d, ok := s.Args.(*ir.Data); ok {
			return "REM" + string(d.Bytes)
		}
		return "REM"
	case toktab.StmtData:
		if d, ok := s.Args.(*ir.Data); ok {
			return "DATA " + string(d.Bytes)
		}
		return "DATA"
	default:
		name := toktab.ShortName(s.Code)
		if name == "" {
			name = fmt.Sprintf("<stmt %d>", s.Code)
		}
		if s.Args == nil {
			return name
		}
		return name + " " + b.exprText(s.Args)
	}
}

func (b *builder) exprText(e ir.Expr) string {
	s, _ := b.exprTextPrec(e)
	return s
}

func (b *builder) exprTextPrec(e ir.Expr) (string, int) {
	switch v := e.(type) {
	case nil:
		return "", 13
	case *ir.ConstNumber:
		return formatNumber(v.Value), 13
	case *ir.ConstHexNumber:
		return formatNumber(v.Value), 13
	case *ir.ConstString:
		return strconv.Quote(string(v.Bytes)), 13
	case *ir.VarNumber:
		return b.prog.Vars.ShortName(v.ID), 13
	case *ir.VarString:
		return b.prog.Vars.ShortName(v.ID) + "$", 13
	case *ir.VarArray:
		return b.prog.Vars.ShortName(v.ID), 13
	case *ir.VarLabel:
		return b.prog.Vars.ShortName(v.ID), 13
	case *ir.VarAsmLabel:
		return b.prog.Vars.ShortName(v.ID), 13
	case *ir.DefNumber:
		return b.prog.Vars.ShortName(v.ID), 13
	case *ir.DefString:
		return b.prog.Vars.ShortName(v.ID) + "$", 13
	case *ir.Token:
		return b.tokenText(v)
	default:
		return fmt.Sprintf("<%T>", e), 13
	}
}

func (b *builder) tokenText(t *ir.Token) (string, int) {
	prec := toktab.Prec(t.Tok)

	if t.Tok == toktab.TokLParen {
		base, _ := b.exprTextPrec(t.Left)
		idx, _ := b.exprTextPrec(t.Right)
		return base + "(" + idx + ")", 13
	}
	if isFunctionIntrinsic(t.Tok) {
		operand, _ := b.exprTextPrec(t.Right)
		return toktab.Short(t.Tok) + "(" + operand + ")", 13
	}
	if toktab.Arity(t.Tok) == 0 {
		return toktab.Short(t.Tok), 13
	}
	if toktab.Arity(t.Tok) == 1 {
		operand, cp := b.exprTextPrec(t.Right)
		if toktab.NeedsRightParen(prec, cp) {
			operand = "(" + operand + ")"
		}
		return toktab.Short(t.Tok) + operand, prec
	}

	left, lp := b.exprTextPrec(t.Left)
	if toktab.NeedsLeftParen(prec, lp) {
		left = "(" + left + ")"
	}
	right, rp := b.exprTextPrec(t.Right)
	if toktab.NeedsRightParen(prec, rp) {
		right = "(" + right + ")"
	}
	sep := toktab.Short(t.Tok)
	if isWordOperator(t.Tok) {
		return left + " " + sep + " " + right, prec
	}
	return left + sep + right, prec
}

func isFunctionIntrinsic(t toktab.Tok) bool {
	switch t {
	case toktab.TokChrDlr, toktab.TokLen, toktab.TokAsc, toktab.TokDec,
		toktab.TokInt, toktab.TokTrunc, toktab.TokFrac, toktab.TokAbs, toktab.TokSgn,
		toktab.TokSqr, toktab.TokLog, toktab.TokExp, toktab.TokClog, toktab.TokAtn,
		toktab.TokCos, toktab.TokSin:
		return true
	}
	return false
}

func isWordOperator(t toktab.Tok) bool {
	switch t {
	case toktab.TokOr, toktab.TokAnd, toktab.TokIDiv, toktab.TokMod, toktab.TokBitExor:
		return true
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
