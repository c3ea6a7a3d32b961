package optimize

import (
	"math"

	"tbxlc/internal/diag"
	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// foldConstants implements pass 2 (spec.md §4.I.2): recursively fold
// operator nodes whose children are constants of matching kinds.
func foldConstants(prog *ir.Program, d *diag.Sink) (bool, error) {
	changed := false
	ir.RewriteProgramExprs(prog.Head, func(e ir.Expr) ir.Expr {
		tok, ok := e.(*ir.Token)
		if !ok {
			return e
		}
		if out := foldOne(prog, tok, d); out != nil {
			changed = true
			return out
		}
		return e
	})
	return changed, nil
}

func foldOne(prog *ir.Program, tok *ir.Token, d *diag.Sink) ir.Expr {
	a := prog.Arena
	line := tok.SourceLine()
	file := a.File()

	// UPLUS collapses to its argument. TokLParen never denotes a bare
	// grouping node in this IR — tree shape alone encodes precedence, and
	// every TokLParen node is an array/string index (Left is always the
	// indexed variable) — so there is no redundant-parenthesis case to fold
	// here.
	if tok.Tok == toktab.TokUPlus {
		return tok.Right
	}

	// ATN, COS, SIN are deliberately not folded: their result depends on a
	// runtime DEG/RAD flag this compiler never sees.
	if toktab.Arity(tok.Tok) == 1 {
		if ln, ok := tok.Right.(*ir.ConstNumber); ok {
			switch tok.Tok {
			case toktab.TokUMinus:
				return a.NewConstNumber(-ln.Value)
			case toktab.TokInt:
				return a.NewConstNumber(math.Floor(ln.Value))
			case toktab.TokTrunc:
				return a.NewConstNumber(math.Trunc(ln.Value))
			case toktab.TokFrac:
				return a.NewConstNumber(ln.Value - math.Trunc(ln.Value))
			case toktab.TokAbs:
				return a.NewConstNumber(math.Abs(ln.Value))
			case toktab.TokSgn:
				switch {
				case ln.Value > 0:
					return a.NewConstNumber(1)
				case ln.Value < 0:
					return a.NewConstNumber(-1)
				default:
					return a.NewConstNumber(0)
				}
			case toktab.TokNot:
				return boolConst(a, ln.Value == 0)
			case toktab.TokSqr:
				if ln.Value < 0 {
					d.Warnf(file, line, "SQR of negative constant")
				}
				return a.NewConstNumber(math.Sqrt(ln.Value))
			case toktab.TokLog:
				if ln.Value <= 0 {
					d.Warnf(file, line, "LOG of non-positive constant")
				}
				return a.NewConstNumber(math.Log(ln.Value))
			case toktab.TokClog:
				if ln.Value <= 0 {
					d.Warnf(file, line, "CLOG of non-positive constant")
				}
				return a.NewConstNumber(math.Log10(ln.Value))
			case toktab.TokExp:
				return a.NewConstNumber(math.Exp(ln.Value))
			case toktab.TokChrDlr:
				return a.NewConstString([]byte{byte(int(ln.Value))})
			}
			return nil
		}
		if sn, ok := tok.Right.(*ir.ConstString); ok {
			switch tok.Tok {
			case toktab.TokLen:
				return a.NewConstNumber(float64(len(sn.Bytes)))
			case toktab.TokAsc:
				if len(sn.Bytes) > 0 {
					return a.NewConstNumber(float64(sn.Bytes[0]))
				}
			case toktab.TokDec:
				return a.NewConstNumber(parseDecimalPrefix(sn.Bytes))
			}
		}
		return nil
	}

	// Binary operators.
	ln, lok := tok.Left.(*ir.ConstNumber)
	rn, rok := tok.Right.(*ir.ConstNumber)
	ls, lsok := tok.Left.(*ir.ConstString)
	rs, rsok := tok.Right.(*ir.ConstString)

	if lok && rok {
		switch tok.Tok {
		case toktab.TokAdd:
			return a.NewConstNumber(ln.Value + rn.Value)
		case toktab.TokSub:
			return a.NewConstNumber(ln.Value - rn.Value)
		case toktab.TokMul:
			return a.NewConstNumber(ln.Value * rn.Value)
		case toktab.TokDiv:
			if rn.Value == 0 {
				d.Warnf(file, line, "division by zero")
			}
			return a.NewConstNumber(ln.Value / rn.Value)
		case toktab.TokPow:
			return a.NewConstNumber(math.Pow(ln.Value, rn.Value))
		case toktab.TokIDiv:
			if rn.Value == 0 {
				d.Warnf(file, line, "integer division by zero")
				return a.NewConstNumber(0)
			}
			return a.NewConstNumber(math.Trunc(ln.Value / rn.Value))
		case toktab.TokMod:
			if rn.Value == 0 {
				d.Warnf(file, line, "MOD by zero")
				return a.NewConstNumber(0)
			}
			return a.NewConstNumber(math.Mod(ln.Value, rn.Value))
		case toktab.TokBitAnd, toktab.TokBitOr, toktab.TokBitExor:
			li, lok2 := bitwiseOperand(ln.Value)
			ri, rok2 := bitwiseOperand(rn.Value)
			if !lok2 || !rok2 {
				d.Warnf(file, line, "bitwise operand out of range [0,65535.5)")
				return a.NewConstNumber(0)
			}
			var res uint32
			switch tok.Tok {
			case toktab.TokBitAnd:
				res = li & ri
			case toktab.TokBitOr:
				res = li | ri
			case toktab.TokBitExor:
				res = li ^ ri
			}
			return a.NewConstNumber(float64(res))
		case toktab.TokLt:
			return boolConst(a, ln.Value < rn.Value)
		case toktab.TokGt:
			return boolConst(a, ln.Value > rn.Value)
		case toktab.TokLe:
			return boolConst(a, ln.Value <= rn.Value)
		case toktab.TokGe:
			return boolConst(a, ln.Value >= rn.Value)
		case toktab.TokEq:
			return boolConst(a, ln.Value == rn.Value)
		case toktab.TokNe:
			return boolConst(a, ln.Value != rn.Value)
		case toktab.TokAnd:
			return boolConst(a, ln.Value != 0 && rn.Value != 0)
		case toktab.TokOr:
			return boolConst(a, ln.Value != 0 || rn.Value != 0)
		}
	}

	if lsok && rsok {
		switch tok.Tok {
		case toktab.TokEq:
			return boolConst(a, string(ls.Bytes) == string(rs.Bytes))
		case toktab.TokNe:
			return boolConst(a, string(ls.Bytes) != string(rs.Bytes))
		case toktab.TokLt:
			return boolConst(a, string(ls.Bytes) < string(rs.Bytes))
		case toktab.TokGt:
			return boolConst(a, string(ls.Bytes) > string(rs.Bytes))
		case toktab.TokLe:
			return boolConst(a, string(ls.Bytes) <= string(rs.Bytes))
		case toktab.TokGe:
			return boolConst(a, string(ls.Bytes) >= string(rs.Bytes))
		case toktab.TokAdd:
			return a.NewConstString(append(append([]byte(nil), ls.Bytes...), rs.Bytes...))
		}
	}

	return nil
}

// parseDecimalPrefix implements DEC: the numeric value of the longest
// leading run of digits (with an optional sign and one decimal point) in
// s, or 0 if s has no such prefix.
func parseDecimalPrefix(s []byte) float64 {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	seenDot := false
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || (s[i] == '.' && !seenDot)) {
		if s[i] == '.' {
			seenDot = true
		}
		i++
	}
	if i == start {
		return 0
	}
	var v float64
	var frac float64 = 1
	inFrac := false
	for _, c := range s[start:i] {
		if c == '.' {
			inFrac = true
			continue
		}
		d := float64(c - '0')
		if inFrac {
			frac /= 10
			v += d * frac
		} else {
			v = v*10 + d
		}
	}
	if neg {
		v = -v
	}
	return v
}

func boolConst(a *ir.Arena, v bool) ir.Expr {
	if v {
		return a.NewConstNumber(1)
	}
	return a.NewConstNumber(0)
}

// bitwiseOperand validates and truncates an operand for &, !, EXOR: it
// must lie in [0, 65535.5).
func bitwiseOperand(v float64) (uint32, bool) {
	if v < 0 || v >= 65535.5 {
		return 0, false
	}
	return uint32(v + 0.5), true
}
