package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"tbxlc/internal/ir"
	"tbxlc/internal/toktab"
)

// RenderConfig holds the long-listing flags that affect text output
// beyond the register-machine content itself (spec.md §6's -a).
type RenderConfig struct {
	AsciiComments bool // -a: strip the high bit from REM/DATA bytes
}

// DefaultRenderConfig returns the CLI's documented default (comments
// printed byte-for-byte, undoing nothing).
func DefaultRenderConfig() RenderConfig { return RenderConfig{} }

// Render formats prog's statement chain as the long-listing text: one
// line per statement, after Run has lowered every pass-through statement
// to its register-machine form. Statements Run never touches (RETURN,
// IF_NUMBER, ON_GO/ON_EXEC, and the rest of the GO_S/LBL_S vocabulary
// component H already finalized) print using toktab's long spellings
// (the short lister uses the short ones), without the character-width
// packing discipline — the long listing has no line-length cap.
func Render(prog *ir.Program, cfg RenderConfig) string {
	var b strings.Builder
	for n := prog.Head; n != nil; n = ir.Next(n) {
		switch v := n.(type) {
		case *ir.LineNumber:
			if v.Num >= 0 {
				fmt.Fprintf(&b, "%d:\n", v.Num)
			}
		case *ir.Statement:
			renderStatement(&b, prog, v, cfg)
		}
	}
	return b.String()
}

// commentText renders a REM/DATA byte payload, stripping the Atari
// high-bit inverse-video marker when cfg.AsciiComments asks for a plain
// ASCII approximation instead of the raw ATASCII bytes.
func commentText(data []byte, cfg RenderConfig) string {
	if !cfg.AsciiComments {
		return string(data)
	}
	out := make([]byte, len(data))
	for i, c := range data {
		out[i] = c & 0x7F
	}
	return string(out)
}

func renderStatement(b *strings.Builder, prog *ir.Program, s *ir.Statement, cfg RenderConfig) {
	switch s.Code {
	case toktab.StmtRem, toktab.StmtRemHidden:
		if d, ok := s.Args.(*ir.Data); ok {
			fmt.Fprintf(b, "\tREM%s\n", commentText(d.Bytes, cfg))
			return
		}
		b.WriteString("\tREM\n")
	case toktab.StmtData:
		if d, ok := s.Args.(*ir.Data); ok {
			fmt.Fprintf(b, "\tDATA %s\n", commentText(d.Bytes, cfg))
			return
		}
		b.WriteString("\tDATA\n")
	case toktab.StmtLabel:
		fmt.Fprintf(b, "%s:\n", labelName(prog, s.Args))
	case toktab.StmtGoLabel:
		fmt.Fprintf(b, "\tGO_S %s\n", labelName(prog, s.Args))
	case toktab.StmtMLet:
		ra := s.Args.(*ir.RegAssign)
		fmt.Fprintf(b, "\t%s %s,%s\n", toktab.Long(ra.Kind), exprText(prog, ra.Target), exprText(prog, ra.Value))
	case toktab.StmtExecAsm:
		call := s.Args.(*ir.AsmCall)
		args := make([]string, len(call.Args))
		for i, a := range call.Args {
			args[i] = exprText(prog, a)
		}
		fmt.Fprintf(b, "\tEXEC_ASM %s(%s)\n", call.Name, strings.Join(args, ","))
	case toktab.StmtJumpCond:
		fmt.Fprintf(b, "\tJUMP_COND %s\n", labelName(prog, s.Args))
	case toktab.StmtIfNumber, toktab.StmtIfThen:
		p := s.Args.(*ir.Pair)
		fmt.Fprintf(b, "\tIF %s THEN %s\n", exprText(prog, p.A), labelName(prog, p.B))
	case toktab.StmtOnGo, toktab.StmtOnExec:
		p := s.Args.(*ir.Pair)
		ll := p.B.(*ir.LabelList)
		names := make([]string, len(ll.IDs))
		for i, id := range ll.IDs {
			names[i] = prog.Vars.LongName(id)
		}
		verb := "GO#"
		if s.Code == toktab.StmtOnExec {
			verb = "EXEC"
		}
		fmt.Fprintf(b, "\tON %s %s %s\n", exprText(prog, p.A), verb, strings.Join(names, ","))
	default:
		name := toktab.LongName(s.Code)
		if name == "" {
			name = fmt.Sprintf("<stmt %d>", s.Code)
		}
		fmt.Fprintf(b, "\t%s", name)
		if s.Args != nil {
			fmt.Fprintf(b, " %s", exprText(prog, s.Args))
		}
		b.WriteByte('\n')
	}
}

func labelName(prog *ir.Program, e ir.Expr) string {
	vl, ok := e.(*ir.VarLabel)
	if !ok {
		return "?"
	}
	return prog.Vars.LongName(vl.ID)
}

func exprText(prog *ir.Program, e ir.Expr) string {
	s, _ := exprTextPrec(prog, e)
	return s
}

// exprTextPrec renders e and returns its own precedence, so the caller
// can decide whether to parenthesize it per toktab's NeedsLeft/RightParen
// rules — the same rules component I's pretty-printer-facing invariants
// assume.
func exprTextPrec(prog *ir.Program, e ir.Expr) (string, int) {
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
		return prog.Vars.LongName(v.ID), 13
	case *ir.VarString:
		return prog.Vars.LongName(v.ID) + "$", 13
	case *ir.VarArray:
		return prog.Vars.LongName(v.ID), 13
	case *ir.VarLabel:
		return prog.Vars.LongName(v.ID), 13
	case *ir.VarAsmLabel:
		return prog.Vars.LongName(v.ID), 13
	case *ir.DefNumber:
		return prog.Vars.LongName(v.ID), 13
	case *ir.DefString:
		return prog.Vars.LongName(v.ID) + "$", 13
	case *ir.Token:
		return tokenText(prog, v)
	default:
		return fmt.Sprintf("<%T>", e), 13
	}
}

func tokenText(prog *ir.Program, t *ir.Token) (string, int) {
	prec := toktab.Prec(t.Tok)

	if t.Tok == toktab.TokLParen {
		base, _ := exprTextPrec(prog, t.Left)
		idx, _ := exprTextPrec(prog, t.Right)
		return base + "(" + idx + ")", 13
	}
	if isFunctionIntrinsic(t.Tok) {
		operand, _ := exprTextPrec(prog, t.Right)
		return toktab.Long(t.Tok) + "(" + operand + ")", 13
	}
	if toktab.Arity(t.Tok) == 0 {
		return toktab.Long(t.Tok), 13
	}
	if toktab.Arity(t.Tok) == 1 {
		operand, cp := exprTextPrec(prog, t.Right)
		if toktab.NeedsRightParen(prec, cp) {
			operand = "(" + operand + ")"
		}
		return toktab.Long(t.Tok) + operand, prec
	}

	left, lp := exprTextPrec(prog, t.Left)
	if toktab.NeedsLeftParen(prec, lp) {
		left = "(" + left + ")"
	}
	right, rp := exprTextPrec(prog, t.Right)
	if toktab.NeedsRightParen(prec, rp) {
		right = "(" + right + ")"
	}
	sep := toktab.Long(t.Tok)
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
