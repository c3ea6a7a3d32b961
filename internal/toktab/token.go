// Package toktab holds the fixed token and statement metadata tables:
// input/long/short spellings, operator precedence, and parenthesization
// rules. Per spec.md §1 these tables are the single source of truth for
// the pretty-printer and short-lister, and are themselves treated as fixed
// data (the historical keyword/token corpus is out of scope; only the
// shape — spellings plus precedence plus the statement table — is
// specified here).
package toktab

// Tok is an operator or punctuation token.
type Tok int

const (
	TokNone Tok = iota

	// Statement-level separators. Precedence -1: never need parentheses.
	TokColon
	TokEOL
	TokComma
	TokSemicolon
	TokLParen
	TokRParen
	TokThen // IF_NUMBER/IF_THEN's THEN separator, between condition and target

	// Small-integer tokens: numeric constants 0,1,2,3 substituted after
	// folding to save six bytes each in the binary encoding.
	TokPer0
	TokPer1
	TokPer2
	TokPer3

	// Logical.
	TokOr
	TokAnd
	TokNot

	// Comparisons.
	TokLt
	TokGt
	TokLe
	TokGe
	TokEq
	TokNe

	// Additive / bitwise-additive tier.
	TokAdd
	TokSub
	TokBitAnd
	TokBitOr
	TokBitExor

	// Multiplicative.
	TokMul
	TokDiv
	TokIDiv // DIV
	TokMod  // MOD

	// Unary.
	TokUPlus
	TokUMinus

	// Exponentiation (highest binary precedence).
	TokPow

	// Unary intrinsics (string).
	TokChrDlr
	TokLen
	TokAsc
	TokDec

	// Unary intrinsics (math).
	TokInt
	TokTrunc
	TokFrac
	TokAbs
	TokSgn
	TokSqr
	TokLog
	TokExp
	TokClog
	TokAtn
	TokCos
	TokSin

	// Store-kind tags used only as the Tok of a register-machine MLET's
	// RegAssign (component J); never parsed from source or given a real
	// spelling.
	TokIAssign // I_ASGN: store as integer (16-bit)
	TokBAssign // B_ASGN: store as boolean (0/1 in AL)
	TokFAssign // F_ASGN: store as float (FR0)
	TokIStore  // I_XSTO: indirect integer store (array element)
	TokFStore  // F_XSTO: indirect float store (array element)

	tokCount
)

type tokInfo struct {
	in, short, long string
	prec            int // -1..13; -1 is a statement separator
	arity           int // 0 = n/a (punctuation), 1 = unary, 2 = binary
}

var tokTable = [tokCount]tokInfo{
	TokColon:     {":", ":", ":", -1, 0},
	TokEOL:       {"", "", "", -1, 0},
	TokComma:     {",", ",", ",", -1, 0},
	TokSemicolon: {";", ";", ";", -1, 0},
	TokLParen:    {"(", "(", "(", -1, 0},
	TokRParen:    {")", ")", ")", -1, 0},
	TokThen:      {"THEN", "THEN", "THEN", -1, 0},

	TokPer0: {"0", "0", "0", 13, 0},
	TokPer1: {"1", "1", "1", 13, 0},
	TokPer2: {"2", "2", "2", 13, 0},
	TokPer3: {"3", "3", "3", 13, 0},

	TokOr:  {"OR", "OR", "OR", 1, 2},
	TokAnd: {"AND", "AND", "AND", 2, 2},
	TokNot: {"NOT", "NOT", "NOT", 3, 1},

	TokLt: {"<", "<", "<", 4, 2},
	TokGt: {">", ">", ">", 4, 2},
	TokLe: {"<=", "<=", "<=", 4, 2},
	TokGe: {">=", ">=", ">=", 4, 2},
	TokEq: {"=", "=", "=", 4, 2},
	TokNe: {"<>", "<>", "<>", 4, 2},

	TokAdd:     {"+", "+", "+", 5, 2},
	TokSub:     {"-", "-", "-", 5, 2},
	TokBitAnd:  {"&", "&", "&", 5, 2},
	TokBitOr:   {"!", "!", "!", 5, 2},
	TokBitExor: {"EXOR", "EXOR", "EXOR", 5, 2},

	TokMul:  {"*", "*", "*", 6, 2},
	TokDiv:  {"/", "/", "/", 6, 2},
	TokIDiv: {"DIV", "DIV", "DIV", 6, 2},
	TokMod:  {"MOD", "MOD", "MOD", 6, 2},

	TokUPlus:  {"+", "+", "+", 9, 1},
	TokUMinus: {"-", "-", "-", 9, 1},

	TokPow: {"^", "^", "^", 10, 2},

	TokChrDlr: {"CHR$", "CHR$", "CHR$", 13, 1},
	TokLen:    {"LEN", "LEN", "LEN", 13, 1},
	TokAsc:    {"ASC", "ASC", "ASC", 13, 1},
	TokDec:    {"DEC", "DEC", "DEC", 13, 1},

	TokInt:   {"INT", "INT", "INT", 13, 1},
	TokTrunc: {"TRUNC", "TRNC", "TRUNC", 13, 1},
	TokFrac:  {"FRAC", "FRAC", "FRAC", 13, 1},
	TokAbs:   {"ABS", "ABS", "ABS", 13, 1},
	TokSgn:   {"SGN", "SGN", "SGN", 13, 1},
	TokSqr:   {"SQR", "SQR", "SQR", 13, 1},
	TokLog:   {"LOG", "LOG", "LOG", 13, 1},
	TokExp:   {"EXP", "EXP", "EXP", 13, 1},
	TokClog:  {"CLOG", "CLOG", "CLOG", 13, 1},
	TokAtn:   {"ATN", "ATN", "ATN", 13, 1},
	TokCos:   {"COS", "COS", "COS", 13, 1},
	TokSin:   {"SIN", "SIN", "SIN", 13, 1},

	TokIAssign: {"", "I_ASGN", "I_ASGN", -1, 2},
	TokBAssign: {"", "B_ASGN", "B_ASGN", -1, 2},
	TokFAssign: {"", "F_ASGN", "F_ASGN", -1, 2},
	TokIStore:  {"", "I_XSTO", "I_XSTO", -1, 2},
	TokFStore:  {"", "F_XSTO", "F_XSTO", -1, 2},
}

// In returns the input spelling of tok.
func In(tok Tok) string { return tokTable[tok].in }

// Short returns the shortest listing spelling of tok.
func Short(tok Tok) string { return tokTable[tok].short }

// Long returns the pretty-printed spelling of tok.
func Long(tok Tok) string { return tokTable[tok].long }

// Prec returns tok's precedence level, -1..13. Level -1 marks a
// statement-level separator that never needs parentheses.
func Prec(tok Tok) int { return tokTable[tok].prec }

// Arity returns 1 for unary operators, 2 for binary, 0 for punctuation.
func Arity(tok Tok) int { return tokTable[tok].arity }

// NeedsRightParen reports whether a right child with precedence childPrec
// needs parenthesizing under a parent of precedence parentPrec: per
// spec.md §3 invariant (iii), the right child is parenthesized whenever
// its precedence is greater than or equal to the parent's.
func NeedsRightParen(parentPrec, childPrec int) bool {
	return parentPrec >= 0 && childPrec >= parentPrec
}

// NeedsLeftParen reports whether a left child with precedence childPrec
// needs parenthesizing under a parent of precedence parentPrec: the left
// child is parenthesized whenever its precedence is strictly less than the
// parent's.
func NeedsLeftParen(parentPrec, childPrec int) bool {
	return parentPrec >= 0 && childPrec >= 0 && childPrec < parentPrec
}

// smallIntToks maps the literal values 0..3 to their small-integer token,
// used by the optimizer's token-substitution pass.
var smallIntToks = [4]Tok{TokPer0, TokPer1, TokPer2, TokPer3}

// SmallIntToken returns the TOK_PER_n token for n in 0..3, and ok=false
// otherwise.
func SmallIntToken(n int) (Tok, bool) {
	if n < 0 || n > 3 {
		return TokNone, false
	}
	return smallIntToks[n], true
}

// SmallIntValue is the inverse of SmallIntToken.
func SmallIntValue(tok Tok) (int, bool) {
	for n, t := range smallIntToks {
		if t == tok {
			return n, true
		}
	}
	return 0, false
}

// IsTokenSpelling reports whether name matches some token's input
// spelling, case-insensitively, satisfying deftab.KeywordChecker.
func IsTokenSpelling(name string) bool {
	for i := Tok(1); i < tokCount; i++ {
		if tokTable[i].in != "" && equalFold(tokTable[i].in, name) {
			return true
		}
	}
	return false
}

// IsTokenSpellingWithDollar reports whether name+"$" matches some token's
// input spelling, case-insensitively.
func IsTokenSpellingWithDollar(name string) bool {
	return IsTokenSpelling(name + "$")
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i]&0x7F, b[i]&0x7F
		if ca >= 'a' && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
