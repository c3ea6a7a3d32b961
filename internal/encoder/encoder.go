// Package encoder implements component K: the bit-exact binary
// tokenizer, compatible in layout with the historical interpreter's
// SAVE image (spec.md §4.K). The real keyword/token byte corpus is out
// of scope (per internal/toktab's own package doc); what this package
// reproduces exactly is the *shape* spec.md §4.K specifies — header
// layout, VNT/VVT/TOK structure, and the packing rules — using
// toktab's own token/statement numbering as the byte values.
package encoder

import (
	"fmt"

	"tbxlc/internal/bcd"
	"tbxlc/internal/ir"
	"tbxlc/internal/sbuf"
	"tbxlc/internal/toktab"
	"tbxlc/internal/vartab"
)

// Config holds the driver's binary-mode flags (spec.md §6).
type Config struct {
	MaxLineBytes int  // 16..255, default 255
	FullNames    bool // -f: VNT carries long names instead of short
	Protect      bool // -x: protected binary
	KeepComments bool // -k: keep REM statements in the output
}

// DefaultConfig returns the CLI's documented defaults.
func DefaultConfig() Config { return Config{MaxLineBytes: 255} }

const (
	maxSectionBytes = 0x9500
	immediateLine   = "SAVE \"D:X\"" // literal bytes; EOL byte appended below
)

// TooLongError reports a single statement that cannot fit on any line
// at the configured cap.
type TooLongError struct {
	Line int
	Size int
	Cap  int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("line %d: statement of %d bytes exceeds the %d-byte line cap", e.Line, e.Size, e.Cap)
}

// LineNumberError reports a non-monotonic or out-of-range line number.
type LineNumberError struct {
	Line int
	Msg  string
}

func (e *LineNumberError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Msg) }

// SizeError reports the program exceeding the total VNT+VVT+TOK budget.
type SizeError struct {
	VNT, VVT, TOK, Total, Limit int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("program too large: VNT=%d VVT=%d TOK=%d total=%d exceeds %d",
		e.VNT, e.VVT, e.TOK, e.Total, e.Limit)
}

// Encode renders prog as a complete binary SAVE image.
func Encode(prog *ir.Program, cfg Config) ([]byte, error) {
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = 255
	}
	vnt := buildVNT(prog.Vars, cfg)
	vvt := buildVVT(prog.Vars)
	tok, err := buildTOK(prog, cfg)
	if err != nil {
		return nil, err
	}

	total := vnt.Len() + vvt.Len() + tok.Len()
	if total > maxSectionBytes {
		return nil, &SizeError{VNT: vnt.Len(), VVT: vvt.Len(), TOK: tok.Len(), Total: total, Limit: maxSectionBytes}
	}

	startVNT := 0x100
	startVVT := startVNT + vnt.Len()
	startTOK := startVVT + vvt.Len()
	startImmediate := startTOK + tok.Len()
	endOfProgram := startImmediate + len(immediateLine) + 1

	var out sbuf.Buf
	putWord(&out, 0)
	putWord(&out, startVNT)
	putWord(&out, startVVT-1)
	putWord(&out, startVVT)
	putWord(&out, startTOK)
	putWord(&out, startImmediate)
	putWord(&out, endOfProgram)
	out.Cat(&vnt)
	out.Cat(&vvt)
	out.Cat(&tok)
	out.PutString(immediateLine)
	out.Put(0x10 + byte(toktab.TokEOL))
	return out.Bytes(), nil
}

func putWord(b *sbuf.Buf, w int) {
	b.Put(byte(w & 0xFF))
	b.Put(byte((w >> 8) & 0xFF))
}

// buildVNT concatenates each variable's name entry (short name by
// default, long name under -f), high-bit-terminated, followed by the
// single zero-byte table terminator.
func buildVNT(vars *vartab.Table, cfg Config) sbuf.Buf {
	var b sbuf.Buf
	for _, id := range vars.AllIDs() {
		name := vars.ShortName(id)
		if cfg.FullNames {
			name = vars.LongName(id)
		}
		bytes := []byte(name)
		switch vars.TypeOf(id) {
		case vartab.String:
			bytes = append(bytes, '$')
		case vartab.Array:
			bytes = append(bytes, '(')
		}
		for i, c := range bytes {
			if i == len(bytes)-1 {
				c |= 0x80
			}
			b.Put(c)
		}
	}
	b.Put(0)
	return b
}

// vvtTypeByte matches spec.md §4.K's VVT type tag.
func vvtTypeByte(t vartab.Type) byte {
	switch t {
	case vartab.String:
		return 0x80
	case vartab.Array:
		return 0x40
	case vartab.Label, vartab.AsmLabel:
		return 0xC0
	default:
		return 0x00
	}
}

// buildVVT emits the fixed 8-byte-per-variable value table: type byte,
// variable index, six zeroed payload bytes (the interpreter fills these
// at RUN).
func buildVVT(vars *vartab.Table) sbuf.Buf {
	var b sbuf.Buf
	for _, id := range vars.AllIDs() {
		b.Put(vvtTypeByte(vars.TypeOf(id)))
		b.Put(byte(id))
		b.Write(make([]byte, 6))
	}
	return b
}
