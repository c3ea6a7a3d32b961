// Package bcd converts between IEEE double precision floats and the Atari
// 6-byte base-100 binary-coded-decimal floating point format used by the
// interpreter's VVT and by numeric constants embedded in tokenized lines.
package bcd

import "math"

// Float is the on-disk 6-byte BCD representation: a sign+exponent byte and
// five digit bytes, each packing two decimal digits as nibbles.
type Float struct {
	Exp    byte
	Digits [5]byte
}

// decadeTable holds the 99 powers of 100 used while encoding, 1e-98..1e+98.
var decadeTable = func() [99]float64 {
	var t [99]float64
	for i := range t {
		t[i] = math.Pow(10, float64(-98+2*i))
	}
	return t
}()

// decodeTable holds the 128 powers of 10 used while decoding, 1e-136..1e+118
// in steps of 2, indexed by the low 7 bits of Exp.
var decodeTable = func() [128]float64 {
	var t [128]float64
	for i := range t {
		t[i] = math.Pow(10, float64(-136+2*i))
	}
	return t
}()

func toBCDByte(n int) byte {
	return byte((n/10)*16 + n%10)
}

// FromFloat encodes x into the Atari BCD representation, matching
// ataribcd.c's atari_bcd_from_double bit for bit: a zero encoding for x==0,
// underflow to zero below 1e-99, saturation to the maximum magnitude at or
// above 1e+98, and half-up rounding at the tenth significant digit
// otherwise.
func FromFloat(x float64) Float {
	var f Float
	if x == 0 {
		return f
	}
	if x < 0 {
		f.Exp = 0x80
		x = -x
	}
	if x < 1e-99 {
		return Float{Exp: f.Exp}
	}
	if x >= 1e+98 {
		f.Exp |= 0x71
		for i := range f.Digits {
			f.Digits[i] = 0x99
		}
		return f
	}
	f.Exp |= 0x0E
	for i, bound := range decadeTable {
		if x < bound {
			n := uint64(0.5 + x*10000000000.0/bound)
			f.Digits[4] = toBCDByte(int(n % 100))
			n /= 100
			f.Digits[3] = toBCDByte(int(n % 100))
			n /= 100
			f.Digits[2] = toBCDByte(int(n % 100))
			n /= 100
			f.Digits[1] = toBCDByte(int(n % 100))
			n /= 100
			f.Digits[0] = toBCDByte(int(n))
			f.Exp += byte(i)
			break
		}
	}
	return f
}

// ToFloat is the inverse of FromFloat, matching atari_bcd_to_double.
func ToFloat(f Float) float64 {
	if f.Exp == 0 {
		return 0.0
	}
	if f.Exp == 0x80 {
		return math.Copysign(0, -1)
	}
	x := float64(f.Digits[0]>>4)*10 + float64(f.Digits[0]&0x0F)
	for i := 1; i < 5; i++ {
		x = x*100 + float64(f.Digits[i]>>4)*10 + float64(f.Digits[i]&0x0F)
	}
	x *= decodeTable[f.Exp&0x7F]
	if f.Exp&0x80 != 0 {
		return -x
	}
	return x
}

// IsZero reports whether f encodes the value zero (either of the two zero
// encodings, +0 and -0).
func IsZero(f Float) bool {
	return f.Exp&0x7F == 0
}
