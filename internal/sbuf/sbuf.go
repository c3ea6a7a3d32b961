// Package sbuf implements a growable byte buffer with the small set of
// append helpers the rest of the pipeline needs: raw bytes, decimal and
// fixed-width hex digits, and a lowercasing ASCII append. It carries no
// Unicode handling — every payload here is raw interpreter bytes.
package sbuf

// Buf is a growable byte buffer. The zero value is ready to use.
type Buf struct {
	data []byte
}

// Put appends a single byte.
func (b *Buf) Put(c byte) {
	b.data = append(b.data, c)
}

// Write appends raw bytes.
func (b *Buf) Write(p []byte) {
	b.data = append(b.data, p...)
}

// PutString appends the bytes of s verbatim.
func (b *Buf) PutString(s string) {
	b.data = append(b.data, s...)
}

// PutLower appends s, mapping ASCII 'A'-'Z' to lowercase; matches
// sb_puts_lcase, used by the long-listing ASCII-comment conversion.
func (b *Buf) PutLower(s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		b.Put(c)
	}
}

// PutDec appends the decimal representation of n, matching sb_put_dec
// (leading '-' for negatives, no leading zeros).
func (b *Buf) PutDec(n int) {
	if n < 0 {
		b.Put('-')
		n = -n
	}
	if n == 0 {
		b.Put('0')
		return
	}
	m := 1000000000
	for m > n {
		m /= 10
	}
	for m > 0 {
		d := n / m
		n -= d * m
		b.Put(byte('0' + d))
		m /= 10
	}
}

const hexDigits = "0123456789ABCDEF"

// PutHex appends the uppercase hex representation of n zero-padded to dig
// digits, matching sb_put_hex.
func (b *Buf) PutHex(n int, dig int) {
	for ; dig > 0; dig-- {
		b.Put(hexDigits[(n>>uint(4*dig-4))&0x0F])
	}
}

// Cat appends the contents of src, matching sb_cat.
func (b *Buf) Cat(src *Buf) {
	b.data = append(b.data, src.data...)
}

// Len returns the number of bytes written so far.
func (b *Buf) Len() int { return len(b.data) }

// Bytes returns the accumulated bytes. The caller must not mutate the
// returned slice.
func (b *Buf) Bytes() []byte { return b.data }

// String returns the accumulated bytes as a string.
func (b *Buf) String() string { return string(b.data) }

// Reset empties the buffer without releasing its backing array.
func (b *Buf) Reset() { b.data = b.data[:0] }
