package bcd_test

import (
	"math"
	"testing"

	"tbxlc/internal/bcd"
	"tbxlc/internal/golden"
	"tbxlc/internal/sbuf"
)

func TestRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 3.14159, 65536, -65536, 0.001, 1e50, -1e-50, 12345, 32767}
	for _, x := range cases {
		f := bcd.FromFloat(x)
		got := bcd.ToFloat(f)
		if math.Abs(got-x) > math.Abs(x)*1e-9+1e-12 {
			t.Errorf("round trip %v: got %v", x, got)
		}
	}
}

func TestZero(t *testing.T) {
	f := bcd.FromFloat(0)
	if !bcd.IsZero(f) {
		t.Errorf("FromFloat(0) should be zero")
	}
	if bcd.ToFloat(f) != 0 {
		t.Errorf("ToFloat(zero) != 0")
	}
}

func TestUnderflow(t *testing.T) {
	f := bcd.FromFloat(1e-100)
	if !bcd.IsZero(f) {
		t.Errorf("underflow should encode as zero")
	}
}

func TestSaturate(t *testing.T) {
	f := bcd.FromFloat(1e99)
	for _, d := range f.Digits {
		if d != 0x99 {
			t.Errorf("saturated digits should be 0x99, got %x", f.Digits)
			break
		}
	}
	if f.Exp&0x7F != 0x71 {
		t.Errorf("saturated exponent wrong: %x", f.Exp)
	}
}

// formatCase is one row of testdata/format.toml.
type formatCase struct {
	In   float64 `toml:"in"`
	Want string  `toml:"want"`
}

func TestFormat(t *testing.T) {
	cases, err := golden.Load[formatCase]("testdata/format.toml")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cases {
		var out sbuf.Buf
		bcd.Format(bcd.FromFloat(c.In), &out)
		if out.String() != c.Want {
			t.Errorf("Format(%v) = %q, want %q", c.In, out.String(), c.Want)
		}
	}
}
