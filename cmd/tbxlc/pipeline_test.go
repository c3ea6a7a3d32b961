package main

import (
	"bytes"
	"strings"
	"testing"

	"tbxlc/internal/diag"
	"tbxlc/internal/encoder"
	"tbxlc/internal/frontend"
	"tbxlc/internal/optimize"
	"tbxlc/internal/shortlist"
	"tbxlc/internal/toktab"
)

// buildSample builds "10 LET X=1+2" / "20 END" directly through
// internal/frontend.Builder — the adapter a real parser would drive —
// bypassing this package's stubbed parse function entirely.
func buildSample(t *testing.T) *frontend.Builder {
	t.Helper()
	b := frontend.New("p", "test.bas")

	b.Line(10)
	x, err := b.NumberVar("X")
	if err != nil {
		t.Fatal(err)
	}
	sum := b.Token(toktab.TokAdd, b.Number(1), b.Number(2))
	b.Emit(toktab.StmtLet, b.Pair(x, sum))

	b.Line(20)
	b.Emit(toktab.StmtEnd, nil)

	return b
}

func TestCompileProducesBinaryImage(t *testing.T) {
	b := buildSample(t)
	cfg := pipelineConfig{mode: modeBinary, optLevel: optimize.All, enc: encoder.DefaultConfig()}
	d := diag.New(&bytes.Buffer{}, diag.Quiet)

	out, err := compile(b.Prog, cfg, d)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) < 14 {
		t.Fatalf("expected at least a 7-word header, got %d bytes", len(out))
	}
}

func TestCompileProducesShortListing(t *testing.T) {
	b := buildSample(t)
	cfg := pipelineConfig{mode: modeShort, optLevel: optimize.All, short: shortlist.DefaultConfig()}
	d := diag.New(&bytes.Buffer{}, diag.Quiet)

	out, err := compile(b.Prog, cfg, d)
	if err != nil {
		t.Fatal(err)
	}
	// The short listing writes X under its short name A.
	if !strings.Contains(string(out), "A=3") {
		t.Errorf("expected constant folding to produce A=3, got:\n%s", out)
	}
}

func TestCompileProducesLongListing(t *testing.T) {
	b := buildSample(t)
	cfg := pipelineConfig{mode: modeLong, optLevel: optimize.All}
	d := diag.New(&bytes.Buffer{}, diag.Quiet)

	out, err := compile(b.Prog, cfg, d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "X,3") {
		t.Errorf("expected the folded constant in the long listing, got:\n%s", out)
	}
}

func TestResolveOutputPathAppliesLeadingDotExtension(t *testing.T) {
	got, err := resolveOutputPath("game.bas", ".OBJ", modeBinary, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "game.OBJ" {
		t.Errorf("got %q, want game.OBJ", got)
	}
}

func TestResolveOutputPathDefaultsPerMode(t *testing.T) {
	got, err := resolveOutputPath("game.bas", "", modeLong, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "game.LST" {
		t.Errorf("got %q, want game.LST", got)
	}
}

func TestResolveOutputPathRejectsLiteralPathForMultipleInputs(t *testing.T) {
	if _, err := resolveOutputPath("game.bas", "out.bin", modeBinary, true); err == nil {
		t.Error("expected an error for a literal -o path with multiple inputs")
	}
}

func TestCleanOptNamesDropsEmptyValues(t *testing.T) {
	got := cleanOptNames([]string{"", "const-fold"})
	if len(got) != 1 || got[0] != "const-fold" {
		t.Errorf("got %v, want [const-fold]", got)
	}
}

func TestHelpRequestedRecognizesHelpCaseInsensitively(t *testing.T) {
	if !helpRequested([]string{"HELP"}) {
		t.Error("expected HELP to be recognized as a help request")
	}
	if helpRequested([]string{"const-fold"}) {
		t.Error("did not expect const-fold to be recognized as a help request")
	}
}
