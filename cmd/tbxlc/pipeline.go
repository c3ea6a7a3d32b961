package main

import (
	"fmt"

	"tbxlc/internal/codegen"
	"tbxlc/internal/desugar"
	"tbxlc/internal/diag"
	"tbxlc/internal/encoder"
	"tbxlc/internal/frontend"
	"tbxlc/internal/ir"
	"tbxlc/internal/lower"
	"tbxlc/internal/optimize"
	"tbxlc/internal/shortlist"
)

// outputMode selects which artifact a compile produces.
type outputMode int

const (
	modeBinary outputMode = iota
	modeLong
	modeShort
)

// pipelineConfig bundles every flag that shapes a compile's output,
// independent of file-path/CLI plumbing.
type pipelineConfig struct {
	mode     outputMode
	optLevel optimize.Level
	enc      encoder.Config
	short    shortlist.Config
	render   codegen.RenderConfig
}

// parse turns BASIC source text into an initial *ir.Program.
//
// The lexical/grammar front end is out of scope (spec.md §1: "only its
// output contract... is specified"), so this is not a parser — it is a
// stub naming the real seam. A real parser drives internal/frontend.Builder
// directly (one call per recognized construct, per Builder's own doc
// comment); it never goes through source text at all. This function
// exists only so the driver has a single, honestly-failing entry point
// for "compile this file's text" instead of silently accepting source it
// cannot actually read.
func parse(name, file string, src []byte) (*ir.Program, error) {
	if len(src) == 0 {
		return frontend.New(name, file).Prog, nil
	}
	return nil, fmt.Errorf("%s: no BASIC parser is wired in; build the program with internal/frontend.Builder instead of source text", file)
}

// compile runs the fixed lowering/desugar/optimize sequence over prog,
// then renders the artifact cfg.mode asks for. A pass that returns an
// error ends the compile with that error in every mode, so no long
// listing is produced for it either. Errors recorded in d without being
// returned make binary and short output refuse, while the long listing
// is still rendered.
func compile(prog *ir.Program, cfg pipelineConfig, d *diag.Sink) ([]byte, error) {
	if err := lower.Run(prog, d); err != nil {
		return nil, err
	}
	if err := desugar.Run(prog, d); err != nil {
		return nil, err
	}
	if err := optimize.Run(prog, cfg.optLevel, d); err != nil {
		return nil, err
	}

	switch cfg.mode {
	case modeLong:
		if err := codegen.Run(prog, d); err != nil {
			return nil, err
		}
		return []byte(codegen.Render(prog, cfg.render)), nil
	case modeShort:
		if d.Failed() {
			return nil, fmt.Errorf("compile failed, refusing short output")
		}
		return []byte(shortlist.Render(prog, cfg.short)), nil
	default:
		if d.Failed() {
			return nil, fmt.Errorf("compile failed, refusing binary output")
		}
		return encoder.Encode(prog, cfg.enc)
	}
}
