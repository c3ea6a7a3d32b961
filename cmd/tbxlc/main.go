// Command tbxlc compiles line-numbered TurboBasic XL source into a
// binary SAVE image, a long pseudo-assembly listing, or a short textual
// listing (spec.md §6).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tbxlc/internal/diag"
	"tbxlc/internal/encoder"
	"tbxlc/internal/optimize"
	"tbxlc/internal/shortlist"
)

var optPassNames = []string{
	"const-fold", "number-tok", "commute", "line-num", "const-vars", "fixed-vars",
}

var command = &cobra.Command{
	Use:   "tbxlc [flags] file...",
	Short: "TurboBasic XL compiler",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd, args)
	},
}

func init() {
	f := command.Flags()
	f.BoolP("binary", "b", false, "binary output (default)")
	f.BoolP("long", "l", false, "long pseudo-assembly listing")
	f.BoolP("short", "s", false, "short textual listing")
	f.StringP("output", "o", "", "output path, or a leading-dot extension applied per input file")
	f.BoolP("stdout", "c", false, "write output to stdout instead of a file")
	f.IntP("max-line", "n", 0, "max line length (short: 16..511 chars; binary: 16..255 bytes)")
	f.BoolP("full-names", "f", false, "binary: carry full variable names in the VNT")
	f.BoolP("protect", "x", false, "binary: protected-image flag; accepted, has no effect on the output")
	f.BoolP("keep-comments", "k", false, "binary: keep REM statements in the output")
	f.BoolP("ascii-comments", "a", false, "long listing: strip the high bit from comment bytes")
	f.BoolP("atari-dialect", "A", false, "Atari BASIC dialect flag; accepted, has no effect (no parser is wired in)")
	f.StringArrayP("optimize", "O", nil, "enable/disable an optimizer pass (±name), or 'help' to list passes")
	f.Lookup("optimize").NoOptDefVal = ""
	f.BoolP("verbose", "v", false, "more verbose diagnostics")
	f.BoolP("quiet", "q", false, "suppress warnings")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCompile resolves flags into a pipelineConfig and compiles every
// input file named in args, per spec.md §6/§7.
func runCompile(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()

	mode, err := resolveMode(f)
	if err != nil {
		return err
	}

	optNames, _ := f.GetStringArray("optimize")
	if helpRequested(optNames) {
		fmt.Fprintln(cmd.OutOrStdout(), "optimizer passes:", strings.Join(optPassNames, ", "))
		return nil
	}
	level, err := optimize.ParseLevelNames(cleanOptNames(optNames))
	if err != nil {
		return err
	}

	maxLine, _ := f.GetInt("max-line")
	fullNames, _ := f.GetBool("full-names")
	protect, _ := f.GetBool("protect")
	keepComments, _ := f.GetBool("keep-comments")
	asciiComments, _ := f.GetBool("ascii-comments")
	// -A is accepted and otherwise unused: selecting the Atari BASIC
	// dialect is a front-end/parser concern, and no parser is wired in.
	_, _ = f.GetBool("atari-dialect")

	cfg := pipelineConfig{mode: mode, optLevel: level}
	cfg.enc = encoder.DefaultConfig()
	cfg.enc.FullNames = fullNames
	cfg.enc.Protect = protect
	cfg.enc.KeepComments = keepComments
	cfg.short = shortlist.DefaultConfig()
	cfg.render.AsciiComments = asciiComments
	if maxLine > 0 {
		cfg.enc.MaxLineBytes = maxLine
		cfg.short.MaxLineChars = maxLine
	}

	verbose, _ := f.GetBool("verbose")
	quiet, _ := f.GetBool("quiet")
	diagLevel := diag.Normal
	switch {
	case quiet:
		diagLevel = diag.Quiet
	case verbose:
		diagLevel = diag.Verbose
	}

	outFlag, _ := f.GetString("output")
	toStdout, _ := f.GetBool("stdout")

	if len(args) == 0 {
		return fmt.Errorf("no input files given")
	}
	multi := len(args) > 1

	failed := false
	for _, in := range args {
		if err := compileFile(cmd, in, outFlag, toStdout, mode, multi, cfg, diagLevel); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more input files failed")
	}
	return nil
}

// resolveMode enforces -b/-l/-s mutual exclusivity, defaulting to
// binary when none is given.
func resolveMode(f *pflag.FlagSet) (outputMode, error) {
	b, _ := f.GetBool("binary")
	l, _ := f.GetBool("long")
	s, _ := f.GetBool("short")
	n := 0
	for _, v := range []bool{b, l, s} {
		if v {
			n++
		}
	}
	if n > 1 {
		return modeBinary, fmt.Errorf("-b, -l and -s are mutually exclusive")
	}
	switch {
	case l:
		return modeLong, nil
	case s:
		return modeShort, nil
	default:
		return modeBinary, nil
	}
}

// helpRequested reports whether the user asked for -O help rather than
// naming actual passes.
func helpRequested(names []string) bool {
	for _, n := range names {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(n, "+"), "-"), "help") {
			return true
		}
	}
	return false
}

// cleanOptNames drops empty -O values (as given by -O= or --optimize=)
// before the list reaches ParseLevelNames. -O's NoOptDefVal is empty, so
// pflag treats its value as required: a bare -O takes the next argument
// as its value. Only omitting -O altogether leaves the list empty, which
// ParseLevelNames reads as "enable everything".
func cleanOptNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// outputExtension returns the placeholder-but-consistent default
// extension for a mode; no real historical SAVE-file naming convention
// is in scope, so these are an arbitrary but stable choice (DESIGN.md).
func outputExtension(mode outputMode) string {
	switch mode {
	case modeLong:
		return ".LST"
	case modeShort:
		return ".SHO"
	default:
		return ".BIN"
	}
}

// resolveOutputPath applies -o's two forms: a leading-dot extension
// applied to each input's base name, or a literal path (only valid for
// a single input file).
func resolveOutputPath(in, outFlag string, mode outputMode, multi bool) (string, error) {
	if outFlag == "" {
		base := strings.TrimSuffix(in, filepath.Ext(in))
		return base + outputExtension(mode), nil
	}
	if strings.HasPrefix(outFlag, ".") {
		base := strings.TrimSuffix(in, filepath.Ext(in))
		return base + outFlag, nil
	}
	if multi {
		return "", fmt.Errorf("-o %s: a literal output path requires a single input file; use a leading-dot extension for multiple files", outFlag)
	}
	return outFlag, nil
}

func compileFile(cmd *cobra.Command, in, outFlag string, toStdout bool, mode outputMode, multi bool, cfg pipelineConfig, level diag.Level) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	prog, err := parse(in, in, src)
	if err != nil {
		return err
	}

	d := diag.New(cmd.ErrOrStderr(), level)
	out, err := compile(prog, cfg, d)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	if toStdout {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}

	outPath, err := resolveOutputPath(in, outFlag, mode, multi)
	if err != nil {
		return err
	}
	inAbs, errIn := filepath.Abs(in)
	outAbs, errOut := filepath.Abs(outPath)
	if errIn == nil && errOut == nil && inAbs == outAbs {
		return fmt.Errorf("%s: output path is the same as the input file", in)
	}
	return os.WriteFile(outPath, out, 0644)
}
