// Package golden implements a TOML-fixture-driven golden test harness:
// table-driven test cases whose expected values live in a .toml file
// under a package's testdata/ directory instead of as Go struct
// literals, so an expected BCD digit string, token byte sequence, or
// short-listing wrap point can be read and edited without touching test
// code. Repurposes lookbusy1344-arm_emulator's own config-loading
// library for its TOML parsing, not its config schema.
package golden

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Cases is the shape every golden fixture file takes: an array of
// tables named "case" (TOML's `[[case]]` syntax), each decoded into a T.
type Cases[T any] struct {
	Case []T `toml:"case"`
}

// Load decodes the TOML fixture at path and returns its case list.
func Load[T any](path string) ([]T, error) {
	var c Cases[T]
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("golden: decoding %s: %w", path, err)
	}
	return c.Case, nil
}

// MustLoad is Load for callers that would just t.Fatal on error anyway;
// it panics instead, so a fixture typo fails loudly at the first test
// that loads it rather than being swallowed by an ignored error.
func MustLoad[T any](path string) []T {
	cases, err := Load[T](path)
	if err != nil {
		panic(err)
	}
	return cases
}
