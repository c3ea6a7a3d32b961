// Package vartab implements the compiler's variable table (component C):
// a fixed upper bound of 256 entries, each a long source name, a synthesized
// short name, and a type tag. A variable's identity is (long name, type):
// two entries may share a long name if their types differ.
package vartab

import (
	"fmt"

	"github.com/samber/lo"
)

// Type is the variant tag for a variable table entry.
type Type int

const (
	Float Type = iota
	String
	Array
	Label
	AsmLabel
	numTypes
)

func (t Type) String() string {
	switch t {
	case Float:
		return "float"
	case String:
		return "string"
	case Array:
		return "array"
	case Label:
		return "label"
	case AsmLabel:
		return "asmlabel"
	default:
		return "<error>"
	}
}

const maxVars = 256

type entry struct {
	long  string
	short string
	typ   Type
}

// Table is a typed symbol table of at most 256 variables.
type Table struct {
	entries []entry
	// shortCounter[t] is the number of short names already handed out for
	// variables of type t; each type is assigned from its own sequence, so
	// e.g. a Float named A and a String named A$ may legitimately share
	// the short name "A", disambiguated by the VNT sigil.
	shortCounter [numTypes]int
}

// New returns an empty variable table.
func New() *Table {
	return &Table{}
}

// caseFold folds a byte the way the original case-insensitive compare
// does: strip the high bit, fold ASCII letters to uppercase, leave
// everything else untouched.
func caseFold(c byte) byte {
	c &= 0x7F
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func nameEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if caseFold(a[i]) != caseFold(b[i]) {
			return false
		}
	}
	return true
}

// Search returns the id of the variable with the given long name and type,
// or -1 if none exists.
func (t *Table) Search(name string, typ Type) int {
	for i, e := range t.entries {
		if e.typ == typ && nameEqual(e.long, name) {
			return i
		}
	}
	return -1
}

// ErrTableFull is returned by NewVar when 256 variables already exist.
var ErrTableFull = fmt.Errorf("variable table full (256 variables max)")

// NewVar returns the id of the variable with the given (name, type),
// creating it if it doesn't already exist. Once created, an entry's name
// and type are immutable.
func (t *Table) NewVar(name string, typ Type) (int, error) {
	if id := t.Search(name, typ); id >= 0 {
		return id, nil
	}
	if len(t.entries) >= maxVars {
		return -1, ErrTableFull
	}
	id := len(t.entries)
	t.entries = append(t.entries, entry{
		long:  name,
		short: shortName(t.shortCounter[typ]),
		typ:   typ,
	})
	t.shortCounter[typ]++
	return id, nil
}

// shortName implements the 1-2 character short-name scheme: indices 0..25
// map to A..Z, 26 to '_', and 27.. use a two-character [A-Z_][0-9A-Z_]
// scheme, skipping the pair that would collide with the reserved keyword
// DO.
func shortName(n int) string {
	if n < 27 {
		if n == 26 {
			return "_"
		}
		return string(rune('A' + n))
	}
	if n > 161 {
		n++ // skip the slot that would spell "DO"
	}
	c1 := (n - 27) / 37
	c2 := (n - 27) % 37
	var b [2]byte
	if c1 == 26 {
		b[0] = '_'
	} else {
		b[0] = byte('A' + c1)
	}
	switch {
	case c2 < 10:
		b[1] = byte('0' + c2)
	case c2 == 36:
		b[1] = '_'
	default:
		b[1] = byte('A' + c2 - 10)
	}
	return string(b[:])
}

// Count returns the number of variables in the table.
func (t *Table) Count() int { return len(t.entries) }

// LongName returns the source-written name of variable id.
func (t *Table) LongName(id int) string { return t.entries[id].long }

// ShortName returns the synthesized short name of variable id.
func (t *Table) ShortName(id int) string { return t.entries[id].short }

// TypeOf returns the type tag of variable id.
func (t *Table) TypeOf(id int) Type { return t.entries[id].typ }

// Rebuild constructs a fresh table from a slice of surviving (id, newOrder)
// variables, used by dead-variable removal and _replace_var_id to remap
// indices. keep lists the ids to retain from t, in their new order; it
// returns the new table and a map from old id to new id.
func (t *Table) Rebuild(keep []int) (*Table, map[int]int) {
	fresh := New()
	remap := make(map[int]int, len(keep))
	for _, old := range keep {
		e := t.entries[old]
		id, err := fresh.NewVar(e.long, e.typ)
		if err != nil {
			// Rebuild only ever shrinks or reorders a table that already
			// fit, so this can only happen on programmer error.
			panic(fmt.Sprintf("vartab: rebuild overflowed: %v", err))
		}
		remap[old] = id
	}
	return fresh, remap
}

// AllIDs returns every variable id in table order.
func (t *Table) AllIDs() []int {
	return lo.Map(t.entries, func(_ entry, i int) int { return i })
}
