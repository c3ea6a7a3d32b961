package ir

import (
	"tbxlc/internal/deftab"
	"tbxlc/internal/vartab"
)

// Program is a complete parsed/compiled unit: its arena, variable and
// definition tables, and the head of its statement chain. All of a
// program's IR nodes are owned by its Arena; the variable table is owned
// by the Program and may be replaced wholesale by dead-variable removal.
type Program struct {
	Arena *Arena
	Vars  *vartab.Table
	Defs  *deftab.Table
	Head  ChainNode
}

// NewProgram returns an empty program ready for the front-end adapter to
// populate.
func NewProgram(name, file string) *Program {
	return &Program{
		Arena: NewArena(name, file),
		Vars:  vartab.New(),
		Defs:  deftab.New(),
	}
}

// Statements returns every *Statement in chain order, skipping
// *LineNumber markers. Useful for passes that only care about statement
// content, not source line-number bookkeeping.
func (p *Program) Statements() []*Statement {
	var out []*Statement
	for n := p.Head; n != nil; {
		switch v := n.(type) {
		case *Statement:
			out = append(out, v)
			n = v.Next
		case *LineNumber:
			n = v.Next
		default:
			return out
		}
	}
	return out
}

// Next returns the chain successor of n, or nil at the end.
func Next(n ChainNode) ChainNode {
	switch v := n.(type) {
	case *Statement:
		return v.Next
	case *LineNumber:
		return v.Next
	}
	return nil
}

// SetNext sets the chain successor of n.
func SetNext(n ChainNode, next ChainNode) {
	switch v := n.(type) {
	case *Statement:
		v.Next = next
	case *LineNumber:
		v.Next = next
	}
}
