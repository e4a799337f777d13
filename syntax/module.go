package syntax

import "github.com/qed-lang/qed/loc"

// An Entry is one top-level entry of a module.
type Entry interface {
	// Loc returns the entry's location in its source file.
	Loc() loc.Loc

	isEntry()
}

// A Decl declares the type of a global name.
type Decl struct {
	Name string
	Type Term
	L    loc.Loc
}

// A Def binds a global name to a term.
type Def struct {
	Name string
	Body Term
	L    loc.Loc
}

// A Data is a datatype definition entry.
type Data struct {
	Def *DataDef
	L   loc.Loc
}

func (*Decl) isEntry() {}
func (*Def) isEntry()  {}
func (*Data) isEntry() {}

func (e *Decl) Loc() loc.Loc { return e.L }
func (e *Def) Loc() loc.Loc  { return e.L }
func (e *Data) Loc() loc.Loc { return e.L }

// A Module is a checked sequence of entries
// identified by an import path.
type Module struct {
	Path    string
	Entries []Entry
}
