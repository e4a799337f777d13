package checker

import (
	"strings"

	"github.com/qed-lang/qed/loc"
	"github.com/qed-lang/qed/syntax"
	"golang.org/x/exp/slices"
)

// Globals is the signature of everything a module defines at the
// top level: the types and bodies of its global names and its
// datatype definitions. It grows as entries are checked and is
// merged with the globals of imported modules.
type Globals struct {
	types map[string]*global
	defs  map[string]*global
	data  map[string]*dataGlobal
}

type global struct {
	term   syntax.Term
	l      loc.Loc
	origin string
}

type dataGlobal struct {
	def    *syntax.DataDef
	l      loc.Loc
	origin string
}

func NewGlobals() *Globals {
	return &Globals{
		types: make(map[string]*global),
		defs:  make(map[string]*global),
		data:  make(map[string]*dataGlobal),
	}
}

// Type returns the declared or inferred type of a global name.
func (g *Globals) Type(name string) (syntax.Term, bool) {
	if t, ok := g.types[name]; ok {
		return t.term, true
	}
	return nil, false
}

// Def returns the body of a global definition.
func (g *Globals) Def(name string) (syntax.Term, bool) {
	if d, ok := g.defs[name]; ok {
		return d.term, true
	}
	return nil, false
}

// TyCon returns the definition of the named datatype.
func (g *Globals) TyCon(name string) (*syntax.DataDef, bool) {
	if d, ok := g.data[name]; ok {
		return d.def, true
	}
	return nil, false
}

// A ConMatch pairs a data constructor with the datatype defining it.
type ConMatch struct {
	Data *syntax.DataDef
	Con  *syntax.ConDef
}

// DataCons returns every constructor with the given name,
// ordered by datatype name. Constructor names are only unique
// within a datatype, so there may be several.
func (g *Globals) DataCons(name string) []ConMatch {
	var matches []ConMatch
	for _, d := range g.data {
		if c, ok := d.def.Con(name); ok {
			matches = append(matches, ConMatch{Data: d.def, Con: c})
		}
	}
	slices.SortFunc(matches, func(a, b ConMatch) int {
		return strings.Compare(a.Data.Name, b.Data.Name)
	})
	return matches
}

// DataCon returns the named constructor of the named datatype.
func (g *Globals) DataCon(name, tycon string) (*syntax.DataDef, *syntax.ConDef, bool) {
	d, ok := g.data[tycon]
	if !ok {
		return nil, nil, false
	}
	c, ok := d.def.Con(name)
	if !ok {
		return nil, nil, false
	}
	return d.def, c, true
}

// Names returns every name in scope, sorted: declared and defined
// globals, datatypes, and data constructors.
func (g *Globals) Names() []string {
	seen := make(map[string]bool)
	for name := range g.types {
		seen[name] = true
	}
	for name, d := range g.data {
		seen[name] = true
		for _, c := range d.def.Cons {
			seen[c.Name] = true
		}
	}
	return sortedKeys(seen)
}

// merge adds another module's globals. A name defined by two
// different modules is an error; seeing the same module's
// definition twice through different import chains is not.
func (g *Globals) merge(other *Globals) []*fail {
	var fails []*fail
	for _, name := range sortedKeys(other.types) {
		t := other.types[name]
		if prev, ok := g.types[name]; ok {
			if prev.origin != t.origin {
				fails = append(fails, redef(t.l, name, prev.l))
			}
			continue
		}
		g.types[name] = t
	}
	for _, name := range sortedKeys(other.defs) {
		d := other.defs[name]
		if prev, ok := g.defs[name]; ok {
			if prev.origin != d.origin {
				fails = append(fails, redef(d.l, name, prev.l))
			}
			continue
		}
		g.defs[name] = d
	}
	for _, name := range sortedKeys(other.data) {
		d := other.data[name]
		if prev, ok := g.data[name]; ok {
			if prev.origin != d.origin {
				fails = append(fails, redef(d.l, name, prev.l))
			}
			continue
		}
		g.data[name] = d
	}
	return fails
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
