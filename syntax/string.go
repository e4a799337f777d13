package syntax

import (
	"fmt"
	"strings"
)

// Precedence levels of the surface grammar, loosest first.
const (
	precTerm = iota // binders, case, subst, contra, ->
	precEq          // =
	precApp         // application
	precAtom
)

func (t *Universe) String() string { return TermString(t, nil) }
func (t *Var) String() string      { return TermString(t, nil) }
func (t *Global) String() string   { return TermString(t, nil) }
func (t *Pi) String() string       { return TermString(t, nil) }
func (t *Lam) String() string      { return TermString(t, nil) }
func (t *App) String() string      { return TermString(t, nil) }
func (t *Ann) String() string      { return TermString(t, nil) }
func (t *Pos) String() string      { return TermString(t, nil) }
func (t *Let) String() string      { return TermString(t, nil) }
func (t *TyCon) String() string    { return TermString(t, nil) }
func (t *DataCon) String() string  { return TermString(t, nil) }
func (t *EqType) String() string   { return TermString(t, nil) }
func (t *Refl) String() string     { return TermString(t, nil) }
func (t *Subst) String() string    { return TermString(t, nil) }
func (t *Contra) String() string   { return TermString(t, nil) }
func (t *TrustMe) String() string  { return TermString(t, nil) }
func (t *PrintMe) String() string  { return TermString(t, nil) }
func (t *Case) String() string     { return TermString(t, nil) }

// TermString returns t in surface syntax. names is the stack of
// binder names in scope, innermost last; it supplies the names of
// free variables. Binder names are freshened with primes so that
// distinct variables print distinctly.
func TermString(t Term, names []string) string {
	p := newPrinter(names)
	p.term(t, precTerm)
	return p.w.String()
}

// TeleString returns a telescope in surface syntax:
// parameters as (x : A) and constraints as [x = t].
func TeleString(tele Telescope, names []string) string {
	p := newPrinter(names)
	p.tele(tele)
	return p.w.String()
}

// TeleNames returns names extended with the names TeleString
// gives the telescope's parameters.
func TeleNames(tele Telescope, names []string) []string {
	p := newPrinter(names)
	for _, e := range tele {
		if param, ok := e.(*Param); ok {
			p.push(p.fresh(param.Name))
		}
	}
	return p.names
}

type strPrinter struct {
	w     strings.Builder
	names []string
	used  map[string]int
}

func newPrinter(names []string) *strPrinter {
	p := &strPrinter{names: names[:len(names):len(names)], used: make(map[string]int)}
	for _, n := range names {
		p.used[n]++
	}
	return p
}

func (p *strPrinter) push(name string) {
	p.names = append(p.names, name)
	p.used[name]++
}

func (p *strPrinter) popTo(n int) {
	for len(p.names) > n {
		p.used[p.names[len(p.names)-1]]--
		p.names = p.names[:len(p.names)-1]
	}
}

// fresh primes name until it does not clash with a name in scope.
func (p *strPrinter) fresh(name string) string {
	if name == "" {
		name = "x"
	}
	if name == "_" {
		return name
	}
	for p.used[name] > 0 {
		name += "'"
	}
	return name
}

func (p *strPrinter) name(i int) string {
	if i < 0 || i >= len(p.names) {
		return fmt.Sprintf("#%d", i)
	}
	return p.names[len(p.names)-1-i]
}

// level returns the precedence level at which t prints
// without parentheses.
func level(t Term) int {
	switch t := t.(type) {
	case *Pos:
		return level(t.Expr)
	case *Pi, *Lam, *Let, *Case, *Subst, *Contra:
		return precTerm
	case *EqType:
		return precEq
	case *App:
		return precApp
	case *TyCon:
		if len(t.Params) > 0 {
			return precApp
		}
		return precAtom
	case *DataCon:
		if len(t.Args) > 0 {
			return precApp
		}
		return precAtom
	default:
		return precAtom
	}
}

func (p *strPrinter) term(t Term, prec int) {
	if level(t) < prec {
		p.w.WriteByte('(')
		p.print(t)
		p.w.WriteByte(')')
		return
	}
	p.print(t)
}

func (p *strPrinter) print(t Term) {
	switch t := t.(type) {
	case *Universe:
		p.w.WriteString("Type")
	case *Var:
		p.w.WriteString(p.name(t.Index))
	case *Global:
		p.w.WriteString(t.Name)
	case *Pi:
		if !Occurs(0, t.Ran.Body) {
			p.term(t.Dom, precEq)
			p.w.WriteString(" -> ")
			p.push("_")
			p.term(t.Ran.Body, precTerm)
			p.popTo(len(p.names) - 1)
			return
		}
		name := t.Ran.Name
		if name == "" || name == "_" {
			name = "x"
		}
		name = p.fresh(name)
		p.w.WriteByte('(')
		p.w.WriteString(name)
		p.w.WriteString(" : ")
		p.term(t.Dom, precTerm)
		p.w.WriteString(") -> ")
		p.push(name)
		p.term(t.Ran.Body, precTerm)
		p.popTo(len(p.names) - 1)
	case *Lam:
		p.w.WriteByte('\\')
		n := len(p.names)
		for {
			name := t.B.Name
			if name == "" {
				name = "x"
			}
			name = p.fresh(name)
			p.w.WriteString(name)
			p.push(name)
			next, ok := t.B.Body.(*Lam)
			if !ok {
				break
			}
			p.w.WriteByte(' ')
			t = next
		}
		p.w.WriteString(". ")
		p.term(t.B.Body, precTerm)
		p.popTo(n)
	case *App:
		p.term(t.Fn, precApp)
		p.w.WriteByte(' ')
		p.term(t.Arg, precAtom)
	case *Ann:
		p.w.WriteByte('(')
		p.term(t.Expr, precTerm)
		p.w.WriteString(" : ")
		p.term(t.Type, precTerm)
		p.w.WriteByte(')')
	case *Pos:
		p.print(t.Expr)
	case *Let:
		name := p.fresh(t.B.Name)
		p.w.WriteString("let ")
		p.w.WriteString(name)
		p.w.WriteString(" = ")
		p.term(t.Rhs, precTerm)
		p.w.WriteString(" in ")
		p.push(name)
		p.term(t.B.Body, precTerm)
		p.popTo(len(p.names) - 1)
	case *TyCon:
		p.w.WriteString(t.Name)
		for _, a := range t.Params {
			p.w.WriteByte(' ')
			p.term(a, precAtom)
		}
	case *DataCon:
		p.w.WriteString(t.Name)
		for _, a := range t.Args {
			p.w.WriteByte(' ')
			p.term(a, precAtom)
		}
	case *EqType:
		p.term(t.A, precApp)
		p.w.WriteString(" = ")
		p.term(t.B, precApp)
	case *Refl:
		p.w.WriteString("Refl")
	case *Subst:
		p.w.WriteString("subst ")
		p.term(t.Expr, precApp)
		p.w.WriteString(" by ")
		p.term(t.Proof, precApp)
	case *Contra:
		p.w.WriteString("contra ")
		p.term(t.Proof, precApp)
	case *TrustMe:
		p.w.WriteString("TRUSTME")
	case *PrintMe:
		p.w.WriteString("PRINTME")
	case *Case:
		p.w.WriteString("case ")
		p.term(t.Scrut, precTerm)
		p.w.WriteString(" of {")
		for i := range t.Branches {
			if i > 0 {
				p.w.WriteByte(';')
			}
			p.w.WriteByte(' ')
			p.branch(t.Branches[i])
		}
		p.w.WriteString(" }")
	default:
		panic(fmt.Sprintf("impossible term type: %T", t))
	}
}

func (p *strPrinter) branch(b Branch) {
	n := len(p.names)
	p.pat(b.Pat, true)
	p.w.WriteString(" -> ")
	p.term(b.Body, precTerm)
	p.popTo(n)
}

// pat prints a pattern, pushing a fresh name for each variable
// it binds. Constructor arguments are parenthesized unless the
// pattern is at the top level of a branch.
func (p *strPrinter) pat(pat Pattern, top bool) {
	switch pat := pat.(type) {
	case *PatVar:
		name := pat.Name
		if name == "" {
			name = "x"
		}
		name = p.fresh(name)
		p.push(name)
		p.w.WriteString(name)
	case *PatCon:
		if !top && len(pat.Pats) > 0 {
			p.w.WriteByte('(')
			defer p.w.WriteByte(')')
		}
		p.w.WriteString(pat.Name)
		for _, q := range pat.Pats {
			p.w.WriteByte(' ')
			p.pat(q, false)
		}
	default:
		panic(fmt.Sprintf("impossible pattern type: %T", pat))
	}
}

func (p *strPrinter) tele(tele Telescope) {
	for i, e := range tele {
		if i > 0 {
			p.w.WriteByte(' ')
		}
		switch e := e.(type) {
		case *Param:
			name := p.fresh(e.Name)
			p.w.WriteByte('(')
			p.w.WriteString(name)
			p.w.WriteString(" : ")
			p.term(e.Type, precTerm)
			p.w.WriteByte(')')
			p.push(name)
		case *Constraint:
			p.w.WriteByte('[')
			p.w.WriteString(p.name(e.Var))
			p.w.WriteString(" = ")
			p.term(e.Val, precTerm)
			p.w.WriteByte(']')
		default:
			panic(fmt.Sprintf("impossible telescope entry type: %T", e))
		}
	}
}

func (e *Param) String() string {
	p := newPrinter(nil)
	p.tele(Telescope{e})
	return p.w.String()
}

func (e *Constraint) String() string {
	p := newPrinter(nil)
	p.tele(Telescope{e})
	return p.w.String()
}

func (p *PatVar) String() string {
	if p.Name == "" {
		return "x"
	}
	return p.Name
}

func (p *PatCon) String() string {
	var w strings.Builder
	patString(&w, p, true)
	return w.String()
}

func patString(w *strings.Builder, pat Pattern, top bool) {
	switch pat := pat.(type) {
	case *PatVar:
		w.WriteString(pat.String())
	case *PatCon:
		if !top && len(pat.Pats) > 0 {
			w.WriteByte('(')
			defer w.WriteByte(')')
		}
		w.WriteString(pat.Name)
		for _, q := range pat.Pats {
			w.WriteByte(' ')
			patString(w, q, false)
		}
	default:
		panic(fmt.Sprintf("impossible pattern type: %T", pat))
	}
}
