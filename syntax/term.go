// Package syntax defines the core terms of the qed language:
// dependently typed lambda terms with datatypes, pattern matching,
// and propositional equality. Variables are de Bruijn indices,
// so terms carry no names except as printing hints on binders.
package syntax

import "github.com/qed-lang/qed/loc"

// A Term is a node of the core language.
type Term interface {
	// String returns the term in surface syntax,
	// inventing fresh names for binders as needed.
	String() string

	isTerm()
}

// A Bind is the body of a binder. The body refers to the bound
// variable as index 0; Name is only a printing hint.
type Bind struct {
	Name string
	Body Term
}

// Universe is the type of types, including itself.
type Universe struct{}

// A Var is a variable, counting binders outward from 0.
type Var struct {
	Index int
}

// A Global is a reference to a top-level definition.
type Global struct {
	Name string
}

// A Pi is a dependent function type.
// Ran is the range with the parameter bound.
type Pi struct {
	Dom Term
	Ran Bind
}

// A Lam is a function literal.
type Lam struct {
	B Bind
}

// An App applies a function to one argument.
type App struct {
	Fn  Term
	Arg Term
}

// An Ann annotates a term with its type.
type Ann struct {
	Expr Term
	Type Term
}

// A Pos carries the source location of the term it wraps.
// It has no other meaning.
type Pos struct {
	L    loc.Loc
	Expr Term
}

// A Let binds the value of Rhs in the body of B.
type Let struct {
	Rhs Term
	B   Bind
}

// A TyCon is a type constructor applied to its parameters.
type TyCon struct {
	Name   string
	Params []Term
}

// A DataCon is a data constructor applied to its arguments.
type DataCon struct {
	Name string
	Args []Term
}

// An EqType is the type of proofs that A equals B.
type EqType struct {
	A Term
	B Term
}

// Refl proves an EqType whose sides are definitionally equal.
type Refl struct{}

// A Subst rewrites the type of Expr with the equality proved by Proof.
type Subst struct {
	Expr  Term
	Proof Term
}

// A Contra eliminates a proof of an impossible equality:
// one whose sides are headed by distinct data constructors.
type Contra struct {
	Proof Term
}

// TrustMe inhabits any type without proof.
type TrustMe struct{}

// PrintMe prints the goal type and context when checked.
// It reduces to the unit value.
type PrintMe struct{}

// A Case eliminates a datatype value by pattern matching.
// Branches are tried first to last.
type Case struct {
	Scrut    Term
	Branches []Branch
}

// A Branch is one arm of a Case. The body has the pattern's
// variables bound in source order: the variable bound by the
// rightmost pattern variable has index 0.
type Branch struct {
	Pat  Pattern
	Body Term
}

// A Pattern matches the weak head normal form of a scrutinee.
// Patterns are shallow in variables but may nest constructors.
type Pattern interface {
	String() string

	// Size returns the number of variables the pattern binds.
	Size() int

	isPattern()
}

// A PatVar matches anything, binding one variable.
// Name is only a printing hint.
type PatVar struct {
	Name string
}

// A PatCon matches a data constructor and its arguments.
type PatCon struct {
	Name string
	Pats []Pattern
}

func (*Universe) isTerm() {}
func (*Var) isTerm()      {}
func (*Global) isTerm()   {}
func (*Pi) isTerm()       {}
func (*Lam) isTerm()      {}
func (*App) isTerm()      {}
func (*Ann) isTerm()      {}
func (*Pos) isTerm()      {}
func (*Let) isTerm()      {}
func (*TyCon) isTerm()    {}
func (*DataCon) isTerm()  {}
func (*EqType) isTerm()   {}
func (*Refl) isTerm()     {}
func (*Subst) isTerm()    {}
func (*Contra) isTerm()   {}
func (*TrustMe) isTerm()  {}
func (*PrintMe) isTerm()  {}
func (*Case) isTerm()     {}

func (*PatVar) isPattern() {}
func (*PatCon) isPattern() {}

func (*PatVar) Size() int { return 1 }

func (p *PatCon) Size() int {
	var n int
	for _, q := range p.Pats {
		n += q.Size()
	}
	return n
}

// Instantiate returns the body with the bound variable replaced by t.
func (b Bind) Instantiate(t Term) Term {
	return SingleEnv(t).Apply(b.Body)
}

// Instantiate returns the branch body with the pattern's variables
// replaced by args, given in source order: args[0] replaces the
// variable bound by the leftmost pattern variable.
func (b *Branch) Instantiate(args []Term) Term {
	n := b.Pat.Size()
	if len(args) != n {
		panic("impossible: pattern size mismatch")
	}
	front := make([]Term, n)
	for i, a := range args {
		front[n-1-i] = a
	}
	return NewEnv(front, 0).Apply(b.Body)
}
