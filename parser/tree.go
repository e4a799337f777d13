// Package parser parses qed source files into a surface tree.
// The surface tree keeps names and source locations;
// resolving names to de Bruijn indices is the checker's job.
package parser

import "github.com/qed-lang/qed/loc"

// A File is a parsed source file.
type File struct {
	Mod     *ModHeader
	Imports []*Import
	Entries []Entry

	P      string
	NLs    []int
	Length int
}

func (f *File) Path() string    { return f.P }
func (f *File) NewLines() []int { return f.NLs }
func (f *File) Len() int        { return f.Length }

// A ModHeader is a file's optional leading module declaration,
// naming the module the file belongs to.
type ModHeader struct {
	Path string
	L    loc.Loc
}

func (h *ModHeader) Loc() loc.Loc { return h.L }

// An Import names another module whose globals
// are in scope in this file's module.
type Import struct {
	Path string
	L    loc.Loc
}

func (i *Import) Loc() loc.Loc { return i.L }

// An Entry is a top-level entry of a file.
type Entry interface {
	Loc() loc.Loc

	isEntry()
}

// A Decl is a type declaration: name : type.
type Decl struct {
	Name Ident
	Type Expr
	L    loc.Loc
}

// A Def is a definition: name = expr.
type Def struct {
	Name Ident
	Expr Expr
	L    loc.Loc
}

// A DataDef is a datatype definition with its
// parameter telescope and constructors.
type DataDef struct {
	Name   Ident
	Params []TeleItem
	Cons   []*ConDef
	L      loc.Loc
}

// A ConDef is one constructor of a DataDef
// with its argument telescope.
type ConDef struct {
	Name Ident
	Args []TeleItem
	L    loc.Loc
}

func (*Decl) isEntry()    {}
func (*Def) isEntry()     {}
func (*DataDef) isEntry() {}

func (e *Decl) Loc() loc.Loc    { return e.L }
func (e *Def) Loc() loc.Loc     { return e.L }
func (e *DataDef) Loc() loc.Loc { return e.L }

// A TeleItem is one item of a surface telescope:
// a binding (x : A), an anonymous binding (A),
// or an equality constraint [x = e].
type TeleItem interface {
	Loc() loc.Loc

	isTeleItem()
}

// A TeleBind declares a telescope variable.
// Name is nil for an anonymous binding.
type TeleBind struct {
	Name *Ident
	Type Expr
	L    loc.Loc
}

// A TeleEq constrains an earlier telescope variable
// or datatype parameter to equal an expression.
type TeleEq struct {
	Name Ident
	Expr Expr
	L    loc.Loc
}

func (*TeleBind) isTeleItem() {}
func (*TeleEq) isTeleItem()   {}

func (t *TeleBind) Loc() loc.Loc { return t.L }
func (t *TeleEq) Loc() loc.Loc   { return t.L }

// An Ident is a name with its location.
type Ident struct {
	Name string
	L    loc.Loc
}

func (i Ident) Loc() loc.Loc { return i.L }

// An Expr is a surface term.
type Expr interface {
	Loc() loc.Loc

	isExpr()
}

// An Id is a name to be resolved: a local variable,
// a global, a type constructor, or a data constructor.
type Id struct {
	Name string
	L    loc.Loc
}

// A Universe is the keyword Type.
type Universe struct {
	L loc.Loc
}

// An Arrow is a function type A -> B or (x : A) -> B.
// Binder is nil for the anonymous form.
type Arrow struct {
	Binder *Ident
	Dom    Expr
	Ran    Expr
	L      loc.Loc
}

// A Lam is a function literal \x y. body.
type Lam struct {
	Names []Ident
	Body  Expr
	L     loc.Loc
}

// An App applies a head expression to arguments.
type App struct {
	Fn   Expr
	Args []Expr
	L    loc.Loc
}

// An Ann is an annotated expression (e : T).
type Ann struct {
	Expr Expr
	Type Expr
	L    loc.Loc
}

// A Let is let x = rhs in body.
type Let struct {
	Name Ident
	Rhs  Expr
	Body Expr
	L    loc.Loc
}

// An Eq is the equality type a = b.
type Eq struct {
	A Expr
	B Expr
	L loc.Loc
}

// A Refl is the keyword Refl.
type Refl struct {
	L loc.Loc
}

// A Subst is subst e by p.
type Subst struct {
	Expr  Expr
	Proof Expr
	L     loc.Loc
}

// A Contra is contra p.
type Contra struct {
	Proof Expr
	L     loc.Loc
}

// A TrustMe is the keyword TRUSTME.
type TrustMe struct {
	L loc.Loc
}

// A PrintMe is the keyword PRINTME.
type PrintMe struct {
	L loc.Loc
}

// A Unit is the unit value ().
type Unit struct {
	L loc.Loc
}

// A Case is case scrut of branches.
type Case struct {
	Scrut    Expr
	Branches []*Branch
	L        loc.Loc
}

// A Branch is one arm of a Case: pattern -> body.
type Branch struct {
	Pat  Pat
	Body Expr
	L    loc.Loc
}

func (b *Branch) Loc() loc.Loc { return b.L }

func (*Id) isExpr()       {}
func (*Universe) isExpr() {}
func (*Arrow) isExpr()    {}
func (*Lam) isExpr()      {}
func (*App) isExpr()      {}
func (*Ann) isExpr()      {}
func (*Let) isExpr()      {}
func (*Eq) isExpr()       {}
func (*Refl) isExpr()     {}
func (*Subst) isExpr()    {}
func (*Contra) isExpr()   {}
func (*TrustMe) isExpr()  {}
func (*PrintMe) isExpr()  {}
func (*Unit) isExpr()     {}
func (*Case) isExpr()     {}

func (e *Id) Loc() loc.Loc       { return e.L }
func (e *Universe) Loc() loc.Loc { return e.L }
func (e *Arrow) Loc() loc.Loc    { return e.L }
func (e *Lam) Loc() loc.Loc      { return e.L }
func (e *App) Loc() loc.Loc      { return e.L }
func (e *Ann) Loc() loc.Loc      { return e.L }
func (e *Let) Loc() loc.Loc      { return e.L }
func (e *Eq) Loc() loc.Loc       { return e.L }
func (e *Refl) Loc() loc.Loc     { return e.L }
func (e *Subst) Loc() loc.Loc    { return e.L }
func (e *Contra) Loc() loc.Loc   { return e.L }
func (e *TrustMe) Loc() loc.Loc  { return e.L }
func (e *PrintMe) Loc() loc.Loc  { return e.L }
func (e *Unit) Loc() loc.Loc     { return e.L }
func (e *Case) Loc() loc.Loc     { return e.L }

// A Pat is a surface pattern. A bare name parses as a PatName;
// whether it names a variable or a nullary constructor is
// decided during name resolution.
type Pat interface {
	Loc() loc.Loc

	isPat()
}

// A PatName is a bare name in pattern position.
type PatName struct {
	Name Ident
	L    loc.Loc
}

// A PatCon is a constructor pattern with arguments.
type PatCon struct {
	Name Ident
	Args []Pat
	L    loc.Loc
}

// A PatUnit is the unit pattern ().
type PatUnit struct {
	L loc.Loc
}

func (*PatName) isPat() {}
func (*PatCon) isPat()  {}
func (*PatUnit) isPat() {}

func (p *PatName) Loc() loc.Loc { return p.L }
func (p *PatCon) Loc() loc.Loc  { return p.L }
func (p *PatUnit) Loc() loc.Loc { return p.L }
