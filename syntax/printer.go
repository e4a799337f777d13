package syntax

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/qed-lang/qed/loc"
)

// A PrintOpt configures the debug printer.
type PrintOpt func(*config)

// PrintLocs makes the printer annotate nodes that carry
// locations with their positions resolved through files.
func PrintLocs(files loc.Files) PrintOpt {
	return func(pc *config) { pc.files = files }
}

// Print writes a debug dump of the module tree.
func (m *Module) Print(w io.Writer, opts ...PrintOpt) error {
	return print(w, m, opts...)
}

type config struct {
	w     io.Writer
	files loc.Files
	n     int
	ident string
}

type printerError struct{ error }

type printer interface {
	print(*config)
}

func print(w io.Writer, tree printer, opts ...PrintOpt) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(printerError); ok {
			err = e
		} else {
			panic(r)
		}
	}()
	pc := &config{
		w:     w,
		ident: "  ",
	}
	for _, opt := range opts {
		opt(pc)
	}
	tree.print(pc)
	pc.p("\n")
	return err
}

func (m *Module) print(pc *config) {
	pc.p("Module{")
	pc.field("Path", m.Path)
	pc.field("Entries", m.Entries)
	pc.p("\n}")
}

func (e *Decl) print(pc *config) {
	pc.p("Decl{")
	pc.loc(e.L)
	pc.field("Name", e.Name)
	pc.field("Type", e.Type)
	pc.p("\n}")
}

func (e *Def) print(pc *config) {
	pc.p("Def{")
	pc.loc(e.L)
	pc.field("Name", e.Name)
	pc.field("Body", e.Body)
	pc.p("\n}")
}

func (e *Data) print(pc *config) {
	pc.p("Data{")
	pc.loc(e.L)
	pc.field("Def", e.Def)
	pc.p("\n}")
}

func (d *DataDef) print(pc *config) {
	pc.p("DataDef{")
	pc.field("Name", d.Name)
	pc.field("Params", d.Params)
	pc.field("Cons", d.Cons)
	pc.p("\n}")
}

func (d *ConDef) print(pc *config) {
	pc.p("ConDef{")
	pc.field("Name", d.Name)
	pc.field("Args", d.Args)
	pc.p("\n}")
}

func (t *Param) print(pc *config) {
	pc.p("Param{")
	pc.field("Name", t.Name)
	pc.field("Type", t.Type)
	pc.p("\n}")
}

func (t *Constraint) print(pc *config) {
	pc.p("Constraint{")
	pc.field("Var", t.Var)
	pc.field("Val", t.Val)
	pc.p("\n}")
}

func (*Universe) print(pc *config) {
	pc.p("Universe")
}

func (t *Var) print(pc *config) {
	pc.p("Var(%d)", t.Index)
}

func (t *Global) print(pc *config) {
	pc.p("Global(%s)", t.Name)
}

func (t *Pi) print(pc *config) {
	pc.p("Pi{")
	pc.field("Dom", t.Dom)
	pc.field("Ran", t.Ran)
	pc.p("\n}")
}

func (t *Lam) print(pc *config) {
	pc.p("Lam{")
	pc.field("B", t.B)
	pc.p("\n}")
}

func (b Bind) print(pc *config) {
	pc.p("Bind{")
	pc.field("Name", b.Name)
	pc.field("Body", b.Body)
	pc.p("\n}")
}

func (t *App) print(pc *config) {
	pc.p("App{")
	pc.field("Fn", t.Fn)
	pc.field("Arg", t.Arg)
	pc.p("\n}")
}

func (t *Ann) print(pc *config) {
	pc.p("Ann{")
	pc.field("Expr", t.Expr)
	pc.field("Type", t.Type)
	pc.p("\n}")
}

// A Pos node prints as the term it wraps,
// annotated with the location if any.
func (t *Pos) print(pc *config) {
	t.Expr.(printer).print(pc)
	pc.loc(t.L)
}

func (t *Let) print(pc *config) {
	pc.p("Let{")
	pc.field("Rhs", t.Rhs)
	pc.field("B", t.B)
	pc.p("\n}")
}

func (t *TyCon) print(pc *config) {
	if len(t.Params) == 0 {
		pc.p("TyCon(%s)", t.Name)
		return
	}
	pc.p("TyCon{")
	pc.field("Name", t.Name)
	pc.field("Params", t.Params)
	pc.p("\n}")
}

func (t *DataCon) print(pc *config) {
	if len(t.Args) == 0 {
		pc.p("DataCon(%s)", t.Name)
		return
	}
	pc.p("DataCon{")
	pc.field("Name", t.Name)
	pc.field("Args", t.Args)
	pc.p("\n}")
}

func (t *EqType) print(pc *config) {
	pc.p("EqType{")
	pc.field("A", t.A)
	pc.field("B", t.B)
	pc.p("\n}")
}

func (*Refl) print(pc *config) {
	pc.p("Refl")
}

func (t *Subst) print(pc *config) {
	pc.p("Subst{")
	pc.field("Expr", t.Expr)
	pc.field("Proof", t.Proof)
	pc.p("\n}")
}

func (t *Contra) print(pc *config) {
	pc.p("Contra{")
	pc.field("Proof", t.Proof)
	pc.p("\n}")
}

func (*TrustMe) print(pc *config) {
	pc.p("TrustMe")
}

func (*PrintMe) print(pc *config) {
	pc.p("PrintMe")
}

func (t *Case) print(pc *config) {
	pc.p("Case{")
	pc.field("Scrut", t.Scrut)
	pc.field("Branches", t.Branches)
	pc.p("\n}")
}

func (b Branch) print(pc *config) {
	pc.p("Branch{")
	pc.field("Pat", b.Pat)
	pc.field("Body", b.Body)
	pc.p("\n}")
}

func (p *PatVar) print(pc *config) {
	pc.p("PatVar(%s)", p.Name)
}

func (p *PatCon) print(pc *config) {
	if len(p.Pats) == 0 {
		pc.p("PatCon(%s)", p.Name)
		return
	}
	pc.p("PatCon{")
	pc.field("Name", p.Name)
	pc.field("Pats", p.Pats)
	pc.p("\n}")
}

func (pc *config) loc(l loc.Loc) {
	if pc.files == nil || (l == loc.Loc{}) {
		return
	}
	pc.p("\t(%s)", pc.files.Location(l))
}

func (pc *config) field(name string, val interface{}) {
	v := reflect.ValueOf(val)
	if val == nil || (v.Kind() == reflect.Ptr || v.Kind() == reflect.Slice || v.Kind() == reflect.Interface) && v.IsNil() {
		return
	}
	pc.n++
	defer func() { pc.n-- }()
	pc.p("\n" + name + ": ")
	if v.Kind() == reflect.Slice {
		pc.slice(val)
		return
	}
	if t, ok := val.(printer); ok {
		t.print(pc)
		return
	}
	pc.p("%v", val)
}

func (pc *config) slice(s interface{}) {
	v := reflect.ValueOf(s)
	if v.IsNil() {
		pc.p("nil")
		return
	}
	pc.n++
	pc.p("{")
	for i := 0; i < v.Len(); i++ {
		pc.p("\n")
		v.Index(i).Interface().(printer).print(pc)
		pc.p(",")
	}
	pc.n--
	pc.p("\n}")
}

func (pc *config) p(f string, vs ...interface{}) {
	f = strings.ReplaceAll(f, "\n", "\n"+strings.Repeat(pc.ident, pc.n))
	_, err := fmt.Fprintf(pc.w, f, vs...)
	if err != nil {
		panic(printerError{err})
	}
}
