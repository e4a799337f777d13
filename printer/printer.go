// Package printer prints checked modules back as qed source.
// The output parses and checks to the same module, with binder
// names freshened where the original names clashed.
package printer

import (
	"fmt"
	"io"

	"github.com/qed-lang/qed/syntax"
)

type ioError struct{ err error }

// Print writes the module's entries as source text.
func Print(w io.Writer, m *syntax.Module) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ioErr, ok := r.(ioError); ok {
			err = ioErr.err
			return
		}
		panic(r)
	}()
	p := &printer{w: w}
	for i, e := range m.Entries {
		// A Def follows its Decl directly; other entries
		// are separated by a blank line.
		if i > 0 {
			if _, ok := e.(*syntax.Def); !ok {
				p.print("\n")
			}
		}
		printEntry(p, e)
	}
	return nil
}

type printer struct {
	w io.Writer
}

func (p *printer) print(f string, vs ...interface{}) {
	if _, err := fmt.Fprintf(p.w, f, vs...); err != nil {
		panic(ioError{err})
	}
}

func printEntry(p *printer, e syntax.Entry) {
	switch e := e.(type) {
	case *syntax.Decl:
		p.print("%s : %s\n", e.Name, syntax.TermString(e.Type, nil))
	case *syntax.Def:
		p.print("%s = %s\n", e.Name, syntax.TermString(e.Body, nil))
	case *syntax.Data:
		printData(p, e.Def)
	default:
		panic(fmt.Sprintf("unknown entry type: %T", e))
	}
}

func printData(p *printer, d *syntax.DataDef) {
	p.print("data %s", d.Name)
	if len(d.Params) > 0 {
		p.print(" %s", syntax.TeleString(d.Params, nil))
	}
	p.print(" : Type where {\n")
	paramNames := syntax.TeleNames(d.Params, nil)
	for i, c := range d.Cons {
		p.print("\t%s", c.Name)
		if len(c.Args) > 0 {
			p.print(" of %s", syntax.TeleString(c.Args, paramNames))
		}
		if i < len(d.Cons)-1 {
			p.print(";")
		}
		p.print("\n")
	}
	p.print("}\n")
}
