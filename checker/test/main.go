package main

import (
	"fmt"
	"os"

	"github.com/qed-lang/qed/checker"
	"github.com/qed-lang/qed/parser"
	"github.com/qed-lang/qed/syntax"
)

func main() {
	in := os.Stdin
	path := "<stdin>"
	if len(os.Args) > 1 {
		path = os.Args[1]
		f, err := os.Open(path)
		if err != nil {
			fmt.Printf("failed to open %s: %s", path, err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	p := parser.New()
	if err := p.Parse(path, in); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	m, fs, errs := checker.Check("main", p.Files)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Println(err)
		}
		os.Exit(1)
	}
	m.Print(os.Stdout, syntax.PrintLocs(fs))

	for _, name := range m.Globals.Names() {
		typ, ok := m.Globals.Type(name)
		if !ok {
			continue
		}
		fmt.Printf("%s : %s\n", name, syntax.TermString(typ, nil))
	}
}
