package main

import (
	"fmt"
	"os"

	"github.com/qed-lang/qed/checker"
	"github.com/qed-lang/qed/parser"
	"github.com/qed-lang/qed/printer"
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
	m, _, errs := checker.Check("main", p.Files)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Println(err)
		}
		os.Exit(1)
	}
	mod := &syntax.Module{Path: m.Path, Entries: m.Entries}
	if err := printer.Print(os.Stdout, mod); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
