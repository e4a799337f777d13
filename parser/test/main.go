package main

import (
	"fmt"
	"os"

	"github.com/qed-lang/qed/parser"
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
	file := p.Files[0]
	if file.Mod != nil {
		fmt.Printf("module %q\n", file.Mod.Path)
	}
	for _, imp := range file.Imports {
		fmt.Printf("import %q\n", imp.Path)
	}
	for _, e := range file.Entries {
		switch e := e.(type) {
		case *parser.Decl:
			fmt.Printf("decl %s\n", e.Name.Name)
		case *parser.Def:
			fmt.Printf("def %s\n", e.Name.Name)
		case *parser.DataDef:
			fmt.Printf("data %s\n", e.Name.Name)
		default:
			fmt.Printf("unknown entry %T\n", e)
		}
	}
}
