// Command qedfmt rewrites qed source in canonical form. It parses
// and checks its input, then prints the checked module back, so the
// output carries synthesized declarations and freshened binder names.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qed-lang/qed/checker"
	"github.com/qed-lang/qed/mod"
	"github.com/qed-lang/qed/parser"
	"github.com/qed-lang/qed/printer"
	"github.com/qed-lang/qed/syntax"
)

func main() {
	p := parse()
	print(p.Files[0], check(p))
}

func parse() *parser.Parser {
	in := os.Stdin
	path := "<stdin>"
	if len(os.Args) > 1 {
		path = os.Args[1]
		f, err := os.Open(path)
		if err != nil {
			fail("failed to open %s: %s", path, err)
		}
		defer f.Close()
		in = f
	} else if samfile := os.Getenv("samfile"); samfile != "" {
		path = samfile
	}

	p := parser.New()
	if wd, err := os.Getwd(); err == nil {
		p.TrimErrorPathPrefix = wd + "/"
	}
	if err := p.Parse(path, in); err != nil {
		fail("%s", err)
	}
	return p
}

// check type checks the parsed source so printing sees resolved,
// declaration-complete entries. Imports resolve under the nearest
// qed.yaml root, or the input's directory if there is none.
func check(p *parser.Parser) *checker.Mod {
	dir := "."
	if len(os.Args) > 1 {
		dir = filepath.Dir(os.Args[1])
	}
	root, err := findRoot(dir)
	if err != nil {
		fail("%s", err)
	}
	modPath := "main"
	if h := p.Files[0].Mod; h != nil {
		modPath = h.Path
	}
	imp := checker.NewImporter(root, p.Files, p.TrimErrorPathPrefix)
	m, _, errs := checker.Check(modPath, p.Files,
		checker.UseImporter(imp),
		checker.TrimErrorPathPrefix(p.TrimErrorPathPrefix))
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
	return m
}

func findRoot(dir string) (*mod.Root, error) {
	cfgPath, err := mod.FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if cfgPath == "" {
		return mod.NewRoot(dir), nil
	}
	cfg, err := mod.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return mod.NewRootFromConfig(cfgPath, cfg), nil
}

// print writes the file back: its module header and imports as
// parsed, then the checked entries in canonical form.
func print(file *parser.File, m *checker.Mod) {
	out := os.Stdout
	path := "<stdout>"
	if len(os.Args) > 1 {
		path = os.Args[1]
		f, err := os.Create(path)
		if err != nil {
			fail("failed to open %s: %s", path, err)
		}
		defer f.Close()
		out = f
	} else if samfile := os.Getenv("samfile"); samfile != "" {
		path = samfile
	}
	write := func(f string, xs ...interface{}) {
		if _, err := fmt.Fprintf(out, f, xs...); err != nil {
			fail("failed to write to %s: %s", path, err)
		}
	}
	if file.Mod != nil {
		write("module %q\n\n", file.Mod.Path)
	}
	for _, imp := range file.Imports {
		write("import %q\n", imp.Path)
	}
	if len(file.Imports) > 0 {
		write("\n")
	}
	src := &syntax.Module{Path: m.Path, Entries: m.Entries}
	if err := printer.Print(out, src); err != nil {
		fail("failed to write to %s: %s", path, err)
	}
}

func fail(f string, xs ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", xs...)
	os.Exit(1)
}
