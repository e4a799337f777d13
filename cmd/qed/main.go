// Command qed type checks qed modules and runs an interactive
// read-check-print loop over a checked module's globals.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/qed-lang/qed/checker"
	"github.com/qed-lang/qed/loc"
	"github.com/qed-lang/qed/mod"
	"github.com/qed-lang/qed/parser"
	"github.com/qed-lang/qed/printer"
	"github.com/qed-lang/qed/syntax"
)

const (
	version     = "0.1.0"
	historyFile = ".qed_history"
	prompt      = "qed> "
)

const helpText = `REPL commands:
  :type <term>    Infer the term's type.
  :whnf <term>    Reduce the term to weak head normal form.
  :load <path>    Load a module's globals into scope.
  :quit           Exit.
A bare term is checked and reduced to weak head normal form.
`

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	switch cmd := args[0]; cmd {
	case "check":
		os.Exit(cmdCheck(args[1:]))
	case "repl":
		os.Exit(cmdRepl(args[1:]))
	case "version":
		fmt.Println(version)
	case "help":
		usage()
	default:
		errorln(fmt.Sprintf("unknown command %q", cmd))
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`qed %s

Usage:
  qed check [-print] [-v] [path|module]   Type check a module.
  qed repl [path|module]                  Check a module and read expressions.
  qed version                             Print the version.

Flags:
`, version)
	flag.PrintDefaults()
}

var isTerm = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func red(s string) string {
	if !isTerm {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func errorln(s string) { fmt.Println(red(s)) }

func cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	printSrc := fs.Bool("print", false, "print the checked module as source")
	verbose := fs.Bool("v", false, "print the dependency graph")
	fs.Parse(args)

	target := "."
	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		target = rest[0]
	default:
		errorln("only one path or module is supported")
		return 2
	}

	root, err := findRoot()
	if err != nil {
		errorln(err.Error())
		return 1
	}
	m, err := loadTarget(root, target)
	if err != nil {
		errorln(err.Error())
		return 1
	}
	if *verbose {
		printDeps(m)
	}
	checked, errs := checkMod(m)
	if len(errs) > 0 {
		for _, err := range errs {
			errorln(err.Error())
		}
		return 1
	}
	if *printSrc {
		src := &syntax.Module{Path: checked.Path, Entries: checked.Entries}
		if err := printer.Print(os.Stdout, src); err != nil {
			errorln(err.Error())
			return 1
		}
	}
	return 0
}

// findRoot builds the module search root from the nearest qed.yaml,
// or from the working directory alone if there is none.
func findRoot() (*mod.Root, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfgPath, err := mod.FindConfig(wd)
	if err != nil {
		return nil, err
	}
	if cfgPath == "" {
		return mod.NewRoot(wd), nil
	}
	cfg, err := mod.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return mod.NewRootFromConfig(cfgPath, cfg), nil
}

// loadTarget interprets target as a .qed file, a directory of .qed
// files, or a module path under the root, in that order.
func loadTarget(root *mod.Root, target string) (*mod.Mod, error) {
	info, err := os.Stat(target)
	switch {
	case err == nil && !info.IsDir():
		return root.GetMainBySource([]string{target})
	case err == nil && info.IsDir():
		srcFiles, err := filepath.Glob(filepath.Join(target, "*.qed"))
		if err != nil {
			return nil, err
		}
		if len(srcFiles) == 0 {
			return nil, fmt.Errorf("%s has no qed source files", target)
		}
		return root.GetMainBySource(srcFiles)
	}
	return root.Get(target)
}

func checkMod(m *mod.Mod) (*checker.Mod, []error) {
	trim := ""
	if wd, err := os.Getwd(); err == nil {
		trim = wd + "/"
	}
	p := parser.New()
	p.TrimErrorPathPrefix = trim
	for _, file := range m.SrcFiles {
		if err := p.ParseFile(file); err != nil {
			return nil, []error{err}
		}
	}
	imp := checker.NewImporter(m.Root, p.Files, trim)
	checked, _, errs := checker.Check(m.Path, p.Files,
		checker.UseImporter(imp), checker.TrimErrorPathPrefix(trim))
	if len(errs) > 0 {
		return nil, errs
	}
	return checked, nil
}

func printDeps(m *mod.Mod) {
	seen := make(map[*mod.Mod]bool)
	var print func(*mod.Mod, string)
	print = func(m *mod.Mod, indent string) {
		fmt.Printf("%s%s\n", indent, m.Path)
		if seen[m] {
			if len(m.Deps) > 0 {
				fmt.Printf("%s...\n", indent)
			}
			return
		}
		seen[m] = true
		for _, dep := range m.Deps {
			print(dep, indent+"\t")
		}
	}
	print(m, "")
}

func cmdRepl(args []string) int {
	target := ""
	switch len(args) {
	case 0:
	case 1:
		target = args[0]
	default:
		errorln("only one path or module is supported")
		return 2
	}

	root, err := findRoot()
	if err != nil {
		errorln(err.Error())
		return 1
	}
	r := newRepl(root)
	if target != "" && !r.load(target) {
		return 1
	}

	fmt.Printf("qed %s\nType :help for help, :quit to exit.\n", version)
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(r.complete)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if err == io.EOF {
			fmt.Println()
			return 0
		}
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			errorln(err.Error())
			return 1
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if line == ":quit" || line == ":q" {
			return 0
		}
		r.eval(line)
	}
}

// A repl reads expressions and infers or normalizes them in the
// scope of a loaded module's globals.
type repl struct {
	root *mod.Root
	mod  *checker.Mod
}

func newRepl(root *mod.Root) *repl {
	// An empty check gives a module with no globals, so the repl
	// works before anything is loaded.
	m, _, _ := checker.Check("repl", nil)
	return &repl{root: root, mod: m}
}

func (r *repl) load(target string) bool {
	m, err := loadTarget(r.root, target)
	if err != nil {
		errorln(err.Error())
		return false
	}
	checked, errs := checkMod(m)
	if len(errs) > 0 {
		for _, err := range errs {
			errorln(err.Error())
		}
		return false
	}
	r.mod = checked
	fmt.Printf("loaded %s\n", m.Path)
	return true
}

func (r *repl) eval(line string) {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case ":help":
		fmt.Print(helpText)
	case ":load":
		target := strings.TrimSpace(rest)
		if target == "" {
			errorln("usage: :load <path|module>")
			return
		}
		r.load(target)
	case ":type", ":t":
		r.inferLine(strings.TrimSpace(rest))
	case ":whnf", ":w":
		r.whnfLine(strings.TrimSpace(rest))
	default:
		if strings.HasPrefix(cmd, ":") {
			errorln(fmt.Sprintf("unknown command %s; type :help for help", cmd))
			return
		}
		r.evalLine(line)
	}
}

func (r *repl) inferLine(src string) {
	e, files, ok := parseLine(src)
	if !ok {
		return
	}
	tm, ty, err := r.mod.InferExpr(files, e)
	if err != nil {
		errorln(err.Error())
		return
	}
	fmt.Printf("%s : %s\n", syntax.TermString(tm, nil), syntax.TermString(ty, nil))
}

func (r *repl) whnfLine(src string) {
	e, files, ok := parseLine(src)
	if !ok {
		return
	}
	tm, err := r.mod.WhnfExpr(files, e)
	if err != nil {
		errorln(err.Error())
		return
	}
	fmt.Println(syntax.TermString(tm, nil))
}

// evalLine infers the line's type and prints its weak head normal
// form along with the type.
func (r *repl) evalLine(src string) {
	e, files, ok := parseLine(src)
	if !ok {
		return
	}
	_, ty, err := r.mod.InferExpr(files, e)
	if err != nil {
		errorln(err.Error())
		return
	}
	tm, err := r.mod.WhnfExpr(files, e)
	if err != nil {
		errorln(err.Error())
		return
	}
	fmt.Printf("%s : %s\n", syntax.TermString(tm, nil), syntax.TermString(ty, nil))
}

func parseLine(src string) (parser.Expr, loc.Files, bool) {
	if src == "" {
		errorln("expected a term")
		return nil, nil, false
	}
	e, err := parser.ParseExpr(src)
	if err != nil {
		errorln(err.Error())
		return nil, nil, false
	}
	return e, loc.Files{replLine(src)}, true
}

// A replLine is a synthetic source file covering one line of input,
// so expression errors report locations against it.
type replLine string

func (replLine) Path() string    { return "repl" }
func (l replLine) Len() int      { return len(l) }
func (replLine) NewLines() []int { return nil }

// complete offers global names for the identifier under the cursor.
func (r *repl) complete(line string) []string {
	i := strings.LastIndexFunc(line, func(c rune) bool { return !isIdentRune(c) })
	prefix, word := line[:i+1], line[i+1:]
	if word == "" {
		return nil
	}
	var out []string
	for _, name := range r.mod.Globals.Names() {
		if strings.HasPrefix(name, word) {
			out = append(out, prefix+name)
		}
	}
	return out
}

func isIdentRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '\''
}
