package parser

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/qed-lang/qed/loc"
)

var ignoreLocs = cmpopts.IgnoreTypes(loc.Loc{})

func id(name string) *Id { return &Id{Name: name} }

func ident(name string) Ident { return Ident{Name: name} }

func apply(fn Expr, args ...Expr) *App { return &App{Fn: fn, Args: args} }

func arrow(dom, ran Expr) *Arrow { return &Arrow{Dom: dom, Ran: ran} }

func binderArrow(name string, dom, ran Expr) *Arrow {
	n := ident(name)
	return &Arrow{Binder: &n, Dom: dom, Ran: ran}
}

func bind(name string, typ Expr) *TeleBind {
	n := ident(name)
	return &TeleBind{Name: &n, Type: typ}
}

func parseString(t *testing.T, src string) *File {
	t.Helper()
	p := New()
	if err := p.Parse("test.qed", strings.NewReader(src)); err != nil {
		t.Fatalf("Parse(%q) failed: %s", src, err)
	}
	return p.Files[0]
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		want Expr
	}{
		{"x", id("x")},
		{"Type", &Universe{}},
		{"Refl", &Refl{}},
		{"TRUSTME", &TrustMe{}},
		{"PRINTME", &PrintMe{}},
		{"()", &Unit{}},
		{"f a b", apply(id("f"), id("a"), id("b"))},
		{"f (g a)", apply(id("f"), apply(id("g"), id("a")))},
		{`\x. x`, &Lam{Names: []Ident{ident("x")}, Body: id("x")}},
		{`\x y. x`, &Lam{Names: []Ident{ident("x"), ident("y")}, Body: id("x")}},
		{"A -> B", arrow(id("A"), id("B"))},
		{"A -> B -> C", arrow(id("A"), arrow(id("B"), id("C")))},
		{"(A -> B) -> C", arrow(arrow(id("A"), id("B")), id("C"))},
		{"(x : A) -> B", binderArrow("x", id("A"), id("B"))},
		{
			"(x : A) (y : B) -> C",
			binderArrow("x", id("A"), binderArrow("y", id("B"), id("C"))),
		},
		{"(a : A)", &Ann{Expr: id("a"), Type: id("A")}},
		{"a = b", &Eq{A: id("a"), B: id("b")}},
		{"Z = S Z -> A", arrow(&Eq{A: id("Z"), B: apply(id("S"), id("Z"))}, id("A"))},
		{
			"let x = a in x",
			&Let{Name: ident("x"), Rhs: id("a"), Body: id("x")},
		},
		{"subst a by p", &Subst{Expr: id("a"), Proof: id("p")}},
		{"contra p", &Contra{Proof: id("p")}},
		{
			"case n of { Z -> a; S k -> b }",
			&Case{Scrut: id("n"), Branches: []*Branch{
				{Pat: &PatName{Name: ident("Z")}, Body: id("a")},
				{
					Pat:  &PatCon{Name: ident("S"), Args: []Pat{&PatName{Name: ident("k")}}},
					Body: id("b"),
				},
			}},
		},
		{
			"case n of { S (S k) -> k }",
			&Case{Scrut: id("n"), Branches: []*Branch{
				{
					Pat: &PatCon{Name: ident("S"), Args: []Pat{
						&PatCon{Name: ident("S"), Args: []Pat{&PatName{Name: ident("k")}}},
					}},
					Body: id("k"),
				},
			}},
		},
		{"case v of { }", &Case{Scrut: id("v")}},
		{
			"case u of { () -> a }",
			&Case{Scrut: id("u"), Branches: []*Branch{
				{Pat: &PatUnit{}, Body: id("a")},
			}},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.src, func(t *testing.T) {
			got, err := ParseExpr(test.src)
			if err != nil {
				t.Fatalf("ParseExpr(%q) failed: %s", test.src, err)
			}
			if diff := cmp.Diff(test.want, got, ignoreLocs); diff != "" {
				t.Errorf("ParseExpr(%q) tree differs:\n%s", test.src, diff)
			}
		})
	}
}

func TestParseEntries(t *testing.T) {
	const src = `import "lib/nat"

id : (A : Type) -> A -> A
id = \A a. a

data Bool : Type where
	True
	False

data Beautiful (n : Bool) : Type where
	B of [n = True]
`
	file := parseString(t, src)
	want := &File{
		Imports: []*Import{{Path: "lib/nat"}},
		Entries: []Entry{
			&Decl{
				Name: ident("id"),
				Type: binderArrow("A", &Universe{}, arrow(id("A"), id("A"))),
			},
			&Def{
				Name: ident("id"),
				Expr: &Lam{Names: []Ident{ident("A"), ident("a")}, Body: id("a")},
			},
			&DataDef{
				Name: ident("Bool"),
				Cons: []*ConDef{
					{Name: ident("True")},
					{Name: ident("False")},
				},
			},
			&DataDef{
				Name:   ident("Beautiful"),
				Params: []TeleItem{bind("n", id("Bool"))},
				Cons: []*ConDef{
					{
						Name: ident("B"),
						Args: []TeleItem{
							&TeleEq{Name: ident("n"), Expr: id("True")},
						},
					},
				},
			},
		},
	}
	opts := cmp.Options{ignoreLocs, cmpopts.IgnoreFields(File{}, "P", "NLs", "Length")}
	if diff := cmp.Diff(want, file, opts); diff != "" {
		t.Errorf("tree differs:\n%s", diff)
	}
}

func TestParseModuleHeader(t *testing.T) {
	const src = `module "lib/nat"

import "lib/bool"

one : Nat
`
	file := parseString(t, src)
	want := &File{
		Mod:     &ModHeader{Path: "lib/nat"},
		Imports: []*Import{{Path: "lib/bool"}},
		Entries: []Entry{
			&Decl{Name: ident("one"), Type: id("Nat")},
		},
	}
	opts := cmp.Options{ignoreLocs, cmpopts.IgnoreFields(File{}, "P", "NLs", "Length")}
	if diff := cmp.Diff(want, file, opts); diff != "" {
		t.Errorf("tree differs:\n%s", diff)
	}
}

func TestParseLayout(t *testing.T) {
	// Line breaks after -> and before -> continue the same entry;
	// breaks inside parentheses are ignored; case branches and
	// constructors are one per line.
	const src = `plus : Nat ->
	Nat
	-> Nat

two = S (S
	Z)

pred = \n. case n of
	Z -> Z
	S k -> k

data Nat : Type where
	Z
	S of (Nat)
`
	file := parseString(t, src)
	if len(file.Entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(file.Entries))
	}
	decl, ok := file.Entries[0].(*Decl)
	if !ok {
		t.Fatalf("entry 0 is %T, want *Decl", file.Entries[0])
	}
	want := arrow(id("Nat"), arrow(id("Nat"), id("Nat")))
	if diff := cmp.Diff(want, decl.Type, ignoreLocs); diff != "" {
		t.Errorf("plus type differs:\n%s", diff)
	}
	def, ok := file.Entries[2].(*Def)
	if !ok {
		t.Fatalf("entry 2 is %T, want *Def", file.Entries[2])
	}
	lam, ok := def.Expr.(*Lam)
	if !ok {
		t.Fatalf("pred is %T, want *Lam", def.Expr)
	}
	cas, ok := lam.Body.(*Case)
	if !ok {
		t.Fatalf("pred body is %T, want *Case", lam.Body)
	}
	if len(cas.Branches) != 2 {
		t.Errorf("got %d branches, want 2", len(cas.Branches))
	}
	data, ok := file.Entries[3].(*DataDef)
	if !ok {
		t.Fatalf("entry 3 is %T, want *DataDef", file.Entries[3])
	}
	if len(data.Cons) != 2 {
		t.Errorf("got %d constructors, want 2", len(data.Cons))
	}
}

func TestParseComments(t *testing.T) {
	const src = `-- line comment
x : Nat {- block {- nested -} comment -}
x = Z
`
	file := parseString(t, src)
	if len(file.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(file.Entries))
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		src string
		err string
	}{
		{"x", `expected ':' or '=' after "x"`},
		{"x : ", "expected a term"},
		{"x = (a", `expected \)`},
		{"x = a\nimport \"y\"", "imports must appear before other entries"},
		{"x = a\nmodule \"y\"", "a module header must be the first entry"},
		{"module lib", "expected string"},
		{"x = $", "unexpected character"},
		{"x = \"abc", "unterminated string"},
		{"x = {- ", "unterminated comment"},
		{"data T : Nat where", "expected Type"},
		{"x = a = b = c", "expected newline"},
		{`x = \. y`, "expected a parameter name"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.src, func(t *testing.T) {
			p := New()
			err := p.Parse("test.qed", strings.NewReader(test.src))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error matching %q", test.src, test.err)
			}
			re := regexp.MustCompile(test.err)
			if !re.MatchString(err.Error()) {
				t.Errorf("Parse(%q)=%q, want matching %q", test.src, err.Error(), test.err)
			}
		})
	}
}

func TestParseErrorLocation(t *testing.T) {
	p := New()
	err := p.Parse("test.qed", strings.NewReader("x : Nat\ny = (a\n"))
	if err == nil {
		t.Fatal("Parse succeeded, want error")
	}
	if !strings.HasPrefix(err.Error(), "test.qed:2.") {
		t.Errorf("error %q does not point at line 2 of test.qed", err.Error())
	}
}

func TestParserOffset(t *testing.T) {
	p := New()
	if err := p.Parse("a.qed", strings.NewReader("x = Z\n")); err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	if err := p.Parse("b.qed", strings.NewReader("y = Z\n")); err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	var files loc.Files
	for _, f := range p.Files {
		files = append(files, f)
	}
	l := p.Files[1].Entries[0].Loc()
	if got := files.Location(l); got.Path != "b.qed" || got.Line[0] != 1 {
		t.Errorf("second file entry located at %v, want b.qed line 1", got)
	}
}

func TestImportsOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.qed")
	const src = `import "lib/nat"
import "lib/bool"

main : Unit
main = ()
`
	if err := os.WriteFile(path, []byte(src), 0666); err != nil {
		t.Fatalf("WriteFile failed: %s", err)
	}
	got, err := ImportsOnly(path)
	if err != nil {
		t.Fatalf("ImportsOnly failed: %s", err)
	}
	want := []string{"lib/nat", "lib/bool"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("imports differ:\n%s", diff)
	}
}

func TestModPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nat.qed")
	const src = `module "lib/nat"

import "lib/bool"

one : Nat
`
	if err := os.WriteFile(path, []byte(src), 0666); err != nil {
		t.Fatalf("WriteFile failed: %s", err)
	}
	got, err := ModPath(path)
	if err != nil {
		t.Fatalf("ModPath failed: %s", err)
	}
	if got != "lib/nat" {
		t.Errorf("ModPath=%q, want %q", got, "lib/nat")
	}

	bare := filepath.Join(dir, "bare.qed")
	if err := os.WriteFile(bare, []byte("one : Nat\n"), 0666); err != nil {
		t.Fatalf("WriteFile failed: %s", err)
	}
	got, err = ModPath(bare)
	if err != nil {
		t.Fatalf("ModPath failed: %s", err)
	}
	if got != "" {
		t.Errorf("ModPath=%q, want empty", got)
	}
}
