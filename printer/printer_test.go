package printer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/qed-lang/qed/checker"
	"github.com/qed-lang/qed/parser"
	"github.com/qed-lang/qed/syntax"
)

const natDef = `data Nat : Type where {
	Z;
	S of (_ : Nat)
}
`

const natVecDef = natDef + `
data Vec (n : Nat) : Type where {
	Nil of [n = Z];
	Cons of (m : Nat) [n = S m] (_ : Nat) (_ : Vec m)
}
`

func TestPrintData(t *testing.T) {
	tests := []string{
		natDef,
		`data Unit : Type where {
	()
}
`,
		`data Void : Type where {
}
`,
		`data Bool : Type where {
	True;
	False
}
`,
		natVecDef,
		natDef + `
data Pair : Type where {
	MkPair of (_ : Nat) (_ : Nat)
}
`,
	}
	for _, src := range tests {
		runIdentTest(src, t)
	}
}

func TestPrintDefs(t *testing.T) {
	tests := []string{
		natDef + `
one : Nat
one = S Z
`,
		natDef + `
NatFn : Type
NatFn = Nat -> Nat
`,
		natDef + `
id : (T : Type) -> T -> T
id = \T x. x
`,
		natDef + `
add : Nat -> Nat -> Nat
add = \m n. case m of { Z -> n; S k -> S (add k n) }
`,
		natDef + `
pred2 : Nat -> Nat
pred2 = \n. case n of { Z -> Z; S Z -> Z; S (S k) -> S k }
`,
		natDef + `
three : Nat
three = let two = S (S Z) in S two
`,
		natDef + `
four : Nat
four = (S (S (S (S Z))) : Nat)
`,
	}
	for _, src := range tests {
		runIdentTest(src, t)
	}
}

func TestPrintProofs(t *testing.T) {
	tests := []string{
		natDef + `
same : S Z = S Z
same = Refl
`,
		natDef + `
sym : (m : Nat) -> (n : Nat) -> m = n -> n = m
sym = \m n p. subst Refl by p
`,
		natDef + `
admit : Z = S Z
admit = TRUSTME
`,
		natDef + `
impossible : Z = S Z -> Nat
impossible = \p. contra p
`,
		`data Void : Type where {
}

absurd : Void -> Void
absurd = \v. case v of { }
`,
	}
	for _, src := range tests {
		runIdentTest(src, t)
	}
}

func TestPrintModule(t *testing.T) {
	runIdentTest(natVecDef+`
add : Nat -> Nat -> Nat
add = \m n. case m of { Z -> n; S k -> S (add k n) }

head : (n : Nat) -> Vec (S n) -> Nat
head = \n v. case v of { Cons m x xs -> x }

cong : (f : Nat -> Nat) -> (m : Nat) -> (n : Nat) -> m = n -> f m = f n
cong = \f m n p. subst Refl by p
`, t)
}

// Sources that are not already in printed form print to their
// canonical rendering instead of themselves.
func TestPrintCanonicalizes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		// An inferred definition gains a declaration.
		{
			src: natDef + `two = S (S Z)
`,
			want: natDef + `
two : Nat
two = S (S Z)
`,
		},
		{
			src: natDef + `two = S (S Z)
three = S two
`,
			want: natDef + `
two : Nat
two = S (S Z)

three : Nat
three = S two
`,
		},
		// A bare constructor argument prints with a _ binder.
		{
			src: `data Nat : Type where {
	Z;
	S of (Nat)
}
`,
			want: natDef,
		},
		// An unused binder prints in arrow form.
		{
			src: natDef + `
h : (_ : Nat) -> Nat
h = \x. x
`,
			want: natDef + `
h : Nat -> Nat
h = \x. x
`,
		},
		// Grouped binders print one per arrow.
		{
			src: natDef + `
konst : (a : Nat) (b : Nat) -> a = b -> Nat
konst = \a b p. Z
`,
			want: natDef + `
konst : (a : Nat) -> (b : Nat) -> a = b -> Nat
konst = \a b p. Z
`,
		},
		// Shadowed binders are freshened with primes.
		{
			src: natDef + `
f : Nat -> Nat -> Nat
f = \x x. x
`,
			want: natDef + `
f : Nat -> Nat -> Nat
f = \x x'. x'
`,
		},
		{
			src: natDef + `
g : Nat -> Nat
g = \k. case k of { Z -> Z; S k -> k }
`,
			want: natDef + `
g : Nat -> Nat
g = \k. case k of { Z -> Z; S k' -> k' }
`,
		},
	}
	for _, test := range tests {
		got := printString(t, test.src)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("\n==> GOT:\n%s==> WANTED:\n%s\n==> DIFF: %s\n",
				got, test.want, diff)
		}
	}
}

// The printed form of any checked module prints to itself.
func TestPrintFixpoint(t *testing.T) {
	tests := []string{
		`data Nat : Type where
	Z
	S of (Nat)

pred : Nat -> Nat
pred = \n. case n of
	Z -> Z
	S k -> k
`,
		natDef + `f : Nat -> Nat -> Nat
f = \x x. x
`,
		natVecDef + `
head : (n : Nat) -> Vec (S n) -> Nat
head = \n v. case v of { Cons m x xs -> x }
`,
	}
	for _, src := range tests {
		first := printString(t, src)
		second := printString(t, first)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("not a fixpoint\n==> FIRST:\n%s==> SECOND:\n%s\n==> DIFF: %s\n",
				first, second, diff)
		}
	}
}

func printString(t *testing.T, src string) string {
	t.Helper()
	p := parser.New()
	if err := p.Parse("test.qed", strings.NewReader(src)); err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	mod, _, errs := checker.Check("main", p.Files)
	if len(errs) > 0 {
		t.Fatalf("failed to check: %s", errs[0])
	}
	var w strings.Builder
	if err := Print(&w, &syntax.Module{Path: mod.Path, Entries: mod.Entries}); err != nil {
		t.Fatalf("failed to print: %s", err)
	}
	return w.String()
}

func runIdentTest(src string, t *testing.T) {
	t.Helper()
	got := printString(t, src)
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("\n==> GOT:\n%s==> WANTED:\n%s\n==> DIFF: %s\n",
			got, src, diff)
	}
}
