package checker

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/qed-lang/qed/syntax"
)

// testChecker returns a checker scoped to the globals
// of a checked module.
func testChecker(t *testing.T, src string) *checker {
	t.Helper()
	mod, errs := check("test", []string{src}, nil)
	if len(errs) > 0 {
		t.Fatalf("failed to check: %s", errStr(errs))
	}
	return &checker{
		path:    mod.Path,
		globals: mod.Globals,
		hints:   make(map[string]*hint),
	}
}

func v(i int) syntax.Term { return &syntax.Var{Index: i} }

func dc(name string, args ...syntax.Term) syntax.Term {
	return &syntax.DataCon{Name: name, Args: args}
}

func TestUnify(t *testing.T) {
	c := testChecker(t, natSrc+"one : Nat\none = S Z\n")
	tests := []struct {
		name  string
		a, b  syntax.Term
		depth int
		want  Refinement
		err   string
	}{
		{
			name: "equal terms",
			a:    dc("S", dc("Z")),
			b:    dc("S", dc("Z")),
		},
		{
			name: "solve left",
			a:    v(0),
			b:    dc("Z"),
			want: Refinement{0: dc("Z")},
		},
		{
			name: "solve right",
			a:    dc("S", dc("Z")),
			b:    v(1),
			want: Refinement{1: dc("S", dc("Z"))},
		},
		{
			name: "pointwise",
			a:    dc("S", v(0)),
			b:    dc("S", dc("Z")),
			want: Refinement{0: dc("Z")},
		},
		{
			name: "two variables",
			a:    dc("Cons", v(1), v(0)),
			b:    dc("Cons", dc("Z"), dc("S", dc("Z"))),
			want: Refinement{1: dc("Z"), 0: dc("S", dc("Z"))},
		},
		{
			name:  "bound variable refines nothing",
			a:     v(0),
			b:     dc("Z"),
			depth: 1,
		},
		{
			name:  "escaping image refines nothing",
			a:     v(1),
			b:     v(0),
			depth: 1,
		},
		{
			name: "occurs check refines nothing",
			a:    v(0),
			b:    dc("S", v(0)),
		},
		{
			name: "blocked application",
			a:    &syntax.App{Fn: v(0), Arg: dc("Z")},
			b:    dc("Z"),
		},
		{
			name: "globals unfold",
			a:    &syntax.Global{Name: "one"},
			b:    dc("S", v(0)),
			want: Refinement{0: dc("Z")},
		},
		{
			name: "constructor mismatch",
			a:    dc("Z"),
			b:    dc("S", dc("Z")),
			err:  "cannot equate",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			r, err := c.unify(nil, test.depth, test.a, test.b)
			switch {
			case test.err == "" && err != nil:
				t.Fatalf("unexpected error: %s", err.msg)
			case test.err != "" && err == nil:
				t.Fatalf("expected error matching %q, got nil", test.err)
			case test.err != "":
				if !strings.Contains(err.msg, test.err) {
					t.Errorf("expected error matching %q, got %s", test.err, err.msg)
				}
				return
			}
			if diff := cmp.Diff(test.want, r); diff != "" {
				t.Errorf("refinement differs: %s", diff)
			}
		})
	}
}

func TestSolveVar(t *testing.T) {
	tests := []struct {
		name  string
		i     int
		t     syntax.Term
		depth int
		want  Refinement
	}{
		{
			name: "top level",
			i:    0,
			t:    dc("Z"),
			want: Refinement{0: dc("Z")},
		},
		{
			name:  "indices shift past the binders",
			i:     2,
			t:     dc("Z"),
			depth: 1,
			want:  Refinement{1: dc("Z")},
		},
		{
			name:  "image strengthens",
			i:     2,
			t:     dc("S", v(1)),
			depth: 1,
			want:  Refinement{1: dc("S", v(0))},
		},
		{
			name:  "bound variable",
			i:     0,
			t:     dc("Z"),
			depth: 1,
		},
		{
			name:  "image mentions a bound variable",
			i:     1,
			t:     v(0),
			depth: 1,
		},
		{
			name: "occurs",
			i:    0,
			t:    dc("S", v(0)),
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got := solveVar(test.i, test.t, test.depth)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("refinement differs: %s", diff)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	c := testChecker(t, natSrc)
	tests := []struct {
		name   string
		r1, r2 Refinement
		want   Refinement
		err    string
	}{
		{
			name: "disjoint",
			r1:   Refinement{0: dc("Z")},
			r2:   Refinement{1: dc("S", dc("Z"))},
			want: Refinement{0: dc("Z"), 1: dc("S", dc("Z"))},
		},
		{
			name: "empty right keeps left",
			r1:   Refinement{0: dc("Z")},
			want: Refinement{0: dc("Z")},
		},
		{
			name: "overlap agrees",
			r1:   Refinement{0: dc("Z")},
			r2:   Refinement{0: dc("Z")},
			want: Refinement{0: dc("Z")},
		},
		{
			name: "overlap unifies",
			r1:   Refinement{0: dc("S", v(1))},
			r2:   Refinement{0: dc("S", dc("Z"))},
			want: Refinement{0: dc("S", dc("Z")), 1: dc("Z")},
		},
		{
			name: "overlap conflicts",
			r1:   Refinement{0: dc("Z")},
			r2:   Refinement{0: dc("S", dc("Z"))},
			err:  "cannot equate",
		},
		{
			name: "inconsistent",
			r1:   Refinement{0: dc("S", v(1))},
			r2:   Refinement{1: dc("S", v(0))},
			err:  "inconsistent refinement",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			r, err := c.join(nil, test.r1, test.r2)
			switch {
			case test.err == "" && err != nil:
				t.Fatalf("unexpected error: %s", err.msg)
			case test.err != "" && err == nil:
				t.Fatalf("expected error matching %q, got nil", test.err)
			case test.err != "":
				if !strings.Contains(err.msg, test.err) {
					t.Errorf("expected error matching %q, got %s", test.err, err.msg)
				}
				return
			}
			if diff := cmp.Diff(test.want, r); diff != "" {
				t.Errorf("refinement differs: %s", diff)
			}
		})
	}
}

// Refinements never refine a variable to itself, so applying
// one is idempotent.
func TestRefinementApply(t *testing.T) {
	r := Refinement{0: dc("Z"), 2: dc("S", v(1))}
	tm := dc("Cons", v(2), v(1), v(0))
	want := "Cons (S #1) #1 Z"
	got := syntax.TermString(r.Apply(tm), nil)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	again := syntax.TermString(r.Apply(r.Apply(tm)), nil)
	if again != want {
		t.Errorf("applying twice gives %s, want %s", again, want)
	}
}
