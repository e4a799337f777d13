package checker

import (
	"testing"

	"github.com/qed-lang/qed/syntax"
)

func TestWhnf(t *testing.T) {
	c := testChecker(t, natSrc+addSrc+"one : Nat\none = S Z\n")
	tests := []struct {
		name string
		t    syntax.Term
		want string
	}{
		{
			name: "defined global unfolds",
			t:    &syntax.Global{Name: "one"},
			want: "S Z",
		},
		{
			name: "undefined global is stuck",
			t:    &syntax.Global{Name: "undef"},
			want: "undef",
		},
		{
			name: "application of a variable is stuck",
			t:    &syntax.App{Fn: v(0), Arg: dc("Z")},
			want: "#0 Z",
		},
		{
			name: "beta reduction",
			t: &syntax.App{
				Fn:  &syntax.Lam{B: syntax.Bind{Name: "x", Body: dc("S", v(0))}},
				Arg: dc("Z"),
			},
			want: "S Z",
		},
		{
			name: "annotations are transparent",
			t:    &syntax.Ann{Expr: &syntax.Global{Name: "one"}, Type: &syntax.TyCon{Name: "Nat"}},
			want: "S Z",
		},
		{
			name: "positions are transparent",
			t:    &syntax.Pos{Expr: &syntax.Global{Name: "one"}},
			want: "S Z",
		},
		{
			name: "let substitutes its binding",
			t:    &syntax.Let{Rhs: dc("Z"), B: syntax.Bind{Name: "x", Body: dc("S", v(0))}},
			want: "S Z",
		},
		{
			name: "subst discharges by refl",
			t:    &syntax.Subst{Expr: dc("Z"), Proof: &syntax.Refl{}},
			want: "Z",
		},
		{
			name: "subst on a variable is stuck",
			t:    &syntax.Subst{Expr: dc("Z"), Proof: v(0)},
			want: "subst Z by #0",
		},
		{
			name: "case on a variable is stuck",
			t: &syntax.Case{Scrut: v(0), Branches: []syntax.Branch{
				{Pat: &syntax.PatCon{Name: "Z"}, Body: dc("Z")},
			}},
			want: "case #0 of { Z -> Z }",
		},
		{
			name: "unmet obligation evaluates to unit",
			t:    &syntax.PrintMe{},
			want: "()",
		},
		{
			// add unfolds, β-reduces, and the case picks the S
			// branch; the recursive call under S stays unreduced.
			name: "definition applied to constructors",
			t: &syntax.App{
				Fn: &syntax.App{
					Fn:  &syntax.Global{Name: "add"},
					Arg: dc("S", dc("Z")),
				},
				Arg: dc("S", dc("Z")),
			},
			want: "S (add Z (S Z))",
		},
		{
			name: "arguments stay unreduced",
			t:    dc("S", &syntax.Global{Name: "one"}),
			want: "S one",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			w := c.whnf(test.t)
			if got := syntax.TermString(w, nil); got != test.want {
				t.Errorf("got %s, want %s", got, test.want)
			}
			if !syntax.AlphaEq(c.whnf(w), w) {
				t.Errorf("whnf %s is not a fixed point", test.want)
			}
		})
	}
}

func TestMatchPattern(t *testing.T) {
	c := testChecker(t, natSrc)
	pat := &syntax.PatCon{Name: "Cons", Pats: []syntax.Pattern{
		&syntax.PatVar{Name: "x"},
		&syntax.PatCon{Name: "S", Pats: []syntax.Pattern{
			&syntax.PatVar{Name: "k"},
		}},
	}}
	args, ok := c.matchPattern(pat, dc("Cons", dc("Z"), dc("S", dc("S", dc("Z")))))
	if !ok {
		t.Fatalf("expected a match")
	}
	if len(args) != 2 {
		t.Fatalf("got %d bindings, want 2", len(args))
	}
	if got := syntax.TermString(args[0], nil); got != "Z" {
		t.Errorf("bound x to %s, want Z", got)
	}
	if got := syntax.TermString(args[1], nil); got != "S Z" {
		t.Errorf("bound k to %s, want S Z", got)
	}
	if _, ok := c.matchPattern(pat, dc("Nil")); ok {
		t.Errorf("matched the wrong constructor")
	}
	if _, ok := c.matchPattern(pat, dc("Cons", dc("Z"), dc("Z"))); ok {
		t.Errorf("matched a mismatched argument")
	}
}
