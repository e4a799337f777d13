package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func v(i int) *Var          { return &Var{Index: i} }
func g(name string) *Global { return &Global{Name: name} }

func lam(name string, body Term) *Lam {
	return &Lam{B: Bind{Name: name, Body: body}}
}

func pi(name string, dom, ran Term) *Pi {
	return &Pi{Dom: dom, Ran: Bind{Name: name, Body: ran}}
}

func app(fn Term, args ...Term) Term {
	for _, a := range args {
		fn = &App{Fn: fn, Arg: a}
	}
	return fn
}

func dc(name string, args ...Term) *DataCon { return &DataCon{Name: name, Args: args} }
func tc(name string, params ...Term) *TyCon { return &TyCon{Name: name, Params: params} }
func pvar(name string) *PatVar              { return &PatVar{Name: name} }
func pcon(name string, pats ...Pattern) *PatCon {
	return &PatCon{Name: name, Pats: pats}
}

func TestSingleEnv(t *testing.T) {
	tests := []struct {
		name string
		sub  Term
		in   Term
		want Term
	}{
		{
			name: "replaces variable 0",
			sub:  g("a"),
			in:   v(0),
			want: g("a"),
		},
		{
			name: "lowers outer variables",
			sub:  g("a"),
			in:   app(v(1), v(2)),
			want: app(v(0), v(1)),
		},
		{
			name: "stops at binders",
			sub:  g("a"),
			in:   lam("y", app(v(0), v(1))),
			want: lam("y", app(v(0), g("a"))),
		},
		{
			name: "weakens the substituted term under binders",
			sub:  v(0),
			in:   lam("y", v(1)),
			want: lam("y", v(1)),
		},
		{
			name: "reaches case branch bodies",
			sub:  g("a"),
			in: &Case{
				Scrut: v(0),
				Branches: []Branch{
					{Pat: pcon("Succ", pvar("k")), Body: app(v(0), v(1))},
				},
			},
			want: &Case{
				Scrut: g("a"),
				Branches: []Branch{
					{Pat: pcon("Succ", pvar("k")), Body: app(v(0), g("a"))},
				},
			},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got := SingleEnv(test.sub).Apply(test.in)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("got %s, want %s:\n%s", got, test.want, diff)
			}
		})
	}
}

func TestShiftEnv(t *testing.T) {
	in := lam("x", app(v(0), v(1)))
	want := lam("x", app(v(0), v(3)))
	got := ShiftEnv(2).Apply(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %s, want %s:\n%s", got, want, diff)
	}
}

func TestEnvLift(t *testing.T) {
	// Substituting under one binder by hand must agree
	// with Lift doing the bookkeeping.
	e := SingleEnv(g("a")).Lift(1)
	in := app(v(0), v(1), v(2))
	want := app(v(0), g("a"), v(1))
	got := e.Apply(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %s, want %s:\n%s", got, want, diff)
	}
}

func TestStrengthen(t *testing.T) {
	tests := []struct {
		name string
		in   Term
		n    int
		want Term
		ok   bool
	}{
		{
			name: "closed term",
			in:   lam("x", v(0)),
			n:    2,
			want: lam("x", v(0)),
			ok:   true,
		},
		{
			name: "lowers free variables",
			in:   app(v(2), v(3)),
			n:    2,
			want: app(v(0), v(1)),
			ok:   true,
		},
		{
			name: "fails on removed variable",
			in:   app(v(0), v(2)),
			n:    1,
			ok:   false,
		},
		{
			name: "fails under a binder",
			in:   lam("x", v(1)),
			n:    1,
			ok:   false,
		},
		{
			name: "cutoff moves under binders",
			in:   lam("x", app(v(0), v(2))),
			n:    1,
			want: lam("x", app(v(0), v(1))),
			ok:   true,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got, ok := Strengthen(test.in, test.n)
			if ok != test.ok {
				t.Fatalf("ok=%v, want %v", ok, test.ok)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("got %s, want %s:\n%s", got, test.want, diff)
			}
		})
	}
}

func TestOccurs(t *testing.T) {
	tests := []struct {
		i    int
		in   Term
		want bool
	}{
		{0, v(0), true},
		{1, v(0), false},
		{0, lam("x", v(0)), false},
		{0, lam("x", v(1)), true},
		{2, pi("x", v(2), v(3)), true},
		{2, pi("x", g("A"), v(0)), false},
	}
	for _, test := range tests {
		if got := Occurs(test.i, test.in); got != test.want {
			t.Errorf("Occurs(%d, %s)=%v, want %v", test.i, test.in, got, test.want)
		}
	}
}

func TestWellScoped(t *testing.T) {
	tests := []struct {
		in   Term
		n    int
		want bool
	}{
		{g("a"), 0, true},
		{v(0), 0, false},
		{v(0), 1, true},
		{lam("x", v(1)), 1, true},
		{lam("x", v(2)), 1, false},
		{&Case{Scrut: v(0), Branches: []Branch{
			{Pat: pcon("Succ", pvar("k")), Body: v(1)},
		}}, 1, true},
	}
	for _, test := range tests {
		if got := WellScoped(test.in, test.n); got != test.want {
			t.Errorf("WellScoped(%s, %d)=%v, want %v", test.in, test.n, got, test.want)
		}
	}
}

func TestBindInstantiate(t *testing.T) {
	// (\x. f x (\y. x)) a
	b := Bind{Name: "x", Body: app(g("f"), v(0), lam("y", v(1)))}
	got := b.Instantiate(g("a"))
	want := app(g("f"), g("a"), lam("y", g("a")))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %s, want %s:\n%s", got, want, diff)
	}
}

func TestBranchInstantiate(t *testing.T) {
	// case ... of Pair x y -> f x y
	b := &Branch{
		Pat:  pcon("Pair", pvar("x"), pvar("y")),
		Body: app(g("f"), v(1), v(0)),
	}
	got := b.Instantiate([]Term{g("a"), g("b")})
	want := app(g("f"), g("a"), g("b"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %s, want %s:\n%s", got, want, diff)
	}
}

func TestBranchInstantiateNested(t *testing.T) {
	// case ... of Succ (Succ k) -> k
	b := &Branch{
		Pat:  pcon("Succ", pcon("Succ", pvar("k"))),
		Body: v(0),
	}
	got := b.Instantiate([]Term{g("n")})
	want := g("n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %s, want %s:\n%s", got, want, diff)
	}
}
