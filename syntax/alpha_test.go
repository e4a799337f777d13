package syntax

import "testing"

func TestAlphaEq(t *testing.T) {
	tests := []struct {
		name string
		a, b Term
		want bool
	}{
		{
			name: "binder names ignored",
			a:    lam("x", v(0)),
			b:    lam("y", v(0)),
			want: true,
		},
		{
			name: "indices compared",
			a:    lam("x", v(0)),
			b:    lam("x", v(1)),
			want: false,
		},
		{
			name: "annotations ignored",
			a:    &Ann{Expr: g("a"), Type: g("A")},
			b:    g("a"),
			want: true,
		},
		{
			name: "positions ignored",
			a:    &Pos{Expr: app(g("f"), g("a"))},
			b:    app(&Pos{Expr: g("f")}, g("a")),
			want: true,
		},
		{
			name: "constructor names compared",
			a:    dc("Z"),
			b:    dc("S"),
			want: false,
		},
		{
			name: "pattern names ignored",
			a: &Case{Scrut: g("n"), Branches: []Branch{
				{Pat: pcon("S", pvar("k")), Body: v(0)},
			}},
			b: &Case{Scrut: g("n"), Branches: []Branch{
				{Pat: pcon("S", pvar("m")), Body: v(0)},
			}},
			want: true,
		},
		{
			name: "pattern shapes compared",
			a: &Case{Scrut: g("n"), Branches: []Branch{
				{Pat: pcon("S", pvar("k")), Body: v(0)},
			}},
			b: &Case{Scrut: g("n"), Branches: []Branch{
				{Pat: pcon("S", pcon("Z")), Body: v(0)},
			}},
			want: false,
		},
		{
			name: "pi compared under the binder",
			a:    pi("x", g("A"), v(0)),
			b:    pi("y", g("A"), v(0)),
			want: true,
		},
		{
			name: "different node kinds",
			a:    &Refl{},
			b:    &TrustMe{},
			want: false,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := AlphaEq(test.a, test.b); got != test.want {
				t.Errorf("AlphaEq(%s, %s)=%v, want %v", test.a, test.b, got, test.want)
			}
		})
	}
}
