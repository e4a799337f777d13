package checker

import (
	"fmt"

	"github.com/qed-lang/qed/syntax"
)

// whnf reduces t to weak head normal form: it unfolds defined
// globals, β-reduces applications, strips annotations and source
// positions, substitutes lets, reduces case expressions whose
// scrutinee is a constructor, and discharges subst by Refl.
// Subterms below the head are left unreduced.
func (c *checker) whnf(t syntax.Term) syntax.Term {
	switch t := t.(type) {
	case *syntax.Global:
		if def, ok := c.globals.Def(t.Name); ok {
			return c.whnf(def)
		}
		return t
	case *syntax.App:
		fn := c.whnf(t.Fn)
		if lam, ok := fn.(*syntax.Lam); ok {
			return c.whnf(lam.B.Instantiate(t.Arg))
		}
		return &syntax.App{Fn: fn, Arg: t.Arg}
	case *syntax.Ann:
		return c.whnf(t.Expr)
	case *syntax.Pos:
		return c.whnf(t.Expr)
	case *syntax.Let:
		return c.whnf(t.B.Instantiate(t.Rhs))
	case *syntax.Case:
		scrut := c.whnf(t.Scrut)
		if dc, ok := scrut.(*syntax.DataCon); ok {
			for i := range t.Branches {
				if args, ok := c.matchPattern(t.Branches[i].Pat, dc); ok {
					return c.whnf(t.Branches[i].Instantiate(args))
				}
			}
			panic(&internalError{msg: fmt.Sprintf("no branch matches %s", dc)})
		}
		return &syntax.Case{Scrut: scrut, Branches: t.Branches}
	case *syntax.Subst:
		proof := c.whnf(t.Proof)
		if _, ok := proof.(*syntax.Refl); ok {
			return c.whnf(t.Expr)
		}
		return &syntax.Subst{Expr: t.Expr, Proof: proof}
	case *syntax.PrintMe:
		return &syntax.DataCon{Name: "()"}
	default:
		return t
	}
}

// matchPattern matches the weak head normal form of tm against pat.
// It returns the terms bound by the pattern's variables in source
// order, or false if the pattern does not match.
func (c *checker) matchPattern(pat syntax.Pattern, tm syntax.Term) ([]syntax.Term, bool) {
	switch pat := pat.(type) {
	case *syntax.PatVar:
		return []syntax.Term{tm}, true
	case *syntax.PatCon:
		dc, ok := c.whnf(tm).(*syntax.DataCon)
		if !ok || dc.Name != pat.Name || len(dc.Args) != len(pat.Pats) {
			return nil, false
		}
		args := make([]syntax.Term, 0, pat.Size())
		for i, p := range pat.Pats {
			sub, ok := c.matchPattern(p, dc.Args[i])
			if !ok {
				return nil, false
			}
			args = append(args, sub...)
		}
		return args, true
	default:
		panic(fmt.Sprintf("impossible pattern type: %T", pat))
	}
}
