package checker

import (
	"fmt"

	"github.com/qed-lang/qed/syntax"
)

// equate checks that got and want are definitionally equal: it
// follows weak head normal forms, comparing binders structurally.
// Case terms compare branch-for-branch in order.
func (c *checker) equate(names []string, got, want syntax.Term) *fail {
	if syntax.AlphaEq(got, want) {
		return nil
	}
	wg := c.whnf(got)
	ww := c.whnf(want)
	switch wg := wg.(type) {
	case *syntax.Universe:
		if _, ok := ww.(*syntax.Universe); ok {
			return nil
		}
	case *syntax.Var:
		if ww, ok := ww.(*syntax.Var); ok && wg.Index == ww.Index {
			return nil
		}
	case *syntax.Global:
		if ww, ok := ww.(*syntax.Global); ok && wg.Name == ww.Name {
			return nil
		}
	case *syntax.Lam:
		if ww, ok := ww.(*syntax.Lam); ok {
			return c.equate(pushName(names, wg.B.Name), wg.B.Body, ww.B.Body)
		}
	case *syntax.Pi:
		if ww, ok := ww.(*syntax.Pi); ok {
			if err := c.equate(names, wg.Dom, ww.Dom); err != nil {
				return err
			}
			return c.equate(pushName(names, wg.Ran.Name), wg.Ran.Body, ww.Ran.Body)
		}
	case *syntax.App:
		if ww, ok := ww.(*syntax.App); ok {
			if err := c.equate(names, wg.Fn, ww.Fn); err != nil {
				return err
			}
			return c.equate(names, wg.Arg, ww.Arg)
		}
	case *syntax.TyCon:
		if ww, ok := ww.(*syntax.TyCon); ok && wg.Name == ww.Name && len(wg.Params) == len(ww.Params) {
			for i := range wg.Params {
				if err := c.equate(names, wg.Params[i], ww.Params[i]); err != nil {
					return err
				}
			}
			return nil
		}
	case *syntax.DataCon:
		if ww, ok := ww.(*syntax.DataCon); ok && wg.Name == ww.Name && len(wg.Args) == len(ww.Args) {
			for i := range wg.Args {
				if err := c.equate(names, wg.Args[i], ww.Args[i]); err != nil {
					return err
				}
			}
			return nil
		}
	case *syntax.EqType:
		if ww, ok := ww.(*syntax.EqType); ok {
			if err := c.equate(names, wg.A, ww.A); err != nil {
				return err
			}
			return c.equate(names, wg.B, ww.B)
		}
	case *syntax.Refl:
		if _, ok := ww.(*syntax.Refl); ok {
			return nil
		}
	case *syntax.Subst:
		if ww, ok := ww.(*syntax.Subst); ok {
			if err := c.equate(names, wg.Expr, ww.Expr); err != nil {
				return err
			}
			return c.equate(names, wg.Proof, ww.Proof)
		}
	case *syntax.Contra:
		if ww, ok := ww.(*syntax.Contra); ok {
			return c.equate(names, wg.Proof, ww.Proof)
		}
	case *syntax.TrustMe:
		if _, ok := ww.(*syntax.TrustMe); ok {
			return nil
		}
	case *syntax.Case:
		if ww, ok := ww.(*syntax.Case); ok && branchPatsEq(wg.Branches, ww.Branches) {
			if err := c.equate(names, wg.Scrut, ww.Scrut); err != nil {
				return err
			}
			for i := range wg.Branches {
				bn := patNames(names, wg.Branches[i].Pat)
				if err := c.equate(bn, wg.Branches[i].Body, ww.Branches[i].Body); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return c.errf("expected %s but found %s",
		syntax.TermString(ww, names), syntax.TermString(wg, names))
}

func branchPatsEq(a, b []syntax.Branch) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !syntax.PatEq(a[i].Pat, b[i].Pat) {
			return false
		}
	}
	return true
}

// ensurePi returns the weak head normal form of t as a function type.
func (c *checker) ensurePi(names []string, t syntax.Term) (*syntax.Pi, *fail) {
	w := c.whnf(t)
	if pi, ok := w.(*syntax.Pi); ok {
		return pi, nil
	}
	return nil, c.errf("expected a function type but found %s", syntax.TermString(w, names))
}

// ensureTyCon returns the weak head normal form of t as an
// application of a type constructor.
func (c *checker) ensureTyCon(names []string, t syntax.Term) (*syntax.TyCon, *fail) {
	w := c.whnf(t)
	if tc, ok := w.(*syntax.TyCon); ok {
		return tc, nil
	}
	return nil, c.errf("expected a data type but found %s", syntax.TermString(w, names))
}

// ensureEqType returns the weak head normal form of t as an equality type.
func (c *checker) ensureEqType(names []string, t syntax.Term) (*syntax.EqType, *fail) {
	w := c.whnf(t)
	if eq, ok := w.(*syntax.EqType); ok {
		return eq, nil
	}
	return nil, c.errf("expected an equality type but found %s", syntax.TermString(w, names))
}

// pushName pushes a binder name onto a name stack without
// aliasing the caller's slice.
func pushName(names []string, name string) []string {
	return append(names[:len(names):len(names)], name)
}

// patNames pushes the names of a pattern's variables in source
// order, so the rightmost variable is innermost.
func patNames(names []string, pat syntax.Pattern) []string {
	switch pat := pat.(type) {
	case *syntax.PatVar:
		return pushName(names, pat.Name)
	case *syntax.PatCon:
		for _, q := range pat.Pats {
			names = patNames(names, q)
		}
		return names
	default:
		panic(fmt.Sprintf("impossible pattern type: %T", pat))
	}
}
