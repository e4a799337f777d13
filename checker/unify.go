package checker

import (
	"github.com/qed-lang/qed/syntax"
	"golang.org/x/exp/slices"
)

// A Refinement maps variables to terms that unification proved them
// equal to. A refined variable never occurs in its own image, and no
// image mentions another refined variable, so applying a refinement
// once is enough.
type Refinement map[int]syntax.Term

// Apply rewrites every refined variable of t with its image.
func (r Refinement) Apply(t syntax.Term) syntax.Term {
	if len(r) == 0 {
		return t
	}
	return r.env().Apply(t)
}

// env returns the refinement as a substitution mapping
// unrefined variables to themselves.
func (r Refinement) env() syntax.Env {
	max := -1
	for i := range r {
		if i > max {
			max = i
		}
	}
	front := make([]syntax.Term, max+1)
	for i := range front {
		if t, ok := r[i]; ok {
			front[i] = t
		} else {
			front[i] = &syntax.Var{Index: i}
		}
	}
	return syntax.NewEnv(front, max+1)
}

// keys returns the refined variables in increasing order.
func (r Refinement) keys() []int {
	ks := make([]int, 0, len(r))
	for k := range r {
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return ks
}

// unify finds a refinement of the caller's variables that makes
// a and b equal, following their weak head normal forms. depth
// counts the binders unification has descended under; refined
// variables and their images live outside them. A variable that
// cannot be refined, and a neutral term that a refinement could
// reduce further, unify with anything and add nothing. Unification
// fails only on a constructor mismatch or an inconsistent pair of
// refinements.
func (c *checker) unify(names []string, depth int, a, b syntax.Term) (Refinement, *fail) {
	wa := c.whnf(a)
	wb := c.whnf(b)
	if syntax.AlphaEq(wa, wb) {
		return nil, nil
	}
	if v, ok := wa.(*syntax.Var); ok {
		return solveVar(v.Index, wb, depth), nil
	}
	if v, ok := wb.(*syntax.Var); ok {
		return solveVar(v.Index, wa, depth), nil
	}
	switch wa := wa.(type) {
	case *syntax.DataCon:
		if wb, ok := wb.(*syntax.DataCon); ok && wa.Name == wb.Name && len(wa.Args) == len(wb.Args) {
			return c.unifyAll(names, depth, wa.Args, wb.Args)
		}
	case *syntax.TyCon:
		if wb, ok := wb.(*syntax.TyCon); ok && wa.Name == wb.Name && len(wa.Params) == len(wb.Params) {
			return c.unifyAll(names, depth, wa.Params, wb.Params)
		}
	case *syntax.Lam:
		if wb, ok := wb.(*syntax.Lam); ok {
			return c.unify(pushName(names, wa.B.Name), depth+1, wa.B.Body, wb.B.Body)
		}
	case *syntax.Pi:
		if wb, ok := wb.(*syntax.Pi); ok {
			r1, err := c.unify(names, depth, wa.Dom, wb.Dom)
			if err != nil {
				return nil, err
			}
			r2, err := c.unify(pushName(names, wa.Ran.Name), depth+1, wa.Ran.Body, wb.Ran.Body)
			if err != nil {
				return nil, err
			}
			return c.join(names, r1, r2)
		}
	case *syntax.EqType:
		if wb, ok := wb.(*syntax.EqType); ok {
			r1, err := c.unify(names, depth, wa.A, wb.A)
			if err != nil {
				return nil, err
			}
			r2, err := c.unify(names, depth, wa.B, wb.B)
			if err != nil {
				return nil, err
			}
			return c.join(names, r1, r2)
		}
	}
	if ambiguous(wa) || ambiguous(wb) {
		return nil, nil
	}
	return nil, c.errf("cannot equate %s and %s",
		syntax.TermString(wa, names), syntax.TermString(wb, names))
}

func (c *checker) unifyAll(names []string, depth int, as, bs []syntax.Term) (Refinement, *fail) {
	var r Refinement
	for i := range as {
		ri, err := c.unify(names, depth, as[i], bs[i])
		if err != nil {
			return nil, err
		}
		if r, err = c.join(names, r, ri); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// solveVar refines variable i to t. Both must escape the binders
// unification descended under, and i must not occur in t; an
// unsolvable pair refines nothing rather than failing.
func solveVar(i int, t syntax.Term, depth int) Refinement {
	if i < depth {
		return nil
	}
	s, ok := syntax.Strengthen(t, depth)
	if !ok {
		return nil
	}
	if syntax.Occurs(i-depth, s) {
		return nil
	}
	return Refinement{i - depth: s}
}

// ambiguous reports whether a term in weak head normal form could
// still reduce under a refinement: an application, case, or subst
// blocked on a variable.
func ambiguous(t syntax.Term) bool {
	switch t.(type) {
	case *syntax.App, *syntax.Case, *syntax.Subst:
		return true
	}
	return false
}

// join merges two refinements into one that implies both.
// Overlapping entries are unified; a variable that would come to
// occur in its own image makes the refinements inconsistent.
func (c *checker) join(names []string, r1, r2 Refinement) (Refinement, *fail) {
	if len(r2) == 0 {
		return r1, nil
	}
	res := make(Refinement, len(r1)+len(r2))
	for k, v := range r1 {
		res[k] = v
	}
	for _, k := range r2.keys() {
		var err *fail
		if res, err = c.insert(names, res, k, r2[k]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c *checker) insert(names []string, r Refinement, k int, v syntax.Term) (Refinement, *fail) {
	v = r.Apply(v)
	if old, ok := r[k]; ok {
		sub, err := c.unify(names, 0, old, v)
		if err != nil {
			return nil, err
		}
		for _, j := range sub.keys() {
			if r, err = c.insert(names, r, j, sub[j]); err != nil {
				return nil, err
			}
		}
		return r, nil
	}
	if syntax.Occurs(k, v) {
		return nil, c.errf("inconsistent refinement: %s occurs in %s",
			syntax.TermString(&syntax.Var{Index: k}, names), syntax.TermString(v, names))
	}
	one := Refinement{k: v}
	for j, t := range r {
		t = one.Apply(t)
		if syntax.Occurs(j, t) {
			return nil, c.errf("inconsistent refinement: %s occurs in %s",
				syntax.TermString(&syntax.Var{Index: j}, names), syntax.TermString(t, names))
		}
		r[j] = t
	}
	r[k] = v
	return r, nil
}
