package syntax

import "fmt"

// An Env is a simultaneous substitution on variables.
// It maps index i to front[i] when i < len(front),
// and any later index i to Var(i - len(front) + shift).
type Env struct {
	front []Term
	shift int
}

// NewEnv returns the substitution mapping variable i to front[i]
// for i < len(front), and variable len(front)+i to variable shift+i.
func NewEnv(front []Term, shift int) Env {
	return Env{front: front, shift: shift}
}

// ShiftEnv returns the substitution that adds n to every variable.
func ShiftEnv(n int) Env {
	return Env{shift: n}
}

// SingleEnv returns the substitution that replaces variable 0
// with t and subtracts 1 from every other variable.
func SingleEnv(t Term) Env {
	return Env{front: []Term{t}}
}

// IsId reports whether e is the identity substitution.
func (e Env) IsId() bool {
	return len(e.front) == 0 && e.shift == 0
}

// Lift returns e adjusted to go under n binders:
// the n innermost variables map to themselves,
// and the results for outer variables are weakened by n.
func (e Env) Lift(n int) Env {
	if n == 0 || e.IsId() {
		return e
	}
	front := make([]Term, n+len(e.front))
	for i := 0; i < n; i++ {
		front[i] = &Var{Index: i}
	}
	for i, t := range e.front {
		front[n+i] = ShiftEnv(n).Apply(t)
	}
	return Env{front: front, shift: e.shift + n}
}

// Lookup returns the term e substitutes for variable i.
func (e Env) Lookup(i int) Term {
	if i < len(e.front) {
		return e.front[i]
	}
	return &Var{Index: i - len(e.front) + e.shift}
}

// Apply rewrites every variable of t with e.
func (e Env) Apply(t Term) Term {
	if e.IsId() {
		return t
	}
	return applyEnv(t, e, 0)
}

// applyEnv applies e under d binders: variables below d are
// untouched and the results for outer variables are weakened by d.
func applyEnv(t Term, e Env, d int) Term {
	switch t := t.(type) {
	case *Universe, *Global, *Refl, *TrustMe, *PrintMe:
		return t
	case *Var:
		if t.Index < d {
			return t
		}
		u := e.Lookup(t.Index - d)
		if v, ok := u.(*Var); ok {
			return &Var{Index: v.Index + d}
		}
		return ShiftEnv(d).Apply(u)
	case *Pi:
		return &Pi{
			Dom: applyEnv(t.Dom, e, d),
			Ran: Bind{Name: t.Ran.Name, Body: applyEnv(t.Ran.Body, e, d+1)},
		}
	case *Lam:
		return &Lam{B: Bind{Name: t.B.Name, Body: applyEnv(t.B.Body, e, d+1)}}
	case *App:
		return &App{Fn: applyEnv(t.Fn, e, d), Arg: applyEnv(t.Arg, e, d)}
	case *Ann:
		return &Ann{Expr: applyEnv(t.Expr, e, d), Type: applyEnv(t.Type, e, d)}
	case *Pos:
		return &Pos{L: t.L, Expr: applyEnv(t.Expr, e, d)}
	case *Let:
		return &Let{
			Rhs: applyEnv(t.Rhs, e, d),
			B:   Bind{Name: t.B.Name, Body: applyEnv(t.B.Body, e, d+1)},
		}
	case *TyCon:
		return &TyCon{Name: t.Name, Params: applyEnvAll(t.Params, e, d)}
	case *DataCon:
		return &DataCon{Name: t.Name, Args: applyEnvAll(t.Args, e, d)}
	case *EqType:
		return &EqType{A: applyEnv(t.A, e, d), B: applyEnv(t.B, e, d)}
	case *Subst:
		return &Subst{Expr: applyEnv(t.Expr, e, d), Proof: applyEnv(t.Proof, e, d)}
	case *Contra:
		return &Contra{Proof: applyEnv(t.Proof, e, d)}
	case *Case:
		bs := make([]Branch, len(t.Branches))
		for i, b := range t.Branches {
			bs[i] = Branch{Pat: b.Pat, Body: applyEnv(b.Body, e, d+b.Pat.Size())}
		}
		return &Case{Scrut: applyEnv(t.Scrut, e, d), Branches: bs}
	default:
		panic(fmt.Sprintf("impossible term type: %T", t))
	}
}

func applyEnvAll(ts []Term, e Env, d int) []Term {
	us := make([]Term, len(ts))
	for i, t := range ts {
		us[i] = applyEnv(t, e, d)
	}
	return us
}

// Strengthen removes the n innermost variables from t,
// lowering every variable with index ≥ n by n.
// It reports false if any of the removed variables occurs in t.
func Strengthen(t Term, n int) (Term, bool) {
	if n == 0 {
		return t, true
	}
	return strengthen(t, 0, n)
}

func strengthen(t Term, d, n int) (Term, bool) {
	switch t := t.(type) {
	case *Universe, *Global, *Refl, *TrustMe, *PrintMe:
		return t, true
	case *Var:
		switch {
		case t.Index < d:
			return t, true
		case t.Index < d+n:
			return nil, false
		default:
			return &Var{Index: t.Index - n}, true
		}
	case *Pi:
		dom, ok := strengthen(t.Dom, d, n)
		if !ok {
			return nil, false
		}
		ran, ok := strengthen(t.Ran.Body, d+1, n)
		if !ok {
			return nil, false
		}
		return &Pi{Dom: dom, Ran: Bind{Name: t.Ran.Name, Body: ran}}, true
	case *Lam:
		body, ok := strengthen(t.B.Body, d+1, n)
		if !ok {
			return nil, false
		}
		return &Lam{B: Bind{Name: t.B.Name, Body: body}}, true
	case *App:
		fn, ok := strengthen(t.Fn, d, n)
		if !ok {
			return nil, false
		}
		arg, ok := strengthen(t.Arg, d, n)
		if !ok {
			return nil, false
		}
		return &App{Fn: fn, Arg: arg}, true
	case *Ann:
		expr, ok := strengthen(t.Expr, d, n)
		if !ok {
			return nil, false
		}
		typ, ok := strengthen(t.Type, d, n)
		if !ok {
			return nil, false
		}
		return &Ann{Expr: expr, Type: typ}, true
	case *Pos:
		expr, ok := strengthen(t.Expr, d, n)
		if !ok {
			return nil, false
		}
		return &Pos{L: t.L, Expr: expr}, true
	case *Let:
		rhs, ok := strengthen(t.Rhs, d, n)
		if !ok {
			return nil, false
		}
		body, ok := strengthen(t.B.Body, d+1, n)
		if !ok {
			return nil, false
		}
		return &Let{Rhs: rhs, B: Bind{Name: t.B.Name, Body: body}}, true
	case *TyCon:
		params, ok := strengthenAll(t.Params, d, n)
		if !ok {
			return nil, false
		}
		return &TyCon{Name: t.Name, Params: params}, true
	case *DataCon:
		args, ok := strengthenAll(t.Args, d, n)
		if !ok {
			return nil, false
		}
		return &DataCon{Name: t.Name, Args: args}, true
	case *EqType:
		a, ok := strengthen(t.A, d, n)
		if !ok {
			return nil, false
		}
		b, ok := strengthen(t.B, d, n)
		if !ok {
			return nil, false
		}
		return &EqType{A: a, B: b}, true
	case *Subst:
		expr, ok := strengthen(t.Expr, d, n)
		if !ok {
			return nil, false
		}
		proof, ok := strengthen(t.Proof, d, n)
		if !ok {
			return nil, false
		}
		return &Subst{Expr: expr, Proof: proof}, true
	case *Contra:
		proof, ok := strengthen(t.Proof, d, n)
		if !ok {
			return nil, false
		}
		return &Contra{Proof: proof}, true
	case *Case:
		scrut, ok := strengthen(t.Scrut, d, n)
		if !ok {
			return nil, false
		}
		bs := make([]Branch, len(t.Branches))
		for i, b := range t.Branches {
			body, ok := strengthen(b.Body, d+b.Pat.Size(), n)
			if !ok {
				return nil, false
			}
			bs[i] = Branch{Pat: b.Pat, Body: body}
		}
		return &Case{Scrut: scrut, Branches: bs}, true
	default:
		panic(fmt.Sprintf("impossible term type: %T", t))
	}
}

func strengthenAll(ts []Term, d, n int) ([]Term, bool) {
	us := make([]Term, len(ts))
	for i, t := range ts {
		u, ok := strengthen(t, d, n)
		if !ok {
			return nil, false
		}
		us[i] = u
	}
	return us, true
}

// Occurs reports whether variable i occurs free in t.
func Occurs(i int, t Term) bool {
	return !eachFreeVar(t, 0, func(index, d int) bool {
		return index != i+d
	})
}

// WellScoped reports whether every free variable of t
// has an index below n.
func WellScoped(t Term, n int) bool {
	return eachFreeVar(t, 0, func(index, d int) bool {
		return index < n+d
	})
}

// eachFreeVar calls f for each variable of t with index ≥ d,
// the number of binders crossed, and reports whether f returned
// true for all of them.
func eachFreeVar(t Term, d int, f func(index, d int) bool) bool {
	switch t := t.(type) {
	case *Universe, *Global, *Refl, *TrustMe, *PrintMe:
		return true
	case *Var:
		if t.Index < d {
			return true
		}
		return f(t.Index, d)
	case *Pi:
		return eachFreeVar(t.Dom, d, f) && eachFreeVar(t.Ran.Body, d+1, f)
	case *Lam:
		return eachFreeVar(t.B.Body, d+1, f)
	case *App:
		return eachFreeVar(t.Fn, d, f) && eachFreeVar(t.Arg, d, f)
	case *Ann:
		return eachFreeVar(t.Expr, d, f) && eachFreeVar(t.Type, d, f)
	case *Pos:
		return eachFreeVar(t.Expr, d, f)
	case *Let:
		return eachFreeVar(t.Rhs, d, f) && eachFreeVar(t.B.Body, d+1, f)
	case *TyCon:
		return eachFreeVarAll(t.Params, d, f)
	case *DataCon:
		return eachFreeVarAll(t.Args, d, f)
	case *EqType:
		return eachFreeVar(t.A, d, f) && eachFreeVar(t.B, d, f)
	case *Subst:
		return eachFreeVar(t.Expr, d, f) && eachFreeVar(t.Proof, d, f)
	case *Contra:
		return eachFreeVar(t.Proof, d, f)
	case *Case:
		if !eachFreeVar(t.Scrut, d, f) {
			return false
		}
		for _, b := range t.Branches {
			if !eachFreeVar(b.Body, d+b.Pat.Size(), f) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("impossible term type: %T", t))
	}
}

func eachFreeVarAll(ts []Term, d int, f func(index, d int) bool) bool {
	for _, t := range ts {
		if !eachFreeVar(t, d, f) {
			return false
		}
	}
	return true
}
