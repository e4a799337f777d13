package syntax

import "fmt"

// AlphaEq reports whether two terms are structurally equal.
// Binder names, type annotations, and source positions are ignored.
func AlphaEq(a, b Term) bool {
	a, b = strip(a), strip(b)
	switch a := a.(type) {
	case *Universe:
		_, ok := b.(*Universe)
		return ok
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Index == b.Index
	case *Global:
		b, ok := b.(*Global)
		return ok && a.Name == b.Name
	case *Pi:
		b, ok := b.(*Pi)
		return ok && AlphaEq(a.Dom, b.Dom) && AlphaEq(a.Ran.Body, b.Ran.Body)
	case *Lam:
		b, ok := b.(*Lam)
		return ok && AlphaEq(a.B.Body, b.B.Body)
	case *App:
		b, ok := b.(*App)
		return ok && AlphaEq(a.Fn, b.Fn) && AlphaEq(a.Arg, b.Arg)
	case *Let:
		b, ok := b.(*Let)
		return ok && AlphaEq(a.Rhs, b.Rhs) && AlphaEq(a.B.Body, b.B.Body)
	case *TyCon:
		b, ok := b.(*TyCon)
		return ok && a.Name == b.Name && alphaEqAll(a.Params, b.Params)
	case *DataCon:
		b, ok := b.(*DataCon)
		return ok && a.Name == b.Name && alphaEqAll(a.Args, b.Args)
	case *EqType:
		b, ok := b.(*EqType)
		return ok && AlphaEq(a.A, b.A) && AlphaEq(a.B, b.B)
	case *Refl:
		_, ok := b.(*Refl)
		return ok
	case *Subst:
		b, ok := b.(*Subst)
		return ok && AlphaEq(a.Expr, b.Expr) && AlphaEq(a.Proof, b.Proof)
	case *Contra:
		b, ok := b.(*Contra)
		return ok && AlphaEq(a.Proof, b.Proof)
	case *TrustMe:
		_, ok := b.(*TrustMe)
		return ok
	case *PrintMe:
		_, ok := b.(*PrintMe)
		return ok
	case *Case:
		b, ok := b.(*Case)
		if !ok || !AlphaEq(a.Scrut, b.Scrut) || len(a.Branches) != len(b.Branches) {
			return false
		}
		for i := range a.Branches {
			ab, bb := a.Branches[i], b.Branches[i]
			if !PatEq(ab.Pat, bb.Pat) || !AlphaEq(ab.Body, bb.Body) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("impossible term type: %T", a))
	}
}

// PatEq reports whether two patterns have the same shape,
// ignoring variable names.
func PatEq(a, b Pattern) bool {
	switch a := a.(type) {
	case *PatVar:
		_, ok := b.(*PatVar)
		return ok
	case *PatCon:
		b, ok := b.(*PatCon)
		if !ok || a.Name != b.Name || len(a.Pats) != len(b.Pats) {
			return false
		}
		for i := range a.Pats {
			if !PatEq(a.Pats[i], b.Pats[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("impossible pattern type: %T", a))
	}
}

func alphaEqAll(as, bs []Term) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !AlphaEq(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// strip removes annotations and source positions
// from the head of t.
func strip(t Term) Term {
	for {
		switch u := t.(type) {
		case *Ann:
			t = u.Expr
		case *Pos:
			t = u.Expr
		default:
			return t
		}
	}
}
