package checker

import (
	"fmt"

	"github.com/qed-lang/qed/syntax"
)

// tcTypeTele checks that a telescope is well formed: every
// parameter type is a type, and every constraint value has the
// type of the variable it constrains. Returns the context
// extended with the parameters.
func (c *checker) tcTypeTele(ctx *Context, tele syntax.Telescope) (*Context, *fail) {
	for _, e := range tele {
		switch e := e.(type) {
		case *syntax.Param:
			if err := c.check(ctx, e.Type, &syntax.Universe{}); err != nil {
				return nil, err
			}
			ctx = ctx.Extend(e.Name, e.Type)
		case *syntax.Constraint:
			if err := c.check(ctx, e.Val, ctx.Lookup(e.Var)); err != nil {
				return nil, err
			}
		default:
			panic(fmt.Sprintf("impossible telescope entry type: %T", e))
		}
	}
	return ctx, nil
}

// tcArgTele checks arguments against a telescope. Each argument is
// checked against the next parameter's type and substituted through
// the rest of the telescope; each constraint must hold definitionally.
// The caller has already checked arity.
func (c *checker) tcArgTele(ctx *Context, args []syntax.Term, tele syntax.Telescope) *fail {
	for len(tele) > 0 {
		switch e := tele[0].(type) {
		case *syntax.Param:
			arg := args[0]
			if err := c.check(ctx, arg, e.Type); err != nil {
				return err
			}
			rest, err := c.doSubst(ctx.names, syntax.SingleEnv(arg), tele[1:])
			if err != nil {
				return err
			}
			args, tele = args[1:], rest
		case *syntax.Constraint:
			if err := c.equate(ctx.names, &syntax.Var{Index: e.Var}, e.Val); err != nil {
				return err
			}
			tele = tele[1:]
		default:
			panic(fmt.Sprintf("impossible telescope entry type: %T", e))
		}
	}
	if len(args) != 0 {
		panic(fmt.Sprintf("impossible %d arguments left over", len(args)))
	}
	return nil
}

// substTele instantiates a constructor telescope, scoped under its
// datatype's parameters, with the parameters' values.
func (c *checker) substTele(names []string, params []syntax.Term, tele syntax.Telescope) (syntax.Telescope, *fail) {
	front := make([]syntax.Term, len(params))
	for i, p := range params {
		front[len(params)-1-i] = p
	}
	return c.doSubst(names, syntax.NewEnv(front, 0), tele)
}

// doSubst applies a substitution through a telescope, lifting it
// under each parameter. A constraint whose variable is substituted
// away is re-expressed by unifying its two sides; an unsatisfiable
// constraint is an error.
func (c *checker) doSubst(names []string, e syntax.Env, tele syntax.Telescope) (syntax.Telescope, *fail) {
	var res syntax.Telescope
	d := 0
	for _, entry := range tele {
		le := e.Lift(d)
		switch entry := entry.(type) {
		case *syntax.Param:
			res = append(res, &syntax.Param{Name: entry.Name, Type: le.Apply(entry.Type)})
			names = pushName(names, entry.Name)
			d++
		case *syntax.Constraint:
			lhs := c.whnf(le.Lookup(entry.Var))
			val := le.Apply(entry.Val)
			if v, ok := lhs.(*syntax.Var); ok {
				res = append(res, &syntax.Constraint{Var: v.Index, Val: val})
				continue
			}
			r, err := c.unify(names, 0, lhs, val)
			if err != nil {
				return nil, err
			}
			for _, k := range r.keys() {
				res = append(res, &syntax.Constraint{Var: k, Val: r[k]})
			}
		default:
			panic(fmt.Sprintf("impossible telescope entry type: %T", entry))
		}
	}
	return res, nil
}

// declarePat elaborates a pattern against a type. It returns the
// context extended with the pattern's variables and the term the
// pattern stands for in the extended scope.
func (c *checker) declarePat(ctx *Context, pat syntax.Pattern, ty syntax.Term) (*Context, syntax.Term, *fail) {
	switch pat := pat.(type) {
	case *syntax.PatVar:
		return ctx.Extend(pat.Name, ty), &syntax.Var{Index: 0}, nil
	case *syntax.PatCon:
		tc, err := c.ensureTyCon(ctx.names, ty)
		if err != nil {
			return nil, nil, err
		}
		_, con, ok := c.globals.DataCon(pat.Name, tc.Name)
		if !ok {
			return nil, nil, c.errf("%s is not a constructor of %s", pat.Name, tc.Name)
		}
		if n := con.Args.Binds(); n != len(pat.Pats) {
			return nil, nil, c.errf("constructor %s expects %d arguments, got %d",
				pat.Name, n, len(pat.Pats))
		}
		tele, err := c.substTele(ctx.names, tc.Params, con.Args)
		if err != nil {
			return nil, nil, err
		}
		ctx, args, err := c.declarePats(ctx, pat.Pats, tele)
		if err != nil {
			return nil, nil, err
		}
		return ctx, &syntax.DataCon{Name: pat.Name, Args: args}, nil
	default:
		panic(fmt.Sprintf("impossible pattern type: %T", pat))
	}
}

// declarePats elaborates the arguments of a constructor pattern
// against the constructor's telescope. Constraints hold by virtue
// of the scrutinee's type and are skipped.
func (c *checker) declarePats(ctx *Context, pats []syntax.Pattern, tele syntax.Telescope) (*Context, []syntax.Term, *fail) {
	var terms []syntax.Term
	for len(tele) > 0 {
		switch e := tele[0].(type) {
		case *syntax.Param:
			pat := pats[0]
			ctx2, tm, err := c.declarePat(ctx, pat, e.Type)
			if err != nil {
				return nil, nil, err
			}
			size := pat.Size()
			rest, err := c.doSubst(ctx2.names, syntax.NewEnv([]syntax.Term{tm}, size), tele[1:])
			if err != nil {
				return nil, nil, err
			}
			up := syntax.ShiftEnv(size)
			for i, t := range terms {
				terms[i] = up.Apply(t)
			}
			terms = append(terms, tm)
			ctx, pats, tele = ctx2, pats[1:], rest
		case *syntax.Constraint:
			tele = tele[1:]
		default:
			panic(fmt.Sprintf("impossible telescope entry type: %T", e))
		}
	}
	if len(pats) != 0 {
		panic(fmt.Sprintf("impossible %d patterns left over", len(pats)))
	}
	return ctx, terms, nil
}
