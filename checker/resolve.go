package checker

import (
	"fmt"

	"github.com/qed-lang/qed/parser"
	"github.com/qed-lang/qed/syntax"
)

// resolveExpr turns a surface expression into a core term. A name
// resolves to the innermost binder with that name, or failing that
// to a data constructor, a type constructor, or a global, in that
// order. Every node is wrapped with its source location.
func (c *checker) resolveExpr(locals []string, e parser.Expr) (syntax.Term, *fail) {
	t, err := c.resolve1(locals, e)
	if err != nil {
		return nil, err
	}
	return &syntax.Pos{L: e.Loc(), Expr: t}, nil
}

func (c *checker) resolve1(locals []string, e parser.Expr) (syntax.Term, *fail) {
	switch e := e.(type) {
	case *parser.Id:
		return c.resolveName(locals, e.Name), nil
	case *parser.Universe:
		return &syntax.Universe{}, nil
	case *parser.Arrow:
		dom, err := c.resolveExpr(locals, e.Dom)
		if err != nil {
			return nil, err
		}
		name := "_"
		if e.Binder != nil {
			name = e.Binder.Name
		}
		ran, err := c.resolveExpr(pushName(locals, name), e.Ran)
		if err != nil {
			return nil, err
		}
		return &syntax.Pi{Dom: dom, Ran: syntax.Bind{Name: name, Body: ran}}, nil
	case *parser.Lam:
		for _, n := range e.Names {
			locals = pushName(locals, n.Name)
		}
		body, err := c.resolveExpr(locals, e.Body)
		if err != nil {
			return nil, err
		}
		for i := len(e.Names) - 1; i > 0; i-- {
			body = &syntax.Lam{B: syntax.Bind{Name: e.Names[i].Name, Body: body}}
		}
		return &syntax.Lam{B: syntax.Bind{Name: e.Names[0].Name, Body: body}}, nil
	case *parser.App:
		fn, err := c.resolveExpr(locals, e.Fn)
		if err != nil {
			return nil, err
		}
		args := make([]syntax.Term, len(e.Args))
		for i, a := range e.Args {
			if args[i], err = c.resolveExpr(locals, a); err != nil {
				return nil, err
			}
		}
		// Arguments of a constructor head fold into the constructor.
		switch hd := stripPos(fn).(type) {
		case *syntax.DataCon:
			as := hd.Args[:len(hd.Args):len(hd.Args)]
			return &syntax.DataCon{Name: hd.Name, Args: append(as, args...)}, nil
		case *syntax.TyCon:
			ps := hd.Params[:len(hd.Params):len(hd.Params)]
			return &syntax.TyCon{Name: hd.Name, Params: append(ps, args...)}, nil
		}
		t := fn
		for _, a := range args {
			t = &syntax.App{Fn: t, Arg: a}
		}
		return t, nil
	case *parser.Ann:
		expr, err := c.resolveExpr(locals, e.Expr)
		if err != nil {
			return nil, err
		}
		typ, err := c.resolveExpr(locals, e.Type)
		if err != nil {
			return nil, err
		}
		return &syntax.Ann{Expr: expr, Type: typ}, nil
	case *parser.Let:
		rhs, err := c.resolveExpr(locals, e.Rhs)
		if err != nil {
			return nil, err
		}
		body, err := c.resolveExpr(pushName(locals, e.Name.Name), e.Body)
		if err != nil {
			return nil, err
		}
		return &syntax.Let{Rhs: rhs, B: syntax.Bind{Name: e.Name.Name, Body: body}}, nil
	case *parser.Eq:
		a, err := c.resolveExpr(locals, e.A)
		if err != nil {
			return nil, err
		}
		b, err := c.resolveExpr(locals, e.B)
		if err != nil {
			return nil, err
		}
		return &syntax.EqType{A: a, B: b}, nil
	case *parser.Refl:
		return &syntax.Refl{}, nil
	case *parser.Subst:
		expr, err := c.resolveExpr(locals, e.Expr)
		if err != nil {
			return nil, err
		}
		proof, err := c.resolveExpr(locals, e.Proof)
		if err != nil {
			return nil, err
		}
		return &syntax.Subst{Expr: expr, Proof: proof}, nil
	case *parser.Contra:
		proof, err := c.resolveExpr(locals, e.Proof)
		if err != nil {
			return nil, err
		}
		return &syntax.Contra{Proof: proof}, nil
	case *parser.TrustMe:
		return &syntax.TrustMe{}, nil
	case *parser.PrintMe:
		return &syntax.PrintMe{}, nil
	case *parser.Unit:
		return &syntax.DataCon{Name: "()"}, nil
	case *parser.Case:
		scrut, err := c.resolveExpr(locals, e.Scrut)
		if err != nil {
			return nil, err
		}
		branches := make([]syntax.Branch, len(e.Branches))
		for i, br := range e.Branches {
			pat, names := c.resolvePat(br.Pat)
			seen := make(map[string]bool)
			for _, n := range names {
				if n != "_" && seen[n] {
					return nil, errAt(br.Pat.Loc(), "%s bound twice in one pattern", n)
				}
				seen[n] = true
			}
			body, err := c.resolveExpr(append(locals[:len(locals):len(locals)], names...), br.Body)
			if err != nil {
				return nil, err
			}
			branches[i] = syntax.Branch{Pat: pat, Body: body}
		}
		return &syntax.Case{Scrut: scrut, Branches: branches}, nil
	default:
		panic(fmt.Sprintf("impossible expression type: %T", e))
	}
}

func (c *checker) resolveName(locals []string, name string) syntax.Term {
	for i := len(locals) - 1; i >= 0; i-- {
		if locals[i] == name {
			return &syntax.Var{Index: len(locals) - 1 - i}
		}
	}
	if len(c.globals.DataCons(name)) > 0 {
		return &syntax.DataCon{Name: name}
	}
	if _, ok := c.globals.TyCon(name); ok {
		return &syntax.TyCon{Name: name}
	}
	return &syntax.Global{Name: name}
}

// resolvePat turns a surface pattern into a core pattern and the
// names it binds in source order. A bare name is a constructor
// pattern if any datatype defines a constructor with that name,
// and a variable pattern otherwise.
func (c *checker) resolvePat(p parser.Pat) (syntax.Pattern, []string) {
	switch p := p.(type) {
	case *parser.PatName:
		if len(c.globals.DataCons(p.Name.Name)) > 0 {
			return &syntax.PatCon{Name: p.Name.Name}, nil
		}
		return &syntax.PatVar{Name: p.Name.Name}, []string{p.Name.Name}
	case *parser.PatCon:
		pats := make([]syntax.Pattern, len(p.Args))
		var names []string
		for i, q := range p.Args {
			var qnames []string
			pats[i], qnames = c.resolvePat(q)
			names = append(names, qnames...)
		}
		return &syntax.PatCon{Name: p.Name.Name, Pats: pats}, names
	case *parser.PatUnit:
		return &syntax.PatCon{Name: "()"}, nil
	default:
		panic(fmt.Sprintf("impossible pattern type: %T", p))
	}
}

// resolveTele turns surface telescope items into a core telescope.
// It returns the locals extended with the telescope's bindings.
func (c *checker) resolveTele(locals []string, items []parser.TeleItem) (syntax.Telescope, []string, *fail) {
	locals = locals[:len(locals):len(locals)]
	var tele syntax.Telescope
	for _, it := range items {
		switch it := it.(type) {
		case *parser.TeleBind:
			typ, err := c.resolveExpr(locals, it.Type)
			if err != nil {
				return nil, nil, err
			}
			name := "_"
			if it.Name != nil {
				name = it.Name.Name
			}
			tele = append(tele, &syntax.Param{Name: name, Type: typ})
			locals = append(locals, name)
		case *parser.TeleEq:
			idx := -1
			for i := len(locals) - 1; i >= 0; i-- {
				if locals[i] == it.Name.Name {
					idx = len(locals) - 1 - i
					break
				}
			}
			if idx < 0 {
				return nil, nil, errAt(it.Name.L, "%s: not found", it.Name.Name)
			}
			val, err := c.resolveExpr(locals, it.Expr)
			if err != nil {
				return nil, nil, err
			}
			tele = append(tele, &syntax.Constraint{Var: idx, Val: val})
		default:
			panic(fmt.Sprintf("impossible telescope item type: %T", it))
		}
	}
	return tele, locals, nil
}

func stripPos(t syntax.Term) syntax.Term {
	for {
		p, ok := t.(*syntax.Pos)
		if !ok {
			return t
		}
		t = p.Expr
	}
}
