// Package checker resolves and type checks parsed qed modules.
//
// Checking is bidirectional: infer computes a type from a term, and
// check pushes an expected type into a term. Types are compared by
// reduction to weak head normal form, and pattern matching on a
// scrutinee refines the types in scope through first-order
// unification.
package checker

import (
	"fmt"

	"github.com/qed-lang/qed/loc"
	"github.com/qed-lang/qed/parser"
	"github.com/qed-lang/qed/syntax"
)

// A Mod is a checked module. Entries lists the module's own entries
// with a type declaration before every definition; Globals has the
// signature of everything in scope, including imported modules.
type Mod struct {
	Path     string
	Entries  []syntax.Entry
	Globals  *Globals
	Imported bool
}

// An Option configures Check.
type Option func(*checker)

// UseImporter sets the Importer used to load imported modules.
func UseImporter(imp Importer) Option {
	return func(c *checker) { c.importer = imp }
}

// TrimErrorPathPrefix sets a prefix trimmed from file paths
// reported in error messages.
func TrimErrorPathPrefix(prefix string) Option {
	return func(c *checker) { c.trimErrorPathPrefix = prefix }
}

type checker struct {
	path                string
	globals             *Globals
	hints               map[string]*hint
	importer            Importer
	locFiles            loc.Files
	trimErrorPathPrefix string
	loc                 loc.Loc

	trIndent   string
	nextBullet int
}

// A hint is a declared type whose name has no definition yet.
// The name is not in scope until its definition is checked.
type hint struct {
	typ syntax.Term
	l   loc.Loc
}

func (c *checker) files() loc.Files {
	if c.importer != nil {
		return c.importer.Files()
	}
	return c.locFiles
}

// Check resolves and type checks the files of the module at modPath
// and returns the checked module and the loc.Files for resolving
// its locations. Each entry reports at most one error; checking
// continues with the remaining entries.
func Check(modPath string, files []*parser.File, opts ...Option) (*Mod, loc.Files, []error) {
	c := &checker{
		path:    modPath,
		globals: NewGlobals(),
		hints:   make(map[string]*hint),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.importer == nil {
		c.importer = newDefaultImporter(files)
	}
	mod := &Mod{Path: modPath, Globals: c.globals}
	var fails []*fail
	for _, file := range files {
		if file.Mod != nil && file.Mod.Path != modPath {
			fails = append(fails, errAt(file.Mod.L,
				"file declares module %s, not %s", file.Mod.Path, modPath))
		}
		for _, imp := range file.Imports {
			m, err := c.importer.Load(imp.Path)
			if err != nil {
				fails = append(fails, &fail{msg: err.Error(), loc: imp.L})
				continue
			}
			fails = append(fails, c.globals.merge(m.Globals)...)
		}
	}
	for _, file := range files {
		for _, parserEntry := range file.Entries {
			entries, f := c.entry(parserEntry)
			if f != nil {
				fails = append(fails, f)
				continue
			}
			mod.Entries = append(mod.Entries, entries...)
		}
	}
	if len(fails) > 0 {
		errs := make([]error, len(fails))
		for i, f := range fails {
			errs[i] = f.error(c.files(), c.trimErrorPathPrefix)
		}
		return nil, nil, errs
	}
	return mod, c.files(), nil
}

// entry checks one top-level entry. An internal invariant broken
// while reducing an ill-founded term is reported as this entry's
// error rather than crashing the whole check.
func (c *checker) entry(e parser.Entry) (entries []syntax.Entry, f *fail) {
	defer func() {
		if p := recover(); p != nil {
			ie, ok := p.(*internalError)
			if !ok {
				panic(p)
			}
			f = errAt(e.Loc(), "internal error: %s", ie.msg)
		}
	}()
	switch e := e.(type) {
	case *parser.Decl:
		return c.declEntry(e)
	case *parser.Def:
		return c.defEntry(e)
	case *parser.DataDef:
		return c.dataEntry(e)
	default:
		panic(fmt.Sprintf("impossible entry type: %T", e))
	}
}

// declEntry checks name : type. The type becomes a hint: the
// definition that follows is checked against it, and until that
// definition is seen the name is not in scope.
func (c *checker) declEntry(e *parser.Decl) ([]syntax.Entry, *fail) {
	tr := c.trItem("decl %s (%v)", e.Name.Name, e.L)
	defer tr.done()
	name := e.Name.Name
	if prev, ok := c.globals.types[name]; ok {
		return nil, redef(e.L, name, prev.l)
	}
	if prev, ok := c.hints[name]; ok {
		return nil, redef(e.L, name, prev.l)
	}
	c.loc = e.L
	typ, err := c.resolveExpr(nil, e.Type)
	if err != nil {
		return nil, err
	}
	if err := c.check(&Context{}, typ, &syntax.Universe{}); err != nil {
		return nil, err
	}
	c.hints[name] = &hint{typ: typ, l: e.L}
	return []syntax.Entry{&syntax.Decl{Name: name, Type: typ, L: e.L}}, nil
}

// defEntry checks name = expr against the name's declared type,
// or infers a type if there is no declaration. The checked entries
// always carry a declaration before the definition.
func (c *checker) defEntry(e *parser.Def) ([]syntax.Entry, *fail) {
	tr := c.trItem("def %s (%v)", e.Name.Name, e.L)
	defer tr.done()
	name := e.Name.Name
	if prev, ok := c.globals.defs[name]; ok {
		return nil, redef(e.L, name, prev.l)
	}
	c.loc = e.L
	body, err := c.resolveExpr(nil, e.Expr)
	if err != nil {
		return nil, err
	}
	h, ok := c.hints[name]
	if !ok {
		if prev, ok := c.globals.types[name]; ok {
			return nil, redef(e.L, name, prev.l)
		}
		typ, err := c.infer(&Context{}, body)
		if err != nil {
			return nil, err
		}
		c.globals.types[name] = &global{term: typ, l: e.L, origin: c.path}
		c.globals.defs[name] = &global{term: body, l: e.L, origin: c.path}
		return []syntax.Entry{
			&syntax.Decl{Name: name, Type: typ, L: e.L},
			&syntax.Def{Name: name, Body: body, L: e.L},
		}, nil
	}
	// The declared type is visible while checking the body, so a
	// definition can recurse through its declaration. The body
	// cannot unfold the name: it has no definition yet.
	delete(c.hints, name)
	c.globals.types[name] = &global{term: h.typ, l: h.l, origin: c.path}
	if err := c.check(&Context{}, body, h.typ); err != nil {
		delete(c.globals.types, name)
		c.hints[name] = h
		return nil, err
	}
	c.globals.defs[name] = &global{term: body, l: e.L, origin: c.path}
	return []syntax.Entry{&syntax.Def{Name: name, Body: body, L: e.L}}, nil
}

// dataEntry checks a datatype definition: the parameter telescope
// must be well formed without constraints, and each constructor's
// telescope must be well formed under the parameters. The datatype
// itself is in scope for the constructors, permitting recursion.
func (c *checker) dataEntry(e *parser.DataDef) ([]syntax.Entry, *fail) {
	tr := c.trItem("data %s (%v)", e.Name.Name, e.L)
	defer tr.done()
	name := e.Name.Name
	if prev, ok := c.globals.data[name]; ok {
		return nil, redef(e.L, name, prev.l)
	}
	for _, it := range e.Params {
		if eq, ok := it.(*parser.TeleEq); ok {
			return nil, errAt(eq.L, "datatype parameters cannot be constrained")
		}
	}
	c.loc = e.L
	params, paramNames, err := c.resolveTele(nil, e.Params)
	if err != nil {
		return nil, err
	}
	pctx, err := c.tcTypeTele(&Context{}, params)
	if err != nil {
		return nil, err
	}
	d := &syntax.DataDef{Name: name, Params: params}
	// The datatype is in scope for its own constructors,
	// permitting recursion. A failed definition is removed.
	c.globals.data[name] = &dataGlobal{def: d, l: e.L, origin: c.path}
	if err := c.dataCons(pctx, paramNames, d, e.Cons); err != nil {
		delete(c.globals.data, name)
		return nil, err
	}
	return []syntax.Entry{&syntax.Data{Def: d, L: e.L}}, nil
}

func (c *checker) dataCons(pctx *Context, paramNames []string, d *syntax.DataDef, cons []*parser.ConDef) *fail {
	conNames := make(map[string]loc.Loc)
	for _, con := range cons {
		if prev, ok := conNames[con.Name.Name]; ok {
			return redef(con.L, con.Name.Name, prev)
		}
		conNames[con.Name.Name] = con.L
		c.loc = con.L
		args, _, err := c.resolveTele(paramNames, con.Args)
		if err != nil {
			return err
		}
		if _, err := c.tcTypeTele(pctx, args); err != nil {
			return err
		}
		d.Cons = append(d.Cons, &syntax.ConDef{Name: con.Name.Name, Args: args})
	}
	return nil
}

// infer computes the type of t under ctx.
func (c *checker) infer(ctx *Context, t syntax.Term) (ty syntax.Term, err *fail) {
	if p, ok := t.(*syntax.Pos); ok {
		saved := c.loc
		c.loc = p.L
		defer func() { c.loc = saved }()
		return c.infer(ctx, p.Expr)
	}
	tr := c.trItem("infer %s", syntax.TermString(t, ctx.names))
	defer func() {
		if err != nil {
			tr.trace("error: %s", err.msg)
		} else {
			tr.trace("type: %s", syntax.TermString(ty, ctx.names))
		}
		tr.done()
	}()
	switch t := t.(type) {
	case *syntax.Var:
		return ctx.Lookup(t.Index), nil
	case *syntax.Global:
		typ, ok := c.globals.Type(t.Name)
		if !ok {
			return nil, notFound(t.Name, c.loc)
		}
		return typ, nil
	case *syntax.Universe:
		return &syntax.Universe{}, nil
	case *syntax.Pi:
		if err := c.check(ctx, t.Dom, &syntax.Universe{}); err != nil {
			return nil, err
		}
		if err := c.check(ctx.Extend(t.Ran.Name, t.Dom), t.Ran.Body, &syntax.Universe{}); err != nil {
			return nil, err
		}
		return &syntax.Universe{}, nil
	case *syntax.App:
		fty, err := c.infer(ctx, t.Fn)
		if err != nil {
			return nil, err
		}
		pi, err := c.ensurePi(ctx.names, fty)
		if err != nil {
			return nil, err
		}
		if err := c.check(ctx, t.Arg, pi.Dom); err != nil {
			return nil, err
		}
		return pi.Ran.Instantiate(t.Arg), nil
	case *syntax.Ann:
		if err := c.check(ctx, t.Type, &syntax.Universe{}); err != nil {
			return nil, err
		}
		if err := c.check(ctx, t.Expr, t.Type); err != nil {
			return nil, err
		}
		return t.Type, nil
	case *syntax.TyCon:
		d, ok := c.globals.TyCon(t.Name)
		if !ok {
			return nil, notFound(t.Name, c.loc)
		}
		if n := d.Params.Binds(); n != len(t.Params) {
			return nil, c.errf("%s expects %d parameters, got %d", t.Name, n, len(t.Params))
		}
		if err := c.tcArgTele(ctx, t.Params, d.Params); err != nil {
			return nil, err
		}
		return &syntax.Universe{}, nil
	case *syntax.DataCon:
		return c.inferCon(ctx, t)
	case *syntax.EqType:
		aty, err := c.infer(ctx, t.A)
		if err != nil {
			return nil, err
		}
		if err := c.check(ctx, t.B, aty); err != nil {
			return nil, err
		}
		return &syntax.Universe{}, nil
	default:
		return nil, c.errf("%s needs a type annotation", syntax.TermString(t, ctx.names))
	}
}

// inferCon infers the type of a constructor application. That is
// only possible when exactly one datatype defines the constructor
// and the datatype has no parameters for an annotation to determine.
func (c *checker) inferCon(ctx *Context, t *syntax.DataCon) (syntax.Term, *fail) {
	matches := c.globals.DataCons(t.Name)
	switch {
	case len(matches) == 0:
		return nil, notFound(t.Name, c.loc)
	case len(matches) > 1:
		f := c.errf("%s is ambiguous: annotate its type", t.Name)
		for _, m := range matches {
			f.note("a constructor of %s", m.Data.Name)
		}
		return nil, f
	}
	d, con := matches[0].Data, matches[0].Con
	if d.Params.Binds() != 0 {
		return nil, c.errf("cannot infer the parameters of %s: annotate its type", d.Name)
	}
	if n := con.Args.Binds(); n != len(t.Args) {
		return nil, c.errf("%s expects %d arguments, got %d", t.Name, n, len(t.Args))
	}
	if err := c.tcArgTele(ctx, t.Args, con.Args); err != nil {
		return nil, err
	}
	return &syntax.TyCon{Name: d.Name}, nil
}

// check checks that t has type want under ctx.
func (c *checker) check(ctx *Context, t, want syntax.Term) (err *fail) {
	if p, ok := t.(*syntax.Pos); ok {
		saved := c.loc
		c.loc = p.L
		defer func() { c.loc = saved }()
		return c.check(ctx, p.Expr, want)
	}
	tr := c.trItem("check %s : %s", syntax.TermString(t, ctx.names), syntax.TermString(want, ctx.names))
	defer func() {
		if err != nil {
			tr.trace("error: %s", err.msg)
		} else {
			tr.trace("ok")
		}
		tr.done()
	}()
	want = c.whnf(want)
	switch t := t.(type) {
	case *syntax.Lam:
		pi, err := c.ensurePi(ctx.names, want)
		if err != nil {
			return err
		}
		return c.check(ctx.Extend(t.B.Name, pi.Dom), t.B.Body, pi.Ran.Body)
	case *syntax.TrustMe:
		return nil
	case *syntax.PrintMe:
		f := c.errf("unmet obligation: the goal is %s", syntax.TermString(want, ctx.names))
		for i := 0; i < ctx.Len(); i++ {
			f.note("%s : %s", ctx.names[i], syntax.TermString(ctx.types[i], ctx.names))
		}
		return f
	case *syntax.Let:
		return c.check(ctx, t.B.Instantiate(t.Rhs), want)
	case *syntax.Refl:
		eq, ok := want.(*syntax.EqType)
		if !ok {
			return c.errf("Refl proves an equality, not %s", syntax.TermString(want, ctx.names))
		}
		return c.equate(ctx.names, eq.A, eq.B)
	case *syntax.Subst:
		return c.checkSubst(ctx, t, want)
	case *syntax.Contra:
		return c.checkContra(ctx, t)
	case *syntax.DataCon:
		if tc, ok := want.(*syntax.TyCon); ok {
			return c.checkCon(ctx, t, tc)
		}
	case *syntax.Case:
		return c.checkCase(ctx, t, want)
	}
	got, err := c.infer(ctx, t)
	if err != nil {
		return err
	}
	return c.equate(ctx.names, got, want)
}

// checkSubst rewrites the goal and the context with the equality
// proved by the proof term. The equality's sides are unified, the
// proof itself is unified with Refl, and the joined refinement is
// applied to the goal and to every type in scope.
func (c *checker) checkSubst(ctx *Context, t *syntax.Subst, want syntax.Term) *fail {
	pty, err := c.infer(ctx, t.Proof)
	if err != nil {
		return err
	}
	eq, err := c.ensureEqType(ctx.names, pty)
	if err != nil {
		return err
	}
	r1, err := c.unify(ctx.names, 0, eq.A, eq.B)
	if err != nil {
		return err
	}
	r2, err := c.unify(ctx.names, 0, t.Proof, &syntax.Refl{})
	if err != nil {
		return err
	}
	r, err := c.join(ctx.names, r1, r2)
	if err != nil {
		return err
	}
	return c.check(ctx.apply(r), t.Expr, r.Apply(want))
}

// checkContra accepts a proof of an equality whose sides reduce to
// applications of distinct data constructors. Such an equality has
// no proof, so the whole term checks at any type.
func (c *checker) checkContra(ctx *Context, t *syntax.Contra) *fail {
	pty, err := c.infer(ctx, t.Proof)
	if err != nil {
		return err
	}
	eq, err := c.ensureEqType(ctx.names, pty)
	if err != nil {
		return err
	}
	wa, wb := c.whnf(eq.A), c.whnf(eq.B)
	da, aok := wa.(*syntax.DataCon)
	db, bok := wb.(*syntax.DataCon)
	if !aok || !bok || da.Name == db.Name {
		return c.errf("%s and %s are not contradictory",
			syntax.TermString(wa, ctx.names), syntax.TermString(wb, ctx.names))
	}
	return nil
}

// checkCon checks a constructor application against the datatype it
// should construct: the constructor's telescope is instantiated with
// the datatype's parameters and the arguments are checked against it.
func (c *checker) checkCon(ctx *Context, t *syntax.DataCon, want *syntax.TyCon) *fail {
	_, con, ok := c.globals.DataCon(t.Name, want.Name)
	if !ok {
		return c.errf("%s is not a constructor of %s", t.Name, want.Name)
	}
	if n := con.Args.Binds(); n != len(t.Args) {
		return c.errf("%s expects %d arguments, got %d", t.Name, n, len(t.Args))
	}
	tele, err := c.substTele(ctx.names, want.Params, con.Args)
	if err != nil {
		return err
	}
	return c.tcArgTele(ctx, t.Args, tele)
}

// checkCase checks a case expression against the goal. Each branch
// is checked under the pattern's bindings, with the scrutinee
// unified against the pattern to refine the goal and the context.
// A branch whose pattern cannot unify with the scrutinee can never
// be taken and is skipped.
func (c *checker) checkCase(ctx *Context, t *syntax.Case, want syntax.Term) *fail {
	sty, err := c.infer(ctx, t.Scrut)
	if err != nil {
		return err
	}
	tc, err := c.ensureTyCon(ctx.names, sty)
	if err != nil {
		return err
	}
	scrut := c.whnf(t.Scrut)
	for i := range t.Branches {
		br := &t.Branches[i]
		bctx, pat, err := c.declarePat(ctx, br.Pat, tc)
		if err != nil {
			return err
		}
		up := syntax.ShiftEnv(br.Pat.Size())
		defs, ferr := c.unify(bctx.names, 0, up.Apply(scrut), pat)
		if ferr != nil {
			continue
		}
		if err := c.check(bctx.apply(defs), br.Body, defs.Apply(up.Apply(want))); err != nil {
			return err
		}
	}
	return nil
}

// InferExpr resolves an expression in the scope of the module's
// globals and infers its type. The returned terms are the resolved
// core term and its type. files must cover the expression's
// locations for errors to be reported against the source.
func (m *Mod) InferExpr(files loc.Files, e parser.Expr) (tm, ty syntax.Term, err error) {
	c := m.exprChecker(files)
	defer catchInternal(&err)
	t, f := c.resolveExpr(nil, e)
	if f != nil {
		return nil, nil, f.error(files, c.trimErrorPathPrefix)
	}
	typ, f := c.infer(&Context{}, t)
	if f != nil {
		return nil, nil, f.error(files, c.trimErrorPathPrefix)
	}
	return t, typ, nil
}

// WhnfExpr resolves an expression, checks that it is well typed,
// and reduces it to weak head normal form.
func (m *Mod) WhnfExpr(files loc.Files, e parser.Expr) (tm syntax.Term, err error) {
	c := m.exprChecker(files)
	defer catchInternal(&err)
	t, f := c.resolveExpr(nil, e)
	if f != nil {
		return nil, f.error(files, c.trimErrorPathPrefix)
	}
	if _, f := c.infer(&Context{}, t); f != nil {
		return nil, f.error(files, c.trimErrorPathPrefix)
	}
	return c.whnf(t), nil
}

func (m *Mod) exprChecker(files loc.Files) *checker {
	return &checker{
		path:     m.Path,
		globals:  m.Globals,
		hints:    make(map[string]*hint),
		locFiles: files,
	}
}
