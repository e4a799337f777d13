package checker

import (
	"fmt"

	"github.com/qed-lang/qed/syntax"
)

// A Context maps the variables in scope to their types.
// Every type is scoped to the whole context, so looking up an
// outer variable needs no shifting, and a refinement of the
// current scope can be applied to the context pointwise.
type Context struct {
	names []string
	types []syntax.Term
}

// Len returns the number of variables in scope.
func (ctx *Context) Len() int { return len(ctx.types) }

// Extend returns ctx with one new innermost variable.
// typ is scoped to ctx; the extended context's types are
// scoped to the extended context.
func (ctx *Context) Extend(name string, typ syntax.Term) *Context {
	n := len(ctx.types)
	names := make([]string, n+1)
	copy(names, ctx.names)
	names[n] = name
	up := syntax.ShiftEnv(1)
	types := make([]syntax.Term, n+1)
	for i, t := range ctx.types {
		types[i] = up.Apply(t)
	}
	types[n] = up.Apply(typ)
	return &Context{names: names, types: types}
}

// Lookup returns the type of variable i.
func (ctx *Context) Lookup(i int) syntax.Term {
	if i < 0 || i >= len(ctx.types) {
		panic(fmt.Sprintf("impossible variable %d in scope %d", i, len(ctx.types)))
	}
	return ctx.types[len(ctx.types)-1-i]
}

// apply returns ctx with a refinement applied to every type.
func (ctx *Context) apply(r Refinement) *Context {
	if len(r) == 0 {
		return ctx
	}
	types := make([]syntax.Term, len(ctx.types))
	for i, t := range ctx.types {
		types[i] = r.Apply(t)
	}
	return &Context{names: ctx.names, types: types}
}
