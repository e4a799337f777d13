package checker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qed-lang/qed/loc"
)

type fail struct {
	msg   string
	loc   loc.Loc
	notes []note
}

type note struct {
	msg string
	loc loc.Loc // zero for no location
}

func (f *fail) note(format string, args ...any) *fail {
	f.notes = append(f.notes, note{msg: fmt.Sprintf(format, args...)})
	return f
}

func (f *fail) error(files loc.Files, trim string) error {
	var s strings.Builder
	if f.loc != (loc.Loc{}) {
		l := files.Location(f.loc)
		l.Path = strings.TrimPrefix(l.Path, trim)
		s.WriteString(l.String())
		s.WriteString(": ")
	}
	s.WriteString(f.msg)
	for _, n := range f.notes {
		s.WriteString("\n\t")
		s.WriteString(n.msg)
		if n.loc != (loc.Loc{}) {
			l := files.Location(n.loc)
			l.Path = strings.TrimPrefix(l.Path, trim)
			s.WriteString(" (")
			s.WriteString(l.String())
			s.WriteRune(')')
		}
	}
	return errors.New(s.String())
}

// errf makes a fail at the checker's current location,
// the location of the innermost enclosing Pos node.
func (c *checker) errf(format string, args ...any) *fail {
	return &fail{msg: fmt.Sprintf(format, args...), loc: c.loc}
}

func errAt(l loc.Loc, format string, args ...any) *fail {
	return &fail{msg: fmt.Sprintf(format, args...), loc: l}
}

func notFound(name string, l loc.Loc) *fail {
	return &fail{
		msg: fmt.Sprintf("%s: not found", name),
		loc: l,
	}
}

func redef(l loc.Loc, name string, prev loc.Loc) *fail {
	return &fail{
		msg:   name + " redefined",
		loc:   l,
		notes: []note{{msg: "previous", loc: prev}},
	}
}

// An internalError is a bug in the checker, not an error
// in the input. It is panicked so that whatever entry or
// expression was being checked can report it and move on.
type internalError struct {
	msg string
}

// catchInternal recovers an internalError panic into err.
// Other panics continue to propagate.
func catchInternal(err *error) {
	p := recover()
	if p == nil {
		return
	}
	ie, ok := p.(*internalError)
	if !ok {
		panic(p)
	}
	*err = errors.New("internal error: " + ie.msg)
}
