// Package loc tracks source locations across a set of parsed files.
//
// Positions are 1-based byte offsets into the concatenation of all
// files of a module, so a pair of ints can name a span of text
// without saying which file the span is in.
package loc

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// A Loc is a span of source text given as byte offsets
// [start, end] into a file set. Offsets begin at 1;
// the zero Loc means no location.
type Loc [2]int

// Union returns the smallest Loc covering both l and m.
// If either is the zero Loc, Union returns the other.
func (l Loc) Union(m Loc) Loc {
	switch {
	case l == Loc{}:
		return m
	case m == Loc{}:
		return l
	}
	if m[0] < l[0] {
		l[0] = m[0]
	}
	if m[1] > l[1] {
		l[1] = m[1]
	}
	return l
}

// A Location is a Loc resolved to a file path
// with line and column ranges.
// The zero value indicates no location.
type Location struct {
	Path string
	Line [2]int
	Col  [2]int
}

func (l Location) String() string {
	if (l == Location{}) {
		return ""
	}
	if l.Line[0] == l.Line[1] && l.Col[0] == l.Col[1] {
		return fmt.Sprintf("%s:%d.%d", l.Path, l.Line[0], l.Col[0])
	}
	return fmt.Sprintf("%s:%d.%d-%d.%d", l.Path, l.Line[0], l.Col[0], l.Line[1], l.Col[1])
}

// File describes a parsed file by its path, its size in bytes,
// and the byte offsets of its newlines.
type File interface {
	Path() string
	Len() int
	NewLines() []int
}

// Files resolves Locs across a set of files.
// The files are laid out in order: the first byte of fs[i+1]
// immediately follows the last byte of fs[i].
type Files []File

// Len returns the total length in bytes of all files in the set.
func (fs Files) Len() int {
	var n int
	for _, f := range fs {
		n += f.Len()
	}
	return n
}

// Location resolves a Loc to its file, lines, and columns.
// The zero Loc resolves to the zero Location.
// Location panics if the Loc is malformed, out of range,
// or spans multiple files.
func (fs Files) Location(l Loc) Location {
	switch {
	case l == Loc{}:
		return Location{}
	case l[0] > l[1]:
		panic("bad Loc")
	case l[0] < 1 || l[1] > fs.Len()+1:
		panic("Loc out of range")
	}
	p0, l0, c0 := fs.resolve(l[0])
	p1, l1, c1 := fs.resolve(l[1])
	if p0 != p1 {
		panic("Loc spans files")
	}
	return Location{Path: p0, Line: [2]int{l0, l1}, Col: [2]int{c0, c1}}
}

// resolve maps a 1-based offset into the file set
// to a path, 1-based line, and 1-based column.
func (fs Files) resolve(q int) (path string, line, col int) {
	if len(fs) == 0 {
		panic("no files")
	}
	q-- // offsets begin at 1
	var f File
	var offs int
	for i, g := range fs {
		f = g
		n := f.Len()
		if q < offs+n || i == len(fs)-1 {
			break
		}
		offs += n
	}
	nls := f.NewLines()
	qf := q - offs
	j, _ := slices.BinarySearch(nls, qf)
	line = j + 1
	if j == 0 {
		col = qf + 1
	} else {
		col = qf - nls[j-1]
	}
	return f.Path(), line, col
}
