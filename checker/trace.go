package checker

import (
	"flag"
	"fmt"
	"strings"

	"github.com/qed-lang/qed/loc"
)

var (
	traceDepth = flag.Int("qed.trace", 0, "max depth for checker trace (0 = no trace; -1 = infinite)")
)

const traceIndent = "\t"

var bullets = [...]string{"•", "◦", "‣"}

type traceItem struct {
	c      *checker
	indent string
	bullet int
}

func (c *checker) trItem(f string, vs ...interface{}) *traceItem {
	tr := &traceItem{c: c, indent: c.trIndent, bullet: c.nextBullet}
	c.trIndent += traceIndent
	c.nextBullet++
	tr.trace(f, vs...)
	return tr
}

func (tr *traceItem) done() {
	tr.c.trIndent = strings.TrimSuffix(tr.c.trIndent, traceIndent)
	tr.c.nextBullet--
}

func (tr *traceItem) trace(f string, vs ...interface{}) {
	if *traceDepth == 0 {
		return
	}
	depth := strings.Count(tr.indent, traceIndent) + 1
	if *traceDepth > 0 && depth > *traceDepth {
		return
	}
	for i := range vs {
		l, ok := vs[i].(loc.Loc)
		if !ok {
			continue
		}
		lo := tr.c.files().Location(l)
		lo.Path = strings.TrimPrefix(lo.Path, tr.c.trimErrorPathPrefix)
		vs[i] = lo
	}
	s := fmt.Sprintf(f, vs...)
	s = strings.TrimSuffix(s, "\n")
	s = strings.ReplaceAll(s, "\n", "\n"+tr.indent+"  ")
	if tr.bullet >= 0 {
		s = bullets[tr.bullet%len(bullets)] + " " + s
		tr.bullet = -1
	} else {
		s = "  " + s
	}
	fmt.Println(tr.indent + s)
}
