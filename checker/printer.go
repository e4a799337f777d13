package checker

import (
	"io"

	"github.com/qed-lang/qed/syntax"
)

// Print writes a debug dump of the checked module's entries.
// Options are forwarded to the syntax tree printer.
func (m *Mod) Print(w io.Writer, opts ...syntax.PrintOpt) error {
	return (&syntax.Module{Path: m.Path, Entries: m.Entries}).Print(w, opts...)
}
