package checker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qed-lang/qed/loc"
	"github.com/qed-lang/qed/mod"
	"github.com/qed-lang/qed/parser"
)

// An Importer loads, checks, and caches imported modules.
type Importer interface {
	// Files returns the source files of the root module
	// and of every module loaded so far.
	Files() loc.Files
	// Load returns the checked module at an import path.
	Load(path string) (*Mod, error)
	// Deps returns the transitive dependencies
	// in topological order with dependencies
	// appearing before their dependents.
	Deps() []*Mod
}

type defaultImporter struct {
	root                *mod.Root
	files               loc.Files
	loaded              map[string]*Mod
	deps                []*Mod
	trimErrorPathPrefix string
}

// NewImporter returns an Importer that finds modules under r and
// checks each one the first time it is loaded. files are the parsed
// files of the root module; imported files are parsed at offsets
// following them, so one loc.Files covers everything.
func NewImporter(r *mod.Root, files []*parser.File, trimErrorPathPrefix string) Importer {
	imp := &defaultImporter{
		root:                r,
		loaded:              make(map[string]*Mod),
		trimErrorPathPrefix: trimErrorPathPrefix,
	}
	for _, f := range files {
		imp.files = append(imp.files, f)
	}
	return imp
}

// newDefaultImporter is used when Check is given no Importer.
// It has no module root, so loading any import fails.
func newDefaultImporter(files []*parser.File) *defaultImporter {
	imp := &defaultImporter{loaded: make(map[string]*Mod)}
	for _, f := range files {
		imp.files = append(imp.files, f)
	}
	return imp
}

func (imp *defaultImporter) Files() loc.Files {
	return imp.files
}

func (imp *defaultImporter) Load(path string) (*Mod, error) {
	path = cleanImportPath(path)
	if m, ok := imp.loaded[path]; ok {
		return m, nil
	}
	if imp.root == nil {
		return nil, fmt.Errorf("cannot load %s: no module root", path)
	}
	m, err := imp.root.Get(path)
	if err != nil {
		return nil, err
	}
	p := parser.NewWithOffset(imp.files.Len() + 1)
	p.TrimErrorPathPrefix = imp.trimErrorPathPrefix
	for _, srcFile := range m.SrcFiles {
		if err := p.ParseFile(srcFile); err != nil {
			return nil, err
		}
	}
	for _, f := range p.Files {
		imp.files = append(imp.files, f)
	}
	opts := []Option{
		UseImporter(imp),
		TrimErrorPathPrefix(imp.trimErrorPathPrefix),
	}
	checked, _, errs := Check(path, p.Files, opts...)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	checked.Imported = true
	imp.loaded[path] = checked
	imp.deps = append(imp.deps, checked)
	return checked, nil
}

func (imp *defaultImporter) Deps() []*Mod { return imp.deps }

func cleanImportPath(path string) string {
	return strings.TrimPrefix(filepath.Clean(path), "/")
}
