// Package mod finds qed modules and their dependencies on disk.
// A module is a directory of .qed files; its module path is the
// directory's path relative to a root directory.
package mod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/qed-lang/qed/parser"
)

// A Mod is information about a single module.
// SrcFiles and Deps are in sorted order.
type Mod struct {
	Root     *Root
	Path     string
	FullPath string
	SrcFiles []string
	Deps     []*Mod
}

// A Root finds modules under a search path of root directories.
// Modules are cached, so two imports of the same path share a *Mod.
type Root struct {
	dirs []string
	mods map[string]*Mod
}

// NewRoot returns a Root that looks up module paths
// under each of dirs in order.
func NewRoot(dirs ...string) *Root {
	return &Root{
		dirs: dirs,
		mods: make(map[string]*Mod),
	}
}

// Get returns the module at a module path
// along with its transitive dependencies.
func (r *Root) Get(modPath string) (*Mod, error) {
	return r.get([]string{}, make(map[string]bool), modPath)
}

// GetMainBySource returns a module made of the given source files,
// which must share a single directory. The module is named by the
// first module header among the files, or main if none declares one.
func (r *Root) GetMainBySource(srcFiles []string) (*Mod, error) {
	if len(srcFiles) == 0 {
		return nil, fmt.Errorf("no source files")
	}
	fullPath := filepath.Dir(srcFiles[0])
	for _, f := range srcFiles[1:] {
		if filepath.Dir(f) != fullPath {
			return nil, fmt.Errorf("source files span directories %s and %s",
				fullPath, filepath.Dir(f))
		}
	}
	srcFiles = slices.Clone(srcFiles)
	slices.Sort(srcFiles)
	modPath := "main"
	for _, f := range srcFiles {
		declared, err := parser.ModPath(f)
		if err != nil {
			return nil, err
		}
		if declared != "" {
			modPath = declared
			break
		}
	}
	m := &Mod{
		Root:     r,
		Path:     modPath,
		FullPath: fullPath,
		SrcFiles: srcFiles,
	}
	if err := r.loadDeps([]string{modPath}, map[string]bool{modPath: true}, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Root) get(path []string, onPath map[string]bool, modPath string) (*Mod, error) {
	path = append(path, modPath)
	if onPath[modPath] {
		return nil, fmt.Errorf("dependency cycle: %s", strings.Join(path, " imports "))
	}
	onPath[modPath] = true
	defer delete(onPath, modPath)

	if m, ok := r.mods[modPath]; ok {
		return m, nil
	}

	fullPath, err := r.find(modPath)
	if err != nil {
		return nil, err
	}
	srcFiles, err := sourceFiles(fullPath)
	if err != nil {
		return nil, err
	}
	m := &Mod{
		Root:     r,
		Path:     modPath,
		FullPath: fullPath,
		SrcFiles: srcFiles,
	}
	r.mods[modPath] = m
	if err := r.loadDeps(path, onPath, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Root) loadDeps(path []string, onPath map[string]bool, m *Mod) error {
	imports, err := importPaths(m.SrcFiles)
	if err != nil {
		return err
	}
	for _, imp := range imports {
		d, err := r.get(path, onPath, imp)
		if err != nil {
			return err
		}
		m.Deps = append(m.Deps, d)
	}
	return nil
}

// find returns the one directory on the search path holding modPath.
// It is an error if there are multiple.
func (r *Root) find(modPath string) (string, error) {
	var found []string
	for _, dir := range r.dirs {
		p := filepath.Join(dir, filepath.FromSlash(modPath))
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		found = append(found, p)
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("module %s not found", modPath)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("module %s is ambiguous: %s", modPath, strings.Join(found, ", "))
	}
}

func sourceFiles(fullPath string) ([]string, error) {
	dirEnts, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}
	var srcFiles []string
	for _, ent := range dirEnts {
		if ent.IsDir() || filepath.Ext(ent.Name()) != ".qed" {
			continue
		}
		srcFiles = append(srcFiles, filepath.Join(fullPath, ent.Name()))
	}
	slices.Sort(srcFiles)
	return srcFiles, nil
}

func importPaths(srcFiles []string) ([]string, error) {
	var imports []string
	seenImports := make(map[string]bool)
	for _, srcFile := range srcFiles {
		if filepath.Ext(srcFile) != ".qed" {
			continue
		}
		imps, err := parser.ImportsOnly(srcFile)
		if err != nil {
			return nil, err
		}
		for _, imp := range imps {
			if seenImports[imp] {
				continue
			}
			seenImports[imp] = true
			imports = append(imports, imp)
		}
	}
	slices.Sort(imports)
	return imports, nil
}
