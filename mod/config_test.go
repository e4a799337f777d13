package mod

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	yaml := `
paths:
  - lib
  - vendor/qed
`
	cfg, err := ParseConfig([]byte(yaml), "qed.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{Paths: []string{"lib", "vendor/qed"}}
	if diff := cmp.Diff(cfg, want); diff != "" {
		t.Errorf("%s", diff)
	}
}

func TestParseConfigDefaultPaths(t *testing.T) {
	cfg, err := ParseConfig([]byte(""), "qed.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Config{Paths: []string{"."}}
	if diff := cmp.Diff(cfg, want); diff != "" {
		t.Errorf("%s", diff)
	}
}

func TestParseConfigEmptyPath(t *testing.T) {
	yaml := `
paths:
  - lib
  - ""
`
	if _, err := ParseConfig([]byte(yaml), "qed.yaml"); err == nil {
		t.Fatalf("expected empty path error")
	}
}

func TestParseConfigBadYAML(t *testing.T) {
	if _, err := ParseConfig([]byte("paths: {"), "qed.yaml"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	fsPath := makeFS([]file{
		{"qed.yaml", "paths:\n  - lib\n"},
		{"a/b/c/keep", ""},
	})
	defer os.RemoveAll(fsPath)
	got, err := FindConfig(filepath.Join(fsPath, "a/b/c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(fsPath, "qed.yaml"); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestFindConfigNone(t *testing.T) {
	fsPath := makeFS([]file{
		{"a/b/keep", ""},
	})
	defer os.RemoveAll(fsPath)
	got, err := FindConfig(filepath.Join(fsPath, "a/b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The temp dir has no qed.yaml, but a directory above it might;
	// only a result under fsPath is wrong.
	if got != "" && filepath.Dir(got) == filepath.Join(fsPath, "a/b") {
		t.Errorf("unexpected config %s", got)
	}
}

func TestNewRootFromConfig(t *testing.T) {
	fsPath := makeFS([]file{
		{"qed.yaml", "paths:\n  - lib\n"},
		{"lib/dep/source.qed", ""},
	})
	defer os.RemoveAll(fsPath)
	cfg, err := LoadConfig(filepath.Join(fsPath, "qed.yaml"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	r := NewRootFromConfig(filepath.Join(fsPath, "qed.yaml"), cfg)
	m, err := r.Get("dep")
	if err != nil {
		t.Fatalf("failed to load dep: %v", err)
	}
	if want := filepath.Join(fsPath, "lib/dep"); m.FullPath != want {
		t.Errorf("got %s, want %s", m.FullPath, want)
	}
}
