package mod

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// A Config is the qed.yaml module configuration.
type Config struct {
	// Paths lists the module root directories searched for imports,
	// relative to the directory holding the config file.
	// It defaults to the config file's own directory.
	Paths []string `yaml:"paths,omitempty"`
}

// LoadConfig reads and parses a qed.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses qed.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for qed.yaml starting from dir and walking up
// to parent directories. It returns the path to the config file and
// nil error if found, or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range []string{"qed.yaml", "qed.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// NewRootFromConfig returns a Root searching the config's paths.
// Relative paths are resolved against the config file's directory.
func NewRootFromConfig(path string, cfg *Config) *Root {
	dir := filepath.Dir(path)
	dirs := make([]string, len(cfg.Paths))
	for i, p := range cfg.Paths {
		if filepath.IsAbs(p) {
			dirs[i] = p
		} else {
			dirs[i] = filepath.Join(dir, p)
		}
	}
	return NewRoot(dirs...)
}

func (c *Config) validate(path string) error {
	for i, p := range c.Paths {
		if p == "" {
			return fmt.Errorf("%s: paths[%d]: empty path", path, i)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if len(c.Paths) == 0 {
		c.Paths = []string{"."}
	}
}
