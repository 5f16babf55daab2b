package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
)

// Config is the pipeline configuration file.
type Config struct {
	Embeddings string   `yaml:"embeddings"`
	Dim        int      `yaml:"dim"`
	BatchSize  int      `yaml:"batch_size"`
	PadValue   int      `yaml:"pad_value"`
	MaxLength  int      `yaml:"max_length"` // 0 pads to the longest sentence of each batch
	DB         string   `yaml:"db"`
	LogLevel   string   `yaml:"log_level"`
	Workers    int      `yaml:"workers"`
	Corpora    []Corpus `yaml:"corpora"`
	Outputs    Outputs  `yaml:"outputs"`
}

// Corpus names one tagged corpus file.
type Corpus struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// Outputs controls where artifacts are written.
type Outputs struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when a field is left unset.
func Default() Config {
	return Config{
		Dim:       embedding.DefaultDim,
		BatchSize: 32,
		LogLevel:  "info",
		Workers:   2,
		Outputs:   Outputs{Dir: "."},
	}
}

// Load reads a YAML config file on top of Default. Relative corpus and
// embedding paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg.Embeddings = resolve(base, cfg.Embeddings)
	cfg.DB = resolve(base, cfg.DB)
	cfg.Outputs.Dir = resolve(base, cfg.Outputs.Dir)
	for i := range cfg.Corpora {
		cfg.Corpora[i].Path = resolve(base, cfg.Corpora[i].Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks field ranges and corpus formats.
func (c *Config) Validate() error {
	if c.Dim <= 0 {
		return fmt.Errorf("dim must be positive, got %d: %w", c.Dim, internalerr.ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d: %w", c.BatchSize, internalerr.ErrInvalidConfig)
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("max_length must not be negative, got %d: %w", c.MaxLength, internalerr.ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Corpora))
	for i, cp := range c.Corpora {
		if cp.Name == "" {
			return fmt.Errorf("corpora[%d]: name is required: %w", i, internalerr.ErrInvalidConfig)
		}
		if seen[cp.Name] {
			return fmt.Errorf("corpora[%d]: duplicate name %q: %w", i, cp.Name, internalerr.ErrInvalidConfig)
		}
		seen[cp.Name] = true
		if cp.Path == "" {
			return fmt.Errorf("corpora[%d] %s: path is required: %w", i, cp.Name, internalerr.ErrInvalidConfig)
		}
		if _, err := corpus.ParseFormat(cp.Format); err != nil {
			return fmt.Errorf("corpora[%d] %s: %v: %w", i, cp.Name, err, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

// Corpus returns the corpus entry with the given name.
func (c *Config) Corpus(name string) (Corpus, bool) {
	for _, cp := range c.Corpora {
		if cp.Name == name {
			return cp, true
		}
	}
	return Corpus{}, false
}
