package config

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/logging"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store/memstore"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store/sqlite"
)

// Loader reads the config file and constructs the components it describes.
type Loader struct {
	ConfigPath string
	LogLevel   string    // overrides log_level when set
	LogOutput  io.Writer // defaults to stderr
	Console    bool      // human-readable logs instead of JSON
}

// Components holds everything a pipeline needs.
type Components struct {
	Config *Config
	Lookup embedding.Lookup
	Store  store.Store
	Logger zerolog.Logger
}

// Close releases the store.
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// Load reads the config file, then the embeddings file and the store.
// An empty db path gives an in-memory store.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg, err := Load(l.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if l.LogLevel != "" {
		cfg.LogLevel = l.LogLevel
	}
	level := logging.ParseLevel(cfg.LogLevel)
	comp := &Components{Config: cfg}
	if l.Console {
		comp.Logger = logging.Console(l.LogOutput, level)
	} else {
		comp.Logger = logging.New(l.LogOutput, level)
	}

	if cfg.Embeddings == "" {
		return nil, fmt.Errorf("embeddings path is required: %w", internalerr.ErrInvalidConfig)
	}
	table, err := embedding.LoadTextFile(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	if table.Dim() != cfg.Dim {
		return nil, fmt.Errorf("embeddings %s have dim %d, config says %d: %w",
			cfg.Embeddings, table.Dim(), cfg.Dim, internalerr.ErrInvalidConfig)
	}
	comp.Lookup = table.Freeze()
	comp.Logger.Info().Int("words", table.Len()).Int("dim", table.Dim()).Msg("embeddings loaded")

	if cfg.DB != "" {
		st, err := sqlite.OpenSQLite(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		comp.Store = st
	} else {
		comp.Store = memstore.New()
	}
	return comp, nil
}
