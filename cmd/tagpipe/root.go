package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagpipe/pkg/tagpipe"
	"github.com/cognicore/tagpipe/pkg/tagpipe/config"
	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tagpipe",
		Short: "Sequence-labeling data pipeline",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}
	root.PersistentFlags().String("config", "tagpipe.yaml", "Path to the config file")
	root.PersistentFlags().String("log-level", "", "Override the configured log level")

	root.AddCommand(
		newParseCmd(),
		newEmbedCmd(),
		newBatchesCmd(),
		newCorporaCmd(),
		newChunksCmd(),
		newTokenizeCmd(),
	)
	return root
}

// session is a loaded config with its pipeline.
type session struct {
	comp *config.Components
	pipe *tagpipe.Pipeline
}

func (s *session) Close() error { return s.pipe.Close() }

func openSession(cmd *cobra.Command) (*session, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	loader := config.Loader{
		ConfigPath: path,
		LogLevel:   level,
		LogOutput:  cmd.ErrOrStderr(),
		Console:    true,
	}
	comp, err := loader.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	pipe, err := tagpipe.New(tagpipe.Options{
		Lookup:  comp.Lookup,
		Store:   comp.Store,
		Logger:  comp.Logger,
		Workers: comp.Config.Workers,
	})
	if err != nil {
		comp.Close()
		return nil, err
	}
	return &session{comp: comp, pipe: pipe}, nil
}

// specs returns the configured corpora, or only the named one.
func (s *session) specs(name string) ([]tagpipe.CorpusSpec, error) {
	var out []tagpipe.CorpusSpec
	for _, c := range s.comp.Config.Corpora {
		if name != "" && c.Name != name {
			continue
		}
		format, err := corpus.ParseFormat(c.Format)
		if err != nil {
			return nil, err
		}
		out = append(out, tagpipe.CorpusSpec{Name: c.Name, Path: c.Path, Format: format})
	}
	if len(out) == 0 {
		if name != "" {
			return nil, fmt.Errorf("no corpus named %q in config", name)
		}
		return nil, fmt.Errorf("no corpora configured")
	}
	return out, nil
}
