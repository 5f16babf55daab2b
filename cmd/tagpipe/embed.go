package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagpipe/pkg/tagpipe/embedding"
)

func newEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Merge corpus vocabularies into one embeddings matrix",
		Args:  cobra.NoArgs,
		RunE:  embedHandler,
	}
}

func embedHandler(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	specs, err := s.specs("")
	if err != nil {
		return err
	}
	corpora, err := s.pipe.LoadCorpora(cmd.Context(), specs)
	if err != nil {
		return err
	}
	idx, m, err := s.pipe.Embeddings(corpora...)
	if err != nil {
		return err
	}

	dir := s.comp.Config.Outputs.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := idx.SaveJSON(filepath.Join(dir, "vocab.json")); err != nil {
		return err
	}
	if err := embedding.SaveMatrixFile(filepath.Join(dir, "embeddings.bin"), m); err != nil {
		return err
	}

	rows, cols := m.Dims()
	fmt.Fprintf(cmd.OutOrStdout(), "embeddings %dx%d written to %s\n", rows, cols, dir)
	return nil
}
