package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse configured corpora and write their indices",
		Args:  cobra.NoArgs,
		RunE:  parseHandler,
	}
	cmd.Flags().String("corpus", "", "Only parse the named corpus")
	return cmd
}

func parseHandler(cmd *cobra.Command, args []string) error {
	name, err := cmd.Flags().GetString("corpus")
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	specs, err := s.specs(name)
	if err != nil {
		return err
	}
	corpora, err := s.pipe.LoadCorpora(cmd.Context(), specs)
	if err != nil {
		return err
	}

	dir := s.comp.Config.Outputs.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range corpora {
		if err := c.Words.SaveJSON(filepath.Join(dir, c.Name+".words.json")); err != nil {
			return err
		}
		if err := c.Tags.SaveJSON(filepath.Join(dir, c.Name+".tags.json")); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\tsentences=%d\twords=%d\ttags=%d\tfiltered=%d\tid=%s\n",
			c.Name, c.Format, len(c.Sentences), c.Words.Len(), c.Tags.Len(), c.Filtered, c.ID)
		if c.DroppedTrailing > 0 {
			fmt.Fprintf(out, "%s\ttrailing sentence of %d words not emitted\n", c.Name, c.DroppedTrailing)
		}
	}
	return nil
}
