package main

import (
	"fmt"
	"iter"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagpipe/pkg/tagpipe"
	"github.com/cognicore/tagpipe/pkg/tagpipe/batch"
	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
)

func newBatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Print the batch schedule",
		Long: "Print the batch schedule with sizes and padded lengths. When the config " +
			"holds exactly one POS and one NER corpus their batches are mixed.",
		Args: cobra.NoArgs,
		RunE: batchesHandler,
	}
	cmd.Flags().Int("batch-size", 0, "Override batch_size")
	cmd.Flags().Int("max-length", -1, "Override max_length")
	return cmd
}

func batchesHandler(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.comp.Config
	if cmd.Flags().Changed("batch-size") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch-size"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("max-length") {
		if cfg.MaxLength, err = cmd.Flags().GetInt("max-length"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	specs, err := s.specs("")
	if err != nil {
		return err
	}
	corpora, err := s.pipe.LoadCorpora(cmd.Context(), specs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report := func(seq iter.Seq[batch.Batch]) int {
		n := 0
		for b := range seq {
			p := b.Pad(cfg.PadValue, cfg.MaxLength)
			width := 0
			if len(p.Inputs) > 0 {
				width = len(p.Inputs[0])
			}
			fmt.Fprintf(out, "%d\t%s\tsize=%d\tpadded=%d\n", n, b.Source, b.Len(), width)
			n++
		}
		return n
	}

	if pos, ner, ok := mixPair(corpora); ok {
		mixer, err := s.pipe.Mixed(pos, ner, cfg.BatchSize)
		if err != nil {
			return err
		}
		n := report(mixer.All())
		fmt.Fprintf(out, "%d batches, stopped when %s ran out\n", n, mixer.Exhausted())
		return nil
	}

	for _, c := range corpora {
		mb, err := s.pipe.Batches(c, cfg.BatchSize)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s:\n", c.Name)
		n := report(drain(mb, batch.Source(c.Format)))
		fmt.Fprintf(out, "%d batches\n", n)
	}
	return nil
}

// mixPair returns the POS and NER corpus when the set is exactly one of each.
func mixPair(corpora []*tagpipe.Corpus) (pos, ner *tagpipe.Corpus, ok bool) {
	if len(corpora) != 2 {
		return nil, nil, false
	}
	for _, c := range corpora {
		switch c.Format {
		case corpus.FormatPOS:
			pos = c
		case corpus.FormatNER:
			ner = c
		}
	}
	return pos, ner, pos != nil && ner != nil
}

func drain(mb *batch.Minibatcher, source batch.Source) iter.Seq[batch.Batch] {
	return func(yield func(batch.Batch) bool) {
		defer mb.Stop()
		for {
			b, ok := mb.Next()
			if !ok {
				return
			}
			b.Source = source
			if !yield(b) {
				return
			}
		}
	}
}
