package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
)

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize TEXT",
		Short: "Split raw text into tokens",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := corpus.SplitSentence(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(tokens, " "))
			return nil
		},
	}
}
