package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/tagpipe/pkg/tagpipe/chunk"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

func newChunksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunks TAG_ID...",
		Short: "Decode a tag id sequence into chunks",
		Args:  cobra.MinimumNArgs(1),
		RunE:  chunksHandler,
	}
	cmd.Flags().String("tags", "", "Tag index written by parse (<name>.tags.json)")
	cmd.MarkFlagRequired("tags")
	return cmd
}

func chunksHandler(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("tags")
	if err != nil {
		return err
	}
	tags, err := vocab.LoadJSON(path)
	if err != nil {
		return err
	}

	seq := make([]int, len(args))
	for i, a := range args {
		if seq[i], err = strconv.Atoi(a); err != nil {
			return fmt.Errorf("tag id %q: %w", a, err)
		}
	}

	chunks, err := chunk.Chunks(seq, tags)
	if err != nil {
		return err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.String()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", strings.Join(parts, ", "))
	return nil
}
