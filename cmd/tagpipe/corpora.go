package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCorporaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpora",
		Short: "List or delete corpora saved in the store",
		Args:  cobra.NoArgs,
		RunE:  corporaHandler,
	}
	cmd.Flags().String("delete", "", "Delete the corpus with this id")
	return cmd
}

func corporaHandler(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetString("delete")
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	st := s.comp.Store
	out := cmd.OutOrStdout()
	if id != "" {
		if err := st.DeleteCorpus(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", id)
		return nil
	}

	list, err := st.ListCorpora(cmd.Context())
	if err != nil {
		return err
	}
	for _, c := range list {
		fmt.Fprintf(out, "%s\t%s\t%s\tsentences=%d\twords=%d\ttags=%d\t%s\n",
			c.ID, c.Name, c.Format, c.Sentences, c.Words, c.Tags, c.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
