package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/credlens/credlens/internal/classify"
)

func vocabularyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vocabulary",
		Short: "List the classification vocabulary rules",
		Long: `List every classification rule with its category and regex, and the
vocabulary version the rules are pinned to. Useful for auditing exactly
which patterns a classification ran against.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Printf("Vocabulary version %d\n\n", classify.VocabularyVersion)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tNAME\tPATTERN")
			for _, rule := range classify.DefaultRules() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", rule.Category, rule.Name, rule.Regex)
			}
			return w.Flush()
		},
	}
}
