package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-as1100/internal/application"
)

func newRubricCmd(global *globalFlags) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Check and summarise the active rubric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if dump {
				_, err := out.Write(application.DefaultRubric())
				return err
			}

			registry, err := loadRegistry(global)
			if err != nil {
				return err
			}
			s := registry.Settings()
			fmt.Fprintf(out, "rubric %s %s\n", s.Name, s.Version)
			fmt.Fprintf(out, "fingerprint %s\n", s.Fingerprint)
			fmt.Fprintf(out, "global threshold %.2f, extraction threshold %.2f\n\n", s.GlobalThreshold, s.ExtractionThreshold)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "VALIDATOR\tTYPE\tSTANDARD\tWEIGHT\tPASS\tAUTOMATED\n")
			for _, e := range registry.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%t\n", e.Name, e.Type, e.Standard, e.Weight, e.PassThreshold, e.Automated)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Print the built-in rubric YAML")
	return cmd
}
