package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newReportsCmd(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect saved compliance reports",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(global)
			if err != nil {
				return err
			}
			defer s.Close()

			reports, err := s.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tDRAWING\tSCORE\tPASSED\tCREATED\n")
			for _, r := range reports {
				fmt.Fprintf(tw, "%s\t%s\t%.4f\t%t\t%s\n", r.ID, r.Drawing, r.WeightedScore, r.OverallPassed, r.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum number of reports")

	get := &cobra.Command{
		Use:   "get <report-id>",
		Short: "Print a saved report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(global)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}
