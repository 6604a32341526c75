package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	rubric  string
	logJSON bool
	db      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "as1100check",
		Short: "AS 1100 drawing compliance checks",
		Long: "as1100check scores engineering drawings against a weighted AS 1100\n" +
			"rubric and decides whether extracted drawing parameters can be trusted.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.rubric, "rubric", "", "Rubric YAML file (default: built-in AS 1100 rubric)")
	pf.BoolVar(&flags.logJSON, "log-json", false, "Write logs to stderr as JSON lines")
	pf.StringVar(&flags.db, "db", "", "SQLite report database")

	root.AddCommand(
		newValidateCmd(flags),
		newGateCmd(flags),
		newRubricCmd(flags),
		newReportsCmd(flags),
	)
	return root
}
