package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-as1100/internal/application"
	"github.com/ahrav/go-as1100/internal/domain"
)

type gateFlags struct {
	confidence float64
	file       string
}

func newGateCmd(global *globalFlags) *cobra.Command {
	flags := &gateFlags{}

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Decide whether extracted drawing parameters can be used",
		Long: "gate applies the rubric's extraction threshold to an extraction\n" +
			"result given with --file, or to a bare --confidence value.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGate(cmd, global, flags)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&flags.confidence, "confidence", 0, "Extractor confidence in [0, 1]")
	f.StringVar(&flags.file, "file", "", "Extraction result JSON or YAML file")
	cmd.MarkFlagsOneRequired("confidence", "file")
	cmd.MarkFlagsMutuallyExclusive("confidence", "file")
	return cmd
}

func runGate(cmd *cobra.Command, global *globalFlags, flags *gateFlags) error {
	logger, err := newLogger(cmd.ErrOrStderr(), global)
	if err != nil {
		return err
	}
	defer logger.Close()

	registry, err := loadRegistry(global)
	if err != nil {
		return err
	}
	engine, err := application.NewEngine(registry, application.WithLogger(logger))
	if err != nil {
		return err
	}

	extraction := domain.ExtractionResult{Confidence: flags.confidence}
	if flags.file != "" {
		if err := decodeFile(flags.file, cmd.InOrStdin(), &extraction); err != nil {
			return fmt.Errorf("load extraction result: %w", err)
		}
	}
	// The gate itself accepts any value; out-of-range input is refused here.
	if c := extraction.Confidence; math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("%w: confidence %g outside [0, 1]", domain.ErrInvalidScore, c)
	}

	return writeJSON(cmd.OutOrStdout(), engine.Decide(cmd.Context(), extraction))
}
