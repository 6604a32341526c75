package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-as1100/infrastructure/middleware"
	"github.com/ahrav/go-as1100/internal/application"
	"github.com/ahrav/go-as1100/internal/domain"
)

type validateFlags struct {
	format  string
	strict  bool
	metrics bool
}

func newValidateCmd(global *globalFlags) *cobra.Command {
	flags := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate <drawing.json|drawing.yaml|->",
		Short: "Score a drawing against the compliance rubric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, global, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "json", "Output format: json or table")
	f.BoolVar(&flags.strict, "strict", false, "Exit with status 2 when the drawing is rejected")
	f.BoolVar(&flags.metrics, "metrics", false, "Write run metrics to stderr in Prometheus text format")
	return cmd
}

func runValidate(cmd *cobra.Command, global *globalFlags, flags *validateFlags, path string) error {
	if flags.format != "json" && flags.format != "table" {
		return fmt.Errorf("unknown format %q", flags.format)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), global)
	if err != nil {
		return err
	}
	defer logger.Close()

	registry, err := loadRegistry(global)
	if err != nil {
		return err
	}
	drawing, err := readDrawing(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := middleware.NewPrometheusMetrics(reg)
	if err != nil {
		return err
	}
	engine, err := application.NewEngine(registry,
		application.WithLogger(logger),
		application.WithMetrics(metrics),
		application.WithObserver(middleware.NewOTelRunObserver(nil)),
	)
	if err != nil {
		return err
	}

	report, err := engine.Run(cmd.Context(), drawing)
	if err != nil {
		return err
	}

	if global.db != "" {
		s, err := openStore(global)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Save(cmd.Context(), report); err != nil {
			return err
		}
		logger.Info("report saved", "report_id", report.ID, "db", global.db)
	}

	out := cmd.OutOrStdout()
	if flags.format == "table" {
		err = writeReportTable(out, report)
	} else {
		err = writeJSON(out, report)
	}
	if err != nil {
		return err
	}

	if flags.metrics {
		if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}

	if flags.strict && !report.OverallPassed {
		return fmt.Errorf("%w: weighted score %.4f below threshold %.4f", errRejected, report.WeightedScore, report.ThresholdUsed)
	}
	return nil
}

func writeReportTable(w io.Writer, report *domain.ComplianceReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "VALIDATOR\tSCORE\tTHRESHOLD\tWEIGHT\tSTATUS\n")
	for _, name := range report.Order {
		o := report.Validators[name]
		status := "FAIL"
		switch {
		case !o.Automated:
			status = "MANUAL"
		case o.Passed:
			status = "PASS"
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.2f\t%.2f\t%s\n", name, o.Score, o.PassThreshold, o.Weight, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	verdict := "REJECTED"
	if report.OverallPassed {
		verdict = "ACCEPTED"
	}
	fmt.Fprintf(w, "\nweighted score %.4f (threshold %.2f): %s\n", report.WeightedScore, report.ThresholdUsed, verdict)

	for _, o := range report.Outcomes() {
		for _, msg := range o.Errors {
			fmt.Fprintf(w, "  error: %s\n", msg)
		}
		for _, msg := range o.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", msg)
		}
	}
	return nil
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
