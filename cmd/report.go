package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/port/inbound"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type reportOptions struct {
	inputOptions
	projectID   string
	projectName string
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Collect a per-method report for Java files",
		Long: `Send every method of one or more Java files to the report engine and print
the combined report of each file.

Methods of one file are reported one at a time in source order; a failed method
is reported inline and the rest of the file continues. Files run in parallel up
to segmenter.concurrency. Requires report.base_url.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", formatText, "Output format (text, json, yaml)")
	cmd.Flags().StringVar(&opts.projectID, "project-id", "", "Project ID sent with every report request")
	cmd.Flags().StringVar(&opts.projectName, "project-name", "", "Project name sent with every report request")
	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOptions) error {
	ctx := cmd.Context()
	cfg := GetConfig()
	if cfg.Report.BaseURL == "" {
		return errors.New("report.base_url is required (set JAVASEG_REPORT_BASE_URL)")
	}

	inputs, err := resolveInputs(opts.files, opts.dir, opts.include, opts.exclude)
	if err != nil {
		return err
	}

	tel, err := setupTelemetry(ctx)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.WithoutCancel(ctx))

	factory := NewServiceFactory(cfg)
	defer factory.Close()

	reports, err := factory.ReportService(ctx)
	if err != nil {
		return err
	}

	results, err := reportFiles(ctx, reports, inputs, opts.projectID, opts.projectName, cfg.Segmenter.Concurrency)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(opts.out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if opts.format == formatText {
		err = writeCombinedReports(w, results)
	} else {
		err = writeOutput(w, opts.format, results)
	}
	if err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// reportFiles reports every input with at most limit files in flight. Results
// keep the input order.
func reportFiles(
	ctx context.Context,
	reports inbound.ReportService,
	inputs []string,
	projectID, projectName string,
	limit int,
) ([]*dto.ReportResponse, error) {
	results := make([]*dto.ReportResponse, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			source, err := os.ReadFile(path) //nolint:gosec // paths come from the operator
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			response, err := reports.GenerateReport(gctx, dto.ReportRequest{
				ProjectID:   projectID,
				ProjectName: projectName,
				Path:        path,
				Source:      string(source),
			})
			if err != nil {
				return fmt.Errorf("failed to report %s: %w", path, err)
			}
			results[i] = response
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		failed += r.Failed
	}
	slogger.Info(ctx, "Reports finished", slogger.Fields{"files": len(results), "failed_segments": failed})
	return results, nil
}

// writeCombinedReports prints each file's combined report under its path.
func writeCombinedReports(w io.Writer, results []*dto.ReportResponse) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "=== %s (%d methods, %d failed)\n%s\n", r.Path, r.Total, r.Failed, r.CombinedReport); err != nil {
			return err
		}
	}
	return nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newReportCmd())
}
