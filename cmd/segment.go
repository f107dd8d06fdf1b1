package cmd

import (
	"context"
	"fmt"
	"os"

	"javasegment/internal/application/common/slogger"
	"javasegment/internal/application/dto"
	"javasegment/internal/port/inbound"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type inputOptions struct {
	files   []string
	dir     string
	include []string
	exclude []string
	format  string
	out     string
}

func (o *inputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&o.files, "file", "f", nil, "Java source file to process (repeatable)")
	cmd.Flags().StringVarP(&o.dir, "dir", "d", "", "Directory to scan for Java sources")
	cmd.Flags().StringSliceVar(&o.include, "include", nil, "Glob of files to include under --dir (default **/*.java)")
	cmd.Flags().StringSliceVar(&o.exclude, "exclude", nil, "Glob of files to exclude under --dir")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Write output to this file instead of stdout")
}

func newSegmentCmd() *cobra.Command {
	opts := &inputOptions{}

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Split Java files into method segments",
		Long: `Split one or more Java source files into per-method segments.

Each file yields its segments in source order with labels, line ranges and the
method text. Files are processed in parallel up to segmenter.concurrency.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSegment(cmd, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", formatJSON, "Output format (json, yaml)")
	return cmd
}

func runSegment(cmd *cobra.Command, opts *inputOptions) error {
	ctx := cmd.Context()

	inputs, err := resolveInputs(opts.files, opts.dir, opts.include, opts.exclude)
	if err != nil {
		return err
	}

	tel, err := setupTelemetry(ctx)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.WithoutCancel(ctx))

	factory := NewServiceFactory(GetConfig())
	segmenter, err := factory.SegmentationService()
	if err != nil {
		return err
	}

	results, err := segmentFiles(ctx, segmenter, inputs, GetConfig().Segmenter.Concurrency)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(opts.out, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := writeOutput(w, opts.format, results); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// segmentFiles segments every input with at most limit files in flight. Results
// keep the input order.
func segmentFiles(ctx context.Context, segmenter inbound.SegmentationService, inputs []string, limit int) ([]dto.SegmentResponse, error) {
	results := make([]dto.SegmentResponse, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for i, path := range inputs {
		i, path := i, path
		g.Go(func() error {
			source, err := os.ReadFile(path) //nolint:gosec // paths come from the operator
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			response, err := segmenter.Segment(gctx, dto.SegmentRequest{Source: string(source), Path: path})
			if err != nil {
				return fmt.Errorf("failed to segment %s: %w", path, err)
			}
			results[i] = *response
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += r.Total
	}
	slogger.Info(ctx, "Segmentation finished", slogger.Fields{"files": len(results), "segments": total})
	return results, nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newSegmentCmd())
}
