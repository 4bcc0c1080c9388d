package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chartsync/chartsync/pkg/chart"
	"github.com/chartsync/chartsync/pkg/exitcodes"
	"github.com/chartsync/chartsync/pkg/pipeline"
	"github.com/chartsync/chartsync/pkg/strategy"
)

// newRenderer builds the chart renderer; tests replace it with a mock.
var newRenderer = func() chart.Renderer {
	return chart.NewHelmRenderer()
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract CHART...",
		Short: "List images located in charts with their mirror paths",
		Long: `Render each chart and emit one record per located image: the original
reference, its catalog mirror path, and the chart it was found in. Records
carry selected=false for downstream manual curation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().String("registry", viper.GetString("registry"), "mirror registry host")
	cmd.Flags().String("prefix", viper.GetString("prefix"), "mirror path prefix")
	cmd.Flags().String("output-format", viper.GetString("output-format"), "output format (json or text)")
	cmd.Flags().String("output-file", "", "write records to a file instead of stdout")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) (err error) {
	registry, _ := cmd.Flags().GetString("registry")
	prefix, _ := cmd.Flags().GetString("prefix")
	format, _ := cmd.Flags().GetString("output-format")
	outputFile, _ := cmd.Flags().GetString("output-file")

	if err := checkPrerequisites(registry, 1); err != nil {
		return err
	}
	if format != pipeline.FormatJSON && format != pipeline.FormatText {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitInputConfigurationError,
			Err:  fmt.Errorf("unknown output format %q (expected json or text)", format),
		}
	}

	cfg := pipeline.Config{
		Registry: registry,
		Prefix:   prefix,
		Strategy: strategy.NewCatalogStrategy(),
	}
	records, err := pipeline.Discover(cmd.Context(), AppFs, newRenderer(), args, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFile != "" {
		f, createErr := AppFs.Create(outputFile)
		if createErr != nil {
			return &exitcodes.ExitCodeError{
				Code: exitcodes.ExitIOError,
				Err:  fmt.Errorf("create output file: %w", createErr),
			}
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		out = f
	}

	if err := pipeline.WriteRecords(out, records, format); err != nil {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitIOError,
			Err:  fmt.Errorf("write records: %w", err),
		}
	}
	return nil
}

// checkPrerequisites enforces the startup-fatal configuration class: an
// empty registry host or a non-positive parallelism aborts before any
// chart work begins.
func checkPrerequisites(registry string, parallel int) error {
	if registry == "" {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitPrerequisiteMissing,
			Err:  fmt.Errorf("mirror registry host is empty"),
		}
	}
	if parallel < 1 {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitPrerequisiteMissing,
			Err:  fmt.Errorf("parallelism must be at least 1, got %d", parallel),
		}
	}
	return nil
}
