package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chartsync/chartsync/pkg/exitcodes"
	"github.com/chartsync/chartsync/pkg/log"
	"github.com/chartsync/chartsync/pkg/mirror"
	"github.com/chartsync/chartsync/pkg/pipeline"
	"github.com/chartsync/chartsync/pkg/strategy"
)

// mirrorExecutor is the executor surface the scheduler consumes; tests
// swap in a stub through newExecutor.
type mirrorExecutor interface {
	Execute(ctx context.Context, rec mirror.Record) mirror.Result
}

// newExecutor builds the mirror executor; tests replace it with a stub.
var newExecutor = func(dryRun bool) mirrorExecutor {
	return mirror.NewExecutor(dryRun, "")
}

func newMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror CHART...",
		Short: "Replicate every unique located image into the mirror registry",
		Long: `Render each chart, deduplicate the located images across the batch, and
pull, retag, and push each unique image to its mirror path under a bounded
worker pool. The exit status is non-zero if any image fails to mirror.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMirror,
	}

	cmd.Flags().String("registry", viper.GetString("registry"), "mirror registry host")
	cmd.Flags().String("prefix", viper.GetString("prefix"), "mirror path prefix")
	cmd.Flags().Bool("dry-run", viper.GetBool("dry-run"), "discover and plan only, no pull/tag/push")
	cmd.Flags().Int("parallel", viper.GetInt("parallel"), "maximum concurrent mirror tasks")
	cmd.Flags().String("output-format", viper.GetString("output-format"), "summary format (json or text)")
	return cmd
}

func runMirror(cmd *cobra.Command, args []string) error {
	registry, _ := cmd.Flags().GetString("registry")
	prefix, _ := cmd.Flags().GetString("prefix")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	parallel, _ := cmd.Flags().GetInt("parallel")
	format, _ := cmd.Flags().GetString("output-format")

	if err := checkPrerequisites(registry, parallel); err != nil {
		return err
	}

	cfg := pipeline.Config{
		Registry: registry,
		Prefix:   prefix,
		Strategy: strategy.NewRepositoryStrategy(),
	}
	records, err := pipeline.Discover(cmd.Context(), AppFs, newRenderer(), args, cfg)
	if err != nil {
		return err
	}
	unique := pipeline.Dedupe(records)
	log.Info("scheduling mirror tasks", "located", len(records), "unique", len(unique), "parallel", parallel, "dryRun", dryRun)

	report := mirror.Run(cmd.Context(), newExecutor(dryRun), unique, parallel)

	out := cmd.OutOrStdout()
	if format == pipeline.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return &exitcodes.ExitCodeError{Code: exitcodes.ExitIOError, Err: err}
		}
	} else {
		fmt.Fprintf(out, "mirrored %d images: %d succeeded, %d failed, %d skipped (dry-run)\n",
			len(unique), report.Succeeded, report.Failed, report.Skipped)
	}

	if report.Failed > 0 {
		return &exitcodes.ExitCodeError{
			Code: exitcodes.ExitMirrorFailed,
			Err:  fmt.Errorf("%d of %d images failed to mirror", report.Failed, len(unique)),
		}
	}
	return nil
}
