// Package main implements the command-line interface for chartsync, a tool
// that discovers container image references in Helm charts and replicates
// them into an internal mirror registry.
//
// The CLI commands are:
//   - extract: Render charts and list located images with their mirror paths
//   - mirror:  Pull, retag, and push every unique located image
//
// Destination settings default from CHARTSYNC_* environment variables and
// can be overridden per invocation with flags.
package main

import (
	"bytes"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chartsync/chartsync/pkg/log"
)

// Configuration defaults; overridable via CHARTSYNC_* env vars or flags.
const (
	defaultRegistry = "registry.internal.company.com"
	defaultPrefix   = "dockerhub"
)

// Global flag variables.
var (
	debugEnabled bool
	logLevel     string
)

// AppFs defines the filesystem interface to use; tests swap in a MemMapFs.
var AppFs = afero.NewOsFs()

// SetFs replaces the current filesystem and returns a restore function.
// This is primarily used for testing.
func SetFs(newFs afero.Fs) func() {
	oldFs := AppFs
	AppFs = newFs
	return func() { AppFs = oldFs }
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chartsync",
	Short: "Mirror container images referenced by Helm charts",
	Long: `chartsync renders Helm charts, heuristically locates the container image
references embedded in their manifests and values, and replicates each
unique image into an internal mirror registry.

Use "extract" to list located images with their computed mirror paths, and
"mirror" to execute the pull/retag/push replication under a bounded worker
pool.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level := log.LevelInfo
		if debugEnabled {
			level = log.LevelDebug
		} else if logLevel != "" {
			parsed, err := log.ParseLevel(logLevel)
			if err != nil {
				log.Warn("invalid log level, using default", "value", logLevel, "default", level.String())
			} else {
				level = parsed
			}
		}
		log.SetLevel(level)
		return nil
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("CHARTSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("registry", defaultRegistry)
	viper.SetDefault("prefix", defaultPrefix)
	viper.SetDefault("dry-run", false)
	viper.SetDefault("parallel", 4)
	viper.SetDefault("output-format", "text")

	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "set log level (debug, info, warn, error)")

	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newMirrorCmd())
}

// getRootCmd returns the root command; useful for testing.
func getRootCmd() *cobra.Command {
	return rootCmd
}

// executeCommand is a helper for testing cobra commands.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}
