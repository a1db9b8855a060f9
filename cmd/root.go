package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/benn-herrera/cffigen/logging"
)

var (
	verbose   bool
	quiet     bool
	logFormat string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "cffigen",
	Short: "Safe wrapper generator for C-ABI foreign functions",
	Long: "cffigen reads a YAML definition of the foreign functions exported by a C-ABI library " +
		"and generates safe wrappers that marshal arguments and turn failure sentinels into errors.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", env.Str("CFFIGEN_LOG_FORMAT", "text"), "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", env.Str("CFFIGEN_LOG_LEVEL"), "Log level (debug, info, warn, error)")
}

// setupLogging installs the slog default before any command runs.
// --verbose lowers the level to debug unless a level is given.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	if verbose && logLevel == "" {
		level = slog.LevelDebug
	}
	return logging.Init(logging.Config{
		Level:  level,
		Format: logFormat,
		Output: os.Stderr,
	})
}

func Execute() error {
	return rootCmd.Execute()
}
