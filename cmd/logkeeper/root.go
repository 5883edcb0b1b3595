package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/logkeeper/pkg/cli"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "logkeeper",
	Short: "logkeeper - log pipeline and retention runner",
	Long: `logkeeper writes a service's logs to the console and a daily rotating
file, and deletes files older than the retention window on a cron schedule.

Pass "dev" as the first argument to write logs under the system temp directory.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with args and returns the exit code.
func Execute(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and LOGKEEPER_* env when empty)")
}
