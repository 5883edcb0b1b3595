package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/logkeeper/pkg/cli"
	"mercator-hq/logkeeper/pkg/config"
	"mercator-hq/logkeeper/pkg/retention"
)

var (
	cleanDir    string
	cleanDays   int
	cleanOutput string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete aged log files once and exit",
	Long: `Delete every entry of the retention directory whose modification time is
more than --days whole days ago. The run stops at the first failure.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVar(&cleanDir, "dir", "", "directory to clean (default: retention.directory or the log directory)")
	cleanCmd.Flags().IntVar(&cleanDays, "days", -1, "maximum age in whole days (default: retention.max_age_days)")
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "text", "output format (text, json)")
	rootCmd.AddCommand(cleanCmd)
}

type cleanReport struct {
	Dir        string   `json:"dir"`
	MaxAgeDays int      `json:"max_age_days"`
	Scanned    int      `json:"scanned"`
	Deleted    []string `json:"deleted"`
}

func (r cleanReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scanned %d entries in %s, deleted %d older than %d days",
		r.Scanned, r.Dir, len(r.Deleted), r.MaxAgeDays)
	for _, p := range r.Deleted {
		fmt.Fprintf(&sb, "\n  %s", p)
	}
	return sb.String()
}

func runClean(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(cleanOutput)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	policy := cfg.RetentionPolicy()
	if cleanDir != "" {
		policy.Dir = cleanDir
	}
	if cmd.Flags().Changed("days") {
		policy.MaxAgeDays = cleanDays
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel()}))
	res, err := retention.NewCleaner(retention.WithLogger(logger)).Clean(policy)
	if err != nil {
		return cli.NewCommandError("clean", err)
	}

	report := cleanReport{
		Dir:        policy.Dir,
		MaxAgeDays: policy.MaxAgeDays,
		Scanned:    res.Scanned,
		Deleted:    res.Deleted,
	}
	if report.Deleted == nil {
		report.Deleted = []string{}
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)
}
