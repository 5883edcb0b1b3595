package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/logkeeper/pkg/config"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the resolved log directory",
	Long: `Print the directory logs are written to, resolved in order from
development mode, logging.directory, the logging.directory_env variable
and the built-in default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.LogDir())
		return err
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
