package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mastercactapus/gcam/logging"
)

var log = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "gcam",
	Short: "gcam turns machining jobs into G-code and toolpaths",
	Long: `gcam runs YAML job files against a machine model, emitting a modal G-code
program and the discretized toolpath of every move.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var cfg logging.Config
		cfg.Level, _ = cmd.Flags().GetString("log-level")
		cfg.Color, _ = cmd.Flags().GetBool("log-color")
		cfg.File, _ = cmd.Flags().GetString("log-file")
		cfg.MaxSize, _ = cmd.Flags().GetInt("log-max-size")
		cfg.MaxBackups = 3
		cfg.MaxAge = 28

		l, err := logging.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error).")
	rootCmd.PersistentFlags().Bool("log-color", false, "Colorize console log levels.")
	rootCmd.PersistentFlags().String("log-file", "", "Also log to this file, rotated by size.")
	rootCmd.PersistentFlags().Int("log-max-size", 10, "Log file size in megabytes before rotation.")
}
