package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/choicefsm/internal/logging"
	"github.com/spf13/cobra"
)

// logger is configured from the persistent flags before any command runs.
var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "choicefsm",
	Short: "choicefsm runs hierarchical state machines with choicepoints",
	Long: `choicefsm loads a machine definition (YAML or JSON), checks it, draws it
and drives it interactively or over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelName, _ := cmd.Flags().GetString("log-level")
		formatName, _ := cmd.Flags().GetString("log-format")

		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}
		format, err := logging.ParseFormat(formatName)
		if err != nil {
			return err
		}
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), level, format)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
}
