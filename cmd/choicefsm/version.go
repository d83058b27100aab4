package main

import (
	"fmt"

	"github.com/aretw0/choicefsm"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of choicefsm",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "choicefsm version %s\n", choicefsm.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
