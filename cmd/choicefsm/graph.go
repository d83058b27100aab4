package main

import (
	"fmt"

	"github.com/aretw0/choicefsm/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the machine as a Mermaid diagram",
	Long:  `Compiles the definition and prints a Mermaid flowchart (graph TD) of its states and choicepoints.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, m, _, err := loadMachine(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if current, _ := cmd.Flags().GetString("current"); current != "" {
			if !m.HasState(current) {
				return fmt.Errorf("unknown state %q", current)
			}
			overlay = &graph.GraphOverlay{CurrentState: current}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(m.Inspect(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("current", "", "Highlight a state as the current one")
}
