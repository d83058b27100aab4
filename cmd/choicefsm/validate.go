package main

import (
	"fmt"

	"github.com/aretw0/choicefsm/pkg/adapters/definition"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/registry"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a machine definition for consistency",
	Long: `Compiles the definition and reports every problem at once: unknown ids,
unknown callbacks, states without outgoing transitions, unreachable or
incomplete choicepoints.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		def, err := definition.LoadFile(args[0])
		if err != nil {
			return err
		}
		if _, err := definition.Compile(def, registry.NewRegistry()); err != nil {
			if errs := domain.Errors(err); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(out, "  ✗ %v\n", e)
				}
				return fmt.Errorf("validation failed: %d problem(s)", len(errs))
			}
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(out, "Machine %q is valid! ✅\n", def.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
