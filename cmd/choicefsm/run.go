package main

import (
	"os"
	"os/signal"

	"github.com/aretw0/choicefsm"
	redisAdapter "github.com/aretw0/choicefsm/pkg/adapters/redis"
	"github.com/aretw0/choicefsm/pkg/runner"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Drive a machine interactively",
	Long: `Reads one event per line from stdin and feeds it to the machine.

Lines starting with + or - set or clear a decision flag (see flag:<name> and
not:<name> decisions), ? lists the flags, quit or exit stops.

With --redis and --session the run is durable: it resumes where the session
stopped and is saved after every handled event.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, m, reg, err := loadMachine(args[0], choicefsm.WithFiringMode(choicefsm.FiringQueued))
		if err != nil {
			return err
		}
		if from, _ := cmd.Flags().GetString("from"); from != "" {
			if err := m.Restore(from); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		interactive := false
		if f, ok := cmd.InOrStdin().(*os.File); ok {
			interactive = term.IsTerminal(int(f.Fd()))
		}

		opts := []runner.Option{
			runner.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
			runner.WithInteractive(interactive),
			runner.WithLogger(logger),
			runner.WithFlags(reg.Flags()),
		}
		if redisAddr, _ := cmd.Flags().GetString("redis"); redisAddr != "" {
			sessionID, _ := cmd.Flags().GetString("session")
			client := backend.NewClient(&backend.Options{Addr: redisAddr})
			defer client.Close()
			store := redisAdapter.NewFromClient[string](client, redisAdapter.WithPrefix(redisAdapter.DefaultPrefix+def.Name+":"))
			opts = append(opts, runner.WithStore(store, sessionID))
		}

		return runner.NewRunner(opts...).Run(ctx, def.Name, m)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("from", "", "Start from this state instead of the initial one")
	runCmd.Flags().String("redis", "", "Redis address to persist the run")
	runCmd.Flags().String("session", "", "Session id used with --redis")
}
