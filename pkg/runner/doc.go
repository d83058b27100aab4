/*
Package runner implements the line-oriented execution loop behind
`choicefsm run`.

It reads one event per line, sanitizes it, feeds it to the machine and prints
where the machine came to rest. With a StateStore the run is durable: the
session is restored on start and saved after every handled event.

# Usage

	r := runner.NewRunner(
		runner.WithFlags(reg.Flags()),
		runner.WithStore(store, "user-1"),
	)
	if err := r.Run(ctx, def.Name, m); err != nil {
		log.Fatal(err)
	}
*/
package runner
