/*
Package session drives many independent cursors over one choicefsm machine.

Each session is a domain.Snapshot persisted in a ports.StateStore. Dispatch
loads the snapshot, steps the shared machine from the stored state and saves
the result, holding a per-session lock (and optionally a distributed one) for
the whole round trip.
*/
package session
