/*
Package domain contains the shared, non-generic model of the choicefsm engine.

The engine itself is generic over its state, choicepoint and event id types.
Everything that has to cross a package boundary without carrying those type
parameters (introspection output, observability events, errors, persisted
cursors) lives here.

# Key Entities

  - Kind: the closed set of graph components (State or Choicepoint).
  - Node / Edge: a read-only description of the graph, used for rendering.
  - LifecycleHooks: observer callbacks fired by the dispatcher.
  - Snapshot: the persisted cursor of one session.
*/
package domain
