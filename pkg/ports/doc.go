/*
Package ports defines the driven ports of choicefsm hosts.

# Key Interfaces

  - StateStore: persists and loads session snapshots.
  - DistributedLocker: serializes access to one session across processes.

RunStateStoreContract is a shared test suite every StateStore adapter runs.
*/
package ports
