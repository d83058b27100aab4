package session

// ActiveLocks exposes the lock table size to tests.
func (m *Manager[S, C, E]) ActiveLocks() int {
	return m.activeLocks()
}
