package services

import "sync"

// LedgerLocks serializes membership-affecting mutations per ledger. The
// single-OWNER and one-membership-per-user invariants are checked before
// writing, so every check-then-write sequence for one ledger must run under
// that ledger's lock.
type LedgerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedgerLocks() *LedgerLocks {
	return &LedgerLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the ledger and returns the unlock function.
func (l *LedgerLocks) Lock(ledgerID string) func() {
	l.mu.Lock()
	m, ok := l.locks[ledgerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ledgerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the lock entry of a deleted ledger.
func (l *LedgerLocks) Forget(ledgerID string) {
	l.mu.Lock()
	delete(l.locks, ledgerID)
	l.mu.Unlock()
}
