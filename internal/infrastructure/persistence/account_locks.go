package persistence

import (
	"sync"

	"github.com/google/uuid"
)

// AccountLocks serializes posting per account with one mutex per account
// ID. Postings on different accounts proceed in parallel; two postings
// on the same account queue behind each other, which keeps the
// read-sum-write balance refresh race free within a single process.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

// NewAccountLocks creates a new AccountLocks
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[uuid.UUID]*accountLock)}
}

// WithAccount runs fn while holding the lock for the given account. Lock
// entries are reference counted and removed when the last holder leaves,
// so the map does not grow with the number of accounts ever touched.
func (l *AccountLocks) WithAccount(accountID uuid.UUID, fn func() error) error {
	lock := l.acquire(accountID)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		l.release(accountID, lock)
	}()
	return fn()
}

func (l *AccountLocks) acquire(accountID uuid.UUID) *accountLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[accountID]
	if !ok {
		lock = &accountLock{}
		l.locks[accountID] = lock
	}
	lock.refs++
	return lock
}

func (l *AccountLocks) release(accountID uuid.UUID, lock *accountLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, accountID)
	}
}

// Size returns the number of accounts currently contended
func (l *AccountLocks) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
