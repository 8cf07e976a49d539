package staking

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// accountLocks hands out one RWMutex per account. Entries are never removed,
// mirroring account records which are never deleted either.
type accountLocks struct {
	mu    sync.Mutex
	locks map[common.Address]*sync.RWMutex
}

func (l *accountLocks) get(addr common.Address) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[common.Address]*sync.RWMutex)
	}
	m, ok := l.locks[addr]
	if !ok {
		m = new(sync.RWMutex)
		l.locks[addr] = m
	}
	return m
}

func (l *accountLocks) lock(addr common.Address) func() {
	m := l.get(addr)
	m.Lock()
	return m.Unlock
}

func (l *accountLocks) rlock(addr common.Address) func() {
	m := l.get(addr)
	m.RLock()
	return m.RUnlock
}
