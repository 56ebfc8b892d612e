package mint

import (
	"context"
	"sync"

	"gamevault.dev/mint-go/pkg/types"
)

type accountLock struct {
	sem     chan struct{}
	waiters int // Including the holder.
}

// accountLocks serializes mint requests per account. Entries exist only
// while some request holds or waits for the lock.
type accountLocks struct {
	// Protects the locks mapping.
	sync.Mutex
	locks map[types.AccountID]*accountLock
}

func (l *accountLocks) ref(id types.AccountID) *accountLock {
	l.Lock()
	defer l.Unlock()
	if l.locks == nil {
		l.locks = make(map[types.AccountID]*accountLock)
	}
	lock, ok := l.locks[id]
	if !ok {
		lock = &accountLock{sem: make(chan struct{}, 1)}
		l.locks[id] = lock
	}
	lock.waiters++
	return lock
}

func (l *accountLocks) unref(id types.AccountID, lock *accountLock) {
	l.Lock()
	defer l.Unlock()
	lock.waiters--
	if lock.waiters == 0 {
		delete(l.locks, id)
	}
}

// acquire blocks until the lock for id is held, or ctx is done. On
// success, the returned function releases the lock.
func (l *accountLocks) acquire(ctx context.Context, id types.AccountID) (func(), error) {
	lock := l.ref(id)
	select {
	case lock.sem <- struct{}{}:
		return func() {
			<-lock.sem
			l.unref(id, lock)
		}, nil
	case <-ctx.Done():
		l.unref(id, lock)
		return nil, ctx.Err()
	}
}

func (l *accountLocks) size() int {
	l.Lock()
	defer l.Unlock()
	return len(l.locks)
}
