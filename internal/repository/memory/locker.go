package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

// refLock is a one-slot semaphore so waiters can give up on ctx.
type refLock struct {
	slot chan struct{}
	refs int
}

// NewEmployeeLocker returns a per-employee lock. A caller waiting for the lock
// returns ctx.Err() when ctx ends. Writes made by fn are not rolled back when fn fails.
func NewEmployeeLocker() attendance.Locker {
	return &keyedLocker{locks: make(map[string]*refLock)}
}

func (l *keyedLocker) WithEmployeeLock(ctx context.Context, employeeID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	m, ok := l.locks[employeeID]
	if !ok {
		m = &refLock{slot: make(chan struct{}, 1)}
		l.locks[employeeID] = m
	}
	m.refs++
	l.mu.Unlock()

	defer l.release(employeeID, m)

	select {
	case m.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-m.slot }()

	return fn(ctx)
}

func (l *keyedLocker) release(employeeID string, m *refLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(l.locks, employeeID)
	}
}
