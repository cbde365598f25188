// Package lock provides the distributed mutex used to collapse contention
// on a (room, date) before the guarded decrement runs. It is not required
// for correctness — the guarded decrement is — but it keeps concurrent
// requests for a hot room from all racing the database at once.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/distributed-hotel-saga/shared-domain/kinderr"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// RoomLock acquires a lease-with-wait mutex keyed by room and first date.
type RoomLock struct {
	rs           *redsync.Redsync
	waitTimeout  time.Duration
	leaseTimeout time.Duration
}

func NewRoomLock(client *goredislib.Client, waitTimeout, leaseTimeout time.Duration) *RoomLock {
	pool := goredis.NewPool(client)
	return &RoomLock{
		rs:           redsync.New(pool),
		waitTimeout:  waitTimeout,
		leaseTimeout: leaseTimeout,
	}
}

// Handle is the held lock; callers must Release it.
type Handle struct {
	mutex *redsync.Mutex
}

// Acquire blocks up to waitTimeout trying to take the lock for
// room:{roomID}:{firstDate}, held for at most leaseTimeout. Returns
// kinderr.Unclear on wait-timeout: the caller should treat acquisition
// failure as retryable, never as a definite negative.
func (l *RoomLock) Acquire(ctx context.Context, roomID, firstDate string) (*Handle, error) {
	key := fmt.Sprintf("room:%s:%s", roomID, firstDate)
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.leaseTimeout),
		redsync.WithTries(int(l.waitTimeout/(100*time.Millisecond))+1),
		redsync.WithRetryDelay(100*time.Millisecond),
	)

	lockCtx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()

	if err := mutex.LockContext(lockCtx); err != nil {
		return nil, kinderr.New(kinderr.UnclearRemoteOutcome, kinderr.CodeLockTimeout, "room lock acquisition timed out")
	}

	return &Handle{mutex: mutex}, nil
}

func (h *Handle) Release(ctx context.Context) {
	if h == nil || h.mutex == nil {
		return
	}
	_, _ = h.mutex.UnlockContext(ctx)
}
