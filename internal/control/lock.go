package control

import (
	"context"
	"sync"
	"time"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/errs"
)

// userLock is one user's FIFO chain. tail is the channel the most
// recently enqueued waiter will close on release, so exactly the next
// enqueued waiter (and no one else) wakes up.
type userLock struct {
	tail chan struct{}
}

// lockTable implements an Idle→Queued→Running→Done FSM per user, as a
// map guarded by its own mutex, each entry a
// mutex-free FIFO chain of waiter channels plus a per-acquisition
// watchdog timeout. This is deliberately independent of any
// coroutine/async-runtime's native lock so lock semantics stay
// explainable and testable on their own.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*userLock)}
}

// Acquire enqueues the caller at the tail of userID's chain (Queued) and
// blocks until either its turn arrives (Running), the timeout elapses,
// or ctx is cancelled. The returned release func moves the lock to Done
// and must be called exactly once; it is safe to defer.
//
// A waiter that never gets its turn — timed out or cancelled — returns
// its error at once and leaves a relay that signals the next waiter in
// line once its own predecessor settles, so one holder's failure never
// poisons the rest of the chain.
func (t *lockTable) Acquire(ctx context.Context, userID string, timeout time.Duration) (func(), error) {
	t.mu.Lock()
	ul, ok := t.locks[userID]
	if !ok {
		ul = &userLock{}
		t.locks[userID] = ul
	}
	myTurn := make(chan struct{})
	prevTail := ul.tail
	ul.tail = myTurn
	t.mu.Unlock()

	if prevTail != nil {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-prevTail:
		case <-timer.C:
			t.relay(userID, ul, prevTail, myTurn)
			return nil, errs.New(errs.LockTimeout, "user %s: lock not acquired within %s", userID, timeout)
		case <-ctx.Done():
			t.relay(userID, ul, prevTail, myTurn)
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() { t.signalAndGC(userID, ul, myTurn) })
	}
	return release, nil
}

// relay covers a waiter that gave up (timeout or cancellation) while
// still queued: its successor is chained on myTurn, so a leftover
// goroutine waits for the predecessor to settle and only then passes the
// turn along. Closing myTurn immediately would let the successor run
// while the current holder is still inside its critical section.
func (t *lockTable) relay(userID string, ul *userLock, prevTail, myTurn chan struct{}) {
	go func() {
		<-prevTail
		t.signalAndGC(userID, ul, myTurn)
	}()
}

// signalAndGC closes myTurn, waking the next chained waiter if any, then
// drops userID's entry from the table if no one queued up behind this
// waiter — an idle user leaves no trace in the table.
func (t *lockTable) signalAndGC(userID string, ul *userLock, myTurn chan struct{}) {
	close(myTurn)
	t.mu.Lock()
	defer t.mu.Unlock()
	if ul.tail == myTurn {
		delete(t.locks, userID)
	}
}
