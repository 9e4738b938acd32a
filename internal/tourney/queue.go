// Package tourney is the tournament/evolution driver: scenario
// construction, the worker pool and its work/result queues, population
// load/save and mutation, and winner tallying.
package tourney

import (
	"sync"
	"sync/atomic"
)

// semaphore is a counting semaphore with blocking Wait, used for the
// queue's sleep/wake signalling.
type semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newSemaphore() *semaphore {
	s := &semaphore{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *semaphore) Post() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *semaphore) Wait() {
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// Queue is a bounded-signalling multi-producer / multi-consumer work
// queue. Workers call WaitForItem, run the item, then FinishItem; the
// driver uses the three wait primitives to pace submission and to join.
//
// The atomic counters live outside the mutex so the common "nobody is
// waiting" path of FinishItem never takes the lock.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	next  int

	numQueued     atomic.Int32
	numInProgress atomic.Int32

	finishWaiting    atomic.Int32
	anyFinishWaiting atomic.Int32

	workerSem    *semaphore
	finishSem    *semaphore
	anyFinishSem *semaphore
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		workerSem:    newSemaphore(),
		finishSem:    newSemaphore(),
		anyFinishSem: newSemaphore(),
	}
}

// Enqueue adds one item and wakes a worker.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.numQueued.Add(1)
	q.mu.Unlock()

	q.workerSem.Post()
}

// WaitForItem blocks until an item is available, dequeues it, and marks
// it in progress.
func (q *Queue[T]) WaitForItem() T {
	q.workerSem.Wait()

	q.mu.Lock()
	item := q.items[q.next]
	var zero T
	q.items[q.next] = zero
	q.next++
	if q.numQueued.Add(-1) == 0 {
		q.items = q.items[:0]
		q.next = 0
	}
	q.numInProgress.Add(1)
	q.mu.Unlock()

	return item
}

// FinishItem marks one in-progress item done and wakes any interested
// waiters. When nobody is waiting this touches only atomics.
func (q *Queue[T]) FinishItem() {
	nowIdle := q.numInProgress.Add(-1) == 0 && q.numQueued.Load() == 0

	if !nowIdle && q.anyFinishWaiting.Load() == 0 {
		return
	}

	q.mu.Lock()
	if q.anyFinishWaiting.Load() > 0 {
		q.anyFinishWaiting.Add(-1)
		q.anyFinishSem.Post()
	}
	if q.IsIdle() && q.finishWaiting.Load() > 0 {
		q.finishWaiting.Add(-1)
		q.finishSem.Post()
	}
	q.mu.Unlock()
}

// Count returns queued plus in-progress items.
func (q *Queue[T]) Count() int {
	return int(q.numQueued.Load()) + int(q.numInProgress.Load())
}

// IsIdle reports whether nothing is queued or in progress.
func (q *Queue[T]) IsIdle() bool {
	return q.Count() == 0
}

// WaitForAnyFinished blocks until some item finishes, or returns
// immediately when the queue is idle. Single waiter only.
func (q *Queue[T]) WaitForAnyFinished() {
	if q.IsIdle() {
		return
	}

	wait := false
	q.mu.Lock()
	if !q.IsIdle() {
		q.anyFinishWaiting.Add(1)
		wait = true
	}
	q.mu.Unlock()

	if wait {
		q.anyFinishSem.Wait()
	}
}

// WaitForAllFinished blocks until the queue is idle. Racy against
// concurrent Enqueue, like the finish waiter it is modeled on: callers
// stop submitting first. Single waiter only.
func (q *Queue[T]) WaitForAllFinished() {
	if q.IsIdle() {
		return
	}

	wait := false
	q.mu.Lock()
	if !q.IsIdle() {
		q.finishWaiting.Add(1)
		wait = true
	}
	q.mu.Unlock()

	if wait {
		q.finishSem.Wait()
	}
}

// WaitForCountBelow blocks until fewer than count items are queued or
// in progress. Used by producers to bound how far ahead they run.
func (q *Queue[T]) WaitForCountBelow(count int) {
	if count < 1 {
		panic("tourney: WaitForCountBelow needs count >= 1")
	}
	if q.Count() < count {
		return
	}

	waitCount := 0
	q.mu.Lock()
	if q.Count() >= count {
		waitCount = q.Count() - count + 1
		q.anyFinishWaiting.Add(int32(waitCount))
	}
	q.mu.Unlock()

	for waitCount > 0 {
		q.anyFinishSem.Wait()
		waitCount--
	}
}

// Drain removes and returns every queued item and resets the counters.
// Only valid once all workers have exited; pending worker wakeups are
// abandoned with the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := append([]T(nil), q.items[q.next:]...)
	q.items = nil
	q.next = 0
	q.numQueued.Store(0)
	q.numInProgress.Store(0)
	return out
}
