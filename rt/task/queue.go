package task

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Queue is the shared ready list and worker pool. One worker goroutine
// runs per hardware thread minus one (spec §5), each pulling from a
// single shared ready slice guarded by a mutex plus condition variable;
// a worker blocks on the condition variable only when the ready list is
// empty, mirroring the "suspension points" contract.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	ready    []*Task
	running  map[*Task]bool
	workers  int
	wg       sync.WaitGroup
	terminate bool
}

// NewQueue starts a queue with runtime.NumCPU()-1 workers (minimum 1).
func NewQueue() *Queue {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	q := &Queue{workers: n, running: map[*Task]bool{}}
	q.cond = sync.NewCond(&q.mu)
	q.wg.Add(n)
	for i := 0; i < n; i++ {
		go q.workerLoop()
	}
	return q
}

// Add submits t. It becomes ready immediately if it has no unresolved
// start dependencies, otherwise it waits for them to release it.
func (q *Queue) Add(t *Task) {
	t.q = q
	if t.isStartable() {
		q.enqueue(t)
	}
}

// enqueue inserts t into the ready list: front for HiPrio, back otherwise.
func (q *Queue) enqueue(t *Task) {
	q.mu.Lock()
	if t.policy.HiPrio {
		q.ready = append([]*Task{t}, q.ready...)
	} else {
		q.ready = append(q.ready, t)
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *Queue) removeReady(t *Task) {
	q.mu.Lock()
	delete(q.running, t)
	q.mu.Unlock()
}

// popElement pulls one (task, element index) pair to run, blocking on the
// condition variable while the ready list is empty and the queue isn't
// terminating.
func (q *Queue) popElement() (*Task, int32, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		for len(q.ready) > 0 {
			t := q.ready[0]
			elem := t.nextElem
			if elem >= t.ElemCount {
				q.ready = q.ready[1:]
				continue
			}
			t.nextElem++
			if t.nextElem >= t.ElemCount {
				q.ready = q.ready[1:]
			} else if !t.policy.Fair {
				// Unfair: this worker drains the rest of the task's
				// elements itself rather than yielding it back.
				q.ready = q.ready[1:]
				q.running[t] = true
			}
			return t, elem, true
		}
		if q.terminate {
			return nil, 0, false
		}
		q.cond.Wait()
	}
}

func (q *Queue) workerLoop() {
	defer q.wg.Done()
	for {
		t, elem, ok := q.popElement()
		if !ok {
			return
		}
		q.runTaskFrom(t, elem)
	}
}

// runTaskFrom executes elem and, for an Unfair task this worker claimed,
// every remaining element in one shot.
func (q *Queue) runTaskFrom(t *Task, elem int32) {
	t.Run(int(elem))
	t.elementDone()
	if t.policy.Fair {
		return
	}
	for {
		q.mu.Lock()
		if !q.running[t] {
			q.mu.Unlock()
			return
		}
		next := t.nextElem
		if next >= t.ElemCount {
			delete(q.running, t)
			q.mu.Unlock()
			return
		}
		t.nextElem++
		q.mu.Unlock()
		t.Run(int(next))
		t.elementDone()
	}
}

// Terminate flips the terminate flag, wakes every worker, and joins them.
// No task is cancelled; workers simply stop picking up new ones.
func (q *Queue) Terminate() {
	q.mu.Lock()
	q.terminate = true
	q.mu.Unlock()
	q.cond.Broadcast()
	q.wg.Wait()
}

// Wait blocks until t's own elements are done (pumping the queue's ready
// list in the meantime so the waiter helps rather than idles), then spins
// with doubling backoff, capped at 64 iterations of runtime.Gosched, until
// every task t.Ends() depends on has also completed.
func (t *Task) Wait() {
	for {
		select {
		case <-t.finished:
		default:
			if !t.q.helpOnce() {
				runtime.Gosched()
			}
			continue
		}
		break
	}
	spin := 1
	for atomic.LoadInt32(&t.toEnd) > 0 {
		for i := 0; i < spin; i++ {
			runtime.Gosched()
		}
		if spin < 64 {
			spin *= 2
		}
	}
}

// helpOnce pops and runs a single ready element on the calling goroutine,
// if any is available. Returns false if the ready list was empty.
func (q *Queue) helpOnce() bool {
	q.mu.Lock()
	if len(q.ready) == 0 {
		q.mu.Unlock()
		return false
	}
	t := q.ready[0]
	elem := t.nextElem
	if elem >= t.ElemCount {
		q.ready = q.ready[1:]
		q.mu.Unlock()
		return true
	}
	t.nextElem++
	if t.nextElem >= t.ElemCount {
		q.ready = q.ready[1:]
	}
	q.mu.Unlock()
	t.Run(int(elem))
	t.elementDone()
	return true
}
