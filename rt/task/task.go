// Package task implements a cooperative work-stealing task queue: one
// worker goroutine per hardware thread minus one, a shared ready queue,
// and reference-counted task descriptors with start/end dependency
// counters. The renderer driver does not schedule work on it; octree-leaf
// meshing and per-tile traversal fan out through errgroup instead.
//
// The worker-pool shape is grounded on
// _examples/Gekko3D-gekko/particles_ecs.go's emitter worker pool
// (channel-fed goroutines sized off runtime.GOMAXPROCS), reworked here
// into a mutex- and condition-variable-guarded priority ready queue with
// workers sized off runtime.NumCPU, plus per-task dependency bookkeeping.
package task

import "sync/atomic"

// Policy selects queue-insertion priority and whether a worker drains a
// task's elements in one shot or cooperatively yields between elements.
type Policy struct {
	HiPrio bool
	Fair   bool
}

// RunFunc is the only function ever called concurrently on a Task: once
// per element index in [0, ElemCount).
type RunFunc func(elem int)

// Task is a reference-counted, work-stealing unit of elem_count
// independent calls to Run. Dependencies are expressed as start/end edges
// to other tasks via Starts/Ends: A.Starts(B) bumps B's toStart counter,
// A.Ends(B) bumps B's toEnd counter, both released when A completes.
type Task struct {
	Run       RunFunc
	ElemCount int32

	refcount int32
	nextElem int32
	done     int32

	toStart int32
	toEnd   int32

	policy Policy

	startDeps []*Task // notified (toStart--) when this task completes
	endDeps   []*Task // notified (toEnd--) when this task completes
	q         *Queue

	finished chan struct{}
}

// NewTask creates a task with the given element count and policy. It is
// not runnable until added to a Queue via Queue.Add.
func NewTask(elemCount int, run RunFunc, policy Policy) *Task {
	return &Task{
		Run: run, ElemCount: int32(elemCount),
		refcount: 1, policy: policy,
		finished: make(chan struct{}),
	}
}

// Starts records that t must complete before dependent is allowed to run.
func (t *Task) Starts(dependent *Task) {
	atomic.AddInt32(&dependent.toStart, 1)
	t.startDeps = append(t.startDeps, dependent)
}

// Ends records that dependent's Wait() may not return until t completes,
// even once dependent's own elements are all done.
func (t *Task) Ends(dependent *Task) {
	atomic.AddInt32(&dependent.toEnd, 1)
	t.endDeps = append(t.endDeps, dependent)
}

// markComplete releases every dependency this task was gating and closes
// the finished channel Wait() blocks on.
func (t *Task) markComplete() {
	for _, dep := range t.startDeps {
		if atomic.AddInt32(&dep.toStart, -1) == 0 {
			t.q.enqueue(dep)
		}
	}
	for _, dep := range t.endDeps {
		atomic.AddInt32(&dep.toEnd, -1)
	}
	close(t.finished)
}

// elementDone is called by a worker after executing one element; the
// thread that decrements the counter to zero retires the task.
func (t *Task) elementDone() {
	if atomic.AddInt32(&t.done, 1) == t.ElemCount {
		t.q.removeReady(t)
		t.markComplete()
	}
}

func (t *Task) isStartable() bool {
	return atomic.LoadInt32(&t.toStart) == 0
}
