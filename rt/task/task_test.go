package task

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestElementsAllRun(t *testing.T) {
	q := NewQueue()
	defer q.Terminate()

	var count int32
	n := 100
	tk := NewTask(n, func(elem int) {
		atomic.AddInt32(&count, 1)
	}, Policy{})
	q.Add(tk)
	tk.Wait()

	if got := atomic.LoadInt32(&count); got != int32(n) {
		t.Fatalf("expected %d elements run, got %d", n, got)
	}
}

func TestStartsOrdersDependency(t *testing.T) {
	q := NewQueue()
	defer q.Terminate()

	var order []int32
	var mu sync.Mutex
	a := NewTask(1, func(elem int) {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
	}, Policy{})
	b := NewTask(1, func(elem int) {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
	}, Policy{})
	a.Starts(b)

	q.Add(b)
	q.Add(a)
	a.Wait()
	b.Wait()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected a before b, got %v", order)
	}
}

func TestEndsDelaysWaitUntilDependencyCompletes(t *testing.T) {
	q := NewQueue()
	defer q.Terminate()

	var bDone int32
	a := NewTask(1, func(elem int) {}, Policy{})
	b := NewTask(1, func(elem int) {
		atomic.StoreInt32(&bDone, 1)
	}, Policy{})
	b.Ends(a)

	q.Add(a)
	q.Add(b)
	a.Wait()

	if atomic.LoadInt32(&bDone) != 1 {
		t.Fatal("a.Wait() returned before its Ends() dependency b finished")
	}
}

func TestHiPrioAndLowPrioTasksBothComplete(t *testing.T) {
	q := NewQueue()
	defer q.Terminate()

	lo := NewTask(1, func(elem int) {}, Policy{HiPrio: false})
	hi := NewTask(1, func(elem int) {}, Policy{HiPrio: true})
	q.Add(lo)
	q.Add(hi)
	lo.Wait()
	hi.Wait()
}
