package scheduler

import "container/heap"

// jobHeap implements container/heap.Interface for Job, ordered by next
// trigger time (earliest first).
type jobHeap []Job

func (h jobHeap) Len() int           { return len(h) }
func (h jobHeap) Less(i, j int) bool { return h[i].nextAt.Before(h[j].nextAt) }
func (h jobHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(Job))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func heapPush(h *jobHeap, j Job) {
	heap.Push(h, j)
}

// heapPop removes and returns the job with the earliest trigger time.
// Panics if the heap is empty.
func heapPop(h *jobHeap) Job {
	return heap.Pop(h).(Job)
}

// heapRemoveByName removes the first job with the given name. Returns
// false if no such job is queued.
func heapRemoveByName(h *jobHeap, name string) bool {
	for i, j := range *h {
		if j.Name == name {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
