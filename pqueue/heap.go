// Package pqueue implements the shared priority-queue primitive (spec §4.6)
// used by both the seeded watershed and the diffusion flooder: a min-heap
// of Heapitem ordered first by Age ascending, then by Value ascending. It
// is built on container/heap the way other numerical Go packages in this
// pack express custom orderings (see the augmented-fast-marching-method
// pixelHeap in the retrieved example pack), rather than reimplementing
// binary-heap mechanics from scratch.
package pqueue

import "container/heap"

// Heapitem is one entry in the priority queue: a candidate voxel settlement
// with the value that earned its place, the age (push order) used as the
// primary tie-break, the raveled voxel index being settled, and the
// raveled index of the seed whose flood produced this push.
type Heapitem struct {
	Value  float64
	Age    int64
	Index  int
	Source int
}

// items implements container/heap.Interface with (Age, Value) ascending
// ordering. It is unexported: Queue below is the only supported entry
// point, so the heap's lifetime is always scoped to one filter invocation
// rather than held by a process-wide pointer.
type items []Heapitem

func (h items) Len() int { return len(h) }

func (h items) Less(i, j int) bool {
	if h[i].Age != h[j].Age {
		return h[i].Age < h[j].Age
	}
	return h[i].Value < h[j].Value
}

func (h items) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *items) Push(x any) {
	*h = append(*h, x.(Heapitem))
}

func (h *items) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Queue is a locally owned min-heap of Heapitem, scoped to a single filter
// invocation (spec §9: never a process-wide singleton).
type Queue struct {
	data items
}

// NewQueue returns an empty queue, optionally pre-sized to avoid reallocation
// when the caller knows an approximate item count (e.g. seed count).
func NewQueue(sizeHint int) *Queue {
	q := &Queue{data: make(items, 0, sizeHint)}
	heap.Init(&q.data)
	return q
}

// Push inserts an item, maintaining heap order.
func (q *Queue) Push(item Heapitem) {
	heap.Push(&q.data, item)
}

// Pop removes and returns the minimum item under (Age, Value) ordering. It
// panics if the queue is empty; callers must check Len first.
func (q *Queue) Pop() Heapitem {
	return heap.Pop(&q.data).(Heapitem)
}

// Len returns the number of items currently queued.
func (q *Queue) Len() int {
	return len(q.data)
}
