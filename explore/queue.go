package explore

import "container/heap"

// Queue is a binary min-heap ordered by less. Elements that compare equal
// in both directions leave in insertion order.
type Queue[T any] struct {
	h *queueHeap[T]
}

// NewQueue returns an empty queue.
func NewQueue[T any](less func(a, b T) bool) *Queue[T] {
	return &Queue[T]{h: &queueHeap[T]{less: less}}
}

// Push adds v.
func (q *Queue[T]) Push(v T) {
	q.h.seq++
	heap.Push(q.h, queueItem[T]{value: v, seq: q.h.seq})
}

// Pop removes and returns the smallest element.
func (q *Queue[T]) Pop() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(q.h).(queueItem[T]).value, true
}

// Peek returns the smallest element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.h.items[0].value, true
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return q.h.Len() }

type queueItem[T any] struct {
	value T
	seq   uint64
}

type queueHeap[T any] struct {
	items []queueItem[T]
	less  func(a, b T) bool
	seq   uint64
}

func (h *queueHeap[T]) Len() int { return len(h.items) }

func (h *queueHeap[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less(a.value, b.value) {
		return true
	}
	if h.less(b.value, a.value) {
		return false
	}
	return a.seq < b.seq
}

func (h *queueHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *queueHeap[T]) Push(x any) { h.items = append(h.items, x.(queueItem[T])) }

func (h *queueHeap[T]) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}
